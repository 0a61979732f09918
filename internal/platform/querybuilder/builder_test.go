package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("id", "display_name").
		From("teams").
		Where(Eq("gender", "B"), Expr("birth_year >= ?", 2010)).
		OrderBy("id").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id, display_name FROM teams WHERE gender = $1 AND birth_year >= $2 ORDER BY id LIMIT 10"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "B" || args[1] != 2010 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilderEmptyInMatchesNothing(t *testing.T) {
	query, args, err := Select("id").
		From("teams").
		Where(In("id", nil)).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id FROM teams WHERE 1=0"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 0 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilderInCondition(t *testing.T) {
	query, args, err := Select("*").
		From("source_entity_map").
		Where(Eq("provider", "gotsport"), In("provider_entity_id", []any{"a", "b"})).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT * FROM source_entity_map WHERE provider = $1 AND provider_entity_id IN ($2, $3)"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("teams").
		Set("state", "KS").
		SetExpr("updated_at", "NOW()").
		Where(Eq("id", int64(7))).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE teams SET state = $1, updated_at = NOW() WHERE id = $2"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "KS" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestBulkInsertModels(t *testing.T) {
	type row struct {
		LeagueID int64  `db:"league_id"`
		TeamID   int64  `db:"team_id"`
		Division string `db:"division"`
	}

	models := []row{
		{LeagueID: 1, TeamID: 10, Division: "Gold"},
		{LeagueID: 1, TeamID: 11, Division: "Gold"},
	}

	query, args, err := BulkInsertModels("standings", models, "ON CONFLICT (league_id, team_id, division) DO NOTHING")
	if err != nil {
		t.Fatalf("build bulk insert query: %v", err)
	}

	wantQuery := "INSERT INTO standings (league_id, team_id, division) VALUES ($1, $2, $3), ($4, $5, $6) ON CONFLICT (league_id, team_id, division) DO NOTHING"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 6 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestBulkInsertModelsEmpty(t *testing.T) {
	if _, _, err := BulkInsertModels[struct{}]("standings", nil, ""); err == nil {
		t.Fatal("expected error for empty model slice")
	}
}
