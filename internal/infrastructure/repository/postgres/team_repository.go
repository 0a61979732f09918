package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/pitchrank/pitchrank/internal/domain/team"
	qb "github.com/pitchrank/pitchrank/internal/platform/querybuilder"
)

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) ListByIDs(ctx context.Context, ids []int64) ([]team.Team, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	out := make([]team.Team, 0, len(ids))
	for _, chunk := range chunked(ids, defaultChunkSize) {
		query, args, err := qb.Select("*").From("teams").
			Where(qb.In("id", anyValues(chunk))).
			OrderBy("id").
			ToSQL()
		if err != nil {
			return nil, fmt.Errorf("build select teams by ids query: %w", err)
		}

		var rows []teamTableModel
		if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
			return nil, fmt.Errorf("select teams by ids: %w", err)
		}
		for _, row := range rows {
			out = append(out, row.toDomain())
		}
	}
	return out, nil
}

func (r *TeamRepository) ListByCanonicalNames(ctx context.Context, canonicalNames []string) ([]team.Team, error) {
	if len(canonicalNames) == 0 {
		return nil, nil
	}

	out := make([]team.Team, 0, len(canonicalNames))
	for _, chunk := range chunked(canonicalNames, defaultChunkSize) {
		query, args, err := qb.Select("*").From("teams").
			Where(qb.In("canonical_name", anyValues(chunk))).
			OrderBy("id").
			ToSQL()
		if err != nil {
			return nil, fmt.Errorf("build select teams by canonical names query: %w", err)
		}

		var rows []teamTableModel
		if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
			return nil, fmt.Errorf("select teams by canonical names: %w", err)
		}
		for _, row := range rows {
			out = append(out, row.toDomain())
		}
	}
	return out, nil
}

func (r *TeamRepository) Create(ctx context.Context, t team.Team) (int64, error) {
	query, args, err := qb.InsertModel("teams", teamToInsertModel(t), "RETURNING id")
	if err != nil {
		return 0, fmt.Errorf("build insert team query: %w", err)
	}

	var id int64
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		return 0, fmt.Errorf("insert team: %w", err)
	}
	return id, nil
}

func (r *TeamRepository) Update(ctx context.Context, t team.Team) error {
	query, args, err := qb.Update("teams").
		Set("display_name", t.DisplayName).
		Set("canonical_name", t.CanonicalName).
		Set("club_name", t.ClubName).
		Set("birth_year", t.BirthYear).
		Set("gender", t.Gender).
		Set("state", t.State).
		Set("rating", t.Rating).
		Set("national_rank", t.NationalRank).
		Set("rating_points", t.RatingPoints).
		Set("quality_score", t.QualityScore).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", t.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update team query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update team id=%d: %w", t.ID, err)
	}
	return nil
}

func (r *TeamRepository) ClearNationalRanks(ctx context.Context, birthYears []int, genders []string) (int64, error) {
	builder := qb.Update("teams").
		SetExpr("national_rank", "NULL").
		SetExpr("updated_at", "NOW()").
		Where(qb.Expr("national_rank IS NOT NULL"))
	if len(birthYears) > 0 {
		builder.Where(qb.In("birth_year", anyValues(birthYears)))
	}
	if len(genders) > 0 {
		builder.Where(qb.In("gender", anyValues(genders)))
	}

	query, args, err := builder.ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build clear national ranks query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("clear national ranks: %w", err)
	}
	cleared, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear national ranks rows affected: %w", err)
	}
	return cleared, nil
}
