package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/pitchrank/pitchrank/internal/domain/league"
	qb "github.com/pitchrank/pitchrank/internal/platform/querybuilder"
)

type LeagueRepository struct {
	db *sqlx.DB
}

func NewLeagueRepository(db *sqlx.DB) *LeagueRepository {
	return &LeagueRepository{db: db}
}

func (r *LeagueRepository) ListByIDs(ctx context.Context, ids []int64) ([]league.League, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	out := make([]league.League, 0, len(ids))
	for _, chunk := range chunked(ids, defaultChunkSize) {
		query, args, err := qb.Select("*").From("leagues").
			Where(qb.In("id", anyValues(chunk))).
			OrderBy("id").
			ToSQL()
		if err != nil {
			return nil, fmt.Errorf("build select leagues by ids query: %w", err)
		}

		var rows []leagueTableModel
		if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
			return nil, fmt.Errorf("select leagues by ids: %w", err)
		}
		for _, row := range rows {
			out = append(out, row.toDomain())
		}
	}
	return out, nil
}

func (r *LeagueRepository) ListByCanonicalNames(ctx context.Context, canonicalNames []string) ([]league.League, error) {
	if len(canonicalNames) == 0 {
		return nil, nil
	}

	out := make([]league.League, 0, len(canonicalNames))
	for _, chunk := range chunked(canonicalNames, defaultChunkSize) {
		query, args, err := qb.Select("*").From("leagues").
			Where(qb.In("canonical_name", anyValues(chunk))).
			OrderBy("id").
			ToSQL()
		if err != nil {
			return nil, fmt.Errorf("build select leagues by canonical names query: %w", err)
		}

		var rows []leagueTableModel
		if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
			return nil, fmt.Errorf("select leagues by canonical names: %w", err)
		}
		for _, row := range rows {
			out = append(out, row.toDomain())
		}
	}
	return out, nil
}

func (r *LeagueRepository) Create(ctx context.Context, l league.League) (int64, error) {
	query, args, err := qb.InsertModel("leagues", leagueToInsertModel(l), "RETURNING id")
	if err != nil {
		return 0, fmt.Errorf("build insert league query: %w", err)
	}

	var id int64
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		return 0, fmt.Errorf("insert league: %w", err)
	}
	return id, nil
}

func (r *LeagueRepository) Update(ctx context.Context, l league.League) error {
	query, args, err := qb.Update("leagues").
		Set("display_name", l.DisplayName).
		Set("canonical_name", l.CanonicalName).
		Set("state", l.State).
		Set("gender", l.Gender).
		Set("birth_year", l.BirthYear).
		Set("season_end_year", l.SeasonEndYear).
		Set("quality_score", l.QualityScore).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", l.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update league query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update league id=%d: %w", l.ID, err)
	}
	return nil
}
