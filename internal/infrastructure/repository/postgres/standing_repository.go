package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/pitchrank/pitchrank/internal/domain/standing"
	qb "github.com/pitchrank/pitchrank/internal/platform/querybuilder"
)

type StandingRepository struct {
	db        *sqlx.DB
	chunkSize int
}

func NewStandingRepository(db *sqlx.DB, chunkSize int) *StandingRepository {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	return &StandingRepository{db: db, chunkSize: chunkSize}
}

func (r *StandingRepository) ListByLeague(ctx context.Context, leagueID int64) ([]standing.Row, error) {
	query, args, err := qb.Select("*").From("standings").
		Where(qb.Eq("league_id", leagueID)).
		OrderBy("division", "gender", "birth_year", "position", "team_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select standings by league query: %w", err)
	}

	var rows []standingTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select standings by league: %w", err)
	}

	out := make([]standing.Row, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// ReplaceByLeague swaps out every standings row for the league in one
// transaction: stale teams disappear, incoming positions land atomically.
func (r *StandingRepository) ReplaceByLeague(ctx context.Context, leagueID int64, rows []standing.Row) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx replace standings: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM standings WHERE league_id = $1", leagueID); err != nil {
		return fmt.Errorf("clear standings league=%d: %w", leagueID, err)
	}

	for _, chunk := range chunked(rows, r.chunkSize) {
		models := make([]standingInsertModel, 0, len(chunk))
		for _, row := range chunk {
			models = append(models, standingToInsertModel(leagueID, row))
		}

		query, args, err := qb.BulkInsertModels("standings", models, `ON CONFLICT (league_id, team_id, division)
DO UPDATE SET
    gender = EXCLUDED.gender,
    birth_year = EXCLUDED.birth_year,
    position = EXCLUDED.position,
    played = EXCLUDED.played,
    won = EXCLUDED.won,
    drawn = EXCLUDED.drawn,
    lost = EXCLUDED.lost,
    goals_for = EXCLUDED.goals_for,
    goals_against = EXCLUDED.goals_against,
    points = EXCLUDED.points,
    form = EXCLUDED.form,
    rating = EXCLUDED.rating,
    rating_rank = EXCLUDED.rating_rank,
    provenance = EXCLUDED.provenance,
    source_updated_at = EXCLUDED.source_updated_at,
    updated_at = NOW()`)
		if err != nil {
			return fmt.Errorf("build upsert standings query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert standings league=%d: %w", leagueID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace standings tx: %w", err)
	}
	return nil
}
