package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/pitchrank/pitchrank/internal/domain/stagedrow"
	qb "github.com/pitchrank/pitchrank/internal/platform/querybuilder"
)

type StagedRowRepository struct {
	db        *sqlx.DB
	chunkSize int
}

func NewStagedRowRepository(db *sqlx.DB, chunkSize int) *StagedRowRepository {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	return &StagedRowRepository{db: db, chunkSize: chunkSize}
}

func (r *StagedRowRepository) ListUnprocessed(ctx context.Context, filter stagedrow.Filter) ([]stagedrow.Row, error) {
	builder := qb.Select("*").From("staged_rows").
		Where(qb.Eq("processed", false)).
		OrderBy("id")
	if filter.Provider != "" {
		builder.Where(qb.Eq("provider", filter.Provider))
	}
	if filter.Kind != "" {
		builder.Where(qb.Eq("kind", string(filter.Kind)))
	}
	if filter.Limit > 0 {
		builder.Limit(filter.Limit)
	}

	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select unprocessed staged rows query: %w", err)
	}

	var rows []stagedRowTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select unprocessed staged rows: %w", err)
	}

	out := make([]stagedrow.Row, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *StagedRowRepository) MarkProcessed(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	for _, chunk := range chunked(ids, r.chunkSize) {
		query, args, err := qb.Update("staged_rows").
			Set("processed", true).
			Where(qb.In("id", anyValues(chunk))).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build mark staged rows processed query: %w", err)
		}
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("mark staged rows processed: %w", err)
		}
	}
	return nil
}

func (r *StagedRowRepository) InsertMany(ctx context.Context, rows []stagedrow.Row) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	inserted := 0
	for _, chunk := range chunked(rows, r.chunkSize) {
		models := make([]stagedRowInsertModel, 0, len(chunk))
		for _, row := range chunk {
			models = append(models, stagedRowToInsertModel(row))
		}

		query, args, err := qb.BulkInsertModels("staged_rows", models, "")
		if err != nil {
			return inserted, fmt.Errorf("build insert staged rows query: %w", err)
		}
		res, err := r.db.ExecContext(ctx, query, args...)
		if err != nil {
			return inserted, fmt.Errorf("insert staged rows: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return inserted, fmt.Errorf("insert staged rows rows affected: %w", err)
		}
		inserted += int(n)
	}
	return inserted, nil
}
