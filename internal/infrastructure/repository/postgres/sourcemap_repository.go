package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/pitchrank/pitchrank/internal/domain/sourcemap"
	qb "github.com/pitchrank/pitchrank/internal/platform/querybuilder"
)

type sourceMapTableModel struct {
	EntityType       string `db:"entity_type"`
	Provider         string `db:"provider"`
	ProviderEntityID string `db:"provider_entity_id"`
	EntityID         int64  `db:"entity_id"`
}

type SourceMapRepository struct {
	db *sqlx.DB
}

func NewSourceMapRepository(db *sqlx.DB) *SourceMapRepository {
	return &SourceMapRepository{db: db}
}

func (r *SourceMapRepository) ListByProviderIDs(ctx context.Context, entityType sourcemap.EntityType, provider string, providerEntityIDs []string) ([]sourcemap.Mapping, error) {
	if len(providerEntityIDs) == 0 {
		return nil, nil
	}

	out := make([]sourcemap.Mapping, 0, len(providerEntityIDs))
	for _, chunk := range chunked(providerEntityIDs, defaultChunkSize) {
		query, args, err := qb.Select("entity_type", "provider", "provider_entity_id", "entity_id").
			From("source_entity_map").
			Where(
				qb.Eq("entity_type", string(entityType)),
				qb.Eq("provider", provider),
				qb.In("provider_entity_id", anyValues(chunk)),
			).
			ToSQL()
		if err != nil {
			return nil, fmt.Errorf("build select source mappings query: %w", err)
		}

		var rows []sourceMapTableModel
		if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
			return nil, fmt.Errorf("select source mappings: %w", err)
		}
		for _, row := range rows {
			out = append(out, sourcemap.Mapping{
				EntityType:       sourcemap.EntityType(row.EntityType),
				Provider:         row.Provider,
				ProviderEntityID: row.ProviderEntityID,
				EntityID:         row.EntityID,
			})
		}
	}
	return out, nil
}

func (r *SourceMapRepository) UpsertMany(ctx context.Context, mappings []sourcemap.Mapping) error {
	if len(mappings) == 0 {
		return nil
	}

	for _, chunk := range chunked(mappings, defaultChunkSize) {
		models := make([]sourceMapTableModel, 0, len(chunk))
		for _, m := range chunk {
			models = append(models, sourceMapTableModel{
				EntityType:       string(m.EntityType),
				Provider:         m.Provider,
				ProviderEntityID: m.ProviderEntityID,
				EntityID:         m.EntityID,
			})
		}

		query, args, err := qb.BulkInsertModels("source_entity_map", models, `ON CONFLICT (entity_type, provider, provider_entity_id)
DO UPDATE SET
    entity_id = EXCLUDED.entity_id,
    updated_at = NOW()`)
		if err != nil {
			return fmt.Errorf("build upsert source mappings query: %w", err)
		}
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert source mappings: %w", err)
		}
	}
	return nil
}
