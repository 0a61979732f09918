package memory

import (
	"context"
	"sync"

	"github.com/pitchrank/pitchrank/internal/domain/sourcemap"
)

type SourceMapRepository struct {
	mu    sync.RWMutex
	items map[string]sourcemap.Mapping
}

func NewSourceMapRepository(mappings []sourcemap.Mapping) *SourceMapRepository {
	items := make(map[string]sourcemap.Mapping, len(mappings))
	for _, m := range mappings {
		items[m.Key()] = m
	}
	return &SourceMapRepository{items: items}
}

func (r *SourceMapRepository) ListByProviderIDs(_ context.Context, entityType sourcemap.EntityType, provider string, providerEntityIDs []string) ([]sourcemap.Mapping, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]sourcemap.Mapping, 0, len(providerEntityIDs))
	for _, id := range providerEntityIDs {
		if m, ok := r.items[sourcemap.Key(entityType, provider, id)]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *SourceMapRepository) UpsertMany(_ context.Context, mappings []sourcemap.Mapping) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range mappings {
		r.items[m.Key()] = m
	}
	return nil
}

// Get is a test helper.
func (r *SourceMapRepository) Get(entityType sourcemap.EntityType, provider, providerEntityID string) (sourcemap.Mapping, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.items[sourcemap.Key(entityType, provider, providerEntityID)]
	return m, ok
}
