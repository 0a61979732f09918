package sourcemap

import "context"

// Repository describes source-map persistence needs from use cases.
type Repository interface {
	ListByProviderIDs(ctx context.Context, entityType EntityType, provider string, providerEntityIDs []string) ([]Mapping, error)
	UpsertMany(ctx context.Context, mappings []Mapping) error
}
