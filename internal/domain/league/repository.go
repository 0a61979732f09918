package league

import "context"

// Repository describes canonical league persistence needs from use cases.
type Repository interface {
	ListByIDs(ctx context.Context, ids []int64) ([]League, error)
	ListByCanonicalNames(ctx context.Context, canonicalNames []string) ([]League, error)
	Create(ctx context.Context, l League) (int64, error)
	Update(ctx context.Context, l League) error
}
