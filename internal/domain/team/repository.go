package team

import "context"

// Repository describes canonical team persistence needs from use cases.
// Lookups are batched by design: the resolver builds its in-memory state from
// a handful of set queries, never one query per staged row.
type Repository interface {
	ListByIDs(ctx context.Context, ids []int64) ([]Team, error)
	ListByCanonicalNames(ctx context.Context, canonicalNames []string) ([]Team, error)
	Create(ctx context.Context, t Team) (int64, error)
	Update(ctx context.Context, t Team) error
	ClearNationalRanks(ctx context.Context, birthYears []int, genders []string) (int64, error)
}
