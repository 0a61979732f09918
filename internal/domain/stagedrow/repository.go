package stagedrow

import "context"

// Filter narrows ListUnprocessed. Zero values mean no constraint; Limit <= 0
// means the store's default batch size.
type Filter struct {
	Provider string
	Kind     Kind
	Limit    int
}

type Repository interface {
	ListUnprocessed(ctx context.Context, filter Filter) ([]Row, error)
	MarkProcessed(ctx context.Context, ids []int64) error
	InsertMany(ctx context.Context, rows []Row) (int, error)
}
