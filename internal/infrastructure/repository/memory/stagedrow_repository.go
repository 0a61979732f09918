package memory

import (
	"context"
	"sync"

	"github.com/pitchrank/pitchrank/internal/domain/stagedrow"
)

type StagedRowRepository struct {
	mu     sync.RWMutex
	items  map[int64]stagedrow.Row
	order  []int64
	nextID int64
}

func NewStagedRowRepository(rows []stagedrow.Row) *StagedRowRepository {
	r := &StagedRowRepository{
		items:  make(map[int64]stagedrow.Row, len(rows)),
		order:  make([]int64, 0, len(rows)),
		nextID: 1,
	}
	for _, row := range rows {
		if row.ID == 0 {
			row.ID = r.nextID
		}
		if row.ID >= r.nextID {
			r.nextID = row.ID + 1
		}
		r.items[row.ID] = row
		r.order = append(r.order, row.ID)
	}
	return r
}

func (r *StagedRowRepository) ListUnprocessed(_ context.Context, filter stagedrow.Filter) ([]stagedrow.Row, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]stagedrow.Row, 0)
	for _, id := range r.order {
		row := r.items[id]
		if row.Processed {
			continue
		}
		if filter.Provider != "" && row.Provider != filter.Provider {
			continue
		}
		if filter.Kind != "" && row.Kind != filter.Kind {
			continue
		}
		out = append(out, row)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

func (r *StagedRowRepository) MarkProcessed(_ context.Context, ids []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		if row, ok := r.items[id]; ok {
			row.Processed = true
			r.items[id] = row
		}
	}
	return nil
}

func (r *StagedRowRepository) InsertMany(_ context.Context, rows []stagedrow.Row) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, row := range rows {
		row.ID = r.nextID
		r.nextID++
		r.items[row.ID] = row
		r.order = append(r.order, row.ID)
	}
	return len(rows), nil
}

// UnprocessedCount is a test helper.
func (r *StagedRowRepository) UnprocessedCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, row := range r.items {
		if !row.Processed {
			count++
		}
	}
	return count
}
