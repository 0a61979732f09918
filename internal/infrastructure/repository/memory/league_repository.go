package memory

import (
	"context"
	"sync"
	"time"

	"github.com/pitchrank/pitchrank/internal/domain/league"
)

type LeagueRepository struct {
	mu     sync.RWMutex
	items  map[int64]league.League
	nextID int64
}

func NewLeagueRepository(leagues []league.League) *LeagueRepository {
	items := make(map[int64]league.League, len(leagues))
	var maxID int64
	for _, l := range leagues {
		items[l.ID] = l
		if l.ID > maxID {
			maxID = l.ID
		}
	}
	return &LeagueRepository{items: items, nextID: maxID + 1}
}

func (r *LeagueRepository) ListByIDs(_ context.Context, ids []int64) ([]league.League, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]league.League, 0, len(ids))
	for _, id := range ids {
		if l, ok := r.items[id]; ok {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *LeagueRepository) ListByCanonicalNames(_ context.Context, canonicalNames []string) ([]league.League, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[string]struct{}, len(canonicalNames))
	for _, name := range canonicalNames {
		wanted[name] = struct{}{}
	}

	out := make([]league.League, 0)
	for _, l := range r.items {
		if _, ok := wanted[l.CanonicalName]; ok {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *LeagueRepository) Create(_ context.Context, l league.League) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l.ID = r.nextID
	r.nextID++
	l.UpdatedAt = time.Now()
	r.items[l.ID] = l
	return l.ID, nil
}

func (r *LeagueRepository) Update(_ context.Context, l league.League) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	l.UpdatedAt = time.Now()
	r.items[l.ID] = l
	return nil
}

// Get is a test helper.
func (r *LeagueRepository) Get(id int64) (league.League, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.items[id]
	return l, ok
}

// Len is a test helper.
func (r *LeagueRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items)
}
