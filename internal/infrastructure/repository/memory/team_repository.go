// Package memory holds in-process repository implementations. They back the
// use-case tests and double as a scratch store for local pipeline runs
// without a database.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/pitchrank/pitchrank/internal/domain/team"
)

type TeamRepository struct {
	mu     sync.RWMutex
	items  map[int64]team.Team
	nextID int64
}

func NewTeamRepository(teams []team.Team) *TeamRepository {
	items := make(map[int64]team.Team, len(teams))
	var maxID int64
	for _, t := range teams {
		items[t.ID] = t
		if t.ID > maxID {
			maxID = t.ID
		}
	}
	return &TeamRepository{items: items, nextID: maxID + 1}
}

func (r *TeamRepository) ListByIDs(_ context.Context, ids []int64) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]team.Team, 0, len(ids))
	for _, id := range ids {
		if t, ok := r.items[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *TeamRepository) ListByCanonicalNames(_ context.Context, canonicalNames []string) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[string]struct{}, len(canonicalNames))
	for _, name := range canonicalNames {
		wanted[name] = struct{}{}
	}

	out := make([]team.Team, 0)
	for _, t := range r.items {
		if _, ok := wanted[t.CanonicalName]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *TeamRepository) Create(_ context.Context, t team.Team) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t.ID = r.nextID
	r.nextID++
	t.UpdatedAt = time.Now()
	r.items[t.ID] = t
	return t.ID, nil
}

func (r *TeamRepository) Update(_ context.Context, t team.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t.UpdatedAt = time.Now()
	r.items[t.ID] = t
	return nil
}

func (r *TeamRepository) ClearNationalRanks(_ context.Context, birthYears []int, genders []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	years := make(map[int]struct{}, len(birthYears))
	for _, y := range birthYears {
		years[y] = struct{}{}
	}
	genderSet := make(map[string]struct{}, len(genders))
	for _, g := range genders {
		genderSet[g] = struct{}{}
	}

	var cleared int64
	for id, t := range r.items {
		if t.NationalRank == nil {
			continue
		}
		if len(years) > 0 {
			if t.BirthYear == nil {
				continue
			}
			if _, ok := years[*t.BirthYear]; !ok {
				continue
			}
		}
		if len(genderSet) > 0 {
			if _, ok := genderSet[t.Gender]; !ok {
				continue
			}
		}
		t.NationalRank = nil
		r.items[id] = t
		cleared++
	}
	return cleared, nil
}

// Get is a test helper for asserting on stored state.
func (r *TeamRepository) Get(id int64) (team.Team, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.items[id]
	return t, ok
}

// Len is a test helper.
func (r *TeamRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items)
}
