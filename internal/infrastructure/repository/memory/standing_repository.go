package memory

import (
	"context"
	"sync"

	"github.com/pitchrank/pitchrank/internal/domain/standing"
)

type StandingRepository struct {
	mu       sync.RWMutex
	byLeague map[int64][]standing.Row
}

func NewStandingRepository() *StandingRepository {
	return &StandingRepository{byLeague: make(map[int64][]standing.Row)}
}

func (r *StandingRepository) ListByLeague(_ context.Context, leagueID int64) ([]standing.Row, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := r.byLeague[leagueID]
	out := make([]standing.Row, 0, len(items))
	out = append(out, items...)
	return out, nil
}

func (r *StandingRepository) ReplaceByLeague(_ context.Context, leagueID int64, rows []standing.Row) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	replacement := make([]standing.Row, 0, len(rows))
	for _, row := range rows {
		row.LeagueID = leagueID
		replacement = append(replacement, row)
	}
	r.byLeague[leagueID] = replacement
	return nil
}

// Leagues is a test helper listing league ids with stored standings.
func (r *StandingRepository) Leagues() []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]int64, 0, len(r.byLeague))
	for id := range r.byLeague {
		out = append(out, id)
	}
	return out
}
