package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/pitchrank/pitchrank/internal/domain/standing"
	"github.com/pitchrank/pitchrank/internal/platform/logging"
	"github.com/pitchrank/pitchrank/internal/platform/resilience"
)

// StandingsService turns resolved staged rows into per-league tables and
// overwrites each affected league's standings wholesale, so positions within
// a group are always internally consistent.
type StandingsService struct {
	standingRepo standing.Repository
	logger       *logging.Logger
	workers      int
}

func NewStandingsService(standingRepo standing.Repository, workers int, logger *logging.Logger) *StandingsService {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &StandingsService{
		standingRepo: standingRepo,
		logger:       logger,
		workers:      workers,
	}
}

// BuildLeagueTable combines one league's scraped standings rows and replayed
// match results into the final ordered table. Scraped rows win over computed
// ones for the same team; groups missing from the provider's table are
// computed from results. Provider-supplied positions are recomputed with the
// canonical tie-break either way.
func (s *StandingsService) BuildLeagueTable(scraped []standing.Row, results []standing.MatchResult) []standing.Row {
	resultsByTeam := make(map[int64][]standing.MatchResult)
	for _, r := range results {
		resultsByTeam[r.TeamID] = append(resultsByTeam[r.TeamID], r)
	}

	scrapedTeams := make(map[int64]struct{}, len(scraped))
	rows := make([]standing.Row, 0, len(scraped))
	for _, row := range scraped {
		row.Provenance = standing.ProvenanceScraped
		if row.Form == "" {
			row.Form = standing.Form(resultsByTeam[row.TeamID])
		}
		rows = append(rows, row)
		scrapedTeams[row.TeamID] = struct{}{}
	}

	if len(rows) == 0 && len(results) > 0 {
		rows = standing.TableFromResults(results)
	} else {
		// teams seen only in results still earn a computed row
		leftover := make([]standing.MatchResult, 0)
		for teamID, teamResults := range resultsByTeam {
			if _, ok := scrapedTeams[teamID]; ok {
				continue
			}
			leftover = append(leftover, teamResults...)
		}
		if len(leftover) > 0 {
			for _, row := range standing.TableFromResults(leftover) {
				if _, ok := scrapedTeams[row.TeamID]; ok {
					continue
				}
				rows = append(rows, row)
			}
		}
	}

	// computed rows carry no league id of their own; they inherit the
	// scraped table's so a division never splits between provenances
	if len(scraped) > 0 {
		leagueID := scraped[0].LeagueID
		for i := range rows {
			if rows[i].LeagueID == 0 {
				rows[i].LeagueID = leagueID
			}
		}
	}

	groups := make(map[string][]standing.Row)
	order := make([]string, 0)
	for _, row := range rows {
		key := standing.GroupKey(row)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], row)
	}

	out := make([]standing.Row, 0, len(rows))
	for _, key := range order {
		group := groups[key]
		standing.SortTable(group)
		standing.RankByRating(group)
		out = append(out, group...)
	}
	return out
}

// ReplaceLeagues overwrites standings for every affected league, fanning the
// per-league replacements out over a bounded worker pool. Any single failure
// fails the whole call so the batch is not marked processed.
func (s *StandingsService) ReplaceLeagues(ctx context.Context, tables map[int64][]standing.Row) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.ReplaceLeagues")
	defer span.End()

	if len(tables) == 0 {
		return 0, nil
	}

	pool, err := ants.NewPool(s.workers)
	if err != nil {
		return 0, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		mu       sync.Mutex
		written  int
		firstErr error
	)
	var workers sync.WaitGroup
	for leagueID, rows := range tables {
		leagueID, rows := leagueID, rows
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			replaceErr := resilience.Retry(ctx, storeRetry, func(ctx context.Context) error {
				return s.standingRepo.ReplaceByLeague(ctx, leagueID, rows)
			})
			if replaceErr != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("replace standings league=%d: %w", leagueID, replaceErr)
				}
				mu.Unlock()
				return
			}
			mu.Lock()
			written += len(rows)
			mu.Unlock()
		}); err != nil {
			workers.Done()
			// in-flight replacements must finish before the caller acts on
			// the error, or the batch state is indeterminate
			workers.Wait()
			return written, fmt.Errorf("submit replace task league=%d: %w", leagueID, err)
		}
	}
	workers.Wait()

	if firstErr != nil {
		return written, firstErr
	}
	return written, nil
}
