package feed

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/pitchrank/pitchrank/internal/domain/stagedrow"
	"github.com/pitchrank/pitchrank/internal/platform/logging"
)

// RunStats accumulates scrape progress across a run, including resumed ones.
type RunStats struct {
	Units    int `json:"units"`
	Resumed  int `json:"resumed"`
	Fetched  int `json:"fetched"`
	Inserted int `json:"inserted"`
	Failed   int `json:"failed"`
}

type RunnerConfig struct {
	Provider       string
	Workers        int
	BatchDelay     time.Duration
	CheckpointPath string
}

// Runner drives a full scrape over a set of units: bounded parallel fetch,
// staging inserts, and a checkpoint write after every batch so an
// interrupted run picks up where it stopped.
type Runner struct {
	client     *Client
	stagedRepo stagedrow.Repository
	logger     *logging.Logger
	cfg        RunnerConfig
}

func NewRunner(client *Client, stagedRepo stagedrow.Repository, logger *logging.Logger, cfg RunnerConfig) *Runner {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Runner{
		client:     client,
		stagedRepo: stagedRepo,
		logger:     logger,
		cfg:        cfg,
	}
}

type unitOutcome struct {
	unit Unit
	rows []stagedrow.Row
	err  error
}

// Run fetches every unit not already recorded in the checkpoint. Unit
// failures are logged and counted but never abort the run; a failed unit
// stays out of the checkpoint so the next run retries it.
func (r *Runner) Run(ctx context.Context, units []Unit) (RunStats, error) {
	checkpoint, err := LoadCheckpoint(r.cfg.CheckpointPath)
	if err != nil {
		return RunStats{}, err
	}
	if checkpoint.Provider != "" && checkpoint.Provider != r.cfg.Provider {
		return RunStats{}, fmt.Errorf("checkpoint %s belongs to provider %q, not %q",
			r.cfg.CheckpointPath, checkpoint.Provider, r.cfg.Provider)
	}
	checkpoint.Provider = r.cfg.Provider

	completed := checkpoint.completedSet()
	stats := checkpoint.Stats
	stats.Units = len(units)

	pending := make([]Unit, 0, len(units))
	for _, unit := range units {
		if _, ok := completed[unit.Key()]; ok {
			stats.Resumed++
			continue
		}
		pending = append(pending, unit)
	}

	r.logger.InfoContext(ctx, "scrape run starting",
		"provider", r.cfg.Provider,
		"units", len(units),
		"pending", len(pending),
		"resumed", stats.Resumed,
		"workers", r.cfg.Workers)

	for start := 0; start < len(pending); start += r.cfg.Workers {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		end := start + r.cfg.Workers
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[start:end]

		outcomes := r.fetchBatch(ctx, batch)
		for _, outcome := range outcomes {
			if outcome.err != nil {
				stats.Failed++
				r.logger.WarnContext(ctx, "scrape unit failed",
					"division", outcome.unit.DivisionID,
					"league", outcome.unit.LeagueName,
					"error", outcome.err)
				continue
			}

			stats.Fetched += len(outcome.rows)
			if len(outcome.rows) > 0 {
				inserted, insertErr := r.stagedRepo.InsertMany(ctx, outcome.rows)
				if insertErr != nil {
					return stats, fmt.Errorf("insert staged rows for division %s: %w", outcome.unit.DivisionID, insertErr)
				}
				stats.Inserted += inserted
			}
			checkpoint.Completed = append(checkpoint.Completed, outcome.unit.Key())
		}

		checkpoint.Stats = stats
		if err := SaveCheckpoint(r.cfg.CheckpointPath, checkpoint); err != nil {
			return stats, err
		}

		if r.cfg.BatchDelay > 0 && end < len(pending) {
			timer := time.NewTimer(r.cfg.BatchDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return stats, ctx.Err()
			case <-timer.C:
			}
		}
	}

	r.logger.InfoContext(ctx, "scrape run finished",
		"provider", r.cfg.Provider,
		"fetched", stats.Fetched,
		"inserted", stats.Inserted,
		"failed", stats.Failed)
	return stats, nil
}

// fetchBatch fans one batch of units out across the worker pool. Staging
// inserts happen afterward on the caller's goroutine so write order stays
// deterministic.
func (r *Runner) fetchBatch(ctx context.Context, batch []Unit) []unitOutcome {
	var mu sync.Mutex
	outcomes := make([]unitOutcome, 0, len(batch))

	workers := pool.New().WithMaxGoroutines(r.cfg.Workers)
	for _, unit := range batch {
		unit := unit
		workers.Go(func() {
			rows, err := r.fetchUnit(ctx, unit)
			mu.Lock()
			outcomes = append(outcomes, unitOutcome{unit: unit, rows: rows, err: err})
			mu.Unlock()
		})
	}
	workers.Wait()

	sort.Slice(outcomes, func(i, j int) bool {
		return outcomes[i].unit.Key() < outcomes[j].unit.Key()
	})
	return outcomes
}

func (r *Runner) fetchUnit(ctx context.Context, unit Unit) ([]stagedrow.Row, error) {
	standings, err := r.client.FetchStandings(ctx, r.cfg.Provider, unit)
	if err != nil {
		return nil, err
	}
	results, err := r.client.FetchResults(ctx, r.cfg.Provider, unit)
	if err != nil {
		return nil, err
	}
	return append(standings, results...), nil
}
