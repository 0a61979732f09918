package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/pitchrank/pitchrank/internal/domain/stagedrow"
	"github.com/pitchrank/pitchrank/internal/domain/team"
	"github.com/pitchrank/pitchrank/internal/platform/logging"
)

// RefreshStats summarizes one rankings refresh, preview or committed.
type RefreshStats struct {
	Read      int
	Skipped   int
	Deduped   int
	Cleared   int64
	Updated   int
	TeamTiers TierCounts
	Preview   bool
	Elapsed   time.Duration
}

// RankingsService applies a provider's national ranking export
// authoritatively: ranks the provider no longer reports must disappear, so
// the whole birth-year/gender scope covered by the batch is cleared before
// the fresh values are set. That makes a half-applied run destructive, which
// is why committing requires an explicit execute.
type RankingsService struct {
	stagedRepo stagedrow.Repository
	teamRepo   team.Repository
	resolver   *ResolverService
	logger     *logging.Logger
}

func NewRankingsService(
	stagedRepo stagedrow.Repository,
	teamRepo team.Repository,
	resolver *ResolverService,
	logger *logging.Logger,
) *RankingsService {
	if logger == nil {
		logger = logging.Default()
	}
	return &RankingsService{
		stagedRepo: stagedRepo,
		teamRepo:   teamRepo,
		resolver:   resolver,
		logger:     logger,
	}
}

// Refresh consumes unprocessed ranking rows from one provider. With execute
// false it resolves everything against synthetic state and reports what a
// commit would do without touching the store.
func (s *RankingsService) Refresh(ctx context.Context, provider string, limit int, execute bool) (RefreshStats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RankingsService.Refresh")
	defer span.End()

	start := time.Now()
	stats := RefreshStats{Preview: !execute}

	rows, err := s.stagedRepo.ListUnprocessed(ctx, stagedrow.Filter{
		Provider: provider,
		Kind:     stagedrow.KindStanding,
		Limit:    limit,
	})
	if err != nil {
		return stats, fmt.Errorf("list unprocessed ranking rows: %w", err)
	}
	stats.Read = len(rows)
	if len(rows) == 0 {
		stats.Elapsed = time.Since(start)
		s.logger.InfoContext(ctx, "rankings refresh: nothing to do", "provider", provider)
		return stats, nil
	}

	ranked := make([]stagedrow.Row, 0, len(rows))
	for _, row := range rows {
		if row.NationalRank == nil || !row.HasTeamIdentity() {
			stats.Skipped++
			continue
		}
		ranked = append(ranked, row)
	}

	st, err := s.resolver.BuildState(ctx, ranked, !execute)
	if err != nil {
		return stats, fmt.Errorf("build resolver state: %w", err)
	}

	type rankedTeam struct {
		rank   int
		rating *float64
		points *float64
	}
	byTeam := make(map[int64]rankedTeam)
	teamOrder := make([]int64, 0, len(ranked))
	years := make(map[int]struct{})
	genders := make(map[string]struct{})

	for _, row := range ranked {
		teamID, err := s.resolver.ResolveTeam(ctx, st, TeamObservation{
			Provider:   row.Provider,
			ProviderID: derefString(row.TeamProviderID),
			RawName:    row.TeamName,
			BirthYear:  row.BirthYear,
			Gender:     row.Gender,
		})
		if err != nil {
			return stats, err
		}
		if teamID == 0 {
			stats.Skipped++
			continue
		}
		if _, ok := byTeam[teamID]; ok {
			stats.Deduped++
		} else {
			teamOrder = append(teamOrder, teamID)
		}
		// later rows win within a batch, same as the loader
		byTeam[teamID] = rankedTeam{
			rank:   *row.NationalRank,
			rating: row.Rating,
			points: row.RatingPoints,
		}
		if row.BirthYear != nil {
			years[*row.BirthYear] = struct{}{}
		}
		if row.Gender != "" {
			genders[row.Gender] = struct{}{}
		}
	}

	stats.TeamTiers = st.TeamTiers

	if !execute {
		stats.Updated = len(byTeam)
		stats.Elapsed = time.Since(start)
		s.logger.InfoContext(ctx, "rankings refresh preview",
			"provider", provider,
			"read", stats.Read,
			"would_update", stats.Updated,
			"skipped", stats.Skipped,
			"deduped", stats.Deduped,
			"scope_years", len(years),
			"scope_genders", len(genders),
		)
		return stats, nil
	}

	// Enrichment writes and new mappings land first so the rank updates
	// below are the final word on every touched team.
	if err := s.resolver.Flush(ctx, st); err != nil {
		return stats, err
	}

	cleared, err := s.teamRepo.ClearNationalRanks(ctx, intSetToSlice(years), setToSlice(genders))
	if err != nil {
		return stats, fmt.Errorf("clear national ranks: %w", err)
	}
	stats.Cleared = cleared

	for _, teamID := range teamOrder {
		entry := byTeam[teamID]
		current, ok := st.Team(teamID)
		if !ok {
			continue
		}
		rank := entry.rank
		current.NationalRank = &rank
		if entry.rating != nil {
			rating := *entry.rating
			current.Rating = &rating
		}
		if entry.points != nil {
			points := *entry.points
			current.RatingPoints = &points
		}
		if err := s.teamRepo.Update(ctx, current); err != nil {
			return stats, fmt.Errorf("set rank team=%d: %w", teamID, err)
		}
		stats.Updated++
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	if err := s.stagedRepo.MarkProcessed(ctx, ids); err != nil {
		return stats, fmt.Errorf("mark ranking rows processed: %w", err)
	}

	stats.Elapsed = time.Since(start)
	s.logger.InfoContext(ctx, "rankings refresh committed",
		"provider", provider,
		"read", stats.Read,
		"cleared", stats.Cleared,
		"updated", stats.Updated,
		"skipped", stats.Skipped,
		"deduped", stats.Deduped,
		"elapsed", stats.Elapsed,
	)
	return stats, nil
}

func intSetToSlice(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	return out
}
