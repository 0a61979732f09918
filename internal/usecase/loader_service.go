package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/pitchrank/pitchrank/internal/domain/stagedrow"
	"github.com/pitchrank/pitchrank/internal/domain/standing"
	"github.com/pitchrank/pitchrank/internal/platform/logging"
	"github.com/pitchrank/pitchrank/internal/platform/names"
	"github.com/pitchrank/pitchrank/internal/platform/resilience"
)

// storeRetry bounds transient store failures on batch-critical operations.
// Exhausting it aborts the batch before any processed-marking, so the next
// invocation picks the same rows up again.
var storeRetry = resilience.RetryConfig{
	MaxAttempts: 3,
	BaseDelay:   200 * time.Millisecond,
	MaxDelay:    2 * time.Second,
}

// LoaderConfig bounds one batch invocation.
type LoaderConfig struct {
	BatchSize     int
	Source        string
	DryRun        bool
	SeasonEndYear int
}

// BatchStats is what an operator sees after a run: enough to judge
// resolution quality without inspecting data directly.
type BatchStats struct {
	Read        int
	Deduped     int
	Skipped     int
	Written     int
	TeamTiers   TierCounts
	LeagueTiers TierCounts
	Created     int
	Elapsed     time.Duration
}

// LoaderService consumes a batch of unprocessed staged rows exactly once:
// bulk resolution, natural-key dedup, total standings overwrite per affected
// league, then processed-marking for every row read regardless of whether it
// individually resolved.
type LoaderService struct {
	stagedRepo stagedrow.Repository
	resolver   *ResolverService
	standings  *StandingsService
	validate   *validator.Validate
	logger     *logging.Logger
	cfg        LoaderConfig
}

func NewLoaderService(
	stagedRepo stagedrow.Repository,
	resolver *ResolverService,
	standings *StandingsService,
	cfg LoaderConfig,
	logger *logging.Logger,
) *LoaderService {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50000
	}
	if cfg.SeasonEndYear <= 0 {
		cfg.SeasonEndYear = time.Now().Year()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &LoaderService{
		stagedRepo: stagedRepo,
		resolver:   resolver,
		standings:  standings,
		validate:   validator.New(),
		logger:     logger,
		cfg:        cfg,
	}
}

// ProcessBatch runs one loader invocation end to end. Rows that cannot be
// resolved are counted and marked processed so a permanently malformed input
// never blocks the batch; transient store failures abort before any
// processed-marking so the next run retries cleanly.
func (s *LoaderService) ProcessBatch(ctx context.Context) (BatchStats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LoaderService.ProcessBatch")
	defer span.End()

	start := time.Now()
	stats := BatchStats{}

	var rows []stagedrow.Row
	err := resilience.Retry(ctx, storeRetry, func(ctx context.Context) error {
		var listErr error
		rows, listErr = s.stagedRepo.ListUnprocessed(ctx, stagedrow.Filter{
			Provider: s.cfg.Source,
			Limit:    s.cfg.BatchSize,
		})
		return listErr
	})
	if err != nil {
		return stats, fmt.Errorf("list unprocessed staged rows: %w", err)
	}
	stats.Read = len(rows)
	if len(rows) == 0 {
		stats.Elapsed = time.Since(start)
		s.logger.InfoContext(ctx, "loader batch empty")
		return stats, nil
	}

	valid := make([]stagedrow.Row, 0, len(rows))
	for _, row := range rows {
		if err := s.validate.Struct(row); err != nil {
			stats.Skipped++
			s.logger.DebugContext(ctx, "staged row failed validation", "id", row.ID, "error", err)
			continue
		}
		if !row.HasTeamIdentity() {
			stats.Skipped++
			continue
		}
		valid = append(valid, row)
	}

	st, err := s.resolver.BuildState(ctx, valid, s.cfg.DryRun)
	if err != nil {
		return stats, fmt.Errorf("build resolver state: %w", err)
	}

	scrapedByKey := make(map[string]standing.Row)
	scrapedOrder := make([]string, 0)
	resultsByLeague := make(map[int64][]standing.MatchResult)
	affected := make(map[int64]struct{})

	for _, row := range valid {
		leagueID, err := s.resolver.ResolveLeague(ctx, st, s.leagueObservation(row))
		if err != nil {
			return stats, err
		}
		if leagueID == 0 {
			stats.Skipped++
			continue
		}

		leagueState := ""
		if l, ok := st.League(leagueID); ok {
			leagueState = l.State
		}

		teamID, err := s.resolver.ResolveTeam(ctx, st, s.teamObservation(row, leagueState))
		if err != nil {
			return stats, err
		}
		if teamID == 0 {
			stats.Skipped++
			continue
		}

		switch row.Kind {
		case stagedrow.KindStanding:
			std := s.buildScrapedStanding(leagueID, teamID, row, st)
			key := std.NaturalKey()
			if _, ok := scrapedByKey[key]; ok {
				stats.Deduped++
			} else {
				scrapedOrder = append(scrapedOrder, key)
			}
			// later rows in the batch supersede earlier ones with the
			// same natural key; only one state per key can be true
			scrapedByKey[key] = std
			affected[leagueID] = struct{}{}

		case stagedrow.KindResult:
			result, ok := s.buildMatchResult(teamID, row)
			if !ok {
				stats.Skipped++
				continue
			}
			resultsByLeague[leagueID] = append(resultsByLeague[leagueID], result)
			// the opponent side is resolved and its mirrored result appended
			// so its form and computed row come from a single report
			if row.OpponentName != "" || row.OpponentProviderID != nil {
				opponentID, err := s.resolver.ResolveTeam(ctx, st, s.opponentObservation(row, leagueState))
				if err != nil {
					return stats, err
				}
				if opponentID != 0 {
					mirror := result
					mirror.TeamID = opponentID
					mirror.OpponentID = result.TeamID
					mirror.GoalsFor, mirror.GoalsAgainst = result.GoalsAgainst, result.GoalsFor
					resultsByLeague[leagueID] = append(resultsByLeague[leagueID], mirror)
				}
			}
			affected[leagueID] = struct{}{}
		}
	}

	scrapedByLeague := make(map[int64][]standing.Row)
	for _, key := range scrapedOrder {
		std := scrapedByKey[key]
		scrapedByLeague[std.LeagueID] = append(scrapedByLeague[std.LeagueID], std)
	}

	tables := make(map[int64][]standing.Row, len(affected))
	for leagueID := range affected {
		table := s.standings.BuildLeagueTable(scrapedByLeague[leagueID], resultsByLeague[leagueID])
		if len(table) > 0 {
			tables[leagueID] = table
		}
	}

	if s.cfg.DryRun {
		for leagueID, table := range tables {
			s.logger.InfoContext(ctx, "dry run: would replace league standings",
				"league_id", leagueID, "rows", len(table))
		}
	} else {
		written, err := s.standings.ReplaceLeagues(ctx, tables)
		if err != nil {
			return stats, err
		}
		stats.Written = written
	}

	if err := s.resolver.Flush(ctx, st); err != nil {
		return stats, err
	}

	if !s.cfg.DryRun {
		ids := make([]int64, 0, len(rows))
		for _, row := range rows {
			ids = append(ids, row.ID)
		}
		err := resilience.Retry(ctx, storeRetry, func(ctx context.Context) error {
			return s.stagedRepo.MarkProcessed(ctx, ids)
		})
		if err != nil {
			return stats, fmt.Errorf("mark staged rows processed: %w", err)
		}
	}

	stats.TeamTiers = st.TeamTiers
	stats.LeagueTiers = st.LeagueTiers
	stats.Created = st.Created
	stats.Elapsed = time.Since(start)

	s.logger.InfoContext(ctx, "loader batch complete",
		"read", stats.Read,
		"deduped", stats.Deduped,
		"skipped", stats.Skipped,
		"written", stats.Written,
		"team_tier1", stats.TeamTiers.Tier1,
		"team_tier2", stats.TeamTiers.Tier2,
		"team_tier3", stats.TeamTiers.Tier3,
		"team_tier4", stats.TeamTiers.Tier4,
		"team_unresolved", stats.TeamTiers.Unresolved,
		"league_tier1", stats.LeagueTiers.Tier1,
		"league_tier4", stats.LeagueTiers.Tier4,
		"created", stats.Created,
		"dry_run", s.cfg.DryRun,
		"elapsed", stats.Elapsed,
	)
	return stats, nil
}

func (s *LoaderService) teamObservation(row stagedrow.Row, leagueState string) TeamObservation {
	return TeamObservation{
		Provider:   row.Provider,
		ProviderID: derefString(row.TeamProviderID),
		RawName:    row.TeamName,
		BirthYear:  s.birthYear(row),
		Gender:     row.Gender,
		State:      leagueState,
	}
}

func (s *LoaderService) opponentObservation(row stagedrow.Row, leagueState string) TeamObservation {
	return TeamObservation{
		Provider:   row.Provider,
		ProviderID: derefString(row.OpponentProviderID),
		RawName:    row.OpponentName,
		BirthYear:  s.birthYear(row),
		Gender:     row.Gender,
		State:      leagueState,
	}
}

func (s *LoaderService) leagueObservation(row stagedrow.Row) LeagueObservation {
	return LeagueObservation{
		Provider:      row.Provider,
		ProviderID:    derefString(row.LeagueProviderID),
		RawName:       row.LeagueName,
		Gender:        row.Gender,
		BirthYear:     s.birthYear(row),
		SeasonEndYear: s.cfg.SeasonEndYear,
	}
}

func (s *LoaderService) birthYear(row stagedrow.Row) *int {
	if row.BirthYear != nil {
		return row.BirthYear
	}
	return names.BirthYearFromAgeGroup(row.AgeGroup, s.cfg.SeasonEndYear)
}

func (s *LoaderService) buildScrapedStanding(leagueID, teamID int64, row stagedrow.Row, st *ResolverState) standing.Row {
	std := standing.Row{
		LeagueID:        leagueID,
		TeamID:          teamID,
		Division:        row.Division,
		Gender:          row.Gender,
		BirthYear:       s.birthYear(row),
		Played:          derefInt(row.Played),
		Won:             derefInt(row.Won),
		Drawn:           derefInt(row.Drawn),
		Lost:            derefInt(row.Lost),
		GoalsFor:        derefInt(row.GoalsFor),
		GoalsAgainst:    derefInt(row.GoalsAgainst),
		Points:          derefInt(row.Points),
		Provenance:      standing.ProvenanceScraped,
		SourceUpdatedAt: timePtr(row.ReportedAt),
	}
	// the strength rating is maintained on the canonical team, not taken
	// from whatever the provider row happened to carry
	if t, ok := st.Team(teamID); ok && t.Rating != nil {
		rating := *t.Rating
		std.Rating = &rating
	} else if row.Rating != nil {
		rating := *row.Rating
		std.Rating = &rating
	}
	return std
}

// buildMatchResult keeps the staged row's table-group dimensions on the
// result so computed rows land in the right (division, gender, birth year)
// group instead of one merged bucket.
func (s *LoaderService) buildMatchResult(teamID int64, row stagedrow.Row) (standing.MatchResult, bool) {
	if row.GoalsScored == nil || row.GoalsConceded == nil || row.MatchDate == nil {
		return standing.MatchResult{}, false
	}
	return standing.MatchResult{
		TeamID:       teamID,
		Division:     row.Division,
		Gender:       row.Gender,
		BirthYear:    s.birthYear(row),
		GoalsFor:     *row.GoalsScored,
		GoalsAgainst: *row.GoalsConceded,
		PlayedAt:     *row.MatchDate,
	}, true
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func timePtr(v time.Time) *time.Time {
	if v.IsZero() {
		return nil
	}
	return &v
}
