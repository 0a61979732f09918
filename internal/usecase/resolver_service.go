package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pitchrank/pitchrank/internal/domain/league"
	"github.com/pitchrank/pitchrank/internal/domain/sourcemap"
	"github.com/pitchrank/pitchrank/internal/domain/stagedrow"
	"github.com/pitchrank/pitchrank/internal/domain/team"
	"github.com/pitchrank/pitchrank/internal/platform/logging"
	"github.com/pitchrank/pitchrank/internal/platform/names"
)

// TierCounts reports which resolution tier settled each observation in a run.
type TierCounts struct {
	Tier1      int
	Tier2      int
	Tier3      int
	Tier4      int
	Unresolved int
}

func (c TierCounts) Total() int {
	return c.Tier1 + c.Tier2 + c.Tier3 + c.Tier4
}

// TeamObservation is one reported sighting of a team, already reduced to the
// fields resolution cares about.
type TeamObservation struct {
	Provider   string
	ProviderID string
	RawName    string
	BirthYear  *int
	Gender     string
	State      string
}

// LeagueObservation is the league analogue. Leagues resolve by name and
// state only; there is no birth-year or gender degradation for them.
type LeagueObservation struct {
	Provider      string
	ProviderID    string
	RawName       string
	State         string
	Gender        string
	BirthYear     *int
	SeasonEndYear int
}

// ResolverService maps provider-local identities onto canonical entities
// through ordered tiers: memoized source map, exact display-name metadata
// match, canonical-name match, create. It deliberately does no similarity
// matching; a duplicate team can be corrected later, a false merge silently
// corrupts two teams' histories.
type ResolverService struct {
	teamRepo   team.Repository
	leagueRepo league.Repository
	mapRepo    sourcemap.Repository
	logger     *logging.Logger
}

func NewResolverService(
	teamRepo team.Repository,
	leagueRepo league.Repository,
	mapRepo sourcemap.Repository,
	logger *logging.Logger,
) *ResolverService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ResolverService{
		teamRepo:   teamRepo,
		leagueRepo: leagueRepo,
		mapRepo:    mapRepo,
		logger:     logger,
	}
}

// ResolverState is the run-scoped cache built from bulk queries. It is passed
// explicitly through every resolution call so two runs (or two tests) can
// never share lookup state by accident.
type ResolverState struct {
	dryRun          bool
	nextSyntheticID int64

	teamsByID    map[int64]team.Team
	teamsByCanon map[string][]int64
	teamsByTuple map[string]int64
	teamMappings map[string]int64

	leaguesByID    map[int64]league.League
	leaguesByCanon map[string][]int64
	leagueMappings map[string]int64

	dirtyTeams      map[int64]struct{}
	dirtyLeagues    map[int64]struct{}
	pendingMappings map[string]sourcemap.Mapping

	TeamTiers   TierCounts
	LeagueTiers TierCounts
	Created     int
}

// DryRun reports whether this state was built for a preview-only run.
func (st *ResolverState) DryRun() bool { return st.dryRun }

// Team returns the current in-state view of a resolved team.
func (st *ResolverState) Team(id int64) (team.Team, bool) {
	t, ok := st.teamsByID[id]
	return t, ok
}

// League returns the current in-state view of a resolved league.
func (st *ResolverState) League(id int64) (league.League, bool) {
	l, ok := st.leaguesByID[id]
	return l, ok
}

// BuildState primes the run-scoped cache with every entity the batch could
// touch, using one set query per distinct id/name collection instead of one
// round trip per row. This is what lets a run chew through hundreds of
// thousands of rows.
func (s *ResolverService) BuildState(ctx context.Context, rows []stagedrow.Row, dryRun bool) (*ResolverState, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResolverService.BuildState")
	defer span.End()

	st := &ResolverState{
		dryRun:          dryRun,
		nextSyntheticID: -1,
		teamsByID:       make(map[int64]team.Team),
		teamsByCanon:    make(map[string][]int64),
		teamsByTuple:    make(map[string]int64),
		teamMappings:    make(map[string]int64),
		leaguesByID:     make(map[int64]league.League),
		leaguesByCanon:  make(map[string][]int64),
		leagueMappings:  make(map[string]int64),
		dirtyTeams:      make(map[int64]struct{}),
		dirtyLeagues:    make(map[int64]struct{}),
		pendingMappings: make(map[string]sourcemap.Mapping),
	}

	teamIDsByProvider := make(map[string]map[string]struct{})
	leagueIDsByProvider := make(map[string]map[string]struct{})
	teamCanon := make(map[string]struct{})
	leagueCanon := make(map[string]struct{})

	collect := func(byProvider map[string]map[string]struct{}, provider string, id *string) {
		if id == nil || *id == "" {
			return
		}
		if byProvider[provider] == nil {
			byProvider[provider] = make(map[string]struct{})
		}
		byProvider[provider][*id] = struct{}{}
	}

	for _, row := range rows {
		collect(teamIDsByProvider, row.Provider, row.TeamProviderID)
		collect(teamIDsByProvider, row.Provider, row.OpponentProviderID)
		collect(leagueIDsByProvider, row.Provider, row.LeagueProviderID)
		for _, name := range []string{row.TeamName, row.OpponentName} {
			if name != "" {
				teamCanon[names.Canonical(names.CollapseDuplicatePrefix(name))] = struct{}{}
			}
		}
		if row.LeagueName != "" {
			leagueCanon[names.Canonical(row.LeagueName)] = struct{}{}
		}
	}

	mappedTeamIDs := make([]int64, 0)
	for provider, ids := range teamIDsByProvider {
		mappings, err := s.mapRepo.ListByProviderIDs(ctx, sourcemap.EntityTeam, provider, setToSlice(ids))
		if err != nil {
			return nil, fmt.Errorf("list team mappings provider=%s: %w", provider, err)
		}
		for _, m := range mappings {
			st.teamMappings[m.Key()] = m.EntityID
			mappedTeamIDs = append(mappedTeamIDs, m.EntityID)
		}
	}
	mappedLeagueIDs := make([]int64, 0)
	for provider, ids := range leagueIDsByProvider {
		mappings, err := s.mapRepo.ListByProviderIDs(ctx, sourcemap.EntityLeague, provider, setToSlice(ids))
		if err != nil {
			return nil, fmt.Errorf("list league mappings provider=%s: %w", provider, err)
		}
		for _, m := range mappings {
			st.leagueMappings[m.Key()] = m.EntityID
			mappedLeagueIDs = append(mappedLeagueIDs, m.EntityID)
		}
	}

	if len(mappedTeamIDs) > 0 {
		teams, err := s.teamRepo.ListByIDs(ctx, mappedTeamIDs)
		if err != nil {
			return nil, fmt.Errorf("list mapped teams: %w", err)
		}
		for _, t := range teams {
			st.indexTeam(t)
		}
	}
	if len(mappedLeagueIDs) > 0 {
		leagues, err := s.leagueRepo.ListByIDs(ctx, mappedLeagueIDs)
		if err != nil {
			return nil, fmt.Errorf("list mapped leagues: %w", err)
		}
		for _, l := range leagues {
			st.indexLeague(l)
		}
	}

	if len(teamCanon) > 0 {
		teams, err := s.teamRepo.ListByCanonicalNames(ctx, setToSlice(teamCanon))
		if err != nil {
			return nil, fmt.Errorf("list teams by canonical names: %w", err)
		}
		for _, t := range teams {
			st.indexTeam(t)
		}
	}
	if len(leagueCanon) > 0 {
		leagues, err := s.leagueRepo.ListByCanonicalNames(ctx, setToSlice(leagueCanon))
		if err != nil {
			return nil, fmt.Errorf("list leagues by canonical names: %w", err)
		}
		for _, l := range leagues {
			st.indexLeague(l)
		}
	}

	return st, nil
}

// ResolveTeam walks the tiers for one team sighting. A zero id with a nil
// error means the observation is permanently unresolvable and the row should
// be counted as a skip, never retried.
func (s *ResolverService) ResolveTeam(ctx context.Context, st *ResolverState, obs TeamObservation) (int64, error) {
	// Tier 1: memoized mapping plus metadata verification.
	if obs.ProviderID != "" {
		key := sourcemap.Key(sourcemap.EntityTeam, obs.Provider, obs.ProviderID)
		if mappedID, ok := st.teamMappings[key]; ok {
			stored, ok := st.teamsByID[mappedID]
			if ok && stored.MetadataAgrees(obs.BirthYear, obs.Gender) {
				st.TeamTiers.Tier1++
				return s.enrichTeam(st, mappedID, obs), nil
			}
			if ok {
				// The provider-local id drifted or was mis-mapped. Repoint to
				// an existing entity whose metadata does match, if one exists;
				// otherwise keep enriching the imperfect record.
				if altID, found := s.matchTeamByName(st, obs, false); found && altID != mappedID {
					st.TeamTiers.Tier1++
					s.registerTeamMapping(st, obs, altID)
					return s.enrichTeam(st, altID, obs), nil
				}
				st.TeamTiers.Tier1++
				return s.enrichTeam(st, mappedID, obs), nil
			}
		}
	}

	collapsed := names.CollapseDuplicatePrefix(obs.RawName)
	if collapsed == "" {
		st.TeamTiers.Unresolved++
		return 0, nil
	}

	// Tier 2: exact display-name metadata match.
	if id, ok := s.matchTeamByName(st, obs, false); ok {
		st.TeamTiers.Tier2++
		s.registerTeamMapping(st, obs, id)
		return s.enrichTeam(st, id, obs), nil
	}

	// Tier 3: canonical-name match covers cosmetic display differences.
	if id, ok := s.matchTeamByName(st, obs, true); ok {
		st.TeamTiers.Tier3++
		s.registerTeamMapping(st, obs, id)
		return s.enrichTeam(st, id, obs), nil
	}

	// Tier 4: create.
	id, err := s.createTeam(ctx, st, obs, collapsed)
	if err != nil {
		return 0, err
	}
	st.TeamTiers.Tier4++
	s.registerTeamMapping(st, obs, id)
	return id, nil
}

// matchTeamByName finds an existing team by exact name and the closest
// available metadata, degrading name+year+gender -> name+year -> name+gender.
// canonical switches the comparison from display names to canonical names.
func (s *ResolverService) matchTeamByName(st *ResolverState, obs TeamObservation, canonical bool) (int64, bool) {
	collapsed := names.CollapseDuplicatePrefix(obs.RawName)
	if collapsed == "" {
		return 0, false
	}
	canon := names.Canonical(collapsed)
	candidateIDs := st.teamsByCanon[canon]
	if len(candidateIDs) == 0 {
		return 0, false
	}

	candidates := make([]team.Team, 0, len(candidateIDs))
	for _, id := range candidateIDs {
		t := st.teamsByID[id]
		if canonical {
			if t.CanonicalName != canon {
				continue
			}
		} else if t.DisplayName != collapsed {
			continue
		}
		candidates = append(candidates, t)
	}
	if len(candidates) == 0 {
		return 0, false
	}

	passes := []func(t team.Team) bool{
		func(t team.Team) bool {
			return matchYear(t.BirthYear, obs.BirthYear) && t.Gender != "" && t.Gender == obs.Gender
		},
		func(t team.Team) bool { return matchYear(t.BirthYear, obs.BirthYear) && t.BirthYear != nil },
		func(t team.Team) bool { return t.Gender != "" && t.Gender == obs.Gender },
		func(t team.Team) bool { return t.BirthYear == nil && t.Gender == "" },
	}
	for _, pass := range passes {
		hits := make([]team.Team, 0, 1)
		for _, t := range candidates {
			if pass(t) {
				hits = append(hits, t)
			}
		}
		if len(hits) == 0 {
			continue
		}
		// Equally plausible candidates resolve deterministically: best
		// quality score first, then most recently updated, then lowest id.
		sort.SliceStable(hits, func(i, j int) bool {
			if hits[i].QualityScore != hits[j].QualityScore {
				return hits[i].QualityScore > hits[j].QualityScore
			}
			if !hits[i].UpdatedAt.Equal(hits[j].UpdatedAt) {
				return hits[i].UpdatedAt.After(hits[j].UpdatedAt)
			}
			return hits[i].ID < hits[j].ID
		})
		return hits[0].ID, true
	}
	return 0, false
}

func matchYear(stored, observed *int) bool {
	if stored == nil || observed == nil {
		return false
	}
	return *stored == *observed
}

// enrichTeam applies monotonic enhancement and enforces the tuple uniqueness
// invariant: when enrichment would collide with another entity's metadata
// tuple, resolution redirects to that entity instead of writing.
func (s *ResolverService) enrichTeam(st *ResolverState, id int64, obs TeamObservation) int64 {
	current, ok := st.teamsByID[id]
	if !ok {
		return id
	}

	src := team.Team{
		BirthYear: obs.BirthYear,
		Gender:    obs.Gender,
		State:     obs.State,
		ClubName:  names.ExtractClubName(obs.RawName),
	}
	enhanced, changed := team.Enhance(current, src)
	if !changed {
		return id
	}

	if existingID, ok := st.teamsByTuple[enhanced.TupleKey()]; ok && existingID != id {
		s.registerTeamMapping(st, obs, existingID)
		return existingID
	}

	st.reindexTeam(current, enhanced)
	st.dirtyTeams[id] = struct{}{}
	return id
}

func (s *ResolverService) createTeam(ctx context.Context, st *ResolverState, obs TeamObservation, collapsed string) (int64, error) {
	state := strings.TrimSpace(obs.State)
	if state == "" {
		state = team.StateUnknown
	}
	t := team.Team{
		DisplayName:   collapsed,
		CanonicalName: names.Canonical(collapsed),
		ClubName:      names.ExtractClubName(collapsed),
		BirthYear:     obs.BirthYear,
		Gender:        obs.Gender,
		State:         state,
	}
	if err := t.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// The tuple might already be taken by an entity whose display name
	// differs; creating would violate uniqueness, so resolve to it instead.
	if existingID, ok := st.teamsByTuple[t.TupleKey()]; ok {
		return existingID, nil
	}

	if st.dryRun {
		t.ID = st.nextSyntheticID
		st.nextSyntheticID--
	} else {
		id, err := s.teamRepo.Create(ctx, t)
		if err != nil {
			return 0, fmt.Errorf("create team %q: %w", collapsed, err)
		}
		t.ID = id
	}
	st.indexTeam(t)
	st.Created++
	return t.ID, nil
}

// ResolveLeague is the league analogue of ResolveTeam: same tiers, matched
// by name and state only.
func (s *ResolverService) ResolveLeague(ctx context.Context, st *ResolverState, obs LeagueObservation) (int64, error) {
	if obs.ProviderID != "" {
		key := sourcemap.Key(sourcemap.EntityLeague, obs.Provider, obs.ProviderID)
		if mappedID, ok := st.leagueMappings[key]; ok {
			if stored, found := st.leaguesByID[mappedID]; found {
				if stored.State == "" || obs.State == "" || stored.State == obs.State {
					st.LeagueTiers.Tier1++
					s.enrichLeague(st, mappedID, obs)
					return mappedID, nil
				}
				if altID, found := s.matchLeagueByName(st, obs); found && altID != mappedID {
					st.LeagueTiers.Tier1++
					s.registerLeagueMapping(st, obs, altID)
					return altID, nil
				}
				st.LeagueTiers.Tier1++
				s.enrichLeague(st, mappedID, obs)
				return mappedID, nil
			}
		}
	}

	if strings.TrimSpace(obs.RawName) == "" {
		st.LeagueTiers.Unresolved++
		return 0, nil
	}

	if id, ok := s.matchLeagueByName(st, obs); ok {
		// Exact display-name hits are Tier 2, canonical-only hits Tier 3;
		// a single pass distinguishes them by display comparison.
		if l, found := st.leaguesByID[id]; found && l.DisplayName == strings.Join(strings.Fields(obs.RawName), " ") {
			st.LeagueTiers.Tier2++
		} else {
			st.LeagueTiers.Tier3++
		}
		s.registerLeagueMapping(st, obs, id)
		s.enrichLeague(st, id, obs)
		return id, nil
	}

	id, err := s.createLeague(ctx, st, obs)
	if err != nil {
		return 0, err
	}
	st.LeagueTiers.Tier4++
	s.registerLeagueMapping(st, obs, id)
	return id, nil
}

func (s *ResolverService) matchLeagueByName(st *ResolverState, obs LeagueObservation) (int64, bool) {
	canon := names.Canonical(obs.RawName)
	if canon == "" {
		return 0, false
	}
	candidateIDs := st.leaguesByCanon[canon]
	if len(candidateIDs) == 0 {
		return 0, false
	}

	candidates := make([]league.League, 0, len(candidateIDs))
	for _, id := range candidateIDs {
		candidates = append(candidates, st.leaguesByID[id])
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].QualityScore != candidates[j].QualityScore {
			return candidates[i].QualityScore > candidates[j].QualityScore
		}
		if !candidates[i].UpdatedAt.Equal(candidates[j].UpdatedAt) {
			return candidates[i].UpdatedAt.After(candidates[j].UpdatedAt)
		}
		return candidates[i].ID < candidates[j].ID
	})

	if obs.State != "" {
		for _, l := range candidates {
			if l.State == obs.State {
				return l.ID, true
			}
		}
	}
	for _, l := range candidates {
		if l.State == "" || obs.State == "" {
			return l.ID, true
		}
	}
	return 0, false
}

func (s *ResolverService) enrichLeague(st *ResolverState, id int64, obs LeagueObservation) {
	current, ok := st.leaguesByID[id]
	if !ok {
		return
	}
	changed := false
	if current.State == "" && obs.State != "" {
		current.State = obs.State
		changed = true
	}
	if current.Gender == "" && obs.Gender != "" {
		current.Gender = obs.Gender
		changed = true
	}
	if current.BirthYear == nil && obs.BirthYear != nil {
		year := *obs.BirthYear
		current.BirthYear = &year
		changed = true
	}
	if current.SeasonEndYear == 0 && obs.SeasonEndYear > 0 {
		current.SeasonEndYear = obs.SeasonEndYear
		changed = true
	}
	if changed {
		st.leaguesByID[id] = current
		st.dirtyLeagues[id] = struct{}{}
	}
}

func (s *ResolverService) createLeague(ctx context.Context, st *ResolverState, obs LeagueObservation) (int64, error) {
	display := strings.Join(strings.Fields(obs.RawName), " ")
	l := league.League{
		DisplayName:   display,
		CanonicalName: names.Canonical(display),
		State:         obs.State,
		Gender:        obs.Gender,
		BirthYear:     obs.BirthYear,
		SeasonEndYear: obs.SeasonEndYear,
	}
	if err := l.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if st.dryRun {
		l.ID = st.nextSyntheticID
		st.nextSyntheticID--
	} else {
		id, err := s.leagueRepo.Create(ctx, l)
		if err != nil {
			return 0, fmt.Errorf("create league %q: %w", display, err)
		}
		l.ID = id
	}
	st.indexLeague(l)
	st.Created++
	return l.ID, nil
}

func (s *ResolverService) registerTeamMapping(st *ResolverState, obs TeamObservation, id int64) {
	if obs.ProviderID == "" || id == 0 {
		return
	}
	m := sourcemap.Mapping{
		EntityType:       sourcemap.EntityTeam,
		Provider:         obs.Provider,
		ProviderEntityID: obs.ProviderID,
		EntityID:         id,
	}
	st.teamMappings[m.Key()] = id
	st.pendingMappings[m.Key()] = m
}

func (s *ResolverService) registerLeagueMapping(st *ResolverState, obs LeagueObservation, id int64) {
	if obs.ProviderID == "" || id == 0 {
		return
	}
	m := sourcemap.Mapping{
		EntityType:       sourcemap.EntityLeague,
		Provider:         obs.Provider,
		ProviderEntityID: obs.ProviderID,
		EntityID:         id,
	}
	st.leagueMappings[m.Key()] = id
	st.pendingMappings[m.Key()] = m
}

// Flush writes the run's accumulated enrichments and source-map entries in
// batches. Dry runs flush nothing; creates were suppressed earlier with
// synthetic ids, so the store is untouched end to end.
func (s *ResolverService) Flush(ctx context.Context, st *ResolverState) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResolverService.Flush")
	defer span.End()

	if st.dryRun {
		s.logger.InfoContext(ctx, "dry run: skipping resolver flush",
			"dirty_teams", len(st.dirtyTeams),
			"dirty_leagues", len(st.dirtyLeagues),
			"pending_mappings", len(st.pendingMappings),
		)
		return nil
	}

	for id := range st.dirtyTeams {
		if id <= 0 {
			continue
		}
		if err := s.teamRepo.Update(ctx, st.teamsByID[id]); err != nil {
			return fmt.Errorf("update team id=%d: %w", id, err)
		}
	}
	for id := range st.dirtyLeagues {
		if id <= 0 {
			continue
		}
		if err := s.leagueRepo.Update(ctx, st.leaguesByID[id]); err != nil {
			return fmt.Errorf("update league id=%d: %w", id, err)
		}
	}

	if len(st.pendingMappings) > 0 {
		mappings := make([]sourcemap.Mapping, 0, len(st.pendingMappings))
		for _, m := range st.pendingMappings {
			if m.EntityID <= 0 {
				continue
			}
			mappings = append(mappings, m)
		}
		if len(mappings) > 0 {
			if err := s.mapRepo.UpsertMany(ctx, mappings); err != nil {
				return fmt.Errorf("upsert source mappings: %w", err)
			}
		}
	}

	return nil
}

func (st *ResolverState) indexTeam(t team.Team) {
	if _, ok := st.teamsByID[t.ID]; ok {
		return
	}
	st.teamsByID[t.ID] = t
	st.teamsByCanon[t.CanonicalName] = append(st.teamsByCanon[t.CanonicalName], t.ID)
	st.teamsByTuple[t.TupleKey()] = t.ID
}

func (st *ResolverState) reindexTeam(before, after team.Team) {
	st.teamsByID[after.ID] = after
	if before.TupleKey() != after.TupleKey() {
		delete(st.teamsByTuple, before.TupleKey())
		st.teamsByTuple[after.TupleKey()] = after.ID
	}
}

func (st *ResolverState) indexLeague(l league.League) {
	if _, ok := st.leaguesByID[l.ID]; ok {
		return
	}
	st.leaguesByID[l.ID] = l
	st.leaguesByCanon[l.CanonicalName] = append(st.leaguesByCanon[l.CanonicalName], l.ID)
}

func setToSlice(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for item := range set {
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}
