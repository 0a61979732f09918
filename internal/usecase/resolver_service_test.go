package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/pitchrank/pitchrank/internal/domain/league"
	"github.com/pitchrank/pitchrank/internal/domain/sourcemap"
	"github.com/pitchrank/pitchrank/internal/domain/stagedrow"
	"github.com/pitchrank/pitchrank/internal/domain/team"
	"github.com/pitchrank/pitchrank/internal/infrastructure/repository/memory"
)

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func newResolverFixture(teams []team.Team, leagues []league.League, mappings []sourcemap.Mapping) (*ResolverService, *memory.TeamRepository, *memory.LeagueRepository, *memory.SourceMapRepository) {
	teamRepo := memory.NewTeamRepository(teams)
	leagueRepo := memory.NewLeagueRepository(leagues)
	mapRepo := memory.NewSourceMapRepository(mappings)
	svc := NewResolverService(teamRepo, leagueRepo, mapRepo, nil)
	return svc, teamRepo, leagueRepo, mapRepo
}

func stagedTeamRow(provider, teamName, providerID string, birthYear int, gender string) stagedrow.Row {
	row := stagedrow.Row{
		Provider:   provider,
		Kind:       stagedrow.KindStanding,
		TeamName:   teamName,
		Gender:     gender,
		BirthYear:  intPtr(birthYear),
		ReportedAt: time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
	}
	if providerID != "" {
		row.TeamProviderID = strPtr(providerID)
	}
	return row
}

func TestResolverService_ResolveTeam_Tiers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	stored := team.Team{
		ID:            1,
		DisplayName:   "Sporting Blue Valley 2012B",
		CanonicalName: "sporting blue valley 2012b",
		BirthYear:     intPtr(2012),
		Gender:        "B",
		State:         "KS",
	}

	t.Run("exact display name with metadata", func(t *testing.T) {
		svc, _, _, _ := newResolverFixture([]team.Team{stored}, nil, nil)
		rows := []stagedrow.Row{stagedTeamRow("gotsport", "Sporting Blue Valley 2012B", "T1", 2012, "B")}

		st, err := svc.BuildState(ctx, rows, false)
		if err != nil {
			t.Fatalf("BuildState error: %v", err)
		}
		id, err := svc.ResolveTeam(ctx, st, TeamObservation{
			Provider: "gotsport", ProviderID: "T1",
			RawName: "Sporting Blue Valley 2012B", BirthYear: intPtr(2012), Gender: "B",
		})
		if err != nil {
			t.Fatalf("ResolveTeam error: %v", err)
		}
		if id != 1 {
			t.Fatalf("expected id 1, got=%d", id)
		}
		if st.TeamTiers.Tier2 != 1 {
			t.Fatalf("expected one tier-2 hit, got=%+v", st.TeamTiers)
		}
	})

	t.Run("canonical name covers display differences", func(t *testing.T) {
		svc, _, _, _ := newResolverFixture([]team.Team{stored}, nil, nil)
		rows := []stagedrow.Row{stagedTeamRow("gotsport", "SPORTING blue valley 2012b", "", 2012, "B")}

		st, err := svc.BuildState(ctx, rows, false)
		if err != nil {
			t.Fatalf("BuildState error: %v", err)
		}
		id, err := svc.ResolveTeam(ctx, st, TeamObservation{
			Provider: "gotsport",
			RawName:  "SPORTING blue valley 2012b", BirthYear: intPtr(2012), Gender: "B",
		})
		if err != nil {
			t.Fatalf("ResolveTeam error: %v", err)
		}
		if id != 1 {
			t.Fatalf("expected id 1, got=%d", id)
		}
		if st.TeamTiers.Tier3 != 1 {
			t.Fatalf("expected one tier-3 hit, got=%+v", st.TeamTiers)
		}
	})

	t.Run("no match creates", func(t *testing.T) {
		svc, teamRepo, _, _ := newResolverFixture([]team.Team{stored}, nil, nil)
		rows := []stagedrow.Row{stagedTeamRow("gotsport", "Union FC 2013G", "T9", 2013, "G")}

		st, err := svc.BuildState(ctx, rows, false)
		if err != nil {
			t.Fatalf("BuildState error: %v", err)
		}
		id, err := svc.ResolveTeam(ctx, st, TeamObservation{
			Provider: "gotsport", ProviderID: "T9",
			RawName: "Union FC 2013G", BirthYear: intPtr(2013), Gender: "G",
		})
		if err != nil {
			t.Fatalf("ResolveTeam error: %v", err)
		}
		if id <= 0 {
			t.Fatalf("expected a persisted id, got=%d", id)
		}
		if st.TeamTiers.Tier4 != 1 || st.Created != 1 {
			t.Fatalf("expected one create, got tiers=%+v created=%d", st.TeamTiers, st.Created)
		}
		created, ok := teamRepo.Get(id)
		if !ok {
			t.Fatalf("created team not persisted")
		}
		if created.State != team.StateUnknown {
			t.Fatalf("expected unknown-state sentinel, got=%q", created.State)
		}
	})
}

func TestResolverService_SecondRunResolvesByMapping(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, _, _, mapRepo := newResolverFixture(nil, nil, nil)
	rows := []stagedrow.Row{stagedTeamRow("gotsport", "Union FC 2013G", "T9", 2013, "G")}
	obs := TeamObservation{
		Provider: "gotsport", ProviderID: "T9",
		RawName: "Union FC 2013G", BirthYear: intPtr(2013), Gender: "G",
	}

	st, err := svc.BuildState(ctx, rows, false)
	if err != nil {
		t.Fatalf("BuildState error: %v", err)
	}
	firstID, err := svc.ResolveTeam(ctx, st, obs)
	if err != nil {
		t.Fatalf("first ResolveTeam error: %v", err)
	}
	if err := svc.Flush(ctx, st); err != nil {
		t.Fatalf("Flush error: %v", err)
	}
	if _, ok := mapRepo.Get(sourcemap.EntityTeam, "gotsport", "T9"); !ok {
		t.Fatalf("mapping not persisted after flush")
	}

	st2, err := svc.BuildState(ctx, rows, false)
	if err != nil {
		t.Fatalf("second BuildState error: %v", err)
	}
	secondID, err := svc.ResolveTeam(ctx, st2, obs)
	if err != nil {
		t.Fatalf("second ResolveTeam error: %v", err)
	}
	if secondID != firstID {
		t.Fatalf("resolution not stable: first=%d second=%d", firstID, secondID)
	}
	if st2.TeamTiers.Tier1 != 1 || st2.Created != 0 {
		t.Fatalf("expected pure tier-1 second run, got tiers=%+v created=%d", st2.TeamTiers, st2.Created)
	}
}

func TestResolverService_EnrichmentCollisionRedirects(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	bare := team.Team{
		ID:            1,
		DisplayName:   "Rush Academy",
		CanonicalName: "rush academy",
		State:         team.StateUnknown,
	}
	full := team.Team{
		ID:            2,
		DisplayName:   "Rush Academy",
		CanonicalName: "rush academy",
		BirthYear:     intPtr(2012),
		Gender:        "B",
		State:         team.StateUnknown,
	}
	mapping := sourcemap.Mapping{
		EntityType:       sourcemap.EntityTeam,
		Provider:         "gotsport",
		ProviderEntityID: "T1",
		EntityID:         1,
	}

	svc, _, _, mapRepo := newResolverFixture([]team.Team{bare, full}, nil, []sourcemap.Mapping{mapping})
	rows := []stagedrow.Row{stagedTeamRow("gotsport", "Rush Academy", "T1", 2012, "B")}

	st, err := svc.BuildState(ctx, rows, false)
	if err != nil {
		t.Fatalf("BuildState error: %v", err)
	}
	id, err := svc.ResolveTeam(ctx, st, TeamObservation{
		Provider: "gotsport", ProviderID: "T1",
		RawName: "Rush Academy", BirthYear: intPtr(2012), Gender: "B",
	})
	if err != nil {
		t.Fatalf("ResolveTeam error: %v", err)
	}
	if id != 2 {
		t.Fatalf("expected redirect to existing tuple owner 2, got=%d", id)
	}

	if err := svc.Flush(ctx, st); err != nil {
		t.Fatalf("Flush error: %v", err)
	}
	m, ok := mapRepo.Get(sourcemap.EntityTeam, "gotsport", "T1")
	if !ok {
		t.Fatalf("mapping missing after flush")
	}
	if m.EntityID != 2 {
		t.Fatalf("mapping not repointed: got=%d want=2", m.EntityID)
	}
}

func TestResolverService_DryRunTouchesNothing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, teamRepo, _, mapRepo := newResolverFixture(nil, nil, nil)
	rows := []stagedrow.Row{stagedTeamRow("gotsport", "Union FC 2013G", "T9", 2013, "G")}

	st, err := svc.BuildState(ctx, rows, true)
	if err != nil {
		t.Fatalf("BuildState error: %v", err)
	}
	id, err := svc.ResolveTeam(ctx, st, TeamObservation{
		Provider: "gotsport", ProviderID: "T9",
		RawName: "Union FC 2013G", BirthYear: intPtr(2013), Gender: "G",
	})
	if err != nil {
		t.Fatalf("ResolveTeam error: %v", err)
	}
	if id >= 0 {
		t.Fatalf("expected synthetic negative id in dry run, got=%d", id)
	}
	if err := svc.Flush(ctx, st); err != nil {
		t.Fatalf("Flush error: %v", err)
	}
	if teamRepo.Len() != 0 {
		t.Fatalf("dry run persisted %d teams", teamRepo.Len())
	}
	if _, ok := mapRepo.Get(sourcemap.EntityTeam, "gotsport", "T9"); ok {
		t.Fatalf("dry run persisted a mapping")
	}
}

func TestResolverService_ResolveLeague_CreatesAndReuses(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, _, leagueRepo, _ := newResolverFixture(nil, nil, nil)
	row := stagedrow.Row{
		Provider:   "gotsport",
		Kind:       stagedrow.KindStanding,
		TeamName:   "Union FC 2013G",
		LeagueName: "Heartland Premier League",
		ReportedAt: time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
	}
	obs := LeagueObservation{
		Provider:      "gotsport",
		RawName:       "Heartland Premier League",
		State:         "KS",
		Gender:        "G",
		BirthYear:     intPtr(2013),
		SeasonEndYear: 2026,
	}

	st, err := svc.BuildState(ctx, []stagedrow.Row{row}, false)
	if err != nil {
		t.Fatalf("BuildState error: %v", err)
	}
	firstID, err := svc.ResolveLeague(ctx, st, obs)
	if err != nil {
		t.Fatalf("first ResolveLeague error: %v", err)
	}
	if firstID <= 0 {
		t.Fatalf("expected created league id, got=%d", firstID)
	}
	if st.LeagueTiers.Tier4 != 1 {
		t.Fatalf("expected tier-4 create, got=%+v", st.LeagueTiers)
	}

	secondID, err := svc.ResolveLeague(ctx, st, obs)
	if err != nil {
		t.Fatalf("second ResolveLeague error: %v", err)
	}
	if secondID != firstID {
		t.Fatalf("league resolution not stable: first=%d second=%d", firstID, secondID)
	}
	if leagueRepo.Len() != 1 {
		t.Fatalf("expected a single league, got=%d", leagueRepo.Len())
	}
}
