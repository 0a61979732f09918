package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/pitchrank/pitchrank/internal/domain/stagedrow"
	"github.com/pitchrank/pitchrank/internal/domain/team"
	"github.com/pitchrank/pitchrank/internal/infrastructure/repository/memory"
)

func floatPtr(v float64) *float64 { return &v }

func rankingsFixture() (*RankingsService, *memory.StagedRowRepository, *memory.TeamRepository) {
	teams := []team.Team{
		{
			ID:            1,
			DisplayName:   "Sporting Blue Valley 2012B",
			CanonicalName: "sporting blue valley 2012b",
			BirthYear:     intPtr(2012),
			Gender:        "B",
			State:         "KS",
			NationalRank:  intPtr(5),
			Rating:        floatPtr(35),
		},
		{
			ID:            2,
			DisplayName:   "KC Athletics 2012B",
			CanonicalName: "kc athletics 2012b",
			BirthYear:     intPtr(2012),
			Gender:        "B",
			State:         "MO",
			NationalRank:  intPtr(9),
		},
	}

	reported := time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)
	rows := []stagedrow.Row{
		{
			Provider:     "rankings",
			Kind:         stagedrow.KindStanding,
			TeamName:     "Sporting Blue Valley 2012B",
			Gender:       "B",
			BirthYear:    intPtr(2012),
			NationalRank: intPtr(2),
			Rating:       floatPtr(40.5),
			RatingPoints: floatPtr(1200),
			ReportedAt:   reported,
		},
		{
			// no rank on the row, nothing to apply
			Provider:   "rankings",
			Kind:       stagedrow.KindStanding,
			TeamName:   "Union FC 2012B",
			Gender:     "B",
			BirthYear:  intPtr(2012),
			ReportedAt: reported,
		},
	}

	stagedRepo := memory.NewStagedRowRepository(rows)
	teamRepo := memory.NewTeamRepository(teams)
	leagueRepo := memory.NewLeagueRepository(nil)
	mapRepo := memory.NewSourceMapRepository(nil)
	resolver := NewResolverService(teamRepo, leagueRepo, mapRepo, nil)
	return NewRankingsService(stagedRepo, teamRepo, resolver, nil), stagedRepo, teamRepo
}

func TestRankingsService_PreviewLeavesStoreAlone(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, stagedRepo, teamRepo := rankingsFixture()

	stats, err := svc.Refresh(ctx, "rankings", 100, false)
	if err != nil {
		t.Fatalf("Refresh error: %v", err)
	}
	if !stats.Preview {
		t.Fatalf("expected preview stats, got=%+v", stats)
	}
	if stats.Read != 2 || stats.Updated != 1 || stats.Skipped != 1 {
		t.Fatalf("unexpected preview stats: %+v", stats)
	}

	t1, _ := teamRepo.Get(1)
	if t1.NationalRank == nil || *t1.NationalRank != 5 {
		t.Fatalf("preview changed stored rank: %+v", t1)
	}
	if stagedRepo.UnprocessedCount() != 2 {
		t.Fatalf("preview consumed staged rows, %d left", stagedRepo.UnprocessedCount())
	}
}

func TestRankingsService_ExecuteClearsScopeBeforeSetting(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, stagedRepo, teamRepo := rankingsFixture()

	stats, err := svc.Refresh(ctx, "rankings", 100, true)
	if err != nil {
		t.Fatalf("Refresh error: %v", err)
	}
	if stats.Preview {
		t.Fatalf("expected committed stats, got=%+v", stats)
	}
	if stats.Cleared != 2 {
		t.Fatalf("expected both in-scope ranks cleared, got=%d", stats.Cleared)
	}
	if stats.Updated != 1 {
		t.Fatalf("expected 1 rank set, got=%d", stats.Updated)
	}

	t1, _ := teamRepo.Get(1)
	if t1.NationalRank == nil || *t1.NationalRank != 2 {
		t.Fatalf("fresh rank not applied: %+v", t1)
	}
	if t1.Rating == nil || *t1.Rating != 40.5 {
		t.Fatalf("fresh rating not applied: %+v", t1)
	}
	if t1.RatingPoints == nil || *t1.RatingPoints != 1200 {
		t.Fatalf("fresh rating points not applied: %+v", t1)
	}

	// a team the provider stopped ranking loses its stale rank
	t2, _ := teamRepo.Get(2)
	if t2.NationalRank != nil {
		t.Fatalf("stale rank survived the refresh: %+v", t2)
	}

	if stagedRepo.UnprocessedCount() != 0 {
		t.Fatalf("ranking rows not marked processed, %d left", stagedRepo.UnprocessedCount())
	}
}
