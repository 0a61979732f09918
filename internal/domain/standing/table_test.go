package standing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func TestSortTableTieBreak(t *testing.T) {
	t.Parallel()

	// A (10 pts, GD +5), B (10 pts, GD +3), C (9 pts, GD +9)
	rows := []Row{
		{TeamID: 3, Points: 9, GoalsFor: 12, GoalsAgainst: 3},
		{TeamID: 2, Points: 10, GoalsFor: 8, GoalsAgainst: 5},
		{TeamID: 1, Points: 10, GoalsFor: 9, GoalsAgainst: 4},
	}

	SortTable(rows)

	require.Len(t, rows, 3)
	assert.Equal(t, int64(1), rows[0].TeamID)
	assert.Equal(t, int64(2), rows[1].TeamID)
	assert.Equal(t, int64(3), rows[2].TeamID)
	assert.Equal(t, []int{1, 2, 3}, []int{rows[0].Position, rows[1].Position, rows[2].Position})
}

func TestSortTableGoalsForBreaksEqualDifference(t *testing.T) {
	t.Parallel()

	rows := []Row{
		{TeamID: 1, Points: 7, GoalsFor: 10, GoalsAgainst: 8},
		{TeamID: 2, Points: 7, GoalsFor: 14, GoalsAgainst: 12},
	}

	SortTable(rows)

	assert.Equal(t, int64(2), rows[0].TeamID)
	assert.Equal(t, 1, rows[0].Position)
	assert.Equal(t, 2, rows[1].Position)
}

func TestRankByRatingNullsLast(t *testing.T) {
	t.Parallel()

	rows := []Row{
		{TeamID: 1, Position: 1},
		{TeamID: 2, Position: 2, Rating: floatPtr(88.2)},
		{TeamID: 3, Position: 3, Rating: floatPtr(91.0)},
	}

	RankByRating(rows)

	require.NotNil(t, rows[2].RatingRank)
	assert.Equal(t, 1, *rows[2].RatingRank)
	assert.Equal(t, 2, *rows[1].RatingRank)
	assert.Equal(t, 3, *rows[0].RatingRank)
	// points-table position untouched
	assert.Equal(t, 1, rows[0].Position)
}

func TestFormReplaysLastFiveOldestFirst(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	results := []MatchResult{
		{TeamID: 1, GoalsFor: 2, GoalsAgainst: 0, PlayedAt: base.AddDate(0, 0, 6)},
		{TeamID: 1, GoalsFor: 1, GoalsAgainst: 1, PlayedAt: base.AddDate(0, 0, 1)},
		{TeamID: 1, GoalsFor: 0, GoalsAgainst: 3, PlayedAt: base.AddDate(0, 0, 2)},
		{TeamID: 1, GoalsFor: 4, GoalsAgainst: 1, PlayedAt: base},
		{TeamID: 1, GoalsFor: 2, GoalsAgainst: 2, PlayedAt: base.AddDate(0, 0, 4)},
		{TeamID: 1, GoalsFor: 3, GoalsAgainst: 2, PlayedAt: base.AddDate(0, 0, 5)},
	}

	// oldest (W) falls off; remaining in date order: D L D W W
	assert.Equal(t, "DLDWW", Form(results))
	assert.Equal(t, "", Form(nil))
}

func TestTableFromResultsKeepsDivisionsApart(t *testing.T) {
	t.Parallel()

	year := 2012
	base := time.Date(2026, 4, 4, 0, 0, 0, 0, time.UTC)
	results := []MatchResult{
		{TeamID: 1, Division: "Premier", Gender: "B", BirthYear: &year, GoalsFor: 2, GoalsAgainst: 0, PlayedAt: base},
		{TeamID: 2, Division: "Gold", Gender: "B", BirthYear: &year, GoalsFor: 1, GoalsAgainst: 0, PlayedAt: base},
		// team 1 also guests in the Gold bracket; that loss must not touch
		// its Premier record
		{TeamID: 1, Division: "Gold", Gender: "B", BirthYear: &year, GoalsFor: 0, GoalsAgainst: 3, PlayedAt: base.AddDate(0, 0, 1)},
	}

	rows := TableFromResults(results)
	require.Len(t, rows, 3)

	assert.Equal(t, int64(1), rows[0].TeamID)
	assert.Equal(t, "Premier", rows[0].Division)
	assert.Equal(t, 3, rows[0].Points)
	assert.Equal(t, "W", rows[0].Form)
	assert.Equal(t, "B", rows[0].Gender)
	require.NotNil(t, rows[0].BirthYear)
	assert.Equal(t, 2012, *rows[0].BirthYear)

	assert.Equal(t, int64(1), rows[2].TeamID)
	assert.Equal(t, "Gold", rows[2].Division)
	assert.Equal(t, 0, rows[2].Points)
	assert.Equal(t, "L", rows[2].Form)
	assert.Equal(t, 1, rows[2].Played)
}

func TestTableFromResults(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	results := []MatchResult{
		{TeamID: 1, OpponentID: 2, GoalsFor: 2, GoalsAgainst: 1, PlayedAt: base},
		{TeamID: 2, OpponentID: 1, GoalsFor: 1, GoalsAgainst: 2, PlayedAt: base},
		{TeamID: 1, OpponentID: 3, GoalsFor: 1, GoalsAgainst: 1, PlayedAt: base.AddDate(0, 0, 7)},
		{TeamID: 3, OpponentID: 1, GoalsFor: 1, GoalsAgainst: 1, PlayedAt: base.AddDate(0, 0, 7)},
		{TeamID: 2, OpponentID: 3, GoalsFor: 0, GoalsAgainst: 3, PlayedAt: base.AddDate(0, 0, 14)},
		{TeamID: 3, OpponentID: 2, GoalsFor: 3, GoalsAgainst: 0, PlayedAt: base.AddDate(0, 0, 14)},
	}

	rows := TableFromResults(results)
	SortTable(rows)

	require.Len(t, rows, 3)
	// teams 1 and 3 both sit on 4 points; team 3's +3 goal difference wins
	assert.Equal(t, int64(3), rows[0].TeamID)
	assert.Equal(t, 4, rows[0].Points)
	assert.Equal(t, "DW", rows[0].Form)
	assert.Equal(t, int64(1), rows[1].TeamID)
	assert.Equal(t, 4, rows[1].Points)
	assert.Equal(t, "WD", rows[1].Form)
	assert.Equal(t, int64(2), rows[2].TeamID)
	assert.Equal(t, 0, rows[2].Points)
	for i, row := range rows {
		assert.Equal(t, i+1, row.Position)
		assert.Equal(t, ProvenanceComputed, row.Provenance)
	}
}
