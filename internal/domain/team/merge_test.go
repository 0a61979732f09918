package team

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int          { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestEnhanceFillsGapsOnly(t *testing.T) {
	t.Parallel()

	dst := Team{DisplayName: "Kansas Rush 14B", CanonicalName: "kansas rush 14b", State: StateUnknown}
	src := Team{BirthYear: intPtr(2014), Gender: "B", State: "KS", ClubName: "Kansas Rush"}

	out, changed := Enhance(dst, src)
	require.True(t, changed)
	require.NotNil(t, out.BirthYear)
	assert.Equal(t, 2014, *out.BirthYear)
	assert.Equal(t, "B", out.Gender)
	assert.Equal(t, "KS", out.State)
	assert.Equal(t, "Kansas Rush", out.ClubName)
}

func TestEnhanceNeverRegressesToNil(t *testing.T) {
	t.Parallel()

	dst := Team{
		DisplayName:   "Kansas Rush 14B",
		CanonicalName: "kansas rush 14b",
		State:         "KS",
		BirthYear:     intPtr(2014),
		Gender:        "B",
		NationalRank:  intPtr(12),
		Rating:        floatPtr(71.5),
	}
	src := Team{State: StateUnknown}

	out, changed := Enhance(dst, src)
	assert.False(t, changed)
	require.NotNil(t, out.BirthYear)
	assert.Equal(t, 2014, *out.BirthYear)
	assert.Equal(t, "KS", out.State)
	require.NotNil(t, out.NationalRank)
	assert.Equal(t, 12, *out.NationalRank)
	require.NotNil(t, out.Rating)
	assert.Equal(t, 71.5, *out.Rating)
}

func TestEnhanceBestOfComparators(t *testing.T) {
	t.Parallel()

	dst := Team{
		DisplayName:   "x",
		CanonicalName: "x",
		State:         StateUnknown,
		NationalRank:  intPtr(20),
		Rating:        floatPtr(60),
		RatingPoints:  floatPtr(1400),
	}

	// lower rank is better, higher rating/points are better
	out, changed := Enhance(dst, Team{NationalRank: intPtr(8), Rating: floatPtr(55), RatingPoints: floatPtr(1500)})
	require.True(t, changed)
	assert.Equal(t, 8, *out.NationalRank)
	assert.Equal(t, 60.0, *out.Rating)
	assert.Equal(t, 1500.0, *out.RatingPoints)

	// worse values on every comparator leave dst untouched
	out2, changed2 := Enhance(out, Team{NationalRank: intPtr(30), Rating: floatPtr(10), RatingPoints: floatPtr(100)})
	assert.False(t, changed2)
	assert.Equal(t, 8, *out2.NationalRank)
	assert.Equal(t, 60.0, *out2.Rating)
	assert.Equal(t, 1500.0, *out2.RatingPoints)
}

func TestMetadataAgrees(t *testing.T) {
	t.Parallel()

	stored := Team{BirthYear: intPtr(2014), Gender: "B"}
	assert.True(t, stored.MetadataAgrees(intPtr(2014), "B"))
	assert.True(t, stored.MetadataAgrees(nil, ""))
	assert.False(t, stored.MetadataAgrees(intPtr(2013), "B"))
	assert.False(t, stored.MetadataAgrees(intPtr(2014), "G"))

	empty := Team{}
	assert.True(t, empty.MetadataAgrees(intPtr(2014), "B"))
}

func TestTupleKeyCollapsesNilYear(t *testing.T) {
	t.Parallel()

	a := Team{CanonicalName: "kansas rush", Gender: "B", State: "KS"}
	b := Team{CanonicalName: "kansas rush", Gender: "B", State: "KS"}
	assert.Equal(t, a.TupleKey(), b.TupleKey())

	c := Team{CanonicalName: "kansas rush", BirthYear: intPtr(2014), Gender: "B", State: "KS"}
	assert.NotEqual(t, a.TupleKey(), c.TupleKey())
}
