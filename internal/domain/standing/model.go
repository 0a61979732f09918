package standing

import (
	"fmt"
	"time"
)

// Provenance records whether a standings row came straight off a provider
// table or was computed locally from match results.
type Provenance string

const (
	ProvenanceScraped  Provenance = "scraped"
	ProvenanceComputed Provenance = "computed"
)

// Row is one team's record within one league/division for the current
// scoring period. Unique per (league, team, division); recomputed wholesale
// each aggregation run, never patched row by row.
type Row struct {
	LeagueID        int64
	TeamID          int64
	Division        string
	Gender          string
	BirthYear       *int
	Position        int
	Played          int
	Won             int
	Drawn           int
	Lost            int
	GoalsFor        int
	GoalsAgainst    int
	Points          int
	Form            string
	Rating          *float64
	RatingRank      *int
	Provenance      Provenance
	SourceUpdatedAt *time.Time
}

// GoalDifference is derived, never stored independently.
func (r Row) GoalDifference() int {
	return r.GoalsFor - r.GoalsAgainst
}

// NaturalKey identifies the one true state a standings row can hold.
func (r Row) NaturalKey() string {
	return fmt.Sprintf("%d|%d|%s", r.LeagueID, r.TeamID, r.Division)
}
