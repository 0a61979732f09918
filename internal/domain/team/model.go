package team

import (
	"fmt"
	"time"
)

// StateUnknown is the sentinel used when no containing league tells us where
// a team plays.
const StateUnknown = "--"

// Team is the canonical, deduplicated record for one real-world team.
// At most one Team may exist per (CanonicalName, BirthYear, Gender, State)
// tuple; the resolver redirects instead of violating that.
type Team struct {
	ID            int64
	DisplayName   string
	CanonicalName string
	ClubName      string
	BirthYear     *int
	Gender        string
	State         string
	Rating        *float64
	NationalRank  *int
	RatingPoints  *float64
	QualityScore  int
	UpdatedAt     time.Time
}

func (t Team) Validate() error {
	if t.DisplayName == "" {
		return fmt.Errorf("team display name is required")
	}
	if t.CanonicalName == "" {
		return fmt.Errorf("team canonical name is required")
	}
	if t.State == "" {
		return fmt.Errorf("team state is required (use the unknown sentinel)")
	}
	return nil
}

// TupleKey is the dedup uniqueness key. Nil birth years participate as zero
// so that two year-less records still collide.
func (t Team) TupleKey() string {
	year := 0
	if t.BirthYear != nil {
		year = *t.BirthYear
	}
	return fmt.Sprintf("%s|%d|%s|%s", t.CanonicalName, year, t.Gender, t.State)
}

// MetadataAgrees reports whether the stored record is compatible with newly
// observed metadata: each stored field is either unset or equal to the
// observation. Used for Tier-1 mapping verification.
func (t Team) MetadataAgrees(birthYear *int, gender string) bool {
	if t.BirthYear != nil && birthYear != nil && *t.BirthYear != *birthYear {
		return false
	}
	if t.Gender != "" && gender != "" && t.Gender != gender {
		return false
	}
	return true
}
