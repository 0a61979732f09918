// Package stagedrow models the raw ingestion buffer. Provider feeds land
// here verbatim; nothing downstream trusts these rows until the loader has
// resolved them onto canonical entities.
package stagedrow

import "time"

type Kind string

const (
	KindResult   Kind = "result"
	KindStanding Kind = "standing"
)

// Row is one reported fact from a provider, either a match result or a
// standings line. Provider-local ids are nullable because not every source
// exposes stable ids for every entity it mentions.
type Row struct {
	ID        int64  `db:"id" json:"id"`
	Provider  string `db:"provider" json:"provider" validate:"required"`
	Kind      Kind   `db:"kind" json:"kind" validate:"required,oneof=result standing"`
	Processed bool   `db:"processed" json:"processed"`

	TeamName           string  `db:"team_name" json:"teamName"`
	TeamProviderID     *string `db:"team_provider_id" json:"teamProviderId"`
	OpponentName       string  `db:"opponent_name" json:"opponentName"`
	OpponentProviderID *string `db:"opponent_provider_id" json:"opponentProviderId"`
	LeagueName         string  `db:"league_name" json:"leagueName"`
	LeagueProviderID   *string `db:"league_provider_id" json:"leagueProviderId"`

	Gender    string `db:"gender" json:"gender"`
	BirthYear *int   `db:"birth_year" json:"birthYear"`
	AgeGroup  string `db:"age_group" json:"ageGroup"`
	Division  string `db:"division" json:"division"`

	// result rows
	GoalsScored   *int       `db:"goals_scored" json:"goalsScored"`
	GoalsConceded *int       `db:"goals_conceded" json:"goalsConceded"`
	MatchDate     *time.Time `db:"match_date" json:"matchDate"`

	// standing rows
	Played       *int `db:"played" json:"played"`
	Won          *int `db:"won" json:"won"`
	Drawn        *int `db:"drawn" json:"drawn"`
	Lost         *int `db:"lost" json:"lost"`
	GoalsFor     *int `db:"goals_for" json:"goalsFor"`
	GoalsAgainst *int `db:"goals_against" json:"goalsAgainst"`
	Points       *int `db:"points" json:"points"`
	Position     *int `db:"position" json:"position"`

	Rating       *float64 `db:"rating" json:"rating"`
	RatingPoints *float64 `db:"rating_points" json:"ratingPoints"`
	NationalRank *int     `db:"national_rank" json:"nationalRank"`

	ReportedAt time.Time `db:"reported_at" json:"reportedAt" validate:"required"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// HasTeamIdentity reports whether the row names a team at all. Rows without
// any team identity can never resolve and are skipped up front.
func (r Row) HasTeamIdentity() bool {
	if r.TeamName != "" {
		return true
	}
	return r.TeamProviderID != nil && *r.TeamProviderID != ""
}
