package postgres

import (
	"time"

	"github.com/pitchrank/pitchrank/internal/domain/stagedrow"
)

type stagedRowTableModel struct {
	ID        int64  `db:"id"`
	Provider  string `db:"provider"`
	Kind      string `db:"kind"`
	Processed bool   `db:"processed"`

	TeamName           string  `db:"team_name"`
	TeamProviderID     *string `db:"team_provider_id"`
	OpponentName       string  `db:"opponent_name"`
	OpponentProviderID *string `db:"opponent_provider_id"`
	LeagueName         string  `db:"league_name"`
	LeagueProviderID   *string `db:"league_provider_id"`

	Gender    string `db:"gender"`
	BirthYear *int   `db:"birth_year"`
	AgeGroup  string `db:"age_group"`
	Division  string `db:"division"`

	GoalsScored   *int       `db:"goals_scored"`
	GoalsConceded *int       `db:"goals_conceded"`
	MatchDate     *time.Time `db:"match_date"`

	Played       *int `db:"played"`
	Won          *int `db:"won"`
	Drawn        *int `db:"drawn"`
	Lost         *int `db:"lost"`
	GoalsFor     *int `db:"goals_for"`
	GoalsAgainst *int `db:"goals_against"`
	Points       *int `db:"points"`
	Position     *int `db:"position"`

	Rating       *float64 `db:"rating"`
	RatingPoints *float64 `db:"rating_points"`
	NationalRank *int     `db:"national_rank"`

	ReportedAt time.Time `db:"reported_at"`
	CreatedAt  time.Time `db:"created_at"`
}

type stagedRowInsertModel struct {
	Provider string `db:"provider"`
	Kind     string `db:"kind"`

	TeamName           string  `db:"team_name"`
	TeamProviderID     *string `db:"team_provider_id"`
	OpponentName       string  `db:"opponent_name"`
	OpponentProviderID *string `db:"opponent_provider_id"`
	LeagueName         string  `db:"league_name"`
	LeagueProviderID   *string `db:"league_provider_id"`

	Gender    string `db:"gender"`
	BirthYear *int   `db:"birth_year"`
	AgeGroup  string `db:"age_group"`
	Division  string `db:"division"`

	GoalsScored   *int       `db:"goals_scored"`
	GoalsConceded *int       `db:"goals_conceded"`
	MatchDate     *time.Time `db:"match_date"`

	Played       *int `db:"played"`
	Won          *int `db:"won"`
	Drawn        *int `db:"drawn"`
	Lost         *int `db:"lost"`
	GoalsFor     *int `db:"goals_for"`
	GoalsAgainst *int `db:"goals_against"`
	Points       *int `db:"points"`
	Position     *int `db:"position"`

	Rating       *float64 `db:"rating"`
	RatingPoints *float64 `db:"rating_points"`
	NationalRank *int     `db:"national_rank"`

	ReportedAt time.Time `db:"reported_at"`
}

func (m stagedRowTableModel) toDomain() stagedrow.Row {
	return stagedrow.Row{
		ID:                 m.ID,
		Provider:           m.Provider,
		Kind:               stagedrow.Kind(m.Kind),
		Processed:          m.Processed,
		TeamName:           m.TeamName,
		TeamProviderID:     m.TeamProviderID,
		OpponentName:       m.OpponentName,
		OpponentProviderID: m.OpponentProviderID,
		LeagueName:         m.LeagueName,
		LeagueProviderID:   m.LeagueProviderID,
		Gender:             m.Gender,
		BirthYear:          m.BirthYear,
		AgeGroup:           m.AgeGroup,
		Division:           m.Division,
		GoalsScored:        m.GoalsScored,
		GoalsConceded:      m.GoalsConceded,
		MatchDate:          m.MatchDate,
		Played:             m.Played,
		Won:                m.Won,
		Drawn:              m.Drawn,
		Lost:               m.Lost,
		GoalsFor:           m.GoalsFor,
		GoalsAgainst:       m.GoalsAgainst,
		Points:             m.Points,
		Position:           m.Position,
		Rating:             m.Rating,
		RatingPoints:       m.RatingPoints,
		NationalRank:       m.NationalRank,
		ReportedAt:         m.ReportedAt,
		CreatedAt:          m.CreatedAt,
	}
}

func stagedRowToInsertModel(row stagedrow.Row) stagedRowInsertModel {
	return stagedRowInsertModel{
		Provider:           row.Provider,
		Kind:               string(row.Kind),
		TeamName:           row.TeamName,
		TeamProviderID:     row.TeamProviderID,
		OpponentName:       row.OpponentName,
		OpponentProviderID: row.OpponentProviderID,
		LeagueName:         row.LeagueName,
		LeagueProviderID:   row.LeagueProviderID,
		Gender:             row.Gender,
		BirthYear:          row.BirthYear,
		AgeGroup:           row.AgeGroup,
		Division:           row.Division,
		GoalsScored:        row.GoalsScored,
		GoalsConceded:      row.GoalsConceded,
		MatchDate:          row.MatchDate,
		Played:             row.Played,
		Won:                row.Won,
		Drawn:              row.Drawn,
		Lost:               row.Lost,
		GoalsFor:           row.GoalsFor,
		GoalsAgainst:       row.GoalsAgainst,
		Points:             row.Points,
		Position:           row.Position,
		Rating:             row.Rating,
		RatingPoints:       row.RatingPoints,
		NationalRank:       row.NationalRank,
		ReportedAt:         row.ReportedAt,
	}
}
