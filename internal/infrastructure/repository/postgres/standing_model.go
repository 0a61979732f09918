package postgres

import (
	"time"

	"github.com/pitchrank/pitchrank/internal/domain/standing"
)

type standingTableModel struct {
	ID              int64      `db:"id"`
	LeagueID        int64      `db:"league_id"`
	TeamID          int64      `db:"team_id"`
	Division        string     `db:"division"`
	Gender          string     `db:"gender"`
	BirthYear       *int       `db:"birth_year"`
	Position        int        `db:"position"`
	Played          int        `db:"played"`
	Won             int        `db:"won"`
	Drawn           int        `db:"drawn"`
	Lost            int        `db:"lost"`
	GoalsFor        int        `db:"goals_for"`
	GoalsAgainst    int        `db:"goals_against"`
	Points          int        `db:"points"`
	Form            string     `db:"form"`
	Rating          *float64   `db:"rating"`
	RatingRank      *int       `db:"rating_rank"`
	Provenance      string     `db:"provenance"`
	SourceUpdatedAt *time.Time `db:"source_updated_at"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}

type standingInsertModel struct {
	LeagueID        int64      `db:"league_id"`
	TeamID          int64      `db:"team_id"`
	Division        string     `db:"division"`
	Gender          string     `db:"gender"`
	BirthYear       *int       `db:"birth_year"`
	Position        int        `db:"position"`
	Played          int        `db:"played"`
	Won             int        `db:"won"`
	Drawn           int        `db:"drawn"`
	Lost            int        `db:"lost"`
	GoalsFor        int        `db:"goals_for"`
	GoalsAgainst    int        `db:"goals_against"`
	Points          int        `db:"points"`
	Form            string     `db:"form"`
	Rating          *float64   `db:"rating"`
	RatingRank      *int       `db:"rating_rank"`
	Provenance      string     `db:"provenance"`
	SourceUpdatedAt *time.Time `db:"source_updated_at"`
}

func (m standingTableModel) toDomain() standing.Row {
	return standing.Row{
		LeagueID:        m.LeagueID,
		TeamID:          m.TeamID,
		Division:        m.Division,
		Gender:          m.Gender,
		BirthYear:       m.BirthYear,
		Position:        m.Position,
		Played:          m.Played,
		Won:             m.Won,
		Drawn:           m.Drawn,
		Lost:            m.Lost,
		GoalsFor:        m.GoalsFor,
		GoalsAgainst:    m.GoalsAgainst,
		Points:          m.Points,
		Form:            m.Form,
		Rating:          m.Rating,
		RatingRank:      m.RatingRank,
		Provenance:      standing.Provenance(m.Provenance),
		SourceUpdatedAt: m.SourceUpdatedAt,
	}
}

func standingToInsertModel(leagueID int64, row standing.Row) standingInsertModel {
	return standingInsertModel{
		LeagueID:        leagueID,
		TeamID:          row.TeamID,
		Division:        row.Division,
		Gender:          row.Gender,
		BirthYear:       row.BirthYear,
		Position:        row.Position,
		Played:          row.Played,
		Won:             row.Won,
		Drawn:           row.Drawn,
		Lost:            row.Lost,
		GoalsFor:        row.GoalsFor,
		GoalsAgainst:    row.GoalsAgainst,
		Points:          row.Points,
		Form:            row.Form,
		Rating:          row.Rating,
		RatingRank:      row.RatingRank,
		Provenance:      string(row.Provenance),
		SourceUpdatedAt: row.SourceUpdatedAt,
	}
}
