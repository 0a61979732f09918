package postgres

import (
	"time"

	"github.com/pitchrank/pitchrank/internal/domain/league"
)

type leagueTableModel struct {
	ID            int64     `db:"id"`
	DisplayName   string    `db:"display_name"`
	CanonicalName string    `db:"canonical_name"`
	State         string    `db:"state"`
	Gender        string    `db:"gender"`
	BirthYear     *int      `db:"birth_year"`
	SeasonEndYear int       `db:"season_end_year"`
	QualityScore  int       `db:"quality_score"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

type leagueInsertModel struct {
	DisplayName   string `db:"display_name"`
	CanonicalName string `db:"canonical_name"`
	State         string `db:"state"`
	Gender        string `db:"gender"`
	BirthYear     *int   `db:"birth_year"`
	SeasonEndYear int    `db:"season_end_year"`
	QualityScore  int    `db:"quality_score"`
}

func (m leagueTableModel) toDomain() league.League {
	return league.League{
		ID:            m.ID,
		DisplayName:   m.DisplayName,
		CanonicalName: m.CanonicalName,
		State:         m.State,
		Gender:        m.Gender,
		BirthYear:     m.BirthYear,
		SeasonEndYear: m.SeasonEndYear,
		QualityScore:  m.QualityScore,
		UpdatedAt:     m.UpdatedAt,
	}
}

func leagueToInsertModel(l league.League) leagueInsertModel {
	return leagueInsertModel{
		DisplayName:   l.DisplayName,
		CanonicalName: l.CanonicalName,
		State:         l.State,
		Gender:        l.Gender,
		BirthYear:     l.BirthYear,
		SeasonEndYear: l.SeasonEndYear,
		QualityScore:  l.QualityScore,
	}
}
