package postgres

import (
	"time"

	"github.com/pitchrank/pitchrank/internal/domain/team"
)

type teamTableModel struct {
	ID            int64     `db:"id"`
	DisplayName   string    `db:"display_name"`
	CanonicalName string    `db:"canonical_name"`
	ClubName      string    `db:"club_name"`
	BirthYear     *int      `db:"birth_year"`
	Gender        string    `db:"gender"`
	State         string    `db:"state"`
	Rating        *float64  `db:"rating"`
	NationalRank  *int      `db:"national_rank"`
	RatingPoints  *float64  `db:"rating_points"`
	QualityScore  int       `db:"quality_score"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

type teamInsertModel struct {
	DisplayName   string   `db:"display_name"`
	CanonicalName string   `db:"canonical_name"`
	ClubName      string   `db:"club_name"`
	BirthYear     *int     `db:"birth_year"`
	Gender        string   `db:"gender"`
	State         string   `db:"state"`
	Rating        *float64 `db:"rating"`
	NationalRank  *int     `db:"national_rank"`
	RatingPoints  *float64 `db:"rating_points"`
	QualityScore  int      `db:"quality_score"`
}

func (m teamTableModel) toDomain() team.Team {
	return team.Team{
		ID:            m.ID,
		DisplayName:   m.DisplayName,
		CanonicalName: m.CanonicalName,
		ClubName:      m.ClubName,
		BirthYear:     m.BirthYear,
		Gender:        m.Gender,
		State:         m.State,
		Rating:        m.Rating,
		NationalRank:  m.NationalRank,
		RatingPoints:  m.RatingPoints,
		QualityScore:  m.QualityScore,
		UpdatedAt:     m.UpdatedAt,
	}
}

func teamToInsertModel(t team.Team) teamInsertModel {
	return teamInsertModel{
		DisplayName:   t.DisplayName,
		CanonicalName: t.CanonicalName,
		ClubName:      t.ClubName,
		BirthYear:     t.BirthYear,
		Gender:        t.Gender,
		State:         t.State,
		Rating:        t.Rating,
		NationalRank:  t.NationalRank,
		RatingPoints:  t.RatingPoints,
		QualityScore:  t.QualityScore,
	}
}
