package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/pitchrank/pitchrank/internal/domain/stagedrow"
)

// Unit is one scrape unit: a provider division whose standings and results
// pages are fetched together. Checkpointing is per unit.
type Unit struct {
	DivisionID string
	LeagueName string
	Gender     string
	AgeGroup   string
	Division   string
}

// Key identifies a unit in checkpoints.
func (u Unit) Key() string {
	return u.DivisionID
}

type divisionEntry struct {
	DivisionID string `json:"divisionId"`
	LeagueName string `json:"leagueName"`
	Gender     string `json:"gender"`
	AgeGroup   string `json:"ageGroup"`
	Division   string `json:"division"`
}

type divisionsEnvelope struct {
	Data []divisionEntry `json:"data"`
}

type standingEntry struct {
	TeamID       string   `json:"teamId"`
	TeamName     string   `json:"teamName"`
	Played       *int     `json:"played"`
	Won          *int     `json:"won"`
	Drawn        *int     `json:"drawn"`
	Lost         *int     `json:"lost"`
	GoalsFor     *int     `json:"goalsFor"`
	GoalsAgainst *int     `json:"goalsAgainst"`
	Points       *int     `json:"points"`
	Position     *int     `json:"position"`
	Rating       *float64 `json:"rating"`
	NationalRank *int     `json:"nationalRank"`
}

type resultEntry struct {
	TeamID        string    `json:"teamId"`
	TeamName      string    `json:"teamName"`
	OpponentID    string    `json:"opponentId"`
	OpponentName  string    `json:"opponentName"`
	GoalsScored   *int      `json:"goalsScored"`
	GoalsConceded *int      `json:"goalsConceded"`
	PlayedAt      time.Time `json:"playedAt"`
}

type standingsEnvelope struct {
	Data []standingEntry `json:"data"`
}

type resultsEnvelope struct {
	Data []resultEntry `json:"data"`
}

// FetchDivisions lists every division the provider currently publishes.
// These become the scrape units for a run.
func (c *Client) FetchDivisions(ctx context.Context) ([]Unit, error) {
	var envelope divisionsEnvelope
	if err := c.doJSON(ctx, "/divisions", nil, &envelope); err != nil {
		return nil, fmt.Errorf("fetch divisions: %w", err)
	}

	units := make([]Unit, 0, len(envelope.Data))
	for _, entry := range envelope.Data {
		if entry.DivisionID == "" {
			continue
		}
		units = append(units, Unit{
			DivisionID: entry.DivisionID,
			LeagueName: entry.LeagueName,
			Gender:     entry.Gender,
			AgeGroup:   entry.AgeGroup,
			Division:   entry.Division,
		})
	}
	return units, nil
}

// FetchStandings pulls one division's standings page and shapes it into
// staging rows for the given provider.
func (c *Client) FetchStandings(ctx context.Context, provider string, unit Unit) ([]stagedrow.Row, error) {
	var envelope standingsEnvelope
	path := fmt.Sprintf("/divisions/%s/standings", unit.DivisionID)
	if err := c.doJSON(ctx, path, nil, &envelope); err != nil {
		return nil, fmt.Errorf("fetch standings division=%s: %w", unit.DivisionID, err)
	}

	now := time.Now().UTC()
	out := make([]stagedrow.Row, 0, len(envelope.Data))
	for _, entry := range envelope.Data {
		row := stagedrow.Row{
			Provider:     provider,
			Kind:         stagedrow.KindStanding,
			TeamName:     entry.TeamName,
			LeagueName:   unit.LeagueName,
			Gender:       unit.Gender,
			AgeGroup:     unit.AgeGroup,
			Division:     unit.Division,
			Played:       entry.Played,
			Won:          entry.Won,
			Drawn:        entry.Drawn,
			Lost:         entry.Lost,
			GoalsFor:     entry.GoalsFor,
			GoalsAgainst: entry.GoalsAgainst,
			Points:       entry.Points,
			Position:     entry.Position,
			Rating:       entry.Rating,
			NationalRank: entry.NationalRank,
			ReportedAt:   now,
		}
		if entry.TeamID != "" {
			id := entry.TeamID
			row.TeamProviderID = &id
		}
		if unit.DivisionID != "" {
			id := unit.DivisionID
			row.LeagueProviderID = &id
		}
		out = append(out, row)
	}
	return out, nil
}

// FetchResults pulls one division's completed match results.
func (c *Client) FetchResults(ctx context.Context, provider string, unit Unit) ([]stagedrow.Row, error) {
	var envelope resultsEnvelope
	path := fmt.Sprintf("/divisions/%s/results", unit.DivisionID)
	if err := c.doJSON(ctx, path, nil, &envelope); err != nil {
		return nil, fmt.Errorf("fetch results division=%s: %w", unit.DivisionID, err)
	}

	now := time.Now().UTC()
	out := make([]stagedrow.Row, 0, len(envelope.Data))
	for _, entry := range envelope.Data {
		playedAt := entry.PlayedAt
		row := stagedrow.Row{
			Provider:      provider,
			Kind:          stagedrow.KindResult,
			TeamName:      entry.TeamName,
			OpponentName:  entry.OpponentName,
			LeagueName:    unit.LeagueName,
			Gender:        unit.Gender,
			AgeGroup:      unit.AgeGroup,
			Division:      unit.Division,
			GoalsScored:   entry.GoalsScored,
			GoalsConceded: entry.GoalsConceded,
			ReportedAt:    now,
		}
		if !playedAt.IsZero() {
			row.MatchDate = &playedAt
		}
		if entry.TeamID != "" {
			id := entry.TeamID
			row.TeamProviderID = &id
		}
		if entry.OpponentID != "" {
			id := entry.OpponentID
			row.OpponentProviderID = &id
		}
		if unit.DivisionID != "" {
			id := unit.DivisionID
			row.LeagueProviderID = &id
		}
		out = append(out, row)
	}
	return out, nil
}
