package standing

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// FormLength is how many recent completed matches make up a form string.
const FormLength = 5

// MatchResult is one completed match from a team's point of view, used to
// replay form. Raw provider form strings are never trusted. Division, Gender,
// and BirthYear identify the table group the match belongs to; a league's
// divisions never share a points table.
type MatchResult struct {
	TeamID       int64
	OpponentID   int64
	Division     string
	Gender       string
	BirthYear    *int
	GoalsFor     int
	GoalsAgainst int
	PlayedAt     time.Time
}

// Outcome maps a scoreline to its W/D/L letter.
func Outcome(goalsFor, goalsAgainst int) byte {
	switch {
	case goalsFor > goalsAgainst:
		return 'W'
	case goalsFor < goalsAgainst:
		return 'L'
	default:
		return 'D'
	}
}

// Form replays a team's results chronologically and returns the outcomes of
// its most recent matches, oldest first, capped at FormLength.
func Form(results []MatchResult) string {
	if len(results) == 0 {
		return ""
	}

	ordered := make([]MatchResult, len(results))
	copy(ordered, results)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].PlayedAt.Before(ordered[j].PlayedAt)
	})

	if len(ordered) > FormLength {
		ordered = ordered[len(ordered)-FormLength:]
	}

	var b strings.Builder
	b.Grow(len(ordered))
	for _, r := range ordered {
		b.WriteByte(Outcome(r.GoalsFor, r.GoalsAgainst))
	}
	return b.String()
}

// TableFromResults computes points tables (3/1/0) when a provider supplied
// only match results. Teams accumulate separately per table group, so a team
// playing in two divisions gets two rows and divisions never mix. Rows come
// back unordered; callers run SortTable per group.
func TableFromResults(results []MatchResult) []Row {
	type bucket struct {
		row     *Row
		results []MatchResult
	}
	byEntry := make(map[string]*bucket)
	order := make([]string, 0)

	for _, r := range results {
		key := resultGroupKey(r)
		b := byEntry[key]
		if b == nil {
			row := &Row{
				TeamID:     r.TeamID,
				Division:   r.Division,
				Gender:     r.Gender,
				Provenance: ProvenanceComputed,
			}
			if r.BirthYear != nil {
				year := *r.BirthYear
				row.BirthYear = &year
			}
			b = &bucket{row: row}
			byEntry[key] = b
			order = append(order, key)
		}
		b.row.Played++
		b.row.GoalsFor += r.GoalsFor
		b.row.GoalsAgainst += r.GoalsAgainst
		switch Outcome(r.GoalsFor, r.GoalsAgainst) {
		case 'W':
			b.row.Won++
			b.row.Points += 3
		case 'D':
			b.row.Drawn++
			b.row.Points++
		case 'L':
			b.row.Lost++
		}
		b.results = append(b.results, r)
	}

	out := make([]Row, 0, len(byEntry))
	for _, key := range order {
		b := byEntry[key]
		b.row.Form = Form(b.results)
		out = append(out, *b.row)
	}
	return out
}

func resultGroupKey(r MatchResult) string {
	year := 0
	if r.BirthYear != nil {
		year = *r.BirthYear
	}
	return fmt.Sprintf("%d|%s|%s|%d", r.TeamID, r.Division, r.Gender, year)
}
