package standing

import (
	"fmt"
	"sort"
)

// SortTable orders rows by the canonical tie-break (points desc, goal
// differential desc, goals for desc) and assigns positions 1..N with no gaps.
// The same ordering applies whether positions were provider-supplied or
// computed locally; provider positions are discarded here on purpose.
func SortTable(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Points != rows[j].Points {
			return rows[i].Points > rows[j].Points
		}
		if rows[i].GoalDifference() != rows[j].GoalDifference() {
			return rows[i].GoalDifference() > rows[j].GoalDifference()
		}
		if rows[i].GoalsFor != rows[j].GoalsFor {
			return rows[i].GoalsFor > rows[j].GoalsFor
		}
		return rows[i].TeamID < rows[j].TeamID
	})
	for i := range rows {
		rows[i].Position = i + 1
	}
}

// RankByRating assigns the rating-view rank over the same roster: strength
// rating descending, teams without a rating last. Independent of Position.
func RankByRating(rows []Row) {
	indexes := make([]int, len(rows))
	for i := range rows {
		indexes[i] = i
	}
	sort.SliceStable(indexes, func(a, b int) bool {
		ri, rj := rows[indexes[a]].Rating, rows[indexes[b]].Rating
		switch {
		case ri == nil && rj == nil:
			return rows[indexes[a]].TeamID < rows[indexes[b]].TeamID
		case ri == nil:
			return false
		case rj == nil:
			return true
		case *ri != *rj:
			return *ri > *rj
		default:
			return rows[indexes[a]].TeamID < rows[indexes[b]].TeamID
		}
	})
	for rank, idx := range indexes {
		r := rank + 1
		rows[idx].RatingRank = &r
	}
}

// GroupKey buckets rows the way the points-table view is computed:
// one table per (league, division, gender, birth year).
func GroupKey(r Row) string {
	year := 0
	if r.BirthYear != nil {
		year = *r.BirthYear
	}
	return fmt.Sprintf("%d|%s|%s|%d", r.LeagueID, r.Division, r.Gender, year)
}
