package standing

import "context"

// Repository describes standings persistence needs from use cases.
// ReplaceByLeague overwrites every row for the league in one transaction so
// positions inside a group are always internally consistent.
type Repository interface {
	ListByLeague(ctx context.Context, leagueID int64) ([]Row, error)
	ReplaceByLeague(ctx context.Context, leagueID int64, rows []Row) error
}
