package standings

import "context"

// Repository reads membership-scoped aggregates for a league. League
// rows themselves are owned by the surrounding system; the engine only
// needs each league's competition and member set.
type Repository interface {
	// AggregateByLeague returns one row per league member, zeros
	// included for members without scored predictions.
	AggregateByLeague(ctx context.Context, leagueID string) ([]MemberTotals, error)
	GetLeagueCompetition(ctx context.Context, leagueID string) (string, bool, error)
}
