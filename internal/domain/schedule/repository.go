package schedule

import (
	"context"
	"time"
)

// GameweekStatusInput carries what DeriveStatus needs for one stored
// gameweek, letting readers recompute status without trusting the cache.
type GameweekStatusInput struct {
	GameweekID    string
	Deadline      time.Time
	MatchStatuses []string
}

// Repository describes schedule persistence needs from use cases.
// ApplySyncPlan is the only schedule-mutating entry point used by sync
// and must be atomic.
type Repository interface {
	ApplySyncPlan(ctx context.Context, plan SyncPlan) (ApplyStats, error)

	GetCurrentSeason(ctx context.Context, competitionID string) (Season, bool, error)
	ListGameweeksBySeason(ctx context.Context, seasonID string) ([]Gameweek, error)
	ListGameweekStatusInputs(ctx context.Context, seasonID string) ([]GameweekStatusInput, error)

	GetMatch(ctx context.Context, matchID string) (Match, bool, error)
	ListMatchesByIDs(ctx context.Context, matchIDs []string) ([]Match, error)
	// UpdateMatchResults overwrites score and status of the given
	// matches without touching schedule structure.
	UpdateMatchResults(ctx context.Context, matches []Match) error
}
