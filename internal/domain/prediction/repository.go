package prediction

import "context"

// Repository describes prediction persistence needs from use cases. The
// engine only reads predictions and writes their points; submission is
// owned by the surrounding system.
type Repository interface {
	ListUnscoredByMatch(ctx context.Context, matchID string) ([]Prediction, error)
	SetPoints(ctx context.Context, predictionID string, points int) error

	// ListFinishedMatchIDsWithUnscored is the authoritative "what needs
	// scoring" join: matches already finished whose predictions still
	// carry NULL points. A missed scoring pass self-heals through it.
	ListFinishedMatchIDsWithUnscored(ctx context.Context, competitionID string) ([]string, error)

	// RefreshGameweekPoints recomputes the per-gameweek point aggregates
	// for every (league, user) pair that predicted the given match.
	RefreshGameweekPoints(ctx context.Context, matchID string) error
}
