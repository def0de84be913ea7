package team

import "context"

// Repository describes team persistence needs from use cases.
type Repository interface {
	ListByCompetition(ctx context.Context, competitionID string) ([]Team, error)
	// UpsertAll inserts new teams and refreshes cosmetic fields
	// (name, short name, code, crest) of existing ones.
	UpsertAll(ctx context.Context, teams []Team) error
}
