package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/predictleague/predictor/internal/domain/team"
)

type TeamRepository struct {
	store *Store
}

func NewTeamRepository(store *Store) *TeamRepository {
	return &TeamRepository{store: store}
}

func (r *TeamRepository) ListByCompetition(_ context.Context, competitionID string) ([]team.Team, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]team.Team, 0)
	for _, item := range r.store.teams {
		if item.CompetitionID == competitionID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})

	return out, nil
}

func (r *TeamRepository) UpsertAll(_ context.Context, teams []team.Team) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, item := range teams {
		if strings.TrimSpace(item.ID) == "" {
			continue
		}
		r.store.teams[item.ID] = item
	}

	return nil
}
