package memory

import (
	"context"
	"sort"

	"github.com/predictleague/predictor/internal/domain/prediction"
	"github.com/predictleague/predictor/internal/domain/standings"
)

type StandingsRepository struct {
	store *Store
}

func NewStandingsRepository(store *Store) *StandingsRepository {
	return &StandingsRepository{store: store}
}

func (r *StandingsRepository) AggregateByLeague(_ context.Context, leagueID string) ([]standings.MemberTotals, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]standings.MemberTotals, 0, len(s.leagueMembers[leagueID]))
	for _, userID := range s.leagueMembers[leagueID] {
		totals := standings.MemberTotals{UserID: userID}
		gameweeks := make(map[string]bool)
		for _, p := range s.predictions {
			if p.LeagueID != leagueID || p.UserID != userID || p.Points == nil {
				continue
			}
			totals.TotalPoints += *p.Points
			switch *p.Points {
			case prediction.PointsExact:
				totals.ExactScores++
			case prediction.PointsResult:
				totals.CorrectResults++
			}
			if gwID, ok := s.gameweekIDForMatch(p.MatchID); ok {
				gameweeks[gwID] = true
			}
		}
		totals.GameweeksPlayed = len(gameweeks)
		out = append(out, totals)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalPoints != out[j].TotalPoints {
			return out[i].TotalPoints > out[j].TotalPoints
		}
		if out[i].ExactScores != out[j].ExactScores {
			return out[i].ExactScores > out[j].ExactScores
		}
		return out[i].UserID < out[j].UserID
	})

	return out, nil
}

func (r *StandingsRepository) GetLeagueCompetition(_ context.Context, leagueID string) (string, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	competitionID, ok := r.store.leagueCompetitions[leagueID]
	return competitionID, ok, nil
}
