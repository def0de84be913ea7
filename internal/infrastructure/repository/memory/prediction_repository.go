package memory

import (
	"context"
	"sort"

	"github.com/predictleague/predictor/internal/domain/prediction"
	"github.com/predictleague/predictor/internal/domain/schedule"
)

type PredictionRepository struct {
	store *Store
}

func NewPredictionRepository(store *Store) *PredictionRepository {
	return &PredictionRepository{store: store}
}

func (r *PredictionRepository) ListUnscoredByMatch(_ context.Context, matchID string) ([]prediction.Prediction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]prediction.Prediction, 0)
	for _, p := range r.store.predictions {
		if p.MatchID == matchID && p.Points == nil {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *PredictionRepository) SetPoints(_ context.Context, predictionID string, points int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	p, ok := r.store.predictions[predictionID]
	if !ok {
		return nil
	}
	p.Points = &points
	r.store.predictions[predictionID] = p

	return nil
}

func (r *PredictionRepository) ListFinishedMatchIDsWithUnscored(_ context.Context, competitionID string) ([]string, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, p := range s.predictions {
		if p.Points != nil || seen[p.MatchID] {
			continue
		}
		match, ok := s.matches[p.MatchID]
		if !ok || !match.HasFinalScore() {
			continue
		}
		if !s.matchInCompetitionLocked(match, competitionID) {
			continue
		}
		seen[p.MatchID] = true
		out = append(out, p.MatchID)
	}
	sort.Strings(out)

	return out, nil
}

func (s *Store) matchInCompetitionLocked(match schedule.Match, competitionID string) bool {
	md, ok := s.matchdays[match.MatchdayID]
	if !ok {
		return false
	}
	gw, ok := s.gameweeks[md.GameweekID]
	if !ok {
		return false
	}
	season, ok := s.seasons[gw.SeasonID]
	if !ok {
		return false
	}
	return season.CompetitionID == competitionID
}

func (r *PredictionRepository) RefreshGameweekPoints(_ context.Context, matchID string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	gameweekID, ok := s.gameweekIDForMatch(matchID)
	if !ok {
		return nil
	}

	gameweekMatches := make(map[string]bool)
	for _, md := range s.matchdays {
		if md.GameweekID != gameweekID {
			continue
		}
		for id, match := range s.matches {
			if match.MatchdayID == md.ID {
				gameweekMatches[id] = true
			}
		}
	}

	type pair struct{ leagueID, userID string }
	affected := make(map[pair]bool)
	for _, p := range s.predictions {
		if p.MatchID == matchID {
			affected[pair{p.LeagueID, p.UserID}] = true
		}
	}

	for who := range affected {
		total := 0
		for _, p := range s.predictions {
			if p.LeagueID != who.leagueID || p.UserID != who.userID || p.Points == nil {
				continue
			}
			if gameweekMatches[p.MatchID] {
				total += *p.Points
			}
		}
		s.gameweekPoints[pointsKey{who.leagueID, who.userID, gameweekID}] = total
	}

	return nil
}
