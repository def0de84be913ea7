package memory

import (
	"context"
	"sort"

	"github.com/predictleague/predictor/internal/domain/schedule"
)

type ScheduleRepository struct {
	store *Store
}

func NewScheduleRepository(store *Store) *ScheduleRepository {
	return &ScheduleRepository{store: store}
}

func (r *ScheduleRepository) ApplySyncPlan(_ context.Context, plan schedule.SyncPlan) (schedule.ApplyStats, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := schedule.ApplyStats{}

	if plan.ReclaimLegacyGameweeks {
		stats.LegacyGameweeks = s.reclaimLegacyGameweeksLocked(plan.Season.ID)
	}

	if plan.Season.IsCurrent {
		for id, season := range s.seasons {
			if season.CompetitionID == plan.Season.CompetitionID && id != plan.Season.ID {
				season.IsCurrent = false
				s.seasons[id] = season
			}
		}
	}
	s.seasons[plan.Season.ID] = plan.Season

	for _, t := range plan.Teams {
		if _, exists := s.teams[t.ID]; !exists {
			s.teams[t.ID] = t
		}
	}

	for _, gwPlan := range plan.Gameweeks {
		s.gameweeks[gwPlan.Gameweek.ID] = gwPlan.Gameweek
		stats.GameweeksWritten++
		for _, mdPlan := range gwPlan.Matchdays {
			s.matchdays[mdPlan.Matchday.ID] = mdPlan.Matchday
			for _, match := range mdPlan.Matches {
				s.matches[match.ID] = match
				stats.MatchesSynced++
			}
		}
	}

	return stats, nil
}

func (s *Store) reclaimLegacyGameweeksLocked(seasonID string) int {
	legacy := make(map[string]bool)
	for id, gw := range s.gameweeks {
		if gw.SeasonID == seasonID && schedule.IsLegacyCupGameweekID(seasonID, id) {
			legacy[id] = true
		}
	}
	if len(legacy) == 0 {
		return 0
	}

	doomedMatchdays := make(map[string]bool)
	for id, md := range s.matchdays {
		if legacy[md.GameweekID] {
			doomedMatchdays[id] = true
		}
	}
	doomedMatches := make(map[string]bool)
	for id, match := range s.matches {
		if doomedMatchdays[match.MatchdayID] {
			doomedMatches[id] = true
		}
	}

	for id, p := range s.predictions {
		if doomedMatches[p.MatchID] {
			delete(s.predictions, id)
		}
	}
	for key := range s.gameweekPoints {
		if legacy[key.gameweekID] {
			delete(s.gameweekPoints, key)
		}
	}
	for id := range doomedMatches {
		delete(s.matches, id)
	}
	for id := range doomedMatchdays {
		delete(s.matchdays, id)
	}
	for id := range legacy {
		delete(s.gameweeks, id)
	}

	return len(legacy)
}

func (r *ScheduleRepository) GetCurrentSeason(_ context.Context, competitionID string) (schedule.Season, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, season := range r.store.seasons {
		if season.CompetitionID == competitionID && season.IsCurrent {
			return season, true, nil
		}
	}

	return schedule.Season{}, false, nil
}

func (r *ScheduleRepository) ListGameweeksBySeason(_ context.Context, seasonID string) ([]schedule.Gameweek, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]schedule.Gameweek, 0)
	for _, gw := range r.store.gameweeks {
		if gw.SeasonID == seasonID {
			out = append(out, gw)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })

	return out, nil
}

func (r *ScheduleRepository) ListGameweekStatusInputs(_ context.Context, seasonID string) ([]schedule.GameweekStatusInput, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	gameweeks := make([]schedule.Gameweek, 0)
	for _, gw := range s.gameweeks {
		if gw.SeasonID == seasonID {
			gameweeks = append(gameweeks, gw)
		}
	}
	sort.Slice(gameweeks, func(i, j int) bool { return gameweeks[i].Number < gameweeks[j].Number })

	out := make([]schedule.GameweekStatusInput, 0, len(gameweeks))
	for _, gw := range gameweeks {
		input := schedule.GameweekStatusInput{
			GameweekID: gw.ID,
			Deadline:   gw.Deadline,
		}
		for _, md := range s.matchdays {
			if md.GameweekID != gw.ID {
				continue
			}
			for _, match := range s.matches {
				if match.MatchdayID == md.ID {
					input.MatchStatuses = append(input.MatchStatuses, match.Status)
				}
			}
		}
		out = append(out, input)
	}

	return out, nil
}

func (r *ScheduleRepository) GetMatch(_ context.Context, matchID string) (schedule.Match, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	match, ok := r.store.matches[matchID]
	return match, ok, nil
}

func (r *ScheduleRepository) ListMatchesByIDs(_ context.Context, matchIDs []string) ([]schedule.Match, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]schedule.Match, 0, len(matchIDs))
	for _, id := range matchIDs {
		if match, ok := r.store.matches[id]; ok {
			out = append(out, match)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].KickoffAt.Equal(out[j].KickoffAt) {
			return out[i].KickoffAt.Before(out[j].KickoffAt)
		}
		return out[i].ID < out[j].ID
	})

	return out, nil
}

func (r *ScheduleRepository) UpdateMatchResults(_ context.Context, matches []schedule.Match) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, incoming := range matches {
		stored, ok := r.store.matches[incoming.ID]
		if !ok {
			continue
		}
		stored.HomeScore = incoming.HomeScore
		stored.AwayScore = incoming.AwayScore
		stored.Status = incoming.Status
		r.store.matches[incoming.ID] = stored
	}

	return nil
}
