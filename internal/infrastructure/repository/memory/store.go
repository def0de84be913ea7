package memory

import (
	"sync"

	"github.com/predictleague/predictor/internal/domain/prediction"
	"github.com/predictleague/predictor/internal/domain/schedule"
	"github.com/predictleague/predictor/internal/domain/team"
)

// Store is a process-local stand-in for the database. All repositories
// share one store so cross-entity reads (scoring joins, standings
// aggregates) see a consistent picture.
type Store struct {
	mu sync.RWMutex

	teams     map[string]team.Team
	seasons   map[string]schedule.Season
	gameweeks map[string]schedule.Gameweek
	matchdays map[string]schedule.Matchday
	matches   map[string]schedule.Match

	predictions map[string]prediction.Prediction

	leagueCompetitions map[string]string
	leagueMembers      map[string][]string
	gameweekPoints     map[pointsKey]int
}

type pointsKey struct {
	leagueID   string
	userID     string
	gameweekID string
}

func NewStore() *Store {
	return &Store{
		teams:              make(map[string]team.Team),
		seasons:            make(map[string]schedule.Season),
		gameweeks:          make(map[string]schedule.Gameweek),
		matchdays:          make(map[string]schedule.Matchday),
		matches:            make(map[string]schedule.Match),
		predictions:        make(map[string]prediction.Prediction),
		leagueCompetitions: make(map[string]string),
		leagueMembers:      make(map[string][]string),
		gameweekPoints:     make(map[pointsKey]int),
	}
}

// SeedLeague registers a league with its competition and member set.
// League ownership lives outside the engine, so tests and DB-less runs
// seed it directly.
func (s *Store) SeedLeague(leagueID, competitionID string, userIDs ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.leagueCompetitions[leagueID] = competitionID
	s.leagueMembers[leagueID] = append([]string(nil), userIDs...)
}

// SeedPredictions inserts predictions as the surrounding system would.
func (s *Store) SeedPredictions(items []prediction.Prediction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range items {
		s.predictions[item.ID] = item
	}
}

// gameweekIDForMatch resolves the gameweek a match belongs to. Caller
// holds at least a read lock.
func (s *Store) gameweekIDForMatch(matchID string) (string, bool) {
	match, ok := s.matches[matchID]
	if !ok {
		return "", false
	}
	md, ok := s.matchdays[match.MatchdayID]
	if !ok {
		return "", false
	}
	return md.GameweekID, true
}
