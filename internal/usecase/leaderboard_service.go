package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/predictleague/predictor/internal/domain/schedule"
	"github.com/predictleague/predictor/internal/domain/standings"
	"github.com/predictleague/predictor/internal/platform/logging"
)

// Leaderboard is the ranked standings view for one league.
type Leaderboard struct {
	Entries          []standings.Entry
	IsSeasonComplete bool
	Champion         *standings.Entry
}

type UserRank struct {
	Rank           int
	TotalMembers   int
	TotalPoints    int
	ExactScores    int
	CorrectResults int
}

// LeaderboardService aggregates scored predictions into tie-broken
// standings and detects season completion. Standings are recomputed on
// every read; nothing here is cached.
type LeaderboardService struct {
	standingsRepo standings.Repository
	scheduleRepo  schedule.Repository
	now           func() time.Time
	logger        *logging.Logger
}

func NewLeaderboardService(
	standingsRepo standings.Repository,
	scheduleRepo schedule.Repository,
	logger *logging.Logger,
) *LeaderboardService {
	if logger == nil {
		logger = logging.Default()
	}
	return &LeaderboardService{
		standingsRepo: standingsRepo,
		scheduleRepo:  scheduleRepo,
		now:           time.Now,
		logger:        logger,
	}
}

func (s *LeaderboardService) GetLeaderboard(ctx context.Context, leagueID string) (Leaderboard, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.GetLeaderboard")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return Leaderboard{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}

	competitionID, exists, err := s.standingsRepo.GetLeagueCompetition(ctx, leagueID)
	if err != nil {
		return Leaderboard{}, fmt.Errorf("get league competition league=%s: %w", leagueID, err)
	}
	if !exists {
		return Leaderboard{}, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}

	totals, err := s.standingsRepo.AggregateByLeague(ctx, leagueID)
	if err != nil {
		return Leaderboard{}, fmt.Errorf("aggregate league predictions league=%s: %w", leagueID, err)
	}

	entries := standings.Rank(totals)
	complete, err := s.isSeasonComplete(ctx, competitionID)
	if err != nil {
		return Leaderboard{}, err
	}

	out := Leaderboard{
		Entries:          entries,
		IsSeasonComplete: complete,
	}
	if complete && len(entries) > 0 {
		champion := entries[0]
		out.Champion = &champion
	}

	return out, nil
}

// GetUserRank answers the single-member question with the exact same
// ordering the full leaderboard uses: members strictly ahead on
// (total points, exact scores) plus one.
func (s *LeaderboardService) GetUserRank(ctx context.Context, leagueID, userID string) (UserRank, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.GetUserRank")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	userID = strings.TrimSpace(userID)
	if leagueID == "" || userID == "" {
		return UserRank{}, fmt.Errorf("%w: league id and user id are required", ErrInvalidInput)
	}

	totals, err := s.standingsRepo.AggregateByLeague(ctx, leagueID)
	if err != nil {
		return UserRank{}, fmt.Errorf("aggregate league predictions league=%s: %w", leagueID, err)
	}

	var member *standings.MemberTotals
	for idx := range totals {
		if totals[idx].UserID == userID {
			member = &totals[idx]
			break
		}
	}
	if member == nil {
		return UserRank{}, fmt.Errorf("%w: user=%s is not a member of league=%s", ErrNotFound, userID, leagueID)
	}

	return UserRank{
		Rank:           standings.CountOutranking(totals, *member) + 1,
		TotalMembers:   len(totals),
		TotalPoints:    member.TotalPoints,
		ExactScores:    member.ExactScores,
		CorrectResults: member.CorrectResults,
	}, nil
}

// isSeasonComplete recomputes completion from stored match state and the
// injected clock on every call. Relying on the cached gameweek status
// column could crown a champion mid-season after a stale sync.
func (s *LeaderboardService) isSeasonComplete(ctx context.Context, competitionID string) (bool, error) {
	season, exists, err := s.scheduleRepo.GetCurrentSeason(ctx, competitionID)
	if err != nil {
		return false, fmt.Errorf("get current season competition=%s: %w", competitionID, err)
	}
	if !exists {
		return false, nil
	}

	inputs, err := s.scheduleRepo.ListGameweekStatusInputs(ctx, season.ID)
	if err != nil {
		return false, fmt.Errorf("list gameweek status inputs season=%s: %w", season.ID, err)
	}
	if len(inputs) == 0 {
		return false, nil
	}

	now := s.now().UTC()
	for _, input := range inputs {
		if schedule.DeriveStatus(now, input.Deadline, input.MatchStatuses) != schedule.GameweekCompleted {
			return false, nil
		}
	}
	return true, nil
}
