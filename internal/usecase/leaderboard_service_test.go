package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/predictleague/predictor/internal/domain/prediction"
	"github.com/predictleague/predictor/internal/domain/schedule"
	"github.com/predictleague/predictor/internal/infrastructure/repository/memory"
	"github.com/predictleague/predictor/internal/platform/logging"
)

func newLeaderboardServiceForTest(store *memory.Store, now time.Time) *LeaderboardService {
	svc := NewLeaderboardService(
		memory.NewStandingsRepository(store),
		memory.NewScheduleRepository(store),
		logging.NewNop(),
	)
	svc.now = func() time.Time { return now }
	return svc
}

func seedScoredLeague(t *testing.T, store *memory.Store) {
	t.Helper()

	seedSchedule(t, store)
	store.SeedLeague("league-1", "PL", "user-a", "user-b", "user-c")
	store.SeedPredictions([]prediction.Prediction{
		{ID: "pred-a", UserID: "user-a", MatchID: "pl-match-101", LeagueID: "league-1", HomeScore: 2, AwayScore: 1, Points: intPtr(3)},
		{ID: "pred-b", UserID: "user-b", MatchID: "pl-match-101", LeagueID: "league-1", HomeScore: 1, AwayScore: 0, Points: intPtr(1)},
		{ID: "pred-c", UserID: "user-c", MatchID: "pl-match-101", LeagueID: "league-1", HomeScore: 0, AwayScore: 0, Points: intPtr(0)},
	})
}

func TestLeaderboardService_GetLeaderboard(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	seedScoredLeague(t, store)

	// Matchday 1 still has a pending match, so the season is running.
	svc := newLeaderboardServiceForTest(store, time.Date(2025, 8, 16, 15, 0, 0, 0, time.UTC))

	board, err := svc.GetLeaderboard(context.Background(), "league-1")
	if err != nil {
		t.Fatalf("GetLeaderboard error: %v", err)
	}

	if len(board.Entries) != 3 {
		t.Fatalf("unexpected entry count: %d", len(board.Entries))
	}
	if board.Entries[0].UserID != "user-a" || board.Entries[0].Rank != 1 {
		t.Fatalf("unexpected leader: %+v", board.Entries[0])
	}
	if board.Entries[1].UserID != "user-b" || board.Entries[1].Rank != 2 {
		t.Fatalf("unexpected runner-up: %+v", board.Entries[1])
	}
	if board.Entries[2].UserID != "user-c" || board.Entries[2].TotalPoints != 0 {
		t.Fatalf("member without points must still appear: %+v", board.Entries[2])
	}
	if board.IsSeasonComplete {
		t.Fatal("season must not be complete while a match is pending")
	}
	if board.Champion != nil {
		t.Fatal("no champion before the season completes")
	}
}

func TestLeaderboardService_ChampionOnCompletion(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	seedScoredLeague(t, store)

	// Settle the remaining match so every gameweek derives as completed.
	one := 1
	err := memory.NewScheduleRepository(store).UpdateMatchResults(context.Background(), []schedule.Match{
		{ID: "pl-match-102", HomeScore: &one, AwayScore: &one, Status: schedule.MatchFinished},
	})
	if err != nil {
		t.Fatalf("settle match: %v", err)
	}

	svc := newLeaderboardServiceForTest(store, time.Date(2025, 8, 17, 0, 0, 0, 0, time.UTC))

	board, err := svc.GetLeaderboard(context.Background(), "league-1")
	if err != nil {
		t.Fatalf("GetLeaderboard error: %v", err)
	}
	if !board.IsSeasonComplete {
		t.Fatal("expected completed season")
	}
	if board.Champion == nil || board.Champion.UserID != "user-a" {
		t.Fatalf("unexpected champion: %+v", board.Champion)
	}
}

func TestLeaderboardService_GetLeaderboard_UnknownLeague(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	svc := newLeaderboardServiceForTest(store, time.Now().UTC())

	if _, err := svc.GetLeaderboard(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.GetLeaderboard(context.Background(), " "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestLeaderboardService_GetUserRank_AgreesWithLeaderboard(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	seedScoredLeague(t, store)

	now := time.Date(2025, 8, 16, 15, 0, 0, 0, time.UTC)
	svc := newLeaderboardServiceForTest(store, now)

	board, err := svc.GetLeaderboard(context.Background(), "league-1")
	if err != nil {
		t.Fatalf("GetLeaderboard error: %v", err)
	}

	for _, entry := range board.Entries {
		rank, err := svc.GetUserRank(context.Background(), "league-1", entry.UserID)
		if err != nil {
			t.Fatalf("GetUserRank(%s) error: %v", entry.UserID, err)
		}
		if rank.Rank != entry.Rank {
			t.Fatalf("rank mismatch for %s: leaderboard=%d user rank=%d", entry.UserID, entry.Rank, rank.Rank)
		}
		if rank.TotalMembers != len(board.Entries) {
			t.Fatalf("unexpected member count: %d", rank.TotalMembers)
		}
		if rank.TotalPoints != entry.TotalPoints {
			t.Fatalf("points mismatch for %s: %d vs %d", entry.UserID, rank.TotalPoints, entry.TotalPoints)
		}
	}
}

func TestLeaderboardService_GetUserRank_UnknownUser(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	seedScoredLeague(t, store)
	svc := newLeaderboardServiceForTest(store, time.Now().UTC())

	if _, err := svc.GetUserRank(context.Background(), "league-1", "stranger"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
