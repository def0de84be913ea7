package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/predictleague/predictor/internal/domain/competition"
	"github.com/predictleague/predictor/internal/domain/schedule"
	"github.com/predictleague/predictor/internal/infrastructure/repository/memory"
	"github.com/predictleague/predictor/internal/platform/logging"
)

type stubScheduleProvider struct {
	teams    map[string][]ExternalTeam
	seasons  map[string]ExternalSeason
	matches  map[string][]ExternalMatch
	finished map[string][]ExternalMatch
	err      error
}

func (p *stubScheduleProvider) FetchTeams(_ context.Context, competitionID string) ([]ExternalTeam, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.teams[competitionID], nil
}

func (p *stubScheduleProvider) FetchCurrentSeason(_ context.Context, competitionID string) (ExternalSeason, error) {
	if p.err != nil {
		return ExternalSeason{}, p.err
	}
	return p.seasons[competitionID], nil
}

func (p *stubScheduleProvider) FetchMatches(_ context.Context, competitionID string) ([]ExternalMatch, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.matches[competitionID], nil
}

func (p *stubScheduleProvider) FetchFinishedMatches(_ context.Context, competitionID string, _, _ time.Time) ([]ExternalMatch, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.finished[competitionID], nil
}

func newLeagueProvider() *stubScheduleProvider {
	return &stubScheduleProvider{
		teams: map[string][]ExternalTeam{
			"PL": {
				{ExternalID: 1011, Name: "Home One", ShortName: "HO1", Code: "ho1", CrestURL: "https://crests/1011.png"},
				{ExternalID: 1012, Name: "Away One", ShortName: "AO1", Code: "ao1"},
			},
		},
		seasons: map[string]ExternalSeason{
			"PL": testSeason(),
		},
		matches: map[string][]ExternalMatch{
			"PL": {
				leagueMatch(101, 1, time.Date(2025, 8, 16, 14, 0, 0, 0, time.UTC)),
				leagueMatch(102, 1, time.Date(2025, 8, 16, 18, 30, 0, 0, time.UTC)),
				leagueMatch(201, 2, time.Date(2025, 8, 23, 15, 0, 0, 0, time.UTC)),
			},
		},
	}
}

func newSyncServiceForTest(provider ScheduleProvider, store *memory.Store, competitions map[string]competition.Competition) *SyncService {
	svc := NewSyncService(
		provider,
		memory.NewTeamRepository(store),
		memory.NewScheduleRepository(store),
		SyncConfig{Competitions: competitions, MaxWorkers: 2},
		logging.NewNop(),
	)
	svc.now = func() time.Time { return time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC) }
	return svc
}

func TestSyncService_SyncCompetition(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	svc := newSyncServiceForTest(newLeagueProvider(), store, map[string]competition.Competition{
		"PL": leagueCompetition(),
	})

	result, err := svc.SyncCompetition(context.Background(), "PL")
	if err != nil {
		t.Fatalf("SyncCompetition error: %v", err)
	}
	if result.SeasonID != "pl-2025" {
		t.Fatalf("unexpected season id: %s", result.SeasonID)
	}
	if result.MatchesSynced != 3 {
		t.Fatalf("unexpected matches synced: %d", result.MatchesSynced)
	}
	if result.TeamsSynced != 2 {
		t.Fatalf("unexpected teams synced: %d", result.TeamsSynced)
	}

	scheduleRepo := memory.NewScheduleRepository(store)
	season, exists, err := scheduleRepo.GetCurrentSeason(context.Background(), "PL")
	if err != nil || !exists {
		t.Fatalf("expected current season, exists=%t err=%v", exists, err)
	}
	if season.ID != "pl-2025" || !season.IsCurrent {
		t.Fatalf("unexpected season row: %+v", season)
	}

	gameweeks, err := scheduleRepo.ListGameweeksBySeason(context.Background(), "pl-2025")
	if err != nil {
		t.Fatalf("ListGameweeksBySeason error: %v", err)
	}
	if len(gameweeks) != 2 {
		t.Fatalf("unexpected gameweek count: %d", len(gameweeks))
	}
	if gameweeks[0].Number != 1 || gameweeks[1].Number != 2 {
		t.Fatalf("unexpected gameweek numbers: %d, %d", gameweeks[0].Number, gameweeks[1].Number)
	}
}

func TestSyncService_SyncCompetition_Idempotent(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	svc := newSyncServiceForTest(newLeagueProvider(), store, map[string]competition.Competition{
		"PL": leagueCompetition(),
	})

	first, err := svc.SyncCompetition(context.Background(), "PL")
	if err != nil {
		t.Fatalf("first sync error: %v", err)
	}
	second, err := svc.SyncCompetition(context.Background(), "PL")
	if err != nil {
		t.Fatalf("second sync error: %v", err)
	}

	if first != second {
		t.Fatalf("re-running sync changed the result: first=%+v second=%+v", first, second)
	}

	scheduleRepo := memory.NewScheduleRepository(store)
	gameweeks, err := scheduleRepo.ListGameweeksBySeason(context.Background(), "pl-2025")
	if err != nil {
		t.Fatalf("ListGameweeksBySeason error: %v", err)
	}
	if len(gameweeks) != 2 {
		t.Fatalf("re-running sync duplicated gameweeks: %d", len(gameweeks))
	}
}

func TestSyncService_SyncCompetition_NotConfigured(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	svc := newSyncServiceForTest(newLeagueProvider(), store, map[string]competition.Competition{
		"PL": leagueCompetition(),
	})

	_, err := svc.SyncCompetition(context.Background(), "SA")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSyncService_CupSyncReclaimsLegacyGameweeks(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	scheduleRepo := memory.NewScheduleRepository(store)

	// Seed a stage-less gameweek as the old cup numbering scheme wrote it.
	legacy := schedule.SyncPlan{
		CompetitionID: "CL",
		Season: schedule.Season{
			ID:            "cl-2025",
			CompetitionID: "CL",
			Name:          "2025/26",
			StartDate:     time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC),
			EndDate:       time.Date(2026, 5, 24, 0, 0, 0, 0, time.UTC),
			IsCurrent:     true,
		},
		Gameweeks: []schedule.GameweekPlan{
			{
				Gameweek: schedule.Gameweek{
					ID:       "cl-2025-md3",
					SeasonID: "cl-2025",
					Number:   3,
					Name:     "Matchday 3",
					Status:   schedule.GameweekUpcoming,
				},
			},
		},
	}
	if _, err := scheduleRepo.ApplySyncPlan(context.Background(), legacy); err != nil {
		t.Fatalf("seed legacy plan: %v", err)
	}

	provider := &stubScheduleProvider{
		teams:   map[string][]ExternalTeam{"CL": {{ExternalID: 2011, Name: "Club One"}}},
		seasons: map[string]ExternalSeason{"CL": testSeason()},
		matches: map[string][]ExternalMatch{"CL": func() []ExternalMatch {
			m := leagueMatch(301, 1, time.Date(2025, 9, 16, 19, 0, 0, 0, time.UTC))
			m.Stage = "LEAGUE_STAGE_1"
			return []ExternalMatch{m}
		}()},
	}
	svc := newSyncServiceForTest(provider, store, map[string]competition.Competition{
		"CL": cupCompetition(),
	})

	if _, err := svc.SyncCompetition(context.Background(), "CL"); err != nil {
		t.Fatalf("cup sync error: %v", err)
	}

	gameweeks, err := scheduleRepo.ListGameweeksBySeason(context.Background(), "cl-2025")
	if err != nil {
		t.Fatalf("ListGameweeksBySeason error: %v", err)
	}
	for _, gw := range gameweeks {
		if gw.ID == "cl-2025-md3" {
			t.Fatal("legacy stage-less gameweek survived the cup sync")
		}
	}
	if len(gameweeks) != 1 || gameweeks[0].ID != "cl-2025-league-phase-md1" {
		t.Fatalf("unexpected gameweeks after reclaim: %+v", gameweeks)
	}
}

func TestSyncService_SyncAll(t *testing.T) {
	t.Parallel()

	provider := newLeagueProvider()
	provider.teams["SA"] = []ExternalTeam{{ExternalID: 3011, Name: "Club A"}}
	provider.seasons["SA"] = testSeason()
	provider.matches["SA"] = []ExternalMatch{leagueMatch(401, 1, time.Date(2025, 8, 17, 16, 0, 0, 0, time.UTC))}

	store := memory.NewStore()
	svc := newSyncServiceForTest(provider, store, map[string]competition.Competition{
		"PL": leagueCompetition(),
		"SA": {ID: "SA", Name: "SA", Format: competition.FormatLeague},
	})

	if err := svc.SyncAll(context.Background()); err != nil {
		t.Fatalf("SyncAll error: %v", err)
	}

	scheduleRepo := memory.NewScheduleRepository(store)
	for _, competitionID := range []string{"PL", "SA"} {
		if _, exists, err := scheduleRepo.GetCurrentSeason(context.Background(), competitionID); err != nil || !exists {
			t.Fatalf("competition %s not synced: exists=%t err=%v", competitionID, exists, err)
		}
	}
}

func TestSyncService_SyncAll_PropagatesFailure(t *testing.T) {
	t.Parallel()

	provider := &stubScheduleProvider{err: errors.New("provider down")}
	store := memory.NewStore()
	svc := newSyncServiceForTest(provider, store, map[string]competition.Competition{
		"PL": leagueCompetition(),
	})

	if err := svc.SyncAll(context.Background()); err == nil {
		t.Fatal("expected SyncAll to report the failed competition")
	}
}
