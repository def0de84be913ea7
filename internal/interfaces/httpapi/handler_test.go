package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/predictleague/predictor/internal/domain/competition"
	"github.com/predictleague/predictor/internal/domain/prediction"
	"github.com/predictleague/predictor/internal/domain/schedule"
	"github.com/predictleague/predictor/internal/infrastructure/repository/memory"
	"github.com/predictleague/predictor/internal/platform/logging"
	"github.com/predictleague/predictor/internal/usecase"
)

const testJobToken = "job-secret"

type stubProvider struct{}

func (stubProvider) FetchTeams(context.Context, string) ([]usecase.ExternalTeam, error) {
	return []usecase.ExternalTeam{
		{ExternalID: 1011, Name: "Home One"},
		{ExternalID: 1012, Name: "Away One"},
	}, nil
}

func (stubProvider) FetchCurrentSeason(context.Context, string) (usecase.ExternalSeason, error) {
	matchday := 1
	return usecase.ExternalSeason{
		StartDate:       time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC),
		EndDate:         time.Date(2026, 5, 24, 0, 0, 0, 0, time.UTC),
		CurrentMatchday: &matchday,
	}, nil
}

func (stubProvider) FetchMatches(context.Context, string) ([]usecase.ExternalMatch, error) {
	matchday := 1
	return []usecase.ExternalMatch{
		{
			ExternalID: 101,
			Matchday:   &matchday,
			KickoffAt:  time.Date(2025, 8, 16, 14, 0, 0, 0, time.UTC),
			Status:     "TIMED",
			HomeTeam:   usecase.ExternalTeam{ExternalID: 1011, Name: "Home One"},
			AwayTeam:   usecase.ExternalTeam{ExternalID: 1012, Name: "Away One"},
		},
	}, nil
}

func (stubProvider) FetchFinishedMatches(context.Context, string, time.Time, time.Time) ([]usecase.ExternalMatch, error) {
	return nil, nil
}

func newTestServer(t *testing.T, store *memory.Store) *httptest.Server {
	t.Helper()

	logger := logging.NewNop()
	scheduleRepo := memory.NewScheduleRepository(store)
	predictionRepo := memory.NewPredictionRepository(store)
	standingsRepo := memory.NewStandingsRepository(store)
	competitions := map[string]competition.Competition{
		"PL": {ID: "PL", Name: "Premier League", Format: competition.FormatLeague},
	}

	scoring := usecase.NewScoringService(scheduleRepo, predictionRepo, logger)
	handler := NewHandler(
		usecase.NewSyncService(stubProvider{}, memory.NewTeamRepository(store), scheduleRepo, usecase.SyncConfig{Competitions: competitions, MaxWorkers: 1}, logger),
		usecase.NewResultService(stubProvider{}, scheduleRepo, predictionRepo, scoring, competitions, logger),
		scoring,
		usecase.NewLeaderboardService(standingsRepo, scheduleRepo, logger),
		logger,
	)

	server := httptest.NewServer(NewRouter(handler, logger, testJobToken))
	t.Cleanup(server.Close)
	return server
}

// seedLeagueStandings stores one finished match, one pending match and a
// three-member league with already scored predictions.
func seedLeagueStandings(t *testing.T, store *memory.Store) {
	t.Helper()

	kickoff1 := time.Date(2025, 8, 16, 14, 0, 0, 0, time.UTC)
	kickoff2 := time.Date(2025, 8, 16, 18, 30, 0, 0, time.UTC)
	two, one := 2, 1

	plan := schedule.SyncPlan{
		CompetitionID: "PL",
		Season: schedule.Season{
			ID:            "pl-2025",
			CompetitionID: "PL",
			Name:          "2025/26",
			StartDate:     time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC),
			EndDate:       time.Date(2026, 5, 24, 0, 0, 0, 0, time.UTC),
			IsCurrent:     true,
		},
		Gameweeks: []schedule.GameweekPlan{
			{
				Gameweek: schedule.Gameweek{
					ID:       "pl-2025-md1",
					SeasonID: "pl-2025",
					Number:   1,
					Name:     "Matchday 1",
					Deadline: kickoff1.Add(-time.Hour),
					StartsAt: kickoff1,
					EndsAt:   kickoff2.Add(2 * time.Hour),
					Status:   schedule.GameweekActive,
				},
				Matchdays: []schedule.MatchdayPlan{
					{
						Matchday: schedule.Matchday{
							ID:         "pl-2025-md1-day1",
							GameweekID: "pl-2025-md1",
							Date:       kickoff1.Truncate(24 * time.Hour),
							DayNumber:  1,
						},
						Matches: []schedule.Match{
							{
								ID:         "pl-match-101",
								MatchdayID: "pl-2025-md1-day1",
								HomeTeamID: "pl-team-1",
								AwayTeamID: "pl-team-2",
								KickoffAt:  kickoff1,
								HomeScore:  &two,
								AwayScore:  &one,
								Status:     schedule.MatchFinished,
							},
							{
								ID:         "pl-match-102",
								MatchdayID: "pl-2025-md1-day1",
								HomeTeamID: "pl-team-3",
								AwayTeamID: "pl-team-4",
								KickoffAt:  kickoff2,
								Status:     schedule.MatchScheduled,
							},
						},
					},
				},
			},
		},
	}
	if _, err := memory.NewScheduleRepository(store).ApplySyncPlan(context.Background(), plan); err != nil {
		t.Fatalf("seed schedule: %v", err)
	}

	three, oneP, zero := 3, 1, 0
	store.SeedLeague("league-1", "PL", "user-a", "user-b", "user-c")
	store.SeedPredictions([]prediction.Prediction{
		{ID: "pred-a", UserID: "user-a", MatchID: "pl-match-101", LeagueID: "league-1", HomeScore: 2, AwayScore: 1, Points: &three},
		{ID: "pred-b", UserID: "user-b", MatchID: "pl-match-101", LeagueID: "league-1", HomeScore: 1, AwayScore: 0, Points: &oneP},
		{ID: "pred-c", UserID: "user-c", MatchID: "pl-match-101", LeagueID: "league-1", HomeScore: 0, AwayScore: 2, Points: &zero},
	})
}

func decodeEnvelope(t *testing.T, resp *http.Response) googleResponseEnvelope {
	t.Helper()
	defer resp.Body.Close()

	var envelope googleResponseEnvelope
	if err := sonic.ConfigDefault.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.APIVersion != googleAPIVersion {
		t.Fatalf("unexpected api version: %s", envelope.APIVersion)
	}
	return envelope
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, memory.NewStore())

	resp, err := http.Get(server.URL + "/healthz")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	envelope := decodeEnvelope(t, resp)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	if envelope.Error != nil {
		t.Fatalf("unexpected error body: %+v", envelope.Error)
	}
}

func TestGetLeaderboard(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	seedLeagueStandings(t, store)
	server := newTestServer(t, store)

	resp, err := http.Get(server.URL + "/v1/leagues/league-1/leaderboard")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	envelope := decodeEnvelope(t, resp)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}

	raw, err := sonic.Marshal(envelope.Data)
	if err != nil {
		t.Fatalf("remarshal data: %v", err)
	}
	var board leaderboardDTO
	if err := sonic.Unmarshal(raw, &board); err != nil {
		t.Fatalf("decode leaderboard: %v", err)
	}

	if board.LeagueID != "league-1" || len(board.Entries) != 3 {
		t.Fatalf("unexpected board: %+v", board)
	}
	if board.Entries[0].UserID != "user-a" || board.Entries[0].Rank != 1 || board.Entries[0].TotalPoints != 3 {
		t.Fatalf("unexpected leader: %+v", board.Entries[0])
	}
	if board.IsSeasonComplete || board.Champion != nil {
		t.Fatalf("season with a pending match must not be complete: %+v", board)
	}
}

func TestGetLeaderboard_UnknownLeague(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, memory.NewStore())

	resp, err := http.Get(server.URL + "/v1/leagues/nope/leaderboard")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	envelope := decodeEnvelope(t, resp)

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	if envelope.Error == nil || envelope.Error.Status != "NOT_FOUND" {
		t.Fatalf("unexpected error body: %+v", envelope.Error)
	}
	if len(envelope.Error.Errors) != 1 || envelope.Error.Errors[0].Reason != "notFound" {
		t.Fatalf("unexpected error items: %+v", envelope.Error.Errors)
	}
}

func TestGetUserRank(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	seedLeagueStandings(t, store)
	server := newTestServer(t, store)

	resp, err := http.Get(server.URL + "/v1/leagues/league-1/users/user-b/rank")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	envelope := decodeEnvelope(t, resp)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}

	raw, err := sonic.Marshal(envelope.Data)
	if err != nil {
		t.Fatalf("remarshal data: %v", err)
	}
	var rank userRankDTO
	if err := sonic.Unmarshal(raw, &rank); err != nil {
		t.Fatalf("decode rank: %v", err)
	}

	if rank.Rank != 2 || rank.TotalMembers != 3 || rank.TotalPoints != 1 {
		t.Fatalf("unexpected rank payload: %+v", rank)
	}
}

func TestGetUserRank_UnknownUser(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	seedLeagueStandings(t, store)
	server := newTestServer(t, store)

	resp, err := http.Get(server.URL + "/v1/leagues/league-1/users/stranger/rank")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestInternalRoutes_RequireToken(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, memory.NewStore())

	tests := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{name: "missing token", token: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong token", token: "guess", wantStatus: http.StatusUnauthorized},
		{name: "valid token", token: testJobToken, wantStatus: http.StatusOK},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			req, err := http.NewRequest(http.MethodPost, server.URL+"/internal/competitions/PL/sync", nil)
			if err != nil {
				t.Fatalf("build request: %v", err)
			}
			if tc.token != "" {
				req.Header.Set("X-Internal-Job-Token", tc.token)
			}

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			resp.Body.Close()

			if resp.StatusCode != tc.wantStatus {
				t.Fatalf("status got=%d want=%d", resp.StatusCode, tc.wantStatus)
			}
		})
	}
}

func TestRequireInternalJobToken_Unconfigured(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	guarded := RequireInternalJobToken("", next)

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/internal/sync", nil)
	req.Header.Set("X-Internal-Job-Token", "anything")
	guarded.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusServiceUnavailable {
		t.Fatalf("unconfigured token must close the endpoint, got %d", recorder.Code)
	}
}

func TestRunCompetitionSync(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	server := newTestServer(t, store)

	req, err := http.NewRequest(http.MethodPost, server.URL+"/internal/competitions/PL/sync", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("X-Internal-Job-Token", testJobToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	envelope := decodeEnvelope(t, resp)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}

	raw, err := sonic.Marshal(envelope.Data)
	if err != nil {
		t.Fatalf("remarshal data: %v", err)
	}
	var result syncResultDTO
	if err := sonic.Unmarshal(raw, &result); err != nil {
		t.Fatalf("decode sync result: %v", err)
	}

	if result.CompetitionID != "PL" || result.SeasonID != "pl-2025" {
		t.Fatalf("unexpected sync result: %+v", result)
	}
	if result.TeamsSynced != 2 || result.MatchesSynced != 1 {
		t.Fatalf("unexpected sync counts: %+v", result)
	}
}

func TestRunCompetitionSync_UnknownCompetition(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, memory.NewStore())

	req, err := http.NewRequest(http.MethodPost, server.URL+"/internal/competitions/XX/sync", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("X-Internal-Job-Token", testJobToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestRunMatchScoring_UnknownMatch(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, memory.NewStore())

	req, err := http.NewRequest(http.MethodPost, server.URL+"/internal/matches/pl-match-999/score", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("X-Internal-Job-Token", testJobToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestRecoverPanic(t *testing.T) {
	t.Parallel()

	panicking := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})
	guarded := recoverPanic(logging.NewNop(), panicking)

	recorder := httptest.NewRecorder()
	guarded.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/v1/leagues/x/leaderboard", nil))

	if recorder.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}
}

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantReason string
	}{
		{name: "invalid input", err: usecase.ErrInvalidInput, wantStatus: http.StatusBadRequest, wantReason: "invalidInput"},
		{name: "not found", err: usecase.ErrNotFound, wantStatus: http.StatusNotFound, wantReason: "notFound"},
		{name: "unauthorized", err: usecase.ErrUnauthorized, wantStatus: http.StatusUnauthorized, wantReason: "unauthorized"},
		{name: "dependency unavailable", err: usecase.ErrDependencyUnavailable, wantStatus: http.StatusServiceUnavailable, wantReason: "dependencyUnavailable"},
		{name: "unknown", err: context.DeadlineExceeded, wantStatus: http.StatusInternalServerError, wantReason: "internalError"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			mapped := mapError(tc.err)
			if mapped.HTTPStatus != tc.wantStatus {
				t.Fatalf("status got=%d want=%d", mapped.HTTPStatus, tc.wantStatus)
			}
			if mapped.Reason != tc.wantReason {
				t.Fatalf("reason got=%s want=%s", mapped.Reason, tc.wantReason)
			}
		})
	}
}
