package footballdata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/predictleague/predictor/internal/platform/logging"
	"github.com/predictleague/predictor/internal/platform/resilience"
	"github.com/predictleague/predictor/internal/usecase"
)

func newTestClient(serverURL string, maxRetries int, circuit resilience.CircuitBreakerConfig) *Client {
	return NewClient(ClientConfig{
		BaseURL:        serverURL,
		Token:          "test-token",
		Timeout:        2 * time.Second,
		MaxRetries:     maxRetries,
		Logger:         logging.NewNop(),
		CircuitBreaker: circuit,
	})
}

func TestFetchTeams(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/competitions/PL/teams" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("X-Auth-Token"); got != "test-token" {
			t.Errorf("unexpected auth token: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"teams":[
			{"id":57,"name":"Arsenal FC","shortName":"Arsenal","tla":"ars","crest":"https://crests.example/57.png"},
			{"id":61,"name":"Chelsea FC","shortName":"Chelsea","tla":"CHE"}
		]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0, resilience.CircuitBreakerConfig{})

	teams, err := client.FetchTeams(context.Background(), "PL")
	if err != nil {
		t.Fatalf("FetchTeams error: %v", err)
	}
	if len(teams) != 2 {
		t.Fatalf("unexpected team count: %d", len(teams))
	}
	want := usecase.ExternalTeam{
		ExternalID: 57,
		Name:       "Arsenal FC",
		ShortName:  "Arsenal",
		Code:       "ARS",
		CrestURL:   "https://crests.example/57.png",
	}
	if teams[0] != want {
		t.Fatalf("unexpected first team:\nwant: %+v\ngot:  %+v", want, teams[0])
	}
}

func TestFetchCurrentSeason(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/competitions/PL" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"currentSeason":{"id":2403,"startDate":"2025-08-15","endDate":"2026-05-24","currentMatchday":3}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0, resilience.CircuitBreakerConfig{})

	season, err := client.FetchCurrentSeason(context.Background(), "PL")
	if err != nil {
		t.Fatalf("FetchCurrentSeason error: %v", err)
	}
	if !season.StartDate.Equal(time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start date: %s", season.StartDate)
	}
	if !season.EndDate.Equal(time.Date(2026, 5, 24, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected end date: %s", season.EndDate)
	}
	if season.CurrentMatchday == nil || *season.CurrentMatchday != 3 {
		t.Fatalf("unexpected current matchday: %v", season.CurrentMatchday)
	}
}

func TestFetchCurrentSeason_MissingDates(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"currentSeason":{"id":2403}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0, resilience.CircuitBreakerConfig{})

	if _, err := client.FetchCurrentSeason(context.Background(), "PL"); err == nil {
		t.Fatal("expected season without dates to fail")
	}
}

func TestFetchMatches(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/competitions/CL/matches" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"matches":[
			{
				"id":497001,
				"utcDate":"2025-09-16T19:00:00Z",
				"status":"FINISHED",
				"matchday":1,
				"stage":"LEAGUE_STAGE",
				"homeTeam":{"id":5,"name":"FC Bayern"},
				"awayTeam":{"id":61,"name":"Chelsea FC"},
				"score":{"fullTime":{"home":3,"away":1}},
				"bookings":[
					{"card":"RED_CARD","team":{"id":61}},
					{"card":"YELLOW_CARD","team":{"id":5}}
				]
			},
			{"id":497002,"status":"SCHEDULED","homeTeam":{"id":1},"awayTeam":{"id":2}}
		]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0, resilience.CircuitBreakerConfig{})

	matches, err := client.FetchMatches(context.Background(), "CL")
	if err != nil {
		t.Fatalf("FetchMatches error: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("match without a kickoff date must be dropped, got %d", len(matches))
	}

	match := matches[0]
	if match.ExternalID != 497001 || match.Stage != "LEAGUE_STAGE" {
		t.Fatalf("unexpected match: %+v", match)
	}
	if match.Matchday == nil || *match.Matchday != 1 {
		t.Fatalf("unexpected matchday: %v", match.Matchday)
	}
	if !match.KickoffAt.Equal(time.Date(2025, 9, 16, 19, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected kickoff: %s", match.KickoffAt)
	}
	if match.HomeScore == nil || *match.HomeScore != 3 || match.AwayScore == nil || *match.AwayScore != 1 {
		t.Fatalf("unexpected score: %+v", match)
	}
	if match.HomeRedCards != 0 || match.AwayRedCards != 1 {
		t.Fatalf("unexpected red cards: home=%d away=%d", match.HomeRedCards, match.AwayRedCards)
	}
}

func TestFetchFinishedMatches_QueryWindow(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if got := query.Get("status"); got != "FINISHED" {
			t.Errorf("unexpected status filter: %q", got)
		}
		if got := query.Get("dateFrom"); got != "2025-08-10" {
			t.Errorf("unexpected dateFrom: %q", got)
		}
		if got := query.Get("dateTo"); got != "2025-08-17" {
			t.Errorf("unexpected dateTo: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"matches":[]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0, resilience.CircuitBreakerConfig{})

	from := time.Date(2025, 8, 10, 12, 0, 0, 0, time.UTC)
	to := time.Date(2025, 8, 17, 12, 0, 0, 0, time.UTC)
	if _, err := client.FetchFinishedMatches(context.Background(), "PL", from, to); err != nil {
		t.Fatalf("FetchFinishedMatches error: %v", err)
	}
}

func TestRetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"teams":[]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 1, resilience.CircuitBreakerConfig{})

	if _, err := client.FetchTeams(context.Background(), "PL"); err != nil {
		t.Fatalf("expected retry to recover, got %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("unexpected request count: %d", got)
	}
}

func TestDoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 3, resilience.CircuitBreakerConfig{})

	if _, err := client.FetchTeams(context.Background(), "XX"); err == nil {
		t.Fatal("expected 404 to fail")
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("client errors must not be retried, got %d requests", got)
	}
}

func TestCircuitOpensAfterRepeatedFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0, resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 1,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	})

	if _, err := client.FetchTeams(context.Background(), "PL"); err == nil {
		t.Fatal("expected first request to fail")
	}

	_, err := client.FetchTeams(context.Background(), "PL")
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected circuit rejection, got %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("open circuit must not reach the provider, got %d requests", got)
	}
}

func TestEmptyCompetitionID(t *testing.T) {
	t.Parallel()

	client := newTestClient("http://127.0.0.1:1", 0, resilience.CircuitBreakerConfig{})

	if _, err := client.FetchTeams(context.Background(), "  "); err == nil {
		t.Fatal("expected blank competition id to fail")
	}
	if _, err := client.FetchMatches(context.Background(), ""); err == nil {
		t.Fatal("expected blank competition id to fail")
	}
}
