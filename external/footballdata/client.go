package footballdata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/predictleague/predictor/internal/platform/logging"
	"github.com/predictleague/predictor/internal/platform/resilience"
	"github.com/predictleague/predictor/internal/usecase"
)

const (
	defaultBaseURL  = "https://api.football-data.org/v4"
	maxResponseSize = 6 << 20
)

var errFootballDataTransient = crerr.New("football-data transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Token          string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the football-data.org v4 API. Every fetch buffers the
// whole response before returning; callers never hold a database
// transaction open across these calls.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	token          string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		token:          strings.TrimSpace(cfg.Token),
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (c *Client) FetchTeams(ctx context.Context, competitionID string) ([]usecase.ExternalTeam, error) {
	competitionID = strings.TrimSpace(competitionID)
	if competitionID == "" {
		return nil, fmt.Errorf("competition id is required")
	}

	var envelope teamsEnvelope
	path := fmt.Sprintf("/competitions/%s/teams", url.PathEscape(competitionID))
	if err := c.doJSON(ctx, path, nil, &envelope); err != nil {
		return nil, fmt.Errorf("fetch teams competition=%s: %w", competitionID, err)
	}

	out := make([]usecase.ExternalTeam, 0, len(envelope.Teams))
	for _, item := range envelope.Teams {
		out = append(out, mapTeamItem(item))
	}

	return out, nil
}

func (c *Client) FetchCurrentSeason(ctx context.Context, competitionID string) (usecase.ExternalSeason, error) {
	competitionID = strings.TrimSpace(competitionID)
	if competitionID == "" {
		return usecase.ExternalSeason{}, fmt.Errorf("competition id is required")
	}

	var envelope competitionEnvelope
	path := fmt.Sprintf("/competitions/%s", url.PathEscape(competitionID))
	if err := c.doJSON(ctx, path, nil, &envelope); err != nil {
		return usecase.ExternalSeason{}, fmt.Errorf("fetch current season competition=%s: %w", competitionID, err)
	}

	start, okStart := parseDateOnly(envelope.CurrentSeason.StartDate)
	end, okEnd := parseDateOnly(envelope.CurrentSeason.EndDate)
	if !okStart || !okEnd {
		return usecase.ExternalSeason{}, fmt.Errorf("current season competition=%s has no usable dates", competitionID)
	}

	return usecase.ExternalSeason{
		StartDate:       start,
		EndDate:         end,
		CurrentMatchday: envelope.CurrentSeason.CurrentMatchday,
	}, nil
}

func (c *Client) FetchMatches(ctx context.Context, competitionID string) ([]usecase.ExternalMatch, error) {
	return c.fetchMatches(ctx, competitionID, nil)
}

func (c *Client) FetchFinishedMatches(ctx context.Context, competitionID string, from, to time.Time) ([]usecase.ExternalMatch, error) {
	query := map[string]string{
		"status":   "FINISHED",
		"dateFrom": from.UTC().Format("2006-01-02"),
		"dateTo":   to.UTC().Format("2006-01-02"),
	}
	return c.fetchMatches(ctx, competitionID, query)
}

func (c *Client) fetchMatches(ctx context.Context, competitionID string, query map[string]string) ([]usecase.ExternalMatch, error) {
	competitionID = strings.TrimSpace(competitionID)
	if competitionID == "" {
		return nil, fmt.Errorf("competition id is required")
	}

	var envelope matchesEnvelope
	path := fmt.Sprintf("/competitions/%s/matches", url.PathEscape(competitionID))
	if err := c.doJSON(ctx, path, query, &envelope); err != nil {
		return nil, fmt.Errorf("fetch matches competition=%s: %w", competitionID, err)
	}

	out := make([]usecase.ExternalMatch, 0, len(envelope.Matches))
	dropped := 0
	for _, item := range envelope.Matches {
		mapped, ok := mapMatchItem(item)
		if !ok {
			dropped++
			continue
		}
		out = append(out, mapped)
	}
	if dropped > 0 {
		c.logger.WarnContext(ctx, "dropped provider matches without usable kickoff",
			"competition_id", competitionID,
			"dropped", dropped,
		)
	}

	return out, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "football-data circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: schedule provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && crerr.Is(reqErr, errFootballDataTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}

	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if c.token != "" {
			req.Header.Set("X-Auth-Token", c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errFootballDataTransient, sanitizeSensitiveText(err.Error(), c.token))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("%w: read response body: %v", errFootballDataTransient, readErr)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return raw, nil
			} else if isRetryableStatus(resp.StatusCode) {
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errFootballDataTransient, resp.StatusCode, abbreviateBody(raw))
			} else {
				return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "football-data request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

func abbreviateBody(raw []byte) string {
	const limit = 256
	text := strings.TrimSpace(string(raw))
	if len(text) > limit {
		return text[:limit] + "..."
	}
	return text
}

func sanitizeSensitiveText(value, token string) string {
	value = strings.TrimSpace(value)
	if value == "" || token == "" {
		return value
	}
	return strings.ReplaceAll(value, token, "REDACTED")
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
