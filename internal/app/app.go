package app

import (
	"fmt"
	"net/http"

	"github.com/predictleague/predictor/external/footballdata"
	"github.com/predictleague/predictor/internal/config"
	"github.com/predictleague/predictor/internal/domain/prediction"
	"github.com/predictleague/predictor/internal/domain/schedule"
	"github.com/predictleague/predictor/internal/domain/standings"
	"github.com/predictleague/predictor/internal/domain/team"
	"github.com/predictleague/predictor/internal/infrastructure/repository/memory"
	"github.com/predictleague/predictor/internal/infrastructure/repository/postgres"
	"github.com/predictleague/predictor/internal/interfaces/httpapi"
	"github.com/predictleague/predictor/internal/platform/logging"
	"github.com/predictleague/predictor/internal/platform/resilience"
	"github.com/predictleague/predictor/internal/usecase"
)

// Services bundles the wired service graph so the HTTP server and the
// one-shot job binary share one construction path.
type Services struct {
	Sync        *usecase.SyncService
	Result      *usecase.ResultService
	Scoring     *usecase.ScoringService
	Leaderboard *usecase.LeaderboardService
}

type repositories struct {
	teams       team.Repository
	schedules   schedule.Repository
	predictions prediction.Repository
	standings   standings.Repository
}

// BuildServices wires repositories, the schedule provider and the
// service layer. The returned close function releases the database
// pool; it is a no-op when DB_URL is empty and the in-memory
// repositories are used instead.
func BuildServices(cfg config.Config, logger *logging.Logger) (Services, func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	repos, closeRepos, err := buildRepositories(cfg, logger)
	if err != nil {
		return Services{}, nil, err
	}

	provider := footballdata.NewClient(footballdata.ClientConfig{
		BaseURL:    cfg.FootballDataBaseURL,
		Token:      cfg.FootballDataToken,
		Timeout:    cfg.FootballDataTimeout,
		MaxRetries: cfg.FootballDataMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.FootballDataCircuitEnabled,
			FailureThreshold: cfg.FootballDataCircuitFailureCount,
			OpenTimeout:      cfg.FootballDataCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.FootballDataCircuitHalfOpenMaxReq,
		},
	})

	syncService := usecase.NewSyncService(provider, repos.teams, repos.schedules, usecase.SyncConfig{
		Competitions:          cfg.Competitions,
		InterCompetitionDelay: cfg.SyncInterCompetitionDelay,
		MaxWorkers:            cfg.SyncMaxWorkers,
	}, logger)
	scoringService := usecase.NewScoringService(repos.schedules, repos.predictions, logger)
	resultService := usecase.NewResultService(provider, repos.schedules, repos.predictions, scoringService, cfg.Competitions, logger)
	leaderboardService := usecase.NewLeaderboardService(repos.standings, repos.schedules, logger)

	return Services{
		Sync:        syncService,
		Result:      resultService,
		Scoring:     scoringService,
		Leaderboard: leaderboardService,
	}, closeRepos, nil
}

func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	services, closeRepos, err := BuildServices(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	handler := httpapi.NewHandler(services.Sync, services.Result, services.Scoring, services.Leaderboard, logger)
	router := httpapi.NewRouter(handler, logger, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		_ = closeRepos()
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, closeRepos, nil
}

func buildRepositories(cfg config.Config, logger *logging.Logger) (repositories, func() error, error) {
	if cfg.DBURL == "" {
		logger.Info("DB_URL is empty, using in-memory repositories")
		store := memory.NewStore()
		return repositories{
			teams:       memory.NewTeamRepository(store),
			schedules:   memory.NewScheduleRepository(store),
			predictions: memory.NewPredictionRepository(store),
			standings:   memory.NewStandingsRepository(store),
		}, func() error { return nil }, nil
	}

	db, err := openDB(cfg)
	if err != nil {
		return repositories{}, nil, fmt.Errorf("open database: %w", err)
	}

	return repositories{
		teams:       postgres.NewTeamRepository(db),
		schedules:   postgres.NewScheduleRepository(db),
		predictions: postgres.NewPredictionRepository(db),
		standings:   postgres.NewStandingsRepository(db),
	}, db.Close, nil
}
