package main

import (
	"context"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/predictleague/predictor/external/jobqueue"
	"github.com/predictleague/predictor/internal/app"
	"github.com/predictleague/predictor/internal/config"
	"github.com/predictleague/predictor/internal/observability"
	"github.com/predictleague/predictor/internal/platform/logging"
	"github.com/predictleague/predictor/internal/platform/resilience"
)

// syncjob is the one-shot batch runner. It performs a full schedule
// sync and/or a result refresh with scoring, then exits. When QStash is
// enabled it re-enqueues itself through the service's internal
// endpoints so the schedule keeps rolling without an external cron.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(logger)
	defer func() {
		_ = logger.Sync()
	}()

	shutdownUptrace, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init uptrace", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	services, closeRepos, err := app.BuildServices(cfg, logger)
	if err != nil {
		logger.Error("build services", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = closeRepos()
	}()

	mode := "all"
	if len(os.Args) > 1 {
		mode = strings.ToLower(strings.TrimSpace(os.Args[1]))
	}

	failed := false
	switch mode {
	case "sync":
		failed = !runSync(ctx, cfg, services, logger)
	case "results":
		failed = !runResults(ctx, cfg, services, logger)
	case "all":
		syncOK := runSync(ctx, cfg, services, logger)
		resultsOK := runResults(ctx, cfg, services, logger)
		failed = !syncOK || !resultsOK
	default:
		logger.Error("unknown mode", "mode", mode, "valid", "sync|results|all")
		os.Exit(2)
	}

	if cfg.QStashEnabled {
		enqueueFollowUps(ctx, cfg, logger)
	}

	if err := shutdownUptrace(ctx); err != nil {
		logger.Error("shutdown uptrace", "error", err)
	}
	if failed {
		os.Exit(1)
	}
}

func runSync(ctx context.Context, cfg config.Config, services app.Services, logger *logging.Logger) bool {
	if err := services.Sync.SyncAll(ctx); err != nil {
		logger.ErrorContext(ctx, "schedule sync failed", "error", err)
		return false
	}
	logger.InfoContext(ctx, "schedule sync finished", "competitions", len(cfg.Competitions))
	return true
}

func runResults(ctx context.Context, cfg config.Config, services app.Services, logger *logging.Logger) bool {
	ok := true
	for _, competitionID := range sortedCompetitionIDs(cfg) {
		updated, err := services.Result.RefreshAndScore(ctx, competitionID)
		if err != nil {
			logger.ErrorContext(ctx, "result refresh failed", "competition_id", competitionID, "error", err)
			ok = false
			continue
		}
		logger.InfoContext(ctx, "result refresh finished", "competition_id", competitionID, "matches_updated", updated)
	}
	return ok
}

func enqueueFollowUps(ctx context.Context, cfg config.Config, logger *logging.Logger) {
	publisher := jobqueue.NewQStashPublisher(jobqueue.QStashPublisherConfig{
		BaseURL:          cfg.QStashBaseURL,
		Token:            cfg.QStashToken,
		TargetBaseURL:    cfg.QStashTargetBaseURL,
		Retries:          cfg.QStashRetries,
		InternalJobToken: cfg.InternalJobToken,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.QStashCircuitEnabled,
			FailureThreshold: cfg.QStashCircuitFailureCount,
			OpenTimeout:      cfg.QStashCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.QStashCircuitHalfOpenMaxReq,
		},
	}, logger)

	for _, competitionID := range sortedCompetitionIDs(cfg) {
		if err := publisher.EnqueueCompetitionSync(ctx, competitionID, cfg.JobSyncInterval); err != nil {
			logger.ErrorContext(ctx, "enqueue competition sync", "competition_id", competitionID, "error", err)
		}
		if err := publisher.EnqueueResultRefresh(ctx, competitionID, cfg.JobResultInterval); err != nil {
			logger.ErrorContext(ctx, "enqueue result refresh", "competition_id", competitionID, "error", err)
		}
	}
}

func sortedCompetitionIDs(cfg config.Config) []string {
	ids := make([]string, 0, len(cfg.Competitions))
	for id := range cfg.Competitions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
