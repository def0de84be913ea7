package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/predictleague/predictor/internal/domain/competition"
	"github.com/predictleague/predictor/internal/domain/schedule"
	"github.com/predictleague/predictor/internal/domain/team"
	"github.com/predictleague/predictor/internal/platform/logging"
)

// SyncConfig tunes the batch sync run.
type SyncConfig struct {
	// Competitions lists what to sync, keyed by competition id.
	Competitions map[string]competition.Competition
	// InterCompetitionDelay spaces provider calls between competitions.
	// Rate-limit courtesy only; correctness does not depend on it.
	InterCompetitionDelay time.Duration
	// MaxWorkers bounds concurrent competition syncs.
	MaxWorkers int
}

type SyncResult struct {
	TeamsSynced   int
	SeasonID      string
	MatchesSynced int
}

// SyncService ingests provider schedules: teams first, then season
// metadata, then the match hierarchy, all inside one transaction per
// competition.
type SyncService struct {
	provider     ScheduleProvider
	teamRepo     team.Repository
	scheduleRepo schedule.Repository
	cfg          SyncConfig
	now          func() time.Time
	logger       *logging.Logger
}

func NewSyncService(
	provider ScheduleProvider,
	teamRepo team.Repository,
	scheduleRepo schedule.Repository,
	cfg SyncConfig,
	logger *logging.Logger,
) *SyncService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.MaxWorkers < 1 {
		cfg.MaxWorkers = 2
	}

	return &SyncService{
		provider:     provider,
		teamRepo:     teamRepo,
		scheduleRepo: scheduleRepo,
		cfg:          cfg,
		now:          time.Now,
		logger:       logger,
	}
}

// SyncCompetition performs a full idempotent sync of one competition.
// Every provider fetch completes and is buffered before the single
// transactional write begins, so provider latency never holds database
// resources open.
func (s *SyncService) SyncCompetition(ctx context.Context, competitionID string) (SyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.SyncCompetition")
	defer span.End()

	competitionID = strings.TrimSpace(competitionID)
	comp, ok := s.cfg.Competitions[competitionID]
	if !ok {
		return SyncResult{}, fmt.Errorf("%w: competition=%s is not configured", ErrNotFound, competitionID)
	}
	if err := comp.Validate(); err != nil {
		return SyncResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	externalTeams, err := s.provider.FetchTeams(ctx, comp.ID)
	if err != nil {
		return SyncResult{}, fmt.Errorf("fetch teams competition=%s: %w", comp.ID, err)
	}
	season, err := s.provider.FetchCurrentSeason(ctx, comp.ID)
	if err != nil {
		return SyncResult{}, fmt.Errorf("fetch current season competition=%s: %w", comp.ID, err)
	}
	matches, err := s.provider.FetchMatches(ctx, comp.ID)
	if err != nil {
		return SyncResult{}, fmt.Errorf("fetch matches competition=%s: %w", comp.ID, err)
	}

	teams := mapExternalTeams(comp.ID, externalTeams)
	if err := s.teamRepo.UpsertAll(ctx, teams); err != nil {
		return SyncResult{}, fmt.Errorf("upsert teams competition=%s: %w", comp.ID, err)
	}

	plan, skips := buildSyncPlan(comp, season, matches, s.now().UTC())
	for _, skip := range skips {
		s.logger.InfoContext(ctx, "sync skip",
			"competition_id", comp.ID,
			"reason", skip.reason,
			"provider_match_id", skip.matchID,
		)
	}

	stats, err := s.scheduleRepo.ApplySyncPlan(ctx, plan)
	if err != nil {
		return SyncResult{}, fmt.Errorf("apply sync plan competition=%s season=%s: %w", comp.ID, plan.Season.ID, err)
	}
	if stats.LegacyGameweeks > 0 {
		s.logger.WarnContext(ctx, "reclaimed legacy stage-less gameweeks",
			"competition_id", comp.ID,
			"season_id", plan.Season.ID,
			"count", stats.LegacyGameweeks,
		)
	}

	s.logger.InfoContext(ctx, "competition synced",
		"competition_id", comp.ID,
		"season_id", plan.Season.ID,
		"teams", len(teams),
		"gameweeks", stats.GameweeksWritten,
		"matches", stats.MatchesSynced,
	)

	return SyncResult{
		TeamsSynced:   len(teams),
		SeasonID:      plan.Season.ID,
		MatchesSynced: stats.MatchesSynced,
	}, nil
}

// SyncAll syncs every configured competition through a bounded worker
// pool. Competitions are independent; one failing does not stop the
// others.
func (s *SyncService) SyncAll(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.SyncAll")
	defer span.End()

	ids := make([]string, 0, len(s.cfg.Competitions))
	for id := range s.cfg.Competitions {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	pool, err := ants.NewPool(s.cfg.MaxWorkers)
	if err != nil {
		return fmt.Errorf("create sync worker pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	errs := make([]error, len(ids))
	for idx, id := range ids {
		idx, id := idx, id
		if idx > 0 && s.cfg.InterCompetitionDelay > 0 {
			select {
			case <-time.After(s.cfg.InterCompetitionDelay):
			case <-ctx.Done():
				wg.Wait()
				return ctx.Err()
			}
		}

		wg.Add(1)
		task := func() {
			defer wg.Done()
			if _, runErr := s.SyncCompetition(ctx, id); runErr != nil {
				errs[idx] = runErr
				s.logger.ErrorContext(ctx, "competition sync failed", "competition_id", id, "error", runErr)
			}
		}
		if submitErr := pool.Submit(task); submitErr != nil {
			wg.Done()
			errs[idx] = fmt.Errorf("submit sync task competition=%s: %w", id, submitErr)
		}
	}

	wg.Wait()
	for _, runErr := range errs {
		if runErr != nil {
			return fmt.Errorf("sync all competitions: %w", runErr)
		}
	}
	return nil
}

func mapExternalTeams(competitionID string, items []ExternalTeam) []team.Team {
	out := make([]team.Team, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if isUnresolvedTeam(item) {
			continue
		}
		t := mapExternalTeam(competitionID, item)
		if _, exists := seen[t.ID]; exists {
			continue
		}
		seen[t.ID] = struct{}{}
		out = append(out, t)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
