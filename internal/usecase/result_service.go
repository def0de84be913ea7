package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/predictleague/predictor/internal/domain/competition"
	"github.com/predictleague/predictor/internal/domain/prediction"
	"github.com/predictleague/predictor/internal/domain/schedule"
	"github.com/predictleague/predictor/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
)

const (
	// resultWindow is the trailing window the refresh path asks the
	// provider for. Anything older was either caught by an earlier run
	// or will be caught by a full sync.
	resultWindow = 7 * 24 * time.Hour
	// scoringWorkers bounds concurrent per-match scoring runs.
	scoringWorkers = 4
)

// ResultService refreshes final scores of recently finished matches and
// triggers prediction scoring for them.
type ResultService struct {
	provider       ScheduleProvider
	scheduleRepo   schedule.Repository
	predictionRepo prediction.Repository
	scoring        *ScoringService
	competitions   map[string]competition.Competition
	now            func() time.Time
	logger         *logging.Logger
}

func NewResultService(
	provider ScheduleProvider,
	scheduleRepo schedule.Repository,
	predictionRepo prediction.Repository,
	scoring *ScoringService,
	competitions map[string]competition.Competition,
	logger *logging.Logger,
) *ResultService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ResultService{
		provider:       provider,
		scheduleRepo:   scheduleRepo,
		predictionRepo: predictionRepo,
		scoring:        scoring,
		competitions:   competitions,
		now:            time.Now,
		logger:         logger,
	}
}

// UpdateResults overwrites score and status of recently finished matches,
// writing only rows where at least one field actually differs, and
// returns how many matches changed. Schedule structure is untouched.
func (s *ResultService) UpdateResults(ctx context.Context, competitionID string) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResultService.UpdateResults")
	defer span.End()

	competitionID = strings.TrimSpace(competitionID)
	comp, ok := s.competitions[competitionID]
	if !ok {
		return 0, fmt.Errorf("%w: competition=%s is not configured", ErrNotFound, competitionID)
	}

	now := s.now().UTC()
	finished, err := s.provider.FetchFinishedMatches(ctx, comp.ID, now.Add(-resultWindow), now)
	if err != nil {
		return 0, fmt.Errorf("fetch finished matches competition=%s: %w", comp.ID, err)
	}
	if len(finished) == 0 {
		return 0, nil
	}

	incomingByID := make(map[string]schedule.Match, len(finished))
	ids := make([]string, 0, len(finished))
	for _, item := range finished {
		if item.ExternalID <= 0 || item.HomeScore == nil || item.AwayScore == nil {
			continue
		}
		id := schedule.BuildMatchID(comp.ID, item.ExternalID)
		incomingByID[id] = mapExternalMatch(comp.ID, "", item)
		ids = append(ids, id)
	}
	sort.Strings(ids)

	stored, err := s.scheduleRepo.ListMatchesByIDs(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("list stored matches competition=%s: %w", comp.ID, err)
	}

	changed := make([]schedule.Match, 0, len(stored))
	for _, row := range stored {
		incoming, ok := incomingByID[row.ID]
		if !ok || !matchResultDiffers(row, incoming) {
			continue
		}
		row.HomeScore = incoming.HomeScore
		row.AwayScore = incoming.AwayScore
		row.Status = schedule.MatchFinished
		changed = append(changed, row)
	}
	if len(changed) == 0 {
		return 0, nil
	}

	if err := s.scheduleRepo.UpdateMatchResults(ctx, changed); err != nil {
		return 0, fmt.Errorf("update match results competition=%s: %w", comp.ID, err)
	}

	s.logger.InfoContext(ctx, "match results updated",
		"competition_id", comp.ID,
		"fetched", len(finished),
		"changed", len(changed),
	)
	return len(changed), nil
}

// ScoreOutstanding re-derives the set of finished matches that still
// have unscored predictions and scores each. The join is recomputed
// every run rather than trusting any cached flag, so a missed or crashed
// scoring pass heals itself here.
func (s *ResultService) ScoreOutstanding(ctx context.Context, competitionID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResultService.ScoreOutstanding")
	defer span.End()

	matchIDs, err := s.predictionRepo.ListFinishedMatchIDsWithUnscored(ctx, competitionID)
	if err != nil {
		return fmt.Errorf("list matches needing scoring competition=%s: %w", competitionID, err)
	}
	if len(matchIDs) == 0 {
		return nil
	}

	workers := pool.New().WithErrors().WithContext(ctx).WithMaxGoroutines(scoringWorkers)
	for _, matchID := range matchIDs {
		matchID := matchID
		workers.Go(func(ctx context.Context) error {
			return s.scoring.ScorePredictionsForMatch(ctx, matchID)
		})
	}
	if err := workers.Wait(); err != nil {
		return fmt.Errorf("score outstanding matches competition=%s: %w", competitionID, err)
	}

	s.logger.InfoContext(ctx, "outstanding matches scored",
		"competition_id", competitionID,
		"matches", len(matchIDs),
	)
	return nil
}

// RefreshAndScore is the periodic entry point: refresh results, then
// score whatever the refresh (or any earlier missed run) left pending.
func (s *ResultService) RefreshAndScore(ctx context.Context, competitionID string) (int, error) {
	updated, err := s.UpdateResults(ctx, competitionID)
	if err != nil {
		return 0, err
	}
	if err := s.ScoreOutstanding(ctx, competitionID); err != nil {
		return updated, err
	}
	return updated, nil
}
