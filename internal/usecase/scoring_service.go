package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/predictleague/predictor/internal/domain/prediction"
	"github.com/predictleague/predictor/internal/domain/schedule"
	"github.com/predictleague/predictor/internal/platform/logging"
)

// ScoringService settles predictions against final match results.
type ScoringService struct {
	scheduleRepo   schedule.Repository
	predictionRepo prediction.Repository
	logger         *logging.Logger
}

func NewScoringService(
	scheduleRepo schedule.Repository,
	predictionRepo prediction.Repository,
	logger *logging.Logger,
) *ScoringService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ScoringService{
		scheduleRepo:   scheduleRepo,
		predictionRepo: predictionRepo,
		logger:         logger,
	}
}

// ScorePredictionsForMatch computes and persists points for every
// still-unscored prediction on a finished match. Calling it again with
// the same final score is a no-op: scored rows no longer match the
// unscored query and recomputation is deterministic. Matches share no
// mutable state, so concurrent calls for different matches are safe.
func (s *ScoringService) ScorePredictionsForMatch(ctx context.Context, matchID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.ScorePredictionsForMatch")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	match, exists, err := s.scheduleRepo.GetMatch(ctx, matchID)
	if err != nil {
		return fmt.Errorf("get match for scoring match=%s: %w", matchID, err)
	}
	if !exists {
		return fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}
	if !match.HasFinalScore() {
		// Expected when called speculatively; the result updater will
		// trigger scoring once the match finishes.
		s.logger.DebugContext(ctx, "skip scoring: match has no final score",
			"match_id", matchID,
			"status", match.Status,
		)
		return nil
	}

	unscored, err := s.predictionRepo.ListUnscoredByMatch(ctx, matchID)
	if err != nil {
		return fmt.Errorf("list unscored predictions match=%s: %w", matchID, err)
	}
	if len(unscored) == 0 {
		return nil
	}

	for _, row := range unscored {
		points, category := prediction.Score(row.HomeScore, row.AwayScore, *match.HomeScore, *match.AwayScore)
		if err := s.predictionRepo.SetPoints(ctx, row.ID, points); err != nil {
			return fmt.Errorf("set prediction points prediction=%s match=%s: %w", row.ID, matchID, err)
		}
		s.logger.DebugContext(ctx, "prediction scored",
			"prediction_id", row.ID,
			"match_id", matchID,
			"points", points,
			"category", category,
		)
	}

	if err := s.predictionRepo.RefreshGameweekPoints(ctx, matchID); err != nil {
		return fmt.Errorf("refresh gameweek point aggregates match=%s: %w", matchID, err)
	}

	s.logger.InfoContext(ctx, "match predictions scored",
		"match_id", matchID,
		"scored", len(unscored),
	)
	return nil
}
