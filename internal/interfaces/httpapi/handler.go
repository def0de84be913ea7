package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/predictleague/predictor/internal/platform/logging"
	"github.com/predictleague/predictor/internal/usecase"
)

type Handler struct {
	syncService        *usecase.SyncService
	resultService      *usecase.ResultService
	scoringService     *usecase.ScoringService
	leaderboardService *usecase.LeaderboardService
	logger             *logging.Logger
	validator          *validator.Validate
}

func NewHandler(
	syncService *usecase.SyncService,
	resultService *usecase.ResultService,
	scoringService *usecase.ScoringService,
	leaderboardService *usecase.LeaderboardService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		syncService:        syncService,
		resultService:      resultService,
		scoringService:     scoringService,
		leaderboardService: leaderboardService,
		logger:             logger,
		validator:          validator.New(),
	}
}

func (h *Handler) validateRequest(payload any) error {
	if err := h.validator.Struct(payload); err != nil {
		return fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

type syncRequest struct {
	CompetitionID string `validate:"required"`
}

func (h *Handler) RunCompetitionSync(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunCompetitionSync")
	defer span.End()

	competitionID := strings.TrimSpace(r.PathValue("competitionID"))
	if err := h.validateRequest(syncRequest{CompetitionID: competitionID}); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.syncService.SyncCompetition(ctx, competitionID)
	if err != nil {
		h.logger.WarnContext(ctx, "competition sync failed", "competition_id", competitionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, syncResultDTO{
		CompetitionID: competitionID,
		SeasonID:      result.SeasonID,
		TeamsSynced:   result.TeamsSynced,
		MatchesSynced: result.MatchesSynced,
	})
}

func (h *Handler) RunSyncAll(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSyncAll")
	defer span.End()

	if err := h.syncService.SyncAll(ctx); err != nil {
		h.logger.WarnContext(ctx, "sync all failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "synced"})
}

func (h *Handler) RunResultRefresh(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunResultRefresh")
	defer span.End()

	competitionID := strings.TrimSpace(r.PathValue("competitionID"))
	if err := h.validateRequest(syncRequest{CompetitionID: competitionID}); err != nil {
		writeError(ctx, w, err)
		return
	}

	updated, err := h.resultService.RefreshAndScore(ctx, competitionID)
	if err != nil {
		h.logger.WarnContext(ctx, "result refresh failed", "competition_id", competitionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, resultRefreshDTO{
		CompetitionID:  competitionID,
		MatchesUpdated: updated,
	})
}

type scoreMatchRequest struct {
	MatchID string `validate:"required"`
}

func (h *Handler) RunMatchScoring(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunMatchScoring")
	defer span.End()

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	if err := h.validateRequest(scoreMatchRequest{MatchID: matchID}); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.scoringService.ScorePredictionsForMatch(ctx, matchID); err != nil {
		h.logger.WarnContext(ctx, "match scoring failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"match_id": matchID, "status": "scored"})
}

type leaderboardRequest struct {
	LeagueID string `validate:"required"`
}

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeaderboard")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	if err := h.validateRequest(leaderboardRequest{LeagueID: leagueID}); err != nil {
		writeError(ctx, w, err)
		return
	}

	board, err := h.leaderboardService.GetLeaderboard(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "get leaderboard failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leaderboardToDTO(leagueID, board))
}

type userRankRequest struct {
	LeagueID string `validate:"required"`
	UserID   string `validate:"required"`
}

func (h *Handler) GetUserRank(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetUserRank")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	userID := strings.TrimSpace(r.PathValue("userID"))
	if err := h.validateRequest(userRankRequest{LeagueID: leagueID, UserID: userID}); err != nil {
		writeError(ctx, w, err)
		return
	}

	rank, err := h.leaderboardService.GetUserRank(ctx, leagueID, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "get user rank failed", "league_id", leagueID, "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, userRankDTO{
		LeagueID:       leagueID,
		UserID:         userID,
		Rank:           rank.Rank,
		TotalMembers:   rank.TotalMembers,
		TotalPoints:    rank.TotalPoints,
		ExactScores:    rank.ExactScores,
		CorrectResults: rank.CorrectResults,
	})
}
