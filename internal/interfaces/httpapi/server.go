package httpapi

import (
	"net/http"

	"github.com/predictleague/predictor/internal/platform/logging"
)

func NewRouter(handler *Handler, logger *logging.Logger, internalJobToken string) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler)
	registerPublicRoutes(mux, handler)
	registerInternalJobRoutes(mux, handler, internalJobToken)

	return RequestTracing(RequestLogging(logger, recoverPanic(logger, mux)))
}

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/leagues/{leagueID}/leaderboard", handler.GetLeaderboard)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/users/{userID}/rank", handler.GetUserRank)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /internal/sync", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSyncAll)))
	mux.Handle("POST /internal/competitions/{competitionID}/sync", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunCompetitionSync)))
	mux.Handle("POST /internal/competitions/{competitionID}/results", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunResultRefresh)))
	mux.Handle("POST /internal/matches/{matchID}/score", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunMatchScoring)))
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(ctx, "panic recovered", "panic", rec)
				writeInternalError(ctx, w)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
