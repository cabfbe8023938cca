package httpapi

import (
	"net/http"

	"github.com/BrainSnack9/playstat/internal/platform/logging"
)

func NewRouter(
	handler *Handler,
	logger *logging.Logger,
	corsAllowedOrigins []string,
	internalJobToken string,
) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler)
	registerPublicRoutes(mux, handler)
	registerInternalJobRoutes(mux, handler, internalJobToken)

	return RequestTracing(RequestLogging(logger, CORS(corsAllowedOrigins, recoverPanic(logger, mux))))
}

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/matches/upcoming", handler.ListUpcomingMatches)
	mux.HandleFunc("GET /v1/matches/{matchID}", handler.GetMatchDetail)
	mux.HandleFunc("GET /v1/reports/daily", handler.GetDailyReport)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("GET /v1/internal/jobs/sync-matches", RequireJobToken(internalJobToken, http.HandlerFunc(handler.RunSyncMatchesJob)))
	mux.Handle("GET /v1/internal/jobs/sync-standings", RequireJobToken(internalJobToken, http.HandlerFunc(handler.RunSyncStandingsJob)))
	mux.Handle("GET /v1/internal/jobs/generate-previews", RequireJobToken(internalJobToken, http.HandlerFunc(handler.RunGeneratePreviewsJob)))
	mux.Handle("GET /v1/internal/jobs/daily-report", RequireJobToken(internalJobToken, http.HandlerFunc(handler.RunDailyReportJob)))
	mux.Handle("GET /v1/internal/jobs/translate-content", RequireJobToken(internalJobToken, http.HandlerFunc(handler.RunTranslateContentJob)))
	mux.Handle("GET /v1/internal/jobs/recompute-stats", RequireJobToken(internalJobToken, http.HandlerFunc(handler.RunRecomputeStatsJob)))
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.recoverPanic")
		defer span.End()

		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(ctx, "panic recovered", "panic", rec)
				writeInternalError(ctx, w)
			}
		}()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
