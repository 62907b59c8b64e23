package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/readpath/readpath-api/internal/api"
	apiMiddleware "github.com/readpath/readpath-api/internal/api/middleware"
	"github.com/readpath/readpath-api/internal/service/coreading"
	"github.com/readpath/readpath-api/internal/service/dashboard"
	"github.com/readpath/readpath-api/internal/service/orchestrator"
	"github.com/readpath/readpath-api/internal/service/review"
)

// routerDeps carries the services the router wires into handlers.
type routerDeps struct {
	logger       *slog.Logger
	review       review.ReviewService
	orchestrator orchestrator.OrchestratorService
	coreading    coreading.CoReadingService
	dashboard    dashboard.DashboardService
}

// newRouter creates and configures the application router with all
// routes and middleware.
func newRouter(deps routerDeps) http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	learnHandler := api.NewLearnHandler(deps.orchestrator, deps.logger)
	vocabHandler := api.NewVocabHandler(deps.review, deps.logger)
	sessionHandler := api.NewSessionHandler(deps.coreading, deps.logger)
	dashboardHandler := api.NewDashboardHandler(deps.dashboard, deps.logger)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(apiMiddleware.IdentityMiddleware)

			// Orchestration
			r.Get("/learn/next", learnHandler.GetNextActions)

			// Vocabulary review
			r.Get("/vocab/due", vocabHandler.GetDueItems)
			r.Post("/vocab/attempts", vocabHandler.SubmitAttempt)

			// Co-reading sessions
			r.Post("/sessions", sessionHandler.StartSession)
			r.Post("/sessions/{id}/advance", sessionHandler.AdvanceSession)
			r.Post("/sessions/{id}/checkpoint", sessionHandler.RecordCheckpointResult)
			r.Post("/sessions/{id}/close", sessionHandler.CloseSession)
			r.Get("/sessions/{id}/timeouts", sessionHandler.GetTimeouts)

			// Dashboards
			r.Get("/dashboards/family", dashboardHandler.GetFamilyView)
			r.Get("/dashboards/classroom", dashboardHandler.GetClassroomView)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			deps.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
