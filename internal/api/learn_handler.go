package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/readpath/readpath-api/internal/api/middleware"
	"github.com/readpath/readpath-api/internal/api/shared"
	"github.com/readpath/readpath-api/internal/domain"
	"github.com/readpath/readpath-api/internal/platform/logger"
	"github.com/readpath/readpath-api/internal/service/orchestrator"
)

// NextActionsResponse is the body for GET /learn/next.
type NextActionsResponse struct {
	Actions []*domain.NextAction `json:"actions"`
}

// LearnHandler handles next-action orchestration requests.
type LearnHandler struct {
	orchestrator orchestrator.OrchestratorService
	logger       *slog.Logger
}

// NewLearnHandler creates a new LearnHandler.
func NewLearnHandler(
	svc orchestrator.OrchestratorService,
	logger *slog.Logger,
) *LearnHandler {
	if svc == nil {
		panic("orchestrator service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &LearnHandler{
		orchestrator: svc,
		logger:       logger.With(slog.String("component", "learn_handler")),
	}
}

// GetNextActions handles GET /learn/next requests.
// Optional session_id and content_id query parameters scope the signal
// sources to what the learner is currently doing.
func (h *LearnHandler) GetNextActions(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	req := orchestrator.Request{UserID: userID}

	if raw := r.URL.Query().Get("session_id"); raw != "" {
		sessionID, err := uuid.Parse(raw)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid session_id")
			return
		}
		req.SessionID = sessionID
	}

	if raw := r.URL.Query().Get("content_id"); raw != "" {
		contentID, err := uuid.Parse(raw)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid content_id")
			return
		}
		req.ContentID = contentID
	}

	actions, err := h.orchestrator.GetNextActions(r.Context(), req)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		shared.RespondWithErrorAndLog(w, r, statusCode, GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("returning next actions",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(actions)))
	shared.RespondWithJSON(w, r, http.StatusOK, NextActionsResponse{Actions: actions})
}
