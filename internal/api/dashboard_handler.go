package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/readpath/readpath-api/internal/api/shared"
	"github.com/readpath/readpath-api/internal/domain"
	"github.com/readpath/readpath-api/internal/platform/logger"
	"github.com/readpath/readpath-api/internal/service/dashboard"
)

// DashboardHandler handles privacy-projected dashboard HTTP requests.
type DashboardHandler struct {
	dashboardService dashboard.DashboardService
	logger           *slog.Logger
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(svc dashboard.DashboardService, logger *slog.Logger) *DashboardHandler {
	if svc == nil {
		panic("dashboard service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &DashboardHandler{
		dashboardService: svc,
		logger:           logger.With(slog.String("component", "dashboard_handler")),
	}
}

// GetFamilyView handles GET /dashboards/family requests.
// Requires learner_id and mode query parameters.
func (h *DashboardHandler) GetFamilyView(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	learnerID, ok := h.learnerIDFromQuery(w, r)
	if !ok {
		return
	}

	mode := domain.FamilyPrivacyMode(r.URL.Query().Get("mode"))
	if mode == "" {
		mode = domain.FamilyAggregatedOnly
	}

	view, err := h.dashboardService.GetFamilyView(r.Context(), learnerID, mode)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		shared.RespondWithErrorAndLog(w, r, statusCode, GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("returning family dashboard",
		slog.String("learner_id", learnerID.String()),
		slog.String("mode", string(mode)))
	shared.RespondWithJSON(w, r, http.StatusOK, view)
}

// GetClassroomView handles GET /dashboards/classroom requests.
// Requires learner_id and mode query parameters.
func (h *DashboardHandler) GetClassroomView(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	learnerID, ok := h.learnerIDFromQuery(w, r)
	if !ok {
		return
	}

	mode := domain.ClassroomPrivacyMode(r.URL.Query().Get("mode"))
	if mode == "" {
		mode = domain.ClassroomAggregatedOnly
	}

	view, err := h.dashboardService.GetClassroomView(r.Context(), learnerID, mode)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		shared.RespondWithErrorAndLog(w, r, statusCode, GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("returning classroom dashboard",
		slog.String("learner_id", learnerID.String()),
		slog.String("mode", string(mode)))
	shared.RespondWithJSON(w, r, http.StatusOK, view)
}

func (h *DashboardHandler) learnerIDFromQuery(
	w http.ResponseWriter,
	r *http.Request,
) (uuid.UUID, bool) {
	raw := r.URL.Query().Get("learner_id")
	learnerID, err := uuid.Parse(raw)
	if err != nil || learnerID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid learner_id")
		return uuid.Nil, false
	}
	return learnerID, true
}
