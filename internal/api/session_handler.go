package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/readpath/readpath-api/internal/api/middleware"
	"github.com/readpath/readpath-api/internal/api/shared"
	"github.com/readpath/readpath-api/internal/domain"
	"github.com/readpath/readpath-api/internal/platform/logger"
	"github.com/readpath/readpath-api/internal/service/coreading"
)

// StartSessionRequest is the body for POST /sessions. The authenticated
// caller is the learner; the household and educator come from the body.
type StartSessionRequest struct {
	HouseholdID string `json:"household_id" validate:"required,uuid"`
	EducatorID  string `json:"educator_id"  validate:"required,uuid"`
	TimeboxMin  int    `json:"timebox_min"  validate:"required,gt=0,lte=180"`
}

// AdvanceSessionRequest is the body for POST /sessions/{id}/advance.
type AdvanceSessionRequest struct {
	TargetPhase string `json:"target_phase" validate:"required,oneof=BOOT PRE DURING POST CLOSE"`
}

// CheckpointResultRequest is the body for POST /sessions/{id}/checkpoint.
type CheckpointResultRequest struct {
	CheckpointID string `json:"checkpoint_id" validate:"omitempty,uuid"`
	Passed       *bool  `json:"passed"        validate:"required"`
}

// CheckpointResultResponse is the body returned after recording a
// checkpoint result.
type CheckpointResultResponse struct {
	Session        *domain.CoReadingContext `json:"session"`
	ShouldEscalate bool                     `json:"should_escalate"`
}

// SessionHandler handles co-reading session HTTP requests.
type SessionHandler struct {
	coreadingService coreading.CoReadingService
	logger           *slog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(svc coreading.CoReadingService, logger *slog.Logger) *SessionHandler {
	if svc == nil {
		panic("coreading service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &SessionHandler{
		coreadingService: svc,
		logger:           logger.With(slog.String("component", "session_handler")),
	}
}

// StartSession handles POST /sessions requests.
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	learnerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req StartSessionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	householdID, err := uuid.Parse(req.HouseholdID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid household_id")
		return
	}
	educatorID, err := uuid.Parse(req.EducatorID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid educator_id")
		return
	}

	res, err := h.coreadingService.StartSession(
		r.Context(),
		householdID,
		learnerID,
		educatorID,
		req.TimeboxMin,
	)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		shared.RespondWithErrorAndLog(w, r, statusCode, GetSafeErrorMessage(err), err)
		return
	}

	log.Info("session started via API",
		slog.String("session_id", res.Session.SessionID.String()),
		slog.String("learner_id", learnerID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, res)
}

// AdvanceSession handles POST /sessions/{id}/advance requests.
func (h *SessionHandler) AdvanceSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionIDFromPath(w, r)
	if !ok {
		return
	}

	var req AdvanceSessionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := h.coreadingService.Advance(r.Context(), sessionID, domain.Phase(req.TargetPhase))
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		shared.RespondWithErrorAndLog(w, r, statusCode, GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, res)
}

// RecordCheckpointResult handles POST /sessions/{id}/checkpoint requests.
func (h *SessionHandler) RecordCheckpointResult(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionIDFromPath(w, r)
	if !ok {
		return
	}

	var req CheckpointResultRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	var checkpointID *uuid.UUID
	if req.CheckpointID != "" {
		parsed, err := uuid.Parse(req.CheckpointID)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid checkpoint_id")
			return
		}
		checkpointID = &parsed
	}

	if *req.Passed {
		if checkpointID == nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "checkpoint_id required on pass")
			return
		}
		sess, err := h.coreadingService.HandleCheckpointPass(r.Context(), sessionID, *checkpointID)
		if err != nil {
			statusCode := MapErrorToStatusCode(err)
			shared.RespondWithErrorAndLog(w, r, statusCode, GetSafeErrorMessage(err), err)
			return
		}
		shared.RespondWithJSON(w, r, http.StatusOK, CheckpointResultResponse{
			Session:        sess,
			ShouldEscalate: false,
		})
		return
	}

	res, err := h.coreadingService.HandleCheckpointFail(r.Context(), sessionID, checkpointID)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		shared.RespondWithErrorAndLog(w, r, statusCode, GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, CheckpointResultResponse{
		Session:        res.Session,
		ShouldEscalate: res.ShouldEscalate,
	})
}

// CloseSession handles POST /sessions/{id}/close requests.
func (h *SessionHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionIDFromPath(w, r)
	if !ok {
		return
	}

	sess, err := h.coreadingService.Close(r.Context(), sessionID)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		shared.RespondWithErrorAndLog(w, r, statusCode, GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, sess)
}

// GetTimeouts handles GET /sessions/{id}/timeouts requests.
func (h *SessionHandler) GetTimeouts(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionIDFromPath(w, r)
	if !ok {
		return
	}

	status, err := h.coreadingService.CheckTimeouts(r.Context(), sessionID)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		shared.RespondWithErrorAndLog(w, r, statusCode, GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, status)
}

// sessionIDFromPath parses the {id} path parameter, responding with 400
// on failure.
func (h *SessionHandler) sessionIDFromPath(
	w http.ResponseWriter,
	r *http.Request,
) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "id")
	sessionID, err := uuid.Parse(raw)
	if err != nil || sessionID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid session ID")
		return uuid.Nil, false
	}
	return sessionID, true
}
