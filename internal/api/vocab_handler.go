package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/readpath/readpath-api/internal/api/middleware"
	"github.com/readpath/readpath-api/internal/api/shared"
	"github.com/readpath/readpath-api/internal/domain"
	"github.com/readpath/readpath-api/internal/platform/logger"
	"github.com/readpath/readpath-api/internal/service/review"
)

// SubmitAttemptRequest is the body for POST /vocab/attempts.
type SubmitAttemptRequest struct {
	Word     string `json:"word"     validate:"required"`
	Language string `json:"language"`
	Result   string `json:"result"   validate:"required,oneof=fail hard ok easy"`
}

// DueItemsResponse is the body for GET /vocab/due.
type DueItemsResponse struct {
	Items []*domain.VocabItem `json:"items"`
}

// VocabHandler handles vocabulary review HTTP requests.
type VocabHandler struct {
	reviewService review.ReviewService
	logger        *slog.Logger
}

// NewVocabHandler creates a new VocabHandler.
func NewVocabHandler(svc review.ReviewService, logger *slog.Logger) *VocabHandler {
	if svc == nil {
		panic("review service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &VocabHandler{
		reviewService: svc,
		logger:        logger.With(slog.String("component", "vocab_handler")),
	}
}

// SubmitAttempt handles POST /vocab/attempts requests.
func (h *VocabHandler) SubmitAttempt(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req SubmitAttemptRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	item, err := h.reviewService.SubmitAttempt(r.Context(), userID, review.SubmitRequest{
		Word:     req.Word,
		Language: req.Language,
		Result:   domain.AttemptResult(req.Result),
	})
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		shared.RespondWithErrorAndLog(w, r, statusCode, GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("attempt submitted",
		slog.String("user_id", userID.String()),
		slog.String("item_id", item.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, item)
}

// GetDueItems handles GET /vocab/due requests.
// An optional limit query parameter caps the result size.
func (h *VocabHandler) GetDueItems(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}

	items, err := h.reviewService.GetDueItems(r.Context(), userID, limit)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		shared.RespondWithErrorAndLog(w, r, statusCode, GetSafeErrorMessage(err), err)
		return
	}

	if items == nil {
		items = []*domain.VocabItem{}
	}

	log.Debug("returning due items",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(items)))
	shared.RespondWithJSON(w, r, http.StatusOK, DueItemsResponse{Items: items})
}
