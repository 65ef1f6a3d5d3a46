package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/nidrosoft/rizzer-sub001/internal/logger"
	"github.com/nidrosoft/rizzer-sub001/internal/models"
	"github.com/nidrosoft/rizzer-sub001/internal/request"
	"github.com/nidrosoft/rizzer-sub001/internal/services/gifts"
	"github.com/nidrosoft/rizzer-sub001/internal/validation"
	"github.com/nidrosoft/rizzer-sub001/internal/workers"
	"go.uber.org/zap"
)

// ProfileGenerator generates and inspects suggestions for one profile
type ProfileGenerator interface {
	GenerateForProfile(ctx context.Context, profileID uuid.UUID) (*gifts.GenerationResult, error)
	CheckReadiness(ctx context.Context, profileID uuid.UUID, threshold int) (*gifts.Readiness, error)
}

// BatchRunner runs one scheduled batch
type BatchRunner interface {
	Run(ctx context.Context) (*workers.BatchResult, error)
}

// SuggestionLister reads the live batch for a profile
type SuggestionLister interface {
	ListActive(ctx context.Context, profileID uuid.UUID) ([]models.StoredSuggestion, error)
}

var (
	_ ProfileGenerator = (*gifts.Generator)(nil)
	_ BatchRunner      = (*workers.BatchRunner)(nil)
)

// GenerateRequest selects single-profile or batch mode. Exactly one of
// ProfileID and Batch must be set.
type GenerateRequest struct {
	ProfileID string `json:"profileId" validate:"omitempty,uuid"`
	Batch     bool   `json:"batch"`
}

// SingleResponse is returned for a successful single-profile run
type SingleResponse struct {
	Success          bool      `json:"success"`
	ProfileID        uuid.UUID `json:"profileId"`
	SuggestionsCount int       `json:"suggestionsCount"`
	BatchID          uuid.UUID `json:"batchId"`
	DurationMS       int64     `json:"duration_ms"`
}

// BatchResponse is returned for a completed batch run
type BatchResponse struct {
	Success    bool     `json:"success"`
	Total      int      `json:"total"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Errors     []string `json:"errors"`
	DurationMS int64    `json:"duration_ms"`
}

// GiftHandler serves the generation endpoints
type GiftHandler struct {
	generator   ProfileGenerator
	batch       BatchRunner
	suggestions SuggestionLister
	logger      *zap.Logger
}

// NewGiftHandler creates the generation handler
func NewGiftHandler(generator ProfileGenerator, batch BatchRunner, suggestions SuggestionLister, log *zap.Logger) *GiftHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &GiftHandler{
		generator:   generator,
		batch:       batch,
		suggestions: suggestions,
		logger:      log,
	}
}

// RegisterRoutes registers the generation routes
func (h *GiftHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/generate-gift-suggestions", h.Generate).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/", h.Generate).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/profiles/{profileId}/readiness", h.Readiness).Methods(http.MethodGet)
	r.HandleFunc("/profiles/{profileId}/suggestions", h.ListSuggestions).Methods(http.MethodGet)
}

// Generate handles POST /generate-gift-suggestions
func (h *GiftHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	req, err := decodeGenerateRequest(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Batch {
		h.runBatch(w, r)
		return
	}
	h.runSingle(w, r, uuid.MustParse(req.ProfileID))
}

func decodeGenerateRequest(r *http.Request) (*GenerateRequest, error) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("request body is required")
		}
		return nil, errors.New("invalid JSON in request body")
	}
	if req.ProfileID == "" && !req.Batch {
		return nil, errors.New("profileId or batch is required")
	}
	if req.ProfileID != "" && req.Batch {
		return nil, errors.New("profileId and batch cannot be combined")
	}
	if err := validation.Validate.Struct(&req); err != nil {
		return nil, errors.New(validation.Message(err))
	}
	return &req, nil
}

func (h *GiftHandler) runSingle(w http.ResponseWriter, r *http.Request, profileID uuid.UUID) {
	result, err := h.generator.GenerateForProfile(r.Context(), profileID)
	if err != nil {
		h.logger.Warn("gift_request_failed",
			zap.String("profile_id", profileID.String()),
			zap.String("kind", gifts.ErrorKind(err)),
			zap.String("request_id", request.RequestIDFromContext(r.Context())),
			zap.String("error", logger.SanitizeError(err)),
		)
		respondJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, SingleResponse{
		Success:          true,
		ProfileID:        result.ProfileID,
		SuggestionsCount: len(result.Suggestions),
		BatchID:          result.BatchID,
		DurationMS:       result.DurationMS,
	})
}

func (h *GiftHandler) runBatch(w http.ResponseWriter, r *http.Request) {
	if caller := request.CallerFromContext(r); caller != nil && !caller.IsService() {
		respondJSONError(w, http.StatusForbidden, "batch mode requires the service role")
		return
	}

	result, err := h.batch.Run(r.Context())
	if err != nil {
		h.logger.Error("gift_batch_request_failed",
			zap.String("request_id", request.RequestIDFromContext(r.Context())),
			zap.String("error", logger.SanitizeError(err)),
		)
		respondJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	errs := result.Errors
	if errs == nil {
		errs = []string{}
	}
	respondJSON(w, http.StatusOK, BatchResponse{
		Success:    true,
		Total:      result.Total,
		Successful: result.Successful,
		Failed:     result.Failed,
		Errors:     errs,
		DurationMS: result.DurationMS,
	})
}

// Readiness handles GET /profiles/{profileId}/readiness. It scores the
// profile against the interactive threshold without generating anything.
func (h *GiftHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	profileID, ok := profileIDFromPath(w, r)
	if !ok {
		return
	}

	readiness, err := h.generator.CheckReadiness(r.Context(), profileID, gifts.ClientMinQualityScore)
	if err != nil {
		h.respondLookupError(w, r, profileID, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"profileId": profileID,
		"readiness": readiness,
	})
}

// ListSuggestions handles GET /profiles/{profileId}/suggestions
func (h *GiftHandler) ListSuggestions(w http.ResponseWriter, r *http.Request) {
	profileID, ok := profileIDFromPath(w, r)
	if !ok {
		return
	}

	rows, err := h.suggestions.ListActive(r.Context(), profileID)
	if err != nil {
		h.respondLookupError(w, r, profileID, err)
		return
	}
	if rows == nil {
		rows = []models.StoredSuggestion{}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"profileId":   profileID,
		"suggestions": rows,
	})
}

func (h *GiftHandler) respondLookupError(w http.ResponseWriter, r *http.Request, profileID uuid.UUID, err error) {
	if errors.Is(err, gifts.ErrNotFound) {
		respondJSONError(w, http.StatusNotFound, "profile not found")
		return
	}
	h.logger.Error("profile_lookup_failed",
		zap.String("profile_id", profileID.String()),
		zap.String("path", logger.SanitizePath(r.URL.Path)),
		zap.String("error", logger.SanitizeError(err)),
	)
	respondJSONError(w, http.StatusInternalServerError, "failed to load profile")
}

func profileIDFromPath(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["profileId"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "profileId must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}
