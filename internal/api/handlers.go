// Package api exposes the editor over HTTP.
package api

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/inkpolish/inkpolish/internal/analysis"
	"github.com/inkpolish/inkpolish/internal/database"
	"github.com/inkpolish/inkpolish/internal/document"
	"github.com/inkpolish/inkpolish/internal/models"
	"github.com/inkpolish/inkpolish/internal/session"
	"github.com/rs/zerolog/log"
)

// Version is reported by the health check.
const Version = "1.0.0"

// Handler contains all HTTP handlers.
type Handler struct {
	analyzer analysis.Analyzer
	sessions *session.Manager
	store    database.Store
	validate *validator.Validate
}

// NewHandler creates a new handler.
func NewHandler(analyzer analysis.Analyzer, sessions *session.Manager, store database.Store) *Handler {
	return &Handler{
		analyzer: analyzer,
		sessions: sessions,
		store:    store,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// HealthCheck returns the service health status.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"version":   Version,
		"sessions":  h.sessions.Len(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// decodeText reads a {text} body. It writes the error response itself and
// reports whether the handler should go on.
func (h *Handler) decodeText(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req models.TextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return "", false
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Text is required")
		return "", false
	}
	return req.Text, true
}

// CorrectGrammar handles POST /ai/correct-grammar.
func (h *Handler) CorrectGrammar(w http.ResponseWriter, r *http.Request) {
	text, ok := h.decodeText(w, r)
	if !ok {
		return
	}

	corrected, err := h.analyzer.CorrectGrammar(r.Context(), text)
	if err != nil {
		writeAnalysisError(w, analysis.OpGrammar, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"corrected_text": corrected})
}

// AnalyzeReadability handles POST /ai/analyze-readability.
func (h *Handler) AnalyzeReadability(w http.ResponseWriter, r *http.Request) {
	text, ok := h.decodeText(w, r)
	if !ok {
		return
	}

	items, err := h.analyzer.AnalyzeReadability(r.Context(), text)
	if err != nil {
		writeAnalysisError(w, analysis.OpReadability, err)
		return
	}
	if items == nil {
		items = []models.ReadabilityItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

// AnalyzeToneVoice handles POST /ai/analyze-tone-voice.
func (h *Handler) AnalyzeToneVoice(w http.ResponseWriter, r *http.Request) {
	text, ok := h.decodeText(w, r)
	if !ok {
		return
	}

	tv, err := h.analyzer.AnalyzeToneVoice(r.Context(), text)
	if err != nil {
		writeAnalysisError(w, analysis.OpToneVoice, err)
		return
	}
	writeJSON(w, http.StatusOK, tv)
}

// FindCliches handles POST /ai/find-cliches.
func (h *Handler) FindCliches(w http.ResponseWriter, r *http.Request) {
	text, ok := h.decodeText(w, r)
	if !ok {
		return
	}

	cliches, err := h.analyzer.FindCliches(r.Context(), text)
	if err != nil {
		writeAnalysisError(w, analysis.OpCliches, err)
		return
	}
	if cliches == nil {
		cliches = []models.Cliche{}
	}
	writeJSON(w, http.StatusOK, cliches)
}

func writeAnalysisError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, analysis.ErrEmptyText) {
		writeError(w, http.StatusBadRequest, "Text is required")
		return
	}
	log.Error().Err(err).Str("operation", op).Msg("Analysis request failed")
	writeError(w, http.StatusBadGateway, "Analysis failed: "+err.Error())
}

// decodeDraft reads a {title, content, format} body and converts markdown
// content to HTML.
func (h *Handler) decodeDraft(w http.ResponseWriter, r *http.Request) (models.DraftRequest, bool) {
	var req models.DraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return req, false
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Format must be html or markdown")
		return req, false
	}

	if req.Format == "markdown" {
		content, err := document.FromMarkdown(req.Content)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return req, false
		}
		req.Content = content
		req.Format = "html"
	}
	return req, true
}

// DocumentStats handles POST /documents/stats.
func (h *Handler) DocumentStats(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeDraft(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, document.ComputeStats(req.Content))
}

// ValidateDocument handles POST /documents/validate.
func (h *Handler) ValidateDocument(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeDraft(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, document.Validate(req.Title, req.Content))
}

// GetAuditLogs returns paginated audit logs.
func (h *Handler) GetAuditLogs(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r, 50)

	logs, err := h.store.GetAuditLogs(r.Context(), limit, offset)
	if err != nil {
		log.Error().Err(err).Msg("Failed to get audit logs")
		writeError(w, http.StatusInternalServerError, "Failed to get audit logs")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"logs":   logs,
		"limit":  limit,
		"offset": offset,
	})
}

// CreateAPIKey creates a new API key.
func (h *Handler) CreateAPIKey(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name              string `json:"name" validate:"required"`
		RequestsPerMinute int    `json:"requests_per_minute" validate:"gte=0"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}

	keyBytes := make([]byte, 32)
	if _, err := rand.Read(keyBytes); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to generate key")
		return
	}
	rawKey := "ink_" + base64.RawURLEncoding.EncodeToString(keyBytes)

	if req.RequestsPerMinute == 0 {
		req.RequestsPerMinute = 60
	}

	apiKey := &models.APIKey{
		ID:                uuid.New().String(),
		KeyHash:           sha256Hex(rawKey),
		Name:              req.Name,
		RequestsPerMinute: req.RequestsPerMinute,
		CreatedAt:         time.Now().UTC(),
	}

	if err := h.store.CreateAPIKey(r.Context(), apiKey); err != nil {
		log.Error().Err(err).Msg("Failed to create API key")
		writeError(w, http.StatusInternalServerError, "Failed to create API key")
		return
	}

	// The raw key is only ever returned here.
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":                  apiKey.ID,
		"key":                 rawKey,
		"name":                apiKey.Name,
		"requests_per_minute": apiKey.RequestsPerMinute,
		"created_at":          apiKey.CreatedAt,
	})
}

// ListAPIKeys lists all API keys (without the actual keys).
func (h *Handler) ListAPIKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := h.store.ListAPIKeys(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list API keys")
		writeError(w, http.StatusInternalServerError, "Failed to list API keys")
		return
	}
	if keys == nil {
		keys = []*models.APIKey{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"keys": keys,
	})
}

// DeleteAPIKey deletes an API key.
func (h *Handler) DeleteAPIKey(w http.ResponseWriter, r *http.Request) {
	err := h.store.DeleteAPIKey(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, database.ErrNotFound) {
		writeError(w, http.StatusNotFound, "API key not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to delete API key")
		writeError(w, http.StatusInternalServerError, "Failed to delete API key")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func pagination(r *http.Request, defaultLimit int) (int, int) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = defaultLimit
	}

	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Warn().Err(err).Msg("Failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
