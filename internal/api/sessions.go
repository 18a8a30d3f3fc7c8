package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/inkpolish/inkpolish/internal/database"
	"github.com/inkpolish/inkpolish/internal/models"
	"github.com/inkpolish/inkpolish/internal/session"
	"github.com/rs/zerolog/log"
)

// writeSessionError maps session errors to HTTP statuses. Anything that is
// not a session sentinel came from an analysis call.
func writeSessionError(w http.ResponseWriter, err error) {
	var verr *session.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":  verr.Error(),
			"errors": verr.Errors,
		})
	case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrSuggestionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, session.ErrInvalidState),
		errors.Is(err, session.ErrBusy),
		errors.Is(err, session.ErrStale),
		errors.Is(err, session.ErrAlreadyApplied),
		errors.Is(err, session.ErrNotActionable):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusBadGateway, err.Error())
	}
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := h.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeSessionError(w, err)
		return nil, false
	}
	return s, true
}

// CreateSession starts an editing session from a draft.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeDraft(w, r)
	if !ok {
		return
	}

	s := h.sessions.Create(req.Title, req.Content)
	writeJSON(w, http.StatusCreated, s.Snapshot())
}

// GetSession returns the current view of a session.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.Snapshot())
}

// DeleteSession drops a session.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(chi.URLParam(r, "id")); err != nil {
		writeSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateDraft replaces the draft and returns the live validation.
func (h *Handler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	req, ok := h.decodeDraft(w, r)
	if !ok {
		return
	}

	validation, stats, err := s.UpdateDraft(req.Title, req.Content)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"validation": validation,
		"stats":      stats,
	})
}

// SubmitSession runs the correction batch. The request blocks until the
// batch is done.
func (h *Handler) SubmitSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := s.Submit(r.Context()); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Snapshot())
}

// ApplySuggestion applies one suggestion to the corrected content.
func (h *Handler) ApplySuggestion(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	result, err := s.Apply(chi.URLParam(r, "suggestionID"))
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ReanalyzeCliches refreshes the cliché suggestions of a corrected session.
func (h *Handler) ReanalyzeCliches(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := s.ReanalyzeCliches(r.Context()); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Snapshot())
}

// ResetSession returns a corrected session to writing.
func (h *Handler) ResetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := s.Reset(); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Snapshot())
}

// SaveSession persists the session as an article, keyed by the session id
// so saving again updates the same article.
func (h *Handler) SaveSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	snap := s.Snapshot()
	if snap.State == models.StateCorrecting {
		writeSessionError(w, session.ErrInvalidState)
		return
	}

	article := articleFromSnapshot(snap, time.Now().UTC())
	if err := h.store.SaveArticle(r.Context(), article); err != nil {
		log.Error().Err(err).Str("session", snap.ID).Msg("Failed to save article")
		writeError(w, http.StatusInternalServerError, "Failed to save article")
		return
	}

	log.Info().Str("article", article.ID).Str("status", string(article.Status)).Msg("Article saved")
	writeJSON(w, http.StatusCreated, article)
}

func articleFromSnapshot(snap models.SessionSnapshot, now time.Time) *models.Article {
	article := &models.Article{
		ID:              snap.ID,
		Title:           snap.Title,
		OriginalContent: snap.Content,
		Status:          models.ArticleDraft,
		Stats:           snap.Stats,
		AppliedCount:    len(snap.AppliedIDs),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if snap.State == models.StateCorrected {
		article.OriginalContent = snap.OriginalContent
		article.CorrectedContent = snap.Content
		article.Status = models.ArticleCorrected
	}
	article.DocumentHash = sha256Hex(article.OriginalContent)
	return article
}

// ListArticles returns saved articles, most recently updated first.
func (h *Handler) ListArticles(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r, 20)

	articles, err := h.store.ListArticles(r.Context(), limit, offset)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list articles")
		writeError(w, http.StatusInternalServerError, "Failed to list articles")
		return
	}
	if articles == nil {
		articles = []*models.Article{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"articles": articles,
		"limit":    limit,
		"offset":   offset,
	})
}

// GetArticle returns a saved article by ID.
func (h *Handler) GetArticle(w http.ResponseWriter, r *http.Request) {
	article, err := h.store.GetArticle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		log.Error().Err(err).Msg("Failed to get article")
		writeError(w, http.StatusInternalServerError, "Failed to get article")
		return
	}
	if article == nil {
		writeError(w, http.StatusNotFound, "Article not found")
		return
	}
	writeJSON(w, http.StatusOK, article)
}

// DeleteArticle removes a saved article.
func (h *Handler) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	err := h.store.DeleteArticle(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, database.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Article not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to delete article")
		writeError(w, http.StatusInternalServerError, "Failed to delete article")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
