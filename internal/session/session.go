// Package session drives one editing session through writing, correction
// and suggestion review.
//
// A session starts in WRITING. Submit moves it to CORRECTING while the
// analysis batch runs and to CORRECTED when the whole batch succeeds; any
// failure returns it to WRITING with nothing from the batch kept. The mutex
// is never held across analysis calls. Instead the CORRECTING state and the
// batch counter keep two operations from racing on the same content.
package session

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/inkpolish/inkpolish/internal/analysis"
	"github.com/inkpolish/inkpolish/internal/document"
	"github.com/inkpolish/inkpolish/internal/models"
	"github.com/rs/zerolog/log"
)

// Session is a single editing session.
type Session struct {
	id       string
	analyzer analysis.Analyzer
	timeout  time.Duration
	now      func() time.Time

	mu            sync.Mutex
	state         models.SessionState
	title         string
	content       string
	original      string
	originalStats models.Stats
	overallTone   string
	readability   []models.ReadabilityItem
	suggestions   []models.Suggestion
	applied       map[string]bool
	lastErr       string
	reanalyzing   bool
	batch         int
	updatedAt     time.Time
}

// Option configures a Session.
type Option func(*Session)

// WithTimeout bounds every analysis run of the session.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) { s.timeout = d }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// New creates a session in WRITING state.
func New(id string, analyzer analysis.Analyzer, title, content string, opts ...Option) *Session {
	s := &Session{
		id:       id,
		analyzer: analyzer,
		now:      time.Now,
		state:    models.StateWriting,
		title:    title,
		content:  content,
		applied:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.updatedAt = s.now()
	return s
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// State returns the current state.
func (s *Session) State() models.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastActive is the time of the last change.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

func (s *Session) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout > 0 {
		return context.WithTimeout(ctx, s.timeout)
	}
	return context.WithCancel(ctx)
}

// UpdateDraft replaces title and content and returns the live validation
// and stats. Content is read-only while a correction is running.
func (s *Session) UpdateDraft(title, content string) (models.Validation, models.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == models.StateCorrecting {
		return models.Validation{}, models.Stats{}, ErrInvalidState
	}

	s.title = title
	s.content = content
	s.updatedAt = s.now()
	return document.Validate(title, content), document.ComputeStats(content), nil
}

// Submit runs the correction batch for the current draft. It blocks until
// the batch finished and the session is CORRECTED, or failed and the
// session is back in WRITING.
func (s *Session) Submit(ctx context.Context) error {
	s.mu.Lock()
	if s.state != models.StateWriting {
		s.mu.Unlock()
		return ErrInvalidState
	}
	if v := document.Validate(s.title, s.content); !v.IsValid {
		s.mu.Unlock()
		return &ValidationError{Errors: v.Errors}
	}

	s.state = models.StateCorrecting
	s.original = s.content
	s.originalStats = document.ComputeStats(s.content)
	s.clearResults()
	s.lastErr = ""
	s.batch++
	content := s.content
	s.updatedAt = s.now()
	s.mu.Unlock()

	log.Info().Str("session", s.id).Msg("Correction started")

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	res, err := runBatch(ctx, s.analyzer, content)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.updatedAt = s.now()

	if err != nil {
		s.state = models.StateWriting
		s.original = ""
		s.originalStats = models.Stats{}
		s.lastErr = err.Error()
		log.Error().Err(err).Str("session", s.id).Msg("Correction failed")
		return err
	}

	s.content = res.content
	s.overallTone = res.tone.OverallTone
	s.readability = res.readability
	s.suggestions = BuildSuggestions(res.readability, res.tone, res.cliches)
	s.state = models.StateCorrected

	log.Info().
		Str("session", s.id).
		Int("suggestions", len(s.suggestions)).
		Msg("Correction completed")
	return nil
}

// Apply applies one suggestion to the corrected content. A suggestion whose
// original text is no longer in the content leaves everything unchanged and
// is reported with Applied false, not as an error.
func (s *Session) Apply(suggestionID string) (models.ApplyResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != models.StateCorrected {
		return models.ApplyResult{}, ErrInvalidState
	}

	idx := -1
	for i := range s.suggestions {
		if s.suggestions[i].ID == suggestionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.ApplyResult{}, ErrSuggestionNotFound
	}

	sg := &s.suggestions[idx]
	if sg.Applied {
		return models.ApplyResult{}, ErrAlreadyApplied
	}
	if !sg.Actionable {
		return models.ApplyResult{}, ErrNotActionable
	}

	result := models.ApplyResult{SuggestionID: suggestionID}
	out, ok := s.applyText(sg.OriginalText, sg.SuggestedText)
	if ok {
		s.content = out
		sg.Applied = true
		s.applied[suggestionID] = true
		s.updatedAt = s.now()
	} else {
		result.Warning = "original text not found in content"
		log.Warn().Str("session", s.id).Str("suggestion", suggestionID).Msg("Suggestion could not be applied")
	}

	result.Applied = ok
	result.Content = s.content
	result.Stats = document.ComputeStats(s.content)
	return result, nil
}

// applyText matches suggestion text against the escaped form it takes in the
// content. The replacement is always inserted escaped.
func (s *Session) applyText(original, suggested string) (string, bool) {
	escOriginal := document.EscapeText(original)
	escSuggested := document.EscapeText(suggested)
	if out, ok := document.Apply(s.content, escOriginal, escSuggested); ok {
		return out, true
	}
	if escOriginal == original {
		return s.content, false
	}
	return document.Apply(s.content, original, escSuggested)
}

// ReanalyzeCliches runs cliché detection again on the current content and
// replaces only the cliché suggestions. Applied cliché ids are dropped since
// their text may be gone; other suggestions stay as they are.
func (s *Session) ReanalyzeCliches(ctx context.Context) error {
	s.mu.Lock()
	if s.state != models.StateCorrected {
		s.mu.Unlock()
		return ErrInvalidState
	}
	if s.reanalyzing {
		s.mu.Unlock()
		return ErrBusy
	}
	s.reanalyzing = true
	batch := s.batch
	text := document.PlainText(s.content)
	s.mu.Unlock()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	cliches, err := s.analyzer.FindCliches(ctx, text)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.reanalyzing = false

	if err != nil {
		log.Error().Err(err).Str("session", s.id).Msg("Cliche re-analysis failed")
		return fmt.Errorf("cliche analysis failed: %w", err)
	}
	if s.state != models.StateCorrected || s.batch != batch {
		return ErrStale
	}

	kept := s.suggestions[:0:0]
	for _, sg := range s.suggestions {
		if sg.Kind != models.KindCliche {
			kept = append(kept, sg)
		}
	}
	s.suggestions = append(kept, clicheSuggestions(cliches)...)

	prefix := string(models.KindCliche) + "-"
	for id := range s.applied {
		if strings.HasPrefix(id, prefix) {
			delete(s.applied, id)
		}
	}
	s.updatedAt = s.now()

	log.Info().Str("session", s.id).Int("cliches", len(cliches)).Msg("Cliches re-analyzed")
	return nil
}

// Reset leaves CORRECTED for a new round of writing, keeping the current
// content as the draft.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != models.StateCorrected {
		return ErrInvalidState
	}
	s.state = models.StateWriting
	s.original = ""
	s.originalStats = models.Stats{}
	s.clearResults()
	s.lastErr = ""
	s.batch++
	s.updatedAt = s.now()
	return nil
}

// clearResults drops everything a batch produced. Callers hold s.mu.
func (s *Session) clearResults() {
	s.overallTone = ""
	s.readability = nil
	s.suggestions = nil
	s.applied = make(map[string]bool)
}

// Snapshot returns a copy of the session for display.
func (s *Session) Snapshot() models.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := models.SessionSnapshot{
		ID:                s.id,
		State:             s.state,
		Title:             s.title,
		Content:           s.content,
		OriginalContent:   s.original,
		Validation:        document.Validate(s.title, s.content),
		Stats:             document.ComputeStats(s.content),
		OverallTone:       s.overallTone,
		Readability:       append([]models.ReadabilityItem(nil), s.readability...),
		Suggestions:       append([]models.Suggestion{}, s.suggestions...),
		AppliedIDs:        make([]string, 0, len(s.applied)),
		LastError:         s.lastErr,
		ReanalyzingCliche: s.reanalyzing,
		UpdatedAt:         s.updatedAt,
	}
	for id := range s.applied {
		snap.AppliedIDs = append(snap.AppliedIDs, id)
	}
	sort.Strings(snap.AppliedIDs)

	if s.state == models.StateCorrected {
		cmp := document.Compare(s.originalStats, snap.Stats)
		snap.Comparison = &cmp
	}
	return snap
}
