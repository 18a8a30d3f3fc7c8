// Package models defines the core data structures used throughout the application.
package models

import (
	"time"
)

// SuggestionKind identifies the analysis that produced a suggestion.
type SuggestionKind string

const (
	KindComplexSentence SuggestionKind = "complex"
	KindCliche          SuggestionKind = "cliche"
	KindToneDiscordance SuggestionKind = "tone"
	KindPassiveToActive SuggestionKind = "voice"
)

// ReadabilityLevel grades how hard a sentence is to read.
type ReadabilityLevel string

const (
	LevelEasy     ReadabilityLevel = "easy"
	LevelHard     ReadabilityLevel = "hard"
	LevelVeryHard ReadabilityLevel = "veryHard"
)

// SessionState is the editing session lifecycle state.
type SessionState string

const (
	StateWriting    SessionState = "WRITING"
	StateCorrecting SessionState = "CORRECTING"
	StateCorrected  SessionState = "CORRECTED"
)

// ArticleStatus marks how far a saved article went through correction.
type ArticleStatus string

const (
	ArticleDraft     ArticleStatus = "draft"
	ArticleCorrected ArticleStatus = "corrected"
)

// Stats are structural statistics of an HTML document.
type Stats struct {
	Characters         int `json:"characters"`
	Words              int `json:"words"`
	Paragraphs         int `json:"paragraphs"`
	ReadingTimeMinutes int `json:"reading_time_minutes"`
}

// StatsComparison relates the stats of the submitted draft to the corrected one.
// Improvement values are percentages.
type StatsComparison struct {
	Original    Stats          `json:"original"`
	Corrected   Stats          `json:"corrected"`
	Improvement map[string]int `json:"improvement"`
}

// Validation is the result of the submission gate.
type Validation struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors"`
}

// Suggestion is a proposed original -> replacement edit.
type Suggestion struct {
	ID            string         `json:"id"`
	Kind          SuggestionKind `json:"kind"`
	OriginalText  string         `json:"original_text"`
	SuggestedText string         `json:"suggested_text"`
	Reason        string         `json:"reason,omitempty"`
	Actionable    bool           `json:"actionable"`
	Applied       bool           `json:"applied"`
}

// ReadabilityItem is one sentence flagged by the readability analysis.
// An empty Suggestion means the sentence was flagged without a fix.
type ReadabilityItem struct {
	Sentence   string           `json:"sentence"`
	Level      ReadabilityLevel `json:"level"`
	Reason     string           `json:"reason"`
	Suggestion string           `json:"suggestion,omitempty"`
}

// ToneDiscordance is an expression that contradicts the overall tone.
type ToneDiscordance struct {
	Expression string `json:"expression"`
	Reason     string `json:"reason"`
	Suggestion string `json:"suggestion"`
}

// PassiveConversion rewrites a passive sentence in active voice.
type PassiveConversion struct {
	Original string `json:"original"`
	Active   string `json:"active"`
}

// ToneVoice is the result of the tone-and-voice analysis.
type ToneVoice struct {
	OverallTone     string              `json:"overall_tone"`
	Discordances    []ToneDiscordance   `json:"discordances"`
	PassiveToActive []PassiveConversion `json:"passive_to_active"`
}

// Cliche is a stock phrase with a fresher alternative.
type Cliche struct {
	Original   string `json:"original"`
	Suggestion string `json:"suggestion"`
}

// SessionSnapshot is a read-only view of an editing session.
type SessionSnapshot struct {
	ID                string            `json:"id"`
	State             SessionState      `json:"state"`
	Title             string            `json:"title"`
	Content           string            `json:"content"`
	OriginalContent   string            `json:"original_content,omitempty"`
	Validation        Validation        `json:"validation"`
	Stats             Stats             `json:"stats"`
	Comparison        *StatsComparison  `json:"comparison,omitempty"`
	OverallTone       string            `json:"overall_tone,omitempty"`
	Readability       []ReadabilityItem `json:"readability,omitempty"`
	Suggestions       []Suggestion      `json:"suggestions"`
	AppliedIDs        []string          `json:"applied_ids"`
	LastError         string            `json:"last_error,omitempty"`
	ReanalyzingCliche bool              `json:"reanalyzing_cliches"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// ApplyResult reports the outcome of applying one suggestion.
type ApplyResult struct {
	SuggestionID string `json:"suggestion_id"`
	Applied      bool   `json:"applied"`
	Content      string `json:"content"`
	Stats        Stats  `json:"stats"`
	Warning      string `json:"warning,omitempty"`
}

// Article is a saved draft or corrected article.
type Article struct {
	ID               string        `json:"id"`
	Title            string        `json:"title"`
	OriginalContent  string        `json:"original_content"`
	CorrectedContent string        `json:"corrected_content,omitempty"`
	Status           ArticleStatus `json:"status"`
	Stats            Stats         `json:"stats"`
	AppliedCount     int           `json:"applied_count"`
	DocumentHash     string        `json:"document_hash"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// APIKey represents an API key for authentication.
type APIKey struct {
	ID                string     `json:"id"`
	KeyHash           string     `json:"-"` // Never expose
	Name              string     `json:"name"`
	RequestsPerMinute int        `json:"requests_per_minute"`
	CreatedAt         time.Time  `json:"created_at"`
	LastUsedAt        *time.Time `json:"last_used_at,omitempty"`
}

// AuditLog represents an API request audit entry.
type AuditLog struct {
	ID           string    `json:"id"`
	APIKeyID     string    `json:"api_key_id"`
	Endpoint     string    `json:"endpoint"`
	Method       string    `json:"method"`
	RequestSize  int64     `json:"request_size"`
	ResponseCode int       `json:"response_code"`
	DurationMs   int64     `json:"duration_ms"`
	Timestamp    time.Time `json:"timestamp"`
}

// TextRequest is the request body for the single-operation analysis endpoints.
type TextRequest struct {
	Text string `json:"text" validate:"required"`
}

// DraftRequest carries a title and content.
type DraftRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Format  string `json:"format,omitempty" validate:"omitempty,oneof=html markdown"`
}
