// Package analysis implements the four text operations behind the editor:
// grammar correction, readability, tone and voice, and cliché detection.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/inkpolish/inkpolish/internal/config"
	"github.com/inkpolish/inkpolish/internal/llm"
	"github.com/inkpolish/inkpolish/internal/models"
	"github.com/rs/zerolog/log"
)

// Operation names, used in logs and error messages.
const (
	OpGrammar     = "grammar"
	OpReadability = "readability"
	OpToneVoice   = "tone_voice"
	OpCliches     = "cliches"
)

var (
	// ErrEmptyText is returned when an operation is called without text.
	ErrEmptyText = errors.New("text is required")
	// ErrInvalidResponse is returned when a reply does not have the expected shape.
	ErrInvalidResponse = errors.New("invalid analysis response")
)

// Analyzer is the seam between the editing session and whatever produces
// corrections and suggestions.
type Analyzer interface {
	CorrectGrammar(ctx context.Context, text string) (string, error)
	AnalyzeReadability(ctx context.Context, text string) ([]models.ReadabilityItem, error)
	AnalyzeToneVoice(ctx context.Context, text string) (models.ToneVoice, error)
	FindCliches(ctx context.Context, text string) ([]models.Cliche, error)
}

// LLMAnalyzer runs every operation as a single prompt against an LLM provider.
type LLMAnalyzer struct {
	provider llm.Provider
	models   config.ModelOverride
	validate *validator.Validate
}

// NewLLMAnalyzer creates an analyzer backed by provider.
func NewLLMAnalyzer(provider llm.Provider, models config.ModelOverride) *LLMAnalyzer {
	return &LLMAnalyzer{
		provider: provider,
		models:   models,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *LLMAnalyzer) options(op string) llm.CompletionOptions {
	opts := llm.DefaultCompletionOptions()
	opts.MaxTokens = 4096
	switch op {
	case OpGrammar:
		opts.Model, opts.Temperature, opts.TopP = a.models.Grammar, 0.1, 0.6
	case OpReadability:
		opts.Model, opts.Temperature, opts.TopP = a.models.Readability, 0.2, 0.9
	case OpToneVoice:
		opts.Model, opts.Temperature, opts.TopP = a.models.ToneVoice, 0.3, 0.9
	case OpCliches:
		opts.Model, opts.Temperature, opts.TopP = a.models.Cliches, 0.2, 0.9
		opts.MaxTokens = 2048
	}
	return opts
}

func (a *LLMAnalyzer) complete(ctx context.Context, op, system, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyText
	}

	start := time.Now()
	response, err := a.provider.CompleteWithSystem(ctx, system, text, a.options(op))
	if err != nil {
		return "", fmt.Errorf("%s analysis failed: %w", op, err)
	}

	log.Debug().
		Str("operation", op).
		Str("provider", a.provider.Name()).
		Dur("duration", time.Since(start)).
		Int("response_len", len(response)).
		Msg("Analysis call completed")
	return response, nil
}

// CorrectGrammar returns the corrected version of text.
func (a *LLMAnalyzer) CorrectGrammar(ctx context.Context, text string) (string, error) {
	response, err := a.complete(ctx, OpGrammar, grammarPrompt, text)
	if err != nil {
		return "", err
	}
	corrected := strings.TrimSpace(stripFence(response))
	if corrected == "" {
		return "", fmt.Errorf("%w: grammar correction returned no text", ErrInvalidResponse)
	}
	return corrected, nil
}

// AnalyzeReadability flags hard sentences, with a simpler version when one is offered.
func (a *LLMAnalyzer) AnalyzeReadability(ctx context.Context, text string) ([]models.ReadabilityItem, error) {
	response, err := a.complete(ctx, OpReadability, readabilityPrompt, text)
	if err != nil {
		return nil, err
	}

	var reply readabilityReply
	if err := a.decode(response, &reply.Suggestions, &reply); err != nil {
		return nil, fmt.Errorf("readability: %w", err)
	}
	return reply.items(), nil
}

// AnalyzeToneVoice detects the overall tone, expressions that break it and
// passive sentences with their active rewrite.
func (a *LLMAnalyzer) AnalyzeToneVoice(ctx context.Context, text string) (models.ToneVoice, error) {
	response, err := a.complete(ctx, OpToneVoice, toneVoicePrompt, text)
	if err != nil {
		return models.ToneVoice{}, err
	}

	var reply toneVoiceReply
	if err := a.decode(response, nil, &reply); err != nil {
		return models.ToneVoice{}, fmt.Errorf("tone and voice: %w", err)
	}
	return reply.result(), nil
}

// FindCliches lists stock phrases and filler with a replacement each. An
// empty replacement means the phrase should be dropped.
func (a *LLMAnalyzer) FindCliches(ctx context.Context, text string) ([]models.Cliche, error) {
	response, err := a.complete(ctx, OpCliches, clichesPrompt, text)
	if err != nil {
		return nil, err
	}

	var reply clicheReply
	if err := a.decode(response, &reply.Suggestions, &reply); err != nil {
		return nil, fmt.Errorf("cliches: %w", err)
	}
	return reply.items(), nil
}
