package analysis

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/inkpolish/inkpolish/internal/models"
	"github.com/rs/zerolog/log"
)

var fencePattern = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")

// stripFence removes a markdown code fence wrapping the whole reply.
func stripFence(response string) string {
	response = strings.TrimSpace(response)
	if m := fencePattern.FindStringSubmatch(response); len(m) > 1 {
		return m[1]
	}
	return response
}

// extractJSON isolates the JSON value in a model reply, tolerating code
// fences and chatter around the payload.
func extractJSON(response string) (string, error) {
	response = stripFence(response)
	if json.Valid([]byte(response)) {
		return response, nil
	}

	if start := strings.IndexAny(response, "{["); start >= 0 {
		closer := "}"
		if response[start] == '[' {
			closer = "]"
		}
		end := strings.LastIndex(response, closer)
		if end > start && json.Valid([]byte(response[start:end+1])) {
			return response[start : end+1], nil
		}
	}
	return "", fmt.Errorf("%w: no JSON found in response", ErrInvalidResponse)
}

// decode unmarshals the reply into obj, or into list when the reply is a bare
// array, then validates obj.
func (a *LLMAnalyzer) decode(response string, list any, obj any) error {
	payload, err := extractJSON(response)
	if err != nil {
		return err
	}

	target := obj
	if list != nil && strings.HasPrefix(payload, "[") {
		target = list
	}
	if err := json.Unmarshal([]byte(payload), target); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if err := a.validate.Struct(obj); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}

type readabilityReply struct {
	Suggestions []readabilityEntry `json:"suggestions" validate:"dive"`
}

type readabilityEntry struct {
	Sentence   string `json:"sentence" validate:"required"`
	Level      string `json:"level" validate:"required"`
	Reason     string `json:"reason"`
	Suggestion string `json:"suggestion"`
}

func (r readabilityReply) items() []models.ReadabilityItem {
	items := make([]models.ReadabilityItem, 0, len(r.Suggestions))
	for _, e := range r.Suggestions {
		items = append(items, models.ReadabilityItem{
			Sentence:   e.Sentence,
			Level:      ParseLevel(e.Level),
			Reason:     e.Reason,
			Suggestion: strings.TrimSpace(e.Suggestion),
		})
	}
	return items
}

type toneVoiceReply struct {
	OverallTone  string `json:"overall_tone" validate:"required"`
	Discordances []struct {
		Expression string `json:"expression" validate:"required"`
		Reason     string `json:"reason"`
		Suggestion string `json:"suggestion" validate:"required"`
	} `json:"discordances" validate:"dive"`
	PassiveToActive []struct {
		Original string `json:"original" validate:"required"`
		Active   string `json:"active" validate:"required"`
	} `json:"passive_to_active" validate:"dive"`
}

func (r toneVoiceReply) result() models.ToneVoice {
	tv := models.ToneVoice{
		OverallTone:     r.OverallTone,
		Discordances:    make([]models.ToneDiscordance, 0, len(r.Discordances)),
		PassiveToActive: make([]models.PassiveConversion, 0, len(r.PassiveToActive)),
	}
	for _, d := range r.Discordances {
		tv.Discordances = append(tv.Discordances, models.ToneDiscordance{
			Expression: d.Expression,
			Reason:     d.Reason,
			Suggestion: d.Suggestion,
		})
	}
	for _, p := range r.PassiveToActive {
		tv.PassiveToActive = append(tv.PassiveToActive, models.PassiveConversion{
			Original: p.Original,
			Active:   p.Active,
		})
	}
	return tv
}

type clicheReply struct {
	Suggestions []clicheEntry `json:"suggestions" validate:"dive"`
}

type clicheEntry struct {
	Original   string `json:"original" validate:"required"`
	Suggestion string `json:"suggestion"`
}

func (r clicheReply) items() []models.Cliche {
	items := make([]models.Cliche, 0, len(r.Suggestions))
	for _, e := range r.Suggestions {
		items = append(items, models.Cliche{Original: e.Original, Suggestion: e.Suggestion})
	}
	return items
}

// ParseLevel maps the level labels models produce, in English or Spanish,
// onto the three readability levels. Unknown labels count as hard.
func ParseLevel(s string) models.ReadabilityLevel {
	switch strings.Join(strings.Fields(strings.ToLower(s)), " ") {
	case "easy", "fácil", "facil":
		return models.LevelEasy
	case "hard", "difficult", "difícil", "dificil":
		return models.LevelHard
	case "very hard", "veryhard", "very_hard", "very difficult", "muy difícil", "muy dificil":
		return models.LevelVeryHard
	default:
		log.Debug().Str("level", s).Msg("Unknown readability level, treating as hard")
		return models.LevelHard
	}
}
