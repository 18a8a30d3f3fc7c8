package session

import (
	"fmt"

	"github.com/inkpolish/inkpolish/internal/models"
)

const (
	reasonPassive = "passive voice"
	reasonCliche  = "cliché or verbal crutch"
)

func suggestionID(kind models.SuggestionKind, index int) string {
	return fmt.Sprintf("%s-%d", kind, index)
}

// BuildSuggestions flattens the analysis results into one list. Ids are
// kind-index, stable within one batch.
func BuildSuggestions(readability []models.ReadabilityItem, tone models.ToneVoice, cliches []models.Cliche) []models.Suggestion {
	out := make([]models.Suggestion, 0, len(readability)+len(tone.Discordances)+len(tone.PassiveToActive)+len(cliches))

	for i, r := range readability {
		out = append(out, models.Suggestion{
			ID:            suggestionID(models.KindComplexSentence, i),
			Kind:          models.KindComplexSentence,
			OriginalText:  r.Sentence,
			SuggestedText: r.Suggestion,
			Reason:        r.Reason,
			Actionable:    r.Suggestion != "",
		})
	}
	for i, d := range tone.Discordances {
		out = append(out, models.Suggestion{
			ID:            suggestionID(models.KindToneDiscordance, i),
			Kind:          models.KindToneDiscordance,
			OriginalText:  d.Expression,
			SuggestedText: d.Suggestion,
			Reason:        d.Reason,
			Actionable:    true,
		})
	}
	for i, p := range tone.PassiveToActive {
		out = append(out, models.Suggestion{
			ID:            suggestionID(models.KindPassiveToActive, i),
			Kind:          models.KindPassiveToActive,
			OriginalText:  p.Original,
			SuggestedText: p.Active,
			Reason:        reasonPassive,
			Actionable:    true,
		})
	}
	return append(out, clicheSuggestions(cliches)...)
}

func clicheSuggestions(cliches []models.Cliche) []models.Suggestion {
	out := make([]models.Suggestion, 0, len(cliches))
	for i, c := range cliches {
		out = append(out, models.Suggestion{
			ID:            suggestionID(models.KindCliche, i),
			Kind:          models.KindCliche,
			OriginalText:  c.Original,
			SuggestedText: c.Suggestion,
			Reason:        reasonCliche,
			Actionable:    true,
		})
	}
	return out
}
