// Package document implements the string-level operations on article HTML:
// statistics, the submission gate, suggestion reconciliation and format
// conversion. Content is treated as an opaque markup string, never a DOM.
package document

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/inkpolish/inkpolish/internal/models"
)

// WordsPerMinute is the reading speed used for reading time estimates.
const WordsPerMinute = 200

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// StripTags removes every markup tag, leaving entities untouched.
func StripTags(html string) string {
	return tagPattern.ReplaceAllString(html, "")
}

// TextLength counts UTF-16 code units, the unit the editor front end reports.
func TextLength(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// WordCount counts whitespace-separated tokens. Whitespace follows the
// browser's definition so counts agree with the editor: U+FEFF separates
// words, U+0085 does not.
func WordCount(s string) int {
	return len(strings.FieldsFunc(s, isWordSpace))
}

func isWordSpace(r rune) bool {
	if r == '\ufeff' {
		return true
	}
	return r != '\u0085' && unicode.IsSpace(r)
}

// ComputeStats derives character, word, paragraph and reading time counts.
// The paragraph count never drops below 1, even for empty content.
func ComputeStats(html string) models.Stats {
	plain := StripTags(html)
	words := WordCount(plain)

	paragraphs := strings.Count(html, "<p>")
	if paragraphs == 0 {
		paragraphs = 1
	}

	return models.Stats{
		Characters:         TextLength(plain),
		Words:              words,
		Paragraphs:         paragraphs,
		ReadingTimeMinutes: int(math.Ceil(float64(words) / WordsPerMinute)),
	}
}

// Compare reports the relative change of each metric from original to corrected.
func Compare(original, corrected models.Stats) models.StatsComparison {
	return models.StatsComparison{
		Original:  original,
		Corrected: corrected,
		Improvement: map[string]int{
			"characters":           improvement(original.Characters, corrected.Characters),
			"words":                improvement(original.Words, corrected.Words),
			"paragraphs":           improvement(original.Paragraphs, corrected.Paragraphs),
			"reading_time_minutes": improvement(original.ReadingTimeMinutes, corrected.ReadingTimeMinutes),
		},
	}
}

func improvement(original, corrected int) int {
	if original == 0 {
		return 0
	}
	return int(math.Round(float64(corrected-original) / float64(original) * 100))
}
