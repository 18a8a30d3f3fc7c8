package document

import (
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
)

// Apply replaces original with suggested inside html and reports whether a
// replacement happened.
//
// The first verbatim occurrence is replaced when there is one. Otherwise a
// paragraph whose whole text is the fragment, <p>original</p>, is swapped
// for <p>suggested</p>; the fragment is compared with surrounding whitespace
// trimmed, as model replies often carry a trailing newline. When neither
// matches, html is returned unchanged; callers report the miss.
func Apply(html, original, suggested string) (string, bool) {
	if original != "" && strings.Contains(html, original) {
		return strings.Replace(html, original, suggested, 1), true
	}

	if fragment := strings.TrimSpace(original); fragment != "" {
		wrapped := "<p>" + fragment + "</p>"
		if strings.Contains(html, wrapped) {
			return strings.Replace(html, wrapped, "<p>"+strings.TrimSpace(suggested)+"</p>", 1), true
		}
	}

	log.Debug().
		Str("original", truncate(original, 80)).
		Msg("Suggestion text not found in content, leaving content unchanged")
	return html, false
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
