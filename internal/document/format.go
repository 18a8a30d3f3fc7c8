package document

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"golang.org/x/net/html"
)

var (
	breakPattern      = regexp.MustCompile(`(?i)<br\s*/?>`)
	openParaPattern   = regexp.MustCompile(`(?i)<p(\s[^>]*)?>`)
	closeParaPattern  = regexp.MustCompile(`(?i)</p>`)
	blankLinePattern  = regexp.MustCompile(`\n[ \t]*\n`)
	extraBlankPattern = regexp.MustCompile(`\n{3,}`)
	entityRefPattern  = regexp.MustCompile(`^&(#[0-9]+|#[xX][0-9a-fA-F]+|[a-zA-Z][a-zA-Z0-9]*);`)
)

// PlainText converts editor HTML into the plain text sent to the analysis
// operations: line breaks become newlines, paragraphs are separated by a
// blank line and remaining tags are dropped. Entities are left encoded so
// the text converts back to the same markup.
func PlainText(content string) string {
	text := breakPattern.ReplaceAllString(content, "\n")
	text = openParaPattern.ReplaceAllString(text, "")
	text = closeParaPattern.ReplaceAllString(text, "\n\n")
	text = StripTags(text)
	text = extraBlankPattern.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// TextToHTML turns corrected plain text back into paragraph markup. Runs
// separated by blank lines become <p> blocks and single newlines inside a
// run become <br>. Markup characters in the text are escaped; entity
// references already present are kept as they are.
func TextToHTML(text string) string {
	text = EscapeText(strings.ReplaceAll(text, "\r\n", "\n"))

	var b strings.Builder
	for _, para := range blankLinePattern.Split(text, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		lines := strings.Split(para, "\n")
		for i := range lines {
			lines[i] = strings.TrimSpace(lines[i])
		}
		b.WriteString("<p>")
		b.WriteString(strings.Join(lines, "<br>"))
		b.WriteString("</p>")
	}
	return b.String()
}

// EscapeText escapes <, > and every & that does not start a known entity
// reference. Escaped text is returned unchanged.
func EscapeText(text string) string {
	if !strings.ContainsAny(text, "<>&") {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		switch c := text[i]; c {
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '&':
			if ref := entityRefPattern.FindString(text[i:]); ref != "" && html.UnescapeString(ref) != ref {
				b.WriteString(ref)
				i += len(ref) - 1
				continue
			}
			b.WriteString("&amp;")
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// FromMarkdown renders a markdown draft into editor HTML.
func FromMarkdown(md string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}
