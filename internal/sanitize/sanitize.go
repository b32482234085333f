// Package sanitize cleans untrusted text before it is posted: feed
// descriptions are reduced to plain text, and markdown reply text is turned
// into the small HTML subset Telegram accepts.
package sanitize

import (
	"bytes"
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

var (
	blockTags      = regexp.MustCompile(`(?i)<br\s*/?>|</?p>|</?div>|</?pre>|</?h[1-6]>|</?li>|</?ul>|</?ol>|</?blockquote>`)
	manyNewlines   = regexp.MustCompile(`\n\s*\n+`)
	inlineSpaces   = regexp.MustCompile(`[ \t\f\r]+`)
	telegramBlocks = regexp.MustCompile(`</?p>|<br\s*/?>|</?h[1-6]>|</?ul>|</?ol>|</?blockquote>`)
	telegramItem   = regexp.MustCompile(`<li>`)
)

// Policy represents a sanitization policy for text content
type Policy struct {
	strict   *bluemonday.Policy
	telegram *bluemonday.Policy
	markdown goldmark.Markdown
}

// NewPolicy creates a Policy with the plain-text and Telegram rule sets.
func NewPolicy() *Policy {
	tg := bluemonday.NewPolicy()
	tg.AllowElements("b", "strong", "i", "em", "u", "s", "code", "pre")
	tg.AllowAttrs("href").OnElements("a")
	tg.AllowURLSchemes("http", "https", "tg")
	tg.RequireParseableURLs(true)

	return &Policy{
		strict:   bluemonday.StrictPolicy(),
		telegram: tg,
		markdown: goldmark.New(),
	}
}

// PlainText strips every tag from HTML input and normalizes whitespace.
// The result is cut to at most maxRunes runes (0 means no limit).
func (p *Policy) PlainText(input string, maxRunes int) string {
	if input == "" {
		return ""
	}

	text := blockTags.ReplaceAllString(input, "\n")
	text = p.strict.Sanitize(text)
	text = html.UnescapeString(text)
	text = inlineSpaces.ReplaceAllString(text, " ")
	text = manyNewlines.ReplaceAllString(text, "\n\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.TrimSpace(strings.Join(lines, "\n"))

	return Truncate(text, maxRunes)
}

// TelegramHTML renders markdown as the HTML subset Telegram's parse mode
// accepts. On conversion failure the input is escaped and returned as is.
func (p *Policy) TelegramHTML(markdown string) string {
	if markdown == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := p.markdown.Convert([]byte(markdown), &buf); err != nil {
		return html.EscapeString(markdown)
	}

	out := telegramItem.ReplaceAllString(buf.String(), "• ")
	out = strings.ReplaceAll(out, "</li>", "")
	out = telegramBlocks.ReplaceAllString(out, "\n")
	out = p.telegram.Sanitize(out)
	out = manyNewlines.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

// Truncate cuts s to maxRunes runes, ending with an ellipsis when cut.
func Truncate(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	if maxRunes == 1 {
		return "…"
	}
	return string(runes[:maxRunes-1]) + "…"
}
