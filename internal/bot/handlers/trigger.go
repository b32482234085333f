package handlers

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Hazealign/black-angus-main/internal/chat"
)

// Trigger matches messages of the form "{Prefix}{keyword}[ args]". The
// keyword must be followed by whitespace or the end of the text, so "!e"
// never matches "!emoticon".
type Trigger struct {
	Prefix   string
	Keywords []string
	Off      bool
}

// Disabled reports whether the trigger was switched off at construction.
func (t Trigger) Disabled() bool {
	return t.Off
}

// Match implements Handler.Match.
func (t Trigger) Match(msg chat.Message) bool {
	if t.Off {
		return false
	}
	_, _, ok := t.split(msg.Content)
	return ok
}

// Rest returns the text after the matched keyword, trimmed.
func (t Trigger) Rest(content string) string {
	_, rest, _ := t.split(content)
	return rest
}

func (t Trigger) split(content string) (keyword, rest string, ok bool) {
	if t.Prefix == "" {
		return "", "", false
	}
	body, found := strings.CutPrefix(strings.TrimSpace(content), t.Prefix)
	if !found {
		return "", "", false
	}
	for _, kw := range t.Keywords {
		tail, found := strings.CutPrefix(body, kw)
		if !found {
			continue
		}
		if tail == "" {
			return kw, "", true
		}
		if r, _ := utf8.DecodeRuneInString(tail); unicode.IsSpace(r) {
			return kw, strings.TrimSpace(tail), true
		}
	}
	return "", "", false
}
