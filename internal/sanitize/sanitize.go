// Package sanitize strips markup from user-entered text before it is stored
// in a schema.
package sanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

// Text removes every HTML element from raw and returns plain text with
// surrounding whitespace trimmed. Entities are decoded so "A & B" survives
// unchanged; escaping happens again at render time.
func Text(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	cleaned := policy().Sanitize(trimmed)
	return strings.TrimSpace(html.UnescapeString(cleaned))
}

// List sanitises each entry, dropping entries that end up empty.
func List(raw []string) []string {
	if raw == nil {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if cleaned := Text(item); cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}

func policy() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}
