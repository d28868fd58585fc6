// Package labels derives human-readable field labels from machine names.
package labels

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var separators = regexp.MustCompile(`[_\-\s.]+`)

var minorWords = map[string]bool{
	"a": true, "an": true, "and": true, "of": true, "or": true, "the": true, "to": true,
}

// Humanize turns property names such as "dateOfBirth", "first_name" or
// "userID" into "Date of Birth", "First Name" and "User ID".
func Humanize(name string) string {
	var words []string
	for _, chunk := range separators.Split(name, -1) {
		words = append(words, splitCamel(chunk)...)
	}
	out := make([]string, 0, len(words))
	for _, word := range words {
		if word == "" {
			continue
		}
		out = append(out, caseWord(word, len(out) == 0))
	}
	return strings.Join(out, " ")
}

func splitCamel(input string) []string {
	runes := []rune(input)
	var words []string
	start := 0
	for i := 1; i < len(runes); i++ {
		prev, cur := runes[i-1], runes[i]
		var next rune
		if i+1 < len(runes) {
			next = runes[i+1]
		}
		switch {
		case unicode.IsLower(prev) && unicode.IsUpper(cur),
			unicode.IsLetter(prev) && unicode.IsDigit(cur),
			unicode.IsDigit(prev) && unicode.IsLetter(cur),
			// "HTTPServer" splits before the last capital of the run
			unicode.IsUpper(prev) && unicode.IsUpper(cur) && unicode.IsLower(next):
			words = append(words, string(runes[start:i]))
			start = i
		}
	}
	if start < len(runes) {
		words = append(words, string(runes[start:]))
	}
	return words
}

func caseWord(word string, first bool) string {
	if utf8.RuneCountInString(word) > 1 && strings.ToUpper(word) == word {
		return word
	}
	lower := strings.ToLower(word)
	if !first && minorWords[lower] {
		return lower
	}
	r, size := utf8.DecodeRuneInString(lower)
	return string(unicode.ToUpper(r)) + lower[size:]
}
