package vanilla

import (
	"regexp"
	"strings"
)

var unsafeIDChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

func controlID(fieldID string) string {
	cleaned := strings.Trim(unsafeIDChars.ReplaceAllString(fieldID, "-"), "-")
	if cleaned == "" {
		return ""
	}
	return "fb-" + cleaned
}

func labelID(fieldID string) string {
	if id := controlID(fieldID); id != "" {
		return id + "-label"
	}
	return ""
}

func errorID(fieldID string) string {
	if id := controlID(fieldID); id != "" {
		return id + "-error"
	}
	return ""
}

func containsString(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
