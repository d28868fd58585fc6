package derive

import (
	"strings"
	"time"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// FormulaFunc computes a derived value from the parent values, given in
// parentFields order with missing parents as "". Returning ok=false skips the
// field for this pass and leaves its current value untouched.
type FormulaFunc func(now time.Time, parents []any) (value any, ok bool)

func defaultFormulas() map[model.Formula]FormulaFunc {
	return map[model.Formula]FormulaFunc{
		model.FormulaAgeFromDOB: AgeFromDOB,
		model.FormulaFullName:   FullName,
	}
}

// AgeFromDOB parses the first parent as a calendar date and returns the number
// of whole years elapsed until now.
func AgeFromDOB(now time.Time, parents []any) (any, bool) {
	if len(parents) == 0 {
		return nil, false
	}
	dob, ok := ParseDate(model.ValueString(parents[0]))
	if !ok {
		return nil, false
	}
	return AgeOn(dob, now), true
}

// FullName joins exactly two parents with a single space and trims the result.
func FullName(_ time.Time, parents []any) (any, bool) {
	if len(parents) != 2 {
		return nil, false
	}
	joined := model.ValueString(parents[0]) + " " + model.ValueString(parents[1])
	return strings.TrimSpace(joined), true
}

// AgeOn returns the exact elapsed years between dob and now: the year
// difference, minus one when now falls before the birthday in its year.
func AgeOn(dob, now time.Time) int {
	years := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	return years
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006/01/02",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
}

// ParseDate accepts the date shapes browsers and users commonly produce. Only
// the calendar date is kept; any time-of-day component is dropped.
func ParseDate(raw string) (time.Time, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}
