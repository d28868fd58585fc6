package model

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// FormValues maps field ids to their current value: a string, a []string for
// multi-select checkboxes, or an int for computed ages.
type FormValues map[string]any

// Clone copies the map and any slice values.
func (v FormValues) Clone() FormValues {
	out := make(FormValues, len(v))
	for key, value := range v {
		out[key] = CloneValue(value)
	}
	return out
}

// String returns the string form of a value, "" when absent.
func (v FormValues) String(id string) string {
	return ValueString(v[id])
}

// FormErrors maps field ids to an error message. Empty or absent means valid.
type FormErrors map[string]string

// HasErrors reports whether any message is non-empty.
func (e FormErrors) HasErrors() bool {
	for _, msg := range e {
		if msg != "" {
			return true
		}
	}
	return false
}

// Clone copies the map.
func (e FormErrors) Clone() FormErrors {
	out := make(FormErrors, len(e))
	for key, msg := range e {
		out[key] = msg
	}
	return out
}

// CloneValue copies slice values so callers cannot alias session state.
func CloneValue(value any) any {
	switch typed := value.(type) {
	case []string:
		return append([]string(nil), typed...)
	case []any:
		return append([]any(nil), typed...)
	default:
		return value
	}
}

// IsEmpty reports nil, the empty string, and empty slices.
func IsEmpty(value any) bool {
	switch typed := value.(type) {
	case nil:
		return true
	case string:
		return typed == ""
	case []string:
		return len(typed) == 0
	case []any:
		return len(typed) == 0
	default:
		return false
	}
}

// ValueLength returns the rune count of a string or the element count of a
// slice. ok is false for values that have no length.
func ValueLength(value any) (n int, ok bool) {
	switch typed := value.(type) {
	case string:
		return utf8.RuneCountInString(typed), true
	case []string:
		return len(typed), true
	case []any:
		return len(typed), true
	default:
		return 0, false
	}
}

// ValueString renders a value as text. Slices join with ",".
func ValueString(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case int:
		return strconv.Itoa(typed)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case []string:
		return strings.Join(typed, ",")
	case []any:
		parts := make([]string, len(typed))
		for i, item := range typed {
			parts[i] = ValueString(item)
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(typed)
	}
}

// ValuesEqual compares two values of the shapes FormValues can hold.
func ValuesEqual(a, b any) bool {
	switch left := a.(type) {
	case nil:
		return b == nil
	case string:
		right, ok := b.(string)
		return ok && left == right
	case int:
		right, ok := b.(int)
		return ok && left == right
	case float64:
		right, ok := b.(float64)
		return ok && left == right
	case []string:
		right, ok := b.([]string)
		return ok && stringsEqual(left, right)
	case []any:
		right, ok := b.([]any)
		if !ok || len(left) != len(right) {
			return false
		}
		for i := range left {
			if !ValuesEqual(left[i], right[i]) {
				return false
			}
		}
		return true
	default:
		return fmt.Sprint(a) == fmt.Sprint(b)
	}
}
