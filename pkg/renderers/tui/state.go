package tui

import (
	"github.com/goliatone/go-formbuilder/pkg/model"
)

// derivedTracker remembers the last announced value of each derived field
// so the user only hears about changes.
type derivedTracker struct {
	fields []model.FieldDefinition
	last   map[string]any
}

func newDerivedTracker(fields []model.FieldDefinition, values model.FormValues) *derivedTracker {
	t := &derivedTracker{last: make(map[string]any)}
	for _, field := range fields {
		if !field.IsDerived() {
			continue
		}
		t.fields = append(t.fields, field)
		t.last[field.ID] = model.CloneValue(values[field.ID])
	}
	return t
}

// changed returns the derived fields whose value differs from the last call,
// in schema order, and records the new values.
func (t *derivedTracker) changed(values model.FormValues) []model.FieldDefinition {
	var out []model.FieldDefinition
	for _, field := range t.fields {
		current := values[field.ID]
		if model.ValuesEqual(t.last[field.ID], current) {
			continue
		}
		t.last[field.ID] = model.CloneValue(current)
		if !model.IsEmpty(current) {
			out = append(out, field)
		}
	}
	return out
}
