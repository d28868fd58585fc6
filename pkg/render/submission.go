package render

import (
	"net/url"
	"sort"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// HiddenField is a hidden input emitted before the visible controls.
type HiddenField struct {
	Name  string
	Value string
}

// SortedHiddenFields returns the non-empty names of fields in name order.
func SortedHiddenFields(fields map[string]string) []HiddenField {
	if len(fields) == 0 {
		return nil
	}
	out := make([]HiddenField, 0, len(fields))
	for name, value := range fields {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			out = append(out, HiddenField{Name: trimmed, Value: value})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ValuesFromForm reads a posted HTML form back into FormValues. Checkbox
// fields keep every submitted value; other fields keep the first. Derived
// and unknown keys are ignored since their values are recomputed.
func ValuesFromForm(fields []model.FieldDefinition, form url.Values) model.FormValues {
	values := make(model.FormValues, len(fields))
	for _, field := range fields {
		if field.IsDerived() {
			continue
		}
		submitted, ok := form[field.ID]
		if !ok {
			continue
		}
		if field.Type.IsMulti() {
			values[field.ID] = append([]string{}, submitted...)
			continue
		}
		if len(submitted) > 0 {
			values[field.ID] = submitted[0]
		}
	}
	return values
}

// SplitErrors separates inline errors for fields in the schema from messages
// keyed by ids the schema does not have. Empty messages are dropped.
func SplitErrors(fields []model.FieldDefinition, errs model.FormErrors) (inline model.FormErrors, form []string) {
	known := make(map[string]bool, len(fields))
	for _, field := range fields {
		known[field.ID] = true
	}
	inline = model.FormErrors{}
	keys := make([]string, 0, len(errs))
	for id := range errs {
		keys = append(keys, id)
	}
	sort.Strings(keys)
	for _, id := range keys {
		msg := strings.TrimSpace(errs[id])
		switch {
		case msg == "":
		case known[id]:
			inline[id] = msg
		default:
			form = append(form, msg)
		}
	}
	return inline, form
}
