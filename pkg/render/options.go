package render

import (
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// RenderOptions carries the state a renderer needs beyond the schema itself.
type RenderOptions struct {
	// Values pre-populates controls, including computed values for derived
	// fields.
	Values model.FormValues
	// Errors holds inline messages keyed by field id. Entries for ids outside
	// the schema are shown as form-level errors.
	Errors model.FormErrors
	// RevealPasswords lists password fields rendered as plain text.
	RevealPasswords map[string]bool
	// HiddenFields are emitted as hidden inputs, sorted by name.
	HiddenFields map[string]string
	// Action and Method set the form element attributes. Method defaults to
	// POST.
	Action string
	Method string
	// Theme supplies tokens rendered as CSS custom properties.
	Theme *theme.RendererConfig
}

// FromSession builds options from a session snapshot's parts.
func FromSession(values model.FormValues, errs model.FormErrors, revealed map[string]bool) RenderOptions {
	return RenderOptions{
		Values:          values.Clone(),
		Errors:          errs.Clone(),
		RevealPasswords: revealed,
	}
}
