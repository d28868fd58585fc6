package vanilla

// ChromeClass is a semantic CSS class applied by the templates.
type ChromeClass string

const (
	ClassForm     ChromeClass = "fb-form"
	ClassHeader   ChromeClass = "fb-header"
	ClassField    ChromeClass = "fb-field"
	ClassInvalid  ChromeClass = "fb-field--invalid"
	ClassDerived  ChromeClass = "fb-field--derived"
	ClassFieldset ChromeClass = "fb-fieldset"
	ClassError    ChromeClass = "fb-error"
	ClassErrors   ChromeClass = "fb-errors"
	ClassActions  ChromeClass = "fb-actions"
)

func defaultClasses() map[string]string {
	return map[string]string{
		"form":     string(ClassForm),
		"header":   string(ClassHeader),
		"field":    string(ClassField),
		"invalid":  string(ClassInvalid),
		"derived":  string(ClassDerived),
		"fieldset": string(ClassFieldset),
		"error":    string(ClassError),
		"errors":   string(ClassErrors),
		"actions":  string(ClassActions),
	}
}
