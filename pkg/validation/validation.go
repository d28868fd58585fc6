package validation

import (
	"fmt"
	"regexp"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Issue codes.
const (
	CodeRequired     = "required"
	CodeTooShort     = "too_short"
	CodeTooLong      = "too_long"
	CodeInvalidEmail = "invalid_email"
	CodeWeakPassword = "weak_password"
)

// Messages surfaced to users.
const (
	MessageRequired     = "This field is required."
	MessageInvalidEmail = "Invalid email format."
	MessageWeakPassword = "Password must be at least 6 characters & contain a number."
)

// MinPasswordLength is the shortest value passwordRule accepts.
const MinPasswordLength = 6

// emailPart excludes "@" and whitespace, Unicode spaces and BOM included.
const emailPart = `[^@\s\v\p{Z}\x{FEFF}]+`

var (
	emailPattern = regexp.MustCompile(`^` + emailPart + `@` + emailPart + `\.` + emailPart + `$`)
	digitPattern = regexp.MustCompile(`\d`)
)

// Issue is a single rule failure.
type Issue struct {
	Field   string `json:"field,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type validator interface {
	Validate(value any) *Issue
}

// Check evaluates the field's rules against value and returns the first
// failing rule.
func Check(field model.FieldDefinition, value any) (Issue, bool) {
	for _, v := range buildValidators(field.Validation) {
		if issue := v.Validate(value); issue != nil {
			issue.Field = field.ID
			return *issue, true
		}
	}
	return Issue{}, false
}

// ValidateField returns the error message for value, or "" when it is valid.
func ValidateField(field model.FieldDefinition, value any) string {
	issue, failed := Check(field, value)
	if !failed {
		return ""
	}
	return issue.Message
}

// ValidateAll validates every field without short-circuiting. The result has
// an entry for every field; valid fields map to "".
func ValidateAll(fields []model.FieldDefinition, values model.FormValues) model.FormErrors {
	errs := make(model.FormErrors, len(fields))
	for _, field := range fields {
		errs[field.ID] = ValidateField(field, values[field.ID])
	}
	return errs
}

// Valid reports whether errs blocks submission.
func Valid(errs model.FormErrors) bool {
	return !errs.HasErrors()
}

func buildValidators(rules model.ValidationRules) []validator {
	var validators []validator
	if rules.Required {
		validators = append(validators, requiredValidator{})
	}
	if rules.MinLength != nil {
		validators = append(validators, minLengthValidator{min: *rules.MinLength})
	}
	if rules.MaxLength != nil {
		validators = append(validators, maxLengthValidator{max: *rules.MaxLength})
	}
	if rules.Email {
		validators = append(validators, emailValidator{})
	}
	if rules.PasswordRule {
		validators = append(validators, passwordValidator{})
	}
	return validators
}

type requiredValidator struct{}

func (requiredValidator) Validate(value any) *Issue {
	if model.IsEmpty(value) {
		return &Issue{Code: CodeRequired, Message: MessageRequired}
	}
	return nil
}

type minLengthValidator struct {
	min int
}

func (v minLengthValidator) Validate(value any) *Issue {
	n, ok := model.ValueLength(value)
	if ok && n < v.min {
		return &Issue{Code: CodeTooShort, Message: fmt.Sprintf("Minimum length is %d.", v.min)}
	}
	return nil
}

type maxLengthValidator struct {
	max int
}

func (v maxLengthValidator) Validate(value any) *Issue {
	n, ok := model.ValueLength(value)
	if ok && n > v.max {
		return &Issue{Code: CodeTooLong, Message: fmt.Sprintf("Maximum length is %d.", v.max)}
	}
	return nil
}

type emailValidator struct{}

func (emailValidator) Validate(value any) *Issue {
	if model.IsEmpty(value) {
		return nil
	}
	if !emailPattern.MatchString(model.ValueString(value)) {
		return &Issue{Code: CodeInvalidEmail, Message: MessageInvalidEmail}
	}
	return nil
}

type passwordValidator struct{}

// Validate treats an absent value as too short, matching the length check a
// user sees while typing.
func (passwordValidator) Validate(value any) *Issue {
	text := model.ValueString(value)
	n, _ := model.ValueLength(text)
	if n < MinPasswordLength || !digitPattern.MatchString(text) {
		return &Issue{Code: CodeWeakPassword, Message: MessageWeakPassword}
	}
	return nil
}
