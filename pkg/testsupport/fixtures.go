package testsupport

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/schemaio"
)

// ReferenceDate is the fixed "today" used by derivation tests.
var ReferenceDate = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

// FixedClock returns a clock that always reports t.
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// SignupSchema covers every field type, each validation rule and both
// built-in formulas.
func SignupSchema() model.FormSchema {
	return model.FormSchema{
		ID:        "signup",
		Name:      "Signup",
		CreatedAt: "2024-06-15T12:00:00Z",
		Fields: []model.FieldDefinition{
			{ID: "first", Type: model.FieldTypeText, Label: "First Name", Validation: model.ValidationRules{Required: true}},
			{ID: "last", Type: model.FieldTypeText, Label: "Last Name", Validation: model.ValidationRules{Required: true}},
			{ID: "fullName", Type: model.FieldTypeText, Label: "Full Name", Derived: &model.DerivationSpec{Formula: model.FormulaFullName, ParentFields: []string{"first", "last"}}},
			{ID: "email", Type: model.FieldTypeText, Label: "Email", Validation: model.ValidationRules{Required: true, Email: true}},
			{ID: "password", Type: model.FieldTypePassword, Label: "Password", Validation: model.ValidationRules{Required: true, PasswordRule: true}},
			{ID: "dob", Type: model.FieldTypeDate, Label: "Date of Birth"},
			{ID: "age", Type: model.FieldTypeNumber, Label: "Age", Derived: &model.DerivationSpec{Formula: model.FormulaAgeFromDOB, ParentFields: []string{"dob"}}},
			{ID: "bio", Type: model.FieldTypeTextarea, Label: "Bio", Validation: model.ValidationRules{MaxLength: model.IntPtr(200)}},
			{ID: "plan", Type: model.FieldTypeSelect, Label: "Plan", Options: []string{"free", "pro"}},
			{ID: "contact", Type: model.FieldTypeRadio, Label: "Contact", Options: []string{"email", "phone"}},
			{ID: "topics", Type: model.FieldTypeCheckbox, Label: "Topics", Options: []string{"go", "web", "data"}},
		},
	}
}

// CycleSchema has two derived fields that depend on each other.
func CycleSchema() model.FormSchema {
	return model.FormSchema{
		ID:   "cycle",
		Name: "Cycle",
		Fields: []model.FieldDefinition{
			{ID: "a", Type: model.FieldTypeText, Label: "A", Derived: &model.DerivationSpec{Formula: model.FormulaFullName, ParentFields: []string{"b", "b"}}},
			{ID: "b", Type: model.FieldTypeText, Label: "B", Derived: &model.DerivationSpec{Formula: model.FormulaFullName, ParentFields: []string{"a", "a"}}},
		},
	}
}

// MustLoadSchema decodes a JSON or YAML schema fixture.
func MustLoadSchema(t *testing.T, path string) model.FormSchema {
	t.Helper()

	schema, err := schemaio.ReadFile(path)
	if err != nil {
		t.Fatalf("load schema: %v", err)
	}
	return schema
}

// WriteSchema encodes schema into dir using the format implied by name and
// returns the path.
func WriteSchema(t *testing.T, dir, name string, schema model.FormSchema) string {
	t.Helper()

	path := filepath.Join(dir, name)
	data, err := schemaio.Encode(schema, schemaio.FormatFromPath(path))
	if err != nil {
		t.Fatalf("encode schema: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write schema: %v", err)
	}
	return path
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
