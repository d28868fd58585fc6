package derive

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

func derivedField(id string, formula model.Formula, parents ...string) model.FieldDefinition {
	return model.FieldDefinition{
		ID:      id,
		Type:    model.FieldTypeText,
		Derived: &model.DerivationSpec{Formula: formula, ParentFields: parents},
	}
}

func issueCodes(issues []Issue) map[string][]string {
	out := map[string][]string{}
	for _, issue := range issues {
		out[issue.Code] = append(out[issue.Code], issue.Field)
	}
	return out
}

func TestCheck_CleanSchema(t *testing.T) {
	fields := []model.FieldDefinition{
		{ID: "first", Type: model.FieldTypeText},
		{ID: "last", Type: model.FieldTypeText},
		derivedField("name", model.FormulaFullName, "first", "last"),
		{ID: "dob", Type: model.FieldTypeDate},
		derivedField("age", model.FormulaAgeFromDOB, "dob"),
	}
	if issues := Check(fields); len(issues) != 0 {
		t.Fatalf("expected no issues, got %v", issues)
	}
}

func TestCheck_ReportsProblems(t *testing.T) {
	tests := []struct {
		name   string
		fields []model.FieldDefinition
		want   map[string][]string
	}{
		{
			name: "missing parent",
			fields: []model.FieldDefinition{
				derivedField("age", model.FormulaAgeFromDOB, "dob"),
			},
			want: map[string][]string{CodeMissingParent: {"age"}},
		},
		{
			name: "self reference",
			fields: []model.FieldDefinition{
				derivedField("age", model.FormulaAgeFromDOB, "age"),
			},
			want: map[string][]string{CodeSelfReference: {"age"}},
		},
		{
			name: "cycle",
			fields: []model.FieldDefinition{
				{ID: "x", Type: model.FieldTypeText},
				derivedField("a", model.FormulaFullName, "b", "x"),
				derivedField("b", model.FormulaFullName, "c", "x"),
				derivedField("c", model.FormulaFullName, "a", "x"),
			},
			want: map[string][]string{CodeCycle: {"a"}},
		},
		{
			name: "fullName arity",
			fields: []model.FieldDefinition{
				{ID: "first", Type: model.FieldTypeText},
				derivedField("name", model.FormulaFullName, "first"),
			},
			want: map[string][]string{CodeArity: {"name"}},
		},
		{
			name: "unknown formula and no parents",
			fields: []model.FieldDefinition{
				derivedField("odd", "shout"),
			},
			want: map[string][]string{CodeUnknownFormula: {"odd"}, CodeNoParents: {"odd"}},
		},
		{
			name: "duplicate id",
			fields: []model.FieldDefinition{
				{ID: "a", Type: model.FieldTypeText},
				{ID: "a", Type: model.FieldTypeNumber},
			},
			want: map[string][]string{CodeDuplicateID: {"a"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := issueCodes(Check(tt.fields))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("issues mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCheck_CustomFormulaIsKnown(t *testing.T) {
	engine := New(WithFormula("shout", FullName))
	fields := []model.FieldDefinition{
		{ID: "a", Type: model.FieldTypeText},
		derivedField("loud", "shout", "a"),
	}
	if issues := engine.Check(fields); len(issues) != 0 {
		t.Fatalf("expected registered formula to pass, got %v", issues)
	}
}

func TestOrder_DependenciesFirst(t *testing.T) {
	fields := []model.FieldDefinition{
		derivedField("c", model.FormulaFullName, "b", "x"),
		derivedField("b", model.FormulaFullName, "a", "x"),
		{ID: "x", Type: model.FieldTypeText},
		derivedField("a", model.FormulaFullName, "x", "x"),
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, Order(fields)); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestOrder_CycleMembersLast(t *testing.T) {
	fields := []model.FieldDefinition{
		derivedField("p", model.FormulaFullName, "q", "q"),
		derivedField("q", model.FormulaFullName, "p", "p"),
		{ID: "x", Type: model.FieldTypeText},
		derivedField("r", model.FormulaFullName, "x", "x"),
	}
	if diff := cmp.Diff([]string{"r", "p", "q"}, Order(fields)); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}
