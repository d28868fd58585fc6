package editor

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

func newTestEditor() *Editor {
	n := 0
	return New(WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("f%d", n)
	}))
}

func fieldIDs(e *Editor) []string {
	var ids []string
	for _, f := range e.Fields() {
		ids = append(ids, f.ID)
	}
	return ids
}

func TestAddField_Defaults(t *testing.T) {
	e := newTestEditor()

	text, err := e.AddField(model.FieldTypeText)
	if err != nil {
		t.Fatalf("AddField text: %v", err)
	}
	want := model.FieldDefinition{ID: "f1", Type: model.FieldTypeText}
	if diff := cmp.Diff(want, text); diff != "" {
		t.Fatalf("text field mismatch (-want +got):\n%s", diff)
	}

	for _, typ := range []model.FieldType{model.FieldTypeSelect, model.FieldTypeRadio, model.FieldTypeCheckbox} {
		field, err := e.AddField(typ)
		if err != nil {
			t.Fatalf("AddField %s: %v", typ, err)
		}
		if diff := cmp.Diff(DefaultChoiceOptions, field.Options); diff != "" {
			t.Fatalf("%s options (-want +got):\n%s", typ, diff)
		}
	}

	if _, err := e.AddField("color"); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
	if got := len(e.Fields()); got != 4 {
		t.Fatalf("fields = %d, want 4", got)
	}
}

func TestAddField_UsesUUIDByDefault(t *testing.T) {
	e := New()
	a, _ := e.AddField(model.FieldTypeText)
	b, _ := e.AddField(model.FieldTypeText)
	if len(a.ID) != 36 || a.ID == b.ID {
		t.Fatalf("expected distinct uuids, got %q and %q", a.ID, b.ID)
	}
}

func TestUpdateField(t *testing.T) {
	e := newTestEditor()
	field, _ := e.AddField(model.FieldTypeSelect)

	err := e.UpdateField(field.ID, func(f *model.FieldDefinition) {
		f.ID = "hijacked"
		f.Label = " <b>Favourite</b> colour "
		f.Options = []string{"Red", "<i></i>", "Blue & Green"}
		f.Validation.Required = true
	})
	if err != nil {
		t.Fatalf("UpdateField: %v", err)
	}
	got, ok := e.Field(field.ID)
	if !ok {
		t.Fatalf("field id must not change")
	}
	want := model.FieldDefinition{
		ID:         "f1",
		Type:       model.FieldTypeSelect,
		Label:      "Favourite colour",
		Options:    []string{"Red", "Blue & Green"},
		Validation: model.ValidationRules{Required: true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("updated field (-want +got):\n%s", diff)
	}

	if err := e.UpdateField(field.ID, func(f *model.FieldDefinition) { f.Type = model.FieldTypeText }); err != nil {
		t.Fatalf("UpdateField type: %v", err)
	}
	if got, _ := e.Field(field.ID); got.Options != nil {
		t.Fatalf("options should be dropped for non-choice types, got %v", got.Options)
	}

	if err := e.SetLabel("nope", "x"); !errors.Is(err, ErrFieldNotFound) {
		t.Fatalf("expected ErrFieldNotFound, got %v", err)
	}
}

func TestSetOptionsParsesCommaText(t *testing.T) {
	e := newTestEditor()
	field, _ := e.AddField(model.FieldTypeRadio)
	if err := e.SetOptions(field.ID, " Small, Medium ,, Large "); err != nil {
		t.Fatalf("SetOptions: %v", err)
	}
	got, _ := e.Field(field.ID)
	if diff := cmp.Diff([]string{"Small", "Medium", "Large"}, got.Options); diff != "" {
		t.Fatalf("options (-want +got):\n%s", diff)
	}
}

func TestDeleteField(t *testing.T) {
	e := newTestEditor()
	for i := 0; i < 3; i++ {
		_, _ = e.AddField(model.FieldTypeText)
	}
	if err := e.DeleteField("f2"); err != nil {
		t.Fatalf("DeleteField: %v", err)
	}
	if diff := cmp.Diff([]string{"f1", "f3"}, fieldIDs(e)); diff != "" {
		t.Fatalf("ids after delete (-want +got):\n%s", diff)
	}
	if err := e.DeleteField("f2"); !errors.Is(err, ErrFieldNotFound) {
		t.Fatalf("expected ErrFieldNotFound, got %v", err)
	}
}

func TestReorderMoves(t *testing.T) {
	e := newTestEditor()
	for i := 0; i < 4; i++ {
		_, _ = e.AddField(model.FieldTypeText)
	}

	if !e.MoveUp("f2") {
		t.Fatalf("MoveUp f2 should succeed")
	}
	if e.MoveUp("f2") {
		t.Fatalf("MoveUp at the top should report false")
	}
	if e.MoveDown("f4") {
		t.Fatalf("MoveDown at the bottom should report false")
	}
	if diff := cmp.Diff([]string{"f2", "f1", "f3", "f4"}, fieldIDs(e)); diff != "" {
		t.Fatalf("after MoveUp (-want +got):\n%s", diff)
	}

	if err := e.Move(0, 3); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if diff := cmp.Diff([]string{"f1", "f3", "f4", "f2"}, fieldIDs(e)); diff != "" {
		t.Fatalf("after Move 0->3 (-want +got):\n%s", diff)
	}
	if err := e.Move(3, 1); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if diff := cmp.Diff([]string{"f1", "f2", "f3", "f4"}, fieldIDs(e)); diff != "" {
		t.Fatalf("after Move 3->1 (-want +got):\n%s", diff)
	}
	if err := e.Move(0, 9); !errors.Is(err, ErrInvalidOrder) {
		t.Fatalf("expected ErrInvalidOrder, got %v", err)
	}

	if err := e.Reorder([]string{"f4", "f3", "f2", "f1"}); err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	if diff := cmp.Diff([]string{"f4", "f3", "f2", "f1"}, fieldIDs(e)); diff != "" {
		t.Fatalf("after Reorder (-want +got):\n%s", diff)
	}
	for _, bad := range [][]string{{"f1"}, {"f1", "f1", "f2", "f3"}, {"f1", "f2", "f3", "zz"}} {
		if err := e.Reorder(bad); !errors.Is(err, ErrInvalidOrder) {
			t.Fatalf("Reorder(%v) = %v, want ErrInvalidOrder", bad, err)
		}
	}
	if diff := cmp.Diff([]string{"f4", "f3", "f2", "f1"}, fieldIDs(e)); diff != "" {
		t.Fatalf("failed reorder must not change order (-want +got):\n%s", diff)
	}
}

func TestIsBirthRelatedLabel(t *testing.T) {
	tests := map[string]bool{
		"Date of Birth": true,
		"DOB":           true,
		"Birthday":      true,
		"dob (mm/dd)":   true,
		"Start date":    false,
		"":              false,
	}
	for label, want := range tests {
		if got := IsBirthRelatedLabel(label); got != want {
			t.Errorf("IsBirthRelatedLabel(%q) = %v, want %v", label, got, want)
		}
	}
}

func TestSetDerived(t *testing.T) {
	e := newTestEditor()
	dob, _ := e.AddField(model.FieldTypeDate)
	start, _ := e.AddField(model.FieldTypeDate)
	_ = e.SetLabel(dob.ID, "Date of birth")
	_ = e.SetLabel(start.ID, "Start date")

	if err := e.SetDerived(dob.ID, true); err != nil {
		t.Fatalf("SetDerived: %v", err)
	}
	got, _ := e.Field(dob.ID)
	if got.Derived == nil || got.Derived.Formula != model.FormulaAgeFromDOB {
		t.Fatalf("expected default formula, got %+v", got.Derived)
	}

	if err := e.SetDerived(start.ID, true); !errors.Is(err, ErrNotDerivable) {
		t.Fatalf("expected ErrNotDerivable, got %v", err)
	}

	if err := e.SetDerived(dob.ID, false); err != nil {
		t.Fatalf("SetDerived off: %v", err)
	}
	if got, _ := e.Field(dob.ID); got.IsDerived() {
		t.Fatalf("derivation should be cleared")
	}

	age, _ := e.AddField(model.FieldTypeNumber)
	if err := e.SetDerivation(age.ID, "", dob.ID); err != nil {
		t.Fatalf("SetDerivation: %v", err)
	}
	got, _ = e.Field(age.ID)
	want := &model.DerivationSpec{Formula: model.FormulaAgeFromDOB, ParentFields: []string{dob.ID}}
	if diff := cmp.Diff(want, got.Derived); diff != "" {
		t.Fatalf("derivation (-want +got):\n%s", diff)
	}
}

func TestUpdateField_TypeChangeDropsToggleDerivation(t *testing.T) {
	e := newTestEditor()
	dob, _ := e.AddField(model.FieldTypeDate)
	_ = e.SetLabel(dob.ID, "Date of birth")
	if err := e.SetDerived(dob.ID, true); err != nil {
		t.Fatalf("SetDerived: %v", err)
	}
	age, _ := e.AddField(model.FieldTypeNumber)
	if err := e.SetDerivation(age.ID, model.FormulaAgeFromDOB, dob.ID); err != nil {
		t.Fatalf("SetDerivation: %v", err)
	}

	if err := e.UpdateField(dob.ID, func(f *model.FieldDefinition) { f.Type = model.FieldTypeSelect }); err != nil {
		t.Fatalf("UpdateField: %v", err)
	}
	if got, _ := e.Field(dob.ID); got.Type != model.FieldTypeSelect || got.IsDerived() {
		t.Fatalf("expected a plain select, got type=%s derived=%+v", got.Type, got.Derived)
	}

	if err := e.UpdateField(age.ID, func(f *model.FieldDefinition) { f.Label = "Age (years)" }); err != nil {
		t.Fatalf("UpdateField: %v", err)
	}
	if got, _ := e.Field(age.ID); !got.IsDerived() {
		t.Fatalf("explicit derivation should survive a relabel")
	}
}

type recordingSaver struct {
	saved []model.FormSchema
	err   error
}

func (r *recordingSaver) SaveForm(_ context.Context, schema model.FormSchema) (model.FormSchema, error) {
	if r.err != nil {
		return model.FormSchema{}, r.err
	}
	schema.ID = "saved-1"
	r.saved = append(r.saved, schema)
	return schema, nil
}

func TestBuildAndSave(t *testing.T) {
	e := newTestEditor()
	_, _ = e.AddField(model.FieldTypeText)

	e.SetName("   ")
	if _, err := e.Build(); !errors.Is(err, ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
	saver := &recordingSaver{}
	if _, err := e.Save(context.Background(), saver); !errors.Is(err, ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired from Save, got %v", err)
	}
	if len(saver.saved) != 0 {
		t.Fatalf("nothing should be saved without a name")
	}

	e.SetName("  Signup ")
	saved, err := e.Save(context.Background(), saver)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.ID != "saved-1" || saved.Name != "Signup" || len(saved.Fields) != 1 {
		t.Fatalf("unexpected saved schema %+v", saved)
	}
	if e.Name() != "" || len(e.Fields()) != 0 {
		t.Fatalf("editor should reset after a successful save")
	}
}

func TestSaveFailureKeepsState(t *testing.T) {
	e := newTestEditor()
	_, _ = e.AddField(model.FieldTypeText)
	e.SetName("Draft")

	boom := errors.New("quota exceeded")
	if _, err := e.Save(context.Background(), &recordingSaver{err: boom}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped save error, got %v", err)
	}
	if e.Name() != "Draft" || len(e.Fields()) != 1 {
		t.Fatalf("failed save must keep the editor state")
	}
}

func TestLoadCopiesSchema(t *testing.T) {
	schema := model.FormSchema{
		ID:   "x",
		Name: "Existing",
		Fields: []model.FieldDefinition{
			{ID: "a", Type: model.FieldTypeCheckbox, Options: []string{"1", "2"}},
		},
	}
	e := newTestEditor()
	e.Load(schema)
	_ = e.SetOptions("a", "3")

	if diff := cmp.Diff([]string{"1", "2"}, schema.Fields[0].Options); diff != "" {
		t.Fatalf("Load must not alias the input (-want +got):\n%s", diff)
	}
	if e.Name() != "Existing" {
		t.Fatalf("name = %q", e.Name())
	}
}
