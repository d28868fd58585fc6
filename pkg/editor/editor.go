// Package editor holds the in-progress schema a user is building: the form
// name plus an ordered field list, with the mutations the builder UI offers.
// An Editor is owned by one caller at a time and is not safe for concurrent
// use.
package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/internal/sanitize"
	"github.com/goliatone/go-formbuilder/pkg/model"
)

var (
	// ErrNameRequired is returned by Build and Save when the name is blank.
	ErrNameRequired = errors.New("editor: form name is required")
	// ErrFieldNotFound is returned for ids not in the editor.
	ErrFieldNotFound = errors.New("editor: field not found")
	// ErrInvalidType is returned for field types outside the closed set.
	ErrInvalidType = errors.New("editor: invalid field type")
	// ErrInvalidOrder is returned when a reorder is not a permutation of the
	// current fields or an index is out of range.
	ErrInvalidOrder = errors.New("editor: invalid field order")
	// ErrNotDerivable is returned when the derived toggle is not offered for
	// a field.
	ErrNotDerivable = errors.New("editor: field cannot be derived")
)

// DefaultChoiceOptions seeds new select, radio and checkbox fields.
var DefaultChoiceOptions = []string{"Option 1", "Option 2", "Option 3", "Option 4"}

// Saver persists a built schema.
type Saver interface {
	SaveForm(ctx context.Context, schema model.FormSchema) (model.FormSchema, error)
}

// Option configures an Editor.
type Option func(*Editor)

// WithIDGenerator overrides the field id source.
func WithIDGenerator(fn func() string) Option {
	return func(e *Editor) {
		if fn != nil {
			e.newID = fn
		}
	}
}

// WithLogger sets the editor logger.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(e *Editor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Editor is the editable schema state.
type Editor struct {
	name   string
	fields []model.FieldDefinition
	newID  func() string
	logger *zap.SugaredLogger
}

// New returns an empty editor.
func New(options ...Option) *Editor {
	e := &Editor{
		newID:  uuid.NewString,
		logger: zap.NewNop().Sugar(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Name returns the current form name as typed.
func (e *Editor) Name() string {
	return e.name
}

// SetName stores the form name.
func (e *Editor) SetName(name string) {
	e.name = name
}

// Fields returns a copy of the field list in display order.
func (e *Editor) Fields() []model.FieldDefinition {
	return model.CloneFields(e.fields)
}

// Field returns a copy of the field with id.
func (e *Editor) Field(id string) (model.FieldDefinition, bool) {
	i := e.index(id)
	if i < 0 {
		return model.FieldDefinition{}, false
	}
	return e.fields[i].Clone(), true
}

// AddField appends a new field of type t with a fresh id, an empty label and,
// for choice types, the default option list.
func (e *Editor) AddField(t model.FieldType) (model.FieldDefinition, error) {
	if !t.IsValid() {
		return model.FieldDefinition{}, fmt.Errorf("%w: %q", ErrInvalidType, t)
	}
	field := model.FieldDefinition{
		ID:   e.newID(),
		Type: t,
	}
	if t.IsChoice() {
		field.Options = append([]string(nil), DefaultChoiceOptions...)
	}
	e.fields = append(e.fields, field)
	return field.Clone(), nil
}

// UpdateField applies fn to the field with id. The id cannot be changed;
// label and options are sanitised after fn runs. A field derived through
// the date toggle loses its derivation when a type change rules it out;
// derivations attached with SetDerivation survive.
func (e *Editor) UpdateField(id string, fn func(*model.FieldDefinition)) error {
	i := e.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrFieldNotFound, id)
	}
	prev := e.fields[i]
	next := prev.Clone()
	fn(&next)
	if !next.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, next.Type)
	}
	next.ID = id
	next.Label = sanitize.Text(next.Label)
	next.Options = sanitize.List(next.Options)
	if !next.Type.IsChoice() {
		next.Options = nil
	}
	if next.Derived != nil && next.Type != prev.Type && CanDerive(prev) && !CanDerive(next) {
		next.Derived = nil
	}
	e.fields[i] = next
	return nil
}

// SetLabel updates a field label.
func (e *Editor) SetLabel(id, label string) error {
	return e.UpdateField(id, func(f *model.FieldDefinition) { f.Label = label })
}

// SetOptions replaces a choice field's options from comma separated text,
// as typed into the options input.
func (e *Editor) SetOptions(id, text string) error {
	return e.UpdateField(id, func(f *model.FieldDefinition) { f.Options = ParseOptions(text) })
}

// SetValidation replaces a field's rules.
func (e *Editor) SetValidation(id string, rules model.ValidationRules) error {
	return e.UpdateField(id, func(f *model.FieldDefinition) { f.Validation = rules.Clone() })
}

// DeleteField removes the field with id. Parent references to it held by
// derived fields are left for Lint to report.
func (e *Editor) DeleteField(id string) error {
	i := e.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrFieldNotFound, id)
	}
	e.fields = append(e.fields[:i], e.fields[i+1:]...)
	return nil
}

// Reorder replaces the display order. ids must name every field exactly once.
func (e *Editor) Reorder(ids []string) error {
	if len(ids) != len(e.fields) {
		return fmt.Errorf("%w: got %d ids for %d fields", ErrInvalidOrder, len(ids), len(e.fields))
	}
	byID := make(map[string]model.FieldDefinition, len(e.fields))
	for _, field := range e.fields {
		byID[field.ID] = field
	}
	next := make([]model.FieldDefinition, 0, len(ids))
	for _, id := range ids {
		field, ok := byID[id]
		if !ok {
			return fmt.Errorf("%w: %q missing or repeated", ErrInvalidOrder, id)
		}
		delete(byID, id)
		next = append(next, field)
	}
	e.fields = next
	return nil
}

// Move relocates the field at from to index to, shifting the fields in
// between, as a drag and drop does.
func (e *Editor) Move(from, to int) error {
	n := len(e.fields)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: move %d -> %d with %d fields", ErrInvalidOrder, from, to, n)
	}
	if from == to {
		return nil
	}
	field := e.fields[from]
	e.fields = append(e.fields[:from], e.fields[from+1:]...)
	e.fields = append(e.fields[:to], append([]model.FieldDefinition{field}, e.fields[to:]...)...)
	return nil
}

// MoveUp swaps the field with its predecessor. It reports false at the top.
func (e *Editor) MoveUp(id string) bool {
	return e.swap(id, -1)
}

// MoveDown swaps the field with its successor. It reports false at the
// bottom.
func (e *Editor) MoveDown(id string) bool {
	return e.swap(id, 1)
}

func (e *Editor) swap(id string, delta int) bool {
	i := e.index(id)
	j := i + delta
	if i < 0 || j < 0 || j >= len(e.fields) {
		return false
	}
	e.fields[i], e.fields[j] = e.fields[j], e.fields[i]
	return true
}

// CanDerive reports whether the derived toggle is offered for the field: a
// date field whose label reads as a birth date.
func CanDerive(field model.FieldDefinition) bool {
	return field.Type == model.FieldTypeDate && IsBirthRelatedLabel(field.Label)
}

// SetDerived switches derivation on or off. Switching on uses the default
// formula and keeps any parents already configured.
func (e *Editor) SetDerived(id string, enabled bool) error {
	i := e.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrFieldNotFound, id)
	}
	field := &e.fields[i]
	if !enabled {
		field.Derived = nil
		return nil
	}
	if !CanDerive(*field) {
		return fmt.Errorf("%w: %q", ErrNotDerivable, id)
	}
	if field.Derived == nil {
		field.Derived = &model.DerivationSpec{Formula: model.DefaultFormula}
	}
	return nil
}

// SetDerivation configures any field as derived with an explicit formula and
// parents. Unlike SetDerived it is not gated by the label heuristic.
func (e *Editor) SetDerivation(id string, formula model.Formula, parents ...string) error {
	i := e.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrFieldNotFound, id)
	}
	if formula == "" {
		formula = model.DefaultFormula
	}
	e.fields[i].Derived = &model.DerivationSpec{
		Formula:      formula,
		ParentFields: append([]string(nil), parents...),
	}
	return nil
}

// Build snapshots the editor into a schema ready to save. The schema has no
// id or timestamp yet; the repository assigns them.
func (e *Editor) Build() (model.FormSchema, error) {
	name := sanitize.Text(e.name)
	if name == "" {
		return model.FormSchema{}, ErrNameRequired
	}
	return model.FormSchema{
		Name:   name,
		Fields: e.Fields(),
	}, nil
}

// Save builds the schema, persists it through saver and resets the editor.
func (e *Editor) Save(ctx context.Context, saver Saver) (model.FormSchema, error) {
	schema, err := e.Build()
	if err != nil {
		return model.FormSchema{}, err
	}
	saved, err := saver.SaveForm(ctx, schema)
	if err != nil {
		return model.FormSchema{}, fmt.Errorf("editor: save %q: %w", schema.Name, err)
	}
	e.logger.Infow("form saved", "id", saved.ID, "name", saved.Name)
	e.Reset()
	return saved, nil
}

// Load replaces the editor state with a copy of schema.
func (e *Editor) Load(schema model.FormSchema) {
	e.name = schema.Name
	e.fields = model.CloneFields(schema.Fields)
}

// Reset clears the name and every field.
func (e *Editor) Reset() {
	e.name = ""
	e.fields = nil
}

func (e *Editor) index(id string) int {
	for i, field := range e.fields {
		if field.ID == id {
			return i
		}
	}
	return -1
}

// ParseOptions splits comma separated option text and trims each entry.
func ParseOptions(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	parts := strings.Split(text, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// IsBirthRelatedLabel reports labels that read as a birth date, which is
// when the builder offers the age derivation toggle.
func IsBirthRelatedLabel(label string) bool {
	lower := strings.ToLower(label)
	return strings.Contains(lower, "birth") || strings.Contains(lower, "dob")
}
