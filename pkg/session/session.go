// Package session holds the runtime state of one form being filled in and
// wires validation and derivation together on every change.
package session

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/pkg/derive"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

var (
	// ErrUnknownField is returned when an id does not belong to the schema.
	ErrUnknownField = errors.New("session: unknown field")
	// ErrReadOnlyField is returned when a caller writes a derived field.
	ErrReadOnlyField = errors.New("session: derived field is read-only")
)

// Snapshot is an immutable copy of session state handed to listeners and
// renderers.
type Snapshot struct {
	Values   model.FormValues
	Errors   model.FormErrors
	Warnings []derive.Warning
	Dirty    map[string]bool
	Touched  map[string]bool
	Revealed map[string]bool
}

// SubmitResult reports the outcome of Submit.
type SubmitResult struct {
	OK     bool
	Errors model.FormErrors
}

// Option configures a Session.
type Option func(*Session)

// WithEngine sets the derivation engine. Defaults to derive.New().
func WithEngine(engine *derive.Engine) Option {
	return func(s *Session) {
		if engine != nil {
			s.engine = engine
		}
	}
}

// WithLogger sets the session logger.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithChangeListener registers fn to receive a snapshot after every change.
func WithChangeListener(fn func(Snapshot)) Option {
	return func(s *Session) {
		if fn != nil {
			s.listeners = append(s.listeners, fn)
		}
	}
}

// WithValues prefills values on top of field defaults. Entries for derived
// or unknown fields are ignored.
func WithValues(values model.FormValues) Option {
	return func(s *Session) {
		s.prefill = values.Clone()
	}
}

// Session is safe for concurrent use. Every mutation recomputes and validates
// under a single lock, so no caller observes a half-applied change.
type Session struct {
	mu sync.Mutex

	fields  []model.FieldDefinition
	byID    map[string]model.FieldDefinition
	engine  *derive.Engine
	logger  *zap.SugaredLogger
	prefill model.FormValues

	listeners []func(Snapshot)

	values   model.FormValues
	errors   model.FormErrors
	warnings []derive.Warning
	dirty    map[string]bool
	touched  map[string]bool
	revealed map[string]bool
}

// New creates a session over fields. Defaults of non-derived fields are
// seeded, prefill applied, and derived values computed once.
func New(fields []model.FieldDefinition, options ...Option) *Session {
	s := &Session{
		fields: model.CloneFields(fields),
		byID:   make(map[string]model.FieldDefinition, len(fields)),
		logger: zap.NewNop().Sugar(),
	}
	for _, field := range s.fields {
		if _, ok := s.byID[field.ID]; !ok {
			s.byID[field.ID] = field
		}
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	if s.engine == nil {
		s.engine = derive.New(derive.WithLogger(s.logger))
	}
	s.seed()
	return s
}

// Fields returns a copy of the schema fields.
func (s *Session) Fields() []model.FieldDefinition {
	return model.CloneFields(s.fields)
}

func (s *Session) seed() {
	values := model.FormValues{}
	for _, field := range s.fields {
		if field.IsDerived() || field.DefaultValue == "" {
			continue
		}
		values[field.ID] = field.DefaultValue
	}
	for id, value := range s.prefill {
		field, ok := s.byID[id]
		if !ok || field.IsDerived() {
			s.logger.Debugw("ignoring prefill value", "field", id)
			continue
		}
		values[id] = model.CloneValue(value)
	}

	result := s.engine.Recompute(s.fields, values)
	s.values = result.Values
	s.warnings = result.Warnings
	s.errors = model.FormErrors{}
	s.dirty = map[string]bool{}
	s.touched = map[string]bool{}
	s.revealed = map[string]bool{}
}

// SetValue stores value for id, recomputes every derived field and validates
// the changed field.
func (s *Session) SetValue(id string, value any) error {
	s.mu.Lock()
	field, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownField, id)
	}
	if field.IsDerived() {
		s.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrReadOnlyField, id)
	}

	next := s.values.Clone()
	next[id] = model.CloneValue(value)
	result := s.engine.Recompute(s.fields, next)

	s.values = result.Values
	s.warnings = result.Warnings
	s.errors[id] = validation.ValidateField(field, s.values[id])
	s.dirty[id] = true
	s.touched[id] = true
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
	return nil
}

// Touch validates the current value of id, as a blur would.
func (s *Session) Touch(id string) error {
	s.mu.Lock()
	field, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownField, id)
	}
	s.errors[id] = validation.ValidateField(field, s.values[id])
	s.touched[id] = true
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
	return nil
}

// Submit validates every field and merges the results into the session
// errors.
func (s *Session) Submit() SubmitResult {
	s.mu.Lock()
	errs := validation.ValidateAll(s.fields, s.values)
	for id, msg := range errs {
		s.errors[id] = msg
		s.touched[id] = true
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
	return SubmitResult{OK: !errs.HasErrors(), Errors: errs}
}

// Values returns a copy of the current values.
func (s *Session) Values() model.FormValues {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values.Clone()
}

// Value returns the current value for id.
func (s *Session) Value(id string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.values[id]
	return model.CloneValue(value), ok
}

// Errors returns a copy of the current errors.
func (s *Session) Errors() model.FormErrors {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errors.Clone()
}

// Warnings returns the derivation warnings from the last recompute.
func (s *Session) Warnings() []derive.Warning {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneWarnings(s.warnings)
}

// Snapshot returns a copy of the whole session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// TogglePasswordVisibility flips the reveal flag for a password field and
// returns the new state. Other fields are left alone and report false.
func (s *Session) TogglePasswordVisibility(id string) bool {
	s.mu.Lock()
	field, ok := s.byID[id]
	if !ok || field.Type != model.FieldTypePassword {
		s.mu.Unlock()
		return false
	}
	s.revealed[id] = !s.revealed[id]
	visible := s.revealed[id]
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
	return visible
}

// PasswordVisible reports the reveal flag for id.
func (s *Session) PasswordVisible(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revealed[id]
}

// Reset returns the session to its seeded state.
func (s *Session) Reset() {
	s.mu.Lock()
	s.seed()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		Values:   s.values.Clone(),
		Errors:   s.errors.Clone(),
		Warnings: cloneWarnings(s.warnings),
		Dirty:    cloneFlags(s.dirty),
		Touched:  cloneFlags(s.touched),
		Revealed: cloneFlags(s.revealed),
	}
}

func (s *Session) notify(snap Snapshot) {
	for _, fn := range s.listeners {
		fn(snap)
	}
}

func cloneFlags(in map[string]bool) map[string]bool {
	out := make(map[string]bool, len(in))
	for k, v := range in {
		if v {
			out[k] = true
		}
	}
	return out
}

func cloneWarnings(in []derive.Warning) []derive.Warning {
	if len(in) == 0 {
		return nil
	}
	out := make([]derive.Warning, len(in))
	for i, w := range in {
		out[i] = w
		out[i].Fields = append([]string(nil), w.Fields...)
	}
	return out
}
