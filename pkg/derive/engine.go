package derive

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// WarningKind classifies derivation warnings.
type WarningKind string

const (
	// WarningCycle marks derived fields that depend on themselves, directly
	// or through other derived fields.
	WarningCycle WarningKind = "cycle"
	// WarningNotConverged marks fields still changing when the pass bound
	// was reached.
	WarningNotConverged WarningKind = "not_converged"
)

// Warning reports a derivation configuration problem. Values are still
// returned; the listed fields hold whatever the last pass produced.
type Warning struct {
	Kind    WarningKind
	Fields  []string
	Message string
}

// Result is the outcome of Recompute.
type Result struct {
	Values   model.FormValues
	Warnings []Warning
	Passes   int
}

// Converged reports whether recompute reached a fixed point.
func (r Result) Converged() bool {
	for _, w := range r.Warnings {
		if w.Kind == WarningNotConverged {
			return false
		}
	}
	return true
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source used by date formulas.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithFormula registers or replaces a formula.
func WithFormula(name model.Formula, fn FormulaFunc) Option {
	return func(e *Engine) {
		if name == "" || fn == nil {
			return
		}
		e.formulas[name] = fn
	}
}

// WithLogger sets the logger used for derivation warnings.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMaxPasses caps the number of passes. Values below one fall back to
// len(fields)+1.
func WithMaxPasses(n int) Option {
	return func(e *Engine) {
		e.maxPasses = n
	}
}

// Engine recomputes derived fields. It holds no per-form state and is safe
// for concurrent use.
type Engine struct {
	now       func() time.Time
	formulas  map[model.Formula]FormulaFunc
	logger    *zap.SugaredLogger
	maxPasses int
}

// New constructs an Engine with the built-in formulas and the system clock.
func New(options ...Option) *Engine {
	e := &Engine{
		now:      time.Now,
		formulas: defaultFormulas(),
		logger:   zap.NewNop().Sugar(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

var defaultEngine = New()

// Recompute runs the default engine.
func Recompute(fields []model.FieldDefinition, values model.FormValues) Result {
	return defaultEngine.Recompute(fields, values)
}

// HasFormula reports whether name is registered.
func (e *Engine) HasFormula(name model.Formula) bool {
	_, ok := e.formulas[name]
	return ok
}

// Recompute returns a fresh copy of values with every derived field brought
// up to date. The input map is never mutated.
func (e *Engine) Recompute(fields []model.FieldDefinition, values model.FormValues) Result {
	out := values.Clone()
	if out == nil {
		out = model.FormValues{}
	}

	derived := orderedDerived(fields)
	now := e.now()

	bound := e.maxPasses
	if bound < 1 {
		bound = len(fields) + 1
	}

	result := Result{}
	var changed []string
	for result.Passes < bound {
		result.Passes++
		changed = e.pass(derived, out, now)
		if len(changed) == 0 {
			break
		}
	}

	for _, cycle := range findCycles(fields) {
		result.Warnings = append(result.Warnings, Warning{
			Kind:    WarningCycle,
			Fields:  cycle,
			Message: "derived fields form a dependency cycle: " + cyclePath(cycle),
		})
	}
	if len(changed) > 0 {
		result.Warnings = append(result.Warnings, Warning{
			Kind:    WarningNotConverged,
			Fields:  changed,
			Message: fmt.Sprintf("derived values still changing after %d passes: %s", result.Passes, strings.Join(changed, ", ")),
		})
	}
	for _, w := range result.Warnings {
		// Cycles are static and reported on every recompute; lint surfaces them.
		log := e.logger.Debugw
		if w.Kind == WarningNotConverged {
			log = e.logger.Warnw
		}
		log("derivation warning", "kind", w.Kind, "fields", w.Fields, "message", w.Message)
	}

	result.Values = out
	return result
}

func (e *Engine) pass(derived []model.FieldDefinition, values model.FormValues, now time.Time) []string {
	var changed []string
	for _, field := range derived {
		fn, ok := e.formulas[field.Derived.Formula]
		if !ok {
			continue
		}
		parents := make([]any, len(field.Derived.ParentFields))
		for i, id := range field.Derived.ParentFields {
			value, present := values[id]
			if !present || value == nil {
				value = ""
			}
			parents[i] = value
		}
		next, ok := fn(now, parents)
		if !ok {
			continue
		}
		if current, present := values[field.ID]; present && model.ValuesEqual(current, next) {
			continue
		}
		values[field.ID] = next
		changed = append(changed, field.ID)
	}
	return changed
}

// orderedDerived returns the derived fields with dependencies first, so that
// acyclic chains settle in a single pass.
func orderedDerived(fields []model.FieldDefinition) []model.FieldDefinition {
	byID := make(map[string]model.FieldDefinition, len(fields))
	for _, field := range fields {
		if _, seen := byID[field.ID]; !seen {
			byID[field.ID] = field
		}
	}
	ids := Order(fields)
	out := make([]model.FieldDefinition, 0, len(ids))
	for _, id := range ids {
		out = append(out, byID[id])
	}
	return out
}
