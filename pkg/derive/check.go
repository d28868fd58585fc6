package derive

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Severity grades a lint issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue codes reported by Check.
const (
	CodeDuplicateID    = "duplicate_id"
	CodeMissingParent  = "missing_parent"
	CodeSelfReference  = "self_reference"
	CodeCycle          = "cycle"
	CodeArity          = "arity"
	CodeUnknownFormula = "unknown_formula"
	CodeNoParents      = "no_parents"
)

// Issue is a static problem in a schema's derivation setup.
type Issue struct {
	Severity Severity
	Field    string
	Code     string
	Message  string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s %s [%s]: %s", i.Severity, i.Field, i.Code, i.Message)
}

// Check lints fields with the default formula set.
func Check(fields []model.FieldDefinition) []Issue {
	return defaultEngine.Check(fields)
}

// Check reports duplicate ids, dangling or self parent references, derivation
// cycles, formula arity mismatches, and formulas this engine does not know.
func (e *Engine) Check(fields []model.FieldDefinition) []Issue {
	var issues []Issue
	addError := func(field, code, format string, args ...any) {
		issues = append(issues, Issue{Severity: SeverityError, Field: field, Code: code, Message: fmt.Sprintf(format, args...)})
	}
	addWarning := func(field, code, format string, args ...any) {
		issues = append(issues, Issue{Severity: SeverityWarning, Field: field, Code: code, Message: fmt.Sprintf(format, args...)})
	}

	known := make(map[string]bool, len(fields))
	for _, field := range fields {
		if known[field.ID] {
			addError(field.ID, CodeDuplicateID, "field id %q is used more than once", field.ID)
		}
		known[field.ID] = true
	}

	for _, field := range fields {
		if !field.IsDerived() {
			continue
		}
		spec := field.Derived
		if !e.HasFormula(spec.Formula) {
			addWarning(field.ID, CodeUnknownFormula, "formula %q is not registered; the field will not be computed", spec.Formula)
		}
		switch spec.Formula {
		case model.FormulaFullName:
			if len(spec.ParentFields) != 2 {
				addWarning(field.ID, CodeArity, "fullName needs exactly 2 parent fields, got %d", len(spec.ParentFields))
			}
		case model.FormulaAgeFromDOB:
			if len(spec.ParentFields) > 1 {
				addWarning(field.ID, CodeArity, "ageFromDOB reads only the first of %d parent fields", len(spec.ParentFields))
			}
		}
		if len(spec.ParentFields) == 0 {
			addWarning(field.ID, CodeNoParents, "derived field has no parent fields")
		}
		for _, parent := range spec.ParentFields {
			switch {
			case parent == field.ID:
				addError(field.ID, CodeSelfReference, "field lists itself as a parent")
			case !known[parent]:
				addError(field.ID, CodeMissingParent, "parent field %q does not exist", parent)
			}
		}
	}

	for _, cycle := range findCycles(fields) {
		if len(cycle) == 1 {
			continue // reported as self_reference
		}
		addError(cycle[0], CodeCycle, "dependency cycle: %s", cyclePath(cycle))
	}
	return issues
}

// Order returns derived field ids with each field after the derived fields it
// depends on. Members of cycles have no valid position and come last, in
// declaration order.
func Order(fields []model.FieldDefinition) []string {
	g := buildGraph(fields)
	inCycle := make(map[string]bool)
	for _, cycle := range findCycles(fields) {
		for _, id := range cycle {
			inCycle[id] = true
		}
	}

	visited := make(map[string]bool, len(g.nodes))
	order := make([]string, 0, len(g.nodes))
	var visit func(id string)
	visit = func(id string) {
		if visited[id] || inCycle[id] {
			return
		}
		visited[id] = true
		for _, dep := range g.edges[id] {
			visit(dep)
		}
		order = append(order, id)
	}
	for _, id := range g.nodes {
		visit(id)
	}
	for _, id := range g.nodes {
		if inCycle[id] {
			order = append(order, id)
		}
	}
	return order
}

type graph struct {
	nodes []string
	edges map[string][]string
}

// buildGraph links each derived field to the parents that are themselves
// derived. Plain fields are leaves and never take part in a cycle.
func buildGraph(fields []model.FieldDefinition) graph {
	g := graph{edges: make(map[string][]string)}
	derived := make(map[string]bool)
	for _, field := range fields {
		if field.IsDerived() && !derived[field.ID] {
			derived[field.ID] = true
			g.nodes = append(g.nodes, field.ID)
		}
	}
	seen := make(map[string]bool)
	for _, field := range fields {
		if !field.IsDerived() || seen[field.ID] {
			continue
		}
		seen[field.ID] = true
		for _, parent := range field.Derived.ParentFields {
			if derived[parent] {
				g.edges[field.ID] = append(g.edges[field.ID], parent)
			}
		}
	}
	return g
}

const (
	white = iota
	grey
	black
)

// findCycles walks the dependency graph with depth-first colouring and returns
// each distinct cycle once, rotated to start at its earliest declared member.
func findCycles(fields []model.FieldDefinition) [][]string {
	g := buildGraph(fields)
	position := make(map[string]int, len(g.nodes))
	for i, id := range g.nodes {
		position[id] = i
	}

	colour := make(map[string]int, len(g.nodes))
	var stack []string
	seen := make(map[string]bool)
	var cycles [][]string

	var visit func(id string)
	visit = func(id string) {
		colour[id] = grey
		stack = append(stack, id)
		for _, dep := range g.edges[id] {
			switch colour[dep] {
			case white:
				visit(dep)
			case grey:
				start := len(stack) - 1
				for stack[start] != dep {
					start--
				}
				cycle := rotate(stack[start:], position)
				key := strings.Join(cycle, "\x00")
				if !seen[key] {
					seen[key] = true
					cycles = append(cycles, cycle)
				}
			}
		}
		stack = stack[:len(stack)-1]
		colour[id] = black
	}
	for _, id := range g.nodes {
		if colour[id] == white {
			visit(id)
		}
	}

	sort.SliceStable(cycles, func(i, j int) bool {
		return position[cycles[i][0]] < position[cycles[j][0]]
	})
	return cycles
}

func rotate(members []string, position map[string]int) []string {
	first := 0
	for i, id := range members {
		if position[id] < position[members[first]] {
			first = i
		}
	}
	out := make([]string, 0, len(members))
	out = append(out, members[first:]...)
	out = append(out, members[:first]...)
	return out
}

func cyclePath(cycle []string) string {
	path := make([]string, 0, len(cycle)+1)
	path = append(path, cycle...)
	path = append(path, cycle[0])
	return strings.Join(path, " -> ")
}
