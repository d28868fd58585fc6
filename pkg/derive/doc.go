// Package derive computes the values of derived fields from their parents.
//
// Recompute applies every derived field's formula in dependency order and
// repeats the pass until no value changes (a fixed point) or a pass bound of
// len(fields)+1 is reached. Reaching the bound while values still change means
// the schema has a dependency cycle: the engine keeps the values from the last
// pass and reports a Warning instead of looping. Check performs the same cycle
// analysis statically (depth-first colouring over the dependency graph) along
// with reference checks, for use by editors and linters before a schema is
// saved.
package derive
