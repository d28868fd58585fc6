// Package model defines the typed form schema shared by the validation engine,
// the derivation engine, sessions, persistence and renderers. Types carry no
// behaviour beyond construction, cloning and equality. A field is computed when
// it carries a DerivationSpec; the legacy editor shape (a boolean `derived` flag
// with top-level `formula`/`parentFields` keys) and the legacy `password`
// validation flag are folded into the canonical shape when decoding JSON so
// stored schemas from older editors keep working.
package model
