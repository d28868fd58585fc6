// Package formbuilder is the top-level entry point: it re-exports the
// orchestrator constructor and offers one-call helpers for rendering a
// schema or an OpenAPI operation as HTML.
package formbuilder

import (
	"context"

	"github.com/goliatone/go-formbuilder/pkg/model"
	pkgopenapi "github.com/goliatone/go-formbuilder/pkg/openapi"
	"github.com/goliatone/go-formbuilder/pkg/orchestrator"
	"github.com/goliatone/go-formbuilder/pkg/render"
)

// RenderOptions describes per-request overrides that renderers can use to
// prefill values or surface server-side validation errors.
type RenderOptions = render.RenderOptions

// FormSchema aliases model.FormSchema.
type FormSchema = model.FormSchema

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// GenerateHTML loads the OpenAPI source, builds a schema for the requested
// operation and renders it with the default renderer.
func GenerateHTML(ctx context.Context, source pkgopenapi.Source, operationID string, options ...orchestrator.Option) ([]byte, error) {
	return orchestrator.New(options...).Generate(ctx, orchestrator.Request{
		Source:      source,
		OperationID: operationID,
	})
}

// RenderSchema renders schema with values applied. Derived fields are
// recomputed; validate controls whether submit errors are shown.
func RenderSchema(ctx context.Context, schema FormSchema, values model.FormValues, validate bool, options ...orchestrator.Option) ([]byte, error) {
	return orchestrator.New(options...).Generate(ctx, orchestrator.Request{
		Schema:   &schema,
		Values:   values,
		Validate: validate,
	})
}

// WithPreset parses a YAML preset document and registers it as the
// schema transformer.
func WithPreset(data []byte) (orchestrator.Option, error) {
	preset, err := orchestrator.NewPresetTransformer(data)
	if err != nil {
		return nil, err
	}
	return orchestrator.WithSchemaTransformer(preset), nil
}
