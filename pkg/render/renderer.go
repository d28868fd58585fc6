// Package render defines the contract form renderers implement and a
// registry for looking them up by name.
package render

import (
	"context"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Renderer turns a schema plus per-request state into bytes (HTML, text).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, schema model.FormSchema, options RenderOptions) ([]byte, error)
}
