package template

import (
	"io"
)

// TemplateRenderer renders named templates or inline template strings with a
// data map, optionally copying the output to writers.
type TemplateRenderer interface {
	RenderTemplate(name string, data map[string]any, out ...io.Writer) (string, error)
	RenderString(content string, data map[string]any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data map[string]any) error
}
