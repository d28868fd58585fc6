package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formbuilder/internal/sanitize"
	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Transformer mutates a schema before it is rendered. Implementations can
// relabel fields, swap option lists or tighten rules per deployment.
type Transformer interface {
	Transform(ctx context.Context, schema *model.FormSchema) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, schema *model.FormSchema) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, schema *model.FormSchema) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, schema)
}

// PresetTransformer applies declarative overrides from a YAML or JSON
// document:
//
//	name: Custom signup
//	fields:
//	  email:
//	    label: Work email
//	    required: true
//	  plan:
//	    options: [starter, team]
type PresetTransformer struct {
	document presetDocument
}

type presetDocument struct {
	Name   string                `yaml:"name"`
	Fields map[string]fieldPatch `yaml:"fields"`
}

type fieldPatch struct {
	Label        *string  `yaml:"label"`
	DefaultValue *string  `yaml:"defaultValue"`
	Options      []string `yaml:"options"`
	Required     *bool    `yaml:"required"`
	MinLength    *int     `yaml:"minLength"`
	MaxLength    *int     `yaml:"maxLength"`
}

// NewPresetTransformer constructs a transformer from raw YAML or JSON bytes.
func NewPresetTransformer(data []byte) (*PresetTransformer, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("preset transformer: document is empty")
	}
	var document presetDocument
	if err := yaml.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("preset transformer: parse document: %w", err)
	}
	return &PresetTransformer{document: document}, nil
}

// NewPresetTransformerFromFS loads a preset document from fsys.
func NewPresetTransformerFromFS(fsys fs.FS, path string) (*PresetTransformer, error) {
	if fsys == nil {
		return nil, errors.New("preset transformer: filesystem is nil")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("preset transformer: path is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("preset transformer: read %s: %w", path, err)
	}
	return NewPresetTransformer(data)
}

// Transform applies the patches onto schema. Patches for ids the schema does
// not have are an error so stale presets are noticed.
func (t *PresetTransformer) Transform(ctx context.Context, schema *model.FormSchema) error {
	if schema == nil {
		return errors.New("preset transformer: schema is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if name := sanitize.Text(t.document.Name); name != "" {
		schema.Name = name
	}
	for id, patch := range t.document.Fields {
		field := findField(schema.Fields, id)
		if field == nil {
			return fmt.Errorf("preset transformer: field %q not found", id)
		}
		applyFieldPatch(field, patch)
	}
	return nil
}

func applyFieldPatch(field *model.FieldDefinition, patch fieldPatch) {
	if patch.Label != nil {
		field.Label = sanitize.Text(*patch.Label)
	}
	if patch.DefaultValue != nil {
		field.DefaultValue = *patch.DefaultValue
	}
	if len(patch.Options) > 0 && field.Type.IsChoice() {
		field.Options = sanitize.List(patch.Options)
	}
	if patch.Required != nil {
		field.Validation.Required = *patch.Required
	}
	if patch.MinLength != nil {
		field.Validation.MinLength = model.IntPtr(*patch.MinLength)
	}
	if patch.MaxLength != nil {
		field.Validation.MaxLength = model.IntPtr(*patch.MaxLength)
	}
}

func findField(fields []model.FieldDefinition, id string) *model.FieldDefinition {
	for i := range fields {
		if fields[i].ID == id {
			return &fields[i]
		}
	}
	return nil
}
