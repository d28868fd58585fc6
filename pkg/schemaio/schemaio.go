// Package schemaio reads and writes form schemas as JSON or YAML documents
// for import and export.
package schemaio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Format selects the document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var (
	// ErrUnknownFormat is returned for formats other than json and yaml.
	ErrUnknownFormat = errors.New("schemaio: unknown format")
	// ErrInvalidSchema wraps structural problems found after decoding.
	ErrInvalidSchema = errors.New("schemaio: invalid schema")
)

// ParseFormat accepts "json", "yaml" and "yml" in any case.
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, raw)
	}
}

// FormatFromPath picks the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Decode parses a schema document. The document is either a schema object or
// a bare list of fields. YAML goes through the same decoder as JSON so both
// accept the legacy field shapes.
func Decode(data []byte, format Format) (model.FormSchema, error) {
	var err error
	switch format {
	case FormatJSON:
	case FormatYAML:
		if data, err = yamlToJSON(data); err != nil {
			return model.FormSchema{}, err
		}
	default:
		return model.FormSchema{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	trimmed := bytes.TrimSpace(data)
	var schema model.FormSchema
	if len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &schema.Fields)
	} else {
		err = json.Unmarshal(trimmed, &schema)
	}
	if err != nil {
		return model.FormSchema{}, fmt.Errorf("schemaio: decode %s: %w", format, err)
	}
	if err := Validate(schema); err != nil {
		return model.FormSchema{}, err
	}
	return schema, nil
}

// Read decodes a schema from r.
func Read(r io.Reader, format Format) (model.FormSchema, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return model.FormSchema{}, fmt.Errorf("schemaio: read: %w", err)
	}
	return Decode(data, format)
}

// ReadFile decodes the schema stored at path, choosing the format from the
// extension.
func ReadFile(path string) (model.FormSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.FormSchema{}, fmt.Errorf("schemaio: read %s: %w", path, err)
	}
	return Decode(data, FormatFromPath(path))
}

// Encode renders schema in the requested format.
func Encode(schema model.FormSchema, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(schema, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("schemaio: encode json: %w", err)
		}
		return append(data, '\n'), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(schema); err != nil {
			return nil, fmt.Errorf("schemaio: encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("schemaio: encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Write encodes schema to w.
func Write(w io.Writer, schema model.FormSchema, format Format) error {
	data, err := Encode(schema, format)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Validate checks the structure a schema needs before it can be saved or
// rendered: non-empty unique ids and known field types.
func Validate(schema model.FormSchema) error {
	var problems []error
	seen := make(map[string]bool, len(schema.Fields))
	for i, field := range schema.Fields {
		if field.ID == "" {
			problems = append(problems, fmt.Errorf("field %d: missing id", i))
			continue
		}
		if seen[field.ID] {
			problems = append(problems, fmt.Errorf("field %q: duplicate id", field.ID))
		}
		seen[field.ID] = true
		if !field.Type.IsValid() {
			problems = append(problems, fmt.Errorf("field %q: unknown type %q", field.ID, field.Type))
		}
	}
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidSchema, errors.Join(problems...))
}

func yamlToJSON(data []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("schemaio: decode yaml: %w", err)
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("schemaio: decode yaml: %w", err)
	}
	return out, nil
}
