package model

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

// FieldDefinition is the identity and contract of one form field. ID keys the
// field's value, error and derivation dependencies for its whole lifetime.
type FieldDefinition struct {
	ID           string          `json:"id" yaml:"id"`
	Type         FieldType       `json:"type" yaml:"type"`
	Label        string          `json:"label" yaml:"label"`
	DefaultValue string          `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
	Options      []string        `json:"options,omitempty" yaml:"options,omitempty"`
	Validation   ValidationRules `json:"validation" yaml:"validation,omitempty"`
	Derived      *DerivationSpec `json:"derived,omitempty" yaml:"derived,omitempty"`
}

// IsDerived reports whether the field value is computed.
func (f FieldDefinition) IsDerived() bool {
	return f.Derived != nil
}

// Clone returns a deep copy of the field.
func (f FieldDefinition) Clone() FieldDefinition {
	out := f
	out.Options = cloneStrings(f.Options)
	out.Validation = f.Validation.Clone()
	out.Derived = f.Derived.Clone()
	return out
}

// Equal compares two fields by value. Nil and empty option lists are equal.
func (f FieldDefinition) Equal(other FieldDefinition) bool {
	return f.ID == other.ID &&
		f.Type == other.Type &&
		f.Label == other.Label &&
		f.DefaultValue == other.DefaultValue &&
		stringsEqual(f.Options, other.Options) &&
		f.Validation.Equal(other.Validation) &&
		f.Derived.Equal(other.Derived)
}

// fieldWire accepts both the structured and the legacy editor encodings.
type fieldWire struct {
	ID           string          `json:"id"`
	Type         FieldType       `json:"type"`
	Label        string          `json:"label"`
	DefaultValue string          `json:"defaultValue"`
	Options      []string        `json:"options"`
	Validation   json.RawMessage `json:"validation"`
	Derived      json.RawMessage `json:"derived"`
	Formula      Formula         `json:"formula"`
	ParentFields []string        `json:"parentFields"`
}

type validationWire struct {
	ValidationRules
	Password bool `json:"password"`
}

// UnmarshalJSON decodes a field, unifying the boolean `derived` marker with
// top-level formula/parentFields into a DerivationSpec and folding the legacy
// `password` rule into PasswordRule.
func (f *FieldDefinition) UnmarshalJSON(data []byte) error {
	var wire fieldWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	out := FieldDefinition{
		ID:           wire.ID,
		Type:         wire.Type,
		Label:        wire.Label,
		DefaultValue: wire.DefaultValue,
		Options:      wire.Options,
	}

	if raw := bytes.TrimSpace(wire.Validation); len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		var rules validationWire
		if err := json.Unmarshal(raw, &rules); err != nil {
			return fmt.Errorf("model: field %q validation: %w", wire.ID, err)
		}
		out.Validation = rules.ValidationRules
		if rules.Password {
			out.Validation.PasswordRule = true
		}
	}

	derived, err := decodeDerived(wire)
	if err != nil {
		return err
	}
	out.Derived = derived

	*f = out
	return nil
}

func decodeDerived(wire fieldWire) (*DerivationSpec, error) {
	raw := bytes.TrimSpace(wire.Derived)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	switch raw[0] {
	case 't', 'f':
		var flag bool
		if err := json.Unmarshal(raw, &flag); err != nil {
			return nil, fmt.Errorf("model: field %q derived flag: %w", wire.ID, err)
		}
		if !flag {
			return nil, nil
		}
		formula := wire.Formula
		if formula == "" {
			formula = DefaultFormula
		}
		return &DerivationSpec{
			Formula:      formula,
			ParentFields: cloneStrings(wire.ParentFields),
		}, nil
	case '{':
		var spec DerivationSpec
		if err := json.Unmarshal(raw, &spec); err != nil {
			return nil, fmt.Errorf("model: field %q derivation: %w", wire.ID, err)
		}
		if len(spec.ParentFields) == 0 && len(wire.ParentFields) > 0 {
			spec.ParentFields = cloneStrings(wire.ParentFields)
		}
		if spec.Formula == "" {
			spec.Formula = wire.Formula
		}
		return &spec, nil
	default:
		return nil, fmt.Errorf("model: field %q: unsupported derived payload %s", wire.ID, string(raw))
	}
}

// FormSchema is the persisted unit: a named, ordered list of fields. Field
// order is display order only.
type FormSchema struct {
	ID        string            `json:"id" yaml:"id"`
	Name      string            `json:"name" yaml:"name"`
	CreatedAt string            `json:"createdAt" yaml:"createdAt"`
	Fields    []FieldDefinition `json:"fields" yaml:"fields"`
}

// Field returns the definition with the given id.
func (s FormSchema) Field(id string) (FieldDefinition, bool) {
	for _, field := range s.Fields {
		if field.ID == id {
			return field, true
		}
	}
	return FieldDefinition{}, false
}

// Clone returns a deep copy of the schema.
func (s FormSchema) Clone() FormSchema {
	out := s
	out.Fields = CloneFields(s.Fields)
	return out
}

// Equal compares schemas field by field.
func (s FormSchema) Equal(other FormSchema) bool {
	return s.ID == other.ID &&
		s.Name == other.Name &&
		s.CreatedAt == other.CreatedAt &&
		FieldsEqual(s.Fields, other.Fields)
}

// CloneFields deep copies a field list.
func CloneFields(fields []FieldDefinition) []FieldDefinition {
	if fields == nil {
		return nil
	}
	out := make([]FieldDefinition, len(fields))
	for i, field := range fields {
		out[i] = field.Clone()
	}
	return out
}

// FieldsEqual compares two ordered field lists.
func FieldsEqual(a, b []FieldDefinition) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
