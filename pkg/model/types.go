package model

// FieldType is the closed set of input kinds a form field can use.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeNumber   FieldType = "number"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeSelect   FieldType = "select"
	FieldTypeRadio    FieldType = "radio"
	FieldTypeCheckbox FieldType = "checkbox"
	FieldTypeDate     FieldType = "date"
	FieldTypePassword FieldType = "password"
)

var fieldTypes = map[FieldType]bool{
	FieldTypeText:     true,
	FieldTypeNumber:   true,
	FieldTypeTextarea: true,
	FieldTypeSelect:   true,
	FieldTypeRadio:    true,
	FieldTypeCheckbox: true,
	FieldTypeDate:     true,
	FieldTypePassword: true,
}

// FieldTypes lists every supported type in editor palette order.
func FieldTypes() []FieldType {
	return []FieldType{
		FieldTypeText,
		FieldTypeNumber,
		FieldTypeTextarea,
		FieldTypeSelect,
		FieldTypeRadio,
		FieldTypeCheckbox,
		FieldTypeDate,
		FieldTypePassword,
	}
}

// IsValid reports whether t belongs to the closed set.
func (t FieldType) IsValid() bool {
	return fieldTypes[t]
}

// IsChoice reports whether the type picks from Options.
func (t FieldType) IsChoice() bool {
	return t == FieldTypeSelect || t == FieldTypeRadio || t == FieldTypeCheckbox
}

// IsMulti reports whether the type collects several options at once.
func (t FieldType) IsMulti() bool {
	return t == FieldTypeCheckbox
}

// Formula names a derivation function.
type Formula string

const (
	FormulaAgeFromDOB Formula = "ageFromDOB"
	FormulaFullName   Formula = "fullName"
)

// DefaultFormula is assigned when the editor enables derivation on a field.
const DefaultFormula = FormulaAgeFromDOB

// ValidationRules holds the optional constraints attached to a field. Zero
// values (false / nil) mean the rule is not enforced.
type ValidationRules struct {
	Required     bool `json:"required,omitempty" yaml:"required,omitempty"`
	MinLength    *int `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength    *int `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Email        bool `json:"email,omitempty" yaml:"email,omitempty"`
	PasswordRule bool `json:"passwordRule,omitempty" yaml:"passwordRule,omitempty"`
}

// IsZero reports whether no rule is set.
func (r ValidationRules) IsZero() bool {
	return !r.Required && r.MinLength == nil && r.MaxLength == nil && !r.Email && !r.PasswordRule
}

// Equal compares rule sets by value.
func (r ValidationRules) Equal(other ValidationRules) bool {
	return r.Required == other.Required &&
		r.Email == other.Email &&
		r.PasswordRule == other.PasswordRule &&
		intPtrEqual(r.MinLength, other.MinLength) &&
		intPtrEqual(r.MaxLength, other.MaxLength)
}

// Clone returns a copy that shares no pointers with r.
func (r ValidationRules) Clone() ValidationRules {
	out := r
	if r.MinLength != nil {
		out.MinLength = IntPtr(*r.MinLength)
	}
	if r.MaxLength != nil {
		out.MaxLength = IntPtr(*r.MaxLength)
	}
	return out
}

// IntPtr is a small helper for building ValidationRules literals.
func IntPtr(v int) *int {
	return &v
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// DerivationSpec describes how a computed field obtains its value.
type DerivationSpec struct {
	Formula      Formula  `json:"formula" yaml:"formula"`
	ParentFields []string `json:"parentFields,omitempty" yaml:"parentFields,omitempty"`
}

// Clone returns a deep copy. A nil receiver yields nil.
func (d *DerivationSpec) Clone() *DerivationSpec {
	if d == nil {
		return nil
	}
	return &DerivationSpec{
		Formula:      d.Formula,
		ParentFields: cloneStrings(d.ParentFields),
	}
}

// Equal compares two specs; two nil specs are equal.
func (d *DerivationSpec) Equal(other *DerivationSpec) bool {
	if d == nil || other == nil {
		return d == nil && other == nil
	}
	return d.Formula == other.Formula && stringsEqual(d.ParentFields, other.ParentFields)
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
