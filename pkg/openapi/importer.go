package openapi

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/internal/labels"
	"github.com/goliatone/go-formbuilder/internal/sanitize"
	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Vendor extensions read from request body properties.
const (
	ExtensionLabel   = "x-formbuilder-label"
	ExtensionType    = "x-formbuilder-type"
	ExtensionDerived = "x-formbuilder-derived"
)

// textareaThreshold is the maxLength above which strings become textareas.
const textareaThreshold = 255

var (
	// ErrOperationNotFound is returned when no operation matches the id.
	ErrOperationNotFound = errors.New("openapi: operation not found")
	// ErrNoRequestBody is returned for operations without an object body.
	ErrNoRequestBody = errors.New("openapi: operation has no object request body")
)

var requestMediaTypes = []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"}

// Operation summarises one operation of a document.
type Operation struct {
	ID      string
	Method  string
	Path    string
	Summary string
}

// Result is the outcome of an import.
type Result struct {
	Operation Operation
	Fields    []model.FieldDefinition
	// Skipped lists properties with no field mapping, such as nested objects.
	Skipped []string
}

// Option configures an Importer.
type Option func(*Importer)

// WithFileSystem enables SourceFromFS sources.
func WithFileSystem(files fs.FS) Option {
	return func(i *Importer) {
		i.loader.files = files
	}
}

// WithHTTPClient enables URL sources using client.
func WithHTTPClient(client *http.Client) Option {
	return func(i *Importer) {
		i.loader.client = client
	}
}

// WithHTTPFallback enables URL sources using a default client bounded by
// timeout.
func WithHTTPFallback(timeout time.Duration) Option {
	return func(i *Importer) {
		if i.loader.client == nil {
			i.loader.client = &http.Client{}
		}
		i.loader.timeout = timeout
	}
}

// WithValidation runs kin-openapi document validation before importing.
func WithValidation(enabled bool) Option {
	return func(i *Importer) {
		i.validate = enabled
	}
}

// WithLabeler overrides how property names become labels.
func WithLabeler(fn func(string) string) Option {
	return func(i *Importer) {
		if fn != nil {
			i.labeler = fn
		}
	}
}

// WithLogger sets the importer logger.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(i *Importer) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// Importer converts OpenAPI request bodies into field definitions.
type Importer struct {
	loader   loader
	validate bool
	labeler  func(string) string
	logger   *zap.SugaredLogger
}

// NewImporter constructs an Importer. Only file sources are enabled by
// default.
func NewImporter(options ...Option) *Importer {
	i := &Importer{
		labeler: labels.Humanize,
		logger:  zap.NewNop().Sugar(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(i)
		}
	}
	return i
}

// Load reads the raw document behind src.
func (i *Importer) Load(ctx context.Context, src Source) ([]byte, error) {
	return i.loader.load(ctx, src)
}

// Operations lists every operation in the document ordered by path and
// method.
func (i *Importer) Operations(ctx context.Context, data []byte) ([]Operation, error) {
	doc, err := i.parse(ctx, data)
	if err != nil {
		return nil, err
	}
	var out []Operation
	eachOperation(doc, func(op Operation, _ *openapi3.Operation) bool {
		out = append(out, op)
		return true
	})
	return out, nil
}

// ImportFields maps the request body of operationID to fields.
func (i *Importer) ImportFields(ctx context.Context, data []byte, operationID string) (Result, error) {
	doc, err := i.parse(ctx, data)
	if err != nil {
		return Result{}, err
	}

	var (
		found  Operation
		target *openapi3.Operation
	)
	eachOperation(doc, func(op Operation, raw *openapi3.Operation) bool {
		if op.ID == operationID {
			found, target = op, raw
			return false
		}
		return true
	})
	if target == nil {
		return Result{}, fmt.Errorf("%w: %q", ErrOperationNotFound, operationID)
	}

	body := requestSchema(target.RequestBody)
	if body == nil || len(body.Properties) == 0 {
		return Result{}, fmt.Errorf("%w: %q", ErrNoRequestBody, operationID)
	}

	result := Result{Operation: found}
	required := make(map[string]bool, len(body.Required))
	for _, name := range body.Required {
		required[name] = true
	}
	for _, name := range propertyOrder(body) {
		field, ok := i.convertProperty(name, body.Properties[name], required[name])
		if !ok {
			result.Skipped = append(result.Skipped, name)
			i.logger.Debugw("skipping property without a field mapping", "operation", operationID, "property", name)
			continue
		}
		result.Fields = append(result.Fields, field)
	}
	return result, nil
}

// ImportSchema loads src and builds a named schema from operationID. The
// operation summary names the schema when name is empty.
func (i *Importer) ImportSchema(ctx context.Context, src Source, operationID, name string) (model.FormSchema, error) {
	data, err := i.Load(ctx, src)
	if err != nil {
		return model.FormSchema{}, err
	}
	result, err := i.ImportFields(ctx, data, operationID)
	if err != nil {
		return model.FormSchema{}, err
	}
	if name == "" {
		name = result.Operation.Summary
	}
	if name == "" {
		name = i.labeler(operationID)
	}
	return model.FormSchema{Name: sanitize.Text(name), Fields: result.Fields}, nil
}

func (i *Importer) parse(ctx context.Context, data []byte) (*openapi3.T, error) {
	if len(data) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}
	l := &openapi3.Loader{Context: ctx}
	doc, err := l.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: parse document: %w", err)
	}
	if i.validate {
		if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi: validate: %w", err)
		}
	}
	return doc, nil
}

func eachOperation(doc *openapi3.T, fn func(Operation, *openapi3.Operation) bool) {
	if doc.Paths == nil {
		return
	}
	paths := doc.Paths.Map()
	keys := make([]string, 0, len(paths))
	for path := range paths {
		keys = append(keys, path)
	}
	sort.Strings(keys)
	for _, path := range keys {
		item := paths[path]
		if item == nil {
			continue
		}
		for _, entry := range []struct {
			method string
			op     *openapi3.Operation
		}{
			{http.MethodGet, item.Get},
			{http.MethodPost, item.Post},
			{http.MethodPut, item.Put},
			{http.MethodPatch, item.Patch},
			{http.MethodDelete, item.Delete},
		} {
			if entry.op == nil {
				continue
			}
			id := entry.op.OperationID
			if id == "" {
				id = strings.ToLower(entry.method) + ":" + path
			}
			op := Operation{ID: id, Method: entry.method, Path: path, Summary: entry.op.Summary}
			if !fn(op, entry.op) {
				return
			}
		}
	}
}

func requestSchema(body *openapi3.RequestBodyRef) *openapi3.Schema {
	if body == nil || body.Value == nil {
		return nil
	}
	content := body.Value.Content
	for _, mediaType := range requestMediaTypes {
		if mt, ok := content[mediaType]; ok && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	for _, mt := range content {
		if mt != nil && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	return nil
}

// propertyOrder lists required properties in declared order, then the rest
// alphabetically.
func propertyOrder(schema *openapi3.Schema) []string {
	seen := make(map[string]bool, len(schema.Properties))
	var order []string
	for _, name := range schema.Required {
		if _, ok := schema.Properties[name]; ok && !seen[name] {
			seen[name] = true
			order = append(order, name)
		}
	}
	var rest []string
	for name := range schema.Properties {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}

func (i *Importer) convertProperty(name string, ref *openapi3.SchemaRef, required bool) (model.FieldDefinition, bool) {
	if ref == nil || ref.Value == nil {
		return model.FieldDefinition{}, false
	}
	prop := ref.Value

	field := model.FieldDefinition{
		ID:    name,
		Label: i.label(name, prop),
	}
	field.Validation.Required = required

	typ, options, ok := fieldType(prop)
	if !ok {
		return model.FieldDefinition{}, false
	}
	field.Type = typ
	field.Options = options

	if typ == model.FieldTypeText || typ == model.FieldTypeTextarea || typ == model.FieldTypePassword {
		if prop.MinLength > 0 {
			field.Validation.MinLength = model.IntPtr(int(prop.MinLength))
		}
		if prop.MaxLength != nil {
			field.Validation.MaxLength = model.IntPtr(int(*prop.MaxLength))
		}
	}
	if prop.Format == "email" {
		field.Validation.Email = true
	}
	if prop.Default != nil {
		field.DefaultValue = model.ValueString(prop.Default)
	}
	field.Derived = derivedExtension(prop.Extensions)
	return field, true
}

func (i *Importer) label(name string, prop *openapi3.Schema) string {
	if raw, ok := prop.Extensions[ExtensionLabel].(string); ok && strings.TrimSpace(raw) != "" {
		return sanitize.Text(raw)
	}
	if prop.Title != "" {
		return sanitize.Text(prop.Title)
	}
	return i.labeler(name)
}

func fieldType(prop *openapi3.Schema) (model.FieldType, []string, bool) {
	if raw, ok := prop.Extensions[ExtensionType].(string); ok {
		if typ := model.FieldType(raw); typ.IsValid() {
			return typ, enumOptions(prop), true
		}
	}

	switch schemaType(prop) {
	case openapi3.TypeString:
		switch {
		case len(prop.Enum) > 0:
			return model.FieldTypeSelect, enumOptions(prop), true
		case prop.Format == "date" || prop.Format == "date-time":
			return model.FieldTypeDate, nil, true
		case prop.Format == "password":
			return model.FieldTypePassword, nil, true
		case prop.MaxLength != nil && *prop.MaxLength > textareaThreshold:
			return model.FieldTypeTextarea, nil, true
		default:
			return model.FieldTypeText, nil, true
		}
	case openapi3.TypeInteger, openapi3.TypeNumber:
		return model.FieldTypeNumber, nil, true
	case openapi3.TypeBoolean:
		return model.FieldTypeRadio, []string{"true", "false"}, true
	case openapi3.TypeArray:
		if prop.Items != nil && prop.Items.Value != nil && len(prop.Items.Value.Enum) > 0 {
			return model.FieldTypeCheckbox, enumOptions(prop.Items.Value), true
		}
	}
	return "", nil, false
}

func schemaType(prop *openapi3.Schema) string {
	if prop.Type == nil {
		return ""
	}
	for _, t := range prop.Type.Slice() {
		if t != openapi3.TypeNull {
			return t
		}
	}
	return ""
}

func enumOptions(prop *openapi3.Schema) []string {
	if len(prop.Enum) == 0 {
		return nil
	}
	out := make([]string, 0, len(prop.Enum))
	for _, value := range prop.Enum {
		if value == nil {
			continue
		}
		out = append(out, model.ValueString(value))
	}
	return out
}

func derivedExtension(ext map[string]any) *model.DerivationSpec {
	raw, ok := ext[ExtensionDerived].(map[string]any)
	if !ok {
		return nil
	}
	spec := &model.DerivationSpec{Formula: model.DefaultFormula}
	if formula, ok := raw["formula"].(string); ok && formula != "" {
		spec.Formula = model.Formula(formula)
	}
	if parents, ok := raw["parentFields"].([]any); ok {
		for _, parent := range parents {
			if id, ok := parent.(string); ok && id != "" {
				spec.ParentFields = append(spec.ParentFields, id)
			}
		}
	}
	return spec
}
