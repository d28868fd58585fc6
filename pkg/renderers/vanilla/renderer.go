package vanilla

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
	rendertemplate "github.com/goliatone/go-formbuilder/pkg/render/template"
	gotemplate "github.com/goliatone/go-formbuilder/pkg/render/template/gotemplate"
)

// ErrNoTemplateRenderer is returned when Render runs without an engine.
var ErrNoTemplateRenderer = errors.New("vanilla: template renderer is nil")

const formTemplate = "templates/form.tmpl"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	inlineStyles     bool
	stylesheetURL    string
	submitLabel      string
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithInlineStylesheet embeds the default stylesheet in a <style> element.
func WithInlineStylesheet(enabled bool) Option {
	return func(cfg *config) {
		cfg.inlineStyles = enabled
	}
}

// WithStylesheetURL links an external stylesheet instead.
func WithStylesheetURL(url string) Option {
	return func(cfg *config) {
		cfg.stylesheetURL = strings.TrimSpace(url)
	}
}

// WithSubmitLabel overrides the submit button text.
func WithSubmitLabel(label string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(label); trimmed != "" {
			cfg.submitLabel = trimmed
		}
	}
}

// Renderer produces a plain HTML form with no client-side dependencies.
type Renderer struct {
	templates     rendertemplate.TemplateRenderer
	stylesheet    string
	stylesheetURL string
	submitLabel   string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS(), submitLabel: "Submit"}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	out := &Renderer{
		templates:     renderer,
		stylesheetURL: cfg.stylesheetURL,
		submitLabel:   cfg.submitLabel,
	}
	if cfg.inlineStyles {
		out.stylesheet = defaultStylesheet()
	}
	return out, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render writes the schema as an HTML form. Derived fields are read-only,
// password fields listed in RevealPasswords render as text, and errors for
// ids outside the schema are listed above the fields.
func (r *Renderer) Render(ctx context.Context, schema model.FormSchema, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, ErrNoTemplateRenderer
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	inline, formErrors := render.SplitErrors(schema.Fields, options.Errors)

	method := strings.ToUpper(strings.TrimSpace(options.Method))
	if method == "" {
		method = "POST"
	}

	data := map[string]any{
		"name":           schema.Name,
		"form_id":        schema.ID,
		"method":         method,
		"action":         options.Action,
		"classes":        defaultClasses(),
		"hidden_fields":  render.SortedHiddenFields(options.HiddenFields),
		"form_errors":    formErrors,
		"fields":         fieldViews(schema.Fields, options, inline),
		"submit_label":   r.submitLabel,
		"stylesheet":     r.stylesheet,
		"stylesheet_url": r.stylesheetURL,
	}
	if cfg := options.Theme; cfg != nil {
		data["theme_name"] = cfg.Theme
		data["theme_variant"] = cfg.Variant
		data["theme_style"] = render.CSSVarsStyle(cfg.CSSVars)
	}

	result, err := r.templates.RenderTemplate(formTemplate, data)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}

func fieldViews(fields []model.FieldDefinition, options render.RenderOptions, inline model.FormErrors) []map[string]any {
	views := make([]map[string]any, 0, len(fields))
	for _, field := range fields {
		views = append(views, fieldView(field, options, inline[field.ID]))
	}
	return views
}

func fieldView(field model.FieldDefinition, options render.RenderOptions, message string) map[string]any {
	value := options.Values[field.ID]
	revealed := options.RevealPasswords[field.ID]

	view := map[string]any{
		"id":         field.ID,
		"type":       string(field.Type),
		"label":      field.Label,
		"input_type": inputType(field, revealed),
		"value":      model.ValueString(value),
		"required":   field.Validation.Required,
		"readonly":   field.IsDerived(),
		"derived":    field.IsDerived(),
		"password":   field.Type == model.FieldTypePassword,
		"revealed":   revealed,
		"group":      field.Type == model.FieldTypeRadio || field.Type == model.FieldTypeCheckbox,
		"error":      message,
		"control_id": controlID(field.ID),
		"label_id":   labelID(field.ID),
		"error_id":   errorID(field.ID),
	}
	if field.Validation.MinLength != nil {
		view["min_length"] = *field.Validation.MinLength
	}
	if field.Validation.MaxLength != nil {
		view["max_length"] = *field.Validation.MaxLength
	}
	if field.Derived != nil {
		view["formula"] = string(field.Derived.Formula)
		view["parents"] = strings.Join(field.Derived.ParentFields, " ")
	}
	if field.Type.IsChoice() {
		view["options"] = optionViews(field, value)
	}
	return view
}

func optionViews(field model.FieldDefinition, value any) []map[string]any {
	var selected []string
	switch typed := value.(type) {
	case []string:
		selected = typed
	case []any:
		for _, item := range typed {
			selected = append(selected, model.ValueString(item))
		}
	case nil:
	default:
		if s := model.ValueString(typed); s != "" {
			selected = []string{s}
		}
	}
	out := make([]map[string]any, 0, len(field.Options))
	for _, option := range field.Options {
		out = append(out, map[string]any{
			"value":   option,
			"checked": containsString(selected, option),
		})
	}
	return out
}

func inputType(field model.FieldDefinition, revealed bool) string {
	switch field.Type {
	case model.FieldTypePassword:
		if revealed {
			return "text"
		}
		return "password"
	case model.FieldTypeNumber, model.FieldTypeDate, model.FieldTypeRadio, model.FieldTypeCheckbox:
		return string(field.Type)
	}
	if field.Validation.Email {
		return "email"
	}
	return "text"
}
