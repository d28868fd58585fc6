package orchestrator

import (
	"context"
	"errors"
	"fmt"

	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/pkg/derive"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/openapi"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/renderers/vanilla"
	"github.com/goliatone/go-formbuilder/pkg/session"
)

const defaultRendererName = "vanilla"

var (
	// ErrNoSchema is returned when a request names neither a schema nor an
	// OpenAPI source.
	ErrNoSchema = errors.New("orchestrator: schema or source is required")
	// ErrNoRenderers is returned when the registry is empty.
	ErrNoRenderers = errors.New("orchestrator: no renderers registered")
)

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithImporter injects the OpenAPI importer used for Source requests.
func WithImporter(importer *openapi.Importer) Option {
	return func(o *Orchestrator) {
		o.importer = importer
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithSchemaTransformer registers a Transformer that runs on the resolved
// schema before the session is built.
func WithSchemaTransformer(t Transformer) Option {
	return func(o *Orchestrator) {
		o.transformer = t
	}
}

// WithTheme selects the theme applied when a request carries no theme of
// its own.
func WithTheme(selection *theme.Selection) Option {
	return func(o *Orchestrator) {
		o.theme = selection
	}
}

// WithEngine sets the derivation engine used by request sessions.
func WithEngine(engine *derive.Engine) Option {
	return func(o *Orchestrator) {
		o.engine = engine
	}
}

// WithLogger sets the logger passed down to sessions.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Orchestrator coordinates schema → session → renderer. It defaults to the
// vanilla renderer and an importer with HTTP disabled.
type Orchestrator struct {
	importer        *openapi.Importer
	registry        *render.Registry
	defaultRenderer string
	transformer     Transformer
	theme           *theme.Selection
	engine          *derive.Engine
	logger          *zap.SugaredLogger
	initialiseErr   error
}

// New constructs an Orchestrator applying any provided options.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
		logger:          zap.NewNop().Sugar(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request describes one render.
type Request struct {
	// Schema renders a schema the caller already holds.
	Schema *model.FormSchema

	// Source and OperationID import the schema from an OpenAPI document when
	// Schema is nil. Name overrides the imported schema name.
	Source      openapi.Source
	OperationID string
	Name        string

	// Renderer names the renderer to use. If empty, the orchestrator falls back
	// to the configured default renderer.
	Renderer string

	// Values prefill the session. Derived values are recomputed.
	Values model.FormValues

	// Validate runs a full submit validation and renders its errors.
	Validate bool

	// RenderOptions carries per-request instructions. Values and errors from
	// the session are merged in; explicit Errors entries win.
	RenderOptions render.RenderOptions
}

// Generate resolves the schema, runs it through a session and returns the
// rendered bytes.
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := o.initialiseErr; err != nil {
		return nil, err
	}

	schema, err := o.resolveSchema(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := o.applyTransformer(ctx, &schema); err != nil {
		return nil, err
	}

	sessOpts := []session.Option{session.WithValues(req.Values), session.WithLogger(o.logger)}
	if o.engine != nil {
		sessOpts = append(sessOpts, session.WithEngine(o.engine))
	}
	sess := session.New(schema.Fields, sessOpts...)
	snap := sess.Snapshot()
	if req.Validate {
		snap.Errors = sess.Submit().Errors
	}

	opts := req.RenderOptions
	opts.Values = snap.Values
	opts.Errors = mergeErrors(snap.Errors, req.RenderOptions.Errors)
	if opts.RevealPasswords == nil {
		opts.RevealPasswords = snap.Revealed
	}
	if opts.Theme == nil && o.theme != nil {
		if opts.Theme, err = render.ThemeConfig(o.theme); err != nil {
			return nil, fmt.Errorf("orchestrator: resolve theme: %w", err)
		}
	}

	renderer, err := o.rendererFor(req.Renderer)
	if err != nil {
		return nil, err
	}
	output, err := renderer.Render(ctx, schema, opts)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}
	return output, nil
}

func (o *Orchestrator) resolveSchema(ctx context.Context, req Request) (model.FormSchema, error) {
	if req.Schema != nil {
		return req.Schema.Clone(), nil
	}
	if req.Source == nil {
		return model.FormSchema{}, ErrNoSchema
	}
	if req.OperationID == "" {
		return model.FormSchema{}, errors.New("orchestrator: operation id is required")
	}
	schema, err := o.importer.ImportSchema(ctx, req.Source, req.OperationID, req.Name)
	if err != nil {
		return model.FormSchema{}, fmt.Errorf("orchestrator: import schema: %w", err)
	}
	return schema, nil
}

func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}

	target := name
	if target == "" {
		target = o.defaultRenderer
	}

	if target != "" {
		renderer, err := o.registry.Get(target)
		if err == nil {
			return renderer, nil
		}
		if name != "" {
			return nil, fmt.Errorf("orchestrator: renderer %q: %w", name, err)
		}
	}

	names := o.registry.List()
	if len(names) == 0 {
		return nil, ErrNoRenderers
	}
	return o.registry.Get(names[0])
}

func (o *Orchestrator) applyTransformer(ctx context.Context, schema *model.FormSchema) error {
	if o.transformer == nil {
		return nil
	}
	if err := o.transformer.Transform(ctx, schema); err != nil {
		return fmt.Errorf("orchestrator: transform schema: %w", err)
	}
	return nil
}

func (o *Orchestrator) applyDefaults() {
	if o.importer == nil {
		o.importer = openapi.NewImporter(openapi.WithLogger(o.logger))
	}
	if o.registry == nil {
		renderer, err := vanilla.New()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default renderer: %w", err)
			return
		}
		o.registry, o.initialiseErr = render.NewRegistry(renderer)
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = defaultRendererName
	}
}

func mergeErrors(base, overrides model.FormErrors) model.FormErrors {
	out := base.Clone()
	for id, msg := range overrides {
		out[id] = msg
	}
	return out
}
