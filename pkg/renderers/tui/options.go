package tui

import (
	"io"

	"go.uber.org/zap"
)

// OutputFormat controls how collected values are serialized.
type OutputFormat string

const (
	// OutputFormatJSON emits application/json payloads.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatFormURLEncoded emits application/x-www-form-urlencoded payloads.
	OutputFormatFormURLEncoded OutputFormat = "form"
	// OutputFormatPrettyText emits a human-friendly text summary.
	OutputFormatPrettyText OutputFormat = "pretty"
)

// Theme captures optional prefixes applied to messages.
type Theme struct {
	PromptPrefix  string
	InfoPrefix    string
	ErrorPrefix   string
	DerivedPrefix string
}

// DefaultTheme is used when WithTheme is not supplied.
var DefaultTheme = Theme{
	InfoPrefix:    "i ",
	ErrorPrefix:   "✗ ",
	DerivedPrefix: "= ",
}

// SubmitTransformer mutates collected values before serialization.
type SubmitTransformer func(map[string]any) (map[string]any, error)

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver used by the renderer.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithInfoWriter sets where the default survey driver prints messages.
func WithInfoWriter(out io.Writer) Option {
	return func(r *Renderer) {
		if out != nil {
			r.infoOut = out
		}
	}
}

// WithOutputFormat selects the output serialization format.
func WithOutputFormat(format OutputFormat) Option {
	return func(r *Renderer) {
		if format != "" {
			r.outputFormat = format
		}
	}
}

// WithSubmitTransformer allows callers to mutate collected values prior to
// serialization.
func WithSubmitTransformer(fn SubmitTransformer) Option {
	return func(r *Renderer) {
		r.submitTransformer = fn
	}
}

// WithTheme applies message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}

// WithMaxAttempts bounds how many times one field is re-prompted after a
// validation error. Values below one mean a single attempt.
func WithMaxAttempts(n int) Option {
	return func(r *Renderer) {
		r.maxAttempts = n
	}
}

// WithLogger sets the logger used for session diagnostics.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}
