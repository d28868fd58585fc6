package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/session"
)

const noneOption = "(none)"

// Renderer implements render.Renderer for terminal sessions. Rendering a
// schema walks its editable fields, feeds every answer through a
// session.Session and serializes the submitted values.
type Renderer struct {
	driver            PromptDriver
	infoOut           io.Writer
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
	theme             Theme
	maxAttempts       int
	logger            *zap.SugaredLogger
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
		theme:        DefaultTheme,
		maxAttempts:  3,
		logger:       zap.NewNop().Sugar(),
	}

	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}

	switch r.outputFormat {
	case OutputFormatJSON, OutputFormatFormURLEncoded, OutputFormatPrettyText:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOutputFormat, r.outputFormat)
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(r.infoOut)
	}
	if r.maxAttempts < 1 {
		r.maxAttempts = 1
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

// Render prompts for the schema and returns the serialized submission.
// options.Values prefill the prompts; options.Errors are shown before the
// first prompt of the matching field.
func (r *Renderer) Render(ctx context.Context, schema model.FormSchema, options render.RenderOptions) ([]byte, error) {
	values, err := r.Fill(ctx, schema, options)
	if err != nil {
		return nil, err
	}

	out := map[string]any(values)
	if r.submitTransformer != nil {
		out, err = r.submitTransformer(out)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}
	return r.serialize(schema.Fields, out)
}

// Fill runs the prompt loop and returns the values of a successful submit.
func (r *Renderer) Fill(ctx context.Context, schema model.FormSchema, options render.RenderOptions) (model.FormValues, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, ErrNoDriver
	}

	sess := session.New(schema.Fields,
		session.WithValues(options.Values),
		session.WithLogger(r.logger),
	)
	if schema.Name != "" {
		if err := r.info(ctx, r.theme.InfoPrefix+schema.Name); err != nil {
			return nil, err
		}
	}
	for _, warning := range sess.Warnings() {
		if err := r.info(ctx, r.theme.ErrorPrefix+warning.Message); err != nil {
			return nil, err
		}
	}

	tracker := newDerivedTracker(schema.Fields, sess.Values())
	pending := options.Errors.Clone()

	for _, field := range schema.Fields {
		if field.IsDerived() {
			continue
		}
		if err := r.askUntilValid(ctx, sess, field, tracker, pending[field.ID]); err != nil {
			return nil, err
		}
	}

	for {
		result := sess.Submit()
		if result.OK {
			return sess.Values(), nil
		}
		invalid := invalidFields(schema.Fields, result.Errors)
		editable := 0
		for _, field := range invalid {
			if !field.IsDerived() {
				editable++
			}
			if err := r.info(ctx, r.theme.ErrorPrefix+field.Label+": "+result.Errors[field.ID]); err != nil {
				return nil, err
			}
		}
		if editable == 0 {
			return nil, submissionError(result.Errors)
		}
		retry, err := r.driver.Confirm(ctx, ConfirmConfig{
			Message: r.theme.PromptPrefix + "Fix the highlighted fields?",
			Default: true,
		})
		if err != nil {
			return nil, err
		}
		if !retry {
			return nil, submissionError(result.Errors)
		}
		for _, field := range invalid {
			if field.IsDerived() {
				continue
			}
			if err := r.askUntilValid(ctx, sess, field, tracker, ""); err != nil {
				return nil, err
			}
		}
	}
}

// askUntilValid prompts for one field until it validates or maxAttempts is
// reached. A field still invalid afterwards is reported again on submit.
func (r *Renderer) askUntilValid(ctx context.Context, sess *session.Session, field model.FieldDefinition, tracker *derivedTracker, prior string) error {
	if prior != "" {
		if err := r.info(ctx, r.theme.ErrorPrefix+field.Label+": "+prior); err != nil {
			return err
		}
	}
	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		current, _ := sess.Value(field.ID)
		answer, err := r.prompt(ctx, field, current)
		if err != nil {
			return err
		}
		if err := sess.SetValue(field.ID, answer); err != nil {
			return err
		}
		for _, derived := range tracker.changed(sess.Values()) {
			value, _ := sess.Value(derived.ID)
			msg := fmt.Sprintf("%s%s: %s", r.theme.DerivedPrefix, derived.Label, model.ValueString(value))
			if err := r.info(ctx, msg); err != nil {
				return err
			}
		}
		msg := sess.Errors()[field.ID]
		if msg == "" {
			return nil
		}
		if err := r.info(ctx, r.theme.ErrorPrefix+msg); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) prompt(ctx context.Context, field model.FieldDefinition, current any) (any, error) {
	message := r.theme.PromptPrefix + displayLabel(field)
	help := displayHelp(field)
	def := model.ValueString(current)

	switch field.Type {
	case model.FieldTypePassword:
		return r.driver.Password(ctx, InputConfig{Message: message, Help: help})
	case model.FieldTypeTextarea:
		return r.driver.TextArea(ctx, TextAreaConfig{Message: message, Help: help, Default: def})
	case model.FieldTypeSelect, model.FieldTypeRadio:
		options := append([]string(nil), field.Options...)
		if !field.Validation.Required {
			options = append([]string{noneOption}, options...)
		}
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      message,
			Options:      options,
			DefaultIndex: defaultIndex(options, def),
			Help:         help,
		})
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(options) || options[idx] == noneOption {
			return "", nil
		}
		return options[idx], nil
	case model.FieldTypeCheckbox:
		indices, err := r.driver.MultiSelect(ctx, SelectConfig{
			Message:  message,
			Options:  field.Options,
			Defaults: positions(field.Options, selectedValues(current)),
			Help:     help,
		})
		if err != nil {
			return nil, err
		}
		return pick(field.Options, indices), nil
	case model.FieldTypeNumber:
		return r.driver.Input(ctx, InputConfig{
			Message:   message,
			Help:      help,
			Default:   def,
			Validator: numberValidator,
		})
	default:
		return r.driver.Input(ctx, InputConfig{Message: message, Help: help, Default: def})
	}
}

func (r *Renderer) info(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, msg)
}

func (r *Renderer) serialize(fields []model.FieldDefinition, values map[string]any) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(encodeForm(values)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(fields, values)), nil
	default:
		return json.MarshalIndent(values, "", "  ")
	}
}

func submissionError(errs model.FormErrors) error {
	ids := make([]string, 0, len(errs))
	for id, msg := range errs {
		if msg != "" {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return fmt.Errorf("%w: %s", ErrInvalidSubmission, strings.Join(ids, ", "))
}

func invalidFields(fields []model.FieldDefinition, errs model.FormErrors) []model.FieldDefinition {
	var out []model.FieldDefinition
	for _, field := range fields {
		if errs[field.ID] != "" {
			out = append(out, field)
		}
	}
	return out
}

func displayLabel(field model.FieldDefinition) string {
	label := field.Label
	if label == "" {
		label = field.ID
	}
	if field.Validation.Required {
		label += " *"
	}
	return label
}

func displayHelp(field model.FieldDefinition) string {
	var parts []string
	rules := field.Validation
	if rules.MinLength != nil {
		parts = append(parts, fmt.Sprintf("at least %d characters", *rules.MinLength))
	}
	if rules.MaxLength != nil {
		parts = append(parts, fmt.Sprintf("at most %d characters", *rules.MaxLength))
	}
	if rules.Email {
		parts = append(parts, "an email address")
	}
	if rules.PasswordRule {
		parts = append(parts, "6+ characters including a number")
	}
	if field.Type == model.FieldTypeDate {
		parts = append(parts, "YYYY-MM-DD")
	}
	return strings.Join(parts, "; ")
}

func numberValidator(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if _, err := strconv.ParseFloat(raw, 64); err != nil {
		return fmt.Errorf("%q is not a number", raw)
	}
	return nil
}

func selectedValues(value any) []string {
	switch typed := value.(type) {
	case []string:
		return typed
	case []any:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			out = append(out, model.ValueString(item))
		}
		return out
	case nil:
		return nil
	default:
		if s := model.ValueString(typed); s != "" {
			return []string{s}
		}
		return nil
	}
}

func defaultIndex(options []string, value string) int {
	if idx := positions(options, []string{value}); len(idx) > 0 {
		return idx[0]
	}
	return -1
}

func encodeForm(values map[string]any) string {
	form := url.Values{}
	for key, value := range values {
		switch typed := value.(type) {
		case []string:
			for _, item := range typed {
				form.Add(key, item)
			}
		case []any:
			for _, item := range typed {
				form.Add(key, model.ValueString(item))
			}
		default:
			form.Set(key, model.ValueString(typed))
		}
	}
	return form.Encode()
}

// prettyPrint lists schema fields in order, then any extra keys sorted.
func prettyPrint(fields []model.FieldDefinition, values map[string]any) string {
	var b strings.Builder
	seen := make(map[string]bool, len(fields))
	for _, field := range fields {
		seen[field.ID] = true
		value, ok := values[field.ID]
		if !ok {
			continue
		}
		label := field.Label
		if label == "" {
			label = field.ID
		}
		if field.Type == model.FieldTypePassword && !model.IsEmpty(value) {
			value = "********"
		}
		fmt.Fprintf(&b, "%s: %s\n", label, model.ValueString(value))
	}
	var extra []string
	for key := range values {
		if !seen[key] {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	for _, key := range extra {
		fmt.Fprintf(&b, "%s: %s\n", key, model.ValueString(values[key]))
	}
	return b.String()
}
