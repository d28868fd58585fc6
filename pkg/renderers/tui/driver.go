package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// InputConfig describes a single-line prompt. Password prompts use it too.
type InputConfig struct {
	Message   string
	Default   string
	Help      string
	Validator func(string) error
}

// ConfirmConfig describes a yes/no prompt.
type ConfirmConfig struct {
	Message string
	Default bool
	Help    string
}

// SelectConfig describes a choice prompt. DefaultIndex applies to Select,
// Defaults to MultiSelect.
type SelectConfig struct {
	Message      string
	Options      []string
	DefaultIndex int
	Defaults     []int
	Help         string
	PageSize     int
}

// TextAreaConfig describes a multi-line prompt.
type TextAreaConfig struct {
	Message string
	Default string
	Help    string
}

// PromptDriver is the terminal seen by the fill loop and the CLI. Tests
// replace it with scripted answers.
type PromptDriver interface {
	Input(ctx context.Context, cfg InputConfig) (string, error)
	Password(ctx context.Context, cfg InputConfig) (string, error)
	Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error)
	Select(ctx context.Context, cfg SelectConfig) (int, error)
	MultiSelect(ctx context.Context, cfg SelectConfig) ([]int, error)
	TextArea(ctx context.Context, cfg TextAreaConfig) (string, error)
	Info(ctx context.Context, msg string) error
}

type surveyDriver struct {
	out io.Writer
}

// NewSurveyDriver returns the interactive survey-backed driver. Info lines
// go to out, or stdout when nil.
func NewSurveyDriver(out io.Writer) PromptDriver {
	if out == nil {
		out = os.Stdout
	}
	return &surveyDriver{out: out}
}

// ask runs one survey prompt into a fresh T. Ctrl-C maps to ErrAborted.
func ask[T any](ctx context.Context, prompt survey.Prompt, opts ...survey.AskOpt) (T, error) {
	var answer T
	if err := ctx.Err(); err != nil {
		return answer, err
	}
	if err := survey.AskOne(prompt, &answer, opts...); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return answer, ErrAborted
		}
		return answer, err
	}
	return answer, nil
}

func validatorOpts(fn func(string) error) []survey.AskOpt {
	if fn == nil {
		return nil
	}
	return []survey.AskOpt{survey.WithValidator(func(ans interface{}) error {
		s, _ := ans.(string)
		return fn(s)
	})}
}

func (d *surveyDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	prompt := &survey.Input{Message: cfg.Message, Help: cfg.Help, Default: cfg.Default}
	return ask[string](ctx, prompt, validatorOpts(cfg.Validator)...)
}

func (d *surveyDriver) Password(ctx context.Context, cfg InputConfig) (string, error) {
	prompt := &survey.Password{Message: cfg.Message, Help: cfg.Help}
	return ask[string](ctx, prompt, validatorOpts(cfg.Validator)...)
}

func (d *surveyDriver) Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error) {
	return ask[bool](ctx, &survey.Confirm{Message: cfg.Message, Help: cfg.Help, Default: cfg.Default})
}

func (d *surveyDriver) Select(ctx context.Context, cfg SelectConfig) (int, error) {
	prompt := &survey.Select{Message: cfg.Message, Options: cfg.Options, Help: cfg.Help, PageSize: cfg.PageSize}
	if picked := pick(cfg.Options, []int{cfg.DefaultIndex}); len(picked) == 1 {
		prompt.Default = picked[0]
	}
	answer, err := ask[string](ctx, prompt)
	if err != nil {
		return 0, err
	}
	return defaultIndex(cfg.Options, answer), nil
}

func (d *surveyDriver) MultiSelect(ctx context.Context, cfg SelectConfig) ([]int, error) {
	prompt := &survey.MultiSelect{Message: cfg.Message, Options: cfg.Options, Help: cfg.Help, PageSize: cfg.PageSize}
	if picked := pick(cfg.Options, cfg.Defaults); len(picked) > 0 {
		prompt.Default = picked
	}
	answers, err := ask[[]string](ctx, prompt)
	if err != nil {
		return nil, err
	}
	return positions(cfg.Options, answers), nil
}

func (d *surveyDriver) TextArea(ctx context.Context, cfg TextAreaConfig) (string, error) {
	return ask[string](ctx, &survey.Multiline{Message: cfg.Message, Help: cfg.Help, Default: cfg.Default})
}

func (d *surveyDriver) Info(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(d.out, msg)
	return err
}

// pick returns the options at the in-range indices.
func pick(options []string, indices []int) []string {
	out := make([]string, 0, len(indices))
	for _, idx := range indices {
		if idx >= 0 && idx < len(options) {
			out = append(out, options[idx])
		}
	}
	return out
}

// positions returns the indices of options present in values, in option
// order.
func positions(options, values []string) []int {
	var out []int
	for i, option := range options {
		for _, v := range values {
			if v == option {
				out = append(out, i)
				break
			}
		}
	}
	return out
}
