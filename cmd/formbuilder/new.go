package main

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formbuilder/pkg/editor"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/renderers/tui"
)

const doneChoice = "done"

var errNotCount = errors.New("enter a whole number")

func newNewCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Create a form interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ed := editor.New(editor.WithLogger(a.logger))
			if err := buildInteractively(cmd.Context(), a.promptDriver(), ed); err != nil {
				return err
			}
			saved, err := ed.Save(cmd.Context(), a.forms)
			if err != nil {
				return err
			}
			a.print.Success("saved %q as %s (%d fields)", saved.Name, saved.ID, len(saved.Fields))
			return nil
		},
	}
}

func buildInteractively(ctx context.Context, driver tui.PromptDriver, ed *editor.Editor) error {
	name, err := driver.Input(ctx, tui.InputConfig{
		Message:   "Form name",
		Validator: requireText("a form name is required"),
	})
	if err != nil {
		return err
	}
	ed.SetName(name)

	choices := []string{doneChoice}
	for _, t := range model.FieldTypes() {
		choices = append(choices, string(t))
	}

	for {
		idx, err := driver.Select(ctx, tui.SelectConfig{
			Message:      "Add a field",
			Options:      choices,
			DefaultIndex: 1,
		})
		if err != nil {
			return err
		}
		if idx <= 0 || idx >= len(choices) {
			return nil
		}
		if err := addField(ctx, driver, ed, model.FieldType(choices[idx])); err != nil {
			return err
		}
	}
}

func addField(ctx context.Context, driver tui.PromptDriver, ed *editor.Editor, t model.FieldType) error {
	field, err := ed.AddField(t)
	if err != nil {
		return err
	}

	label, err := driver.Input(ctx, tui.InputConfig{Message: "Label"})
	if err != nil {
		return err
	}
	if err := ed.SetLabel(field.ID, label); err != nil {
		return err
	}

	if t.IsChoice() {
		text, err := driver.Input(ctx, tui.InputConfig{
			Message: "Options (comma separated)",
			Default: strings.Join(editor.DefaultChoiceOptions, ", "),
		})
		if err != nil {
			return err
		}
		if err := ed.SetOptions(field.ID, text); err != nil {
			return err
		}
	}

	var rules model.ValidationRules
	if rules.Required, err = driver.Confirm(ctx, tui.ConfirmConfig{Message: "Required?"}); err != nil {
		return err
	}
	switch t {
	case model.FieldTypeText:
		if rules.Email, err = driver.Confirm(ctx, tui.ConfirmConfig{Message: "Must be an email address?"}); err != nil {
			return err
		}
	case model.FieldTypePassword:
		if rules.PasswordRule, err = driver.Confirm(ctx, tui.ConfirmConfig{Message: "Enforce password strength?", Default: true}); err != nil {
			return err
		}
	}
	if t == model.FieldTypeText || t == model.FieldTypeTextarea || t == model.FieldTypePassword {
		if rules.MinLength, err = askLength(ctx, driver, "Minimum length (blank for none)"); err != nil {
			return err
		}
		if rules.MaxLength, err = askLength(ctx, driver, "Maximum length (blank for none)"); err != nil {
			return err
		}
	}
	if err := ed.SetValidation(field.ID, rules); err != nil {
		return err
	}

	field, _ = ed.Field(field.ID)
	if !editor.CanDerive(field) {
		return nil
	}
	withAge, err := driver.Confirm(ctx, tui.ConfirmConfig{
		Message: "Add an Age field computed from " + field.Label + "?",
		Default: true,
	})
	if err != nil || !withAge {
		return err
	}
	age, err := ed.AddField(model.FieldTypeNumber)
	if err != nil {
		return err
	}
	if err := ed.SetLabel(age.ID, "Age"); err != nil {
		return err
	}
	return ed.SetDerivation(age.ID, model.FormulaAgeFromDOB, field.ID)
}

func askLength(ctx context.Context, driver tui.PromptDriver, message string) (*int, error) {
	raw, err := driver.Input(ctx, tui.InputConfig{Message: message, Validator: optionalCount})
	if err != nil {
		return nil, err
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}
	return model.IntPtr(n), nil
}

func optionalCount(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return errNotCount
	}
	return nil
}

func requireText(msg string) func(string) error {
	return func(raw string) error {
		if strings.TrimSpace(raw) == "" {
			return errors.New(msg)
		}
		return nil
	}
}
