package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formbuilder/pkg/renderers/tui"
	"github.com/goliatone/go-formbuilder/pkg/schemaio"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved forms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := a.forms.GetSavedForms(cmd.Context())
			if err != nil {
				return err
			}
			if len(list) == 0 {
				a.print.Warn("no saved forms")
				return nil
			}
			w := tabwriter.NewWriter(a.io.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tFIELDS\tCREATED")
			for _, form := range list {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", form.ID, form.Name, len(form.Fields), form.CreatedAt)
			}
			return w.Flush()
		},
	}
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID|FILE",
		Short: "Describe a form's fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := a.loadSchema(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			a.print.Heading("%s", schema.Name)
			if schema.ID != "" {
				a.print.Plain("%s", a.print.Faint(schema.ID+"  "+schema.CreatedAt))
			}
			w := tabwriter.NewWriter(a.io.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTYPE\tLABEL\tRULES\tDERIVED")
			for _, field := range schema.Fields {
				derived := ""
				if field.Derived != nil {
					derived = string(field.Derived.Formula)
					if len(field.Derived.ParentFields) > 0 {
						derived += "(" + strings.Join(field.Derived.ParentFields, ", ") + ")"
					}
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", field.ID, field.Type, field.Label, describeRules(field.Validation), derived)
			}
			return w.Flush()
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a saved form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := a.forms.DeleteFormByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("%w: %q", errFormNotFound, args[0])
			}
			a.print.Success("deleted %s", args[0])
			return nil
		},
	}
}

func newClearCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every saved form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				ok, err := a.promptDriver().Confirm(cmd.Context(), tui.ConfirmConfig{
					Message: "Delete all saved forms?",
				})
				if err != nil {
					return err
				}
				if !ok {
					a.print.Warn("nothing deleted")
					return nil
				}
			}
			if err := a.forms.ClearAllForms(cmd.Context()); err != nil {
				return err
			}
			a.print.Success("cleared saved forms")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Save a schema from a JSON or YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := schemaio.ReadFile(args[0])
			if err != nil {
				return err
			}
			saved, err := a.forms.SaveForm(cmd.Context(), schema)
			if err != nil {
				return err
			}
			a.print.Success("saved %q as %s", saved.Name, saved.ID)
			return nil
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	var (
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "export ID|FILE",
		Short: "Write a schema as JSON or YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := schemaio.ParseFormat(format)
			if err != nil {
				return err
			}
			schema, err := a.loadSchema(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			data, err := schemaio.Encode(schema, f)
			if err != nil {
				return err
			}
			return writeOutput(a, output, data)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(schemaio.FormatJSON), "json or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout when empty)")
	return cmd
}
