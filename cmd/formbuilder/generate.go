package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	theme "github.com/goliatone/go-theme"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formbuilder/pkg/derive"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/openapi"
	"github.com/goliatone/go-formbuilder/pkg/orchestrator"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/renderers/tui"
	"github.com/goliatone/go-formbuilder/pkg/renderers/vanilla"
	"github.com/goliatone/go-formbuilder/pkg/schemaio"
)

func newImportOpenAPICmd(a *app) *cobra.Command {
	var (
		operation string
		name      string
		dryRun    bool
		list      bool
	)
	cmd := &cobra.Command{
		Use:   "import-openapi FILE|URL",
		Short: "Build a schema from an OpenAPI operation's request body",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			src, err := openapi.ParseSource(args[0])
			if err != nil {
				return err
			}
			importer := openapi.NewImporter(
				openapi.WithHTTPFallback(15*time.Second),
				openapi.WithLogger(a.logger),
			)

			if list || operation == "" {
				data, err := importer.Load(ctx, src)
				if err != nil {
					return err
				}
				ops, err := importer.Operations(ctx, data)
				if err != nil {
					return err
				}
				if operation == "" && !list {
					a.print.Warn("--operation is required; available operations:")
				}
				for _, op := range ops {
					a.print.Plain("%-24s %-6s %s  %s", op.ID, op.Method, op.Path, a.print.Faint(op.Summary))
				}
				if !list {
					return errSilent
				}
				return nil
			}

			schema, err := importer.ImportSchema(ctx, src, operation, name)
			if err != nil {
				return err
			}
			if dryRun {
				data, err := schemaio.Encode(schema, schemaio.FormatJSON)
				if err != nil {
					return err
				}
				return writeOutput(a, "", data)
			}
			saved, err := a.forms.SaveForm(ctx, schema)
			if err != nil {
				return err
			}
			a.print.Success("saved %q as %s (%d fields)", saved.Name, saved.ID, len(saved.Fields))
			return nil
		},
	}
	cmd.Flags().StringVar(&operation, "operation", "", "operationId to import")
	cmd.Flags().StringVar(&name, "name", "", "form name (defaults to the operation summary)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the schema instead of saving it")
	cmd.Flags().BoolVar(&list, "list", false, "list operations and exit")
	return cmd
}

func newRenderCmd(a *app) *cobra.Command {
	var (
		valuesFile string
		presetFile string
		output     string
		action     string
		validate   bool
		inlineCSS  bool
	)
	cmd := &cobra.Command{
		Use:   "render ID|FILE",
		Short: "Render a form as HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			schema, err := a.loadSchema(ctx, args[0])
			if err != nil {
				return err
			}

			var prefill model.FormValues
			if valuesFile != "" {
				if prefill, err = loadValues(valuesFile); err != nil {
					return err
				}
			}

			html, err := vanilla.New(vanilla.WithInlineStylesheet(inlineCSS))
			if err != nil {
				return err
			}
			registry, err := render.NewRegistry(html)
			if err != nil {
				return err
			}
			options := []orchestrator.Option{
				orchestrator.WithRegistry(registry),
				orchestrator.WithDefaultRenderer(html.Name()),
				orchestrator.WithLogger(a.logger),
			}
			selection, err := a.themeSelection()
			if err != nil {
				return err
			}
			if selection != nil {
				options = append(options, orchestrator.WithTheme(selection))
			}
			if presetFile != "" {
				preset, err := orchestrator.NewPresetTransformerFromFS(os.DirFS(filepath.Dir(presetFile)), filepath.Base(presetFile))
				if err != nil {
					return err
				}
				options = append(options, orchestrator.WithSchemaTransformer(preset))
			}

			out, err := orchestrator.New(options...).Generate(ctx, orchestrator.Request{
				Schema:        &schema,
				Values:        prefill,
				Validate:      validate,
				RenderOptions: render.RenderOptions{Action: action},
			})
			if err != nil {
				return err
			}
			return writeOutput(a, output, out)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&valuesFile, "values", "", "JSON or YAML file with field values")
	flags.StringVar(&presetFile, "preset", "", "YAML preset with label, option and rule overrides")
	flags.StringVarP(&output, "output", "o", "", "output file (stdout when empty)")
	flags.StringVar(&action, "action", "", "form action URL")
	flags.BoolVar(&validate, "validate", false, "show validation errors for the values")
	flags.BoolVar(&inlineCSS, "inline-css", true, "embed the default stylesheet")
	flags.String("theme", "", "go-theme manifest (YAML or JSON)")
	flags.String("theme-variant", "", "theme variant name")
	cobra.CheckErr(bindFlags(a.cfg, flags))
	return cmd
}

func (a *app) themeSelection() (*theme.Selection, error) {
	path := a.cfg.GetString(keyThemeFile)
	if path == "" {
		return nil, nil
	}
	manifest, err := render.LoadThemeManifest(path)
	if err != nil {
		return nil, err
	}
	selection := &theme.Selection{
		Theme:    manifest.Name,
		Variant:  a.cfg.GetString(keyThemeVariant),
		Manifest: manifest,
	}
	if _, err := render.ThemeConfig(selection); err != nil {
		return nil, err
	}
	return selection, nil
}

func newFillCmd(a *app) *cobra.Command {
	var (
		format     string
		valuesFile string
		output     string
	)
	cmd := &cobra.Command{
		Use:   "fill ID|FILE",
		Short: "Fill a form interactively in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			schema, err := a.loadSchema(ctx, args[0])
			if err != nil {
				return err
			}
			var opts render.RenderOptions
			if valuesFile != "" {
				if opts.Values, err = loadValues(valuesFile); err != nil {
					return err
				}
			}
			terminal, err := tui.New(
				tui.WithPromptDriver(a.promptDriver()),
				tui.WithOutputFormat(tui.OutputFormat(format)),
				tui.WithLogger(a.logger),
			)
			if err != nil {
				return err
			}
			out, err := terminal.Render(ctx, schema, opts)
			if err != nil {
				return err
			}
			return writeOutput(a, output, out)
		},
	}
	cmd.Flags().StringVar(&format, "format", string(tui.OutputFormatJSON), "json, form or pretty")
	cmd.Flags().StringVar(&valuesFile, "values", "", "JSON or YAML file with initial values")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout when empty)")
	return cmd
}

func newLintCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lint ID|FILE",
		Short: "Check a schema's fields and derivation graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := a.loadSchema(cmd.Context(), args[0])
			if err != nil {
				if errors.Is(err, schemaio.ErrInvalidSchema) {
					a.print.Error("%v", err)
					return errSilent
				}
				return err
			}

			failed := false
			for _, issue := range derive.Check(schema.Fields) {
				switch issue.Severity {
				case derive.SeverityError:
					failed = true
					a.print.Error("%s: %s", issue.Field, issue.Message)
				default:
					a.print.Warn("%s: %s", issue.Field, issue.Message)
				}
			}
			if failed {
				return errSilent
			}
			order := derive.Order(schema.Fields)
			if len(order) == 0 {
				a.print.Success("%s: %d fields, no derived fields", schema.Name, len(schema.Fields))
				return nil
			}
			a.print.Success("%s: %d fields, evaluation order %s",
				schema.Name, len(schema.Fields), strings.Join(order, " → "))
			return nil
		},
	}
}

func describeRules(rules model.ValidationRules) string {
	var parts []string
	if rules.Required {
		parts = append(parts, "required")
	}
	if rules.MinLength != nil {
		parts = append(parts, fmt.Sprintf("min=%d", *rules.MinLength))
	}
	if rules.MaxLength != nil {
		parts = append(parts, fmt.Sprintf("max=%d", *rules.MaxLength))
	}
	if rules.Email {
		parts = append(parts, "email")
	}
	if rules.PasswordRule {
		parts = append(parts, "password")
	}
	return strings.Join(parts, ",")
}
