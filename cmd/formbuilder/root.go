package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formbuilder/pkg/renderers/tui"
)

// errSilent marks failures already reported to the user.
var errSilent = errors.New("silent failure")

func run(args []string, io streams, driver tui.PromptDriver) int {
	a := newApp(io, driver)
	defer a.close()

	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, errSilent) && !errors.Is(err, tui.ErrAborted) {
			newPrinter(io.errOut).Error("%v", err)
		}
		return 1
	}
	return 0
}

func newRootCmd(a *app) *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:           "formbuilder",
		Short:         "Build, store, render and fill form schemas",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := readConfig(a.cfg, cfgFile); err != nil {
				return err
			}
			return a.init()
		},
	}
	cmd.SetIn(a.io.in)
	cmd.SetOut(a.io.out)
	cmd.SetErr(a.io.errOut)

	flags := cmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file (default $XDG_CONFIG_HOME/formbuilder/config.yaml)")
	flags.String("storage-driver", "", fmt.Sprintf("storage backend: %s, %s or %s", driverDir, driverSQLite, driverMemory))
	flags.String("storage-path", "", "directory (dir) or database file (sqlite)")
	flags.String("storage-key", "", "key holding the saved forms list")
	flags.String("log-level", "", "debug, info, warn, error or off")
	flags.String("log-format", "", "console or json")
	cobra.CheckErr(bindFlags(a.cfg, flags))

	cmd.AddCommand(
		newListCmd(a),
		newShowCmd(a),
		newDeleteCmd(a),
		newClearCmd(a),
		newImportCmd(a),
		newExportCmd(a),
		newImportOpenAPICmd(a),
		newRenderCmd(a),
		newFillCmd(a),
		newLintCmd(a),
		newNewCmd(a),
	)
	return cmd
}
