// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zensh/zensh/internal/config"
)

// newConfigCommand creates the `zensh config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage zensh configuration",
		Long: `Manage zensh configuration.

Configuration is stored in:
  - Linux: ~/.config/zensh/config.cue
  - macOS: ~/Library/Application Support/zensh/config.cue
  - Windows: %APPDATA%\zensh\config.cue

ZENSH_CONFIG_DIR relocates the directory. Every key can be overridden
with a ZENSH_ environment variable, for example ZENSH_SCRIPT_MAX_DEPTH=50.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			source := SubtitleStyle.Render("(using defaults)")
			if cfg.Source != "" {
				source = cfg.Source
			}
			fmt.Fprintln(app.stdout, TitleStyle.Render("Current Configuration"))
			fmt.Fprintf(app.stdout, "%s: %s\n\n", CmdStyle.Render("Config file"), source)
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	var format string
	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the effective configuration without decoration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			out, err := config.Dump(cfg, config.Format(format))
			if err != nil {
				return &ExitError{Code: 2, Err: err}
			}
			_, err = app.stdout.Write(out)
			return err
		},
	}
	dumpCmd.Flags().StringVar(&format, "format", string(config.FormatCUE), "output format: cue, toml or json")
	cfgCmd.AddCommand(dumpCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			path := app.configPath
			if path == "" {
				var err error
				if path, err = config.DefaultPath(""); err != nil {
					return &ExitError{Code: 1, Err: err}
				}
			}
			created, err := config.CreateDefaultConfig(path)
			if err != nil {
				return &ExitError{Code: 1, Err: err}
			}
			if !created {
				fmt.Fprintf(app.stdout, "%s %s\n", WarningStyle.Render("Configuration already exists:"), path)
				return nil
			}
			fmt.Fprintf(app.stdout, "%s %s\n", SuccessStyle.Render("Created"), path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			path := app.configPath
			if path == "" {
				var err error
				if path, err = config.DefaultPath(""); err != nil {
					return &ExitError{Code: 1, Err: err}
				}
			}
			fmt.Fprintln(app.stdout, path)
			return nil
		},
	})

	return cfgCmd
}
