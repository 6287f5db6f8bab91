// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree over app. Without a subcommand it
// starts the interactive shell, or evaluates -c input and exits.
func NewRootCommand(app *App) *cobra.Command {
	var command string

	root := &cobra.Command{
		Use:   "zensh",
		Short: "An interactive command shell",
		Long: TitleStyle.Render("zensh") + SubtitleStyle.Render(" - an interactive command shell") + `

zensh reads commands from a prompt, a script or an SSH session and runs
them against one registry of built-ins, embedded interpreters (Lua and a
POSIX shell), file utilities and your own macros.

` + SubtitleStyle.Render("Examples:") + `
  zensh                         Start the interactive shell
  zensh -c "echo hi; echo bye"  Evaluate input and exit
  zensh exec build.zensh        Run a script
  zensh serve                   Serve the shell over SSH
  zensh watch build.zensh       Re-run a script when files change`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PersistentPostRun: func(*cobra.Command, []string) {
			app.close()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("command") {
				return runOnce(cmd.Context(), app, command)
			}
			return runInteractive(cmd.Context(), app)
		},
	}

	root.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "log at debug level")
	root.PersistentFlags().StringVar(&app.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/zensh/config.cue)")
	root.Flags().StringVarP(&command, "command", "c", "", "evaluate the input and exit")

	root.AddCommand(
		newExecCommand(app),
		newCommandsCommand(app),
		newServeCommand(app),
		newWatchCommand(app),
		newConfigCommand(app),
	)
	return root
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Main runs the CLI with the process arguments and returns the exit status.
func Main() int {
	app := NewApp(Dependencies{})
	root := NewRootCommand(app)

	err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	)
	if err != nil {
		return statusOf(err)
	}
	return app.ExitCode()
}

// Execute runs the CLI and exits the process with its status.
func Execute() {
	os.Exit(Main())
}
