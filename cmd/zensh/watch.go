// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/zensh/zensh/internal/issue"
	"github.com/zensh/zensh/internal/watch"
	"github.com/zensh/zensh/pkg/shell"
)

type watchFlags struct {
	patterns []string
	ignore   []string
	debounce time.Duration
	clear    bool
}

func newWatchCommand(app *App) *cobra.Command {
	var flags watchFlags

	cmd := &cobra.Command{
		Use:   "watch <script>",
		Short: "Run a script, then run it again whenever files change",
		Long: `Run a script once, then again every time a watched file changes.
Bursts of changes are coalesced into a single run and runs never overlap.

By default every script file (by script.extension) under the current
directory is watched. A script that calls "exit" stops the watcher.`,
		Example: `  zensh watch build.zensh
  zensh watch build.zensh --pattern "src/**" --clear`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, app, args[0], flags)
		},
	}
	cmd.Flags().StringArrayVar(&flags.patterns, "pattern", nil, "glob of files that trigger a run (repeatable)")
	cmd.Flags().StringArrayVar(&flags.ignore, "ignore", nil, "glob of files to ignore (repeatable)")
	cmd.Flags().DurationVar(&flags.debounce, "debounce", watch.DefaultDebounce, "quiet period before a run")
	cmd.Flags().BoolVar(&flags.clear, "clear", false, "clear the screen before every run")
	return cmd
}

func runWatch(cmd *cobra.Command, app *App, script string, flags watchFlags) error {
	ctx := cmd.Context()
	if err := app.bootstrap(ctx); err != nil {
		return err
	}
	eval := shell.NewEvaluator(app.registry, app.sessionOptions())
	run := watch.ScriptRunner(eval, filepath.ToSlash(script))

	// A failing first run keeps watching; an exit request does not.
	err := run(ctx, nil)
	var exit *shell.ExitRequest
	if errors.As(err, &exit) || errors.Is(err, context.Canceled) {
		return app.settle(err)
	}

	patterns := flags.patterns
	if len(patterns) == 0 {
		patterns = []string{"**/*." + app.cfg.Script.Extension.String()}
	}
	w, err := watch.New(watch.Config{
		Dir:         eval.WorkDir(),
		Patterns:    patterns,
		Ignore:      flags.ignore,
		Debounce:    flags.debounce,
		ClearScreen: flags.clear,
		Stdout:      app.stdout,
		Logger:      app.logger,
		OnChange:    run,
	})
	if err != nil {
		if rendered, renderErr := issue.Get(issue.WatchFailedId).Render(app.cfg.Shell.MarkdownStyle); renderErr == nil {
			fmt.Fprint(app.stderr, rendered)
		}
		return &ExitError{Code: 1, Err: err}
	}
	fmt.Fprintln(app.stderr, SubtitleStyle.Render("watching "+w.Dir()+" for changes (Ctrl-C to stop)"))

	return app.settle(w.Run(ctx))
}
