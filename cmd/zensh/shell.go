// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zensh/zensh/internal/config"
	"github.com/zensh/zensh/internal/issue"
	"github.com/zensh/zensh/internal/lineinput"
	"github.com/zensh/zensh/pkg/shell"
)

// runOnce evaluates input like a line typed at the prompt.
func runOnce(ctx context.Context, app *App, input string) error {
	if err := app.bootstrap(ctx); err != nil {
		return err
	}
	eval := shell.NewEvaluator(app.registry, app.sessionOptions())
	return app.settle(eval.Execute(ctx, input))
}

// runInteractive runs the shell loop: with the line editor when stdin is a
// terminal, reading plain lines otherwise.
func runInteractive(ctx context.Context, app *App) error {
	if err := app.bootstrap(ctx); err != nil {
		return err
	}
	opts := app.sessionOptions()
	lineOpts := lineinput.Options{Label: app.cfg.Shell.Prompt, Complete: app.registry.Completions}

	if app.stdin == os.Stdin && lineinput.StdinIsTerminal() {
		if history := app.openHistory(); history != nil {
			defer func() {
				if err := history.Close(); err != nil {
					app.logger.Warn("input history was not fully saved", "error", err)
				}
			}()
			lineOpts.History = history
		}
		terminal, err := lineinput.OpenStdio(lineOpts)
		switch {
		case err == nil:
			defer terminal.Close()
			// Raw mode needs CRLF line endings, so everything goes through
			// the line editor, the log included.
			if app.cfg.Log.File == "" {
				app.logger.SetOutput(terminal)
				defer app.logger.SetOutput(app.stderr)
			}
			opts.Stdout, opts.Stderr, opts.Lines = terminal, terminal, terminal
			eval := shell.NewEvaluator(app.registry, opts)
			return app.settle(eval.Run(ctx, terminal))
		case !errors.Is(err, lineinput.ErrNotTerminal):
			return &ExitError{Code: 1, Err: err}
		}
	}

	scanner := lineinput.NewScanner(app.stdin, nil, lineOpts)
	opts.Lines = scanner
	eval := shell.NewEvaluator(app.registry, opts)
	return app.settle(eval.Run(ctx, scanner))
}

// openHistory opens the saved input history. Saving is optional, so a
// failure is logged and the session keeps an in-memory history.
func (a *App) openHistory() *lineinput.History {
	path, err := config.HistoryPath(a.cfg)
	if err != nil {
		a.logger.Warn("input history disabled", "error", err)
		return nil
	}
	if path == "" {
		return nil
	}
	history, err := lineinput.OpenHistory(path, lineinput.DefaultHistorySize)
	if err != nil {
		a.logger.Warn("input history disabled", "path", path, "error", err)
		return nil
	}
	return history
}

func newExecCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "exec <script>",
		Short: "Run a script and exit with its status",
		Long: `Run a script file. Statements run in order and the first failing
statement aborts the script (see script.on_error). A script may call
other scripts with "exec" up to script.max_depth levels deep.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := app.bootstrap(ctx); err != nil {
				return err
			}
			eval := shell.NewEvaluator(app.registry, app.sessionOptions())
			err := eval.RunScript(ctx, args[0])

			var input *shell.UserInputError
			if errors.As(err, &input) && input.Kind == shell.InputBadScript {
				if rendered, renderErr := issue.Get(issue.ScriptNotFoundId).Render(app.cfg.Shell.MarkdownStyle); renderErr == nil {
					fmt.Fprint(app.stderr, rendered)
				}
			}
			var limit *shell.ResourceLimitError
			if errors.As(err, &limit) {
				if rendered, renderErr := issue.Get(issue.RecursionLimitId).Render(app.cfg.Shell.MarkdownStyle); renderErr == nil {
					fmt.Fprint(app.stderr, rendered)
				}
			}
			return app.settle(err)
		},
	}
}

func newCommandsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "commands [name]",
		Short: "List the available commands, or show help for one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := "help"
			if len(args) == 1 {
				input += ` "` + args[0] + `"`
			}
			return runOnce(cmd.Context(), app, input)
		},
	}
}
