// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/zensh/zensh/internal/builtins"
	"github.com/zensh/zensh/internal/config"
	"github.com/zensh/zensh/internal/coreutils"
	"github.com/zensh/zensh/internal/issue"
	"github.com/zensh/zensh/internal/logging"
	"github.com/zensh/zensh/pkg/shell"
)

type (
	// App is the composition root of the CLI: configuration, the process
	// logger and the command registry every session evaluates against.
	App struct {
		Config config.Provider
		stdin  io.Reader
		stdout io.Writer
		stderr io.Writer

		// Flag values bound by the root command.
		configPath string
		verbose    bool

		cfg      *config.Config
		logger   *log.Logger
		closer   io.Closer
		registry *shell.Registry

		// exitCode is the status requested by an evaluated session.
		exitCode int
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults.
	Dependencies struct {
		Config config.Provider
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}
)

// NewApp creates an App. Nothing is loaded until a command runs.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config: deps.Config,
		stdin:  deps.Stdin,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.stdin == nil {
		app.stdin = os.Stdin
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	return app
}

// ExitCode returns the status requested by the last evaluated session.
func (a *App) ExitCode() int { return a.exitCode }

// loadConfig loads the configuration once, honoring --config.
func (a *App) loadConfig(ctx context.Context) (*config.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: a.configPath})
	if err != nil {
		if rendered, renderErr := issue.Get(issue.ConfigLoadFailedId).Render("auto"); renderErr == nil {
			fmt.Fprint(a.stderr, rendered)
		}
		var ae *issue.ActionableError
		if errors.As(err, &ae) {
			err = errors.New(ae.Format(a.verbose))
		}
		return nil, &ExitError{Code: 2, Err: err}
	}
	a.cfg = cfg
	return cfg, nil
}

// bootstrap builds the logger and the registry: built-ins, core utilities
// when enabled, then user aliases and macros from the configuration.
func (a *App) bootstrap(ctx context.Context) error {
	if a.registry != nil {
		return nil
	}
	cfg, err := a.loadConfig(ctx)
	if err != nil {
		return err
	}

	level := cfg.Log.Level
	if a.verbose || cfg.UI.Verbose {
		level = "debug"
	}
	logger, closer, err := logging.New(logging.Options{
		Level:  level,
		File:   cfg.Log.File,
		Prefix: config.AppName,
		Stderr: a.stderr,
	})
	if err != nil {
		return &ExitError{Code: 2, Err: err}
	}

	reg := shell.NewRegistry(logger)
	installErr := builtins.Install(reg)
	if cfg.Shell.CoreUtils {
		installErr = errors.Join(installErr, coreutils.Install(reg))
	}
	if installErr != nil {
		_ = closer.Close()
		return &ExitError{Code: 2, Err: fmt.Errorf("register built-in commands: %w", installErr)}
	}
	if rejected := builtins.InstallConfig(reg, cfg, logger); rejected > 0 {
		logger.Warn("some configured aliases or macros were skipped", "count", rejected)
	}

	a.logger, a.closer, a.registry = logger, closer, reg
	return nil
}

// close releases the log file, if any.
func (a *App) close() {
	if a.closer != nil {
		_ = a.closer.Close()
	}
}

// sessionOptions returns the evaluator settings derived from the
// configuration, writing to the App's streams.
func (a *App) sessionOptions() shell.Options {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	return shell.Options{
		Stdout:            a.stdout,
		Stderr:            a.stderr,
		Logger:            a.logger,
		InteractivePolicy: shell.FailurePolicy(a.cfg.Shell.OnError),
		ScriptPolicy:      shell.FailurePolicy(a.cfg.Script.OnError),
		ScriptExtension:   a.cfg.Script.Extension.String(),
		MaxDepth:          a.cfg.Script.MaxDepth,
		WorkDir:           wd,
		MarkdownStyle:     a.cfg.Shell.MarkdownStyle,
		HistoryLimit:      a.cfg.Shell.HistoryLimit,
	}
}

// settle turns the outcome of an evaluation into the process status.
// Failures were already reported by the evaluator, so only unexpected
// errors are returned.
func (a *App) settle(err error) error {
	var (
		exit    *shell.ExitRequest
		evalErr *shell.EvalError
		input   *shell.UserInputError
	)
	switch {
	case err == nil:
		a.exitCode = 0
	case errors.As(err, &exit):
		a.exitCode = exit.Code
	case errors.As(err, &evalErr):
		a.exitCode = 1
	case errors.As(err, &input):
		a.exitCode = 1
		fmt.Fprintln(a.stderr, ErrorStyle.Render("Error:")+" "+input.Error())
	case errors.Is(err, context.Canceled):
		a.exitCode = 130
	default:
		return &ExitError{Code: 1, Err: err}
	}
	return nil
}
