// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

const (
	// ContinueOnError reports a failing statement and moves on to the next.
	ContinueOnError FailurePolicy = "continue"
	// AbortOnError stops evaluating the input at the first failing statement.
	AbortOnError FailurePolicy = "abort"

	// DefaultScriptExtension is the suffix, without dot, a script must carry.
	DefaultScriptExtension = "zensh"
	// DefaultMaxDepth is the nesting ceiling for scripts and macros.
	DefaultMaxDepth = 500
)

// ErrInvalidFailurePolicy is returned when a FailurePolicy value is not recognized.
var ErrInvalidFailurePolicy = errors.New("invalid failure policy")

type (
	// FailurePolicy decides what a failing statement does to the rest of
	// its input. User input errors never count as failures.
	FailurePolicy string

	// LineSource supplies raw lines to the shell loop. Next returns io.EOF
	// when the front end has no more input.
	LineSource interface {
		Next(ctx context.Context) (string, error)
	}

	// Options configures an Evaluator. Zero values select the defaults.
	Options struct {
		Stdout io.Writer
		Stderr io.Writer
		Logger *log.Logger
		// Lines lets blocking sub-sessions (such as an embedded interpreter)
		// read further input from the same front end. May be nil.
		Lines LineSource
		// InteractivePolicy applies to Execute. Default ContinueOnError.
		InteractivePolicy FailurePolicy
		// ScriptPolicy applies to script and macro content. Default AbortOnError.
		ScriptPolicy FailurePolicy
		// ScriptExtension is the recognized script suffix without the dot.
		ScriptExtension string
		// MaxDepth is the recursion ceiling. Default DefaultMaxDepth.
		MaxDepth int
		// WorkDir is the initial session directory. Default: process cwd.
		WorkDir string
		// MarkdownStyle is the glamour style used for rich help output.
		MarkdownStyle string
		// HistoryLimit bounds the undo history.
		HistoryLimit int
	}

	// Evaluator dispatches statements against a shared Registry for one
	// session. Sessions are cheap; create one per front end. The registry is
	// shared, everything else is session state.
	Evaluator struct {
		registry *Registry
		opts     Options
		logger   *log.Logger
		history  *history

		mu      sync.RWMutex
		workDir string
	}
)

// ParseFailurePolicy validates a policy name. The empty string yields def.
func ParseFailurePolicy(s string, def FailurePolicy) (FailurePolicy, error) {
	switch p := FailurePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return def, nil
	case ContinueOnError, AbortOnError:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q (expected %q or %q)", ErrInvalidFailurePolicy, s, ContinueOnError, AbortOnError)
	}
}

// NewEvaluator creates a session evaluator over reg.
func NewEvaluator(reg *Registry, opts Options) *Evaluator {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.InteractivePolicy == "" {
		opts.InteractivePolicy = ContinueOnError
	}
	if opts.ScriptPolicy == "" {
		opts.ScriptPolicy = AbortOnError
	}
	opts.ScriptExtension = strings.TrimPrefix(opts.ScriptExtension, ".")
	if opts.ScriptExtension == "" {
		opts.ScriptExtension = DefaultScriptExtension
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.MarkdownStyle == "" {
		opts.MarkdownStyle = "notty"
	}
	workDir := opts.WorkDir
	if workDir == "" {
		if wd, err := os.Getwd(); err == nil {
			workDir = wd
		}
	}

	return &Evaluator{
		registry: reg,
		opts:     opts,
		logger:   opts.Logger.WithPrefix("eval"),
		history:  newHistory(opts.HistoryLimit),
		workDir:  workDir,
	}
}

// Registry returns the shared command registry.
func (e *Evaluator) Registry() *Registry { return e.registry }

// Logger returns the process logger the evaluator was built with.
func (e *Evaluator) Logger() *log.Logger { return e.opts.Logger }

// Lines returns the front end line source, or nil.
func (e *Evaluator) Lines() LineSource { return e.opts.Lines }

// Stdout returns the session's output stream.
func (e *Evaluator) Stdout() io.Writer { return e.opts.Stdout }

// Stderr returns the session's diagnostic stream.
func (e *Evaluator) Stderr() io.Writer { return e.opts.Stderr }

// MarkdownStyle returns the configured glamour style.
func (e *Evaluator) MarkdownStyle() string { return e.opts.MarkdownStyle }

// ScriptPolicy returns the failure policy applied to script content.
func (e *Evaluator) ScriptPolicy() FailurePolicy { return e.opts.ScriptPolicy }

// WorkDir returns the session working directory.
func (e *Evaluator) WorkDir() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.workDir
}

// SetWorkDir changes the session working directory.
func (e *Evaluator) SetWorkDir(dir string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.workDir = dir
}

// Execute evaluates interactive input under the interactive failure policy.
func (e *Evaluator) Execute(ctx context.Context, input string) error {
	return e.Eval(ctx, input, e.opts.InteractivePolicy)
}

// Eval evaluates raw input: statements separated by ';' or newlines, each
// tokenized and dispatched in order.
//
// Blank input is a no-op. Diagnostics for every problem are written to the
// session's stderr as they happen. The returned error is nil when no
// statement failed, an *ExitRequest when a statement asked to exit, or an
// *EvalError describing the (already reported) failures.
func (e *Evaluator) Eval(ctx context.Context, input string, policy FailurePolicy) error {
	if strings.TrimSpace(input) == "" {
		return nil
	}

	var failures []error
	for _, stmt := range SplitStatements(input) {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := e.evalStatement(ctx, stmt)
		if err == nil {
			continue
		}

		var exit *ExitRequest
		if errors.As(err, &exit) {
			return exit
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		failures = append(failures, err)
		if policy == AbortOnError {
			return &EvalError{Failures: failures, Aborted: true}
		}
	}

	if len(failures) > 0 {
		return &EvalError{Failures: failures}
	}
	return nil
}

// evalStatement runs one statement. User input errors are reported and
// swallowed; the returned error is a statement failure or an exit request.
func (e *Evaluator) evalStatement(ctx context.Context, stmt string) error {
	stmt = strings.TrimSpace(stmt)
	if stmt == "" {
		e.notice("empty statement, skipping")
		return nil
	}

	tokens := Tokenize(stmt)
	if len(tokens) == 0 {
		e.notice("empty statement, skipping")
		return nil
	}
	name, args := tokens[0], tokens[1:]

	cmd, key, ok := e.registry.Lookup(name)
	if !ok {
		e.reportNotFound(name)
		return nil
	}
	if key != Normalize(name) {
		e.logger.Debug("resolved alias", "alias", Normalize(name), "command", key)
	}

	arity := cmd.Arity()
	switch {
	case arity == Variadic:
	case arity == 0 && len(args) > 0:
		e.diagnose("%s: expected no arguments but %d were given, ignoring them", key, len(args))
		args = nil
	case len(args) != int(arity):
		e.diagnose("%s: expected %d argument(s) but received %d", key, int(arity), len(args))
		return nil
	}

	if len(args) == 0 {
		args = nil
	}
	inv := &Invocation{
		Name:   key,
		Args:   args,
		Eval:   e,
		Stdout: e.opts.Stdout,
		Stderr: e.opts.Stderr,
	}

	err := cmd.Execute(ctx, inv)
	if err == nil {
		if isReversible(cmd) {
			e.history.push(cmd, inv)
		}
		return nil
	}
	return e.classify(key, err)
}

// classify reports a command's error the way its kind requires and returns
// what the statement loop should see.
func (e *Evaluator) classify(name string, err error) error {
	var (
		exit    *ExitRequest
		evalErr *EvalError
		limit   *ResourceLimitError
		input   *UserInputError
	)
	switch {
	case errors.As(err, &exit):
		return exit
	case errors.As(err, &evalErr):
		// Nested evaluation already reported its own failures.
		return err
	case errors.As(err, &limit):
		e.diagnose("%s: %v", name, limit)
		return &CommandError{Name: name, Err: err}
	case errors.As(err, &input):
		e.diagnose("%v", input)
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		e.diagnose("%s: %v", name, err)
		return &CommandError{Name: name, Err: err}
	}
}

func (e *Evaluator) reportNotFound(name string) {
	fmt.Fprintln(e.opts.Stderr, diagnosticStyle.Render("command \"")+nameStyle.Render(name)+diagnosticStyle.Render("\" was not found"))
	if suggestion, ok := e.registry.Suggest(name); ok {
		fmt.Fprintln(e.opts.Stderr, diagnosticStyle.Render("did you mean \"")+suggestionStyle.Render(suggestion)+diagnosticStyle.Render("\"?"))
	}
}

func (e *Evaluator) diagnose(format string, args ...any) {
	fmt.Fprintln(e.opts.Stderr, diagnosticStyle.Render(fmt.Sprintf(format, args...)))
}

func (e *Evaluator) notice(msg string) {
	fmt.Fprintln(e.opts.Stderr, noticeStyle.Render(msg))
}
