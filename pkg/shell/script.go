// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

const (
	// ScriptIdle is the state before a script invocation starts.
	ScriptIdle ScriptState = iota
	// ScriptValidating checks the path and extension.
	ScriptValidating
	// ScriptReading loads the file content.
	ScriptReading
	// ScriptEvaluating feeds the content to the evaluator.
	ScriptEvaluating
	// ScriptComplete is the terminal state of every accepted or rejected script.
	ScriptComplete
	// ScriptRecursionLimit is the terminal state of an invocation refused at
	// the depth ceiling.
	ScriptRecursionLimit
)

// ScriptState is the lifecycle of one script invocation.
type ScriptState int

func (s ScriptState) String() string {
	switch s {
	case ScriptIdle:
		return "idle"
	case ScriptValidating:
		return "validating"
	case ScriptReading:
		return "reading"
	case ScriptEvaluating:
		return "evaluating"
	case ScriptComplete:
		return "complete"
	case ScriptRecursionLimit:
		return "recursion-limit"
	default:
		return "unknown"
	}
}

// ScriptExtension returns the recognized script suffix, without the dot.
func (e *Evaluator) ScriptExtension() string { return e.opts.ScriptExtension }

// MaxDepth returns the recursion ceiling.
func (e *Evaluator) MaxDepth() int { return e.opts.MaxDepth }

// ResolvePath makes path absolute against the session working directory.
func (e *Evaluator) ResolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(e.WorkDir(), path)
}

// RunScript evaluates a script file one nesting level below ctx.
//
// The depth ceiling is checked before anything else. A bad path, a wrong
// extension, unreadable or non UTF-8 bytes and blank content are reported
// as *UserInputError. The content is then evaluated under the script failure
// policy, so a nested failure returns the *EvalError of that evaluation.
func (e *Evaluator) RunScript(ctx context.Context, path string) error {
	state := ScriptIdle
	logger := e.logger.With("script", path, "depth", DepthFrom(ctx))
	transition := func(next ScriptState) {
		logger.Debug("script state", "from", state, "to", next)
		state = next
	}

	child, err := e.enter(ctx, path)
	if err != nil {
		transition(ScriptRecursionLimit)
		return err
	}

	transition(ScriptValidating)
	if strings.TrimSpace(path) == "" {
		transition(ScriptComplete)
		return NewUserInputError(InputBadScript, "exec", "no script path given")
	}
	if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext != e.opts.ScriptExtension {
		transition(ScriptComplete)
		return NewUserInputError(InputBadScript, "exec", "%q is not a .%s script", path, e.opts.ScriptExtension)
	}
	full := e.ResolvePath(path)
	info, err := os.Stat(full)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		transition(ScriptComplete)
		return NewUserInputError(InputBadScript, "exec", "script %q does not exist", path)
	case err != nil:
		transition(ScriptComplete)
		return NewUserInputError(InputBadScript, "exec", "cannot access %q: %v", path, err)
	case !info.Mode().IsRegular():
		transition(ScriptComplete)
		return NewUserInputError(InputBadScript, "exec", "%q is not a regular file", path)
	}

	transition(ScriptReading)
	data, err := os.ReadFile(full)
	if err != nil {
		transition(ScriptComplete)
		return NewUserInputError(InputBadScript, "exec", "cannot read %q: %v", path, err)
	}
	if !utf8.Valid(data) {
		transition(ScriptComplete)
		return NewUserInputError(InputBadScript, "exec", "%q is not valid UTF-8 text", path)
	}
	content := strings.TrimSpace(string(data))
	if content == "" {
		transition(ScriptComplete)
		return NewUserInputError(InputBadScript, "exec", "script %q is empty", path)
	}

	transition(ScriptEvaluating)
	err = e.Eval(child, content, e.opts.ScriptPolicy)
	transition(ScriptComplete)
	return err
}

// RunInline evaluates body as if it were the content of a script named
// name: one nesting level deeper, under the script failure policy.
func (e *Evaluator) RunInline(ctx context.Context, name, body string) error {
	child, err := e.enter(ctx, name)
	if err != nil {
		return err
	}
	return e.Eval(child, body, e.opts.ScriptPolicy)
}
