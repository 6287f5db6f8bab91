// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// InputEmptyStatement is a blank statement between delimiters.
	InputEmptyStatement InputErrorKind = iota + 1
	// InputUnknownCommand is a name that resolves to no command.
	InputUnknownCommand
	// InputArityMismatch is a call with the wrong number of arguments.
	InputArityMismatch
	// InputBadArgument is an argument a command could not interpret.
	InputBadArgument
	// InputBadScript is a script path that is missing, not a file, has the
	// wrong extension, is not UTF-8 or has no content.
	InputBadScript
)

var (
	// ErrUserInput is the sentinel wrapped by UserInputError.
	ErrUserInput = errors.New("invalid input")
	// ErrDuplicateCommand is returned when a name is already registered.
	ErrDuplicateCommand = errors.New("command already registered")
	// ErrAliasExists is returned when an alias name is already taken.
	ErrAliasExists = errors.New("alias already exists")
	// ErrUnknownCommand is returned when an alias targets a missing command.
	ErrUnknownCommand = errors.New("command not found")
	// ErrUnknownCategory is the panic value cause for a missing category.
	ErrUnknownCategory = errors.New("category does not exist")
	// ErrEmptyName is returned when registering a command or alias without a name.
	ErrEmptyName = errors.New("empty name")
	// ErrRecursionLimit is the sentinel wrapped by ResourceLimitError.
	ErrRecursionLimit = errors.New("max recursion depth exceeded")
	// ErrNotUndoable is returned by commands without reversible effects.
	ErrNotUndoable = errors.New("command cannot be undone")
	// ErrNothingToUndo is returned when the undo history is empty.
	ErrNothingToUndo = errors.New("nothing to undo")
	// ErrNothingToRedo is returned when the redo history is empty.
	ErrNothingToRedo = errors.New("nothing to redo")
)

type (
	// InputErrorKind classifies a UserInputError.
	InputErrorKind int

	// UserInputError is a reportable, non-fatal mistake in user input.
	// Evaluation always continues with the next statement.
	UserInputError struct {
		Kind   InputErrorKind
		Name   string
		Detail string
	}

	// ConfigurationError is a registration-time problem.
	ConfigurationError struct {
		Op     string
		Name   string
		Target string
		Err    error
	}

	// ResourceLimitError reports a script invocation refused at the depth ceiling.
	ResourceLimitError struct {
		Limit int
		Path  string
	}

	// CommandError attaches the triggering command name to a command failure.
	CommandError struct {
		Name string
		Err  error
	}

	// EvalError summarises the statement failures of one evaluation. Every
	// failure it holds has already been reported to the session.
	EvalError struct {
		Failures []error
		Aborted  bool
	}

	// ExitRequest asks the shell loop to stop with Code.
	ExitRequest struct {
		Code int
	}
)

// String returns a short label for the kind.
func (k InputErrorKind) String() string {
	switch k {
	case InputEmptyStatement:
		return "empty statement"
	case InputUnknownCommand:
		return "unknown command"
	case InputArityMismatch:
		return "arity mismatch"
	case InputBadArgument:
		return "bad argument"
	case InputBadScript:
		return "bad script"
	default:
		return "invalid input"
	}
}

// NewUserInputError builds a UserInputError with a formatted detail.
func NewUserInputError(kind InputErrorKind, name, format string, args ...any) *UserInputError {
	return &UserInputError{Kind: kind, Name: name, Detail: fmt.Sprintf(format, args...)}
}

func (e *UserInputError) Error() string {
	if e.Name == "" {
		return e.Detail
	}
	return e.Name + ": " + e.Detail
}

// Unwrap returns ErrUserInput for errors.Is() compatibility.
func (e *UserInputError) Unwrap() error { return ErrUserInput }

func (e *ConfigurationError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("%s %q -> %q: %v", e.Op, e.Name, e.Target, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Op, e.Name, e.Err)
}

// Unwrap returns the underlying sentinel.
func (e *ConfigurationError) Unwrap() error { return e.Err }

func (e *ResourceLimitError) Error() string {
	return fmt.Sprintf("max recursion depth (%d) exceeded running %q", e.Limit, e.Path)
}

// Unwrap returns ErrRecursionLimit for errors.Is() compatibility.
func (e *ResourceLimitError) Unwrap() error { return ErrRecursionLimit }

func (e *CommandError) Error() string {
	return e.Name + ": " + e.Err.Error()
}

// Unwrap returns the command's own error.
func (e *CommandError) Unwrap() error { return e.Err }

func (e *EvalError) Error() string {
	msgs := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		msgs = append(msgs, f.Error())
	}
	verb := "failed"
	if e.Aborted {
		verb = "aborted"
	}
	return fmt.Sprintf("evaluation %s (%d failing statement(s)): %s", verb, len(e.Failures), strings.Join(msgs, "; "))
}

// Unwrap exposes the individual failures to errors.Is/As.
func (e *EvalError) Unwrap() []error { return e.Failures }

func (e *ExitRequest) Error() string {
	return fmt.Sprintf("exit requested (code %d)", e.Code)
}

// IsUserInput reports whether err is a non-fatal user input error.
func IsUserInput(err error) bool {
	var uie *UserInputError
	return errors.As(err, &uie)
}
