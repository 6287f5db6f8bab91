// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"context"
	"fmt"
	"io"
)

// Variadic marks a command that validates its own argument count.
const Variadic Arity = -1

type (
	// Arity is the exact number of arguments a command accepts, or Variadic.
	Arity int

	// Command is the capability every shell command implements. Built-ins,
	// user macros and externally supplied commands all register through it,
	// so the evaluator never depends on concrete implementations.
	Command interface {
		// Name returns the command name before case normalization and
		// category prefixing.
		Name() string

		// Description is the one-line summary shown by the help listing.
		Description() string

		// Help returns the long-form help text.
		Help() string

		// Params describes the accepted parameters.
		Params() string

		// Arity returns the declared argument count.
		Arity() Arity

		// Execute runs the command. Returning a *UserInputError marks the
		// failure as a reportable user mistake rather than a command failure.
		Execute(ctx context.Context, inv *Invocation) error

		// Undo reverts the effects of a previous Execute recorded in inv.
		Undo(ctx context.Context, inv *Invocation) error

		// Redo re-applies an invocation reverted by Undo.
		Redo(ctx context.Context, inv *Invocation) error
	}

	// Reversible is implemented by commands whose invocations belong in the
	// undo history. Commands that do not implement it, or return false, are
	// never recorded.
	Reversible interface {
		Reversible() bool
	}

	// Invocation carries one call of a command.
	Invocation struct {
		// Name is the registry key the statement resolved to.
		Name string
		// Args are the tokens after the command name. Nil when a zero-arity
		// command was called with arguments (they are ignored).
		Args []string
		// Eval is the evaluator running the statement.
		Eval *Evaluator
		// Stdout and Stderr are the session's output streams.
		Stdout io.Writer
		Stderr io.Writer
		// State is owned by the command: Execute may store whatever Undo and
		// Redo need later.
		State any
	}

	// ExecFunc is the behavior of a command built from a Definition.
	ExecFunc func(ctx context.Context, inv *Invocation) error

	// Definition describes a command assembled from plain values.
	Definition struct {
		Name        string
		Description string
		Help        string
		Params      string
		Arity       Arity
		Run         ExecFunc
	}

	// Base provides no-op undo/redo for commands without reversible effects.
	Base struct{}

	funcCommand struct {
		Base
		def Definition
	}
)

// String renders the arity the way the help listing shows it.
func (a Arity) String() string {
	switch {
	case a == Variadic:
		return "any args"
	case a == 0:
		return "no args"
	case a == 1:
		return "1 arg"
	default:
		return fmt.Sprintf("%d args", int(a))
	}
}

// Undo reports that the command cannot be undone.
func (Base) Undo(context.Context, *Invocation) error { return ErrNotUndoable }

// Redo reports that the command cannot be redone.
func (Base) Redo(context.Context, *Invocation) error { return ErrNotUndoable }

// NewCommand builds a Command from a Definition. A nil Run is a no-op.
func NewCommand(def Definition) Command {
	return &funcCommand{def: def}
}

func (c *funcCommand) Name() string { return c.def.Name }

func (c *funcCommand) Description() string {
	if c.def.Description == "" {
		return "No description available"
	}
	return c.def.Description
}

func (c *funcCommand) Help() string {
	if c.def.Help == "" {
		return c.Description()
	}
	return c.def.Help
}

func (c *funcCommand) Params() string {
	if c.def.Params == "" {
		if c.def.Arity == 0 {
			return "No parameters required."
		}
		return c.def.Arity.String()
	}
	return c.def.Params
}

func (c *funcCommand) Arity() Arity { return c.def.Arity }

func (c *funcCommand) Execute(ctx context.Context, inv *Invocation) error {
	if c.def.Run == nil {
		return nil
	}
	return c.def.Run(ctx, inv)
}

// Printf writes formatted output to the invocation's stdout.
func (inv *Invocation) Printf(format string, args ...any) {
	fmt.Fprintf(inv.Stdout, format, args...)
}

// Println writes a line to the invocation's stdout.
func (inv *Invocation) Println(args ...any) {
	fmt.Fprintln(inv.Stdout, args...)
}
