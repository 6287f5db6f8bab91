// SPDX-License-Identifier: MPL-2.0

package builtins

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/zensh/zensh/pkg/shell"
)

type (
	// cdCommand changes the session directory and remembers where it came
	// from, so undo and redo can move between the two.
	cdCommand struct{}

	// cdState is the Invocation.State of a cd call.
	cdState struct {
		from string
		to   string
	}
)

func sessionCommands() []shell.Command {
	return []shell.Command{
		cdCommand{},
		shell.NewCommand(shell.Definition{
			Name:        "pwd",
			Description: "Print the session directory",
			Arity:       0,
			Run: func(_ context.Context, inv *shell.Invocation) error {
				inv.Println(inv.Eval.WorkDir())
				return nil
			},
		}),
		shell.NewCommand(shell.Definition{
			Name:        "undo",
			Description: "Revert the last reversible command of this session",
			Arity:       0,
			Run: func(ctx context.Context, inv *shell.Invocation) error {
				return historyStep(inv, inv.Eval.Undo(ctx))
			},
		}),
		shell.NewCommand(shell.Definition{
			Name:        "redo",
			Description: "Re-apply the last undone command",
			Arity:       0,
			Run: func(ctx context.Context, inv *shell.Invocation) error {
				return historyStep(inv, inv.Eval.Redo(ctx))
			},
		}),
		shell.NewCommand(shell.Definition{
			Name:        "loglevel",
			Description: "Change the log level (debug, info, warn, error)",
			Params:      "<level>",
			Arity:       1,
			Run:         runLogLevel,
		}),
	}
}

// historyStep turns an empty history into a user-facing notice.
func historyStep(inv *shell.Invocation, err error) error {
	if errors.Is(err, shell.ErrNothingToUndo) || errors.Is(err, shell.ErrNothingToRedo) {
		return shell.NewUserInputError(shell.InputBadArgument, inv.Name, "%v", err)
	}
	return err
}

func runLogLevel(_ context.Context, inv *shell.Invocation) error {
	level, err := log.ParseLevel(inv.Args[0])
	if err != nil {
		return shell.NewUserInputError(shell.InputBadArgument, inv.Name, "unknown level %q", inv.Args[0])
	}
	inv.Eval.Logger().SetLevel(level)
	inv.Printf("log level set to %s\n", level)
	return nil
}

func (cdCommand) Name() string        { return "cd" }
func (cdCommand) Description() string { return "Change the session directory" }
func (cdCommand) Params() string      { return "[dir]" }
func (cdCommand) Arity() shell.Arity  { return shell.Variadic }
func (cdCommand) Reversible() bool    { return true }

func (cdCommand) Help() string {
	return "Changes the directory used to resolve script paths and run host commands. Without an argument, changes to the home directory. The change can be reverted with undo."
}

func (cdCommand) Execute(_ context.Context, inv *shell.Invocation) error {
	var target string
	switch len(inv.Args) {
	case 0:
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		target = home
	case 1:
		target = inv.Eval.ResolvePath(inv.Args[0])
	default:
		return shell.NewUserInputError(shell.InputArityMismatch, inv.Name, "expected at most 1 argument but received %d", len(inv.Args))
	}

	target = filepath.Clean(target)
	info, err := os.Stat(target)
	if err != nil {
		return shell.NewUserInputError(shell.InputBadArgument, inv.Name, "%q does not exist", target)
	}
	if !info.IsDir() {
		return shell.NewUserInputError(shell.InputBadArgument, inv.Name, "%q is not a directory", target)
	}

	inv.State = cdState{from: inv.Eval.WorkDir(), to: target}
	inv.Eval.SetWorkDir(target)
	return nil
}

func (cdCommand) Undo(_ context.Context, inv *shell.Invocation) error {
	st, ok := inv.State.(cdState)
	if !ok {
		return shell.ErrNotUndoable
	}
	inv.Eval.SetWorkDir(st.from)
	inv.Println(st.from)
	return nil
}

func (cdCommand) Redo(_ context.Context, inv *shell.Invocation) error {
	st, ok := inv.State.(cdState)
	if !ok {
		return shell.ErrNotUndoable
	}
	inv.Eval.SetWorkDir(st.to)
	inv.Println(st.to)
	return nil
}
