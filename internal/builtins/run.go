// SPDX-License-Identifier: MPL-2.0

package builtins

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"

	"github.com/creack/pty"

	"github.com/zensh/zensh/pkg/shell"
)

// runWinsize is the terminal size reported to host processes.
var runWinsize = &pty.Winsize{Rows: 24, Cols: 80}

func newRunCommand() shell.Command {
	return shell.NewCommand(shell.Definition{
		Name:        "run",
		Description: "Run a host program on a pseudo-terminal",
		Help: "Starts the named program with the remaining arguments in the session directory. The program sees a " +
			"terminal for its output, so it keeps its colors and line buffering. Its input is empty: programs " +
			"that read input see end-of-file at once. Platforms without pseudo-terminals fall back to plain pipes.",
		Params: "<program> [args...]",
		Arity:  shell.Variadic,
		Run:    runHost,
	})
}

func runHost(ctx context.Context, inv *shell.Invocation) error {
	if len(inv.Args) == 0 {
		return shell.NewUserInputError(shell.InputArityMismatch, inv.Name, "expected a program to run")
	}
	path, err := exec.LookPath(inv.Args[0])
	if err != nil {
		return shell.NewUserInputError(shell.InputBadArgument, inv.Name, "program %q was not found", inv.Args[0])
	}

	// Stdin stays nil, so the program reads the null device: the session's
	// input belongs to the line editor and is never forwarded.
	cmd := exec.CommandContext(ctx, path, inv.Args[1:]...)
	cmd.Dir = inv.Eval.WorkDir()
	cmd.Env = os.Environ()

	ptmx, tty, err := pty.Open()
	if errors.Is(err, pty.ErrUnsupported) {
		inv.Eval.Logger().Debug("pseudo-terminals unsupported, using pipes", "program", path)
		cmd.Stdout = inv.Stdout
		cmd.Stderr = inv.Stderr
		return exitStatus(cmd.Run())
	}
	if err != nil {
		return err
	}
	defer ptmx.Close()
	if err := pty.Setsize(ptmx, runWinsize); err != nil {
		inv.Eval.Logger().Debug("cannot size pseudo-terminal", "error", err)
	}

	cmd.Stdout, cmd.Stderr = tty, tty
	err = cmd.Start()
	// The child holds its own copy; ours would keep the master readable.
	_ = tty.Close()
	if err != nil {
		return err
	}

	// Reading the master side fails with EIO once the child exits.
	_, _ = io.Copy(inv.Stdout, ptmx)
	return exitStatus(cmd.Wait())
}

func exitStatus(err error) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitStatusError{Status: exitErr.ExitCode()}
	}
	return err
}
