// SPDX-License-Identifier: MPL-2.0

package builtins

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/zensh/zensh/pkg/shell"
)

// ExitStatusError reports a non-zero exit status of a shell program or host
// process.
type ExitStatusError struct {
	Status int
}

func (e *ExitStatusError) Error() string {
	return fmt.Sprintf("exit status %d", e.Status)
}

func newShCommand() shell.Command {
	return shell.NewCommand(shell.Definition{
		Name:        "sh",
		Description: "Run a POSIX shell program in the built-in interpreter",
		Help: "Runs the arguments as a POSIX shell program without spawning a system shell. A single argument is " +
			"used verbatim, so quote it to keep pipes and redirections together: `sh \"ls | wc -l\"`. Several " +
			"arguments are joined with spaces. The program runs in the session directory.",
		Params: "<program...>",
		Arity:  shell.Variadic,
		Run:    runSh,
	})
}

func runSh(ctx context.Context, inv *shell.Invocation) error {
	if len(inv.Args) == 0 {
		return shell.NewUserInputError(shell.InputArityMismatch, inv.Name, "expected a shell program")
	}
	src := strings.Join(inv.Args, " ")

	prog, err := syntax.NewParser().Parse(strings.NewReader(src), inv.Name)
	if err != nil {
		return shell.NewUserInputError(shell.InputBadArgument, inv.Name, "%v", err)
	}

	runner, err := interp.New(
		interp.StdIO(nil, inv.Stdout, inv.Stderr),
		interp.Env(expand.ListEnviron(os.Environ()...)),
		interp.Dir(inv.Eval.WorkDir()),
	)
	if err != nil {
		return fmt.Errorf("create interpreter: %w", err)
	}

	if err := runner.Run(ctx, prog); err != nil {
		var status interp.ExitStatus
		if errors.As(err, &status) {
			return &ExitStatusError{Status: int(status)}
		}
		return err
	}
	return nil
}
