// SPDX-License-Identifier: MPL-2.0

package coreutils

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/u-root/u-root/pkg/core"

	"github.com/zensh/zensh/pkg/shell"
)

type (
	// Flag describes a flag understood by a utility.
	Flag struct {
		// Name is the flag name without dashes.
		Name string
		// Description explains what the flag does.
		Description string
		// TakesValue indicates the flag consumes the next argument.
		TakesValue bool
	}

	// Utility is a u-root core command exposed as a shell command. It runs
	// in the session directory and writes to the session streams.
	Utility struct {
		shell.Base

		name        string
		description string
		params      string
		flags       []Flag
		newCore     func() core.Command
	}
)

// Name returns the bare utility name, e.g. "ls".
func (u *Utility) Name() string { return u.name }

// Description returns the one-line summary.
func (u *Utility) Description() string { return u.description }

// Params describes the positional arguments.
func (u *Utility) Params() string { return u.params }

// Arity is Variadic: the utility parses its own flags and arguments.
func (u *Utility) Arity() shell.Arity { return shell.Variadic }

// Flags returns the flags the utility understands.
func (u *Utility) Flags() []Flag { return u.flags }

// Help lists the supported flags.
func (u *Utility) Help() string {
	var b strings.Builder
	b.WriteString(u.description)
	b.WriteString(". Relative paths resolve against the session directory.")
	if len(u.flags) == 0 {
		return b.String()
	}
	b.WriteString("\n\nFlags:\n\n")
	for _, f := range u.flags {
		arg := ""
		if f.TakesValue {
			arg = " VALUE"
		}
		fmt.Fprintf(&b, "- `-%s%s`: %s\n", f.Name, arg, f.Description)
	}
	return b.String()
}

// Execute runs the utility with the invocation arguments. Standard input is
// always empty; the shell has no pipes.
func (u *Utility) Execute(ctx context.Context, inv *shell.Invocation) error {
	cmd := u.newCore()
	cmd.SetIO(strings.NewReader(""), inv.Stdout, inv.Stderr)
	cmd.SetWorkingDir(inv.Eval.WorkDir())
	cmd.SetLookupEnv(os.LookupEnv)

	return cmd.RunContext(ctx, inv.Args...)
}
