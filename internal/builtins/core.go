// SPDX-License-Identifier: MPL-2.0

package builtins

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/zensh/zensh/pkg/shell"
)

// clearSequence homes the cursor and erases the display.
const clearSequence = "\x1b[H\x1b[2J"

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED"))

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#06B6D4"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))
)

func coreCommands() []shell.Command {
	return []shell.Command{
		shell.NewCommand(shell.Definition{
			Name:        "help",
			Description: "List the available commands, or describe one",
			Help:        "Without arguments, prints every registered command with its aliases and arity. With a command name or alias, prints the detailed help of that command.",
			Params:      "[command]",
			Arity:       shell.Variadic,
			Run:         runHelp,
		}),
		shell.NewCommand(shell.Definition{
			Name:        "clear",
			Description: "Clear the terminal screen",
			Arity:       0,
			Run:         runClear,
		}),
		shell.NewCommand(shell.Definition{
			Name:        "exit",
			Description: "Leave the shell with an optional exit code",
			Help:        "Stops the shell loop. The exit code defaults to 0.",
			Params:      "[code]",
			Arity:       shell.Variadic,
			Run:         runExit,
		}),
		shell.NewCommand(shell.Definition{
			Name:        "echo",
			Description: "Print the arguments separated by spaces",
			Params:      "[text...]",
			Arity:       shell.Variadic,
			Run: func(_ context.Context, inv *shell.Invocation) error {
				inv.Println(strings.Join(inv.Args, " "))
				return nil
			},
		}),
		shell.NewCommand(shell.Definition{
			Name:        "exec",
			Description: "Run a script file",
			Help:        "Evaluates every statement of a script file. Relative paths resolve against the session directory. Scripts may run other scripts up to the configured nesting depth.",
			Params:      "<path>",
			Arity:       1,
			Run: func(ctx context.Context, inv *shell.Invocation) error {
				return inv.Eval.RunScript(ctx, inv.Args[0])
			},
		}),
		shell.NewCommand(shell.Definition{
			Name:        "hello",
			Description: "Print a greeting",
			Arity:       0,
			Run: func(_ context.Context, inv *shell.Invocation) error {
				inv.Println("Hello, World!")
				return nil
			},
		}),
	}
}

func runHelp(_ context.Context, inv *shell.Invocation) error {
	switch len(inv.Args) {
	case 0:
		writeListing(inv)
		return nil
	case 1:
		return writeCommandHelp(inv, inv.Args[0])
	default:
		return shell.NewUserInputError(shell.InputArityMismatch, inv.Name, "expected at most 1 argument but received %d", len(inv.Args))
	}
}

// writeListing prints uncategorized commands first, then one block per
// category, each in registration order.
func writeListing(inv *shell.Invocation) {
	reg := inv.Eval.Registry()

	var (
		plain      []shell.Entry
		byCategory = map[string][]shell.Entry{}
		categories []string
	)
	for entry := range reg.All() {
		if entry.Category == "" {
			plain = append(plain, entry)
			continue
		}
		if _, seen := byCategory[entry.Category]; !seen {
			categories = append(categories, entry.Category)
		}
		byCategory[entry.Category] = append(byCategory[entry.Category], entry)
	}

	inv.Println(headerStyle.Render("Commands:"))
	writeEntries(inv, reg, plain)
	for _, name := range categories {
		header := name
		if cat, ok := reg.Category(name); ok && cat.Description != "" {
			header = fmt.Sprintf("%s (%s)", name, cat.Description)
		}
		inv.Println()
		inv.Println(headerStyle.Render(header + ":"))
		writeEntries(inv, reg, byCategory[name])
	}
}

func writeEntries(inv *shell.Invocation, reg *shell.Registry, entries []shell.Entry) {
	width := 0
	for _, e := range entries {
		width = max(width, len(e.Key))
	}
	for _, e := range entries {
		line := "  " + keyStyle.Render(fmt.Sprintf("%-*s", width, e.Key)) + "  " + e.Command.Description()
		if aliases := reg.AliasesFor(e.Key); len(aliases) > 0 {
			line += mutedStyle.Render(" (aliases: " + strings.Join(aliases, ", ") + ")")
		}
		inv.Println(line)
	}
}

func writeCommandHelp(inv *shell.Invocation, name string) error {
	reg := inv.Eval.Registry()
	cmd, key, ok := reg.Lookup(name)
	if !ok {
		if suggestion, found := reg.Suggest(name); found {
			return shell.NewUserInputError(shell.InputUnknownCommand, inv.Name, "no help for %q, did you mean %q?", name, suggestion)
		}
		return shell.NewUserInputError(shell.InputUnknownCommand, inv.Name, "no help for %q", name)
	}

	var md strings.Builder
	fmt.Fprintf(&md, "# %s\n\n%s\n\n", key, cmd.Description())
	if help := cmd.Help(); help != cmd.Description() {
		fmt.Fprintf(&md, "%s\n\n", help)
	}
	fmt.Fprintf(&md, "## Usage\n\n`%s %s`\n\n", key, cmd.Params())
	fmt.Fprintf(&md, "- Arity: %s\n", cmd.Arity())
	if aliases := reg.AliasesFor(key); len(aliases) > 0 {
		fmt.Fprintf(&md, "- Aliases: %s\n", strings.Join(aliases, ", "))
	}

	out, err := glamour.Render(md.String(), inv.Eval.MarkdownStyle())
	if err != nil {
		inv.Eval.Logger().Debug("markdown rendering failed, printing raw help", "error", err)
		out = md.String()
	}
	inv.Printf("%s", out)
	return nil
}

// runClear spawns the platform's clear command when the session writes to
// the process terminal, and emits the ANSI sequence otherwise.
func runClear(ctx context.Context, inv *shell.Invocation) error {
	if inv.Stdout == os.Stdout && term.IsTerminal(int(os.Stdout.Fd())) {
		var cmd *exec.Cmd
		if runtime.GOOS == "windows" {
			cmd = exec.CommandContext(ctx, "cmd", "/c", "cls")
		} else {
			cmd = exec.CommandContext(ctx, "clear")
		}
		cmd.Stdout = os.Stdout
		if err := cmd.Run(); err == nil {
			return nil
		}
	}
	inv.Printf("%s", clearSequence)
	return nil
}

func runExit(_ context.Context, inv *shell.Invocation) error {
	code := 0
	switch len(inv.Args) {
	case 0:
	case 1:
		n, err := strconv.Atoi(inv.Args[0])
		if err != nil {
			return shell.NewUserInputError(shell.InputBadArgument, inv.Name, "exit code %q is not an integer", inv.Args[0])
		}
		code = n
	default:
		return shell.NewUserInputError(shell.InputArityMismatch, inv.Name, "expected at most 1 argument but received %d", len(inv.Args))
	}
	inv.Println("Exiting...")
	return &shell.ExitRequest{Code: code}
}
