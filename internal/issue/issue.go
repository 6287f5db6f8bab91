// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

const (
	ConfigLoadFailedId Id = iota + 1
	ScriptNotFoundId
	RecursionLimitId
	CommandNotFoundId
	InvalidAliasId
	ServerStartFailedId
	WatchFailedId
)

type (
	// Id identifies a troubleshooting page.
	Id int

	// MarkdownMsg is the markdown body of an Issue.
	MarkdownMsg string

	// Issue is a troubleshooting page shown after a CLI-level failure.
	Issue struct {
		id    Id
		mdMsg MarkdownMsg
	}
)

// Id returns the issue identifier.
func (i *Issue) Id() Id { return i.id }

// MarkdownMsg returns the raw markdown.
func (i *Issue) MarkdownMsg() MarkdownMsg { return i.mdMsg }

// Render renders the page with the glamour style path (e.g. "auto", "dark").
func (i *Issue) Render(stylePath string) (string, error) {
	return render(strings.TrimSpace(string(i.mdMsg)), stylePath)
}

var (
	render = glamour.Render

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Configuration could not be loaded

zensh read your configuration file but it does not match the expected schema.

## Things you can try
- Print the effective configuration:
~~~
$ zensh config show
~~~
- Write a fresh default file and compare:
~~~
$ zensh config init
~~~
- Check that ` + "`script.on_error`" + ` and ` + "`shell.on_error`" + ` are "continue" or "abort"`,
	}

	scriptNotFoundIssue = &Issue{
		id: ScriptNotFoundId,
		mdMsg: `
# Script not found

Only regular files ending in ` + "`.zensh`" + ` (or the extension configured under
` + "`script.extension`" + `) can be executed.

## Things you can try
- Check the path; relative paths resolve against the shell's working directory
- Use ` + "`pwd`" + ` and ` + "`cd`" + ` inside the shell to move around`,
	}

	recursionLimitIssue = &Issue{
		id: RecursionLimitId,
		mdMsg: `
# Script recursion limit reached

A script kept executing scripts (possibly itself) past ` + "`script.max_depth`" + `.

## Things you can try
- Look for a script that runs ` + "`exec`" + ` on itself without a stop condition
- Raise the ceiling if the nesting is intentional:
~~~cue
script: max_depth: 1000
~~~`,
	}

	commandNotFoundIssue = &Issue{
		id: CommandNotFoundId,
		mdMsg: `
# Command not found

## Things you can try
- List every command and alias:
~~~
$ zensh commands
~~~
- Inside the shell, run ` + "`help`" + ` or ` + "`help <name>`",
	}

	invalidAliasIssue = &Issue{
		id: InvalidAliasId,
		mdMsg: `
# Alias was not registered

An alias must not reuse an existing alias or command name, and it must point
at a command (never at another alias).

## Things you can try
- Point the alias at the command's full name (e.g. ` + "`i_lua`" + ` rather than ` + "`lua`" + `)
- Rename the alias`,
	}

	serverStartFailedIssue = &Issue{
		id: ServerStartFailedId,
		mdMsg: `
# SSH server failed to start

## Things you can try
- Another process may own the port; pick a different one:
~~~
$ zensh serve --port 2223
~~~
- Use port 0 to let the system choose a free port`,
	}

	watchFailedIssue = &Issue{
		id: WatchFailedId,
		mdMsg: `
# Watcher failed

The file watcher stopped because the operating system refused to watch more
files or a watched directory vanished.

## Things you can try
- Narrow the patterns passed with ` + "`--pattern`" + `
- On Linux, raise ` + "`fs.inotify.max_user_watches`",
	}

	issues = map[Id]*Issue{
		configLoadFailedIssue.Id():  configLoadFailedIssue,
		scriptNotFoundIssue.Id():    scriptNotFoundIssue,
		recursionLimitIssue.Id():    recursionLimitIssue,
		commandNotFoundIssue.Id():   commandNotFoundIssue,
		invalidAliasIssue.Id():      invalidAliasIssue,
		serverStartFailedIssue.Id(): serverStartFailedIssue,
		watchFailedIssue.Id():       watchFailedIssue,
	}
)

// Values returns every issue ordered by Id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}

// Get returns the issue for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
