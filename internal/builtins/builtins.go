// SPDX-License-Identifier: MPL-2.0

package builtins

import (
	"errors"

	"github.com/zensh/zensh/pkg/shell"
)

const (
	// CategoryInterp groups the embedded interpreters.
	CategoryInterp = "interp"
	// CategoryHost groups commands that touch the host system.
	CategoryHost = "host"
	// CategoryUser groups macros defined in the configuration file.
	CategoryUser = "user"
)

// startupCategories is registered before any categorized command.
var startupCategories = []shell.Category{
	{UID: "i", Name: CategoryInterp, Description: "Embedded interpreters"},
	{UID: "h", Name: CategoryHost, Description: "Host processes"},
	{UID: "u", Name: CategoryUser, Description: "User macros from the configuration file"},
}

// startupAliases maps the well-known short names onto registry keys.
var startupAliases = [][2]string{
	{"list", "help"},
	{"?", "help"},
	{"cls", "clear"},
	{"quit", "exit"},
	{"source", "exec"},
	{"lua", "i_lua"},
	{"sh", "i_sh"},
	{"run", "h_run"},
}

// Install registers the built-in categories, commands and aliases into reg.
// Every failure is collected; a non-nil result means the built-in set is
// incomplete and startup should stop.
func Install(reg *shell.Registry) error {
	var errs []error

	for _, cat := range startupCategories {
		if err := reg.AddCategory(cat); err != nil {
			errs = append(errs, err)
		}
	}

	for _, cmd := range coreCommands() {
		if err := reg.Add(cmd); err != nil {
			errs = append(errs, err)
		}
	}
	for _, cmd := range sessionCommands() {
		if err := reg.Add(cmd); err != nil {
			errs = append(errs, err)
		}
	}

	categorized := []struct {
		cmd      shell.Command
		category string
	}{
		{newLuaCommand(), CategoryInterp},
		{newShCommand(), CategoryInterp},
		{newRunCommand(), CategoryHost},
	}
	for _, c := range categorized {
		if _, err := reg.AddWithCategory(c.cmd, c.category); err != nil {
			errs = append(errs, err)
		}
	}

	for _, a := range startupAliases {
		if err := reg.AddAlias(a[0], a[1]); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
