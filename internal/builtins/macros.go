// SPDX-License-Identifier: MPL-2.0

package builtins

import (
	"context"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/zensh/zensh/internal/config"
	"github.com/zensh/zensh/pkg/shell"
)

// InstallConfig registers the macros and aliases of cfg. Problems are
// logged and skipped, so a bad entry never blocks the shell from starting;
// the returned count is the number of entries that were rejected.
//
// Macros are registered as "u_<name>" with "<name>" as alias. User aliases
// are added last and may target built-ins or macros.
func InstallConfig(reg *shell.Registry, cfg *config.Config, logger *log.Logger) int {
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.WithPrefix("config")
	rejected := 0

	for _, name := range sortedKeys(cfg.Macros) {
		m := cfg.Macros[name]
		key, err := reg.AddWithCategory(newMacroCommand(name, m), CategoryUser)
		if err != nil {
			logger.Warn("skipping macro", "name", name, "error", err)
			rejected++
			continue
		}
		if err := reg.AddAlias(name, key); err != nil {
			logger.Warn("macro is only reachable by its full name", "name", name, "key", key, "error", err)
		}
	}

	for _, alias := range sortedKeys(cfg.Aliases) {
		if err := reg.AddAlias(alias, cfg.Aliases[alias]); err != nil {
			logger.Warn("skipping alias", "alias", alias, "target", cfg.Aliases[alias], "error", err)
			rejected++
		}
	}
	return rejected
}

// newMacroCommand builds a command evaluating body like a script named
// after the macro.
func newMacroCommand(name string, m config.MacroConfig) shell.Command {
	description := m.Description
	if description == "" {
		description = "User macro"
	}
	return shell.NewCommand(shell.Definition{
		Name:        name,
		Description: description,
		Help:        "Runs:\n\n```\n" + m.Body + "\n```",
		Arity:       0,
		Run: func(ctx context.Context, inv *shell.Invocation) error {
			return inv.Eval.RunInline(ctx, inv.Name, m.Body)
		},
	})
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
