// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"fmt"
	"iter"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/exp/slices"
)

type (
	// Category namespaces commands registered with AddWithCategory. A command
	// "exit" in a category with UID "cr" is registered as "cr_exit".
	Category struct {
		// UID is the short unique prefix, e.g. "cr".
		UID string
		// Name identifies the category at registration, e.g. "core".
		Name string
		// Description is shown in help output.
		Description string
	}

	// Entry is one registered command as seen by listings.
	Entry struct {
		// Key is the case-normalized registry name.
		Key string
		// Category is the category name, empty for uncategorized commands.
		Category string
		Command  Command
	}

	// Registry owns the named commands, categories and aliases of a shell.
	// It is safe for concurrent use: lookups share a read lock and
	// registration takes the write lock.
	Registry struct {
		mu         sync.RWMutex
		commands   map[string]Entry
		order      []string
		aliases    map[string]string
		categories map[string]Category
		logger     *log.Logger
	}
)

// NewRegistry creates an empty Registry. A nil logger uses log.Default().
func NewRegistry(logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.Default()
	}
	return &Registry{
		commands:   make(map[string]Entry),
		aliases:    make(map[string]string),
		categories: make(map[string]Category),
		logger:     logger.WithPrefix("registry"),
	}
}

// Normalize returns the registry key for a user-supplied name.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register adds a command built from plain values.
func (r *Registry) Register(name, description string, run ExecFunc, arity Arity) error {
	return r.Add(NewCommand(Definition{
		Name:        name,
		Description: description,
		Arity:       arity,
		Run:         run,
	}))
}

// Add registers cmd under its normalized name. The first registration of a
// name wins; later ones are rejected with ErrDuplicateCommand. A name that is
// already an alias is rejected with ErrAliasExists.
func (r *Registry) Add(cmd Command) error {
	name := Normalize(cmd.Name())
	if name == "" {
		return &ConfigurationError{Op: "register", Name: cmd.Name(), Err: ErrEmptyName}
	}
	return r.insert(name, "", cmd)
}

// AddWithCategory registers cmd as "<uid>_<name>" and returns that key.
// It panics when the category was never added: that is a registration-order
// bug, not a runtime condition.
func (r *Registry) AddWithCategory(cmd Command, category string) (string, error) {
	r.mu.RLock()
	cat, ok := r.categories[category]
	r.mu.RUnlock()
	if !ok {
		panic(fmt.Sprintf("shell: category %q does not exist: %v", category, ErrUnknownCategory))
	}

	name := Normalize(cmd.Name())
	if name == "" {
		return "", &ConfigurationError{Op: "register", Name: cmd.Name(), Err: ErrEmptyName}
	}

	key := strings.ToLower(cat.UID) + "_" + name
	if err := r.insert(key, cat.Name, cmd); err != nil {
		return "", err
	}
	return key, nil
}

func (r *Registry) insert(key, category string, cmd Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.commands[key]; exists {
		err := &ConfigurationError{Op: "register", Name: key, Err: ErrDuplicateCommand}
		r.logger.Warn("command already registered, keeping the first", "name", key)
		return err
	}
	if target, isAlias := r.aliases[key]; isAlias {
		r.logger.Warn("command name is already an alias", "name", key, "alias_target", target)
		return &ConfigurationError{Op: "register", Name: key, Target: target, Err: ErrAliasExists}
	}

	r.commands[key] = Entry{Key: key, Category: category, Command: cmd}
	r.order = append(r.order, key)
	r.logger.Debug("registered command", "name", key)
	return nil
}

// Unregister removes a command. Aliases pointing at it are left dangling and
// resolve to "not found" afterwards.
func (r *Registry) Unregister(name string) bool {
	key := Normalize(name)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.commands[key]; !ok {
		return false
	}
	delete(r.commands, key)
	r.order = slices.DeleteFunc(r.order, func(k string) bool { return k == key })
	return true
}

// AddCategory makes a category available to AddWithCategory. Adding a
// category with an existing name replaces it.
func (r *Registry) AddCategory(cat Category) error {
	if strings.TrimSpace(cat.UID) == "" || strings.TrimSpace(cat.Name) == "" {
		return &ConfigurationError{Op: "add category", Name: cat.Name, Err: ErrEmptyName}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.categories[cat.Name] = cat
	return nil
}

// Category returns the category registered under name.
func (r *Registry) Category(name string) (Category, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cat, ok := r.categories[name]
	return cat, ok
}

// AddAlias maps alias onto the canonical command name. It fails, logging a
// warning and leaving existing mappings untouched, when the alias is already
// an alias or a command name, or when canonical is not a registered command.
func (r *Registry) AddAlias(alias, canonical string) error {
	a, c := Normalize(alias), Normalize(canonical)
	if a == "" {
		return &ConfigurationError{Op: "add alias", Name: alias, Target: canonical, Err: ErrEmptyName}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.aliases[a]; exists {
		r.logger.Warn("alias already exists", "alias", a, "target", r.aliases[a])
		return &ConfigurationError{Op: "add alias", Name: a, Target: c, Err: ErrAliasExists}
	}
	if _, exists := r.commands[a]; exists {
		r.logger.Warn("alias collides with a command name", "alias", a)
		return &ConfigurationError{Op: "add alias", Name: a, Target: c, Err: ErrAliasExists}
	}
	if _, exists := r.commands[c]; !exists {
		r.logger.Warn("alias target was not found", "alias", a, "target", c)
		return &ConfigurationError{Op: "add alias", Name: a, Target: c, Err: ErrUnknownCommand}
	}

	r.aliases[a] = c
	r.logger.Debug("added alias", "alias", a, "target", c)
	return nil
}

// Resolve normalizes name and follows at most one alias hop.
func (r *Registry) Resolve(name string) string {
	key := Normalize(name)

	r.mu.RLock()
	defer r.mu.RUnlock()

	if target, ok := r.aliases[key]; ok {
		return target
	}
	return key
}

// Lookup resolves name through one alias hop and returns the command and
// its registry key.
func (r *Registry) Lookup(name string) (Command, string, bool) {
	key := r.Resolve(name)

	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.commands[key]
	if !ok {
		return nil, key, false
	}
	return entry.Command, key, true
}

// Names returns the registry keys in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// All yields the registered commands in registration order. The sequence
// iterates a snapshot, so it is restartable and unaffected by concurrent
// registration.
func (r *Registry) All() iter.Seq[Entry] {
	r.mu.RLock()
	entries := make([]Entry, 0, len(r.order))
	for _, key := range r.order {
		entries = append(entries, r.commands[key])
	}
	r.mu.RUnlock()

	return func(yield func(Entry) bool) {
		for _, e := range entries {
			if !yield(e) {
				return
			}
		}
	}
}

// AliasesFor returns the aliases targeting key, sorted.
func (r *Registry) AliasesFor(key string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []string
	for alias, target := range r.aliases {
		if target == key {
			out = append(out, alias)
		}
	}
	slices.Sort(out)
	return out
}

// Completions returns the command names and aliases starting with the
// normalized prefix, sorted. Dangling aliases are left out.
func (r *Registry) Completions(prefix string) []string {
	p := Normalize(prefix)

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []string
	for key := range r.commands {
		if strings.HasPrefix(key, p) {
			out = append(out, key)
		}
	}
	for alias, target := range r.aliases {
		if _, ok := r.commands[target]; ok && strings.HasPrefix(alias, p) {
			out = append(out, alias)
		}
	}
	slices.Sort(out)
	return out
}

// Len returns the number of registered commands.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}

// Suggest returns the registered name closest to a mistyped one.
func (r *Registry) Suggest(name string) (string, bool) {
	return Suggest(Normalize(name), r.Names())
}
