// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/zensh/zensh/pkg/shell"
)

// DefaultDebounce is the quiet period used when Config.Debounce is unset.
const DefaultDebounce = 300 * time.Millisecond

const clearScreen = "\x1b[H\x1b[2J"

// ErrAlreadyRunning is returned by a second call to Run.
var ErrAlreadyRunning = errors.New("watch: Run called more than once")

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// Dir is the watched tree. Default: the current directory.
		Dir string
		// Patterns select the files that trigger a run, relative to Dir.
		// Empty matches every file that is not ignored.
		Patterns []string
		// Ignore adds patterns to DefaultIgnores.
		Ignore []string
		// Debounce is the quiet period after the last event before a run.
		Debounce time.Duration
		// ClearScreen clears Stdout before every run.
		ClearScreen bool
		// Stdout receives the clear-screen sequence.
		Stdout io.Writer
		// Logger reports skipped runs and watcher errors.
		Logger *log.Logger
		// OnChange runs after the debounce window with the changed paths,
		// relative to Dir. Returning a *shell.ExitRequest ends Run.
		OnChange func(ctx context.Context, changed []string) error
	}

	// Watcher runs a callback whenever matching files under a directory
	// change, coalescing bursts of events into a single run.
	Watcher struct {
		cfg     Config
		fsw     *fsnotify.Watcher
		filter  *filter
		dir     string
		logger  *log.Logger
		started atomic.Bool

		mu      sync.Mutex
		pending map[string]struct{}
		timer   *time.Timer
		busy    atomic.Bool
		stop    chan error
	}
)

// New validates cfg and registers every non-ignored directory under
// cfg.Dir with the file system watcher.
func New(cfg Config) (*Watcher, error) {
	dir := cfg.Dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("watch: determine working directory: %w", err)
		}
		dir = wd
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve directory: %w", err)
	}

	f, err := newFilter(cfg.Patterns, cfg.Ignore)
	if err != nil {
		return nil, err
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create watcher: %w", err)
	}

	w := &Watcher{
		cfg:     cfg,
		fsw:     fsw,
		filter:  f,
		dir:     dir,
		logger:  logger.WithPrefix("watch"),
		pending: make(map[string]struct{}),
		stop:    make(chan error, 1),
	}
	if err := w.addTree(dir); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Dir returns the absolute watched directory.
func (w *Watcher) Dir() string { return w.dir }

// Run processes events until ctx is cancelled, OnChange asks to exit or
// the watcher breaks. Cancellation returns nil; an exit request returns
// the *shell.ExitRequest.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer w.close()

	for {
		select {
		case <-ctx.Done():
			return nil

		case err := <-w.stop:
			return err

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: event channel closed")
			}
			w.handle(ctx, evt)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: error channel closed")
			}
			if isFatal(err) {
				return fmt.Errorf("watch: %w", err)
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, evt fsnotify.Event) {
	rel, err := filepath.Rel(w.dir, evt.Name)
	if err != nil {
		rel = evt.Name
	}
	if evt.Has(fsnotify.Create) {
		w.maybeAddDir(evt.Name, rel)
	}
	if !w.filter.match(rel) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[filepath.ToSlash(rel)] = struct{}{}
	if w.timer == nil {
		w.timer = time.AfterFunc(w.cfg.Debounce, func() { w.fire(ctx) })
	} else {
		w.timer.Reset(w.cfg.Debounce)
	}
}

// fire drains the pending set and runs OnChange. A run that is still busy
// when the next window closes pushes the new window back instead of
// overlapping.
func (w *Watcher) fire(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if !w.busy.CompareAndSwap(false, true) {
		w.logger.Debug("previous run still in progress, postponing")
		w.mu.Lock()
		w.timer.Reset(w.cfg.Debounce)
		w.mu.Unlock()
		return
	}
	defer w.busy.Store(false)

	w.mu.Lock()
	changed := slices.Sorted(maps.Keys(w.pending))
	clear(w.pending)
	w.mu.Unlock()
	if len(changed) == 0 {
		return
	}

	if w.cfg.ClearScreen {
		fmt.Fprint(w.cfg.Stdout, clearScreen)
	}
	w.logger.Debug("change detected", "paths", strings.Join(changed, ", "))
	if w.cfg.OnChange == nil {
		return
	}

	err := w.cfg.OnChange(ctx, changed)
	var exit *shell.ExitRequest
	if errors.As(err, &exit) {
		select {
		case w.stop <- exit:
		default:
		}
		return
	}
	if err != nil {
		w.logger.Debug("run finished with failures", "error", err)
	}
}

func (w *Watcher) close() {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	if err := w.fsw.Close(); err != nil {
		w.logger.Warn("close watcher", "error", err)
	}
}

// addTree registers root and every non-ignored directory below it.
func (w *Watcher) addTree(root string) error {
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			w.logger.Warn("skipping inaccessible path", "path", path, "error", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(w.dir, path)
		if relErr != nil {
			return nil
		}
		if rel != "." && w.filter.ignoredDir(rel) {
			return filepath.SkipDir
		}
		if addErr := w.fsw.Add(path); addErr != nil {
			return fmt.Errorf("watch: add directory %q: %w", path, addErr)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watch: walk %s: %w", root, err)
	}
	return nil
}

func (w *Watcher) maybeAddDir(path, rel string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() || w.filter.ignoredDir(rel) {
		return
	}
	if err := w.addTree(path); err != nil {
		w.logger.Warn("watch new directory", "path", path, "error", err)
	}
}

// ScriptRunner returns an OnChange callback that runs script through eval
// the way `exec` does at the prompt. The script's own diagnostics go to the
// evaluator's stderr.
func ScriptRunner(eval *shell.Evaluator, script string) func(context.Context, []string) error {
	input := `exec "` + script + `"`
	return func(ctx context.Context, _ []string) error {
		return eval.Execute(ctx, input)
	}
}
