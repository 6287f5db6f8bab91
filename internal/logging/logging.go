// SPDX-License-Identifier: MPL-2.0

// Package logging builds the process logger shared by every zensh component.
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// TimeFormat matches the clock shown in the interactive prompt.
const TimeFormat = "15:04:05.000"

// ErrInvalidLevel is returned when a level name is not recognized.
var ErrInvalidLevel = errors.New("invalid log level")

type (
	// Options configures New.
	Options struct {
		// Level is a level name: debug, info, warn, error or fatal. Empty means warn.
		Level string
		// File, when set, receives log output (appended) instead of Stderr.
		File string
		// Prefix is the root prefix, usually the application name.
		Prefix string
		// Stderr is the fallback destination. Defaults to os.Stderr.
		Stderr io.Writer
	}

	// InvalidLevelError is returned by ParseLevel for unknown level names.
	InvalidLevelError struct {
		Value string
	}
)

// Error implements the error interface.
func (e *InvalidLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error, fatal)", e.Value)
}

// Unwrap returns ErrInvalidLevel for errors.Is() compatibility.
func (e *InvalidLevelError) Unwrap() error { return ErrInvalidLevel }

// ParseLevel converts a level name. The empty string is warn.
func ParseLevel(s string) (log.Level, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return log.WarnLevel, nil
	}
	if name == "warning" {
		name = "warn"
	}
	lvl, err := log.ParseLevel(name)
	if err != nil {
		return log.WarnLevel, &InvalidLevelError{Value: s}
	}
	return lvl, nil
}

// New creates the process logger. The returned closer releases the log file
// and is never nil.
func New(opts Options) (*log.Logger, io.Closer, error) {
	lvl, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nopCloser{}, err
	}

	var (
		out    io.Writer = opts.Stderr
		closer io.Closer = nopCloser{}
	)
	if out == nil {
		out = os.Stderr
	}
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, nopCloser{}, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nopCloser{}, fmt.Errorf("open log file: %w", err)
		}
		out, closer = f, f
	}

	logger := log.NewWithOptions(out, log.Options{
		Prefix:          opts.Prefix,
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      TimeFormat,
	})
	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
