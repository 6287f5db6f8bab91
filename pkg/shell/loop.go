// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// DefaultPromptLabel is the label shown inside the prompt brackets.
const DefaultPromptLabel = "SHELL"

// FormatPrompt renders the interactive prompt, e.g. "[13:04:05.123/SHELL] >>\t".
func FormatPrompt(label string, now time.Time) string {
	if label == "" {
		label = DefaultPromptLabel
	}
	return fmt.Sprintf("[%s/%s] >>\t", now.Format("15:04:05.000"), label)
}

// Run drives the shell loop: read a line from src, evaluate it, repeat.
//
// Statement failures are reported by the evaluator and never end the loop.
// Run returns nil when src is exhausted, the *ExitRequest a statement
// raised, the context error on cancellation, or a read error from src.
func (e *Evaluator) Run(ctx context.Context, src LineSource) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			// Input closed without a trailing newline still counts.
			if line != "" {
				if exitErr := e.runLine(ctx, line); exitErr != nil {
					return exitErr
				}
			}
			e.logger.Debug("input closed")
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		if exitErr := e.runLine(ctx, line); exitErr != nil {
			return exitErr
		}
	}
}

// runLine evaluates one line, returning only errors that end the loop.
func (e *Evaluator) runLine(ctx context.Context, line string) error {
	err := e.Execute(ctx, line)
	if err == nil {
		return nil
	}

	var exit *ExitRequest
	if errors.As(err, &exit) {
		e.logger.Debug("exit requested", "code", exit.Code)
		return exit
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	e.logger.Debug("line finished with failures", "error", err)
	return nil
}
