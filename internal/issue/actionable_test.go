// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *ActionableError
		want string
	}{
		{"operation only", &ActionableError{Operation: "load configuration"}, "failed to load configuration"},
		{
			"with resource",
			&ActionableError{Operation: "run script", Resource: "build.zensh"},
			"failed to run script: build.zensh",
		},
		{
			"with cause",
			&ActionableError{Operation: "start server", Cause: errors.New("address in use")},
			"failed to start server: address in use",
		},
		{
			"full",
			&ActionableError{Operation: "run script", Resource: "a.zensh", Cause: errors.New("not found")},
			"failed to run script: a.zensh: not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	root := errors.New("permission denied")
	err := &ActionableError{
		Operation:   "load configuration",
		Resource:    "config.cue",
		Suggestions: []string{"Check file permissions", "Run 'zensh config path'"},
		Cause:       fmt.Errorf("open: %w", root),
	}

	short := err.Format(false)
	if !strings.Contains(short, "• Check file permissions") || !strings.Contains(short, "• Run 'zensh config path'") {
		t.Errorf("Format(false) = %q, want both suggestions", short)
	}
	if strings.Contains(short, "Error chain") {
		t.Errorf("Format(false) = %q, want no error chain", short)
	}

	long := err.Format(true)
	if !strings.Contains(long, "1. open: permission denied") || !strings.Contains(long, "2. permission denied") {
		t.Errorf("Format(true) = %q, want the numbered chain", long)
	}
	if !errors.Is(err, root) {
		t.Error("ActionableError does not unwrap to its cause")
	}
}

func TestErrorContext_Build(t *testing.T) {
	t.Parallel()

	if err := NewErrorContext().WithResource("x").BuildError(); err != nil {
		t.Errorf("BuildError() without an operation = %v, want nil", err)
	}

	cause := errors.New("boom")
	ae := NewErrorContext().
		WithOperation("watch scripts").
		WithResource("./scripts").
		WithSuggestion("narrow the patterns").
		Wrap(cause).
		Build()
	if ae == nil {
		t.Fatal("Build() = nil")
	}
	if ae.Operation != "watch scripts" || ae.Resource != "./scripts" || len(ae.Suggestions) != 1 {
		t.Errorf("Build() = %+v", ae)
	}
	if !errors.Is(ae, cause) {
		t.Error("built error does not wrap the cause")
	}
}

func TestWrapWithOperation(t *testing.T) {
	t.Parallel()

	if WrapWithOperation(nil, "x") != nil {
		t.Error("WrapWithOperation(nil) should be nil")
	}
	err := WrapWithOperation(errors.New("bad"), "parse input")
	if err.Error() != "failed to parse input: bad" {
		t.Errorf("Error() = %q", err.Error())
	}
}
