// SPDX-License-Identifier: MPL-2.0

package shell

import "context"

type depthKey struct{}

// WithDepth returns a context carrying the script nesting depth.
func WithDepth(ctx context.Context, depth int) context.Context {
	return context.WithValue(ctx, depthKey{}, depth)
}

// DepthFrom returns the script nesting depth carried by ctx; 0 at top level.
func DepthFrom(ctx context.Context) int {
	if d, ok := ctx.Value(depthKey{}).(int); ok {
		return d
	}
	return 0
}

// enter returns a child context one level deeper, or a ResourceLimitError
// when that level would exceed the ceiling.
func (e *Evaluator) enter(ctx context.Context, what string) (context.Context, error) {
	next := DepthFrom(ctx) + 1
	if next > e.opts.MaxDepth {
		return ctx, &ResourceLimitError{Limit: e.opts.MaxDepth, Path: what}
	}
	return WithDepth(ctx, next), nil
}
