package settings

import (
	"context"
)

type runContextKey struct{}

// IntoContext attaches the resolved run options to ctx.
func IntoContext(ctx context.Context, r *Run) context.Context {
	return context.WithValue(ctx, runContextKey{}, r)
}

// FromContext returns the run options attached by IntoContext.
func FromContext(ctx context.Context) (*Run, bool) {
	r, ok := ctx.Value(runContextKey{}).(*Run)
	return r, ok && r != nil
}

// RunOrDefault returns the attached run options, or NewCliParams when none
// were attached.
func RunOrDefault(ctx context.Context) *Run {
	if r, ok := FromContext(ctx); ok {
		return r
	}
	return NewCliParams()
}
