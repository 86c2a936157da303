package store

import "context"

type contextKey string

const runIDKey contextKey = "run_id"

// WithRunID tags the context with a generation run so events recorded
// under it can be traced back to the run.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFrom returns the run tag, or "" when there is none.
func RunIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(runIDKey).(string); ok {
		return v
	}
	return ""
}
