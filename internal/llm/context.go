package llm

import "context"

// Call labels an LLM request for event logging.
type Call struct {
	Purpose string // "fact-extraction", "question-batch"
	Batch   int    // 0-based batch index, -1 outside a batch
	Attempt int    // 1-based attempt at the batch, 0 outside a batch
}

type callKey struct{}

// WithCall attaches c to the context.
func WithCall(ctx context.Context, c Call) context.Context {
	return context.WithValue(ctx, callKey{}, c)
}

// CallFrom returns the call label, or an "unknown" purpose outside any
// batch.
func CallFrom(ctx context.Context) Call {
	if c, ok := ctx.Value(callKey{}).(Call); ok {
		return c
	}
	return Call{Purpose: "unknown", Batch: -1}
}

// WithPurpose labels a call that is not part of a batch.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return WithCall(ctx, Call{Purpose: purpose, Batch: -1})
}

// PurposeFrom extracts the purpose label from the context.
func PurposeFrom(ctx context.Context) string {
	return CallFrom(ctx).Purpose
}
