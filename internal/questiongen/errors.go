package questiongen

import (
	"errors"
	"fmt"
)

// ErrModelUnavailable is returned when no model backend is configured.
var ErrModelUnavailable = errors.New("model backend not configured")

// ErrEmptySource is returned when fact extraction is given blank text.
var ErrEmptySource = errors.New("source text is empty")

// errJSONRecovery marks a model reply with no parseable JSON array in it.
// It only ever triggers a batch retry and never reaches the caller.
var errJSONRecovery = errors.New("no JSON array in model output")

// GenerationError wraps an unrecoverable backend failure.
type GenerationError struct {
	Op  string // "extract-facts", "generate-questions"
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// ValidationError describes why a parsed batch was rejected.
type ValidationError struct {
	Validator string // which check failed
	Message   string // human-readable reason
	Index     int    // element index within the batch, -1 for the whole batch
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("validation failed (%s): %s", e.Validator, e.Message)
	}
	return fmt.Sprintf("validation failed (%s) at item %d: %s", e.Validator, e.Index, e.Message)
}

// BatchExhaustedError records a batch that used up its retry budget.
type BatchExhaustedError struct {
	Index    int
	Attempts int
	Last     error
}

func (e *BatchExhaustedError) Error() string {
	return fmt.Sprintf("batch %d exhausted after %d attempts: %v", e.Index, e.Attempts, e.Last)
}

func (e *BatchExhaustedError) Unwrap() error { return e.Last }
