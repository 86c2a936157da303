package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrRateLimit indicates the provider returned a rate limit error (429).
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse indicates the LLM returned content that does not
// conform to the requested schema.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid LLM response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable indicates the provider is down or unreachable.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("LLM provider unavailable: %v", e.Err)
	}
	return "LLM provider unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded indicates the response was truncated because it
// hit the MaxTokens limit.
type ErrMaxTokensExceeded struct {
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	return "LLM response truncated: max tokens exceeded"
}

// ErrModelLoad indicates the model backend could not be initialized.
// It is never retried by the retry decorator.
type ErrModelLoad struct {
	Model string
	Err   error
}

func (e *ErrModelLoad) Error() string {
	return fmt.Sprintf("load model %q: %v", e.Model, e.Err)
}

func (e *ErrModelLoad) Unwrap() error { return e.Err }

// ErrorClass groups provider failures by what a caller can do about them.
type ErrorClass int

const (
	// ClassTransient failures may succeed if the same call is repeated.
	ClassTransient ErrorClass = iota
	// ClassOutput means the call completed but its output is unusable. A
	// fresh sample may do better.
	ClassOutput
	// ClassFatal failures will not improve by retrying.
	ClassFatal
)

func (c ErrorClass) String() string {
	switch c {
	case ClassTransient:
		return "transient"
	case ClassOutput:
		return "output"
	case ClassFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Classify reports the class of err. Errors of unknown shape, such as
// network failures, are transient.
func Classify(err error) ErrorClass {
	var (
		load    *ErrModelLoad
		maxTok  *ErrMaxTokensExceeded
		invalid *ErrInvalidResponse
	)
	switch {
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &load):
		return ClassFatal
	case errors.As(err, &maxTok), errors.As(err, &invalid):
		return ClassOutput
	default:
		return ClassTransient
	}
}
