package questiongen

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/mareeczka/test-generator-mvp/internal/llm"
	"github.com/mareeczka/test-generator-mvp/internal/logger"
	"github.com/mareeczka/test-generator-mvp/internal/store"
)

// BatchState is the lifecycle state of one batch.
type BatchState int

const (
	BatchPending BatchState = iota
	BatchAttempting
	BatchAccepted
	BatchExhausted
)

func (s BatchState) String() string {
	switch s {
	case BatchPending:
		return "pending"
	case BatchAttempting:
		return "attempting"
	case BatchAccepted:
		return "accepted"
	case BatchExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

func (s BatchState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *BatchState) UnmarshalText(text []byte) error {
	for st := BatchPending; st <= BatchExhausted; st++ {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown batch state %q", text)
}

// BatchReport summarizes what happened to one batch.
type BatchReport struct {
	Index    int            `json:"index"`
	Start    int            `json:"start"`
	Types    []QuestionType `json:"types"`
	Attempts int            `json:"attempts"`
	State    BatchState     `json:"state"`
	Reason   string         `json:"reason,omitempty"`
}

// batchAttempt is the scratch state of a batch while it is being retried.
type batchAttempt struct {
	index   int
	types   []QuestionType
	start   int
	attempt int
	raw     string
	parsed  []map[string]any
	valid   bool
}

// batchRunner drives one batch through prompt, model call, recovery and
// validation until it is accepted or out of attempts.
type batchRunner struct {
	provider llm.Provider
	cfg      Config
	req      GenerationRequest
	rng      *rand.Rand
	log      *logger.Logger
	events   store.EventRepo
}

// run returns the accepted questions, or none if the batch was exhausted.
// An error is returned only for failures a retry cannot fix.
func (r *batchRunner) run(ctx context.Context, index int, types []QuestionType, start int) (BatchReport, []Question, error) {
	att := &batchAttempt{index: index, types: types, start: start}
	prompt := BuildBatchPrompt(r.req.Facts, types, start, r.req.TestSet)

	var (
		state    = BatchPending
		accepted []Question
		lastErr  error
	)
	for state != BatchAccepted && state != BatchExhausted {
		switch state {
		case BatchPending:
			state = BatchAttempting

		case BatchAttempting:
			att.attempt++
			qs, err := r.attempt(ctx, att, prompt)
			switch {
			case err == nil:
				accepted = ShuffleMatches(qs, r.rng)
				state = BatchAccepted
			case retryable(ctx, err):
				lastErr = err
				r.log.Debug("batch attempt rejected",
					"batch", index, "attempt", att.attempt, "error", err.Error())
				if att.attempt >= r.req.MaxRetries {
					state = BatchExhausted
				}
			default:
				report := r.report(att, BatchAttempting, err)
				r.record(ctx, report)
				return report, nil, &GenerationError{Op: "generate-questions", Err: err}
			}
		}
	}

	report := r.report(att, state, lastErr)
	if state == BatchExhausted {
		exhausted := &BatchExhaustedError{Index: index, Attempts: att.attempt, Last: lastErr}
		r.log.Warn("batch dropped",
			"batch", index, "start", start, "types", types, "error", exhausted.Error())
	}
	r.record(ctx, report)
	return report, accepted, nil
}

func (r *batchRunner) attempt(ctx context.Context, att *batchAttempt, prompt string) ([]Question, error) {
	att.raw, att.parsed, att.valid = "", nil, false

	callCtx := llm.WithCall(ctx, llm.Call{Purpose: "question-batch", Batch: att.index, Attempt: att.attempt})
	if r.cfg.CallTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(callCtx, r.cfg.CallTimeout)
		defer cancel()
	}

	resp, err := r.provider.Generate(callCtx, llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: prompt},
		},
		MaxTokens:   r.req.MaxTokens,
		Temperature: r.req.Temperature,
		Seed:        callSeed(r.req.Seed, att.index, att.attempt),
	})
	if err != nil {
		return nil, err
	}
	att.raw = resp.Text()

	att.parsed = RecoverArray(att.raw)
	if att.parsed == nil {
		if resp.StopReason == "max_tokens" {
			return nil, &llm.ErrMaxTokensExceeded{Content: resp.Content}
		}
		return nil, errJSONRecovery
	}
	if len(att.parsed) < len(att.types) {
		return nil, &ValidationError{
			Validator: "batch",
			Message:   fmt.Sprintf("incomplete batch: got %d of %d questions", len(att.parsed), len(att.types)),
			Index:     -1,
		}
	}

	qs, verr := ValidateBatch(att.parsed[:len(att.types)], r.req.TestSet, r.cfg.Validators)
	if verr != nil {
		return nil, verr
	}
	if verr := checkSlots(qs, att.types, att.start); verr != nil {
		return nil, verr
	}
	att.valid = true
	return qs, nil
}

func (r *batchRunner) report(att *batchAttempt, state BatchState, err error) BatchReport {
	rep := BatchReport{
		Index:    att.index,
		Start:    att.start,
		Types:    att.types,
		Attempts: att.attempt,
		State:    state,
	}
	if err != nil {
		rep.Reason = err.Error()
	}
	return rep
}

func (r *batchRunner) record(ctx context.Context, rep BatchReport) {
	if r.events == nil {
		return
	}
	types := make([]string, len(rep.Types))
	for i, t := range rep.Types {
		types[i] = string(t)
	}
	// The outcome of a timed-out or cancelled batch is still recorded.
	err := r.events.AppendBatch(context.WithoutCancel(ctx), store.BatchEventData{
		TestSet:  r.req.TestSet,
		Index:    rep.Index,
		Start:    rep.Start,
		Types:    types,
		Attempts: rep.Attempts,
		State:    rep.State.String(),
		Reason:   rep.Reason,
	})
	if err != nil {
		r.log.Warn("failed to record batch event", "batch", rep.Index, "error", err.Error())
	}
}

// retryable reports whether err is a bad reply that another attempt at the
// same batch may fix.
func retryable(ctx context.Context, err error) bool {
	var (
		verr    *ValidationError
		loadErr *llm.ErrModelLoad
	)
	switch {
	case errors.As(err, &loadErr):
		// A model that failed to load stays failed, even when the load
		// ran out the per-call timeout.
		return false
	case errors.Is(err, errJSONRecovery), errors.As(err, &verr):
		return true
	case errors.Is(err, context.DeadlineExceeded):
		// A per-call timeout is retried; the caller's own deadline is not.
		return ctx.Err() == nil
	default:
		return llm.Classify(err) == llm.ClassOutput
	}
}
