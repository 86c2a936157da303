package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int64     // sequence > After
	Before  int64     // sequence < Before
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	RunID   string    // only events recorded for this run
	Purpose string    // only LLM events with this purpose
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	RunID        string
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLM request event.
type LLMRequestEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// BatchEventData records the outcome of one question batch.
type BatchEventData struct {
	RunID    string
	TestSet  string
	Index    int
	Start    int
	Types    []string
	Attempts int
	State    string // "accepted" or "exhausted"
	Reason   string
}

// BatchEvent is a stored batch outcome.
type BatchEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	BatchEventData
}

// PurposeUsage aggregates LLM calls sharing a purpose label.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	Failures     int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int
}

// ModelUsage aggregates LLM calls served by one provider/model pair.
type ModelUsage struct {
	Provider     string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append and query access to the event tables.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// AppendBatch records the final state of a question batch.
	AppendBatch(ctx context.Context, data BatchEventData) error

	// QueryLLMEvents returns LLM events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)

	// GetLLMEvent returns one LLM event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEvent, error)

	// QueryBatchEvents returns batch events in sequence order.
	QueryBatchEvents(ctx context.Context, opts QueryOpts) ([]BatchEvent, error)

	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)
}

// Run is a recorded generation request and its outcome.
type Run struct {
	ID         string
	CreatedAt  time.Time
	TestSet    string
	Provider   string
	Model      string
	Requested  int
	Delivered  int
	Seed       *uint64
	DurationMs int64
	Error      string
	Facts      string
	// Questions is the delivered question list as JSON.
	Questions []byte
}

// RunRepo stores generation runs.
type RunRepo interface {
	// SaveRun inserts r, assigning an ID and timestamp when unset.
	SaveRun(ctx context.Context, r *Run) error

	// GetRun returns the run with the given ID (or unique ID prefix), or nil.
	GetRun(ctx context.Context, id string) (*Run, error)

	// ListRuns returns runs newest first. limit <= 0 means all.
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	// Prune deletes all but the keep most recent runs along with their
	// batch events, returning how many runs were removed.
	Prune(ctx context.Context, keep int) (int, error)
}
