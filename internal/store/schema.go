package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table definitions in the shape ent's migrate package expects. Every event
// table carries the global sequence column so events of different kinds can
// be ordered against each other.
var (
	llmRequestEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "run_id", Type: field.TypeString, Default: ""},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt},
		{Name: "output_tokens", Type: field.TypeInt},
		{Name: "latency_ms", Type: field.TypeInt64},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	llmRequestEventsTable = &schema.Table{
		Name:       "llm_request_events",
		Columns:    llmRequestEventsColumns,
		PrimaryKey: []*schema.Column{llmRequestEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequestevent_purpose", Columns: []*schema.Column{llmRequestEventsColumns[6]}},
			{Name: "llmrequestevent_run_id", Columns: []*schema.Column{llmRequestEventsColumns[3]}},
		},
	}

	batchEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "run_id", Type: field.TypeString, Default: ""},
		{Name: "test_set", Type: field.TypeString},
		{Name: "batch_index", Type: field.TypeInt},
		{Name: "start_number", Type: field.TypeInt},
		{Name: "question_types", Type: field.TypeString},
		{Name: "attempts", Type: field.TypeInt},
		{Name: "state", Type: field.TypeString},
		{Name: "reason", Type: field.TypeString, Default: ""},
	}
	batchEventsTable = &schema.Table{
		Name:       "batch_events",
		Columns:    batchEventsColumns,
		PrimaryKey: []*schema.Column{batchEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "batchevent_run_id", Columns: []*schema.Column{batchEventsColumns[3]}},
		},
	}

	generationRunsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "test_set", Type: field.TypeString},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "requested", Type: field.TypeInt},
		{Name: "delivered", Type: field.TypeInt},
		{Name: "seed", Type: field.TypeInt64, Nullable: true},
		{Name: "duration_ms", Type: field.TypeInt64},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "facts", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "questions", Type: field.TypeString, Size: 2147483647, Default: "[]"},
	}
	generationRunsTable = &schema.Table{
		Name:       "generation_runs",
		Columns:    generationRunsColumns,
		PrimaryKey: []*schema.Column{generationRunsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "generationrun_created_at", Columns: []*schema.Column{generationRunsColumns[1]}},
		},
	}

	tables = []*schema.Table{
		llmRequestEventsTable,
		batchEventsTable,
		generationRunsTable,
	}
)
