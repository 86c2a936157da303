package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

func (r *eventRepo) AppendBatch(ctx context.Context, data BatchEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}
	if data.RunID == "" {
		data.RunID = RunIDFrom(ctx)
	}

	types, err := json.Marshal(data.Types)
	if err != nil {
		return fmt.Errorf("marshal batch types: %w", err)
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(batchEventsTable.Name).
		Columns(
			"sequence", "timestamp", "run_id", "test_set", "batch_index",
			"start_number", "question_types", "attempts", "state", "reason",
		).
		Values(
			seqNum, time.Now().UTC(), data.RunID, data.TestSet, data.Index,
			data.Start, string(types), data.Attempts, data.State, data.Reason,
		).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save batch event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryBatchEvents(ctx context.Context, opts QueryOpts) ([]BatchEvent, error) {
	sel := entsql.Dialect(dialect.SQLite).
		Select(
			"id", "sequence", "timestamp", "run_id", "test_set", "batch_index",
			"start_number", "question_types", "attempts", "state", "reason",
		).
		From(entsql.Table(batchEventsTable.Name)).
		OrderBy("sequence")
	applyQueryOpts(sel, opts)

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query batch events: %w", err)
	}
	defer rows.Close()

	var out []BatchEvent
	for rows.Next() {
		var (
			e     BatchEvent
			types string
		)
		err := rows.Scan(
			&e.ID, &e.Sequence, timeScanner{&e.Timestamp}, &e.RunID, &e.TestSet, &e.Index,
			&e.Start, &types, &e.Attempts, &e.State, &e.Reason,
		)
		if err != nil {
			return nil, fmt.Errorf("scan batch event: %w", err)
		}
		if err := json.Unmarshal([]byte(types), &e.Types); err != nil {
			return nil, fmt.Errorf("decode batch types: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
