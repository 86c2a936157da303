package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

// runRepo implements RunRepo.
type runRepo struct {
	db *sql.DB
}

var runSelectColumns = []string{
	"id", "created_at", "test_set", "provider", "model", "requested",
	"delivered", "seed", "duration_ms", "error_message", "facts", "questions",
}

func (r *runRepo) SaveRun(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	questions := run.Questions
	if len(questions) == 0 {
		questions = []byte("[]")
	}

	var seed sql.NullInt64
	if run.Seed != nil {
		seed = sql.NullInt64{Int64: int64(*run.Seed), Valid: true}
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(generationRunsTable.Name).
		Columns(runSelectColumns...).
		Values(
			run.ID, run.CreatedAt, run.TestSet, run.Provider, run.Model, run.Requested,
			run.Delivered, seed, run.DurationMs, run.Error, run.Facts, string(questions),
		).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}

func (r *runRepo) GetRun(ctx context.Context, id string) (*Run, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select(runSelectColumns...).
		From(entsql.Table(generationRunsTable.Name)).
		Where(entsql.HasPrefix("id", id)).
		Limit(2).
		Query()

	runs, err := r.query(ctx, query, args)
	if err != nil {
		return nil, err
	}
	switch len(runs) {
	case 0:
		return nil, nil
	case 1:
		return &runs[0], nil
	default:
		return nil, fmt.Errorf("run id prefix %q is ambiguous", id)
	}
}

func (r *runRepo) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	sel := entsql.Dialect(dialect.SQLite).
		Select(runSelectColumns...).
		From(entsql.Table(generationRunsTable.Name)).
		OrderBy(entsql.Desc("created_at"))
	if limit > 0 {
		sel.Limit(limit)
	}
	query, args := sel.Query()
	return r.query(ctx, query, args)
}

func (r *runRepo) Prune(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}

	// LIMIT -1 is SQLite for "no limit", required before OFFSET.
	query, args := entsql.Dialect(dialect.SQLite).
		Select("id").
		From(entsql.Table(generationRunsTable.Name)).
		OrderBy(entsql.Desc("created_at")).
		Limit(-1).
		Offset(keep).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("query runs for prune: %w", err)
	}
	var ids []any
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan run id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil // fewer than keep runs exist
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin prune: %w", err)
	}
	defer tx.Rollback()

	deletes := []struct{ table, column string }{
		{batchEventsTable.Name, "run_id"},
		{generationRunsTable.Name, "id"},
	}
	for _, d := range deletes {
		q, a := entsql.Dialect(dialect.SQLite).
			Delete(d.table).
			Where(entsql.In(d.column, ids...)).
			Query()
		if _, err := tx.ExecContext(ctx, q, a...); err != nil {
			return 0, fmt.Errorf("prune %s: %w", d.table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit prune: %w", err)
	}
	return len(ids), nil
}

func (r *runRepo) query(ctx context.Context, query string, args []any) ([]Run, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			run       Run
			seed      sql.NullInt64
			questions string
		)
		err := rows.Scan(
			&run.ID, timeScanner{&run.CreatedAt}, &run.TestSet, &run.Provider, &run.Model, &run.Requested,
			&run.Delivered, &seed, &run.DurationMs, &run.Error, &run.Facts, &questions,
		)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if seed.Valid {
			s := uint64(seed.Int64)
			run.Seed = &s
		}
		run.Questions = []byte(questions)
		out = append(out, run)
	}
	return out, rows.Err()
}
