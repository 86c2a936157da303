package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "quizgen.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	db := openTestStore(t).DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL
	}
	for _, tt := range tests {
		var got string
		require.NoError(t, db.QueryRow("PRAGMA "+tt.pragma).Scan(&got), tt.pragma)
		assert.Equal(t, tt.want, got, tt.pragma)
	}
}

func TestMigrationCreatesTables(t *testing.T) {
	db := openTestStore(t).DB()
	for _, name := range []string{"llm_request_events", "batch_events", "generation_runs", "global_sequence"} {
		var got string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", name).Scan(&got)
		require.NoError(t, err, name)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quizgen.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.EventRepo().AppendLLMRequest(ctx, LLMRequestEventData{Provider: "local", Model: "m", Purpose: "facts", Success: true}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	events, err := s.EventRepo().QueryLLMEvents(ctx, QueryOpts{})
	require.NoError(t, err)
	assert.Len(t, events, 1)

	// The sequence continues rather than restarting.
	require.NoError(t, s.EventRepo().AppendLLMRequest(ctx, LLMRequestEventData{Provider: "local", Model: "m", Purpose: "facts"}))
	events, err = s.EventRepo().QueryLLMEvents(ctx, QueryOpts{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), events[0].Sequence)
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for want := int64(1); want <= 5; want++ {
		got, err := s.seq.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestLLMEvents_AppendQueryGet(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := WithRunID(context.Background(), "run-a")

	require.NoError(t, repo.AppendLLMRequest(ctx, LLMRequestEventData{
		Provider: "openai", Model: "gpt-4o-mini", Purpose: "fact-extraction",
		InputTokens: 100, OutputTokens: 20, LatencyMs: 300, Success: true,
		RequestBody: "[user]\nsource", ResponseBody: "- fact",
	}))
	require.NoError(t, repo.AppendLLMRequest(ctx, LLMRequestEventData{
		Provider: "openai", Model: "gpt-4o-mini", Purpose: "question-batch",
		InputTokens: 400, OutputTokens: 200, LatencyMs: 900, Success: false, ErrorMessage: "bad json",
	}))
	require.NoError(t, repo.AppendLLMRequest(context.Background(), LLMRequestEventData{
		Provider: "local", Model: "qwen", Purpose: "question-batch", Success: true,
	}))

	all, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "qwen", all[0].Model, "newest first")
	assert.False(t, all[0].Timestamp.IsZero())

	byRun, err := repo.QueryLLMEvents(ctx, QueryOpts{RunID: "run-a"})
	require.NoError(t, err)
	assert.Len(t, byRun, 2)

	batches, err := repo.QueryLLMEvents(ctx, QueryOpts{Purpose: "question-batch", Limit: 1})
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, "local", batches[0].Provider)

	after, err := repo.QueryLLMEvents(ctx, QueryOpts{After: 1, Before: 3})
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, "bad json", after[0].ErrorMessage)

	first := all[2]
	got, err := repo.GetLLMEvent(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "- fact", got.ResponseBody)
	assert.Equal(t, "run-a", got.RunID)
	assert.True(t, got.Success)

	missing, err := repo.GetLLMEvent(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestLLMEvents_TimeWindow(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	require.NoError(t, repo.AppendLLMRequest(ctx, LLMRequestEventData{Provider: "local", Model: "m", Purpose: "p"}))

	past, err := repo.QueryLLMEvents(ctx, QueryOpts{To: time.Now().Add(-time.Hour)})
	require.NoError(t, err)
	assert.Empty(t, past)

	recent, err := repo.QueryLLMEvents(ctx, QueryOpts{From: time.Now().Add(-time.Hour)})
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}

func TestLLMUsage(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "anthropic", Model: "claude-haiku-4-5-20251001", Purpose: "question-batch", InputTokens: 100, OutputTokens: 50, LatencyMs: 100, Success: true},
		{Provider: "anthropic", Model: "claude-haiku-4-5-20251001", Purpose: "question-batch", InputTokens: 300, OutputTokens: 150, LatencyMs: 200, Success: false},
		{Provider: "anthropic", Model: "claude-haiku-4-5-20251001", Purpose: "fact-extraction", InputTokens: 10, OutputTokens: 5, LatencyMs: 50, Success: true},
		{Provider: "local", Model: "qwen", Purpose: "question-batch", InputTokens: 1, OutputTokens: 1, LatencyMs: 30, Success: true},
	}
	for _, e := range events {
		require.NoError(t, repo.AppendLLMRequest(ctx, e))
	}

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	require.NoError(t, err)
	require.Len(t, byPurpose, 2)
	assert.Equal(t, PurposeUsage{Purpose: "fact-extraction", Calls: 1, InputTokens: 10, OutputTokens: 5, AvgLatencyMs: 50}, byPurpose[0])
	assert.Equal(t, PurposeUsage{Purpose: "question-batch", Calls: 3, Failures: 1, InputTokens: 401, OutputTokens: 201, AvgLatencyMs: 110}, byPurpose[1])

	byModel, err := repo.LLMUsageByModel(ctx)
	require.NoError(t, err)
	require.Len(t, byModel, 2)
	assert.Equal(t, ModelUsage{Provider: "anthropic", Model: "claude-haiku-4-5-20251001", Calls: 3, InputTokens: 410, OutputTokens: 205}, byModel[0])
	assert.Equal(t, "local", byModel[1].Provider)
}

func TestBatchEvents_InterleaveWithLLMEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := WithRunID(context.Background(), "run-b")

	require.NoError(t, repo.AppendLLMRequest(ctx, LLMRequestEventData{Provider: "local", Model: "m", Purpose: "question-batch"}))
	require.NoError(t, repo.AppendBatch(ctx, BatchEventData{
		TestSet: "Test 1", Index: 0, Start: 1, Types: []string{"mcq", "input", "match"},
		Attempts: 1, State: "accepted",
	}))
	require.NoError(t, repo.AppendBatch(ctx, BatchEventData{
		TestSet: "Test 1", Index: 1, Start: 4, Types: []string{"sequence"},
		Attempts: 3, State: "exhausted", Reason: "json recovery failed",
	}))
	require.NoError(t, repo.AppendBatch(context.Background(), BatchEventData{RunID: "other", Types: []string{}, State: "accepted"}))

	got, err := repo.QueryBatchEvents(ctx, QueryOpts{RunID: "run-b"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].Sequence)
	assert.Equal(t, []string{"mcq", "input", "match"}, got[0].Types)
	assert.Equal(t, "exhausted", got[1].State)
	assert.Equal(t, 4, got[1].Start)
	assert.Equal(t, "json recovery failed", got[1].Reason)
}

func TestRuns_SaveGetList(t *testing.T) {
	s := openTestStore(t)
	repo := s.RunRepo()
	ctx := context.Background()

	seed := uint64(1<<63 + 7)
	run := &Run{
		TestSet: "Biology", Provider: "local", Model: "qwen", Requested: 10, Delivered: 7,
		Seed: &seed, DurationMs: 1234, Facts: "- cells divide",
		Questions: []byte(`[{"question_number":1}]`),
	}
	require.NoError(t, repo.SaveRun(ctx, run))
	require.NotEmpty(t, run.ID)

	got, err := repo.GetRun(ctx, run.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Biology", got.TestSet)
	assert.Equal(t, 7, got.Delivered)
	require.NotNil(t, got.Seed)
	assert.Equal(t, seed, *got.Seed)
	assert.JSONEq(t, `[{"question_number":1}]`, string(got.Questions))

	byPrefix, err := repo.GetRun(ctx, run.ID[:8])
	require.NoError(t, err)
	require.NotNil(t, byPrefix)
	assert.Equal(t, run.ID, byPrefix.ID)

	require.NoError(t, repo.SaveRun(ctx, &Run{TestSet: "Chemistry", Requested: 5, Error: "model unavailable"}))
	runs, err := repo.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Nil(t, runs[0].Seed)
	assert.Equal(t, "[]", string(runs[0].Questions))

	missing, err := repo.GetRun(ctx, "does-not-exist")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRuns_Prune(t *testing.T) {
	s := openTestStore(t)
	runs := s.RunRepo()
	events := s.EventRepo()
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	var ids []string
	for i := range 7 {
		r := &Run{TestSet: "T", CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, runs.SaveRun(ctx, r))
		require.NoError(t, events.AppendBatch(WithRunID(ctx, r.ID), BatchEventData{Types: []string{"mcq"}, State: "accepted"}))
		ids = append(ids, r.ID)
	}

	removed, err := runs.Prune(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	left, err := runs.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, left, 5)
	assert.Equal(t, ids[6], left[0].ID)

	orphans, err := events.QueryBatchEvents(ctx, QueryOpts{RunID: ids[0]})
	require.NoError(t, err)
	assert.Empty(t, orphans)

	removed, err = runs.Prune(ctx, 10)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestDefaultDBPath(t *testing.T) {
	dir := t.TempDir()

	t.Setenv("QUIZGEN_DB", filepath.Join(dir, "custom", "q.db"))
	p, err := DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "custom", "q.db"), p)
	assert.DirExists(t, filepath.Join(dir, "custom"))

	t.Setenv("QUIZGEN_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)
	p, err = DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "quizgen", "quizgen.db"), p)
}
