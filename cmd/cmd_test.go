package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mareeczka/test-generator-mvp/internal/questiongen"
	"github.com/mareeczka/test-generator-mvp/internal/store"
)

const material = `Photosynthesis converts light energy into chemical energy.
It takes place in the chloroplasts of plant cells. Chlorophyll absorbs
mostly red and blue light. The process releases oxygen as a by-product.
Glucose produced by photosynthesis stores energy for the plant.`

// execute runs the root command with an isolated config and a mock backend.
func execute(t *testing.T, args ...string) error {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("QUIZGEN_CONFIG", "")
	t.Setenv("QUIZGEN_MOCK_DELAY", "0")
	t.Setenv("QUIZGEN_LOG_MODE", "quiet")

	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(context.Background())
}

func writeMaterial(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "material.txt")
	require.NoError(t, os.WriteFile(p, []byte(material), 0o644))
	return p
}

func TestGenerate_RecordsRun(t *testing.T) {
	db := filepath.Join(t.TempDir(), "quizgen.db")
	input := writeMaterial(t)

	err := execute(t, "generate", "--mock", "--db", db, "--input", input,
		"--count", "6", "--test-set", "Biology", "--seed", "3")
	require.NoError(t, err)

	s, err := store.Open(db)
	require.NoError(t, err)
	defer s.Close()

	runs, err := s.RunRepo().ListRuns(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	r := runs[0]
	assert.Equal(t, "mock", r.Provider)
	assert.Equal(t, "Biology", r.TestSet)
	assert.Equal(t, 6, r.Requested)
	assert.Equal(t, 6, r.Delivered)
	assert.Empty(t, r.Error)
	require.NotNil(t, r.Seed)
	assert.Equal(t, uint64(3), *r.Seed)
	assert.Contains(t, r.Facts, "Photosynthesis converts light energy")

	qs, err := loadQuestions(r.Questions)
	require.NoError(t, err)
	require.Len(t, qs, 6)
	for i, q := range qs {
		assert.Equal(t, i+1, q.QuestionNumber)
		assert.Equal(t, "Biology", q.TestSet)
	}

	require.NoError(t, execute(t, "runs", "prune", "--db", db, "--keep", "0"))
	runs, err = s.RunRepo().ListRuns(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestGenerate_RejectsBadCount(t *testing.T) {
	input := writeMaterial(t)
	err := execute(t, "generate", "--mock", "--db", filepath.Join(t.TempDir(), "q.db"),
		"--input", input, "--count", "51")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--count")
}

func TestReadInput(t *testing.T) {
	input := writeMaterial(t)
	text, err := readInput(input)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "Photosynthesis"))

	empty := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(empty, []byte(" \n\t"), 0o644))
	_, err = readInput(empty)
	assert.Error(t, err)

	_, err = readInput(filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestQuiz(t *testing.T) {
	qs := []questiongen.Question{
		{QuestionNumber: 1, QuestionType: questiongen.TypeMCQ, QuestionText: "Pick green",
			Options: []string{"Red", "Green", "Blue"}, Answers: []int{1}},
		{QuestionNumber: 2, QuestionType: questiongen.TypeInput, QuestionText: "Gas released?",
			Answer: "oxygen"},
		{QuestionNumber: 3, QuestionType: questiongen.TypeSequence, QuestionText: "Order",
			Options: []string{"x", "y", "z"}, Answers: []int{0, 1, 2}},
	}

	var out strings.Builder
	correct, answered := quiz(strings.NewReader("b\n\nc b a\n"), &out, "Bio", qs)
	assert.Equal(t, 1, correct)
	assert.Equal(t, 2, answered)
	assert.Contains(t, out.String(), "(skipped)")
	assert.Contains(t, out.String(), "✗ Wrong. Answer: a b c")
}

func TestQuiz_ShuffledSequence(t *testing.T) {
	stored := []questiongen.Question{
		{QuestionNumber: 1, QuestionType: questiongen.TypeSequence, QuestionText: "Order",
			Options: []string{"first", "second", "third", "fourth"}, Answers: []int{0, 1, 2, 3}},
	}
	seed := uint64(3)
	shown := questiongen.ShuffleSequences(stored, &seed)
	require.ElementsMatch(t, stored[0].Options, shown[0].Options)

	key := questiongen.AnswerKey(&shown[0])
	var out strings.Builder
	correct, answered := quiz(strings.NewReader(key+"\n"), &out, "Bio", shown)
	assert.Equal(t, 1, correct)
	assert.Equal(t, 1, answered)

	// Options appear on screen in the shuffled order.
	text := out.String()
	for i := 1; i < len(shown[0].Options); i++ {
		assert.Less(t, strings.Index(text, shown[0].Options[i-1]), strings.Index(text, shown[0].Options[i]))
	}
	assert.Equal(t, []int{0, 1, 2, 3}, stored[0].Answers)
}

func TestQuiz_InputClosed(t *testing.T) {
	qs := []questiongen.Question{
		{QuestionNumber: 1, QuestionType: questiongen.TypeInput, QuestionText: "Q1", Answer: "a"},
		{QuestionNumber: 2, QuestionType: questiongen.TypeInput, QuestionText: "Q2", Answer: "b"},
	}
	var out strings.Builder
	correct, answered := quiz(strings.NewReader("a\n"), &out, "Bio", qs)
	assert.Equal(t, 1, correct)
	assert.Equal(t, 1, answered)
	assert.Contains(t, out.String(), "(input closed)")
}

func TestBatchReports(t *testing.T) {
	events := []store.BatchEvent{
		{BatchEventData: store.BatchEventData{Index: 0, Start: 1, Types: []string{"mcq", "input"}, Attempts: 1, State: "accepted"}},
		{BatchEventData: store.BatchEventData{Index: 1, Start: 3, Types: []string{"match"}, Attempts: 3, State: "exhausted", Reason: "schema"}},
	}
	reps := batchReports(events)
	require.Len(t, reps, 2)
	assert.Equal(t, questiongen.BatchAccepted, reps[0].State)
	assert.Equal(t, []questiongen.QuestionType{questiongen.TypeMCQ, questiongen.TypeInput}, reps[0].Types)
	assert.Equal(t, questiongen.BatchExhausted, reps[1].State)
	assert.Equal(t, "schema", reps[1].Reason)
}

func TestRunStatus(t *testing.T) {
	assert.Equal(t, "ok", runStatus(store.Run{Requested: 5, Delivered: 5}))
	assert.Equal(t, "partial", runStatus(store.Run{Requested: 5, Delivered: 3}))
	assert.Equal(t, "failed: boom", runStatus(store.Run{Requested: 5, Error: "boom"}))
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "$0.0012", formatCost(0.00123))
	assert.Equal(t, "$1.50", formatCost(1.5))
	assert.Equal(t, "abc", truncate("abcdef", 3))
	assert.Equal(t, "-", shortID(""))
	assert.Equal(t, "0c1d2e3f", shortID("0c1d2e3f-0000-4000-8000-000000000000"))
}
