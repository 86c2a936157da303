package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mareeczka/test-generator-mvp/internal/questiongen"
	"github.com/mareeczka/test-generator-mvp/internal/render"
	"github.com/mareeczka/test-generator-mvp/internal/store"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a question set from study material",
	Long: `Reads study material, extracts its facts and generates a mixed set of
exam questions. Every run is recorded in the event store unless --no-record
is given; inspect runs with "quizgen runs".`,
	RunE: runGenerate,
}

func init() {
	addGeneratorFlags(generateCmd)
	generateCmd.Flags().StringP("test-set", "t", questiongen.DefaultTestSet, "Test set name stamped on every question")
	generateCmd.Flags().IntP("count", "c", 10, fmt.Sprintf("Number of questions (1-%d)", questiongen.MaxCount))
	generateCmd.Flags().Uint64("seed", 0, "Seed for type allocation and shuffling (reproducible runs)")
	generateCmd.Flags().Bool("from-facts", false, "Treat the input as an already extracted fact list")
	generateCmd.Flags().Bool("json", false, "Print the result as JSON")
	generateCmd.Flags().Bool("answers", false, "Show correct answers")
	generateCmd.Flags().Bool("no-record", false, "Do not record the run in the event store")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	input, _ := cmd.Flags().GetString("input")
	testSet, _ := cmd.Flags().GetString("test-set")
	count, _ := cmd.Flags().GetInt("count")
	fromFacts, _ := cmd.Flags().GetBool("from-facts")
	asJSON, _ := cmd.Flags().GetBool("json")
	showAnswers, _ := cmd.Flags().GetBool("answers")
	noRecord, _ := cmd.Flags().GetBool("no-record")

	if count < 1 || count > questiongen.MaxCount {
		return fmt.Errorf("--count must be between 1 and %d", questiongen.MaxCount)
	}

	text, err := readInput(input)
	if err != nil {
		return err
	}

	a, err := newApp(cmd, !noRecord)
	if err != nil {
		return err
	}
	defer a.Close()

	runID := uuid.NewString()
	ctx := store.WithRunID(cmd.Context(), runID)
	if timeout := a.cfg.RequestTimeout(count); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout+a.cfg.Generation.CallTimeout)
		defer cancel()
	}
	log := a.log.With("run_id", runID, "provider", a.provider, "model", a.model)

	start := time.Now()
	run := &store.Run{
		ID:        runID,
		TestSet:   testSet,
		Provider:  a.provider,
		Model:     a.model,
		Requested: count,
		Seed:      a.genCfg.Seed,
	}

	res, genErr := generate(ctx, a, text, testSet, count, fromFacts, run)
	run.DurationMs = time.Since(start).Milliseconds()
	if genErr != nil {
		run.Error = genErr.Error()
	}
	if res != nil {
		run.Delivered = len(res.Questions)
		if data, err := json.Marshal(res.Questions); err == nil {
			run.Questions = data
		}
	}
	if a.store != nil {
		// Failed and timed-out runs are recorded too.
		if err := a.store.RunRepo().SaveRun(context.WithoutCancel(ctx), run); err != nil {
			log.Warn("save run failed", "error", err)
		}
	}

	if genErr != nil {
		log.Error("generation failed", "error", genErr, "duration_ms", run.DurationMs)
		if errors.Is(genErr, context.DeadlineExceeded) {
			return fmt.Errorf("generation timed out after %s: %w", time.Since(start).Round(time.Second), genErr)
		}
		return genErr
	}
	log.Info("generation finished",
		"requested", count, "delivered", run.Delivered,
		"dropped_batches", res.Dropped(), "duration_ms", run.DurationMs)

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			RunID string `json:"run_id"`
			*questiongen.Result
		}{runID, res})
	}

	fmt.Println(render.Questions(testSet, res.Questions, render.Options{ShowAnswers: showAnswers}))
	if len(res.Batches) > 0 {
		fmt.Println()
		fmt.Println(render.Batches(res.Batches))
	}
	if len(res.Questions) < count {
		fmt.Printf("\n%d of %d questions delivered.\n", len(res.Questions), count)
	}
	if a.store != nil {
		fmt.Printf("\nRun %s\n", runID)
	}
	return nil
}

// generate extracts facts (unless the input already is a fact list) and
// runs the question pipeline. The model-backed generator reports per-batch
// outcomes; the stub only returns questions.
func generate(ctx context.Context, a *app, text, testSet string, count int, fromFacts bool, run *store.Run) (*questiongen.Result, error) {
	facts := text
	if !fromFacts {
		var err error
		facts, err = a.gen.ExtractFacts(ctx, text)
		if err != nil {
			return nil, err
		}
	}
	run.Facts = facts

	if g, ok := a.gen.(*questiongen.LLMGenerator); ok {
		return g.Generate(ctx, questiongen.NewRequest(a.genCfg, facts, testSet, count))
	}
	qs, err := a.gen.GenerateQuestions(ctx, facts, testSet, count)
	if err != nil {
		return nil, err
	}
	return &questiongen.Result{Questions: qs, Requested: count}, nil
}
