package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mareeczka/test-generator-mvp/internal/questiongen"
	"github.com/mareeczka/test-generator-mvp/internal/render"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Take a generated question set as a quiz",
	Long: `Generate questions from a material file and answer them interactively,
or replay the questions of a recorded run with --run.

Without --run nothing is written to the database. Useful for judging
question quality.`,
	RunE: runPreview,
}

func init() {
	addGeneratorFlags(previewCmd)
	previewCmd.Flags().StringP("test-set", "t", questiongen.DefaultTestSet, "Test set name")
	previewCmd.Flags().IntP("count", "c", 5, "Number of questions to generate")
	previewCmd.Flags().Uint64("seed", 0, "Seed for type allocation and option shuffling")
	previewCmd.Flags().String("run", "", "Replay the questions of a recorded run (ID or prefix)")
}

func runPreview(cmd *cobra.Command, args []string) error {
	runID, _ := cmd.Flags().GetString("run")

	var (
		testSet   string
		questions []questiongen.Question
		err       error
	)
	if runID != "" {
		testSet, questions, err = loadRunQuestions(cmd, runID)
	} else {
		testSet, questions, err = generatePreview(cmd)
	}
	if err != nil {
		return err
	}
	if len(questions) == 0 {
		return errors.New("no questions to preview")
	}

	// Sequence steps are stored in their correct order; show them mixed.
	var seed *uint64
	if cmd.Flags().Changed("seed") {
		s, _ := cmd.Flags().GetUint64("seed")
		seed = &s
	}
	questions = questiongen.ShuffleSequences(questions, seed)

	correct, answered := quiz(os.Stdin, os.Stdout, testSet, questions)
	fmt.Printf("── Summary: %d/%d correct (%d skipped) ──\n",
		correct, len(questions), len(questions)-answered)
	return nil
}

func generatePreview(cmd *cobra.Command) (string, []questiongen.Question, error) {
	input, _ := cmd.Flags().GetString("input")
	testSet, _ := cmd.Flags().GetString("test-set")
	count, _ := cmd.Flags().GetInt("count")

	if input == "-" {
		return "", nil, errors.New("preview reads answers from stdin; pass the material with --input <file>")
	}
	text, err := readInput(input)
	if err != nil {
		return "", nil, err
	}

	a, err := newApp(cmd, false)
	if err != nil {
		return "", nil, err
	}
	defer a.Close()

	ctx := cmd.Context()
	if timeout := a.cfg.RequestTimeout(count); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout+a.cfg.Generation.CallTimeout)
		defer cancel()
	}

	fmt.Printf("Generating %d questions with %s...\n\n", count, a.model)
	facts, err := a.gen.ExtractFacts(ctx, text)
	if err != nil {
		return "", nil, err
	}
	qs, err := a.gen.GenerateQuestions(ctx, facts, testSet, count)
	if err != nil {
		return "", nil, err
	}
	if len(qs) < count {
		fmt.Printf("Only %d of %d questions were generated.\n\n", len(qs), count)
	}
	return testSet, qs, nil
}

func loadRunQuestions(cmd *cobra.Command, id string) (string, []questiongen.Question, error) {
	s, err := openStore(cmd)
	if err != nil {
		return "", nil, fmt.Errorf("open database: %w", err)
	}
	defer s.Close()

	run, err := s.RunRepo().GetRun(cmd.Context(), id)
	if err != nil {
		return "", nil, fmt.Errorf("get run: %w", err)
	}
	if run == nil {
		return "", nil, fmt.Errorf("run %q not found", id)
	}

	qs, err := loadQuestions(run.Questions)
	if err != nil {
		return "", nil, err
	}
	return run.TestSet, qs, nil
}

// quiz asks every question on out and reads answers from in. An empty line
// skips a question. It stops early when in is closed.
func quiz(in io.Reader, out io.Writer, testSet string, qs []questiongen.Question) (correct, answered int) {
	scanner := bufio.NewScanner(in)

	fmt.Fprintf(out, "%s\n\n", testSet)
	for i := range qs {
		q := &qs[i]
		fmt.Fprintf(out, "── Question %d/%d ──\n", i+1, len(qs))
		fmt.Fprintln(out, render.Question(*q, render.Options{}))
		fmt.Fprintf(out, "%s\nYour answer: ", answerHint(q.QuestionType))

		if !scanner.Scan() {
			fmt.Fprintln(out, "\n(input closed)")
			break
		}
		answer := strings.TrimSpace(scanner.Text())
		if answer == "" {
			fmt.Fprintln(out, "(skipped)")
			fmt.Fprintln(out)
			continue
		}

		answered++
		if questiongen.CheckAnswer(answer, q) {
			correct++
			fmt.Fprintln(out, "✓ Correct!")
		} else {
			fmt.Fprintf(out, "✗ Wrong. Answer: %s\n", questiongen.AnswerKey(q))
		}
		fmt.Fprintln(out)
	}
	return correct, answered
}

func answerHint(t questiongen.QuestionType) string {
	switch t {
	case questiongen.TypeMCQ:
		return "(letter, e.g. b)"
	case questiongen.TypeMatch:
		return "(pairs, e.g. 1-b, 2-a, 3-c)"
	case questiongen.TypeSequence:
		return "(letters in order, e.g. c a b)"
	default:
		return "(one to three words)"
	}
}
