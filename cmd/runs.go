package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mareeczka/test-generator-mvp/internal/questiongen"
	"github.com/mareeczka/test-generator-mvp/internal/render"
	"github.com/mareeczka/test-generator-mvp/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect recorded generation runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent generation runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		s, err := openStore(cmd)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		runs, err := s.RunRepo().ListRuns(cmd.Context(), limit)
		if err != nil {
			return fmt.Errorf("list runs: %w", err)
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}

		fmt.Printf("%-8s  %-19s  %-20s  %-24s  %9s  %8s  %s\n",
			"ID", "Created", "Test set", "Model", "Delivered", "Sec", "Status")
		fmt.Println(strings.Repeat("─", 110))
		for _, r := range runs {
			fmt.Printf("%-8s  %-19s  %-20s  %-24s  %4d/%-4d  %8.1f  %s\n",
				shortID(r.ID),
				r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				truncate(r.TestSet, 20),
				truncate(r.Model, 24),
				r.Delivered, r.Requested,
				float64(r.DurationMs)/1000,
				runStatus(r),
			)
		}
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a run's facts, batches and questions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		showAnswers, _ := cmd.Flags().GetBool("answers")

		s, err := openStore(cmd)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		ctx := cmd.Context()
		r, err := s.RunRepo().GetRun(ctx, args[0])
		if err != nil {
			return fmt.Errorf("get run: %w", err)
		}
		if r == nil {
			return fmt.Errorf("run %q not found", args[0])
		}

		fmt.Printf("ID:        %s\n", r.ID)
		fmt.Printf("Time:      %s\n", r.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("Test set:  %s\n", r.TestSet)
		fmt.Printf("Model:     %s/%s\n", r.Provider, r.Model)
		if r.Seed != nil {
			fmt.Printf("Seed:      %d\n", *r.Seed)
		}
		fmt.Printf("Delivered: %d of %d in %dms\n", r.Delivered, r.Requested, r.DurationMs)
		if r.Error != "" {
			fmt.Printf("Error:     %s\n", r.Error)
		}

		if r.Facts != "" {
			fmt.Println()
			fmt.Println(render.Facts(r.Facts))
		}

		events, err := s.EventRepo().QueryBatchEvents(ctx, store.QueryOpts{RunID: r.ID})
		if err != nil {
			return fmt.Errorf("query batch events: %w", err)
		}
		if len(events) > 0 {
			fmt.Println()
			fmt.Println(render.Batches(batchReports(events)))
		}

		qs, err := loadQuestions(r.Questions)
		if err != nil {
			return err
		}
		if len(qs) > 0 {
			fmt.Println()
			fmt.Println(render.Questions(r.TestSet, qs, render.Options{ShowAnswers: showAnswers}))
		}
		return nil
	},
}

var runsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the most recent runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		keep, _ := cmd.Flags().GetInt("keep")
		if keep < 0 {
			return fmt.Errorf("--keep must not be negative")
		}

		s, err := openStore(cmd)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		n, err := s.RunRepo().Prune(cmd.Context(), keep)
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d run(s).\n", n)
		return nil
	},
}

func runStatus(r store.Run) string {
	switch {
	case r.Error != "":
		return "failed: " + truncate(r.Error, 40)
	case r.Delivered < r.Requested:
		return "partial"
	default:
		return "ok"
	}
}

// batchReports converts stored batch events back to pipeline reports.
func batchReports(events []store.BatchEvent) []questiongen.BatchReport {
	out := make([]questiongen.BatchReport, 0, len(events))
	for _, e := range events {
		types := make([]questiongen.QuestionType, len(e.Types))
		for i, t := range e.Types {
			types[i] = questiongen.QuestionType(t)
		}
		var state questiongen.BatchState
		_ = state.UnmarshalText([]byte(e.State))
		out = append(out, questiongen.BatchReport{
			Index:    e.Index,
			Start:    e.Start,
			Types:    types,
			Attempts: e.Attempts,
			State:    state,
			Reason:   e.Reason,
		})
	}
	return out
}

func init() {
	runsListCmd.Flags().IntP("limit", "n", 20, "Number of runs to show")
	runsShowCmd.Flags().Bool("answers", false, "Show correct answers")
	runsPruneCmd.Flags().Int("keep", 50, "Number of most recent runs to keep")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsPruneCmd)
}

func loadQuestions(data []byte) ([]questiongen.Question, error) {
	var qs []questiongen.Question
	if len(data) == 0 {
		return nil, nil
	}
	if err := json.Unmarshal(data, &qs); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	return qs, nil
}
