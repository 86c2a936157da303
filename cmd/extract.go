package cmd

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mareeczka/test-generator-mvp/internal/render"
	"github.com/mareeczka/test-generator-mvp/internal/store"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract the facts from study material",
	Long: `Runs only the fact extraction step and prints the fact list. The output
can be edited and passed to "quizgen generate --from-facts".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("input")
		plain, _ := cmd.Flags().GetBool("plain")
		noRecord, _ := cmd.Flags().GetBool("no-record")

		text, err := readInput(input)
		if err != nil {
			return err
		}

		a, err := newApp(cmd, !noRecord)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := store.WithRunID(cmd.Context(), uuid.NewString())
		if t := a.cfg.Generation.CallTimeout; t > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, t)
			defer cancel()
		}

		facts, err := a.gen.ExtractFacts(ctx, text)
		if err != nil {
			return err
		}

		if plain {
			fmt.Println(facts)
			return nil
		}
		fmt.Println(render.Facts(facts))
		return nil
	},
}

func init() {
	addGeneratorFlags(extractCmd)
	extractCmd.Flags().Bool("plain", false, "Print one fact per line without styling")
	extractCmd.Flags().Bool("no-record", false, "Do not record the LLM call in the event store")
}
