package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mareeczka/test-generator-mvp/internal/config"
	"github.com/mareeczka/test-generator-mvp/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "quizgen",
	Short: "Generate exam questions from study material",
	Long: `quizgen turns raw study material into a validated set of exam questions
(multiple choice, short input, matching and sequencing) using an LLM.`,
	SilenceUsage: true,
}

// Execute runs the root command. Cancelling ctx aborts a running
// generation.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file (overrides QUIZGEN_CONFIG env var)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides QUIZGEN_DB env var)")
	rootCmd.PersistentFlags().String("log", "", "Log mode: dev, prod or quiet (overrides QUIZGEN_LOG_MODE env var)")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the config file / QUIZGEN_DB, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	cfgPath, _ := cmd.Flags().GetString("config")
	if cfg, err := config.Read(cfgPath); err == nil && cfg.DB != "" {
		return cfg.DB, store.EnsureDir(cfg.DB)
	}
	return store.DefaultDBPath()
}

// openStore opens the event store at the resolved path.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, err
	}
	return store.Open(dbPath)
}
