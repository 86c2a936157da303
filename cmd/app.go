package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mareeczka/test-generator-mvp/internal/config"
	"github.com/mareeczka/test-generator-mvp/internal/llm"
	"github.com/mareeczka/test-generator-mvp/internal/logger"
	"github.com/mareeczka/test-generator-mvp/internal/questiongen"
	"github.com/mareeczka/test-generator-mvp/internal/store"
)

// app bundles what a generating command needs.
type app struct {
	cfg      config.Config
	log      *logger.Logger
	store    *store.Store // nil when recording is off
	gen      questiongen.Generator
	genCfg   questiongen.Config
	provider string
	model    string
}

// newApp loads the configuration, opens the store when record is set and
// builds the generator backend.
func newApp(cmd *cobra.Command, record bool) (*app, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Read(cfgPath)
	if err != nil {
		return nil, err
	}
	if mode, _ := cmd.Flags().GetString("log"); mode != "" {
		cfg.LogMode = mode
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DB = p
	}
	if mock, _ := cmd.Flags().GetBool("mock"); mock {
		cfg.Mock.Enabled = true
	}
	cfg.Discover()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: log}

	var events store.EventRepo
	if record {
		dbPath := cfg.DB
		if dbPath == "" {
			dbPath, err = store.DefaultDBPath()
		} else {
			err = store.EnsureDir(dbPath)
		}
		if err != nil {
			return nil, err
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		a.store = st
		events = st.EventRepo()
	}

	genCfg := cfg.Generator()
	if cmd.Flags().Changed("seed") {
		s, _ := cmd.Flags().GetUint64("seed")
		genCfg.Seed = &s
	}

	opts := questiongen.Options{
		UseMock:   cfg.Mock.Enabled,
		MockDelay: cfg.Mock.Delay,
		Config:    genCfg,
		Logger:    log,
		Events:    events,
	}
	if cfg.Mock.Enabled {
		a.provider, a.model = "mock", "stub"
	} else {
		provider, err := llm.NewProvider(cfg.LLM, events, log)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("LLM provider: %w", err)
		}
		opts.Provider = provider
		a.provider, a.model = cfg.LLM.Provider, provider.ModelID()
	}
	a.gen = questiongen.New(opts)
	a.genCfg = genCfg

	log.Debug("backend ready", "provider", a.provider, "model", a.model, "recording", record)
	return a, nil
}

func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}
	a.log.Sync()
}

// readInput reads material from path, or stdin for "-".
func readInput(path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("input %s is empty", path)
	}
	return text, nil
}

// addGeneratorFlags registers the flags shared by commands that run the
// generator.
func addGeneratorFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("input", "i", "-", "Material file to read (- for stdin)")
	cmd.Flags().Bool("mock", false, "Use the model-free stub generator (overrides QUIZGEN_USE_MOCK)")
}
