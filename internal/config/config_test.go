package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mareeczka/test-generator-mvp/internal/questiongen"
)

// isolate clears every variable Load reads and points the user config
// directory at an empty temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	for _, k := range []string{
		"QUIZGEN_CONFIG", "QUIZGEN_LLM_PROVIDER", "QUIZGEN_MODEL_PATH", "QUIZGEN_LOCAL_BASE_URL",
		"QUIZGEN_ANTHROPIC_API_KEY", "QUIZGEN_OPENAI_API_KEY", "QUIZGEN_GEMINI_API_KEY", "QUIZGEN_OPENROUTER_API_KEY",
		"QUIZGEN_BATCH_SIZE", "QUIZGEN_MAX_RETRIES", "QUIZGEN_MAX_TOKENS", "QUIZGEN_TEMPERATURE",
		"QUIZGEN_USE_MOCK", "QUIZGEN_MOCK_DELAY", "QUIZGEN_REPLICAS", "QUIZGEN_CALL_TIMEOUT",
		"QUIZGEN_DB", "QUIZGEN_LOG_MODE",
		"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY",
	} {
		t.Setenv(k, "")
	}
	return dir
}

func writeFile(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "quizgen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MockNeedsNoProvider(t *testing.T) {
	isolate(t)
	t.Setenv("QUIZGEN_USE_MOCK", "true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.Mock.Enabled)
	assert.Equal(t, 2*time.Second, cfg.Mock.Delay)
	assert.Equal(t, 3, cfg.Generation.BatchSize)
	assert.Equal(t, 3, cfg.Generation.MaxRetries)
	assert.InDelta(t, 0.15, cfg.Generation.Temperature, 1e-9)
}

func TestLoad_NoProviderFails(t *testing.T) {
	isolate(t)

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "QUIZGEN_MODEL_PATH")
}

func TestLoad_File(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, `
llm:
  provider: local
  replicas: 2
  local:
    base_url: http://gpu-box:8000/v1
    model_path: /models/qwen2.5-7b-instruct
generation:
  batch_size: 5
  max_retries: 4
  temperature: 0.3
  call_timeout: 90s
log_mode: prod
db: /var/lib/quizgen/events.db
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "local", cfg.LLM.Provider)
	assert.Equal(t, "/models/qwen2.5-7b-instruct", cfg.LLM.Local.ModelPath)
	assert.Equal(t, "http://gpu-box:8000/v1", cfg.LLM.Local.BaseURL)
	assert.Equal(t, 2, cfg.LLM.Replicas)
	assert.Equal(t, 5, cfg.Generation.BatchSize)
	assert.Equal(t, 4, cfg.Generation.MaxRetries)
	assert.Equal(t, 90*time.Second, cfg.Generation.CallTimeout)
	assert.Equal(t, "prod", cfg.LogMode)
	assert.Equal(t, "/var/lib/quizgen/events.db", cfg.DB)

	// Untouched fields keep their defaults.
	assert.Equal(t, 2048, cfg.Generation.MaxTokens)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "generation:\n  batch_size: 5\nmock:\n  enabled: true\n")
	t.Setenv("QUIZGEN_BATCH_SIZE", "2")
	t.Setenv("QUIZGEN_MOCK_DELAY", "1.5")
	t.Setenv("QUIZGEN_CALL_TIMEOUT", "45s")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Generation.BatchSize)
	assert.Equal(t, 1500*time.Millisecond, cfg.Mock.Delay)
	assert.Equal(t, 45*time.Second, cfg.Generation.CallTimeout)
}

func TestLoad_DefaultPathUsedWhenPresent(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "quizgen"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "quizgen", "config.yaml"),
		[]byte("mock:\n  enabled: true\n  delay: 10ms\n"), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.Mock.Enabled)
	assert.Equal(t, 10*time.Millisecond, cfg.Mock.Delay)
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	dir := isolate(t)
	_, err := Load(filepath.Join(dir, "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_UnknownField(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "mock:\n  enabled: true\nbatchsize: 4\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batchsize")
}

func TestLoad_BadEnv(t *testing.T) {
	isolate(t)
	t.Setenv("QUIZGEN_USE_MOCK", "true")
	t.Setenv("QUIZGEN_BATCH_SIZE", "three")
	t.Setenv("QUIZGEN_MOCK_DELAY", "soon")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "QUIZGEN_BATCH_SIZE")
	assert.Contains(t, err.Error(), "QUIZGEN_MOCK_DELAY")
}

func TestLoad_DiscoversVendorKey(t *testing.T) {
	isolate(t)
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
	t.Setenv("QUIZGEN_REPLICAS", "3")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, "sk-ant-test", cfg.LLM.Anthropic.APIKey)
	assert.Equal(t, 3, cfg.LLM.Replicas)
}

func TestLoad_ExplicitProviderNotOverridden(t *testing.T) {
	isolate(t)
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
	t.Setenv("QUIZGEN_LLM_PROVIDER", "openai")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "QUIZGEN_OPENAI_API_KEY")
}

func TestValidate_Ranges(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"batch size", func(c *Config) { c.Generation.BatchSize = 0 }, "BatchSize"},
		{"retries", func(c *Config) { c.Generation.MaxRetries = 11 }, "MaxRetries"},
		{"temperature", func(c *Config) { c.Generation.Temperature = -0.1 }, "Temperature"},
		{"log mode", func(c *Config) { c.LogMode = "verbose" }, "LogMode"},
		{"mock delay", func(c *Config) { c.Mock.Delay = -time.Second }, "Delay"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Mock.Enabled = true
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestGeneratorAndTimeout(t *testing.T) {
	cfg := Default()
	cfg.Generation.BatchSize = 4
	cfg.Generation.CallTimeout = 30 * time.Second

	gen := cfg.Generator()
	assert.Equal(t, 4, gen.BatchSize)
	assert.Equal(t, 30*time.Second, gen.CallTimeout)
	assert.NotEmpty(t, gen.Validators)

	// 10 questions in batches of 4: 3 batches x 3 attempts x 30s.
	assert.Equal(t, 270*time.Second, cfg.RequestTimeout(10))
}

func TestRead_SkipsValidation(t *testing.T) {
	isolate(t)
	t.Setenv("QUIZGEN_DB", "/tmp/q.db")

	cfg, err := Read("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/q.db", cfg.DB)
	assert.Error(t, cfg.Validate())
}

func TestValidate_NoBackend(t *testing.T) {
	isolate(t)

	cfg, err := Read("")
	require.NoError(t, err)
	cfg.Discover()

	err = cfg.Validate()
	require.ErrorIs(t, err, questiongen.ErrModelUnavailable)
	assert.Contains(t, err.Error(), "QUIZGEN_MODEL_PATH")

	_, err = Load("")
	assert.ErrorIs(t, err, questiongen.ErrModelUnavailable)

	cfg.Mock.Enabled = true
	assert.NoError(t, cfg.Validate())
}
