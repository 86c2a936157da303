// Package config loads the quizgen configuration from defaults, an
// optional YAML file and QUIZGEN_* environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/mareeczka/test-generator-mvp/internal/llm"
	"github.com/mareeczka/test-generator-mvp/internal/questiongen"
)

// Config is the full application configuration.
type Config struct {
	LLM        llm.Config       `yaml:"llm"`
	Generation GenerationConfig `yaml:"generation"`
	Mock       MockConfig       `yaml:"mock"`

	// DB is the SQLite event store path. Empty means store.DefaultDBPath.
	DB string `yaml:"db"`

	// LogMode is "dev", "prod" or "quiet".
	LogMode string `yaml:"log_mode" validate:"omitempty,oneof=dev prod quiet"`
}

// GenerationConfig tunes the question pipeline.
type GenerationConfig struct {
	BatchSize      int           `yaml:"batch_size" validate:"min=1,max=50"`
	MaxRetries     int           `yaml:"max_retries" validate:"min=1,max=10"`
	Temperature    float64       `yaml:"temperature" validate:"min=0,max=2"`
	MaxTokens      int           `yaml:"max_tokens" validate:"min=1"`
	FactsMaxTokens int           `yaml:"facts_max_tokens" validate:"min=1"`
	CallTimeout    time.Duration `yaml:"call_timeout" validate:"min=0"`
}

// MockConfig selects the model-free stub generator.
type MockConfig struct {
	Enabled bool          `yaml:"enabled"`
	Delay   time.Duration `yaml:"delay" validate:"min=0"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Default returns the built-in configuration.
func Default() Config {
	gen := questiongen.DefaultConfig()
	return Config{
		LLM: llm.DefaultConfig(),
		Generation: GenerationConfig{
			BatchSize:      gen.BatchSize,
			MaxRetries:     gen.MaxRetries,
			Temperature:    gen.Temperature,
			MaxTokens:      gen.MaxTokens,
			FactsMaxTokens: gen.FactsMaxTokens,
			CallTimeout:    gen.CallTimeout,
		},
		Mock: MockConfig{
			Delay: 2 * time.Second,
		},
		LogMode: "quiet",
	}
}

// DefaultPath returns QUIZGEN_CONFIG, or config.yaml under the user config
// directory.
func DefaultPath() string {
	if p := os.Getenv("QUIZGEN_CONFIG"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "quizgen", "config.yaml")
}

// Load builds and validates the configuration.
func Load(path string) (Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return Config{}, err
	}
	cfg.Discover()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Discover probes vendor API keys in the environment when no provider is
// usable and none was chosen via QUIZGEN_LLM_PROVIDER. Retry and replica
// settings are kept.
func (c *Config) Discover() {
	if c.Mock.Enabled || c.LLM.Validate() == nil || os.Getenv("QUIZGEN_LLM_PROVIDER") != "" {
		return
	}
	if found, ok := llm.DiscoverConfig(); ok {
		found.Retry = c.LLM.Retry
		found.Replicas = c.LLM.Replicas
		c.LLM = found
	}
}

// Read layers the YAML file and environment over the defaults without
// validating. An explicit path must exist; with an empty path DefaultPath
// is read if present.
func Read(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		err := cfg.readFile(path)
		switch {
		case err == nil:
		case !explicit && errors.Is(err, os.ErrNotExist):
		default:
			return Config{}, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field ranges and, unless the stub is selected, that the
// LLM provider has what it needs.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) && len(errs) > 0 {
			fe := errs[0]
			return fmt.Errorf("config: %s failed %q (got %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("config: %w", err)
	}
	if c.Mock.Enabled {
		return nil
	}
	if err := c.LLM.Validate(); err != nil {
		return fmt.Errorf("config: %w: %w", questiongen.ErrModelUnavailable, err)
	}
	return nil
}

// Generator returns the pipeline settings as a questiongen.Config.
func (c Config) Generator() questiongen.Config {
	gen := questiongen.DefaultConfig()
	gen.BatchSize = c.Generation.BatchSize
	gen.MaxRetries = c.Generation.MaxRetries
	gen.Temperature = c.Generation.Temperature
	gen.MaxTokens = c.Generation.MaxTokens
	gen.FactsMaxTokens = c.Generation.FactsMaxTokens
	gen.CallTimeout = c.Generation.CallTimeout
	return gen
}

// RequestTimeout bounds one generation request of count questions.
func (c Config) RequestTimeout(count int) time.Duration {
	return questiongen.RequestTimeout(count, c.Generation.BatchSize, c.Generation.MaxRetries, c.Generation.CallTimeout)
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.LLM.ApplyEnv()

	if v := os.Getenv("QUIZGEN_DB"); v != "" {
		c.DB = v
	}
	if v := os.Getenv("QUIZGEN_LOG_MODE"); v != "" {
		c.LogMode = strings.ToLower(v)
	}

	var errs []error
	envInt("QUIZGEN_BATCH_SIZE", &c.Generation.BatchSize, &errs)
	envInt("QUIZGEN_MAX_RETRIES", &c.Generation.MaxRetries, &errs)
	envInt("QUIZGEN_MAX_TOKENS", &c.Generation.MaxTokens, &errs)
	envInt("QUIZGEN_REPLICAS", &c.LLM.Replicas, &errs)
	envFloat("QUIZGEN_TEMPERATURE", &c.Generation.Temperature, &errs)
	envBool("QUIZGEN_USE_MOCK", &c.Mock.Enabled, &errs)
	envDuration("QUIZGEN_MOCK_DELAY", &c.Mock.Delay, &errs)
	envDuration("QUIZGEN_CALL_TIMEOUT", &c.Generation.CallTimeout, &errs)
	return errors.Join(errs...)
}

func envInt(key string, dst *int, errs *[]error) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return
	}
	*dst = n
}

func envFloat(key string, dst *float64, errs *[]error) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return
	}
	*dst = f
}

func envBool(key string, dst *bool, errs *[]error) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return
	}
	*dst = b
}

// envDuration accepts Go durations ("1500ms") or plain seconds ("2.5").
func envDuration(key string, dst *time.Duration, errs *[]error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	if d, err := time.ParseDuration(v); err == nil {
		*dst = d
		return
	}
	secs, err := strconv.ParseFloat(v, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: not a duration: %q", key, v))
		return
	}
	*dst = time.Duration(secs * float64(time.Second))
}
