package questiongen

import "time"

// Config controls the behavior of the generators.
type Config struct {
	// Validators run on every normalized question of a batch, in order.
	// The first failure rejects the whole batch.
	Validators []Validator

	// BatchSize is the number of questions requested per model call.
	BatchSize int

	// MaxRetries is the attempt budget per batch, first attempt included.
	MaxRetries int

	// Temperature is the sampling temperature for question batches.
	Temperature float64

	// MaxTokens is the token budget for one batch reply.
	MaxTokens int

	// FactsMaxTokens is the token budget for the fact extraction reply.
	FactsMaxTokens int

	// CallTimeout bounds a single model call. Zero disables the bound.
	CallTimeout time.Duration

	// Seed fixes allocation order and match shuffling when set.
	Seed *uint64
}

// DefaultConfig returns a Config with the standard validator chain
// and recommended defaults.
func DefaultConfig() Config {
	return Config{
		Validators: []Validator{
			&StructuralValidator{},
		},
		BatchSize:      3,
		MaxRetries:     3,
		Temperature:    0.15,
		MaxTokens:      2048,
		FactsMaxTokens: 1024,
		CallTimeout:    60 * time.Second,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Validators == nil {
		c.Validators = d.Validators
	}
	if c.BatchSize <= 0 {
		c.BatchSize = d.BatchSize
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = d.MaxRetries
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = d.MaxTokens
	}
	if c.FactsMaxTokens <= 0 {
		c.FactsMaxTokens = d.FactsMaxTokens
	}
	return c
}
