package questiongen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// DefaultTestSet names the test set when the caller leaves it blank.
const DefaultTestSet = "Test 1"

// MaxCount is the largest question count a single request may ask for.
const MaxCount = 50

var validate = validator.New(validator.WithRequiredStructEnabled())

// GenerationRequest is the input to one pipeline run. It is not modified
// by the pipeline.
type GenerationRequest struct {
	Facts       string  `validate:"required"`
	Count       int     `validate:"min=1,max=50"`
	TestSet     string  `validate:"required"`
	BatchSize   int     `validate:"min=1"`
	MaxRetries  int     `validate:"min=1"`
	Temperature float64 `validate:"min=0,max=2"`
	MaxTokens   int     `validate:"min=0"`

	// Seed fixes allocation order and match shuffling. Nil draws a fresh
	// seed per run.
	Seed *uint64
}

// NewRequest fills a request from cfg.
func NewRequest(cfg Config, facts, testSet string, count int) GenerationRequest {
	if strings.TrimSpace(testSet) == "" {
		testSet = DefaultTestSet
	}
	return GenerationRequest{
		Facts:       facts,
		Count:       count,
		TestSet:     testSet,
		BatchSize:   cfg.BatchSize,
		MaxRetries:  cfg.MaxRetries,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		Seed:        cfg.Seed,
	}
}

// Validate checks field ranges.
func (r GenerationRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) && len(errs) > 0 {
			fe := errs[0]
			return fmt.Errorf("invalid request: %s failed %q (got %v)", fe.Field(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid request: %w", err)
	}
	if strings.TrimSpace(r.Facts) == "" {
		return fmt.Errorf("invalid request: Facts is blank")
	}
	return nil
}

// Batches returns how many batches the request splits into.
func (r GenerationRequest) Batches() int {
	if r.BatchSize <= 0 {
		return 0
	}
	return (r.Count + r.BatchSize - 1) / r.BatchSize
}
