package questiongen

import (
	"context"
	"errors"
	"strings"

	"github.com/mareeczka/test-generator-mvp/internal/llm"
	"github.com/mareeczka/test-generator-mvp/internal/logger"
	"github.com/mareeczka/test-generator-mvp/internal/store"
)

// LLMGenerator implements Generator using an LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
	log      *logger.Logger
	pipeline *Pipeline
}

// NewLLMGenerator creates an LLMGenerator. A nil provider yields a
// generator whose calls fail with ErrModelUnavailable. events may be nil.
func NewLLMGenerator(provider llm.Provider, cfg Config, log *logger.Logger, events store.EventRepo) *LLMGenerator {
	if log == nil {
		log = logger.Nop()
	}
	cfg = cfg.withDefaults()
	return &LLMGenerator{
		provider: provider,
		config:   cfg,
		log:      log,
		pipeline: NewPipeline(provider, cfg, log, events),
	}
}

// ExtractFacts asks the model for the facts stated in text.
func (g *LLMGenerator) ExtractFacts(ctx context.Context, text string) (string, error) {
	if g.provider == nil {
		return "", ErrModelUnavailable
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptySource
	}

	ctx = llm.WithPurpose(ctx, "fact-extraction")
	if g.config.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.config.CallTimeout)
		defer cancel()
	}

	resp, err := g.provider.Generate(ctx, llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: BuildFactsPrompt(text)},
		},
		MaxTokens:   g.config.FactsMaxTokens,
		Temperature: g.config.Temperature,
	})
	if err != nil {
		return "", &GenerationError{Op: "extract-facts", Err: err}
	}

	facts := normalizeFacts(resp.Text())
	if facts == "" {
		return "", &GenerationError{Op: "extract-facts", Err: errors.New("model returned no facts")}
	}
	g.log.Debug("facts extracted", "facts", facts, "lines", strings.Count(facts, "\n")+1)
	return facts, nil
}

// GenerateQuestions runs the batch pipeline and returns the questions.
func (g *LLMGenerator) GenerateQuestions(ctx context.Context, facts, testSet string, count int) ([]Question, error) {
	res, err := g.Generate(ctx, NewRequest(g.config, facts, testSet, count))
	if err != nil {
		return nil, err
	}
	return res.Questions, nil
}

// Generate runs req and returns the questions with per-batch reports.
func (g *LLMGenerator) Generate(ctx context.Context, req GenerationRequest) (*Result, error) {
	return g.pipeline.Run(ctx, req)
}
