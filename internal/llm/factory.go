package llm

import (
	"context"
	"fmt"

	"github.com/mareeczka/test-generator-mvp/internal/logger"
	"github.com/mareeczka/test-generator-mvp/internal/store"
)

// NewProvider creates a Provider from configuration. The backend is not
// contacted until the first call; the result is wrapped with the
// middleware chain caller → exclusive → retry → logging → lazy → base.
func NewProvider(cfg Config, eventRepo store.EventRepo, log *logger.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	load, model, err := loaderFor(cfg)
	if err != nil {
		return nil, err
	}

	lazy := NewLazyProvider(model, load)
	logged := WithLogging(lazy, cfg.Provider, eventRepo, log)
	retried := WithRetry(logged, cfg.Retry, log)

	return WithExclusive(retried, cfg.Replicas), nil
}

// loaderFor returns the initialization function for the configured backend
// along with the model name it will serve.
func loaderFor(cfg Config) (Loader, string, error) {
	switch cfg.Provider {
	case "anthropic":
		return func(context.Context) (Provider, error) {
			return NewAnthropicProvider(cfg.Anthropic)
		}, resolveModel(cfg.Anthropic.Model, anthropicModels), nil

	case "openai":
		return func(context.Context) (Provider, error) {
			return NewOpenAIProvider(cfg.OpenAI)
		}, resolveModel(cfg.OpenAI.Model, openaiModels), nil

	case "gemini":
		return func(ctx context.Context) (Provider, error) {
			return NewGeminiProvider(ctx, cfg.Gemini)
		}, resolveModel(cfg.Gemini.Model, geminiModels), nil

	case "openrouter":
		return func(context.Context) (Provider, error) {
			return NewOpenRouterProvider(cfg.OpenRouter)
		}, cfg.OpenRouter.Model, nil

	case "local":
		return func(ctx context.Context) (Provider, error) {
			p, err := NewLocalProvider(cfg.Local)
			if err != nil {
				return nil, err
			}
			if err := p.Load(ctx); err != nil {
				return nil, err
			}
			return p, nil
		}, cfg.Local.ModelPath, nil

	default:
		return nil, "", fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
}
