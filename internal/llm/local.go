package llm

import (
	"context"
	"fmt"
	"strings"
)

const defaultLocalBaseURL = "http://localhost:11434/v1"

// LocalProvider talks to a self-hosted OpenAI-compatible inference server.
// The model is addressed by its location (LocalConfig.ModelPath); Load
// confirms the server actually serves it before the first inference.
type LocalProvider struct {
	*OpenAIProvider
}

// NewLocalProvider creates a provider for a local inference server. It does
// not contact the server; call Load for that.
func NewLocalProvider(cfg LocalConfig) (*LocalProvider, error) {
	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("local model path is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultLocalBaseURL
	}

	inner, err := newOpenAIProviderRaw(OpenAIConfig{
		APIKey:  cfg.APIKey,
		Model:   cfg.ModelPath,
		BaseURL: baseURL,
	})
	if err != nil {
		return nil, err
	}
	inner.legacyMaxTokens = true

	return &LocalProvider{OpenAIProvider: inner}, nil
}

// Load lists the models the server has available and fails if the
// configured model is not among them.
func (p *LocalProvider) Load(ctx context.Context) error {
	list, err := p.client.ListModels(ctx)
	if err != nil {
		return mapOpenAIError(err)
	}

	var served []string
	for _, m := range list.Models {
		if m.ID == p.model {
			return nil
		}
		served = append(served, m.ID)
	}
	return fmt.Errorf("model %q not served (available: %s)", p.model, strings.Join(served, ", "))
}
