package questiongen

import (
	"time"

	"github.com/mareeczka/test-generator-mvp/internal/llm"
	"github.com/mareeczka/test-generator-mvp/internal/logger"
	"github.com/mareeczka/test-generator-mvp/internal/store"
)

// Options selects and configures a Generator backend.
type Options struct {
	// UseMock selects the StubGenerator; Provider is ignored.
	UseMock bool

	// MockDelay is the stub's per-call delay.
	MockDelay time.Duration

	// Provider serves the model-backed generator. Nil makes every call
	// fail with ErrModelUnavailable.
	Provider llm.Provider

	Config Config
	Logger *logger.Logger

	// Events receives per-batch diagnostics. May be nil.
	Events store.EventRepo
}

// New returns the Generator selected by opts.
func New(opts Options) Generator {
	if opts.UseMock {
		return NewStubGenerator(opts.MockDelay, opts.Config.Seed)
	}
	return NewLLMGenerator(opts.Provider, opts.Config, opts.Logger, opts.Events)
}
