package llm

import (
	"context"
	"sync"
)

// LoadState is the lifecycle state of a lazily initialized model.
type LoadState int

const (
	StateUnloaded LoadState = iota
	StateLoading
	StateReady
	StateFailed
)

func (s LoadState) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Loader initializes the underlying provider. It runs at most once per
// load cycle no matter how many callers arrive concurrently.
type Loader func(ctx context.Context) (Provider, error)

// LazyProvider defers model initialization to the first Generate call.
// Callers that arrive while a load is in flight wait for it instead of
// starting their own. A failed load is reported to everyone waiting on it;
// the next call after that starts a fresh load.
type LazyProvider struct {
	model string
	load  Loader

	mu    sync.Mutex
	state LoadState
	done  chan struct{} // closed when the in-flight load finishes
	inner Provider
	err   error
}

// NewLazyProvider wraps load. model is reported by ModelID before loading.
func NewLazyProvider(model string, load Loader) *LazyProvider {
	return &LazyProvider{model: model, load: load}
}

func (l *LazyProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	p, err := l.acquire(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := p.Generate(ctx, req)
	if r, ok := p.(Releaser); ok {
		r.Release()
	}
	return resp, err
}

func (l *LazyProvider) ModelID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.inner != nil {
		return l.inner.ModelID()
	}
	return l.model
}

// State reports the current lifecycle state.
func (l *LazyProvider) State() LoadState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *LazyProvider) acquire(ctx context.Context) (Provider, error) {
	for {
		l.mu.Lock()
		switch l.state {
		case StateReady:
			p := l.inner
			l.mu.Unlock()
			return p, nil

		case StateLoading:
			done := l.done
			l.mu.Unlock()
			select {
			case <-done:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			l.mu.Lock()
			if l.state == StateFailed && l.done == done {
				err := l.err
				l.mu.Unlock()
				return nil, err
			}
			l.mu.Unlock()

		default: // StateUnloaded, StateFailed
			l.state = StateLoading
			l.done = make(chan struct{})
			l.mu.Unlock()
			return l.runLoad(ctx)
		}
	}
}

func (l *LazyProvider) runLoad(ctx context.Context) (Provider, error) {
	p, err := l.load(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	defer close(l.done)

	if err != nil {
		l.state = StateFailed
		l.err = &ErrModelLoad{Model: l.model, Err: err}
		return nil, l.err
	}
	l.state = StateReady
	l.inner = p
	l.err = nil
	return p, nil
}
