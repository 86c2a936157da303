package llm

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// ExclusiveProvider is a decorator that limits in-flight inference to the
// number of model replicas. With one replica, concurrent callers queue and
// are served one at a time.
type ExclusiveProvider struct {
	inner Provider
	sem   *semaphore.Weighted
}

// WithExclusive wraps a Provider so at most replicas calls run at once.
// replicas < 1 is treated as 1.
func WithExclusive(p Provider, replicas int) Provider {
	if replicas < 1 {
		replicas = 1
	}
	return &ExclusiveProvider{inner: p, sem: semaphore.NewWeighted(int64(replicas))}
}

func (e *ExclusiveProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := e.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer e.sem.Release(1)

	return e.inner.Generate(ctx, req)
}

func (e *ExclusiveProvider) ModelID() string {
	return e.inner.ModelID()
}
