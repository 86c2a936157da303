package llm

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// countingProvider tracks the peak number of concurrent Generate calls.
type countingProvider struct {
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (c *countingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	n := c.inFlight.Add(1)
	defer c.inFlight.Add(-1)
	for {
		p := c.peak.Load()
		if n <= p || c.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	return &Response{Content: []byte("[]"), Model: "counting"}, nil
}

func (c *countingProvider) ModelID() string { return "counting" }

func runConcurrently(p Provider, n int) {
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = p.Generate(context.Background(), Request{})
		}()
	}
	wg.Wait()
}

func TestExclusive_SingleReplicaSerializes(t *testing.T) {
	inner := &countingProvider{}
	runConcurrently(WithExclusive(inner, 1), 6)
	assert.Equal(t, int32(1), inner.peak.Load())
}

func TestExclusive_ReplicasBoundConcurrency(t *testing.T) {
	inner := &countingProvider{}
	runConcurrently(WithExclusive(inner, 2), 10)
	assert.LessOrEqual(t, inner.peak.Load(), int32(2))
}

func TestExclusive_ZeroReplicasMeansOne(t *testing.T) {
	inner := &countingProvider{}
	runConcurrently(WithExclusive(inner, 0), 4)
	assert.Equal(t, int32(1), inner.peak.Load())
}

func TestExclusive_QueuedCallerHonoursContext(t *testing.T) {
	mock := NewMockProvider(TextResponse("[]"))
	mock.Delay = 200 * time.Millisecond
	p := WithExclusive(mock, 1)

	go func() { _, _ = p.Generate(context.Background(), Request{}) }()
	time.Sleep(10 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := p.Generate(ctx, Request{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
