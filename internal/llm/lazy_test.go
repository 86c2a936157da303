package llm

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLazyProvider_LoadsOnceUnderConcurrency(t *testing.T) {
	mock := NewMockProvider()
	for range 8 {
		mock.AddResponse(TextResponse("[]"))
	}

	var loads atomic.Int32
	lazy := NewLazyProvider("mock", func(ctx context.Context) (Provider, error) {
		loads.Add(1)
		time.Sleep(20 * time.Millisecond)
		return mock, nil
	})
	assert.Equal(t, StateUnloaded, lazy.State())

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := lazy.Generate(context.Background(), Request{})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), loads.Load())
	assert.Equal(t, StateReady, lazy.State())
	assert.Equal(t, 8, mock.CallCount())
	assert.Equal(t, 8, mock.Releases())
}

func TestLazyProvider_FailureThenReload(t *testing.T) {
	mock := NewMockProvider(TextResponse("[]"))
	boom := errors.New("weights missing")

	var attempts atomic.Int32
	lazy := NewLazyProvider("qwen", func(ctx context.Context) (Provider, error) {
		if attempts.Add(1) == 1 {
			return nil, boom
		}
		return mock, nil
	})

	_, err := lazy.Generate(context.Background(), Request{})
	var loadErr *ErrModelLoad
	require.ErrorAs(t, err, &loadErr)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StateFailed, lazy.State())

	_, err = lazy.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, StateReady, lazy.State())
	assert.Equal(t, int32(2), attempts.Load())
}

func TestLazyProvider_WaiterSeesLoadFailure(t *testing.T) {
	release := make(chan struct{})
	lazy := NewLazyProvider("qwen", func(ctx context.Context) (Provider, error) {
		<-release
		return nil, errors.New("oom")
	})

	errs := make(chan error, 2)
	for range 2 {
		go func() {
			_, err := lazy.Generate(context.Background(), Request{})
			errs <- err
		}()
	}

	require.Eventually(t, func() bool { return lazy.State() == StateLoading }, time.Second, time.Millisecond)
	close(release)

	for range 2 {
		var loadErr *ErrModelLoad
		assert.ErrorAs(t, <-errs, &loadErr)
	}
}

func TestLazyProvider_WaiterHonoursContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	lazy := NewLazyProvider("qwen", func(ctx context.Context) (Provider, error) {
		<-release
		return NewMockProvider(), nil
	})

	go func() { _, _ = lazy.Generate(context.Background(), Request{}) }()
	require.Eventually(t, func() bool { return lazy.State() == StateLoading }, time.Second, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := lazy.Generate(ctx, Request{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLazyProvider_ModelID(t *testing.T) {
	lazy := NewLazyProvider("configured", func(ctx context.Context) (Provider, error) {
		return NewMockProvider(TextResponse("x")), nil
	})
	assert.Equal(t, "configured", lazy.ModelID())

	_, err := lazy.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "mock", lazy.ModelID())
}

func TestLoadState_String(t *testing.T) {
	assert.Equal(t, "loading", StateLoading.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "unknown", LoadState(42).String())
}
