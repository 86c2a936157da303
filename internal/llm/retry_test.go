package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: time.Millisecond,
		MaxWait:     5 * time.Millisecond,
		Multiplier:  2.0,
	}
}

func down() MockResponse {
	return MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("connection refused")}}
}

func TestRetry_FirstAttempt(t *testing.T) {
	mock := NewMockProvider(TextResponse(`[]`))
	resp, err := WithRetry(mock, fastRetry(), nil).Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, `[]`, resp.Text())
	assert.Equal(t, 1, mock.CallCount())
}

func TestRetry_TransientThenSuccess(t *testing.T) {
	mock := NewMockProvider(down(), TextResponse(`[]`))
	_, err := WithRetry(mock, fastRetry(), nil).Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, 2, mock.CallCount())
}

func TestRetry_GivesUpAfterMaxAttempts(t *testing.T) {
	mock := NewMockProvider(down(), down(), down(), TextResponse(`[]`))
	_, err := WithRetry(mock, fastRetry(), nil).Generate(context.Background(), Request{})
	require.Error(t, err)
	assert.Equal(t, 3, mock.CallCount())
}

func TestRetry_MaxTokensNotRetried(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: &ErrMaxTokensExceeded{Content: json.RawMessage(`[{"question`)}})
	_, err := WithRetry(mock, fastRetry(), nil).Generate(context.Background(), Request{})
	var maxTok *ErrMaxTokensExceeded
	assert.ErrorAs(t, err, &maxTok)
	assert.Equal(t, 1, mock.CallCount())
}

func TestRetry_ModelLoadNotRetried(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: &ErrModelLoad{Model: "qwen", Err: errors.New("not served")}})
	_, err := WithRetry(mock, fastRetry(), nil).Generate(context.Background(), Request{})
	var loadErr *ErrModelLoad
	assert.ErrorAs(t, err, &loadErr)
	assert.Equal(t, 1, mock.CallCount())
}

func TestRetry_InvalidResponseLeftToCaller(t *testing.T) {
	bad := MockResponse{Err: &ErrInvalidResponse{Content: json.RawMessage(`nope`), Err: errors.New("bad")}}
	mock := NewMockProvider(bad, TextResponse(`[]`))
	_, err := WithRetry(mock, fastRetry(), nil).Generate(context.Background(), Request{})
	var invalid *ErrInvalidResponse
	assert.ErrorAs(t, err, &invalid)
	assert.Equal(t, 1, mock.CallCount())
}

func TestRetry_CancelledContext(t *testing.T) {
	mock := NewMockProvider(down(), down(), TextResponse(`[]`))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := WithRetry(mock, fastRetry(), nil).Generate(ctx, Request{})
	assert.Error(t, err)
}

func TestRetry_RateLimitRetryAfter(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrRateLimit{RetryAfter: time.Millisecond, Err: errors.New("429")}},
		TextResponse(`[]`),
	)
	_, err := WithRetry(mock, fastRetry(), nil).Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, 2, mock.CallCount())
}

func TestRetry_ModelIDDelegates(t *testing.T) {
	assert.Equal(t, "mock", WithRetry(NewMockProvider(), fastRetry(), nil).ModelID())
}

func TestRetry_ZeroAttemptsMeansOne(t *testing.T) {
	mock := NewMockProvider(down(), TextResponse(`[]`))
	_, err := WithRetry(mock, RetryConfig{}, nil).Generate(context.Background(), Request{})
	require.Error(t, err)
	assert.Equal(t, 1, mock.CallCount())
}

func TestRetry_BackoffBounds(t *testing.T) {
	r := &RetryProvider{config: RetryConfig{
		MaxAttempts: 5,
		InitialWait: 100 * time.Millisecond,
		MaxWait:     300 * time.Millisecond,
		Multiplier:  2,
	}}
	transient := errors.New("reset")

	for range 20 {
		first := r.backoff(1, transient)
		assert.GreaterOrEqual(t, first, 80*time.Millisecond)
		assert.LessOrEqual(t, first, 120*time.Millisecond)

		capped := r.backoff(4, transient)
		assert.LessOrEqual(t, capped, 360*time.Millisecond)
	}

	rl := &ErrRateLimit{RetryAfter: time.Minute, Err: errors.New("429")}
	assert.Equal(t, 300*time.Millisecond, r.backoff(1, rl))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorClass
	}{
		{&ErrRateLimit{Err: errors.New("429")}, ClassTransient},
		{&ErrProviderUnavailable{}, ClassTransient},
		{errors.New("connection reset"), ClassTransient},
		{&ErrInvalidResponse{Err: errors.New("bad")}, ClassOutput},
		{&ErrMaxTokensExceeded{}, ClassOutput},
		{&ErrModelLoad{Model: "m", Err: errors.New("x")}, ClassFatal},
		{context.Canceled, ClassFatal},
		{fmt.Errorf("call: %w", context.DeadlineExceeded), ClassFatal},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}
