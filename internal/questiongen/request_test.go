package questiongen

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerationRequest_Validate(t *testing.T) {
	valid := func() GenerationRequest { return NewRequest(DefaultConfig(), "facts", "T", 10) }

	tests := []struct {
		name    string
		mutate  func(r *GenerationRequest)
		wantErr string
	}{
		{"valid", func(*GenerationRequest) {}, ""},
		{"zero count", func(r *GenerationRequest) { r.Count = 0 }, "Count"},
		{"too many", func(r *GenerationRequest) { r.Count = 51 }, "Count"},
		{"no facts", func(r *GenerationRequest) { r.Facts = "" }, "Facts"},
		{"blank facts", func(r *GenerationRequest) { r.Facts = "  \n" }, "Facts"},
		{"no test set", func(r *GenerationRequest) { r.TestSet = "" }, "TestSet"},
		{"zero batch", func(r *GenerationRequest) { r.BatchSize = 0 }, "BatchSize"},
		{"zero retries", func(r *GenerationRequest) { r.MaxRetries = 0 }, "MaxRetries"},
		{"hot temperature", func(r *GenerationRequest) { r.Temperature = 2.5 }, "Temperature"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid()
			tt.mutate(&r)
			err := r.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestNewRequest_Defaults(t *testing.T) {
	r := NewRequest(DefaultConfig(), "facts", " ", 10)
	assert.Equal(t, DefaultTestSet, r.TestSet)
	assert.Equal(t, 3, r.BatchSize)
	assert.Equal(t, 3, r.MaxRetries)
	assert.InDelta(t, 0.15, r.Temperature, 1e-9)
	assert.Equal(t, 4, r.Batches())
}

func TestRequestTimeout(t *testing.T) {
	assert.Equal(t, 12*time.Minute, RequestTimeout(10, 3, 3, time.Minute))
	assert.Equal(t, 3*time.Second, RequestTimeout(1, 3, 3, time.Second))
	assert.Zero(t, RequestTimeout(10, 3, 3, 0))
}
