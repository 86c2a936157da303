package questiongen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeFacts(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"bullets", "- a fact\n* another\n• third", "a fact\nanother\nthird"},
		{"numbered", "1. one\n2) two\n10. ten", "one\ntwo\nten"},
		{"blank lines dropped", "\n\n  fact  \n\n", "fact"},
		{"dedupe keeps first spelling", "Water is wet.\nwater is WET.\nIce is cold.", "Water is wet.\nIce is cold."},
		{"leading numbers kept", "3.5 million people live there.\n-5 degrees is cold.", "3.5 million people live there.\n-5 degrees is cold."},
		{"only markers", "-\n*\n1.", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeFacts(tt.raw))
		})
	}
}
