package describe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOxfordize(t *testing.T) {
	tests := []struct {
		name        string
		things      []string
		conjunction string
		expected    string
	}{
		{"empty list", nil, "and", ""},
		{"single item", []string{"A"}, "and", "A"},
		{"two items", []string{"A", "B"}, "and", "A and B"},
		{"three items get the oxford comma", []string{"A", "B", "C"}, "and", "A, B, and C"},
		{"four items", []string{"A", "B", "C", "D"}, "and", "A, B, C, and D"},
		{"or conjunction", []string{"A", "B"}, "or", "A or B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Oxfordize(tt.things, tt.conjunction))
		})
	}
}
