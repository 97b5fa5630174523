package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"k8s.io/utils/ptr"
)

func TestDecodeVisibilityCode(t *testing.T) {
	tests := []struct {
		code     string
		expected *float64
	}{
		{"00", ptr.To(0.0)},
		{"05", ptr.To(0.5)},
		{"50", ptr.To(5.0)},
		{"51", nil},
		{"55", nil},
		{"56", ptr.To(6.0)},
		{"65", ptr.To(15.0)},
		{"80", ptr.To(30.0)},
		{"81", ptr.To(35.0)},
		{"88", ptr.To(70.0)},
		{"89", ptr.To(75.0)},
		{"90", ptr.To(0.05)},
		{"91", ptr.To(0.05)},
		{"92", ptr.To(0.2)},
		{"93", ptr.To(0.5)},
		{"94", ptr.To(1.0)},
		{"95", ptr.To(2.0)},
		{"96", ptr.To(4.0)},
		{"97", ptr.To(10.0)},
		{"98", ptr.To(20.0)},
		{"99", ptr.To(50.0)},
		{"XX", nil},
		{"6X", nil},
		{"", nil},
		{"5", nil},
		{"100", nil},
		{"-1", nil},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			km, ok := DecodeVisibilityCode(tt.code)
			if tt.expected == nil {
				assert.False(t, ok)
				return
			}
			assert.True(t, ok)
			assert.InDelta(t, *tt.expected, km, 1e-9)
		})
	}
}
