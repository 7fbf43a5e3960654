package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(hour, min int) time.Time {
	return time.Date(2025, 6, 1, hour, min, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd time.Time
		want                       bool
	}{
		{"identical", at(10, 0), at(11, 0), at(10, 0), at(11, 0), true},
		{"contained", at(10, 0), at(11, 0), at(10, 15), at(10, 45), true},
		{"partial overlap", at(10, 0), at(11, 0), at(10, 30), at(11, 30), true},
		{"touching boundary", at(10, 0), at(11, 0), at(11, 0), at(12, 0), false},
		{"touching boundary reversed", at(11, 0), at(12, 0), at(10, 0), at(11, 0), false},
		{"disjoint", at(10, 0), at(11, 0), at(12, 0), at(13, 0), false},
		{"one minute shared", at(10, 0), at(11, 0), at(10, 59), at(12, 0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd))
			// Overlap is symmetric.
			assert.Equal(t, tt.want, Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd))
		})
	}
}

func TestOverlapsZeroLength(t *testing.T) {
	// Strict inequalities: a zero-length interval never overlaps itself, but
	// one strictly inside a longer window does overlap it.
	assert.False(t, Overlaps(at(10, 0), at(10, 0), at(10, 0), at(10, 0)))
	assert.True(t, Overlaps(at(10, 0), at(10, 0), at(9, 0), at(11, 0)))
	assert.True(t, Overlaps(at(9, 0), at(11, 0), at(10, 0), at(10, 0)))
}

func TestContains(t *testing.T) {
	start, end := at(10, 0), at(11, 0)

	assert.True(t, Contains(start, end, at(10, 0)), "start is inside")
	assert.True(t, Contains(start, end, at(10, 30)))
	assert.False(t, Contains(start, end, at(11, 0)), "end is outside")
	assert.False(t, Contains(start, end, at(9, 59)))
	assert.False(t, Contains(start, end, at(11, 1)))
}
