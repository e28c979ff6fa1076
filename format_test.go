package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   time.Duration
		want string
	}{
		{1500 * time.Millisecond, "1.5s"},
		{2 * time.Minute, "2m0s"},
		{37 * time.Millisecond, "37ms"},
		{999 * time.Microsecond, "1ms"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDuration(tt.in))
	}
}

func TestFormatUnix(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "-", formatUnix(0))
	assert.Equal(t, "2025-04-28 12:07:01", formatUnix(1745842021))
}
