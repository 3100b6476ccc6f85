package types

import (
	"testing"
	"time"
)

// TestFormat tests canonical formatting
func TestFormat(t *testing.T) {
	tests := []struct {
		input    time.Duration
		expected string
	}{
		{0, "0s"},
		{-time.Second, "0s"},
		{time.Second, "1s"},
		{90 * time.Second, "1m30s"},
		{time.Hour, "1h"},
		{time.Hour + 30*time.Second, "1h30s"},
		{3500 * time.Millisecond, "3.5s"},
		{250 * time.Millisecond, "0.25s"},
		{time.Hour + 2*time.Minute + 3500*time.Millisecond, "1h2m3.5s"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := Format(tt.input); got != tt.expected {
				t.Errorf("Format(%v) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestClampingArithmetic(t *testing.T) {
	if got := ClampSub(time.Second, 2*time.Second); got != 0 {
		t.Errorf("ClampSub = %v, want 0", got)
	}
	if got := ClampSub(3*time.Second, time.Second); got != 2*time.Second {
		t.Errorf("ClampSub = %v, want 2s", got)
	}
	if got := SaturatingAdd(MaxDuration, time.Second); got != MaxDuration {
		t.Errorf("SaturatingAdd = %v, want MaxDuration", got)
	}
}
