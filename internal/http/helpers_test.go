package http

import (
	"testing"

	"github.com/usere2211-alt/finance-dashboard/internal/core"
)

func TestFormatEuros(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{0, "€0,00"},
		{5, "€0,05"},
		{123456, "€1234,56"},
		{-250, "-€2,50"},
	}
	for _, tt := range tests {
		if got := formatEuros(tt.cents); got != tt.want {
			t.Errorf("formatEuros(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("  a\x00b\tc\n "); got != "ab\tc" {
		t.Errorf("sanitizeInput() = %q", got)
	}
}

func TestBarWidth(t *testing.T) {
	tests := []struct {
		v, max int64
		want   int
	}{
		{0, 100, 0},
		{50, 100, 50},
		{1, 1000, 2},
		{200, 100, 100},
		{10, 0, 0},
	}
	for _, tt := range tests {
		if got := barWidth(tt.v, tt.max); got != tt.want {
			t.Errorf("barWidth(%d, %d) = %d, want %d", tt.v, tt.max, got, tt.want)
		}
	}
}

func TestStateMessage(t *testing.T) {
	if stateMessage(core.StateOK) != "" || stateMessage(core.StateEmpty) != "" {
		t.Error("non-degraded states should have no banner")
	}
	if stateMessage(core.StateCorrupt) == "" || stateMessage(core.StateUnavailable) == "" {
		t.Error("degraded states need a banner")
	}
}
