package judgment

import (
	"math"
	"strings"
	"testing"
)

// TestClassifySignalBoundariesAreInclusive checks that hitting a threshold
// exactly reaches that level
func TestClassifySignalBoundariesAreInclusive(t *testing.T) {
	cfg := DefaultConfig()

	for _, s := range Signals() {
		table := cfg.Table(s)
		for l := LevelBaseline; l <= LevelExtreme; l++ {
			j := ClassifySignal(s, table.At(l), table)
			if j.Level != l {
				t.Errorf("%s at threshold %v: expected level %d, got %d", s, table.At(l), l, j.Level)
			}
			if j.Threshold != table.At(l) {
				t.Errorf("%s level %d: expected threshold %v, got %v", s, l, table.At(l), j.Threshold)
			}
			if j.Progress != 0 && l < LevelExtreme {
				t.Errorf("%s exactly at level %d threshold should have zero progress, got %v", s, l, j.Progress)
			}
		}
	}
}

func TestClassifySignalBelowFloor(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name   string
		signal Signal
		value  float64
		reason string
	}{
		{"visits one short", SignalVisitCount, 2, "insufficient visit count: 2 (minimum 3)"},
		{"zero duration", SignalBrowseDuration, 0, "insufficient browse duration: 0s (minimum 30s)"},
		{"negative duration", SignalBrowseDuration, -5, "insufficient browse duration: -5s (minimum 30s)"},
		{"shallow scroll", SignalBrowseDepth, 1.49, "insufficient browse depth: 1.49 screens (minimum 1.5 screens)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := ClassifySignal(tt.signal, tt.value, cfg.Table(tt.signal))
			if j.Passed() {
				t.Fatalf("expected %v to fail the floor", tt.value)
			}
			if j.Level != LevelNone {
				t.Errorf("expected LevelNone, got %d", j.Level)
			}
			if j.Reason != tt.reason {
				t.Errorf("expected reason %q, got %q", tt.reason, j.Reason)
			}
		})
	}
}

func TestClassifySignalNaNFailsFloor(t *testing.T) {
	j := ClassifySignal(SignalBrowseDepth, math.NaN(), DefaultConfig().BrowseDepth)
	if j.Passed() {
		t.Error("NaN must not pass the floor")
	}
}

func TestClassifySignalProgress(t *testing.T) {
	table := DefaultConfig().VisitCount // 3, 5, 8, 12, 20

	tests := []struct {
		value    float64
		level    Level
		next     float64
		progress float64
	}{
		{4, LevelBaseline, 5, 0.5},
		{6, LevelLight, 8, 1.0 / 3.0},
		{10, LevelModerate, 12, 0.5},
		{16, LevelHigh, 20, 0.5},
		{20, LevelExtreme, 20, 1},
		{500, LevelExtreme, 20, 1},
	}

	for _, tt := range tests {
		j := ClassifySignal(SignalVisitCount, tt.value, table)
		if j.Level != tt.level {
			t.Errorf("value %v: expected level %d, got %d", tt.value, tt.level, j.Level)
		}
		if j.NextThreshold != tt.next {
			t.Errorf("value %v: expected next threshold %v, got %v", tt.value, tt.next, j.NextThreshold)
		}
		if math.Abs(j.Progress-tt.progress) > 1e-12 {
			t.Errorf("value %v: expected progress %v, got %v", tt.value, tt.progress, j.Progress)
		}
		if !strings.Contains(j.Reason, "reached level") {
			t.Errorf("value %v: unexpected reason %q", tt.value, j.Reason)
		}
	}
}

func TestInterpolateDegenerateSpan(t *testing.T) {
	if got := interpolate(5, 5, 5); got != 1 {
		t.Errorf("zero span should count as complete, got %v", got)
	}
	if got := interpolate(0, 1, 3); got != 0 {
		t.Errorf("values below the span clamp to 0, got %v", got)
	}
	if got := interpolate(9, 1, 3); got != 1 {
		t.Errorf("values above the span clamp to 1, got %v", got)
	}
}
