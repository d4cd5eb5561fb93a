package judgment

import (
	"fmt"
	"strconv"
)

// SignalJudgment is the classification of one signal
type SignalJudgment struct {
	Signal Signal `json:"signal"`

	// Level is LevelNone when the floor was not met
	Level Level   `json:"level"`
	Value float64 `json:"value"`

	// Threshold is the achieved level's threshold, or the floor on failure
	Threshold float64 `json:"threshold"`

	// NextThreshold is the following level's threshold; equal to Threshold at
	// the top level
	NextThreshold float64 `json:"nextThreshold"`

	// Progress is the position of Value between Threshold and NextThreshold
	Progress float64 `json:"progress"`
	Reason   string  `json:"reason"`
}

// Passed reports whether the signal met its floor
func (j SignalJudgment) Passed() bool {
	return j.Level != LevelNone
}

// ClassifySignal maps value onto the highest level of table it satisfies.
// A value below the floor yields LevelNone with a reason citing the floor.
func ClassifySignal(s Signal, value float64, table ThresholdTable) SignalJudgment {
	floor := table.Floor()
	// Written as a negated >= so NaN fails the floor too.
	if !(value >= floor) {
		return SignalJudgment{
			Signal:        s,
			Level:         LevelNone,
			Value:         value,
			Threshold:     floor,
			NextThreshold: floor,
			Progress:      0,
			Reason: fmt.Sprintf("insufficient %s: %s%s (minimum %s%s)",
				s.Label(), formatValue(value), s.Unit(), formatValue(floor), s.Unit()),
		}
	}

	level := LevelBaseline
	for l := LevelExtreme; l >= LevelBaseline; l-- {
		if value >= table.At(l) {
			level = l
			break
		}
	}

	threshold := table.At(level)
	next := threshold
	progress := 1.0
	if level < LevelExtreme {
		next = table.At(level + 1)
		progress = interpolate(value, threshold, next)
	}

	return SignalJudgment{
		Signal:        s,
		Level:         level,
		Value:         value,
		Threshold:     threshold,
		NextThreshold: next,
		Progress:      progress,
		Reason: fmt.Sprintf("%s %s%s reached level %d (threshold %s%s)",
			s.Label(), formatValue(value), s.Unit(), int(level), formatValue(threshold), s.Unit()),
	}
}

// interpolate returns the clamped fraction of the way value is from lo to hi
func interpolate(value, lo, hi float64) float64 {
	span := hi - lo
	if span <= 0 {
		return 1
	}
	return clamp01((value - lo) / span)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
