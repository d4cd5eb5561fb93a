// Package judgment implements the engagement-level judgment engine.
//
// The engine scores page-visit behaviour (visit count, browse duration and
// scroll depth) into one of five attention levels. Each signal is classified
// against its own ascending threshold table, the per-signal levels are
// combined with fixed weights, and a set of priority-protection rules keeps a
// weak visit count or duration from being masked by the other signals.
package judgment

import "fmt"

// Level is a qualitative attention tier
type Level int

const (
	// LevelNone marks a signal that did not reach its floor
	LevelNone Level = -1

	// LevelBaseline is the lowest passing tier
	LevelBaseline Level = 0

	// LevelLight is tier 1
	LevelLight Level = 1

	// LevelModerate is tier 2
	LevelModerate Level = 2

	// LevelHigh is tier 3
	LevelHigh Level = 3

	// LevelExtreme is the highest tier
	LevelExtreme Level = 4
)

// LevelCount is the number of passing tiers
const LevelCount = 5

// Valid reports whether l is one of the five passing tiers
func (l Level) Valid() bool {
	return l >= LevelBaseline && l <= LevelExtreme
}

// String returns a stable identifier for the level
func (l Level) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelBaseline:
		return "baseline"
	case LevelLight:
		return "light"
	case LevelModerate:
		return "moderate"
	case LevelHigh:
		return "high"
	case LevelExtreme:
		return "extreme"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// clampLevel bounds l to the passing tiers
func clampLevel(l Level) Level {
	if l < LevelBaseline {
		return LevelBaseline
	}
	if l > LevelExtreme {
		return LevelExtreme
	}
	return l
}

// Signal identifies one measured behaviour
type Signal string

const (
	// SignalVisitCount is the number of visits in the recent window
	SignalVisitCount Signal = "visit_count"

	// SignalBrowseDuration is time on page in seconds
	SignalBrowseDuration Signal = "browse_duration"

	// SignalBrowseDepth is scroll depth in viewport heights
	SignalBrowseDepth Signal = "browse_depth"
)

// Signals returns all signals in priority order. Evaluation always follows
// this order.
func Signals() []Signal {
	return []Signal{SignalVisitCount, SignalBrowseDuration, SignalBrowseDepth}
}

// Label returns the human-readable name used in reasons
func (s Signal) Label() string {
	switch s {
	case SignalVisitCount:
		return "visit count"
	case SignalBrowseDuration:
		return "browse duration"
	case SignalBrowseDepth:
		return "browse depth"
	default:
		return string(s)
	}
}

// Unit returns the unit suffix used in reasons
func (s Signal) Unit() string {
	switch s {
	case SignalBrowseDuration:
		return "s"
	case SignalBrowseDepth:
		return " screens"
	default:
		return ""
	}
}
