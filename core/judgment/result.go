package judgment

import (
	"encoding/json"
	"math"

	"bookmark-engagement/internal/errors"
)

// Metrics is the caller-supplied page-visit record
type Metrics struct {
	VisitCount     int     `json:"visitCount"`
	BrowseDuration float64 `json:"browseDuration"`
	BrowseDepth    float64 `json:"browseDepth"`
}

// Value returns the raw value of signal s
func (m Metrics) Value(s Signal) float64 {
	switch s {
	case SignalVisitCount:
		return float64(m.VisitCount)
	case SignalBrowseDuration:
		return m.BrowseDuration
	default:
		return m.BrowseDepth
	}
}

// Validate rejects negative or non-finite values. The engine itself treats
// such values as below the floor; Validate is for callers at an input
// boundary.
func (m Metrics) Validate() error {
	if m.VisitCount < 0 {
		return errors.Inputf("visitCount must not be negative, got %d", m.VisitCount)
	}
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"browseDuration", m.BrowseDuration},
		{"browseDepth", m.BrowseDepth},
	} {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return errors.Inputf("%s must be finite", f.name)
		}
		if f.value < 0 {
			return errors.Inputf("%s must not be negative, got %v", f.name, f.value)
		}
	}
	return nil
}

// DetailResults holds the per-signal judgments of a passing result
type DetailResults struct {
	VisitCount     SignalJudgment `json:"visitCount"`
	BrowseDuration SignalJudgment `json:"browseDuration"`
	BrowseDepth    SignalJudgment `json:"browseDepth"`
}

// Result is the outcome of a judgment: either *Failure or *Success
type Result interface {
	// Passed reports whether every signal met its floor
	Passed() bool

	// FinalLevel is the composite level, LevelNone for failures
	FinalLevel() Level

	isResult()
}

// Failure is returned as soon as one signal misses its floor. Later signals
// are not evaluated.
type Failure struct {
	Reason       string         `json:"reason"`
	FailedMetric Signal         `json:"failedMetric"`
	Detail       SignalJudgment `json:"detail"`
	Metrics      Metrics        `json:"metrics"`
}

func (*Failure) Passed() bool      { return false }
func (*Failure) FinalLevel() Level { return LevelNone }
func (*Failure) isResult()         {}

// MarshalJSON adds the passed discriminator and the fixed -1 level
func (f *Failure) MarshalJSON() ([]byte, error) {
	type alias Failure
	return json.Marshal(struct {
		Passed bool  `json:"passed"`
		Level  Level `json:"level"`
		*alias
	}{false, LevelNone, (*alias)(f)})
}

// Success is returned when all three signals met their floors
type Success struct {
	Level                 Level                 `json:"level"`
	LevelName             string                `json:"levelName"`
	WeightedScore         float64               `json:"weightedScore"`
	Confidence            float64               `json:"confidence"`
	DetailResults         DetailResults         `json:"detailResults"`
	Metrics               Metrics               `json:"metrics"`
	ThresholdExceededInfo ThresholdExceededInfo `json:"thresholdExceededInfo"`

	// Corrections lists the priority rules that lowered the rounded score
	Corrections []Correction `json:"corrections,omitempty"`
}

func (*Success) Passed() bool        { return true }
func (s *Success) FinalLevel() Level { return s.Level }
func (*Success) isResult()           {}

// MarshalJSON adds the passed discriminator
func (s *Success) MarshalJSON() ([]byte, error) {
	type alias Success
	return json.Marshal(struct {
		Passed bool `json:"passed"`
		*alias
	}{true, (*alias)(s)})
}
