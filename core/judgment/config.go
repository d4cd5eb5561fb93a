package judgment

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"bookmark-engagement/internal/errors"
)

// ThresholdTable holds the ascending thresholds for levels 0..4 of one signal
type ThresholdTable [LevelCount]float64

// Floor returns the level-0 threshold
func (t ThresholdTable) Floor() float64 {
	return t[LevelBaseline]
}

// At returns the threshold for level l
func (t ThresholdTable) At(l Level) float64 {
	return t[l]
}

// Weights is a partition of unity across the three signals
type Weights struct {
	Visit    float64 `json:"visitCount" toml:"visit_count"`
	Duration float64 `json:"browseDuration" toml:"browse_duration"`
	Depth    float64 `json:"browseDepth" toml:"browse_depth"`
}

// For returns the weight of signal s
func (w Weights) For(s Signal) float64 {
	switch s {
	case SignalVisitCount:
		return w.Visit
	case SignalBrowseDuration:
		return w.Duration
	case SignalBrowseDepth:
		return w.Depth
	}
	return 0
}

// JudgmentConfig is the static configuration of an engine
type JudgmentConfig struct {
	VisitCount     ThresholdTable
	BrowseDuration ThresholdTable
	BrowseDepth    ThresholdTable
	Weights        Weights
	LevelNames     [LevelCount]string
}

// DefaultConfig returns the built-in thresholds, weights and level names
func DefaultConfig() JudgmentConfig {
	return JudgmentConfig{
		VisitCount:     ThresholdTable{3, 5, 8, 12, 20},
		BrowseDuration: ThresholdTable{30, 60, 90, 120, 180},
		BrowseDepth:    ThresholdTable{1.5, 3, 5, 8, 12},
		Weights: Weights{
			Visit:    0.5,
			Duration: 0.3,
			Depth:    0.2,
		},
		LevelNames: [LevelCount]string{
			"Baseline Attention",
			"Light Attention",
			"Moderate Attention",
			"High Attention",
			"Extreme Attention",
		},
	}
}

// Table returns the threshold table for signal s
func (c JudgmentConfig) Table(s Signal) ThresholdTable {
	switch s {
	case SignalVisitCount:
		return c.VisitCount
	case SignalBrowseDuration:
		return c.BrowseDuration
	default:
		return c.BrowseDepth
	}
}

// SetTable replaces the threshold table for signal s
func (c *JudgmentConfig) SetTable(s Signal, t ThresholdTable) {
	switch s {
	case SignalVisitCount:
		c.VisitCount = t
	case SignalBrowseDuration:
		c.BrowseDuration = t
	case SignalBrowseDepth:
		c.BrowseDepth = t
	}
}

// LevelName returns the display name of l, or "" for LevelNone
func (c JudgmentConfig) LevelName(l Level) string {
	if !l.Valid() {
		return ""
	}
	return c.LevelNames[l]
}

// Validate reports every violation in c. A non-nil error is always a
// CONFIG_ERROR; the individual violations are available via multierr.Errors.
func (c JudgmentConfig) Validate() error {
	var errs error

	for _, s := range Signals() {
		errs = multierr.Append(errs, validateTable(s, c.Table(s)))
	}
	errs = multierr.Append(errs, validateWeights(c.Weights))

	for i, name := range c.LevelNames {
		if name == "" {
			errs = multierr.Append(errs, fmt.Errorf("level %d has no display name", i))
		}
	}

	if errs != nil {
		return errors.Config("invalid judgment configuration", errs)
	}
	return nil
}

func validateTable(s Signal, t ThresholdTable) error {
	var errs error
	for i, v := range t {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			errs = multierr.Append(errs, fmt.Errorf("%s level %d threshold is not finite", s, i))
		}
	}
	if errs != nil {
		return errs
	}

	if t.Floor() < 0 {
		errs = multierr.Append(errs, fmt.Errorf("%s floor %v is negative", s, t.Floor()))
	}
	for i := 0; i < LevelCount-1; i++ {
		if !(t[i] < t[i+1]) {
			errs = multierr.Append(errs, fmt.Errorf("%s thresholds not ascending at level %d: %v >= %v", s, i+1, t[i], t[i+1]))
		}
	}
	return errs
}

func validateWeights(w Weights) error {
	var errs error
	for _, s := range Signals() {
		v := w.For(s)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			errs = multierr.Append(errs, fmt.Errorf("%s weight is not finite", s))
			continue
		}
		if v < 0 || v > 1 {
			errs = multierr.Append(errs, fmt.Errorf("%s weight %v outside [0, 1]", s, v))
		}
	}
	if errs != nil {
		return errs
	}

	// Summed in decimal so 0.1+0.2+0.7 is exactly one.
	sum := decimal.NewFromFloat(w.Visit).
		Add(decimal.NewFromFloat(w.Duration)).
		Add(decimal.NewFromFloat(w.Depth))
	if !sum.Equal(decimal.NewFromInt(1)) {
		return fmt.Errorf("weights sum to %s, want 1", sum.String())
	}
	return nil
}
