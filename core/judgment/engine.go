package judgment

import (
	"fmt"
	"sync/atomic"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Engine is the engagement-level judgment engine. Its configuration is fixed
// at construction, so Judge is safe for concurrent use.
type Engine struct {
	cfg    JudgmentConfig
	logger *zap.Logger
	debug  atomic.Bool
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the logger used when debug mode is on
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithDebug sets the initial debug mode
func WithDebug(enabled bool) Option {
	return func(e *Engine) {
		e.debug.Store(enabled)
	}
}

// NewEngine validates cfg and returns an engine for it
func NewEngine(cfg JudgmentConfig, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:    cfg,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// MustNewEngine is like NewEngine but panics on invalid configuration
func MustNewEngine(cfg JudgmentConfig, opts ...Option) *Engine {
	e, err := NewEngine(cfg, opts...)
	if err != nil {
		panic(err)
	}
	return e
}

// NewDefaultEngine returns an engine over DefaultConfig
func NewDefaultEngine(opts ...Option) *Engine {
	return MustNewEngine(DefaultConfig(), opts...)
}

// Config returns a copy of the engine configuration
func (e *Engine) Config() JudgmentConfig {
	return e.cfg
}

// SetDebugMode toggles per-stage debug logging. It never changes results.
func (e *Engine) SetDebugMode(enabled bool) {
	e.debug.Store(enabled)
}

// DebugMode reports whether debug logging is on
func (e *Engine) DebugMode() bool {
	return e.debug.Load()
}

// Judge classifies m. Signals are checked in priority order and the first one
// below its floor ends the judgment with a *Failure.
func (e *Engine) Judge(m Metrics) Result {
	debug := e.debug.Load()

	var judged [3]SignalJudgment
	for i, s := range Signals() {
		j := ClassifySignal(s, m.Value(s), e.cfg.Table(s))
		if debug {
			e.logger.Debug("signal classified",
				zap.String("signal", string(s)),
				zap.Float64("value", j.Value),
				zap.Int("level", int(j.Level)),
				zap.Float64("progress", j.Progress),
			)
		}
		if !j.Passed() {
			if debug {
				e.logger.Debug("judgment failed", zap.String("failed_metric", string(s)), zap.String("reason", j.Reason))
			}
			return &Failure{
				Reason:       j.Reason,
				FailedMetric: s,
				Detail:       j,
				Metrics:      m,
			}
		}
		judged[i] = j
	}

	details := DetailResults{
		VisitCount:     judged[0],
		BrowseDuration: judged[1],
		BrowseDepth:    judged[2],
	}

	w := e.cfg.Weights
	score := WeightedScore(details.VisitCount.Level, details.BrowseDuration.Level, details.BrowseDepth.Level, w)
	level, corrections := ApplyPriorityProtection(score, details.VisitCount.Level, details.BrowseDuration.Level)
	confidence := Confidence(details, w)

	if debug {
		for _, c := range corrections {
			e.logger.Debug("priority correction applied",
				zap.String("rule", string(c.Rule)),
				zap.Int("from", int(c.From)),
				zap.Int("to", int(c.To)),
			)
		}
		e.logger.Debug("judgment passed",
			zap.Float64("weighted_score", score),
			zap.Int("level", int(level)),
			zap.Float64("confidence", confidence),
		)
	}

	return &Success{
		Level:                 level,
		LevelName:             e.cfg.LevelName(level),
		WeightedScore:         score,
		Confidence:            confidence,
		DetailResults:         details,
		Metrics:               m,
		ThresholdExceededInfo: exceededInfo(details),
		Corrections:           corrections,
	}
}

// ThresholdsInfo is a read-only view of the engine configuration
type ThresholdsInfo struct {
	VisitCount     ThresholdTable     `json:"visitCount"`
	BrowseDuration ThresholdTable     `json:"browseDuration"`
	BrowseDepth    ThresholdTable     `json:"browseDepth"`
	Weights        Weights            `json:"weights"`
	LevelNames     [LevelCount]string `json:"levelNames"`
}

// ThresholdsInfo returns the current thresholds, weights and level names
func (e *Engine) ThresholdsInfo() ThresholdsInfo {
	return ThresholdsInfo{
		VisitCount:     e.cfg.VisitCount,
		BrowseDuration: e.cfg.BrowseDuration,
		BrowseDepth:    e.cfg.BrowseDepth,
		Weights:        e.cfg.Weights,
		LevelNames:     e.cfg.LevelNames,
	}
}

// ResultText formats r as one line. Failures yield their reason verbatim;
// successes yield the level name with the visit-count progress toward the next
// visit tier, e.g. "Moderate Attention (37.5%)".
func ResultText(r Result) string {
	switch res := r.(type) {
	case *Failure:
		return res.Reason
	case *Success:
		pct := decimal.NewFromFloat(res.DetailResults.VisitCount.Progress).Mul(decimal.NewFromInt(100))
		return fmt.Sprintf("%s (%s%%)", res.LevelName, pct.StringFixed(1))
	default:
		return ""
	}
}

// ResultText is a method form of the package-level ResultText
func (e *Engine) ResultText(r Result) string {
	return ResultText(r)
}
