package judgment

import "math"

// WeightedScore combines three passing signal levels into a continuous score
// bounded to [0, 4].
func WeightedScore(visit, duration, depth Level, w Weights) float64 {
	score := float64(visit)*w.Visit + float64(duration)*w.Duration + float64(depth)*w.Depth
	return math.Max(0, math.Min(score, float64(LevelExtreme)))
}

// CorrectionRule names a priority-protection rule
type CorrectionRule string

const (
	// RuleVisitBaselineCap caps the level at 1 when visit count is at level 0
	RuleVisitBaselineCap CorrectionRule = "visit_level0_cap"

	// RuleVisitLightCap caps the level at 2 when visit count is at level 1
	RuleVisitLightCap CorrectionRule = "visit_level1_cap"

	// RuleDurationDemotion lowers the level by one when duration is at level 0
	RuleDurationDemotion CorrectionRule = "duration_level0_demotion"
)

// Correction records one priority-protection rule that changed the level
type Correction struct {
	Rule CorrectionRule `json:"rule"`
	From Level          `json:"from"`
	To   Level          `json:"to"`
}

// ApplyPriorityProtection rounds score and applies the priority rules in
// order, each against the level left by the previous one. The rules only ever
// lower the rounded level.
func ApplyPriorityProtection(score float64, visit, duration Level) (Level, []Correction) {
	var corrections []Correction
	level := Level(math.Round(score))

	apply := func(rule CorrectionRule, to Level) {
		corrections = append(corrections, Correction{Rule: rule, From: level, To: to})
		level = to
	}

	if visit == LevelBaseline && level > LevelLight {
		apply(RuleVisitBaselineCap, LevelLight)
	}
	if visit == LevelLight && level > LevelModerate {
		apply(RuleVisitLightCap, LevelModerate)
	}
	if duration == LevelBaseline && level > LevelLight {
		apply(RuleDurationDemotion, max(LevelBaseline, level-1))
	}

	return clampLevel(level), corrections
}

// Confidence is the weighted mean of each signal's value-to-threshold ratio,
// each ratio capped at 1. It measures how far past their own bar the signals
// landed rather than which bar they reached.
func Confidence(details DetailResults, w Weights) float64 {
	conf := thresholdRatio(details.VisitCount)*w.Visit +
		thresholdRatio(details.BrowseDuration)*w.Duration +
		thresholdRatio(details.BrowseDepth)*w.Depth
	return clamp01(conf)
}

func thresholdRatio(j SignalJudgment) float64 {
	if j.Threshold <= 0 {
		return 1
	}
	return math.Min(1, j.Value/j.Threshold)
}

// ExceededInfo describes how far a signal landed past its achieved threshold
type ExceededInfo struct {
	Multiple float64 `json:"multiple"`
	Exceeded float64 `json:"exceeded"`
}

// ThresholdExceededInfo holds ExceededInfo for every signal
type ThresholdExceededInfo struct {
	VisitCount     ExceededInfo `json:"visitCount"`
	BrowseDuration ExceededInfo `json:"browseDuration"`
	BrowseDepth    ExceededInfo `json:"browseDepth"`
}

func exceeded(j SignalJudgment) ExceededInfo {
	multiple := 1.0
	if j.Threshold > 0 {
		multiple = j.Value / j.Threshold
	}
	return ExceededInfo{
		Multiple: multiple,
		Exceeded: j.Value - j.Threshold,
	}
}

func exceededInfo(details DetailResults) ThresholdExceededInfo {
	return ThresholdExceededInfo{
		VisitCount:     exceeded(details.VisitCount),
		BrowseDuration: exceeded(details.BrowseDuration),
		BrowseDepth:    exceeded(details.BrowseDepth),
	}
}
