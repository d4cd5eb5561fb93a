package judgment

import (
	"encoding/json"
	"math"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func mustSuccess(t *testing.T, r Result) *Success {
	t.Helper()
	s, ok := r.(*Success)
	if !ok {
		t.Fatalf("expected *Success, got %T: %s", r, ResultText(r))
	}
	return s
}

func mustFailure(t *testing.T, r Result) *Failure {
	t.Helper()
	f, ok := r.(*Failure)
	if !ok {
		t.Fatalf("expected *Failure, got %T", r)
	}
	return f
}

func TestJudgeScenarios(t *testing.T) {
	engine := NewDefaultEngine()

	t.Run("all signals at the floor", func(t *testing.T) {
		s := mustSuccess(t, engine.Judge(Metrics{VisitCount: 3, BrowseDuration: 30, BrowseDepth: 1.5}))
		if s.Level != LevelBaseline {
			t.Errorf("expected level 0, got %d", s.Level)
		}
		if s.LevelName != "Baseline Attention" {
			t.Errorf("unexpected level name %q", s.LevelName)
		}
		if s.WeightedScore != 0 {
			t.Errorf("expected weighted score 0, got %v", s.WeightedScore)
		}
		if math.Abs(s.Confidence-1) > 1e-12 {
			t.Errorf("expected confidence 1, got %v", s.Confidence)
		}
		if s.ThresholdExceededInfo.BrowseDepth.Multiple != 1 || s.ThresholdExceededInfo.BrowseDepth.Exceeded != 0 {
			t.Errorf("unexpected exceeded info %+v", s.ThresholdExceededInfo.BrowseDepth)
		}
	})

	t.Run("visit count below floor", func(t *testing.T) {
		f := mustFailure(t, engine.Judge(Metrics{VisitCount: 2, BrowseDuration: 100, BrowseDepth: 5}))
		if f.FailedMetric != SignalVisitCount {
			t.Errorf("expected visit_count failure, got %s", f.FailedMetric)
		}
		if !strings.Contains(f.Reason, "visit count") {
			t.Errorf("reason should cite visit count: %q", f.Reason)
		}
		if f.FinalLevel() != LevelNone {
			t.Errorf("failures report level -1, got %d", f.FinalLevel())
		}
	})

	t.Run("all signals at the ceiling", func(t *testing.T) {
		s := mustSuccess(t, engine.Judge(Metrics{VisitCount: 20, BrowseDuration: 180, BrowseDepth: 12}))
		if s.Level != LevelExtreme {
			t.Errorf("expected level 4, got %d", s.Level)
		}
		if math.Abs(s.WeightedScore-4) > 1e-12 {
			t.Errorf("expected weighted score 4, got %v", s.WeightedScore)
		}
		if len(s.Corrections) != 0 {
			t.Errorf("expected no corrections, got %v", s.Corrections)
		}
	})

	t.Run("weak duration suppresses visit-driven score", func(t *testing.T) {
		s := mustSuccess(t, engine.Judge(Metrics{VisitCount: 20, BrowseDuration: 30, BrowseDepth: 1.5}))
		d := s.DetailResults
		if d.VisitCount.Level != LevelExtreme || d.BrowseDuration.Level != LevelBaseline || d.BrowseDepth.Level != LevelBaseline {
			t.Fatalf("unexpected per-signal levels %d/%d/%d", d.VisitCount.Level, d.BrowseDuration.Level, d.BrowseDepth.Level)
		}
		if s.WeightedScore != 2 {
			t.Errorf("expected weighted score 2, got %v", s.WeightedScore)
		}
		if s.Level != LevelLight {
			t.Errorf("expected level 1 after demotion, got %d", s.Level)
		}
		if len(s.Corrections) != 1 || s.Corrections[0].Rule != RuleDurationDemotion {
			t.Errorf("expected a single duration demotion, got %v", s.Corrections)
		}
	})

	t.Run("weak visit count caps strong engagement", func(t *testing.T) {
		s := mustSuccess(t, engine.Judge(Metrics{VisitCount: 3, BrowseDuration: 500, BrowseDepth: 20}))
		if s.Level > LevelLight {
			t.Errorf("visit level 0 must cap at 1, got %d", s.Level)
		}
	})

	t.Run("light visit count caps at moderate", func(t *testing.T) {
		s := mustSuccess(t, engine.Judge(Metrics{VisitCount: 5, BrowseDuration: 500, BrowseDepth: 20}))
		if s.Level != LevelModerate {
			t.Errorf("expected level 2, got %d", s.Level)
		}
	})
}

// TestJudgeFailsFastInPriorityOrder checks only the first insufficient
// signal is reported
func TestJudgeFailsFastInPriorityOrder(t *testing.T) {
	engine := NewDefaultEngine()

	tests := []struct {
		name    string
		metrics Metrics
		failed  Signal
	}{
		{"every signal short", Metrics{VisitCount: 0, BrowseDuration: 0, BrowseDepth: 0}, SignalVisitCount},
		{"visits and duration short", Metrics{VisitCount: 1, BrowseDuration: 10, BrowseDepth: 9}, SignalVisitCount},
		{"duration and depth short", Metrics{VisitCount: 8, BrowseDuration: 29.9, BrowseDepth: 0.2}, SignalBrowseDuration},
		{"only depth short", Metrics{VisitCount: 8, BrowseDuration: 90, BrowseDepth: 1}, SignalBrowseDepth},
		{"negative depth", Metrics{VisitCount: 8, BrowseDuration: 90, BrowseDepth: -1}, SignalBrowseDepth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := mustFailure(t, engine.Judge(tt.metrics))
			if f.FailedMetric != tt.failed {
				t.Errorf("expected %s, got %s", tt.failed, f.FailedMetric)
			}
			if f.Detail.Signal != tt.failed {
				t.Errorf("detail should describe %s, got %s", tt.failed, f.Detail.Signal)
			}
			if f.Metrics != tt.metrics {
				t.Errorf("metrics not carried through: %+v", f.Metrics)
			}
		})
	}
}

// TestJudgeMonotonic raises each signal while holding the others fixed
func TestJudgeMonotonic(t *testing.T) {
	engine := NewDefaultEngine()

	visits := []int{3, 4, 5, 7, 8, 11, 12, 19, 20, 40}
	durations := []float64{30, 45, 60, 89, 90, 119, 120, 179, 180, 900}
	depths := []float64{1.5, 2, 3, 4.9, 5, 7.9, 8, 11.9, 12, 50}

	level := func(m Metrics) Level {
		return mustSuccess(t, engine.Judge(m)).Level
	}

	for _, d := range durations {
		for _, p := range depths {
			prev := LevelNone
			for _, v := range visits {
				l := level(Metrics{VisitCount: v, BrowseDuration: d, BrowseDepth: p})
				if l < prev {
					t.Errorf("raising visits to %d (duration %v, depth %v) lowered level %d -> %d", v, d, p, prev, l)
				}
				prev = l
			}
		}
	}

	for _, v := range visits {
		for _, p := range depths {
			prev := LevelNone
			for _, d := range durations {
				l := level(Metrics{VisitCount: v, BrowseDuration: d, BrowseDepth: p})
				if l < prev {
					t.Errorf("raising duration to %v (visits %d, depth %v) lowered level %d -> %d", d, v, p, prev, l)
				}
				prev = l
			}
		}
	}

	for _, v := range visits {
		for _, d := range durations {
			prev := LevelNone
			for _, p := range depths {
				l := level(Metrics{VisitCount: v, BrowseDuration: d, BrowseDepth: p})
				if l < prev {
					t.Errorf("raising depth to %v (visits %d, duration %v) lowered level %d -> %d", p, v, d, prev, l)
				}
				prev = l
			}
		}
	}
}

func TestJudgeConfidenceAndScoreRanges(t *testing.T) {
	engine := NewDefaultEngine()

	for _, v := range []int{3, 9, 13, 1000} {
		for _, d := range []float64{30, 75, 3600} {
			for _, p := range []float64{1.5, 6, 200} {
				s := mustSuccess(t, engine.Judge(Metrics{VisitCount: v, BrowseDuration: d, BrowseDepth: p}))
				if s.Confidence < 0 || s.Confidence > 1 {
					t.Errorf("(%d,%v,%v): confidence %v outside [0,1]", v, d, p, s.Confidence)
				}
				if s.WeightedScore < 0 || s.WeightedScore > 4 {
					t.Errorf("(%d,%v,%v): weighted score %v outside [0,4]", v, d, p, s.WeightedScore)
				}
			}
		}
	}
}

// TestResultTextUsesVisitProgress pins the success format to the visit-count
// progress toward the next visit tier
func TestResultTextUsesVisitProgress(t *testing.T) {
	engine := NewDefaultEngine()

	tests := []struct {
		name     string
		metrics  Metrics
		expected string
	}{
		{"floor", Metrics{VisitCount: 3, BrowseDuration: 30, BrowseDepth: 1.5}, "Baseline Attention (0.0%)"},
		{"half way", Metrics{VisitCount: 10, BrowseDuration: 90, BrowseDepth: 5}, "Moderate Attention (50.0%)"},
		{"quarter", Metrics{VisitCount: 9, BrowseDuration: 90, BrowseDepth: 5}, "Moderate Attention (25.0%)"},
		{"third", Metrics{VisitCount: 6, BrowseDuration: 60, BrowseDepth: 3}, "Light Attention (33.3%)"},
		{"ceiling", Metrics{VisitCount: 20, BrowseDuration: 180, BrowseDepth: 12}, "Extreme Attention (100.0%)"},
		{"failure", Metrics{VisitCount: 2, BrowseDuration: 100, BrowseDepth: 5}, "insufficient visit count: 2 (minimum 3)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := engine.ResultText(engine.Judge(tt.metrics)); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}

	if got := ResultText(nil); got != "" {
		t.Errorf("nil result should format as empty, got %q", got)
	}
}

func TestThresholdsInfo(t *testing.T) {
	engine := NewDefaultEngine()
	info := engine.ThresholdsInfo()

	cfg := DefaultConfig()
	if info.VisitCount != cfg.VisitCount || info.BrowseDuration != cfg.BrowseDuration || info.BrowseDepth != cfg.BrowseDepth {
		t.Errorf("thresholds do not match configuration: %+v", info)
	}
	if info.Weights != cfg.Weights {
		t.Errorf("weights do not match configuration: %+v", info.Weights)
	}

	// The info is a copy
	info.VisitCount[0] = 100
	if engine.ThresholdsInfo().VisitCount[0] != 3 {
		t.Error("mutating ThresholdsInfo leaked into the engine")
	}
}

func TestCustomConfigIsInjected(t *testing.T) {
	cfg := DefaultConfig()
	cfg.VisitCount = ThresholdTable{1, 2, 3, 4, 5}

	engine, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := mustSuccess(t, engine.Judge(Metrics{VisitCount: 2, BrowseDuration: 30, BrowseDepth: 1.5}))
	if s.DetailResults.VisitCount.Level != LevelLight {
		t.Errorf("expected custom visit table to give level 1, got %d", s.DetailResults.VisitCount.Level)
	}

	// The default engine is untouched
	mustFailure(t, NewDefaultEngine().Judge(Metrics{VisitCount: 2, BrowseDuration: 30, BrowseDepth: 1.5}))
}

func TestNewEngineRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Weights.Depth = 0.3

	if _, err := NewEngine(cfg); err == nil {
		t.Fatal("expected error for weights summing to 1.1")
	}

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected MustNewEngine to panic")
		}
	}()
	MustNewEngine(cfg)
}

func TestDebugModeLogsWithoutChangingResults(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	engine := NewDefaultEngine(WithLogger(zap.New(core)))
	m := Metrics{VisitCount: 20, BrowseDuration: 30, BrowseDepth: 1.5}

	quiet := engine.Judge(m)
	if logs.Len() != 0 {
		t.Fatalf("expected no logs with debug off, got %d", logs.Len())
	}

	engine.SetDebugMode(true)
	if !engine.DebugMode() {
		t.Fatal("expected debug mode on")
	}
	loud := engine.Judge(m)

	if !reflect.DeepEqual(quiet, loud) {
		t.Error("debug mode changed the result")
	}
	if logs.FilterMessage("signal classified").Len() != 3 {
		t.Errorf("expected 3 classification entries, got %d", logs.FilterMessage("signal classified").Len())
	}
	if logs.FilterMessage("priority correction applied").Len() != 1 {
		t.Error("expected the duration demotion to be logged")
	}

	logs.TakeAll()
	engine.Judge(Metrics{VisitCount: 1})
	if logs.FilterMessage("judgment failed").Len() != 1 {
		t.Error("expected failure to be logged")
	}
}

func TestResultJSON(t *testing.T) {
	engine := NewDefaultEngine()

	failure, err := json.Marshal(engine.Judge(Metrics{VisitCount: 2, BrowseDuration: 100, BrowseDepth: 5}))
	if err != nil {
		t.Fatalf("marshal failure: %v", err)
	}
	var f map[string]interface{}
	if err := json.Unmarshal(failure, &f); err != nil {
		t.Fatalf("unmarshal failure: %v", err)
	}
	if f["passed"] != false || f["level"] != float64(-1) || f["failedMetric"] != "visit_count" {
		t.Errorf("unexpected failure JSON: %s", failure)
	}
	if _, ok := f["weightedScore"]; ok {
		t.Error("failure JSON must not carry a weighted score")
	}

	success, err := json.Marshal(engine.Judge(Metrics{VisitCount: 8, BrowseDuration: 90, BrowseDepth: 5}))
	if err != nil {
		t.Fatalf("marshal success: %v", err)
	}
	var s map[string]interface{}
	if err := json.Unmarshal(success, &s); err != nil {
		t.Fatalf("unmarshal success: %v", err)
	}
	if s["passed"] != true || s["level"] != float64(2) || s["levelName"] != "Moderate Attention" {
		t.Errorf("unexpected success JSON: %s", success)
	}
	for _, key := range []string{"weightedScore", "confidence", "detailResults", "metrics", "thresholdExceededInfo"} {
		if _, ok := s[key]; !ok {
			t.Errorf("success JSON missing %q", key)
		}
	}
}

func TestMetricsValidate(t *testing.T) {
	tests := []struct {
		name    string
		metrics Metrics
		ok      bool
	}{
		{"zeros", Metrics{}, true},
		{"typical", Metrics{VisitCount: 4, BrowseDuration: 62.5, BrowseDepth: 3.2}, true},
		{"negative visits", Metrics{VisitCount: -1}, false},
		{"negative duration", Metrics{BrowseDuration: -0.1}, false},
		{"infinite depth", Metrics{BrowseDepth: math.Inf(1)}, false},
		{"NaN duration", Metrics{BrowseDuration: math.NaN()}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.metrics.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && err == nil {
				t.Error("expected error")
			}
		})
	}
}
