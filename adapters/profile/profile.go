// Package profile loads judgment threshold profiles written in HCL.
//
// A profile overrides any subset of the built-in configuration:
//
//	signal "visit_count" {
//	  thresholds = [2, 4, 6, 10, 15]
//	}
//	signal "browse_depth" {
//	  thresholds = defaults.browse_depth
//	}
//	weights {
//	  visit_count     = 0.6
//	  browse_duration = 0.25
//	  browse_depth    = 0.15
//	}
//	level_names = ["Glance", "Skim", "Read", "Study", "Devour"]
//
// The built-in tables are available to expressions as defaults.<signal>.
package profile

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"go.uber.org/multierr"

	"bookmark-engagement/core/judgment"
	"bookmark-engagement/internal/errors"
)

type file struct {
	Signals    []signalBlock `hcl:"signal,block"`
	Weights    *weightsBlock `hcl:"weights,block"`
	LevelNames []string      `hcl:"level_names,optional"`
}

type signalBlock struct {
	Name       string    `hcl:"name,label"`
	Thresholds []float64 `hcl:"thresholds"`
}

type weightsBlock struct {
	VisitCount     float64 `hcl:"visit_count"`
	BrowseDuration float64 `hcl:"browse_duration"`
	BrowseDepth    float64 `hcl:"browse_depth"`
}

// Load reads and decodes the profile at path
func Load(path string) (judgment.JudgmentConfig, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return judgment.JudgmentConfig{}, errors.NotFound("profile", path)
		}
		return judgment.JudgmentConfig{}, errors.Wrapf(errors.TypeInput, err, "failed to read profile %s", path)
	}
	return Parse(src, path)
}

// Parse decodes an HCL profile on top of judgment.DefaultConfig and
// validates the result
func Parse(src []byte, filename string) (judgment.JudgmentConfig, error) {
	cfg := judgment.DefaultConfig()

	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return cfg, errors.Parsing("failed to parse profile", diags)
	}

	var f file
	if diags := gohcl.DecodeBody(hclFile.Body, evalContext(cfg), &f); diags.HasErrors() {
		return cfg, errors.Parsing("failed to decode profile", diags)
	}

	if err := apply(&cfg, &f); err != nil {
		return cfg, errors.Config(fmt.Sprintf("invalid profile %s", filename), err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func apply(cfg *judgment.JudgmentConfig, f *file) error {
	var errs error
	seen := make(map[judgment.Signal]bool)

	for _, block := range f.Signals {
		s := judgment.Signal(block.Name)
		if !knownSignal(s) {
			errs = multierr.Append(errs, fmt.Errorf("unknown signal %q", block.Name))
			continue
		}
		if seen[s] {
			errs = multierr.Append(errs, fmt.Errorf("signal %q declared more than once", block.Name))
			continue
		}
		seen[s] = true

		if len(block.Thresholds) != judgment.LevelCount {
			errs = multierr.Append(errs, fmt.Errorf("signal %q has %d thresholds, want %d",
				block.Name, len(block.Thresholds), judgment.LevelCount))
			continue
		}
		var table judgment.ThresholdTable
		copy(table[:], block.Thresholds)
		cfg.SetTable(s, table)
	}

	if f.Weights != nil {
		cfg.Weights = judgment.Weights{
			Visit:    f.Weights.VisitCount,
			Duration: f.Weights.BrowseDuration,
			Depth:    f.Weights.BrowseDepth,
		}
	}

	if f.LevelNames != nil {
		if len(f.LevelNames) != judgment.LevelCount {
			errs = multierr.Append(errs, fmt.Errorf("level_names has %d entries, want %d",
				len(f.LevelNames), judgment.LevelCount))
		} else {
			copy(cfg.LevelNames[:], f.LevelNames)
		}
	}

	return errs
}

func knownSignal(s judgment.Signal) bool {
	for _, known := range judgment.Signals() {
		if s == known {
			return true
		}
	}
	return false
}

// evalContext exposes the built-in tables as defaults.<signal>
func evalContext(cfg judgment.JudgmentConfig) *hcl.EvalContext {
	tables := make(map[string]cty.Value)
	for _, s := range judgment.Signals() {
		table := cfg.Table(s)
		vals := make([]cty.Value, 0, len(table))
		for _, v := range table {
			vals = append(vals, cty.NumberFloatVal(v))
		}
		tables[string(s)] = cty.TupleVal(vals)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"defaults": cty.ObjectVal(tables),
		},
	}
}
