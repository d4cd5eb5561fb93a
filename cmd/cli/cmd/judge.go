// Package cmd - judge command
package cmd

import (
	"github.com/spf13/cobra"

	"bookmark-engagement/core/judgment"
	"bookmark-engagement/core/output"
	"bookmark-engagement/internal/errors"
)

var (
	judgeVisits   int
	judgeDuration float64
	judgeDepth    float64
	judgeFormat   string
)

// judgeCmd judges a single metrics record
var judgeCmd = &cobra.Command{
	Use:   "judge",
	Short: "Judge one page's engagement",
	Long: `Classify one metrics record into an attention level.

Signals are checked in priority order (visits, duration, depth); the first
signal below its floor is reported as the reason the page did not qualify.

Examples:
  bookmark-engagement judge --visits 3 --duration 30 --depth 1.5
  bookmark-engagement judge -n 20 -t 180 -s 12 --format json`,
	Args: cobra.NoArgs,
	RunE: runJudge,
}

func init() {
	judgeCmd.Flags().IntVarP(&judgeVisits, "visits", "n", 0, "visits in the recent window")
	judgeCmd.Flags().Float64VarP(&judgeDuration, "duration", "t", 0, "browse duration in seconds")
	judgeCmd.Flags().Float64VarP(&judgeDepth, "depth", "s", 0, "scroll depth in screens")
	judgeCmd.Flags().StringVarP(&judgeFormat, "format", "f", "", "output format (text, json)")
}

func runJudge(cmd *cobra.Command, args []string) error {
	m := judgment.Metrics{
		VisitCount:     judgeVisits,
		BrowseDuration: judgeDuration,
		BrowseDepth:    judgeDepth,
	}
	if err := m.Validate(); err != nil {
		return err
	}

	engine, err := buildEngine()
	if err != nil {
		return errors.Wrap(errors.TypeConfig, "failed to build engine", err)
	}
	f, err := formatter(judgeFormat)
	if err != nil {
		return err
	}

	return f.Render(cmd.OutOrStdout(), []output.Entry{{Result: engine.Judge(m)}})
}
