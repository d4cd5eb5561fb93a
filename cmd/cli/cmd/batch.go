// Package cmd - batch command
package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"bookmark-engagement/core/batch"
	"bookmark-engagement/core/judgment"
	"bookmark-engagement/core/output"
	"bookmark-engagement/internal/config"
	"bookmark-engagement/internal/errors"
	"bookmark-engagement/internal/logging"
)

var (
	batchWorkers int
	batchFormat  string
	batchSummary bool
)

// batchCmd judges a file of metrics records
var batchCmd = &cobra.Command{
	Use:   "batch [file]",
	Short: "Judge many metrics records",
	Long: `Judge one JSON metrics record per line. Use "-" or omit the file to read
from standard input. Blank lines and lines starting with '#' are ignored.

Example record:
  {"id": "docs.example.com", "visitCount": 8, "browseDuration": 95, "browseDepth": 4}`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 0, "concurrent judgments (default from config)")
	batchCmd.Flags().StringVarP(&batchFormat, "format", "f", "", "output format (text, json)")
	batchCmd.Flags().BoolVar(&batchSummary, "summary", true, "print a summary after the results")
}

func runBatch(cmd *cobra.Command, args []string) error {
	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		file, err := os.Open(args[0])
		if err != nil {
			return errors.Wrapf(errors.TypeInput, err, "failed to open %s", args[0])
		}
		defer file.Close()
		in = file
	}

	records, err := batch.ReadRecords(in)
	if err != nil {
		return err
	}

	engine, err := buildEngine()
	if err != nil {
		return errors.Wrap(errors.TypeConfig, "failed to build engine", err)
	}
	f, err := formatter(batchFormat)
	if err != nil {
		return err
	}

	workers := batchWorkers
	if workers <= 0 {
		workers = config.Get().Server.BatchWorkers
	}
	logging.Sugar.Debugw("judging batch", "records", len(records), "workers", workers)

	report, err := batch.Judge(cmd.Context(), engine, records, workers)
	if err != nil {
		return err
	}

	entries := make([]output.Entry, len(report.Items))
	for i, item := range report.Items {
		entries[i] = output.Entry{ID: item.ID, Result: item.Result}
	}
	if err := f.Render(cmd.OutOrStdout(), entries); err != nil {
		return err
	}

	if batchSummary && f.Format() == output.FormatText {
		printSummary(cmd.OutOrStdout(), report.Summary)
	}
	return nil
}

func printSummary(w io.Writer, s batch.Summary) {
	fmt.Fprintf(w, "\n%d judged, %d passed, %d failed\n", s.Total, s.Passed, s.Failed)
	for level, n := range s.Levels {
		if n > 0 {
			fmt.Fprintf(w, "  level %d: %d\n", level, n)
		}
	}

	signals := make([]string, 0, len(s.FailuresBySignal))
	for sig := range s.FailuresBySignal {
		signals = append(signals, string(sig))
	}
	sort.Strings(signals)
	for _, sig := range signals {
		fmt.Fprintf(w, "  failed on %s: %d\n", sig, s.FailuresBySignal[judgment.Signal(sig)])
	}
}
