// Package cmd - track command
package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"bookmark-engagement/core/output"
	"bookmark-engagement/core/tracker"
	"bookmark-engagement/internal/config"
	"bookmark-engagement/internal/errors"
	"bookmark-engagement/internal/logging"
)

var (
	trackByDomain bool
	trackAt       string
	trackAll      bool
	trackFormat   string
)

// trackCmd replays visit events through the tracker
var trackCmd = &cobra.Command{
	Use:   "track [events-file]",
	Short: "Replay visit events and list bookmark suggestions",
	Long: `Replay visit events (one JSON object per line) through the visit tracker and
judge every page, or every domain with --by-domain, over the tracking window.

Example event:
  {"url": "https://docs.example.com/guide", "at": "2026-03-01T10:00:00Z", "duration": 42, "depth": 3.5}`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTrack,
}

func init() {
	trackCmd.Flags().BoolVar(&trackByDomain, "by-domain", false, "aggregate visits per domain instead of per URL")
	trackCmd.Flags().StringVar(&trackAt, "at", "", "evaluation time, RFC3339 (default: latest event)")
	trackCmd.Flags().BoolVar(&trackAll, "all", false, "also list pages that do not qualify")
	trackCmd.Flags().StringVarP(&trackFormat, "format", "f", "", "output format (text, json)")
}

// visitEvent is one line of a track input file
type visitEvent struct {
	URL      string    `json:"url"`
	At       time.Time `json:"at"`
	Duration float64   `json:"duration"`
	Depth    float64   `json:"depth"`
}

func runTrack(cmd *cobra.Command, args []string) error {
	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		file, err := os.Open(args[0])
		if err != nil {
			return errors.Wrapf(errors.TypeInput, err, "failed to open %s", args[0])
		}
		defer file.Close()
		in = file
	}

	engine, err := buildEngine()
	if err != nil {
		return errors.Wrap(errors.TypeConfig, "failed to build engine", err)
	}
	f, err := formatter(trackFormat)
	if err != nil {
		return err
	}

	window := time.Duration(config.Get().Tracker.WindowHours) * time.Hour
	tr := tracker.New(engine, tracker.WithWindow(window), tracker.WithLogger(logging.Named("tracker")))

	latest, err := replay(in, tr, trackByDomain)
	if err != nil {
		return err
	}

	now := latest
	if trackAt != "" {
		now, err = time.Parse(time.RFC3339, trackAt)
		if err != nil {
			return errors.Wrapf(errors.TypeInput, err, "invalid --at %q", trackAt)
		}
	}

	var entries []output.Entry
	for _, s := range tr.EvaluateAll(now) {
		if s.ShouldSuggest || trackAll {
			entries = append(entries, output.Entry{ID: s.Key, Result: s.Result})
		}
	}
	if len(entries) == 0 && f.Format() == output.FormatText {
		fmt.Fprintln(cmd.OutOrStdout(), "No pages qualify for a bookmark suggestion.")
		return nil
	}
	return f.Render(cmd.OutOrStdout(), entries)
}

// replay records every event and returns the latest event time
func replay(in io.Reader, tr *tracker.Tracker, byDomain bool) (time.Time, error) {
	var latest time.Time
	scanner := bufio.NewScanner(in)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		var ev visitEvent
		if err := json.Unmarshal([]byte(text), &ev); err != nil {
			return latest, errors.Parsing("invalid visit event", err).WithContext("line", line)
		}

		key := ev.URL
		if byDomain {
			domain, err := tracker.DomainKey(ev.URL)
			if err != nil {
				return latest, errors.Wrapf(errors.TypeInput, err, "line %d", line)
			}
			key = domain
		}

		if err := tr.RecordVisit(key, tracker.Visit{At: ev.At, Duration: ev.Duration, Depth: ev.Depth}); err != nil {
			return latest, errors.Wrapf(errors.TypeInput, err, "line %d", line)
		}
		if ev.At.After(latest) {
			latest = ev.At
		}
	}
	if err := scanner.Err(); err != nil {
		return latest, errors.Wrap(errors.TypeInput, "failed to read events", err)
	}
	return latest, nil
}
