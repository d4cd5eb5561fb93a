// Package batch judges many metric records concurrently.
package batch

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"bookmark-engagement/core/judgment"
	"bookmark-engagement/internal/errors"
)

// Record is one metrics record, optionally labelled
type Record struct {
	ID string `json:"id,omitempty"`
	judgment.Metrics
}

// Item pairs a record ID with its result
type Item struct {
	ID     string          `json:"id"`
	Result judgment.Result `json:"result"`
}

// Summary counts outcomes across a batch
type Summary struct {
	Total            int                     `json:"total"`
	Passed           int                     `json:"passed"`
	Failed           int                     `json:"failed"`
	FailuresBySignal map[judgment.Signal]int `json:"failuresBySignal"`

	// Levels is a histogram of final levels over passing records
	Levels [judgment.LevelCount]int `json:"levels"`
}

// Report is the outcome of a batch, items in input order
type Report struct {
	Items   []Item  `json:"items"`
	Summary Summary `json:"summary"`
}

// Judge evaluates records with at most workers concurrent judgments.
// Records without an ID are assigned a random UUID.
func Judge(ctx context.Context, engine *judgment.Engine, records []Record, workers int) (*Report, error) {
	if workers <= 0 {
		workers = 1
	}

	items := make([]Item, len(records))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, rec := range records {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			id := rec.ID
			if id == "" {
				id = uuid.NewString()
			}
			items[i] = Item{ID: id, Result: engine.Judge(rec.Metrics)}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Report{Items: items, Summary: Summarize(items)}, nil
}

// Summarize counts passes, failures per signal and the level histogram
func Summarize(items []Item) Summary {
	s := Summary{
		Total:            len(items),
		FailuresBySignal: make(map[judgment.Signal]int),
	}
	for _, item := range items {
		switch r := item.Result.(type) {
		case *judgment.Success:
			s.Passed++
			s.Levels[r.Level]++
		case *judgment.Failure:
			s.Failed++
			s.FailuresBySignal[r.FailedMetric]++
		}
	}
	return s
}

// ReadRecords decodes one JSON record per line, skipping blank lines and
// lines starting with '#'. Every record is validated.
func ReadRecords(r io.Reader) ([]Record, error) {
	var records []Record
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		var rec Record
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return nil, errors.Parsing("invalid record", err).WithContext("line", line)
		}
		if err := rec.Validate(); err != nil {
			return nil, errors.Wrapf(errors.TypeInput, err, "invalid record on line %d", line)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(errors.TypeInput, "failed to read records", err)
	}
	return records, nil
}
