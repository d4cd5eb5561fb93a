// Package output provides output formatting for judgment results.
// This package produces human and machine-readable outputs.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"

	"bookmark-engagement/core/judgment"
	"bookmark-engagement/internal/errors"
)

// Format represents output format type
type Format string

const (
	// FormatText is one human-readable line per result
	FormatText Format = "text"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"
)

// Entry is one labelled result to render
type Entry struct {
	ID     string          `json:"id,omitempty"`
	Result judgment.Result `json:"result"`
}

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render writes entries to w
	Render(w io.Writer, entries []Entry) error
}

// New returns the formatter for format
func New(format Format, colored bool) (Formatter, error) {
	switch format {
	case FormatText:
		return NewTextFormatter(colored), nil
	case FormatJSON:
		return &JSONFormatter{}, nil
	default:
		return nil, errors.Inputf("unknown output format %q", format)
	}
}

// levelAttributes maps each level to its display color
var levelAttributes = [judgment.LevelCount][]color.Attribute{
	{color.FgWhite},
	{color.FgCyan},
	{color.FgGreen},
	{color.FgYellow, color.Bold},
	{color.FgMagenta, color.Bold},
}

var failureAttributes = []color.Attribute{color.FgRed}

// TextFormatter writes judgment.ResultText per entry
type TextFormatter struct {
	colored bool
}

// NewTextFormatter creates a text formatter
func NewTextFormatter(colored bool) *TextFormatter {
	return &TextFormatter{colored: colored}
}

// Format returns FormatText
func (f *TextFormatter) Format() Format {
	return FormatText
}

// Render writes one line per entry, prefixed with its ID when present
func (f *TextFormatter) Render(w io.Writer, entries []Entry) error {
	for _, e := range entries {
		line := f.line(e.Result)
		if e.ID != "" {
			line = e.ID + ": " + line
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func (f *TextFormatter) line(r judgment.Result) string {
	text := judgment.ResultText(r)
	if !f.colored {
		return text
	}

	attrs := failureAttributes
	if level := r.FinalLevel(); level.Valid() {
		attrs = levelAttributes[level]
	}
	// The caller's flag wins over terminal detection.
	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint(text)
}

// JSONFormatter writes the entries as an indented JSON array
type JSONFormatter struct{}

// Format returns FormatJSON
func (f *JSONFormatter) Format() Format {
	return FormatJSON
}

// Render writes entries as JSON
func (f *JSONFormatter) Render(w io.Writer, entries []Entry) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

// RenderThresholds writes the engine configuration as a small table
func RenderThresholds(w io.Writer, info judgment.ThresholdsInfo) error {
	rows := []struct {
		label  string
		table  judgment.ThresholdTable
		weight float64
	}{
		{"visit count", info.VisitCount, info.Weights.Visit},
		{"browse duration (s)", info.BrowseDuration, info.Weights.Duration},
		{"browse depth (screens)", info.BrowseDepth, info.Weights.Depth},
	}

	if _, err := fmt.Fprintf(w, "%-24s %8s %8s %8s %8s %8s %8s\n", "signal", "L0", "L1", "L2", "L3", "L4", "weight"); err != nil {
		return err
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(w, "%-24s %8g %8g %8g %8g %8g %8g\n",
			r.label, r.table[0], r.table[1], r.table[2], r.table[3], r.table[4], r.weight); err != nil {
			return err
		}
	}
	for i, name := range info.LevelNames {
		if _, err := fmt.Fprintf(w, "L%d = %s\n", i, name); err != nil {
			return err
		}
	}
	return nil
}
