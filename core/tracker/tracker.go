// Package tracker accumulates page visits over a sliding window and turns
// them into engagement judgments.
package tracker

import (
	"math"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"bookmark-engagement/core/judgment"
	"bookmark-engagement/internal/errors"
)

// DefaultWindow is the look-back window for visit counting
const DefaultWindow = 72 * time.Hour

// Visit is one page view
type Visit struct {
	At time.Time `json:"at"`

	// Duration is time on page in seconds
	Duration float64 `json:"duration"`

	// Depth is scroll depth in viewport heights
	Depth float64 `json:"depth"`
}

// Suggestion is the tracker's verdict for one key
type Suggestion struct {
	Key    string          `json:"key"`
	Result judgment.Result `json:"result"`

	// ShouldSuggest is true when the visits are strong enough to propose a
	// bookmark
	ShouldSuggest bool `json:"shouldSuggest"`
}

// Tracker records visits per key (a page URL or a domain). It is safe for
// concurrent use.
type Tracker struct {
	mu     sync.Mutex
	visits map[string][]Visit

	engine *judgment.Engine
	window time.Duration
	logger *zap.Logger
}

// Option configures a Tracker
type Option func(*Tracker)

// WithWindow overrides DefaultWindow
func WithWindow(window time.Duration) Option {
	return func(t *Tracker) {
		if window > 0 {
			t.window = window
		}
	}
}

// WithLogger sets the tracker logger
func WithLogger(logger *zap.Logger) Option {
	return func(t *Tracker) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// New creates a tracker that judges with engine
func New(engine *judgment.Engine, opts ...Option) *Tracker {
	t := &Tracker{
		visits: make(map[string][]Visit),
		engine: engine,
		window: DefaultWindow,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Window returns the look-back window
func (t *Tracker) Window() time.Duration {
	return t.window
}

// RecordVisit adds a visit for key
func (t *Tracker) RecordVisit(key string, v Visit) error {
	if key == "" {
		return errors.Input("visit key must not be empty")
	}
	if v.At.IsZero() {
		return errors.Input("visit time must be set").WithContext("key", key)
	}
	if invalidMeasure(v.Duration) {
		return errors.Inputf("invalid visit duration %v", v.Duration).WithContext("key", key)
	}
	if invalidMeasure(v.Depth) {
		return errors.Inputf("invalid visit depth %v", v.Depth).WithContext("key", key)
	}

	t.mu.Lock()
	t.visits[key] = append(t.visits[key], v)
	t.mu.Unlock()
	return nil
}

func invalidMeasure(v float64) bool {
	return v < 0 || math.IsNaN(v) || math.IsInf(v, 0)
}

// Metrics aggregates the visits of key inside the window ending at now:
// the visit count, the summed duration and the deepest scroll.
func (t *Tracker) Metrics(key string, now time.Time) judgment.Metrics {
	t.mu.Lock()
	defer t.mu.Unlock()

	var m judgment.Metrics
	from := now.Add(-t.window)
	for _, v := range t.visits[key] {
		if !inWindow(v.At, from, now) {
			continue
		}
		m.VisitCount++
		m.BrowseDuration += v.Duration
		m.BrowseDepth = math.Max(m.BrowseDepth, v.Depth)
	}
	return m
}

func inWindow(at, from, to time.Time) bool {
	return at.After(from) && !at.After(to)
}

// Evaluate judges the visits of key inside the window ending at now
func (t *Tracker) Evaluate(key string, now time.Time) Suggestion {
	m := t.Metrics(key, now)
	result := t.engine.Judge(m)

	s := Suggestion{
		Key:           key,
		Result:        result,
		ShouldSuggest: result.Passed(),
	}
	if s.ShouldSuggest {
		t.logger.Debug("bookmark suggested",
			zap.String("key", key),
			zap.Int("level", int(result.FinalLevel())),
			zap.Int("visits", m.VisitCount),
		)
	}
	return s
}

// EvaluateAll evaluates every tracked key, sorted by key
func (t *Tracker) EvaluateAll(now time.Time) []Suggestion {
	keys := t.Keys()
	out := make([]Suggestion, 0, len(keys))
	for _, key := range keys {
		out = append(out, t.Evaluate(key, now))
	}
	return out
}

// Keys returns the tracked keys in sorted order
func (t *Tracker) Keys() []string {
	t.mu.Lock()
	keys := make([]string, 0, len(t.visits))
	for k := range t.visits {
		keys = append(keys, k)
	}
	t.mu.Unlock()

	sort.Strings(keys)
	return keys
}

// Prune drops visits that fell out of the window ending at now and returns
// how many were removed
func (t *Tracker) Prune(now time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	from := now.Add(-t.window)
	removed := 0
	for key, visits := range t.visits {
		kept := visits[:0]
		for _, v := range visits {
			if v.At.After(from) {
				kept = append(kept, v)
			}
		}
		removed += len(visits) - len(kept)
		if len(kept) == 0 {
			delete(t.visits, key)
		} else {
			t.visits[key] = kept
		}
	}
	return removed
}

// DomainKey reduces a page URL to its lower-cased host, without a leading
// "www."
func DomainKey(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", errors.Wrapf(errors.TypeInput, err, "invalid URL %q", rawURL)
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", errors.Inputf("URL %q has no host", rawURL)
	}
	return strings.TrimPrefix(host, "www."), nil
}
