// Package ranking asks an external ranker to pick and order the most
// important records, and falls back to the keyword order when it cannot.
package ranking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/deusflow/teledigest/internal/logger"
	"github.com/deusflow/teledigest/internal/metrics"
	"github.com/deusflow/teledigest/internal/news"
	"github.com/deusflow/teledigest/internal/retry"
)

// ErrUnavailable means the ranker failed or returned nothing usable.
var ErrUnavailable = errors.New("ranking unavailable")

var errEmptyRanking = errors.New("empty ranking")

// Ranker orders candidates. The prompt holds one "index: title" line per
// candidate; n is the number of candidates.
type Ranker interface {
	Rank(ctx context.Context, prompt string, n int) ([]int, error)
}

const (
	DefaultFallbackCount  = 15
	DefaultMaxAttempts    = 1
	DefaultRetryDelay     = 5 * time.Second
	DefaultAttemptTimeout = 60 * time.Second
)

type Options struct {
	// MaxCandidates caps how many records are offered; 0 offers all.
	MaxCandidates  int
	FallbackCount  int
	MaxAttempts    int
	RetryDelay     time.Duration
	AttemptTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.FallbackCount <= 0 {
		o.FallbackCount = DefaultFallbackCount
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	if o.RetryDelay < 0 {
		o.RetryDelay = 0
	}
	if o.AttemptTimeout <= 0 {
		o.AttemptTimeout = DefaultAttemptTimeout
	}
	return o
}

// Selection is the outcome of Select. When Ranked is false, Records is the
// fallback prefix and Err wraps ErrUnavailable.
type Selection struct {
	Records  []news.Record
	Indices  []int
	Ranked   bool
	Attempts int
	Err      error
}

// Select offers records to ranker and returns the ranked subset. It never
// fails the run: any ranker problem yields the fallback selection.
func Select(ctx context.Context, ranker Ranker, records []news.Record, opts Options) Selection {
	opts = opts.withDefaults()
	if len(records) == 0 {
		return Selection{}
	}

	candidates := records
	if opts.MaxCandidates > 0 && len(candidates) > opts.MaxCandidates {
		candidates = candidates[:opts.MaxCandidates]
	}
	n := len(candidates)

	if ranker == nil {
		return fallback(records, opts, 0, errors.New("no ranker configured"))
	}

	prompt := BuildPrompt(candidates)
	var indices []int
	attempts := 0
	err := retry.WithRetry(ctx, retry.RetryConfig{MaxAttempts: opts.MaxAttempts, Delay: opts.RetryDelay},
		func(ctx context.Context, attempt int) error {
			attempts = attempt
			logger.Info("Calling ranker", "attempt", attempt, "max_attempts", opts.MaxAttempts, "candidates", n)

			actx, cancel := context.WithTimeout(ctx, opts.AttemptTimeout)
			defer cancel()

			got, err := ranker.Rank(actx, prompt, n)
			if err != nil {
				logger.Warn("Ranker call failed", "attempt", attempt, "error", err)
				return err
			}
			got = ValidateIndices(got, n)
			if len(got) == 0 {
				logger.Warn("Ranker returned no usable indices", "attempt", attempt)
				return errEmptyRanking
			}
			indices = got
			return nil
		})
	if err != nil {
		return fallback(records, opts, attempts, err)
	}

	selected := make([]news.Record, 0, len(indices))
	for _, i := range indices {
		selected = append(selected, candidates[i])
	}
	metrics.RecordRanking(true)
	logger.Info("Ranking applied", "candidates", n, "selected", len(selected))
	return Selection{Records: selected, Indices: indices, Ranked: true, Attempts: attempts}
}

func fallback(records []news.Record, opts Options, attempts int, cause error) Selection {
	count := opts.FallbackCount
	if count > len(records) {
		count = len(records)
	}
	out := make([]news.Record, count)
	copy(out, records[:count])

	metrics.RecordRanking(false)
	logger.Warn("Using fallback selection", "count", count, "error", cause)
	return Selection{
		Records:  out,
		Ranked:   false,
		Attempts: attempts,
		Err:      fmt.Errorf("%w: %v", ErrUnavailable, cause),
	}
}

// BuildPrompt renders one "index: title" line per record.
func BuildPrompt(records []news.Record) string {
	var b strings.Builder
	for i, r := range records {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strconv.Itoa(i))
		b.WriteString(": ")
		b.WriteString(r.Title)
	}
	return b.String()
}

// ValidateIndices keeps indices in [0,n) in first-seen order, dropping
// duplicates.
func ValidateIndices(indices []int, n int) []int {
	seen := make(map[int]struct{}, len(indices))
	out := make([]int, 0, len(indices))
	for _, i := range indices {
		if i < 0 || i >= n {
			continue
		}
		if _, dup := seen[i]; dup {
			continue
		}
		seen[i] = struct{}{}
		out = append(out, i)
	}
	return out
}

var (
	arrayPattern   = regexp.MustCompile(`\[[^\[\]]*\]`)
	integerPattern = regexp.MustCompile(`\d+`)
)

// ParseIndices reads a ranker reply. A JSON integer array is preferred,
// also inside a fenced block or surrounding prose; otherwise every integer
// in the text is taken in order.
func ParseIndices(text string) []int {
	for _, candidate := range arrayPattern.FindAllString(text, -1) {
		var out []int
		if err := json.Unmarshal([]byte(candidate), &out); err == nil && len(out) > 0 {
			return out
		}
	}

	var out []int
	for _, m := range integerPattern.FindAllString(text, -1) {
		if v, err := strconv.Atoi(m); err == nil {
			out = append(out, v)
		}
	}
	return out
}
