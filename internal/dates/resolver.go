// Package dates turns the heterogeneous date fields of feed entries into a
// single UTC timestamp.
package dates

import (
	"errors"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ErrUnresolved means no date field of the entry could be interpreted. The
// entry must be dropped; callers never substitute the current time.
var ErrUnresolved = errors.New("date unresolved")

// Field names, in priority order.
var (
	ParsedFields = []string{"published", "updated"}
	RawFields    = []string{"published", "updated", "created"}
)

// Layouts tried after the flexible parser gives up.
var Layouts = []string{
	"Jan 2, 2006 3:04pm",
	"Jan 2, 2006 3:04 PM",
	"2006-01-02 15:04:05",
	"02 Jan 2006 15:04:05",
}

// Fields is the normalized view of an entry's date-like values.
type Fields struct {
	Parsed map[string]time.Time
	Raw    map[string]string
}

// Extractor is one resolution strategy.
type Extractor struct {
	Name    string
	Extract func(Fields) (time.Time, bool)
}

// Resolver applies its extractors in order; the first hit wins.
type Resolver struct {
	extractors []Extractor
}

// NewResolver builds the default chain: pre-parsed fields, then the flexible
// parser over raw strings, then the explicit layouts over raw strings.
func NewResolver() *Resolver {
	return &Resolver{extractors: []Extractor{
		{Name: "parsed", Extract: fromParsed},
		{Name: "flexible", Extract: fromFlexible},
		{Name: "layouts", Extract: fromLayouts},
	}}
}

// Extractors exposes the chain, mostly for diagnostics.
func (r *Resolver) Extractors() []Extractor {
	return r.extractors
}

// Resolve returns the first timestamp any extractor yields, in UTC.
func (r *Resolver) Resolve(f Fields) (time.Time, error) {
	for _, ex := range r.extractors {
		if t, ok := ex.Extract(f); ok {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrUnresolved
}

// Resolve uses the default chain.
func Resolve(f Fields) (time.Time, error) {
	return defaultResolver.Resolve(f)
}

var defaultResolver = NewResolver()

func fromParsed(f Fields) (time.Time, bool) {
	for _, name := range ParsedFields {
		if t, ok := f.Parsed[name]; ok && !t.IsZero() {
			return t, true
		}
	}
	return time.Time{}, false
}

func fromFlexible(f Fields) (time.Time, bool) {
	for _, raw := range rawValues(f) {
		// ParseIn keeps explicit offsets and treats zone-less input as UTC.
		t, err := dateparse.ParseIn(raw, time.UTC)
		if err == nil && !t.IsZero() {
			return t, true
		}
	}
	return time.Time{}, false
}

func fromLayouts(f Fields) (time.Time, bool) {
	for _, raw := range rawValues(f) {
		for _, layout := range Layouts {
			if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func rawValues(f Fields) []string {
	out := make([]string, 0, len(RawFields))
	for _, name := range RawFields {
		v := strings.TrimSpace(f.Raw[name])
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
