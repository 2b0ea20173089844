package news

import (
	"fmt"
	"strings"
)

// matcher is one lowercased keyword, matched as a substring.
type matcher struct {
	keyword string
}

func newMatcher(keyword string) (matcher, bool) {
	k := strings.ToLower(strings.TrimSpace(keyword))
	if k == "" {
		return matcher{}, false
	}
	return matcher{keyword: k}, true
}

func (m matcher) match(text string) bool {
	return strings.Contains(text, m.keyword)
}

type compiledCategory struct {
	name     string
	category Category
	matchers []matcher
}

type compiledTier struct {
	name       string
	priority   int
	categories []compiledCategory
}

// Scorer assigns priority and category from keyword tables. It is immutable
// after construction and safe for concurrent use.
type Scorer struct {
	tiers    []compiledTier
	required []matcher
	floor    int
}

// NewScorer compiles tables. Priorities must lie in [0,100].
func NewScorer(tables KeywordTables) (*Scorer, error) {
	if tables.FloorPriority < 0 || tables.FloorPriority > 100 {
		return nil, fmt.Errorf("floor priority %d out of range", tables.FloorPriority)
	}

	s := &Scorer{floor: tables.FloorPriority}
	for _, tier := range tables.Tiers {
		if tier.Priority < 0 || tier.Priority > 100 {
			return nil, fmt.Errorf("tier %q: priority %d out of range", tier.Name, tier.Priority)
		}
		ct := compiledTier{name: tier.Name, priority: tier.Priority}
		for _, cat := range tier.Categories {
			cc := compiledCategory{name: cat.Name, category: mapCategory(tables.Mapping, cat.Name)}
			for _, k := range cat.Keywords {
				if m, ok := newMatcher(k); ok {
					cc.matchers = append(cc.matchers, m)
				}
			}
			ct.categories = append(ct.categories, cc)
		}
		s.tiers = append(s.tiers, ct)
	}

	for _, k := range tables.Required {
		if m, ok := newMatcher(k); ok {
			s.required = append(s.required, m)
		}
	}
	return s, nil
}

// DefaultScorer compiles DefaultKeywordTables.
func DefaultScorer() *Scorer {
	s, err := NewScorer(DefaultKeywordTables())
	if err != nil {
		panic(err)
	}
	return s
}

// Score returns the priority and public category for a title and description.
// The first tier with a hit wins; inside it the first matching category wins.
func (s *Scorer) Score(title, description string) (int, Category) {
	text := strings.ToLower(title + " " + description)
	for _, tier := range s.tiers {
		for _, cat := range tier.categories {
			if matchAny(text, cat.matchers) {
				return tier.priority, cat.category
			}
		}
	}
	return s.floor, CategoryOther
}

// Apply scores r in place.
func (s *Scorer) Apply(r *Record) {
	r.Priority, r.Category = s.Score(r.Title, r.Description)
}

// IsRelevant reports whether the text mentions at least one required keyword.
func (s *Scorer) IsRelevant(title, description string) bool {
	return matchAny(strings.ToLower(title+" "+description), s.required)
}

// FilterRelevant keeps records that pass IsRelevant, preserving order.
func (s *Scorer) FilterRelevant(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if s.IsRelevant(r.Title, r.Description) {
			out = append(out, r)
		}
	}
	return out
}

func matchAny(text string, matchers []matcher) bool {
	for _, m := range matchers {
		if m.match(text) {
			return true
		}
	}
	return false
}

func mapCategory(mapping map[string]Category, name string) Category {
	if c, ok := mapping[name]; ok {
		return ParseCategory(string(c))
	}
	return ParseCategory(name)
}
