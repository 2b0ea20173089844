package news

import (
	"errors"
	"sort"
	"time"
)

// ErrEntryIncomplete marks an entry whose title or link is empty after cleaning.
var ErrEntryIncomplete = errors.New("entry incomplete")

// Category is the public topical label of a record.
type Category string

const (
	CategoryEricsson Category = "ericsson"
	CategoryRAN      Category = "ran"
	CategoryCore     Category = "core"
	CategoryTech     Category = "tech"
	CategoryBusiness Category = "business"
	CategoryTaiwan   Category = "taiwan"
	CategoryOther    Category = "other"
)

// Categories lists every public category in display order.
var Categories = []Category{
	CategoryEricsson,
	CategoryRAN,
	CategoryCore,
	CategoryTech,
	CategoryBusiness,
	CategoryTaiwan,
	CategoryOther,
}

// ParseCategory maps a label onto the closed set; unknown labels become other.
func ParseCategory(s string) Category {
	for _, c := range Categories {
		if string(c) == s {
			return c
		}
	}
	return CategoryOther
}

// Record is the canonical unit of the pipeline.
type Record struct {
	Title          string    `json:"title"`
	Link           string    `json:"link"`
	Description    string    `json:"description"`
	Published      time.Time `json:"published"`
	Source         string    `json:"source"`
	SourceLanguage string    `json:"source_language"`
	DedupKey       string    `json:"dedup_key"`
	Priority       int       `json:"priority"`
	Category       Category  `json:"category"`
}

// NewRecord cleans title and description and derives the dedup key. The
// published time must already be resolved; it is stored in UTC.
func NewRecord(title, link, description string, published time.Time, source, lang string) (Record, error) {
	title = CleanText(title)
	link = CleanText(link)
	if title == "" || link == "" {
		return Record{}, ErrEntryIncomplete
	}

	return Record{
		Title:          title,
		Link:           link,
		Description:    CleanDescription(description),
		Published:      published.UTC(),
		Source:         source,
		SourceLanguage: lang,
		DedupKey:       DedupKey(link),
		Category:       CategoryOther,
	}, nil
}

// SortByPublished orders records most recent first. Ties keep input order.
func SortByPublished(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Published.After(records[j].Published)
	})
}

// SortByPriority orders records by priority descending. Ties keep input order.
func SortByPriority(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Priority > records[j].Priority
	})
}
