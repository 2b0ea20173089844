package rss

import (
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/deusflow/teledigest/internal/dates"
)

// RawEntry is a feed item reduced to what the pipeline reads.
type RawEntry struct {
	Title       string
	Link        string
	Description string
	Dates       dates.Fields
}

// EntryFromItem maps a parsed feed item. Pre-parsed timestamps land in
// Dates.Parsed; the raw strings, including dc:date as "created", in Dates.Raw.
func EntryFromItem(item *gofeed.Item) RawEntry {
	e := RawEntry{
		Title:       item.Title,
		Link:        strings.TrimSpace(item.Link),
		Description: item.Description,
		Dates: dates.Fields{
			Parsed: make(map[string]time.Time, 2),
			Raw:    make(map[string]string, 3),
		},
	}

	if e.Link == "" && len(item.Links) > 0 {
		e.Link = strings.TrimSpace(item.Links[0])
	}
	if strings.TrimSpace(e.Description) == "" {
		e.Description = item.Content
	}

	if item.PublishedParsed != nil {
		e.Dates.Parsed["published"] = *item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		e.Dates.Parsed["updated"] = *item.UpdatedParsed
	}
	if item.Published != "" {
		e.Dates.Raw["published"] = item.Published
	}
	if item.Updated != "" {
		e.Dates.Raw["updated"] = item.Updated
	}
	if dc := item.DublinCoreExt; dc != nil && len(dc.Date) > 0 {
		e.Dates.Raw["created"] = dc.Date[0]
	}
	return e
}
