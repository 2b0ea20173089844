package rss

import (
	"fmt"
	"strings"
)

// Source is one configured syndication feed.
type Source struct {
	Name     string `yaml:"name" json:"name"`
	URL      string `yaml:"url" json:"url"`
	Language string `yaml:"language" json:"language"`
}

// DefaultLanguage is assumed when a source omits its language tag.
const DefaultLanguage = "en"

// DefaultSources returns the built-in feed list.
func DefaultSources() []Source {
	return []Source{
		{Name: "Light Reading", URL: "https://www.lightreading.com/rss.xml", Language: "en"},
		{Name: "RCR Wireless News", URL: "https://feeds.feedburner.com/rcrwireless/sLmV", Language: "en"},
		{Name: "Fierce Wireless", URL: "https://www.fiercewireless.com/rss/xml", Language: "en"},
		{Name: "TechNews 科技新報", URL: "https://technews.tw/feed/", Language: "zh"},
	}
}

// NormalizeSources trims fields, fills the default language and rejects
// empty or duplicate names and empty URLs. The input order is kept.
func NormalizeSources(sources []Source) ([]Source, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("no sources configured")
	}

	out := make([]Source, 0, len(sources))
	names := make(map[string]struct{}, len(sources))
	for i, s := range sources {
		s.Name = strings.TrimSpace(s.Name)
		s.URL = strings.TrimSpace(s.URL)
		s.Language = strings.TrimSpace(s.Language)
		if s.Name == "" {
			return nil, fmt.Errorf("source %d: name is required", i)
		}
		if s.URL == "" {
			return nil, fmt.Errorf("source %q: url is required", s.Name)
		}
		if _, dup := names[s.Name]; dup {
			return nil, fmt.Errorf("source %q: duplicate name", s.Name)
		}
		if s.Language == "" {
			s.Language = DefaultLanguage
		}
		names[s.Name] = struct{}{}
		out = append(out, s)
	}
	return out, nil
}
