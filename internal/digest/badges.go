package digest

import (
	"strings"

	"github.com/deusflow/teledigest/internal/news"
)

// MaxBadges caps the badges shown on one card.
const MaxBadges = 4

// Badge is a display label with its CSS class.
type Badge struct {
	Name  string
	Class string
	Label string
}

// badgeStyles lists the recognised badges in canonical order.
var badgeStyles = []Badge{
	{Name: "Hot", Class: "badge-hot", Label: "🔥 焦點"},
	{Name: "Ericsson", Class: "badge-ericsson", Label: "⭐ Ericsson"},
	{Name: "Taiwan", Class: "badge-taiwan", Label: "🇹🇼 台灣"},
	{Name: "RAN", Class: "badge-ran", Label: "📡 RAN"},
	{Name: "Core", Class: "badge-core", Label: "🔧 Core"},
	{Name: "Tech", Class: "badge-tech", Label: "🚀 新技術"},
	{Name: "Business", Class: "badge-business", Label: "💼 商業"},
	{Name: "Partnership", Class: "badge-partner", Label: "🤝 合作"},
	{Name: "M&A", Class: "badge-ma", Label: "🔄 M&A"},
}

var categoryBadge = map[news.Category]string{
	news.CategoryEricsson: "Ericsson",
	news.CategoryTaiwan:   "Taiwan",
	news.CategoryRAN:      "RAN",
	news.CategoryCore:     "Core",
	news.CategoryTech:     "Tech",
	news.CategoryBusiness: "Business",
}

// NormalizeBadges maps names case-insensitively onto the known badges,
// drops unknown names and repeats, and keeps at most MaxBadges in input order.
func NormalizeBadges(names []string) []Badge {
	out := make([]Badge, 0, MaxBadges)
	seen := make(map[string]bool)
	for _, name := range names {
		b, ok := lookupBadge(name)
		if !ok || seen[b.Name] {
			continue
		}
		seen[b.Name] = true
		out = append(out, b)
		if len(out) == MaxBadges {
			break
		}
	}
	return out
}

// BadgesFor derives the badges of a record: Hot for featured records,
// the category badge, and keyword badges from the title.
func BadgesFor(r news.Record, featured bool) []Badge {
	var names []string
	if featured {
		names = append(names, "Hot")
	}
	if name, ok := categoryBadge[r.Category]; ok {
		names = append(names, name)
	}

	title := strings.ToLower(r.Title)
	if strings.Contains(title, "ericsson") || strings.Contains(title, "愛立信") {
		names = append(names, "Ericsson")
	}
	if strings.Contains(title, "partnership") || strings.Contains(title, "合作") {
		names = append(names, "Partnership")
	}
	if strings.Contains(title, "acquisition") || strings.Contains(title, "merger") ||
		strings.Contains(title, "m&a") || strings.Contains(title, "併購") {
		names = append(names, "M&A")
	}
	return NormalizeBadges(names)
}

func lookupBadge(name string) (Badge, bool) {
	name = strings.TrimSpace(name)
	for _, b := range badgeStyles {
		if strings.EqualFold(b.Name, name) {
			return b, true
		}
	}
	return Badge{}, false
}
