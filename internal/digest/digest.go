// Package digest renders the daily HTML mail and the failure notice.
package digest

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/deusflow/teledigest/internal/news"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// Taiwan is the zone used for dates shown to readers.
var Taiwan = time.FixedZone("CST", 8*60*60)

const (
	SubjectFormat      = "📡 電信產業日報 - %s"
	ErrorSubjectFormat = "⚠️ 電信日報系統錯誤 - %s"
	summaryLength      = 150
)

var weekdays = [...]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// FormatTaiwanDate renders t as a Taiwan calendar date, e.g. "2026年01月23日 (Fri)".
func FormatTaiwanDate(t time.Time) string {
	tw := t.In(Taiwan)
	return fmt.Sprintf("%s (%s)", tw.Format("2006年01月02日"), weekdays[tw.Weekday()])
}

// FormatTaiwanTimestamp renders t with seconds, in Taiwan time.
func FormatTaiwanTimestamp(t time.Time) string {
	return t.In(Taiwan).Format("2006-01-02 15:04:05") + " (台北時間)"
}

func Subject(now time.Time) string {
	return fmt.Sprintf(SubjectFormat, FormatTaiwanDate(now))
}

func ErrorSubject(errorType string) string {
	return fmt.Sprintf(ErrorSubjectFormat, errorType)
}

// Digest is everything the daily mail shows.
type Digest struct {
	Date    time.Time
	Records []news.Record
	Stats   news.Stats
	// Ranked reports whether the order came from the AI ranker.
	Ranked  bool
	Sources []string
}

type cardView struct {
	Title       string
	Link        string
	Summary     string
	Source      string
	Published   string
	Icon        string
	BorderColor string
	Badges      []Badge
}

type sourceView struct {
	Name  string
	Count int
}

type dailyView struct {
	Date          string
	Total         int
	Cards         []cardView
	EricssonCount int
	RANCoreCount  int
	BusinessCount int
	BySource      []sourceView
	Ranked        bool
	Sources       string
}

var categoryIcons = map[news.Category]string{
	news.CategoryEricsson: "🎯",
	news.CategoryRAN:      "📡",
	news.CategoryCore:     "🔧",
	news.CategoryTech:     "🚀",
	news.CategoryBusiness: "💼",
	news.CategoryTaiwan:   "🇹🇼",
	news.CategoryOther:    "📌",
}

var categoryColors = map[news.Category]string{
	news.CategoryEricsson: "#dc2626",
	news.CategoryRAN:      "#3b82f6",
	news.CategoryCore:     "#2563eb",
	news.CategoryTech:     "#06b6d4",
	news.CategoryBusiness: "#10b981",
	news.CategoryTaiwan:   "#ef4444",
	news.CategoryOther:    "#667eea",
}

// Render produces the HTML body of the daily mail.
func Render(d Digest) (string, error) {
	view := dailyView{
		Date:          FormatTaiwanDate(d.Date),
		Total:         d.Stats.Total,
		EricssonCount: d.Stats.CategoryCount(news.CategoryEricsson),
		RANCoreCount:  d.Stats.CategoryCount(news.CategoryRAN) + d.Stats.CategoryCount(news.CategoryCore),
		BusinessCount: d.Stats.CategoryCount(news.CategoryBusiness),
		Ranked:        d.Ranked,
		Sources:       strings.Join(d.Sources, ", "),
	}
	for _, s := range d.Stats.BySource {
		view.BySource = append(view.BySource, sourceView{Name: s.Name, Count: s.Count})
	}
	for i, r := range d.Records {
		view.Cards = append(view.Cards, newCard(r, i == 0 && r.Priority >= news.PriorityHighest))
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "daily.html.tmpl", view); err != nil {
		return "", fmt.Errorf("render digest: %w", err)
	}
	return buf.String(), nil
}

// PlainText is the text/plain alternative of the daily mail.
func PlainText(d Digest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "電信產業日報 %s | 共 %d 則新聞\n\n", FormatTaiwanDate(d.Date), len(d.Records))
	for i, r := range d.Records {
		fmt.Fprintf(&b, "%d. [%s] %s\n   %s (%s)\n\n", i+1, r.Category, r.Title, r.Link, r.Source)
	}
	return b.String()
}

func newCard(r news.Record, featured bool) cardView {
	summary := news.Truncate(r.Description, summaryLength)
	if summary != r.Description {
		summary += "…"
	}
	return cardView{
		Title:       r.Title,
		Link:        r.Link,
		Summary:     summary,
		Source:      r.Source,
		Published:   r.Published.In(Taiwan).Format("01/02 15:04"),
		Icon:        categoryIcons[r.Category],
		BorderColor: categoryColors[r.Category],
		Badges:      BadgesFor(r, featured),
	}
}

// ErrorNotice describes a failed run.
type ErrorNotice struct {
	Type      string
	Details   []string
	Timestamp time.Time
	RunURL    string
}

// RenderError produces the HTML body of the failure notice.
func RenderError(n ErrorNotice) (string, error) {
	view := struct {
		Type      string
		Details   []string
		Timestamp string
		RunURL    string
	}{
		Type:      n.Type,
		Details:   n.Details,
		Timestamp: FormatTaiwanTimestamp(n.Timestamp),
		RunURL:    n.RunURL,
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "error.html.tmpl", view); err != nil {
		return "", fmt.Errorf("render error notice: %w", err)
	}
	return buf.String(), nil
}

// RunURL builds the CI run link from GitHub Actions variables, or "".
func RunURL(serverURL, repository, runID string) string {
	if serverURL == "" || repository == "" || runID == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s/actions/runs/%s", strings.TrimRight(serverURL, "/"), repository, runID)
}
