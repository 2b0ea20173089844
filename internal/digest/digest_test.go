package digest

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/teledigest/internal/news"
)

func TestFormatTaiwanDate(t *testing.T) {
	// 20:00 UTC is already the next day in Taipei.
	got := FormatTaiwanDate(time.Date(2026, 1, 23, 20, 0, 0, 0, time.UTC))
	assert.Equal(t, "2026年01月24日 (Sat)", got)
}

func TestSubjects(t *testing.T) {
	now := time.Date(2026, 1, 23, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, "📡 電信產業日報 - 2026年01月23日 (Fri)", Subject(now))
	assert.Equal(t, "⚠️ 電信日報系統錯誤 - RSS 抓取失敗", ErrorSubject("RSS 抓取失敗"))
}

func TestRender(t *testing.T) {
	records := []news.Record{
		{
			Title:     "Ericsson wins 5G contract",
			Link:      "https://a.example/ericsson",
			Source:    "Light Reading",
			Priority:  90,
			Category:  news.CategoryEricsson,
			Published: time.Date(2026, 1, 23, 2, 0, 0, 0, time.UTC),
		},
		{
			Title:       "AT&T <tests> Open RAN",
			Link:        "https://b.example/ran",
			Description: strings.Repeat("x", 200),
			Source:      "Fierce Wireless",
			Priority:    70,
			Category:    news.CategoryRAN,
		},
	}
	d := Digest{
		Date:    time.Date(2026, 1, 23, 1, 0, 0, 0, time.UTC),
		Records: records,
		Stats:   news.ComputeStats(records),
		Sources: []string{"Light Reading", "Fierce Wireless"},
	}

	html, err := Render(d)
	require.NoError(t, err)

	assert.Contains(t, html, "2026年01月23日 (Fri)")
	assert.Contains(t, html, "共 2 則新聞")
	assert.Contains(t, html, "Ericsson wins 5G contract")
	assert.Contains(t, html, `href="https://a.example/ericsson"`)
	assert.Contains(t, html, "AT&amp;T &lt;tests&gt; Open RAN")
	assert.NotContains(t, html, "<tests>")
	assert.Contains(t, html, "badge-hot")
	assert.Contains(t, html, "badge-ran")
	assert.Contains(t, html, strings.Repeat("x", 150)+"…")
	assert.Contains(t, html, "排序：關鍵字優先級")
	assert.Contains(t, html, "資料來源：Light Reading, Fierce Wireless")
}

func TestRenderError(t *testing.T) {
	html, err := RenderError(ErrorNotice{
		Type:      "RSS 抓取失敗",
		Details:   []string{"No news items fetched from any source", "Network error fetching A: <timeout>"},
		Timestamp: time.Date(2026, 1, 23, 0, 0, 0, 0, time.UTC),
		RunURL:    "https://github.com/acme/digest/actions/runs/42",
	})
	require.NoError(t, err)

	assert.Contains(t, html, "錯誤類型：RSS 抓取失敗")
	assert.Contains(t, html, "2026-01-23 08:00:00 (台北時間)")
	assert.Contains(t, html, "Network error fetching A: &lt;timeout&gt;")
	assert.Contains(t, html, `href="https://github.com/acme/digest/actions/runs/42"`)

	html, err = RenderError(ErrorNotice{Type: "系統錯誤"})
	require.NoError(t, err)
	assert.NotContains(t, html, "查看完整 logs")
}

func TestRunURL(t *testing.T) {
	assert.Equal(t, "https://github.com/acme/d/actions/runs/7", RunURL("https://github.com/", "acme/d", "7"))
	assert.Equal(t, "", RunURL("", "acme/d", "7"))
}

func TestPlainText(t *testing.T) {
	text := PlainText(Digest{
		Date:    time.Date(2026, 1, 23, 1, 0, 0, 0, time.UTC),
		Records: []news.Record{{Title: "T", Link: "https://x", Source: "S", Category: news.CategoryCore}},
	})

	assert.Contains(t, text, "共 1 則新聞")
	assert.Contains(t, text, "1. [core] T")
}
