package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/teledigest/internal/news"
)

func doc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return d
}

func TestExtractSummaryPrefersMeta(t *testing.T) {
	d := doc(t, `<html><head>
		<meta name="description" content="plain description">
		<meta property="og:description" content="open graph description">
	</head><body><article><p>A paragraph that is long enough to be used.</p></article></body></html>`)

	assert.Equal(t, "open graph description", extractSummary(d, "https://x.example/a"))
}

func TestExtractSummaryFallsBackToParagraphs(t *testing.T) {
	d := doc(t, `<html><body><article>
		<p>short</p>
		<p>First paragraph with enough text in it.</p>
		<p>Second paragraph with enough text in it.</p>
		<p>Third paragraph with enough text in it.</p>
		<p>Fourth paragraph with enough text in it.</p>
	</article></body></html>`)

	got := extractSummary(d, "https://x.example/a")

	assert.Equal(t, "First paragraph with enough text in it. Second paragraph with enough text in it. Third paragraph with enough text in it.", got)
}

func TestExtractSummarySiteSelectors(t *testing.T) {
	d := doc(t, `<html><body>
		<div class="td-post-content"><p>RCR body paragraph with plenty of words.</p></div>
		<footer><p>Footer paragraph that should not be picked first.</p></footer>
	</body></html>`)

	got := extractSummary(d, "https://www.rcrwireless.com/2026/story")
	assert.Equal(t, "RCR body paragraph with plenty of words.", got)
}

func TestEnrichFillsEmptyDescriptions(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`<html><head><meta name="description" content="  Ericsson &amp; partner <b>deal</b>  "></head></html>`))
	}))
	defer srv.Close()

	records := []news.Record{
		{Title: "has description", Link: srv.URL + "/a", Description: "kept"},
		{Title: "empty", Link: srv.URL + "/b"},
		{Title: "broken", Link: srv.URL + "/missing"},
	}

	e := NewEnricher(srv.Client(), nil, map[string]string{"User-Agent": "teledigest-test"}, 5)
	filled := e.Enrich(context.Background(), records)

	assert.Equal(t, 1, filled)
	assert.Equal(t, "kept", records[0].Description)
	assert.Equal(t, "Ericsson & partner deal", records[1].Description)
	assert.Equal(t, "", records[2].Description)
	assert.Equal(t, "teledigest-test", gotUA)
}

func TestEnrichRespectsMaxArticles(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(`<html><head><meta name="description" content="summary text"></head></html>`))
	}))
	defer srv.Close()

	records := make([]news.Record, 4)
	for i := range records {
		records[i] = news.Record{Link: srv.URL}
	}

	filled := NewEnricher(srv.Client(), nil, nil, 2).Enrich(context.Background(), records)

	assert.Equal(t, 2, filled)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "", records[3].Description)
}
