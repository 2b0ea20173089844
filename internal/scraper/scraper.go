package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/deusflow/teledigest/internal/logger"
	"github.com/deusflow/teledigest/internal/news"
	"github.com/deusflow/teledigest/internal/ratelimit"
)

const (
	DefaultTimeout     = 15 * time.Second
	DefaultMaxArticles = 5

	minParagraphLength = 20
	maxParagraphs      = 3
)

// Enricher fills empty record descriptions from the article pages.
type Enricher struct {
	client      *http.Client
	limiter     *ratelimit.HostLimiter
	headers     map[string]string
	maxArticles int
}

// NewEnricher builds an Enricher. limiter may be nil; headers are sent with
// each page request.
func NewEnricher(client *http.Client, limiter *ratelimit.HostLimiter, headers map[string]string, maxArticles int) *Enricher {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	if maxArticles <= 0 {
		maxArticles = DefaultMaxArticles
	}
	return &Enricher{client: client, limiter: limiter, headers: headers, maxArticles: maxArticles}
}

// Enrich fetches a summary for up to maxArticles records that have no
// description. Failures are logged and leave the record unchanged. It
// returns the number of records filled.
func (e *Enricher) Enrich(ctx context.Context, records []news.Record) int {
	tried, filled := 0, 0
	for i := range records {
		if records[i].Description != "" {
			continue
		}
		if tried >= e.maxArticles {
			break
		}
		tried++

		summary, err := e.ExtractSummary(ctx, records[i].Link)
		if err != nil {
			logger.Warn("Can't get article summary", "url", records[i].Link, "error", err)
			continue
		}
		records[i].Description = news.CleanDescription(summary)
		if records[i].Description != "" {
			filled++
			logger.Debug("Description enriched", "url", records[i].Link, "chars", len(records[i].Description))
		}
	}
	return filled
}

// ExtractSummary loads url and returns its best short description.
func (e *Enricher) ExtractSummary(ctx context.Context, url string) (string, error) {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx, url); err != nil {
			return "", err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	for k, v := range e.headers {
		req.Header.Set(k, v)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("error loading page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error parsing HTML: %w", err)
	}

	summary := extractSummary(doc, url)
	if summary == "" {
		return "", fmt.Errorf("no summary found")
	}
	return summary, nil
}

func extractSummary(doc *goquery.Document, url string) string {
	metaSelectors := []string{
		`meta[property="og:description"]`,
		`meta[name="description"]`,
		`meta[name="twitter:description"]`,
	}
	for _, sel := range metaSelectors {
		if v, ok := doc.Find(sel).First().Attr("content"); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return extractParagraphs(doc, bodySelectors(url))
}

// bodySelectors returns paragraph selectors, site specific ones first.
func bodySelectors(url string) []string {
	var site []string
	switch {
	case strings.Contains(url, "lightreading.com"):
		site = []string{".ArticleBase-Body p", ".article-content p"}
	case strings.Contains(url, "fiercewireless.com"):
		site = []string{".article-body p", ".field--name-body p"}
	case strings.Contains(url, "rcrwireless.com"):
		site = []string{".td-post-content p", ".entry-content p"}
	case strings.Contains(url, "technews.tw"):
		site = []string{".indent p", ".entry-content p"}
	}

	generic := []string{
		"article p",
		".article p",
		".content p",
		".post-content p",
		".entry-content p",
		"main p",
		"p",
	}
	return append(site, generic...)
}

func extractParagraphs(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		var paragraphs []string
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := strings.TrimSpace(s.Text())
			if len([]rune(text)) > minParagraphLength {
				paragraphs = append(paragraphs, text)
			}
			return len(paragraphs) < maxParagraphs
		})
		if len(paragraphs) > 0 {
			return strings.Join(paragraphs, " ")
		}
	}
	return ""
}
