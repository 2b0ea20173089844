package rss

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"

	"github.com/deusflow/teledigest/internal/dates"
	"github.com/deusflow/teledigest/internal/logger"
	"github.com/deusflow/teledigest/internal/metrics"
	"github.com/deusflow/teledigest/internal/news"
	"github.com/deusflow/teledigest/internal/ratelimit"
)

var (
	// ErrNetwork covers transport failures, timeouts and non-2xx responses.
	ErrNetwork = errors.New("network error")
	// ErrFeedParse means the body could not be read as a feed.
	ErrFeedParse = errors.New("feed parse error")
)

const (
	DefaultTimeout     = 30 * time.Second
	DefaultLookback    = 24 * time.Hour
	DefaultConcurrency = 4

	maxFeedBytes = 10 << 20
)

// DefaultHeaders are sent with every feed request. Some providers reject
// the default Go client identity.
var DefaultHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Accept":          "application/rss+xml, application/xml, text/xml, */*",
	"Accept-Language": "zh-TW,zh;q=0.9,en-US;q=0.8,en;q=0.7",
}

// SourceError is a failed source. Its message is the label reported in the
// run diagnostics.
type SourceError struct {
	Source string
	Kind   error
	Err    error
}

func (e *SourceError) Error() string {
	if errors.Is(e.Kind, ErrNetwork) {
		return fmt.Sprintf("Network error fetching %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("Error fetching %s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() []error { return []error{e.Kind, e.Err} }

// Options configures a Fetcher. Zero values fall back to the defaults.
type Options struct {
	Client      *http.Client
	Timeout     time.Duration
	Lookback    time.Duration
	Concurrency int
	Headers     map[string]string
	Resolver    *dates.Resolver
	Scorer      *news.Scorer
	Limiter     *ratelimit.HostLimiter
	// Filter, when set, drops scored records in FetchAndPrioritize before
	// truncation.
	Filter      func(news.Record) bool
	Now         func() time.Time
}

// Fetcher downloads sources and turns their entries into records.
type Fetcher struct {
	client      *http.Client
	timeout     time.Duration
	lookback    time.Duration
	concurrency int
	headers     map[string]string
	resolver    *dates.Resolver
	scorer      *news.Scorer
	limiter     *ratelimit.HostLimiter
	filter      func(news.Record) bool
	now         func() time.Time
}

func NewFetcher(opts Options) *Fetcher {
	f := &Fetcher{
		client:      opts.Client,
		timeout:     opts.Timeout,
		lookback:    opts.Lookback,
		concurrency: opts.Concurrency,
		headers:     opts.Headers,
		resolver:    opts.Resolver,
		scorer:      opts.Scorer,
		limiter:     opts.Limiter,
		filter:      opts.Filter,
		now:         opts.Now,
	}
	if f.timeout <= 0 {
		f.timeout = DefaultTimeout
	}
	if f.client == nil {
		f.client = &http.Client{Timeout: f.timeout}
	}
	if f.lookback <= 0 {
		f.lookback = DefaultLookback
	}
	if f.concurrency < 1 {
		f.concurrency = DefaultConcurrency
	}
	if f.headers == nil {
		f.headers = DefaultHeaders
	}
	if f.resolver == nil {
		f.resolver = dates.NewResolver()
	}
	if f.scorer == nil {
		f.scorer = news.DefaultScorer()
	}
	if f.now == nil {
		f.now = time.Now
	}
	return f
}

type sourceResult struct {
	items []*gofeed.Item
	err   error
}

// FetchAll downloads every source and returns the surviving records, most
// recent first, plus one label per failed source. A nil seen set gets a
// fresh one. Sources are downloaded concurrently but their entries are
// processed in configured order, so the first occurrence of a link wins.
func (f *Fetcher) FetchAll(ctx context.Context, sources []Source, seen *news.SeenSet) ([]news.Record, []string) {
	if seen == nil {
		seen = news.NewSeenSet()
	}

	results := make([]sourceResult, len(sources))
	var g errgroup.Group
	g.SetLimit(f.concurrency)
	for i, src := range sources {
		g.Go(func() error {
			items, err := f.fetchSource(ctx, src)
			results[i] = sourceResult{items: items, err: err}
			return nil
		})
	}
	_ = g.Wait()

	cutoff := f.now().Add(-f.lookback)
	var records []news.Record
	var errs []string
	for i, src := range sources {
		res := results[i]
		if res.err != nil {
			logger.Error("Feed fetch failed", "source", src.Name, "url", src.URL, "error", res.err)
			metrics.RecordSource(src.Name, false)
			errs = append(errs, res.err.Error())
			continue
		}
		metrics.RecordSource(src.Name, true)

		kept := 0
		for _, item := range res.items {
			rec, ok := f.buildRecord(src, item, cutoff, seen)
			if !ok {
				continue
			}
			records = append(records, rec)
			kept++
		}
		logger.Info("Feed processed", "source", src.Name, "entries", len(res.items), "kept", kept)
	}

	news.SortByPublished(records)
	logger.Info("Fetched all feeds", "sources", len(sources), "failed", len(errs), "records", len(records))
	return records, errs
}

// FetchAndPrioritize runs FetchAll with a fresh seen set, scores every record,
// applies the filter and returns at most maxItems of them by priority
// descending.
func (f *Fetcher) FetchAndPrioritize(ctx context.Context, sources []Source, maxItems int) ([]news.Record, []string) {
	records, errs := f.FetchAll(ctx, sources, news.NewSeenSet())
	for i := range records {
		f.scorer.Apply(&records[i])
	}
	if f.filter != nil {
		records = f.applyFilter(records)
	}
	news.SortByPriority(records)

	if maxItems < 0 {
		maxItems = 0
	}
	if len(records) > maxItems {
		records = records[:maxItems]
	}
	return records, errs
}

func (f *Fetcher) applyFilter(records []news.Record) []news.Record {
	kept := records[:0]
	for _, r := range records {
		if f.filter(r) {
			kept = append(kept, r)
			continue
		}
		logger.Debug("Dropping irrelevant entry", "source", r.Source, "title", r.Title)
		metrics.RecordDrop(metrics.DropIrrelevant)
	}
	logger.Info("Relevance filter applied", "kept", len(kept), "dropped", len(records)-len(kept))
	return kept
}

func (f *Fetcher) buildRecord(src Source, item *gofeed.Item, cutoff time.Time, seen *news.SeenSet) (news.Record, bool) {
	entry := EntryFromItem(item)

	published, err := f.resolver.Resolve(entry.Dates)
	if err != nil {
		logger.Debug("Dropping entry without date", "source", src.Name, "title", entry.Title)
		metrics.RecordDrop(metrics.DropUnresolvedDate)
		return news.Record{}, false
	}
	if published.Before(cutoff) {
		metrics.RecordDrop(metrics.DropOutsideWindow)
		return news.Record{}, false
	}

	rec, err := news.NewRecord(entry.Title, entry.Link, entry.Description, published, src.Name, src.Language)
	if err != nil {
		logger.Debug("Dropping incomplete entry", "source", src.Name, "link", entry.Link)
		metrics.RecordDrop(metrics.DropIncomplete)
		return news.Record{}, false
	}

	if !seen.Add(rec.DedupKey) {
		logger.Debug("Duplicate entry skipped", "source", src.Name, "link", rec.Link)
		metrics.RecordDrop(metrics.DropDuplicate)
		return news.Record{}, false
	}
	return rec, true
}

func (f *Fetcher) fetchSource(ctx context.Context, src Source) ([]*gofeed.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, src.URL); err != nil {
			return nil, &SourceError{Source: src.Name, Kind: ErrNetwork, Err: err}
		}
	}

	body, err := f.download(ctx, src.URL)
	if err != nil {
		return nil, &SourceError{Source: src.Name, Kind: ErrNetwork, Err: err}
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		if feed == nil || len(feed.Items) == 0 {
			return nil, &SourceError{Source: src.Name, Kind: ErrFeedParse, Err: err}
		}
		logger.Warn("Feed parsed with errors", "source", src.Name, "error", err)
	}
	if feed == nil {
		return nil, nil
	}
	return feed.Items, nil
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}
