package app

import (
	"fmt"
	"time"

	"github.com/deusflow/teledigest/internal/config"
	"github.com/deusflow/teledigest/internal/news"
	"github.com/deusflow/teledigest/internal/ratelimit"
	"github.com/deusflow/teledigest/internal/rss"
)

// NewFetcher builds the feed fetcher for cfg with the given lookback. With
// RequireRelevance set, off-topic records are dropped before truncation.
func NewFetcher(cfg *config.Config, lookback time.Duration) (*rss.Fetcher, *ratelimit.HostLimiter, error) {
	scorer, err := news.NewScorer(cfg.Keywords)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid keywords: %w", err)
	}

	limiter := ratelimit.NewHostLimiter(cfg.HostInterval, 1)
	opts := rss.Options{
		Timeout:     cfg.RequestTimeout,
		Lookback:    lookback,
		Concurrency: cfg.FetchConcurrency,
		Scorer:      scorer,
		Limiter:     limiter,
	}
	if cfg.RequireRelevance {
		opts.Filter = func(r news.Record) bool {
			return scorer.IsRelevant(r.Title, r.Description)
		}
	}
	return rss.NewFetcher(opts), limiter, nil
}
