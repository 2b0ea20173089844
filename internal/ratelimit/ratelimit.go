package ratelimit

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// HostLimiter spaces out requests per host so feeds and article pages served
// from the same site are not hit in bursts.
type HostLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	counts   map[string]int
	interval time.Duration
	burst    int
}

// NewHostLimiter allows burst requests per host, then one per interval.
// A non-positive interval disables limiting.
func NewHostLimiter(interval time.Duration, burst int) *HostLimiter {
	if burst < 1 {
		burst = 1
	}
	return &HostLimiter{
		limiters: make(map[string]*rate.Limiter),
		counts:   make(map[string]int),
		interval: interval,
		burst:    burst,
	}
}

// Wait blocks until a request to rawURL's host is allowed or ctx is done.
func (h *HostLimiter) Wait(ctx context.Context, rawURL string) error {
	host := HostOf(rawURL)
	l := h.limiterFor(host)
	if err := l.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait for %s: %w", host, err)
	}
	return nil
}

func (h *HostLimiter) limiterFor(host string) *rate.Limiter {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.counts[host]++
	l, ok := h.limiters[host]
	if !ok {
		limit := rate.Inf
		if h.interval > 0 {
			limit = rate.Every(h.interval)
		}
		l = rate.NewLimiter(limit, h.burst)
		h.limiters[host] = l
	}
	return l
}

// GetStats returns the number of requests seen per host.
func (h *HostLimiter) GetStats() map[string]int {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make(map[string]int, len(h.counts))
	for k, v := range h.counts {
		out[k] = v
	}
	return out
}

// HostOf returns the lowercase hostname of rawURL, or "unknown".
func HostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return u.Hostname()
}
