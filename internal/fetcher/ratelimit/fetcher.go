// Package ratelimit caps the request rate of a Fetcher per host.
package ratelimit

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"

	"github.com/JakeFAU/yoweb-scraper/internal/crawler"
)

// Config holds the per-host token bucket parameters.
type Config struct {
	// RPS is the sustained requests per second per host. Zero or less
	// disables limiting.
	RPS   float64
	Burst int
}

// Fetcher waits for a per-host token before delegating to next.
type Fetcher struct {
	next  crawler.Fetcher
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// New wraps next.
func New(next crawler.Fetcher, cfg Config) *Fetcher {
	r := rate.Limit(cfg.RPS)
	if cfg.RPS <= 0 {
		r = rate.Inf
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Fetcher{
		next:     next,
		limit:    r,
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Fetch implements crawler.Fetcher. A wait cut short by ctx is reported as a
// *crawler.FetchError so the stage records it like any other failed attempt.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (crawler.Page, error) {
	if err := f.limiter(rawURL).Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return crawler.Page{}, &crawler.FetchError{URL: rawURL, Err: err}
	}
	return f.next.Fetch(ctx, rawURL)
}

func (f *Fetcher) limiter(rawURL string) *rate.Limiter {
	host := "unknown"
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		host = u.Hostname()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.limiters[host]
	if !ok {
		l = rate.NewLimiter(f.limit, f.burst)
		f.limiters[host] = l
	}
	return l
}
