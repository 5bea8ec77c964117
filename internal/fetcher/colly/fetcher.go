// Package collyfetcher implements Fetcher using gocolly.
package collyfetcher

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/JakeFAU/yoweb-scraper/internal/crawler"
)

const defaultTimeout = 30 * time.Second

// Config controls collector behavior.
type Config struct {
	UserAgent     string
	RespectRobots bool
	Timeout       time.Duration
	// Transport overrides the pooled default. Tests use it to point at
	// httptest servers.
	Transport http.RoundTripper
}

// Fetcher implements crawler.Fetcher using the Colly collector.
type Fetcher struct {
	cfg           Config
	baseCollector *colly.Collector
}

type collectorHooks interface {
	OnResponse(colly.ResponseCallback)
	OnError(colly.ErrorCallback)
}

// outcome is filled in by collector callbacks during a single visit.
type outcome struct {
	page       crawler.Page
	statusCode int
	err        error
}

// New builds a Fetcher.
func New(cfg Config) *Fetcher {
	c := colly.NewCollector(colly.Async(false))
	// The pirates and shoppes stages visit the same profile URLs.
	c.AllowURLRevisit = true
	c.ParseHTTPErrorResponse = true

	transport := cfg.Transport
	if transport == nil {
		transport = newHTTPTransport()
	}
	c.WithTransport(transport)

	return &Fetcher{
		cfg:           cfg,
		baseCollector: c,
	}
}

// Fetch executes a single HTTP GET using Colly. Non-2xx responses yield a
// *crawler.StatusError; transport failures a *crawler.FetchError.
func (f *Fetcher) Fetch(ctx context.Context, url string) (crawler.Page, error) {
	var out outcome
	start := time.Now()
	collector := f.buildCollector()
	f.configureCollectorHooks(collector, start, &out)

	visitErr, ctxErr := f.runCollector(ctx, collector, url)
	if ctxErr != nil {
		// The visit goroutine may still be writing to out.
		return crawler.Page{}, &crawler.FetchError{URL: url, Err: ctxErr}
	}
	if err := visitErr; err != nil {
		if out.statusCode != 0 && !isSuccess(out.statusCode) {
			return crawler.Page{}, &crawler.StatusError{URL: url, StatusCode: out.statusCode}
		}
		return crawler.Page{}, &crawler.FetchError{URL: url, Err: err}
	}
	if out.err != nil {
		return crawler.Page{}, &crawler.FetchError{URL: url, Err: out.err}
	}
	if !isSuccess(out.page.StatusCode) {
		return crawler.Page{}, &crawler.StatusError{URL: url, StatusCode: out.page.StatusCode}
	}
	return out.page, nil
}

func (f *Fetcher) buildCollector() *colly.Collector {
	collector := f.baseCollector.Clone()
	if f.cfg.UserAgent != "" {
		collector.UserAgent = f.cfg.UserAgent
	}
	collector.IgnoreRobotsTxt = !f.cfg.RespectRobots
	timeout := f.cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	collector.SetRequestTimeout(timeout)
	return collector
}

func (f *Fetcher) configureCollectorHooks(hooks collectorHooks, start time.Time, out *outcome) {
	hooks.OnResponse(func(r *colly.Response) {
		out.statusCode = r.StatusCode
		out.page = crawler.Page{
			URL:        r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Body:       append([]byte(nil), r.Body...),
			Duration:   time.Since(start),
		}
	})

	hooks.OnError(func(r *colly.Response, err error) {
		if r != nil {
			out.statusCode = r.StatusCode
		}
		out.err = err
	})
}

// runCollector reports the visit error separately from a context error so the
// caller knows whether the callbacks have finished.
func (f *Fetcher) runCollector(ctx context.Context, collector *colly.Collector, url string) (visitErr, ctxErr error) {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("colly fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("colly visit failed: %w", err), nil
		}
		return nil, nil
	}
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
