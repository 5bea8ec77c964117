// Package stage runs one extraction stage: fetch and parse each input key in
// order, isolating per-item failures.
package stage

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/yoweb-scraper/internal/crawler"
	"github.com/JakeFAU/yoweb-scraper/internal/model"
)

// Item outcomes reported to an Observer.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// ParseFunc turns one fetched page into zero or more rows.
type ParseFunc[T any] func(key string, page crawler.Page) ([]T, error)

// Observer receives per-item and per-stage measurements.
type Observer interface {
	ObserveItem(stage, outcome string, elapsed time.Duration)
	ObserveStage(stage string, input, succeeded, failed int)
}

// Summary describes one completed stage.
type Summary struct {
	Stage     string        `json:"stage"`
	Input     int           `json:"input"`
	Succeeded int           `json:"success"`
	Failed    int           `json:"failures"`
	Rows      int           `json:"rows"`
	Delay     time.Duration `json:"delay"`
}

// Result holds a stage's success rows and its parallel failure records.
// Errors[i] is the error behind Failures[i].
type Result[T any] struct {
	Rows     []T
	Failures []model.Failure
	Errors   []error
	Summary  Summary
}

// Runner holds what every stage shares: the fetcher, the pause between
// requests, and where progress goes.
type Runner struct {
	fetcher  crawler.Fetcher
	delay    time.Duration
	logger   *zap.Logger
	observer Observer
	sleep    func(ctx context.Context, d time.Duration)
}

// Option customizes a Runner.
type Option func(*Runner)

// WithObserver records item and stage metrics.
func WithObserver(o Observer) Option {
	return func(r *Runner) {
		r.observer = o
	}
}

// WithSleep replaces the pause applied after each attempt.
func WithSleep(fn func(ctx context.Context, d time.Duration)) Option {
	return func(r *Runner) {
		if fn != nil {
			r.sleep = fn
		}
	}
}

// NewRunner constructs a Runner. A nil logger discards output.
func NewRunner(fetcher crawler.Fetcher, delay time.Duration, logger *zap.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Runner{
		fetcher: fetcher,
		delay:   delay,
		logger:  logger,
		sleep:   pause,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Delay returns the pause applied after each attempt.
func (r *Runner) Delay() time.Duration {
	return r.delay
}

// Run processes keys in order. Every key ends up either contributing rows or
// exactly one failure record, so Succeeded+Failed always equals len(keys).
// The delay is applied after every attempt regardless of outcome.
func Run[T any](ctx context.Context, r *Runner, name string, keys []string, parse ParseFunc[T]) Result[T] {
	logger := r.logger.With(zap.String("stage", name))
	res := Result[T]{
		Summary: Summary{Stage: name, Input: len(keys), Delay: r.delay},
	}
	logger.Info("stage started", zap.Int("input", len(keys)), zap.Duration("delay", r.delay))

	for i, key := range keys {
		start := time.Now()
		rows, err := attempt(ctx, r.fetcher, key, parse)
		elapsed := time.Since(start)
		if err != nil {
			res.Failures = append(res.Failures, model.Failure{
				Key:     key,
				Kind:    crawler.ErrorKind(err),
				Message: err.Error(),
			})
			res.Errors = append(res.Errors, err)
			res.Summary.Failed++
			logger.Warn("item failed",
				zap.Int("index", i+1),
				zap.Int("total", len(keys)),
				zap.String("url", key),
				zap.String("error_type", crawler.ErrorKind(err)),
				zap.Error(err),
			)
			r.observe(name, OutcomeFailure, elapsed)
		} else {
			res.Rows = append(res.Rows, rows...)
			res.Summary.Succeeded++
			logger.Info("item scraped",
				zap.Int("index", i+1),
				zap.Int("total", len(keys)),
				zap.String("url", key),
				zap.Int("rows", len(rows)),
			)
			r.observe(name, OutcomeSuccess, elapsed)
		}
		r.sleep(ctx, r.delay)
	}

	res.Summary.Rows = len(res.Rows)
	if r.observer != nil {
		r.observer.ObserveStage(name, res.Summary.Input, res.Summary.Succeeded, res.Summary.Failed)
	}
	logger.Info("stage finished",
		zap.Int("input", res.Summary.Input),
		zap.Int("success", res.Summary.Succeeded),
		zap.Int("failures", res.Summary.Failed),
		zap.Int("rows", res.Summary.Rows),
	)
	return res
}

func attempt[T any](ctx context.Context, fetcher crawler.Fetcher, key string, parse ParseFunc[T]) ([]T, error) {
	page, err := fetcher.Fetch(ctx, key)
	if err != nil {
		return nil, err
	}
	return parse(key, page)
}

func (r *Runner) observe(name, outcome string, elapsed time.Duration) {
	if r.observer != nil {
		r.observer.ObserveItem(name, outcome, elapsed)
	}
}

// UniqueKeys trims each key, drops blanks, and removes duplicates while
// keeping first-seen order.
func UniqueKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// pause blocks for d or until ctx is done.
func pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
