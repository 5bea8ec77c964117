package stage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/JakeFAU/yoweb-scraper/internal/crawler"
	"github.com/JakeFAU/yoweb-scraper/internal/extract"
)

type mapFetcher struct {
	pages map[string]string
	calls []string
}

func (f *mapFetcher) Fetch(_ context.Context, url string) (crawler.Page, error) {
	f.calls = append(f.calls, url)
	body, ok := f.pages[url]
	if !ok {
		return crawler.Page{}, &crawler.StatusError{URL: url, StatusCode: 404}
	}
	return crawler.Page{URL: url, StatusCode: 200, Body: []byte(body)}, nil
}

type recordingObserver struct {
	items  map[string]int
	stages []string
}

func (o *recordingObserver) ObserveItem(_, outcome string, _ time.Duration) {
	if o.items == nil {
		o.items = map[string]int{}
	}
	o.items[outcome]++
}

func (o *recordingObserver) ObserveStage(stage string, _, _, _ int) {
	o.stages = append(o.stages, stage)
}

func TestRunIsolatesFailures(t *testing.T) {
	t.Parallel()

	fetcher := &mapFetcher{pages: map[string]string{
		"a": "alpha",
		"b": "bad",
		"d": "delta",
	}}
	var sleeps []time.Duration
	obs := &recordingObserver{}
	core, logs := observer.New(zap.InfoLevel)
	r := NewRunner(fetcher, 250*time.Millisecond, zap.New(core),
		WithObserver(obs),
		WithSleep(func(_ context.Context, d time.Duration) { sleeps = append(sleeps, d) }),
	)

	keys := []string{"a", "b", "c", "d"}
	res := Run(context.Background(), r, "letters", keys, func(key string, page crawler.Page) ([]string, error) {
		if page.Text() == "bad" {
			return nil, &extract.ParseError{Page: key, Reason: "no anchor"}
		}
		return []string{page.Text(), page.Text()}, nil
	})

	assert.Equal(t, []string{"a", "b", "c", "d"}, fetcher.calls)
	assert.Equal(t, []string{"alpha", "alpha", "delta", "delta"}, res.Rows)
	require.Len(t, res.Failures, 2)
	assert.Equal(t, "b", res.Failures[0].Key)
	assert.Equal(t, crawler.KindParse, res.Failures[0].Kind)
	assert.Equal(t, "c", res.Failures[1].Key)
	assert.Equal(t, crawler.KindHTTPStatus, res.Failures[1].Kind)
	assert.Equal(t, "HTTP Error: 404", res.Failures[1].Message)
	require.Len(t, res.Errors, 2)
	var statusErr *crawler.StatusError
	assert.ErrorAs(t, res.Errors[1], &statusErr)

	assert.Equal(t, Summary{
		Stage:     "letters",
		Input:     4,
		Succeeded: 2,
		Failed:    2,
		Rows:      4,
		Delay:     250 * time.Millisecond,
	}, res.Summary)
	assert.Equal(t, len(keys), res.Summary.Succeeded+res.Summary.Failed)

	assert.Len(t, sleeps, len(keys))
	assert.Equal(t, map[string]int{OutcomeSuccess: 2, OutcomeFailure: 2}, obs.items)
	assert.Equal(t, []string{"letters"}, obs.stages)

	assert.Equal(t, 2, logs.FilterMessage("item scraped").Len())
	assert.Equal(t, 2, logs.FilterMessage("item failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("stage finished").Len())
}

func TestRunEmptyInput(t *testing.T) {
	t.Parallel()

	r := NewRunner(&mapFetcher{}, time.Second, nil, WithSleep(func(context.Context, time.Duration) {
		t.Fatal("no keys means no pauses")
	}))
	res := Run(context.Background(), r, "empty", nil, func(string, crawler.Page) ([]int, error) {
		return []int{1}, nil
	})
	assert.Empty(t, res.Rows)
	assert.Empty(t, res.Failures)
	assert.Equal(t, 0, res.Summary.Input)
}

func TestRunSuccessWithNoRows(t *testing.T) {
	t.Parallel()

	r := NewRunner(&mapFetcher{pages: map[string]string{"x": ""}}, 0, nil)
	res := Run(context.Background(), r, "none", []string{"x"}, func(string, crawler.Page) ([]int, error) {
		return nil, nil
	})
	assert.Equal(t, 1, res.Summary.Succeeded)
	assert.Equal(t, 0, res.Summary.Rows)
	assert.Empty(t, res.Failures)
}

func TestRunPlainErrorKind(t *testing.T) {
	t.Parallel()

	r := NewRunner(&mapFetcher{pages: map[string]string{"x": ""}}, 0, nil)
	res := Run(context.Background(), r, "plain", []string{"x"}, func(string, crawler.Page) ([]int, error) {
		return nil, errors.New("")
	})
	require.Len(t, res.Failures, 1)
	assert.Equal(t, crawler.KindOther, res.Failures[0].Kind)
	assert.Equal(t, "", res.Failures[0].Message)
}

func TestUniqueKeys(t *testing.T) {
	t.Parallel()

	got := UniqueKeys([]string{" b ", "a", "", "b", "  ", "c", "a"})
	assert.Equal(t, []string{"b", "a", "c"}, got)
	assert.Empty(t, UniqueKeys(nil))
}

func TestPauseHonoursContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	pause(ctx, time.Hour)
	assert.Less(t, time.Since(start), time.Second)

	pause(context.Background(), 0)
}
