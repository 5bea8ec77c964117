// Package pipeline sequences the extraction stages, threading each stage's
// output into its consumers, and assembles the run's output tables.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/yoweb-scraper/internal/crawler"
	"github.com/JakeFAU/yoweb-scraper/internal/dataset"
	"github.com/JakeFAU/yoweb-scraper/internal/extract"
	"github.com/JakeFAU/yoweb-scraper/internal/model"
	"github.com/JakeFAU/yoweb-scraper/internal/stage"
)

// Config names the flag roster entry point.
type Config struct {
	RootURL string
	// BaseURL resolves relative links, e.g. "https://emerald.puzzlepirates.com".
	BaseURL string
}

// Coordinator runs the stages in dependency order.
type Coordinator struct {
	runner *stage.Runner
	cfg    Config
	clock  crawler.Clock
	ids    crawler.IDGenerator
	hasher crawler.Hasher
	logger *zap.Logger
}

// Result is everything a completed run produced.
type Result struct {
	State    State
	Royals   []model.Royal
	Tables   []dataset.Table
	Manifest Manifest
}

// New constructs a Coordinator.
func New(
	runner *stage.Runner,
	cfg Config,
	clock crawler.Clock,
	ids crawler.IDGenerator,
	hasher crawler.Hasher,
	logger *zap.Logger,
) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		runner: runner,
		cfg:    cfg,
		clock:  clock,
		ids:    ids,
		hasher: hasher,
		logger: logger,
	}
}

// Run executes every stage once and finalizes. Per-item failures never
// surface here; a returned error is always a *StageError or an infrastructure
// failure (ID generation, hashing).
func (c *Coordinator) Run(ctx context.Context) (Result, error) {
	runID, err := c.ids.NewID()
	if err != nil {
		return Result{}, fmt.Errorf("run id: %w", err)
	}
	startedAt := c.clock.Now()
	logger := c.logger.With(zap.String("run_id", runID))
	logger.Info("run started", zap.String("root_url", c.cfg.RootURL))

	steps := []struct {
		name string
		fn   func(context.Context, State) (State, error)
	}{
		{StageCrews, c.Crews},
		{StageCrewDetails, c.CrewDetails},
		{StagePirateURLs, c.PirateURLs},
		{StagePirates, c.Pirates},
		{StageShoppes, c.Shoppes},
	}

	var state State
	for _, step := range steps {
		next, err := step.fn(ctx, state)
		if err != nil {
			logger.Error("stage aborted run", zap.String("stage", step.name), zap.Error(err))
			return Result{State: state}, err
		}
		state = next
	}

	stamp := c.clock.Now()
	royals, tables, err := Finalize(state, stamp)
	if err != nil {
		return Result{State: state}, err
	}
	manifest, err := c.manifest(runID, startedAt, stamp, state, tables)
	if err != nil {
		return Result{State: state}, err
	}
	logger.Info("run finished", zap.Int("tables", len(tables)), zap.Int("royals", len(royals)))
	return Result{State: state, Royals: royals, Tables: tables, Manifest: manifest}, nil
}

// Crews fetches the flag roster. It is the only stage with a single input,
// so a fetch or parse failure there aborts the run.
func (c *Coordinator) Crews(ctx context.Context, s State) (State, error) {
	if c.cfg.RootURL == "" {
		return s, &StageError{Stage: StageCrews, Err: fmt.Errorf("%w: root URL", ErrMissingInput)}
	}
	res := stage.Run(ctx, c.runner, StageCrews, []string{c.cfg.RootURL},
		func(_ string, page crawler.Page) ([]model.Crew, error) {
			return extract.Crews(page.Text(), c.cfg.BaseURL)
		})
	if len(res.Errors) > 0 {
		return s, &StageError{Stage: StageCrews, Err: res.Errors[0]}
	}
	s.Crews = outputOf(res)
	return s, nil
}

// CrewDetails reads each crew's info page.
func (c *Coordinator) CrewDetails(ctx context.Context, s State) (State, error) {
	if s.Crews == nil {
		return s, missing(StageCrewDetails, StageCrews)
	}
	res := stage.Run(ctx, c.runner, StageCrewDetails, s.crewURLs(),
		func(key string, page crawler.Page) ([]model.CrewDetail, error) {
			d, err := extract.CrewDetail(page.Text(), key)
			if err != nil {
				return nil, err
			}
			return []model.CrewDetail{d}, nil
		})
	s.CrewDetails = outputOf(res)
	return s, nil
}

// PirateURLs reads each crew's member roster.
func (c *Coordinator) PirateURLs(ctx context.Context, s State) (State, error) {
	if s.Crews == nil {
		return s, missing(StagePirateURLs, StageCrews)
	}
	res := stage.Run(ctx, c.runner, StagePirateURLs, s.crewURLs(),
		func(key string, page crawler.Page) ([]model.PirateURL, error) {
			return extract.Members(page.Text(), key, c.cfg.BaseURL)
		})
	s.PirateURLs = outputOf(res)
	return s, nil
}

// Pirates reads each distinct pirate profile.
func (c *Coordinator) Pirates(ctx context.Context, s State) (State, error) {
	if s.PirateURLs == nil {
		return s, missing(StagePirates, StagePirateURLs)
	}
	res := stage.Run(ctx, c.runner, StagePirates, s.pirateURLs(),
		func(key string, page crawler.Page) ([]model.Pirate, error) {
			p, err := extract.Pirate(page.Text(), key)
			if err != nil {
				return nil, err
			}
			return []model.Pirate{p}, nil
		})
	s.Pirates = outputOf(res)
	return s, nil
}

// Shoppes reads the shop listings from each distinct pirate profile.
func (c *Coordinator) Shoppes(ctx context.Context, s State) (State, error) {
	if s.PirateURLs == nil {
		return s, missing(StageShoppes, StagePirateURLs)
	}
	res := stage.Run(ctx, c.runner, StageShoppes, s.pirateURLs(),
		func(_ string, page crawler.Page) ([]model.Shop, error) {
			return extract.Shops(page.Text())
		})
	s.Shoppes = outputOf(res)
	return s, nil
}

func (c *Coordinator) manifest(
	runID string,
	startedAt, stamp time.Time,
	s State,
	tables []dataset.Table,
) (Manifest, error) {
	m := Manifest{
		RunID:      runID,
		RootURL:    c.cfg.RootURL,
		StartedAt:  startedAt,
		FinishedAt: c.clock.Now(),
		Stamp:      FormatStamp(stamp),
		Stages:     s.Summaries(),
	}
	for _, t := range tables {
		sum, err := c.hasher.HashFrom(t.WriteCSV)
		if err != nil {
			return Manifest{}, fmt.Errorf("hash %s: %w", t.Name, err)
		}
		m.Tables = append(m.Tables, TableInfo{Name: t.Name, Rows: t.Len(), SHA256: sum})
	}
	return m, nil
}
