// Package app initializes and holds the long-lived services of a scraper
// run, acting as a dependency injection container.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/JakeFAU/yoweb-scraper/internal/clock/system"
	"github.com/JakeFAU/yoweb-scraper/internal/config"
	"github.com/JakeFAU/yoweb-scraper/internal/crawler"
	collyfetcher "github.com/JakeFAU/yoweb-scraper/internal/fetcher/colly"
	"github.com/JakeFAU/yoweb-scraper/internal/fetcher/ratelimit"
	"github.com/JakeFAU/yoweb-scraper/internal/hash/sha256"
	"github.com/JakeFAU/yoweb-scraper/internal/id/uuid"
	"github.com/JakeFAU/yoweb-scraper/internal/metrics"
	"github.com/JakeFAU/yoweb-scraper/internal/pipeline"
	pubsubpub "github.com/JakeFAU/yoweb-scraper/internal/publisher/pubsub"
	"github.com/JakeFAU/yoweb-scraper/internal/sink"
	"github.com/JakeFAU/yoweb-scraper/internal/stage"
	"github.com/JakeFAU/yoweb-scraper/internal/storage/gcs"
	"github.com/JakeFAU/yoweb-scraper/internal/storage/local"
	"github.com/JakeFAU/yoweb-scraper/internal/storage/postgres"
)

// App holds the services shared by one scraper invocation.
type App struct {
	cfg         config.Config
	logger      *zap.Logger
	clock       crawler.Clock
	metrics     *metrics.Collectors
	coordinator *pipeline.Coordinator
	sink        sink.Sink
	publisher   crawler.Publisher

	server  *http.Server
	closers []func() error
}

type deps struct {
	fetcher   crawler.Fetcher
	clock     crawler.Clock
	ids       crawler.IDGenerator
	publisher crawler.Publisher
	sinks     []sink.Sink
	registry  *prometheus.Registry
	sleep     func(context.Context, time.Duration)
	noLocal   bool
}

// Option overrides a default service, mostly for tests.
type Option func(*deps)

// WithFetcher replaces the Colly fetcher.
func WithFetcher(f crawler.Fetcher) Option { return func(d *deps) { d.fetcher = f } }

// WithClock replaces the wall clock.
func WithClock(c crawler.Clock) Option { return func(d *deps) { d.clock = c } }

// WithIDs replaces the UUID run ID generator.
func WithIDs(g crawler.IDGenerator) Option { return func(d *deps) { d.ids = g } }

// WithPublisher replaces the Pub/Sub publisher. The topic still comes from
// configuration.
func WithPublisher(p crawler.Publisher) Option { return func(d *deps) { d.publisher = p } }

// WithSinks replaces every configured table sink.
func WithSinks(s ...sink.Sink) Option {
	return func(d *deps) {
		d.sinks = s
		d.noLocal = true
	}
}

// WithRegistry registers metrics against reg instead of a fresh registry.
func WithRegistry(reg *prometheus.Registry) Option { return func(d *deps) { d.registry = reg } }

// WithSleep replaces the politeness pause between requests.
func WithSleep(fn func(context.Context, time.Duration)) Option {
	return func(d *deps) { d.sleep = fn }
}

// New creates the application services described by cfg. It fails fast if
// any configured destination cannot be initialized.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var d deps
	for _, opt := range opts {
		opt(&d)
	}

	baseURL, err := cfg.BaseURL()
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, logger: logger}
	if err := a.init(ctx, &d); err != nil {
		a.Close()
		return nil, err
	}

	runnerOpts := []stage.Option{stage.WithObserver(a.metrics)}
	if d.sleep != nil {
		runnerOpts = append(runnerOpts, stage.WithSleep(d.sleep))
	}
	runner := stage.NewRunner(d.fetcher, cfg.Scraper.Delay, logger, runnerOpts...)
	a.coordinator = pipeline.New(
		runner,
		pipeline.Config{RootURL: cfg.Scraper.RootURL, BaseURL: baseURL},
		a.clock,
		d.ids,
		sha256.New(),
		logger,
	)

	logger.Info("application services initialized",
		zap.String("root_url", cfg.Scraper.RootURL),
		zap.String("output_dir", cfg.Output.Dir),
		zap.Duration("delay", cfg.Scraper.Delay))
	return a, nil
}

func (a *App) init(ctx context.Context, d *deps) error {
	collectors, err := metrics.New(d.registry)
	if err != nil {
		return err
	}
	a.metrics = collectors

	if d.fetcher == nil {
		d.fetcher = collyfetcher.New(collyfetcher.Config{
			UserAgent:     a.cfg.Scraper.UserAgent,
			RespectRobots: a.cfg.Scraper.RespectRobots,
			Timeout:       a.cfg.Scraper.RequestTimeout,
		})
	}
	if a.cfg.Scraper.MaxRPS > 0 {
		d.fetcher = ratelimit.New(d.fetcher, ratelimit.Config{RPS: a.cfg.Scraper.MaxRPS, Burst: 1})
	}
	if d.clock == nil {
		d.clock = system.New()
	}
	a.clock = d.clock
	if d.ids == nil {
		d.ids = uuid.New()
	}

	sinks := d.sinks
	if !d.noLocal {
		sinks, err = a.defaultSinks(ctx)
		if err != nil {
			return err
		}
	}
	a.sink = sink.Multi(sinks)

	a.publisher = d.publisher
	if a.publisher == nil && a.cfg.PubSub.Topic != "" {
		a.logger.Info("connecting to pub/sub", zap.String("topic", a.cfg.PubSub.Topic))
		pub, err := pubsubpub.Dial(ctx, a.cfg.PubSub.ProjectID)
		if err != nil {
			return fmt.Errorf("initialize publisher: %w", err)
		}
		a.closers = append(a.closers, pub.Close)
		a.publisher = pub
	}
	return nil
}

func (a *App) defaultSinks(ctx context.Context) ([]sink.Sink, error) {
	out := a.cfg.Output
	dir, err := local.New(local.Config{BaseDir: out.Dir})
	if err != nil {
		return nil, fmt.Errorf("initialize output dir: %w", err)
	}
	sinks := []sink.Sink{sink.NewBlob(dir, "", a.logger)}

	if out.GCSBucket != "" {
		a.logger.Info("mirroring tables to GCS", zap.String("bucket", out.GCSBucket))
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("initialize gcs client: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		store, err := gcs.New(client, gcs.Config{Bucket: out.GCSBucket, Prefix: out.GCSPrefix})
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, sink.NewBlob(store, "", a.logger))
	}

	if out.PostgresDSN != "" {
		a.logger.Info("mirroring tables to postgres", zap.String("schema", out.PostgresSchema))
		pg, err := postgres.New(ctx, postgres.Config{DSN: out.PostgresDSN, Schema: out.PostgresSchema})
		if err != nil {
			return nil, fmt.Errorf("initialize postgres: %w", err)
		}
		a.closers = append(a.closers, func() error {
			pg.Close()
			return nil
		})
		sinks = append(sinks, pg)
	}
	return sinks, nil
}

// Logger returns the shared logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Metrics returns the run collectors.
func (a *App) Metrics() *metrics.Collectors {
	return a.metrics
}

// ServeMetrics starts the metrics endpoint when metrics.listen_addr is set
// and returns the bound address. The server stops on Close.
func (a *App) ServeMetrics() (string, error) {
	if a.cfg.Metrics.ListenAddr == "" {
		return "", nil
	}
	ln, err := net.Listen("tcp", a.cfg.Metrics.ListenAddr)
	if err != nil {
		return "", fmt.Errorf("listen %s: %w", a.cfg.Metrics.ListenAddr, err)
	}
	a.server = &http.Server{
		Handler:           a.metrics.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	a.logger.Info("metrics server listening", zap.String("addr", ln.Addr().String()))
	return ln.Addr().String(), nil
}

// Run scrapes, writes every table, and announces the manifest. Metrics are
// pushed at the end whether or not the run succeeded.
func (a *App) Run(ctx context.Context) (pipeline.Result, error) {
	start := a.clock.Now()
	res, err := a.run(ctx)

	result := metrics.RunSuccess
	if err != nil {
		result = metrics.RunError
		a.logger.Error("run failed", zap.Error(err))
	}
	finished := a.clock.Now()
	a.metrics.ObserveRun(result, finished.Sub(start), finished)
	a.pushMetrics(ctx)
	return res, err
}

func (a *App) run(ctx context.Context) (pipeline.Result, error) {
	res, err := a.coordinator.Run(ctx)
	if err != nil {
		return res, err
	}
	if err := a.sink.Write(ctx, res.Tables); err != nil {
		return res, fmt.Errorf("write tables: %w", err)
	}
	for _, t := range res.Tables {
		a.metrics.ObserveTable(t.Name, t.Len())
	}

	if a.publisher != nil && a.cfg.PubSub.Topic != "" {
		id, err := a.publisher.Publish(ctx, a.cfg.PubSub.Topic, res.Manifest)
		if err != nil {
			return res, fmt.Errorf("publish manifest: %w", err)
		}
		a.logger.Info("manifest published", zap.String("message_id", id), zap.String("run_id", res.Manifest.RunID))
	}
	return res, nil
}

func (a *App) pushMetrics(ctx context.Context) {
	m := a.cfg.Metrics
	if m.PushgatewayURL == "" {
		return
	}
	if err := a.metrics.Push(ctx, m.PushgatewayURL, m.Job); err != nil {
		a.logger.Warn("metrics push failed", zap.Error(err))
	}
}

// Close shuts down the metrics server and releases every client.
func (a *App) Close() {
	if a.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.server.Shutdown(ctx); err != nil {
			a.logger.Warn("metrics server shutdown", zap.Error(err))
		}
		cancel()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("error closing service", zap.Error(err))
		}
	}
	a.closers = nil
	// Sync fails on some terminals (EINVAL on stderr); nothing to do about it.
	_ = a.logger.Sync()
}
