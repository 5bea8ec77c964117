// Package metrics exposes Prometheus collectors for scraper runs.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Run results.
const (
	RunSuccess = "success"
	RunError   = "error"
)

// Collectors owns every scraper collector, registered against one registry.
type Collectors struct {
	reg *prometheus.Registry

	items        *prometheus.CounterVec
	itemDuration *prometheus.HistogramVec
	stageInput   *prometheus.GaugeVec
	stageFailed  *prometheus.GaugeVec
	tableRows    *prometheus.GaugeVec
	runs         *prometheus.CounterVec
	runDuration  prometheus.Histogram
	lastSuccess  prometheus.Gauge

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New registers the collectors against reg. A nil reg gets a fresh registry.
func New(reg *prometheus.Registry) (*Collectors, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	c := &Collectors{
		reg: reg,
		items: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "yoweb_items_total",
			Help: "Stage items processed, partitioned by stage and outcome.",
		}, []string{"stage", "outcome"}),
		itemDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "yoweb_item_duration_seconds",
			Help:    "Fetch plus parse time per item, excluding the politeness delay.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"stage"}),
		stageInput: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "yoweb_stage_input_keys",
			Help: "Input keys attempted by the most recent run of each stage.",
		}, []string{"stage"}),
		stageFailed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "yoweb_stage_failed_keys",
			Help: "Input keys that failed in the most recent run of each stage.",
		}, []string{"stage"}),
		tableRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "yoweb_table_rows",
			Help: "Rows written to each output table by the most recent run.",
		}, []string{"table"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "yoweb_runs_total",
			Help: "Completed runs partitioned by result.",
		}, []string{"result"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "yoweb_run_duration_seconds",
			Help:    "Wall time per run.",
			Buckets: []float64{60, 300, 600, 1200, 1800, 3600, 7200, 14400},
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "yoweb_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "yoweb_http_requests_total",
			Help: "Requests served by the metrics endpoint, labeled by method and code.",
		}, []string{"method", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "yoweb_http_request_duration_seconds",
			Help:    "Latency of requests served by the metrics endpoint.",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"method", "route"}),
	}
	for _, collector := range []prometheus.Collector{
		c.items,
		c.itemDuration,
		c.stageInput,
		c.stageFailed,
		c.tableRows,
		c.runs,
		c.runDuration,
		c.lastSuccess,
		c.httpRequests,
		c.httpDuration,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}
	return c, nil
}

// ObserveItem records one stage item.
func (c *Collectors) ObserveItem(stage, outcome string, elapsed time.Duration) {
	c.items.WithLabelValues(stage, outcome).Inc()
	c.itemDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
}

// ObserveStage records a finished stage's totals.
func (c *Collectors) ObserveStage(stage string, input, _, failed int) {
	c.stageInput.WithLabelValues(stage).Set(float64(input))
	c.stageFailed.WithLabelValues(stage).Set(float64(failed))
}

// ObserveTable records the row count written for an output table.
func (c *Collectors) ObserveTable(table string, rows int) {
	c.tableRows.WithLabelValues(table).Set(float64(rows))
}

// ObserveRun records a finished run.
func (c *Collectors) ObserveRun(result string, elapsed time.Duration, finishedAt time.Time) {
	c.runs.WithLabelValues(result).Inc()
	c.runDuration.Observe(elapsed.Seconds())
	if result == RunSuccess {
		c.lastSuccess.Set(float64(finishedAt.Unix()))
	}
}

// ObserveHTTPRequest records a request served by the metrics endpoint.
func (c *Collectors) ObserveHTTPRequest(method, route string, code int, elapsed time.Duration) {
	c.httpRequests.WithLabelValues(method, strconv.Itoa(code)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler exposes the registry in the Prometheus text format.
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{Registry: c.reg})
}

// Push sends the current values to a Prometheus push gateway. Batch runs end
// before a scrape would see them.
func (c *Collectors) Push(ctx context.Context, gatewayURL, job string) error {
	if err := push.New(gatewayURL, job).Gatherer(c.reg).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
