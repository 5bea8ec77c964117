package app_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/JakeFAU/yoweb-scraper/internal/app"
	"github.com/JakeFAU/yoweb-scraper/internal/clock/system"
	"github.com/JakeFAU/yoweb-scraper/internal/config"
	"github.com/JakeFAU/yoweb-scraper/internal/pipeline"
	"github.com/JakeFAU/yoweb-scraper/internal/publisher/memory"
	"github.com/JakeFAU/yoweb-scraper/internal/sink"
)

const flagPage = `<html><body><table>
<tr><th>Crew</th><th>Rank</th><th>Members</th><th>Fame</th></tr>
<tr><td><a href="/yoweb/crew/info.wm?crewid=1">Regulars</a></td><td>Sea Lords</td><td>2</td><td>Grand</td></tr>
</table></body></html>`

const crewPage = `<html><body>
<table><tr><td>banner</td></tr></table>
<table><tr><td align="center">
  <font size="+2"><b>Regulars</b></font>
  <p align="left">Statement:<br>Ahoy</p>
</td></tr></table>
<table>
  <tr><td><a href="/yoweb/pirate.wm?target=Anne">Anne</a></td></tr>
  <tr><td><a href="/yoweb/pirate.wm?target=Bob">Bob</a></td></tr>
</table>
</body></html>`

func piratePage(name, flagRole string) string {
	return `<html><body><table><tr><td width="190">
<font size="+1">` + name + `</font>
<table>
  <tr><td>Cabin Person of the crew <a href="/c">Regulars</a></td></tr>
  <tr><td>` + flagRole + ` of the flag <a href="/f">Black Sails</a></td></tr>
</table>
</td><td><table>
  <tr><td><img alt="Sailing"></td><td>Master/Renowned</td></tr>
</table></td></tr></table></body></html>`
}

func newSite(t *testing.T, rootStatus int) *httptest.Server {
	t.Helper()
	pages := map[string]string{
		"/yoweb/flag/info.wm?flagid=7": flagPage,
		"/yoweb/crew/info.wm?crewid=1": crewPage,
		"/yoweb/pirate.wm?target=Anne": piratePage("Anne", "Queen"),
		"/yoweb/pirate.wm?target=Bob":  piratePage("Bob", "Officer"),
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/yoweb/flag/info.wm" && rootStatus != http.StatusOK {
			w.WriteHeader(rootStatus)
			return
		}
		body, ok := pages[r.URL.RequestURI()]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(srv *httptest.Server, dir string) config.Config {
	return config.Config{
		Scraper: config.ScraperConfig{
			RootURL:        srv.URL + "/yoweb/flag/info.wm?flagid=7",
			UserAgent:      "yoweb-test",
			RequestTimeout: 5 * time.Second,
		},
		Output:  config.OutputConfig{Dir: dir, PostgresSchema: "public"},
		PubSub:  config.PubSubConfig{ProjectID: "p", Topic: "runs"},
		Metrics: config.MetricsConfig{Job: "yoweb_scraper"},
	}
}

var runAt = time.Date(2025, 6, 1, 12, 30, 15, 0, time.UTC)

type staticID string

func (s staticID) NewID() (string, error) { return string(s), nil }

func TestRunWritesTablesAndPublishes(t *testing.T) {
	t.Parallel()

	srv := newSite(t, http.StatusOK)
	dir := t.TempDir()
	reg := prometheus.NewRegistry()
	pub := memory.New()

	a, err := app.New(context.Background(), testConfig(srv, dir), zaptest.NewLogger(t),
		app.WithClock(system.Fixed(runAt)),
		app.WithIDs(staticID("run-1")),
		app.WithPublisher(pub),
		app.WithRegistry(reg),
	)
	require.NoError(t, err)
	defer a.Close()

	res, err := a.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Tables, len(pipeline.Outputs))

	for _, o := range pipeline.Outputs {
		_, err := os.Stat(filepath.Join(dir, o.String()+".csv"))
		require.NoError(t, err, o.String())
	}
	royals, err := os.ReadFile(filepath.Join(dir, "royals.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(royals)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Last Updated (UTC)")
	assert.Contains(t, lines[1], "Anne")
	assert.True(t, strings.HasSuffix(lines[1], "2025-06-01T12:30:15+00:00"))

	msgs := pub.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "runs", msgs[0].Topic)
	var manifest pipeline.Manifest
	require.NoError(t, msgs[0].Decode(&manifest))
	assert.Equal(t, "run-1", manifest.RunID)
	assert.Len(t, manifest.Tables, len(pipeline.Outputs))

	count, err := testutil.GatherAndCount(reg, "yoweb_table_rows")
	require.NoError(t, err)
	assert.Equal(t, len(pipeline.Outputs), count)
}

func TestRunRecordsFailedRun(t *testing.T) {
	t.Parallel()

	srv := newSite(t, http.StatusInternalServerError)
	dir := t.TempDir()
	reg := prometheus.NewRegistry()
	pub := memory.New()

	a, err := app.New(context.Background(), testConfig(srv, dir), nil,
		app.WithPublisher(pub), app.WithRegistry(reg))
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Run(context.Background())
	var stageErr *pipeline.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, pipeline.StageCrews, stageErr.Stage)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Empty(t, pub.Messages())

	expected := `
# HELP yoweb_runs_total Completed runs partitioned by result.
# TYPE yoweb_runs_total counter
yoweb_runs_total{result="error"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "yoweb_runs_total"))
}

func TestRunStopsWhenSinkFails(t *testing.T) {
	t.Parallel()

	srv := newSite(t, http.StatusOK)
	failing := &sink.MockSink{}
	failing.On("Write", mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()
	pub := memory.New()

	a, err := app.New(context.Background(), testConfig(srv, t.TempDir()), nil,
		app.WithSinks(failing), app.WithPublisher(pub))
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Run(context.Background())
	require.ErrorContains(t, err, "disk full")
	assert.Empty(t, pub.Messages())
	failing.AssertExpectations(t)
}

func TestServeMetrics(t *testing.T) {
	t.Parallel()

	srv := newSite(t, http.StatusOK)
	cfg := testConfig(srv, t.TempDir())
	cfg.Metrics.ListenAddr = "127.0.0.1:0"

	a, err := app.New(context.Background(), cfg, nil, app.WithSinks())
	require.NoError(t, err)
	defer a.Close()

	addr, err := a.ServeMetrics()
	require.NoError(t, err)
	require.NotEmpty(t, addr)

	resp, err := http.Get("http://" + addr + "/healthz")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNewRejectsRelativeRoot(t *testing.T) {
	t.Parallel()

	cfg := config.Config{Scraper: config.ScraperConfig{RootURL: "/yoweb/flag"}}
	_, err := app.New(context.Background(), cfg, nil)
	require.Error(t, err)
}
