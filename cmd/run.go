package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/yoweb-scraper/internal/app"
	"github.com/JakeFAU/yoweb-scraper/internal/config"
	"github.com/JakeFAU/yoweb-scraper/internal/logging"
	"github.com/JakeFAU/yoweb-scraper/internal/pipeline"
)

// newRunCmd creates the 'run' subcommand, which scrapes the configured flag
// and writes every output table.
func newRunCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Scrape the flag roster and write all tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScrape(cmd, root)
		},
	}

	f := cmd.Flags()
	f.String("root-url", config.DefaultRootURL, "flag roster page to start from")
	f.String("output-dir", "data", "directory receiving the CSV tables")
	f.Duration("delay", time.Second, "pause after every request")
	f.Duration("timeout", 30*time.Second, "per-request timeout")
	f.String("metrics-addr", "", "serve Prometheus metrics on this address during the run")
	return cmd
}

func runScrape(cmd *cobra.Command, root *rootOptions) error {
	cfg, err := config.Load(root.cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Options{
		Development: cfg.Logging.Development,
		Level:       cfg.Logging.Level,
	})
	if err != nil {
		return err
	}

	a, err := app.New(cmd.Context(), cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize application services: %w", err)
	}
	defer a.Close()

	if _, err := a.ServeMetrics(); err != nil {
		return err
	}

	res, err := a.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("run scraper: %w", err)
	}
	writeSummary(cmd.OutOrStdout(), res)
	logger.Info("run command finished", zap.String("run_id", res.Manifest.RunID))
	return nil
}

// writeSummary prints per-stage counts and per-table row counts.
func writeSummary(w io.Writer, res pipeline.Result) {
	stages := table.NewWriter()
	stages.SetOutputMirror(w)
	stages.SetStyle(table.StyleRounded)
	stages.SetTitle("Run %s", res.Manifest.RunID)
	stages.AppendHeader(table.Row{"Stage", "Input", "Succeeded", "Failed", "Rows", "Delay"})
	for _, s := range res.Manifest.Stages {
		stages.AppendRow(table.Row{s.Stage, s.Input, s.Succeeded, s.Failed, s.Rows, s.Delay})
	}
	stages.SetColumnConfigs(numericColumns(2, 3, 4, 5))
	stages.Render()

	tables := table.NewWriter()
	tables.SetOutputMirror(w)
	tables.SetStyle(table.StyleRounded)
	tables.SetTitle("Updated %s", res.Manifest.Stamp)
	tables.AppendHeader(table.Row{"Table", "Rows", "SHA-256"})
	for _, t := range res.Manifest.Tables {
		tables.AppendRow(table.Row{t.Name, t.Rows, shortDigest(t.SHA256)})
	}
	tables.SetColumnConfigs(numericColumns(2))
	tables.Render()
}

func numericColumns(numbers ...int) []table.ColumnConfig {
	cfgs := make([]table.ColumnConfig, 0, len(numbers))
	for _, n := range numbers {
		cfgs = append(cfgs, table.ColumnConfig{Number: n, Align: text.AlignRight})
	}
	return cfgs
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}
