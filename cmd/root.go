// Package cmd defines the CLI commands of the yoweb-scraper executable.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	cfgFile string
}

// newRootCmd creates the root command and its subcommands.
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "yoweb-scraper",
		Short: "Scrapes a Puzzle Pirates flag roster into CSV tables.",
		Long: `yoweb-scraper walks a flag's roster on the Puzzle Pirates yoweb site:
the flag's crews, each crew's details and members, every member's profile
and shoppes. It writes one table per output, derives the flag's royals, and
stamps every non-empty data table with the run time.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (yaml, toml or json)")

	cmd.AddCommand(newRunCmd(opts))
	cmd.AddCommand(newParseCmd())
	return cmd
}

// Execute is the main entry point. SIGINT and SIGTERM cancel the run.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "yoweb-scraper:", err)
		os.Exit(1)
	}
}
