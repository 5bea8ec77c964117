package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/JakeFAU/yoweb-scraper/internal/dataset"
	"github.com/JakeFAU/yoweb-scraper/internal/extract"
	"github.com/JakeFAU/yoweb-scraper/internal/model"
	"github.com/JakeFAU/yoweb-scraper/internal/pipeline"
)

type parseOptions struct {
	pageURL string
	baseURL string
	format  string
}

// newParseCmd creates the 'parse' subcommand, which runs one document parser
// over a saved page. Useful when the site's markup changes.
func newParseCmd() *cobra.Command {
	opts := &parseOptions{}
	cmd := &cobra.Command{
		Use:   "parse <crews|crew_details|pirate_urls|pirates|shoppes> <file|->",
		Short: "Parse a saved yoweb page and print the rows it yields",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readDocument(cmd.InOrStdin(), args[1])
			if err != nil {
				return err
			}
			t, err := parseDocument(args[0], text, opts.pageURL, opts.baseURL)
			if err != nil {
				return err
			}
			return writeTable(cmd.OutOrStdout(), t, opts.format)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.pageURL, "url", "", "URL the page was fetched from (recorded in crew and pirate rows)")
	f.StringVar(&opts.baseURL, "base-url", "https://emerald.puzzlepirates.com", "site base for relative links")
	f.StringVar(&opts.format, "format", "table", "output format: table or csv")
	return cmd
}

func readDocument(stdin io.Reader, name string) (string, error) {
	if name == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	return string(b), nil
}

// parseDocument applies the parser behind a per-page output.
func parseDocument(kind, text, pageURL, baseURL string) (dataset.Table, error) {
	out, ok := pipeline.ParseOutput(kind)
	if !ok {
		return dataset.Table{}, fmt.Errorf("unknown document kind %q", kind)
	}
	baseURL = strings.TrimRight(baseURL, "/")

	switch out {
	case pipeline.OutCrews:
		rows, err := extract.Crews(text, baseURL)
		return dataset.New(kind, model.Crew{}.Columns(), rows), err
	case pipeline.OutCrewDetails:
		d, err := extract.CrewDetail(text, pageURL)
		if err != nil {
			return dataset.Table{}, err
		}
		return dataset.New(kind, model.CrewDetail{}.Columns(), []model.CrewDetail{d}), nil
	case pipeline.OutPirateURLs:
		rows, err := extract.Members(text, pageURL, baseURL)
		return dataset.New(kind, model.PirateURL{}.Columns(), rows), err
	case pipeline.OutPirates:
		p, err := extract.Pirate(text, pageURL)
		if err != nil {
			return dataset.Table{}, err
		}
		return dataset.New(kind, model.Pirate{}.Columns(), []model.Pirate{p}), nil
	case pipeline.OutShoppes:
		rows, err := extract.Shops(text)
		return dataset.New(kind, model.Shop{}.Columns(), rows), err
	default:
		return dataset.Table{}, fmt.Errorf("%s is derived from a run, not parsed from a page", kind)
	}
}

func writeTable(w io.Writer, t dataset.Table, format string) error {
	switch format {
	case "csv":
		return t.WriteCSV(w)
	case "table":
		tw := table.NewWriter()
		tw.SetOutputMirror(w)
		tw.SetStyle(table.StyleRounded)
		header := make(table.Row, 0, len(t.Columns))
		for _, c := range t.Columns {
			header = append(header, c)
		}
		tw.AppendHeader(header)
		for _, r := range t.Rows {
			row := make(table.Row, 0, len(r))
			for _, v := range r {
				row = append(row, v)
			}
			tw.AppendRow(row)
		}
		tw.AppendFooter(table.Row{fmt.Sprintf("%d rows", t.Len())})
		tw.Render()
		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
