package cli

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/meteo/pkg/cli/config"
	"github.com/m-mizutani/meteo/pkg/domain/model"
	"github.com/m-mizutani/meteo/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdInspect() *cli.Command {
	var storageCfg config.Storage

	return &cli.Command{
		Name:      "inspect",
		Usage:     "Print a summary of the report of a month (YYYY-MM), or of every report merged",
		ArgsUsage: "[month]",
		Flags:     storageCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			store, err := storageCfg.NewStore(ctx)
			if err != nil {
				return err
			}
			catalogUC := usecase.NewCatalog(store)

			if month := c.Args().First(); month != "" {
				stored, err := catalogUC.Report(ctx, month)
				if err != nil {
					return goerr.Wrap(err, "failed to load report")
				}
				printReport(os.Stdout, stored.Report, stored.File)
				return nil
			}

			dashboard, err := catalogUC.Dashboard(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to load reports")
			}
			printReport(os.Stdout, dashboard, "")
			return nil
		},
	}
}

var (
	headerColor = color.New(color.Bold)
	coldColor   = color.New(color.FgCyan)
	hotColor    = color.New(color.FgRed)
	rainColor   = color.New(color.FgBlue)
)

// printReport writes one line per day with extremes highlighted
func printReport(w io.Writer, report *model.Report, file string) {
	title := report.Label()
	if file != "" {
		title += " (" + file + ")"
	}
	headerColor.Fprintln(w, title)
	if report.Metadata.Name != "" {
		fmt.Fprintf(w, "%s, %s\n", report.Metadata.Name, report.Metadata.City)
	}
	fmt.Fprintln(w)

	if len(report.Days) == 0 {
		fmt.Fprintln(w, "no day recorded")
		return
	}

	low, high := math.Inf(1), math.Inf(-1)
	var rain float64
	for _, d := range report.Days {
		low = math.Min(low, d.LowTemp)
		high = math.Max(high, d.HighTemp)
		rain += d.Rain
	}

	headerColor.Fprintf(w, "%-10s %7s %7s %7s %7s %7s\n", "date", "low", "mean", "high", "rain", "gust")
	for _, d := range report.Days {
		fmt.Fprintf(w, "%-10s ", d.Date.Format("2006-01-02"))
		cell(w, d.LowTemp, d.LowTemp == low, coldColor)
		fmt.Fprintf(w, " %7.1f ", d.MeanTemp)
		cell(w, d.HighTemp, d.HighTemp == high, hotColor)
		fmt.Fprint(w, " ")
		cell(w, d.Rain, d.Rain > 0, rainColor)
		fmt.Fprintf(w, " %7.1f\n", d.HighWindSpeed)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d days, low %.1f °C, high %.1f °C, rain %.1f mm\n", len(report.Days), low, high, rain)
}

func cell(w io.Writer, v float64, highlight bool, c *color.Color) {
	if highlight {
		c.Fprintf(w, "%7.1f", v)
		return
	}
	fmt.Fprintf(w, "%7.1f", v)
}
