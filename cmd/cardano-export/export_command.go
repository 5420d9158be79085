package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dmaloney/cardano-export/service/export"
	"github.com/urfave/cli/v2"
)

func exportCommand() *cli.Command {
	flags := append(indexerFlags(),
		&cli.StringFlag{
			Name:    "stake-address",
			Aliases: []string{"k"},
			Usage:   "Stake address; enables address expansion and staking rewards",
		},
		&cli.TimestampFlag{
			Name:   "from",
			Usage:  "Only include transactions on or after this date (YYYY-MM-DD)",
			Layout: "2006-01-02",
		},
		&cli.TimestampFlag{
			Name:   "to",
			Usage:  "Only include transactions on or before this date (YYYY-MM-DD)",
			Layout: "2006-01-02",
		},
		&cli.BoolFlag{
			Name:  "include-rewards",
			Usage: "Include staking reward records",
		},
		&cli.BoolFlag{
			Name:  "ada-only",
			Usage: "Restrict the report to native-currency records",
		},
		&cli.IntFlag{
			Name:  "batch-size",
			Usage: "Number of transaction details fetched concurrently per batch",
		},
		&cli.DurationFlag{
			Name:  "batch-pause",
			Usage: "Pause between detail fetch batches",
		},
		&cli.StringFlag{
			Name:    "out",
			Aliases: []string{"o"},
			Usage:   "Output path (defaults to the generated filename in the current directory)",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Enable debug logging",
		},
	)

	return &cli.Command{
		Name:      "export",
		Usage:     "Export a wallet's transaction history as CSV",
		ArgsUsage: "WALLET_ADDRESS",
		Flags:     flags,
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("requires exactly one argument: wallet address")
			}
			address := c.Args().First()

			level := slog.LevelInfo
			if c.Bool("verbose") {
				level = slog.LevelDebug
			}
			logger := getCLILogger(level)

			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			ix := getIndexerClient(cfg, logger)
			exporter := export.NewExporter(ix, export.ExporterConfig{
				BatchSize:  cfg.BatchSize,
				BatchPause: cfg.BatchPause,
			}, nil, logger)

			opts := export.Options{
				IncludeRewards: c.Bool("include-rewards"),
				Asset:          export.AssetFilterAll,
			}
			if c.Bool("ada-only") {
				opts.Asset = export.AssetFilterNativeOnly
			}
			if from := c.Timestamp("from"); from != nil && !from.IsZero() {
				opts.StartDate = from
			}
			if to := c.Timestamp("to"); to != nil && !to.IsZero() {
				// Inclusive upper bound: extend to the end of the day.
				end := to.Add(24*time.Hour - time.Second)
				opts.EndDate = &end
			}

			req := export.Request{
				Address:      address,
				StakeAddress: c.String("stake-address"),
				Options:      opts,
			}

			result := exporter.Export(c.Context, req, func(p export.Progress) {
				if p.Total > 0 {
					fmt.Fprintf(os.Stderr, "\r%s: %d/%d", p.Phase, p.Current, p.Total)
				} else {
					fmt.Fprintf(os.Stderr, "\r%s: %d", p.Phase, p.Current)
				}
			})
			fmt.Fprintln(os.Stderr)

			if result.Warning != "" {
				fmt.Fprintf(os.Stderr, "warning: %s\n", result.Warning)
			}
			if !result.Success {
				return fmt.Errorf("export failed: %s", result.Error)
			}

			// Persisting the report is the caller's job; here that means
			// writing the file the pipeline named.
			path := c.String("out")
			if path == "" {
				path = result.Filename
			}
			if err := os.WriteFile(path, []byte(result.Report), 0o644); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}

			fmt.Fprintf(os.Stderr, "wrote %d transactions (%s to %s) to %s\n",
				result.TransactionCount,
				result.OldestDate.Format("2006-01-02"),
				result.NewestDate.Format("2006-01-02"),
				path,
			)
			return nil
		},
	}
}
