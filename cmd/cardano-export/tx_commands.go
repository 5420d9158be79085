package main

import (
	"fmt"
	"log/slog"

	"github.com/dmaloney/cardano-export/service/blockfrost"
	"github.com/urfave/cli/v2"
)

func txGetCommand() *cli.Command {
	flags := append(indexerFlags(),
		&cli.BoolFlag{
			Name:  "utxos",
			Usage: "Fetch the UTXO sets instead of the transaction detail",
		},
		&cli.StringFlag{
			Name:    "jq",
			Usage:   "jq filter applied to the JSON output",
			Aliases: []string{"q"},
		},
	)

	return &cli.Command{
		Name:      "get",
		Usage:     "Fetch a transaction by hash",
		ArgsUsage: "TX_HASH",
		Flags:     flags,
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("requires exactly one argument: transaction hash")
			}
			hash := c.Args().First()

			logger := getCLILogger(slog.LevelWarn)
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			ix := getIndexerClient(cfg, logger)

			if c.Bool("utxos") {
				utxos, err := ix.TransactionUTXOs(c.Context, hash)
				if err != nil {
					if blockfrost.IsNotFound(err) {
						return fmt.Errorf("transaction %s not found", hash)
					}
					return fmt.Errorf("failed to fetch utxos: %w", err)
				}
				return outputJSON(utxos, c.String("jq"))
			}

			txn, err := ix.Transaction(c.Context, hash)
			if err != nil {
				if blockfrost.IsNotFound(err) {
					return fmt.Errorf("transaction %s not found", hash)
				}
				return fmt.Errorf("failed to fetch transaction: %w", err)
			}
			return outputJSON(txn, c.String("jq"))
		},
	}
}
