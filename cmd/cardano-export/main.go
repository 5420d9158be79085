package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

var (
	// Version information (set via ldflags during build)
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	app := &cli.App{
		Name:  "cardano-export",
		Usage: "Cardano wallet transaction history export tool",
		Description: `Exports the full transaction and staking reward history of a Cardano
wallet as a CSV report, using a Blockfrost-compatible indexing API.

The account and tx subcommands are debugging helpers that query the
indexer directly.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Commands: []*cli.Command{
			exportCommand(),
			{
				Name:  "account",
				Usage: "Stake account inspection commands",
				Subcommands: []*cli.Command{
					accountAddressesCommand(),
					accountRewardsCommand(),
				},
			},
			{
				Name:  "tx",
				Usage: "Transaction inspection commands",
				Subcommands: []*cli.Command{
					txGetCommand(),
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
