package main

import (
	"fmt"
	"log/slog"

	"github.com/dmaloney/cardano-export/service/blockfrost"
	"github.com/urfave/cli/v2"
)

func accountAddressesCommand() *cli.Command {
	flags := append(indexerFlags(),
		&cli.StringFlag{
			Name:    "jq",
			Usage:   "jq filter applied to the JSON output",
			Aliases: []string{"q"},
		},
	)

	return &cli.Command{
		Name:      "addresses",
		Usage:     "List the payment addresses under a stake key",
		ArgsUsage: "STAKE_ADDRESS",
		Flags:     flags,
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("requires exactly one argument: stake address")
			}
			stake := c.Args().First()

			logger := getCLILogger(slog.LevelWarn)
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			ix := getIndexerClient(cfg, logger)

			var all []blockfrost.AccountAddress
			for page := 1; ; page++ {
				batch, err := ix.AccountAddresses(c.Context, stake, page)
				if err != nil {
					if blockfrost.IsNotFound(err) {
						break
					}
					return fmt.Errorf("failed to fetch addresses: %w", err)
				}
				all = append(all, batch...)
				if len(batch) < blockfrost.PageSize {
					break
				}
			}

			return outputJSON(all, c.String("jq"))
		},
	}
}

func accountRewardsCommand() *cli.Command {
	flags := append(indexerFlags(),
		&cli.StringFlag{
			Name:    "jq",
			Usage:   "jq filter applied to the JSON output",
			Aliases: []string{"q"},
		},
	)

	return &cli.Command{
		Name:      "rewards",
		Usage:     "List the staking reward history of a stake key",
		ArgsUsage: "STAKE_ADDRESS",
		Flags:     flags,
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("requires exactly one argument: stake address")
			}
			stake := c.Args().First()

			logger := getCLILogger(slog.LevelWarn)
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			ix := getIndexerClient(cfg, logger)

			var all []blockfrost.AccountReward
			for page := 1; ; page++ {
				batch, err := ix.AccountRewards(c.Context, stake, page)
				if err != nil {
					if blockfrost.IsNotFound(err) {
						break
					}
					return fmt.Errorf("failed to fetch rewards: %w", err)
				}
				all = append(all, batch...)
				if len(batch) < blockfrost.PageSize {
					break
				}
			}

			return outputJSON(all, c.String("jq"))
		},
	}
}
