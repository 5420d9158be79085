package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/dmaloney/cardano-export/service/blockfrost"
	"github.com/dmaloney/cardano-export/service/config"
	"github.com/itchyny/gojq"
	"github.com/urfave/cli/v2"
)

// indexerFlags are shared by every command that talks to the indexer. They
// override the corresponding environment configuration when set.
func indexerFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "indexer-url",
			Usage: "Base URL of the Blockfrost-compatible indexer",
		},
		&cli.StringFlag{
			Name:  "project-id",
			Usage: "Indexer project credential (or set INDEXER_PROJECT_ID)",
		},
		&cli.DurationFlag{
			Name:  "request-interval",
			Usage: "Minimum interval between indexer requests",
		},
	}
}

// loadConfig builds the effective configuration: environment values with
// defaults, overridden by any command-line flags that were set.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if c.IsSet("indexer-url") {
		cfg.IndexerBaseURL = c.String("indexer-url")
	}
	if c.IsSet("project-id") {
		cfg.IndexerProjectID = c.String("project-id")
	}
	if c.IsSet("request-interval") {
		cfg.RequestInterval = c.Duration("request-interval")
	}
	if c.IsSet("batch-size") {
		cfg.BatchSize = c.Int("batch-size")
	}
	if c.IsSet("batch-pause") {
		cfg.BatchPause = c.Duration("batch-pause")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// getCLILogger builds the logger used by CLI actions: JSON to stderr so
// stdout stays clean for command output.
func getCLILogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// getIndexerClient builds a blockfrost client from the effective configuration.
func getIndexerClient(cfg *config.Config, logger *slog.Logger) *blockfrost.Client {
	limiter := blockfrost.NewRateLimiter(cfg.RequestInterval)
	return blockfrost.NewClient(cfg.IndexerBaseURL, cfg.IndexerProjectID, limiter, nil, logger)
}

// outputJSON prints v as indented JSON, optionally piped through a jq filter.
func outputJSON(v any, jqFilter string) error {
	if jqFilter != "" {
		return outputFiltered(v, jqFilter)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputFiltered runs a gojq filter over v and prints every result.
func outputFiltered(v any, jqFilter string) error {
	query, err := gojq.Parse(jqFilter)
	if err != nil {
		return fmt.Errorf("failed to parse jq filter %q: %w", jqFilter, err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return fmt.Errorf("failed to compile jq filter %q: %w", jqFilter, err)
	}

	// Round-trip through JSON so gojq sees plain maps and slices.
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return fmt.Errorf("failed to unmarshal value: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	iter := code.Run(generic)
	for {
		out, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := out.(error); ok {
			return fmt.Errorf("jq filter failed: %w", err)
		}
		if err := enc.Encode(out); err != nil {
			return err
		}
	}
	return nil
}
