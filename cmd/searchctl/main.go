package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/V4T54L/docsearch/internal/pkg/logger"
)

func main() {
	// Attempt to load .env file for local development.
	_ = godotenv.Load()

	if err := newApp().Run(os.Args); err != nil {
		slog.Error("searchctl failed", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "searchctl",
		Usage: "Query the documentation search and compare provider latency",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Aliases: []string{"s"},
				Usage:   "Base URL of the search server",
				Value:   "http://localhost:8080",
				EnvVars: []string{"SEARCHCTL_SERVER"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
		},
		Before: func(c *cli.Context) error {
			slog.SetDefault(logger.NewWithWriter(c.App.ErrWriter, c.String("log-level"), "text"))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Run queries through the configured search dialog",
				ArgsUsage: "[query...] (reads one query per line from stdin when none are given)",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "mode",
						Aliases: []string{"m"},
						Usage:   "Search dialog to use (lexical, vector)",
						Value:   "vector",
						EnvVars: []string{"SEARCH_MODE"},
					},
					&cli.StringFlag{
						Name:    "algolia-app-id",
						Usage:   "Algolia application id (lexical mode)",
						EnvVars: []string{"ALGOLIA_APP_ID"},
					},
					&cli.StringFlag{
						Name:    "algolia-api-key",
						Usage:   "Algolia search-only API key (lexical mode)",
						EnvVars: []string{"ALGOLIA_API_KEY"},
					},
					&cli.StringFlag{
						Name:    "algolia-index",
						Usage:   "Algolia index name (lexical mode)",
						EnvVars: []string{"ALGOLIA_INDEX"},
					},
				},
			},
			{
				Name:   "compare",
				Usage:  "Print the side-by-side provider comparison of recent searches",
				Action: compareCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "left",
						Usage: "Provider for the left column (defaults to the vector provider)",
					},
					&cli.StringFlag{
						Name:  "right",
						Usage: "Provider for the right column (defaults to the lexical provider)",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Number of recent events to load",
						Value: 500,
					},
				},
			},
		},
	}
}
