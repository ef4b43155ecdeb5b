package cli

import (
	"context"

	"github.com/m-mizutani/libris/pkg/service/recommend"
	"github.com/urfave/cli/v3"
)

func searchCommand() *cli.Command {
	var (
		cfg      config
		keywords string
		topN     int64
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "query",
			Aliases:     []string{"q"},
			Usage:       "Natural language query describing the books to look for",
			Sources:     cli.EnvVars("LIBRIS_SEARCH_QUERY"),
			Destination: &keywords,
			Required:    true,
		},
		&cli.IntFlag{
			Name:        "top-n",
			Aliases:     []string{"n"},
			Usage:       "Maximum number of results",
			Value:       recommend.DefaultTopN,
			Sources:     cli.EnvVars("LIBRIS_TOP_N"),
			Destination: &topN,
		},
	}
	flags = append(flags, dataFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "search",
		Usage: "Search the catalog by semantic keyword query",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogging(ctx)

			catalog, err := cfg.newCatalog()
			if err != nil {
				return err
			}

			gemini, err := cfg.newGemini(ctx)
			if err != nil {
				return err
			}

			rec := cfg.newRecommender(catalog, nil, gemini)
			result := rec.ByKeyword(ctx, keywords, int(topN))

			return printResult(c.Root().Writer, result)
		},
	}
}
