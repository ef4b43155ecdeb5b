package cli

import (
	"context"

	"github.com/m-mizutani/libris/pkg/service/recommend"
	"github.com/urfave/cli/v3"
)

func authorCommand() *cli.Command {
	var (
		cfg    config
		author string
		topN   int64
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "author",
			Aliases:     []string{"a"},
			Usage:       "Author name (first and last name)",
			Sources:     cli.EnvVars("LIBRIS_AUTHOR"),
			Destination: &author,
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

	return &cli.Command{
		Name:  "author",
		Usage: "List catalog entries by author name",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogging(ctx)

			catalog, err := cfg.newCatalog()
			if err != nil {
				return err
			}

			rec := cfg.newRecommender(catalog, nil, nil)
			result := rec.ByAuthor(author, int(topN))

			return printResult(c.Root().Writer, result)
		},
	}
}
