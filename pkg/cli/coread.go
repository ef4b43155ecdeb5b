package cli

import (
	"context"

	"github.com/m-mizutani/libris/pkg/service/recommend"
	"github.com/urfave/cli/v3"
)

func coreadCommand() *cli.Command {
	var (
		cfg  config
		isbn string
		topN int64
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "isbn",
			Aliases:     []string{"i"},
			Usage:       "ISBN-13 of the reference book",
			Sources:     cli.EnvVars("LIBRIS_ISBN"),
			Destination: &isbn,
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
		Name:  "coread",
		Usage: "Recommend books read by the same users as a reference book",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogging(ctx)

			catalog, err := cfg.newCatalog()
			if err != nil {
				return err
			}

			interactions, err := cfg.newInteractions(catalog)
			if err != nil {
				return err
			}

			rec := cfg.newRecommender(catalog, interactions, nil)
			result := rec.BySharedReads(isbn, int(topN))

			return printResult(c.Root().Writer, result)
		},
	}
}
