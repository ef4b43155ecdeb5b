package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/libris/pkg/adapter"
	"github.com/urfave/cli/v3"
)

func lookupCommand() *cli.Command {
	var (
		cfg   config
		title string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "title",
			Aliases:     []string{"t"},
			Usage:       "Title (or fragment) to look up",
			Sources:     cli.EnvVars("LIBRIS_TITLE"),
			Destination: &title,
			Required:    true,
		},
		availabilityFlag(&cfg),
	}
	flags = append(flags, dataFlags(&cfg)...)

	return &cli.Command{
		Name:  "lookup",
		Usage: "Check whether a book exists in the library, listing every match",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogging(ctx)

			catalog, err := cfg.newCatalog()
			if err != nil {
				return err
			}

			rec := cfg.newRecommender(catalog, nil, nil)
			check := rec.InLibrary(title)

			if !check.Exists {
				fmt.Fprintf(c.Root().Writer, "No book matching '%s' in the library\n", title)
				return nil
			}

			var availability adapter.Availability
			if cfg.availabilityURL != "" {
				availability = adapter.NewBiblioWeb(cfg.availabilityURL)
			}

			fmt.Fprintf(c.Root().Writer, "Found %d matching entries:\n\n", len(check.Matches))
			for i, m := range check.Matches {
				fmt.Fprintf(c.Root().Writer, "%d. %s — %s\n", i+1, m.Book.Title, m.Book.AuthorLine())
				fmt.Fprintf(c.Root().Writer, "   ISBN: %s  medium: %s\n", m.Book.ISBN, m.Book.MediumID)
				if availability != nil {
					fmt.Fprintf(c.Root().Writer, "   Status: %s\n", availability.Status(ctx, m.Book.MediumID))
				}
			}

			return nil
		},
	}
}
