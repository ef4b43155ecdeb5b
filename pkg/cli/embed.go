package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/libris/pkg/adapter"
	"github.com/m-mizutani/libris/pkg/repository"
	"github.com/m-mizutani/libris/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func embedCommand() *cli.Command {
	var (
		cfg       config
		output    string
		dimension int64
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Path for the generated embedding matrix (.npy)",
			Sources:     cli.EnvVars("LIBRIS_EMBED_OUTPUT"),
			Destination: &output,
			Required:    true,
		},
		&cli.IntFlag{
			Name:        "dimension",
			Aliases:     []string{"d"},
			Usage:       "Embedding dimensions",
			Value:       768,
			Sources:     cli.EnvVars("LIBRIS_EMBED_DIMENSION"),
			Destination: &dimension,
		},
	}
	flags = append(flags, dataFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "embed",
		Usage: "Generate the catalog embedding matrix offline",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogging(ctx)

			if err := cfg.resolveDataPaths(); err != nil {
				return err
			}
			if cfg.booksPath == "" {
				return goerr.New("books path is required")
			}

			catalog, err := repository.NewCatalogWithoutEmbeddings(cfg.booksPath)
			if err != nil {
				return goerr.Wrap(err, "failed to load catalog")
			}

			gemini, err := cfg.newGemini(ctx)
			if err != nil {
				return err
			}
			encoder := adapter.NewTextEncoder(gemini, int(dimension))

			matrix := make([][]float32, 0, catalog.Size())
			for row := 0; row < catalog.Size(); row++ {
				book := catalog.Book(row)

				text := book.Title
				if book.Description != "" {
					text += ". " + book.Description
				}

				vec, err := encoder.Embed(ctx, text)
				if err != nil {
					return goerr.Wrap(err, "failed to embed book",
						goerr.V("row", row), goerr.V("title", book.Title))
				}
				matrix = append(matrix, vec)

				if (row+1)%100 == 0 {
					logging.From(ctx).Info("embedding progress", "done", row+1, "total", catalog.Size())
				}
			}

			if err := repository.WriteNPYMatrix(output, matrix); err != nil {
				return goerr.Wrap(err, "failed to write embedding matrix")
			}

			fmt.Fprintf(c.Root().Writer, "Wrote %d embeddings (%d dimensions) to %s\n",
				len(matrix), dimension, output)
			return nil
		},
	}
}
