package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/libris/pkg/service/recommend"
	"github.com/urfave/cli/v3"
)

func similarCommand() *cli.Command {
	var (
		cfg   config
		title string
		topN  int64
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "title",
			Aliases:     []string{"t"},
			Usage:       "Book title to find similar books for",
			Sources:     cli.EnvVars("LIBRIS_TITLE"),
			Destination: &title,
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
		Name:  "similar",
		Usage: "Find books similar to a title using embedding similarity",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogging(ctx)

			catalog, err := cfg.newCatalog()
			if err != nil {
				return err
			}

			rec := cfg.newRecommender(catalog, nil, nil)
			result := rec.SimilarByTitle(ctx, title, int(topN))

			return printResult(c.Root().Writer, result)
		},
	}
}

// printResult renders a tagged retrieval result for terminal output.
func printResult(w io.Writer, result *recommend.Result) error {
	switch result.Kind {
	case recommend.KindFound:
		for i, m := range result.Matches {
			fmt.Fprintf(w, "%d. %s — %s\n", i+1, m.Book.Title, m.Book.AuthorLine())
			fmt.Fprintf(w, "   ISBN: %s", m.Book.ISBN)
			if m.Similarity != 0 {
				fmt.Fprintf(w, "  (similarity %.3f)", m.Similarity)
			}
			if m.CoReadCount != 0 {
				fmt.Fprintf(w, "  (co-reads %d)", m.CoReadCount)
			}
			fmt.Fprintf(w, "\n")
		}
		return nil

	case recommend.KindNotFound, recommend.KindNoCoReads:
		fmt.Fprintf(w, "%s\n", result.Message)
		return nil

	case recommend.KindInvalidInput:
		return goerr.New(result.Message)

	default:
		return goerr.New("retrieval failed", goerr.V("message", result.Message))
	}
}
