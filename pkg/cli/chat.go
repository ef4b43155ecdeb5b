package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/chzyer/readline"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/libris/pkg/adapter"
	"github.com/m-mizutani/libris/pkg/model"
	"github.com/m-mizutani/libris/pkg/repository"
	"github.com/m-mizutani/libris/pkg/tool"
	"github.com/m-mizutani/libris/pkg/tool/books"
	"github.com/m-mizutani/libris/pkg/usecase/chat"
	"github.com/urfave/cli/v3"
)

func chatCommand() *cli.Command {
	var (
		cfg       config
		maxRounds int64
	)

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "max-rounds",
			Usage:       "Maximum tool-call rounds per user turn",
			Value:       chat.DefaultMaxRounds,
			Sources:     cli.EnvVars("LIBRIS_MAX_ROUNDS"),
			Destination: &maxRounds,
		},
		availabilityFlag(&cfg),
	}
	flags = append(flags, dataFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "chat",
		Usage: "Interactive recommendation chat with the librarian assistant",
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

			gemini, err := cfg.newGemini(ctx)
			if err != nil {
				return err
			}

			registry := tool.New(books.New())
			if err := registry.Init(ctx, &tool.Client{
				Catalog:      catalog,
				Interactions: interactions,
				Encoder:      adapter.NewTextEncoder(gemini, catalog.Dimension()),
			}); err != nil {
				return goerr.Wrap(err, "failed to initialize tools")
			}

			session := chat.New(chat.NewInput{
				Gemini:    gemini,
				Registry:  registry,
				MaxRounds: int(maxRounds),
				Output:    c.Root().Writer,
			})

			var availability adapter.Availability
			if cfg.availabilityURL != "" {
				availability = adapter.NewBiblioWeb(cfg.availabilityURL)
			}

			rl, err := readline.New("📚 > ")
			if err != nil {
				return goerr.Wrap(err, "failed to open terminal")
			}
			defer rl.Close()

			fmt.Fprintf(c.Root().Writer, "Chat session started (%d books loaded). Type 'exit' to quit.\n", catalog.Size())

			for {
				line, err := rl.Readline()
				if err != nil {
					if errors.Is(err, readline.ErrInterrupt) {
						continue
					}
					if errors.Is(err, io.EOF) {
						break
					}
					return goerr.Wrap(err, "failed to read input")
				}

				message := strings.TrimSpace(line)
				if message == "" {
					continue
				}
				if message == "exit" || message == "quit" {
					break
				}

				sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
				sp.Suffix = " thinking..."
				sp.Start()
				answer, err := session.Send(ctx, message)
				sp.Stop()

				if err != nil {
					fmt.Fprintf(c.Root().Writer, "⚠️  %v\n", err)
					continue
				}

				text, ids := chat.SplitAnswer(answer)
				fmt.Fprintf(c.Root().Writer, "\n%s\n", text)

				printBookCards(ctx, c.Root().Writer, catalog, availability, ids)
			}

			fmt.Fprintf(c.Root().Writer, "\nChat session completed\n")
			return nil
		},
	}
}

// printBookCards renders a short card per recommended medium ID, with the
// lending status when the availability endpoint is configured.
func printBookCards(ctx context.Context, w io.Writer, catalog *repository.Catalog, availability adapter.Availability, ids []model.MediumID) {
	for _, id := range ids {
		book, ok := catalog.ByMediumID(id)
		if !ok {
			continue
		}

		fmt.Fprintf(w, "\n  📖 %s — %s\n", book.Title, book.AuthorLine())
		if book.Category != "" {
			fmt.Fprintf(w, "     🏷️  %s\n", book.Category)
		}
		if availability != nil {
			fmt.Fprintf(w, "     Status: %s\n", availability.Status(ctx, id))
		}
	}
}
