package cli

import (
	"context"
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/libris/pkg/adapter"
	"github.com/m-mizutani/libris/pkg/service/recommend"
	"github.com/m-mizutani/libris/pkg/tool/books"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/urfave/cli/v3"
)

type titleParams struct {
	Title string `json:"title" jsonschema:"The title of the book"`
	TopN  int    `json:"top_n,omitempty" jsonschema:"Maximum number of results (default: 5)"`
}

type isbnParams struct {
	ISBN string `json:"isbn" jsonschema:"The ISBN-13 of a book, e.g. '9780439064873'"`
	TopN int    `json:"top_n,omitempty" jsonschema:"Maximum number of results (default: 5)"`
}

type authorParams struct {
	Author string `json:"author" jsonschema:"The author's name, e.g. 'John Grisham'"`
	TopN   int    `json:"top_n,omitempty" jsonschema:"Maximum number of results (default: 5)"`
}

type keywordParams struct {
	Keywords string `json:"keywords" jsonschema:"A natural language query describing the books to look for"`
	TopN     int    `json:"top_n,omitempty" jsonschema:"Maximum number of results (default: 5)"`
}

type lookupParams struct {
	Title string `json:"title" jsonschema:"The title of the book to look up"`
}

// mcpCommand serves the retrieval functions over MCP stdio so that other
// agent hosts can use the catalog.
func mcpCommand() *cli.Command {
	var cfg config

	flags := dataFlags(&cfg)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the retrieval functions as MCP tools over stdio",
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

			// The keyword search needs the text encoder; it is only served
			// when Gemini is configured.
			var gemini adapter.Gemini
			if cfg.geminiProject != "" {
				if gemini, err = cfg.newGemini(ctx); err != nil {
					return err
				}
			}

			rec := cfg.newRecommender(catalog, interactions, gemini)

			server := mcp.NewServer(&mcp.Implementation{
				Name:    "libris",
				Version: "1.0.0",
			}, nil)

			mcp.AddTool(server, &mcp.Tool{
				Name:        books.FuncFindSimilarBooksByTitle,
				Description: "Finds books that are similar to a given title based on content.",
			}, func(ctx context.Context, req *mcp.CallToolRequest, params *titleParams) (*mcp.CallToolResult, any, error) {
				return resultToMCP(rec.SimilarByTitle(ctx, params.Title, params.TopN))
			})

			mcp.AddTool(server, &mcp.Tool{
				Name:        books.FuncRecommendBySharedReads,
				Description: "Recommends books that were also read by users who read a specific book.",
			}, func(ctx context.Context, req *mcp.CallToolRequest, params *isbnParams) (*mcp.CallToolResult, any, error) {
				return resultToMCP(rec.BySharedReads(params.ISBN, params.TopN))
			})

			mcp.AddTool(server, &mcp.Tool{
				Name:        books.FuncFindBooksByAuthor,
				Description: "Finds books written by a specific author.",
			}, func(ctx context.Context, req *mcp.CallToolRequest, params *authorParams) (*mcp.CallToolResult, any, error) {
				return resultToMCP(rec.ByAuthor(params.Author, params.TopN))
			})

			if gemini != nil {
				mcp.AddTool(server, &mcp.Tool{
					Name:        books.FuncFindBooksByKeyword,
					Description: "Finds books related to the given natural language query.",
				}, func(ctx context.Context, req *mcp.CallToolRequest, params *keywordParams) (*mcp.CallToolResult, any, error) {
					return resultToMCP(rec.ByKeyword(ctx, params.Keywords, params.TopN))
				})
			}

			mcp.AddTool(server, &mcp.Tool{
				Name:        books.FuncIsBookInLibrary,
				Description: "Checks if one or more books with a given title exist in the catalog.",
			}, func(ctx context.Context, req *mcp.CallToolRequest, params *lookupParams) (*mcp.CallToolResult, any, error) {
				return jsonToMCP(rec.InLibrary(params.Title))
			})

			if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
				return goerr.Wrap(err, "mcp server failed")
			}
			return nil
		},
	}
}

func resultToMCP(result *recommend.Result) (*mcp.CallToolResult, any, error) {
	return jsonToMCP(result)
}

func jsonToMCP(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to marshal result")
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(data)},
		},
	}, nil, nil
}
