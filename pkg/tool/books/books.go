package books

import (
	"context"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/libris/pkg/model"
	"github.com/m-mizutani/libris/pkg/service/recommend"
	"github.com/m-mizutani/libris/pkg/tool"
	"github.com/m-mizutani/libris/pkg/utils/logging"
	"github.com/urfave/cli/v3"
	"google.golang.org/genai"
)

// Function names exposed to the reasoning agent. These are a compatibility
// surface and must not change.
const (
	FuncFindSimilarBooksByTitle = "find_similar_books_by_title"
	FuncRecommendBySharedReads  = "recommend_by_shared_reads"
	FuncFindBooksByAuthor       = "find_books_by_author"
	FuncFindBooksByKeyword      = "find_books_by_keyword"
	FuncIsBookInLibrary         = "is_book_in_library"
)

type books struct {
	rec *recommend.Recommender
}

// New creates the catalog retrieval tool. The recommender is built from the
// shared client in Init.
func New() *books {
	return &books{}
}

// Flags returns CLI flags for this tool
func (x *books) Flags() []cli.Flag {
	return nil
}

// Init initializes the tool
func (x *books) Init(ctx context.Context, client *tool.Client) (bool, error) {
	if client == nil || client.Catalog == nil {
		return false, nil
	}

	x.rec = recommend.New(client.Catalog, client.Interactions, client.Encoder)
	return true, nil
}

// Prompt returns additional information to be added to the system prompt
func (x *books) Prompt(ctx context.Context) string {
	return ""
}

func topNSchema() *genai.Schema {
	return &genai.Schema{
		Type:        genai.TypeInteger,
		Description: "Maximum number of results to return (default: 5)",
	}
}

// Spec returns the tool specification for Gemini function calling
func (x *books) Spec() *genai.Tool {
	return &genai.Tool{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        FuncFindSimilarBooksByTitle,
				Description: "Finds books that are similar to a given title based on content.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"title": {
							Type:        genai.TypeString,
							Description: "The title of a book, e.g. 'Harry Potter'",
						},
						"top_n": topNSchema(),
					},
					Required: []string{"title"},
				},
			},
			{
				Name: FuncRecommendBySharedReads,
				Description: "Recommends books that were also read by users who read a specific book. " +
					"If the user provides a book title, first use 'is_book_in_library' to get the ISBN.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"isbn": {
							Type: genai.TypeString,
							Description: "The ISBN-13 of a book, e.g. '9780439064873'. " +
								"Obtain this from 'is_book_in_library' if the user provides a title.",
						},
						"top_n": topNSchema(),
					},
					Required: []string{"isbn"},
				},
			},
			{
				Name:        FuncFindBooksByAuthor,
				Description: "Finds books written by a specific author.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"author": {
							Type:        genai.TypeString,
							Description: "The author's name, e.g. 'John Grisham'",
						},
						"top_n": topNSchema(),
					},
					Required: []string{"author"},
				},
			},
			{
				Name: FuncFindBooksByKeyword,
				Description: "Finds books related to the given natural language query. " +
					"The input string will be embedded and compared against the book descriptions " +
					"in the library's vector database to return the most relevant results. " +
					"Example: 'a legal thriller about a young lawyer in New York'.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"keywords": {
							Type: genai.TypeString,
							Description: "A natural language query describing the type of books you are looking for. " +
								"E.g. 'legal thriller with young lawyer', 'fantasy novels about dragons', etc.",
						},
						"top_n": topNSchema(),
					},
					Required: []string{"keywords"},
				},
			},
			{
				Name: FuncIsBookInLibrary,
				Description: "Checks if one or more books with a given title exist in the dataset and returns metadata for all matches. " +
					"If multiple books match the title (e.g. a series), all are returned in the 'results' list.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"title": {
							Type:        genai.TypeString,
							Description: "The title of the book to look up",
						},
					},
					Required: []string{"title"},
				},
			},
		},
	}
}

// Execute runs the tool with the given function call
func (x *books) Execute(ctx context.Context, fc genai.FunctionCall) (*genai.FunctionResponse, error) {
	logging.From(ctx).Debug("executing retrieval function", "name", fc.Name, "args", fc.Args)

	var response map[string]any

	switch fc.Name {
	case FuncFindSimilarBooksByTitle:
		title, err := stringArg(fc.Args, "title")
		if err != nil {
			return nil, err
		}
		result := x.rec.SimilarByTitle(ctx, title, intArg(fc.Args, "top_n"))
		response = resultPayload(result, func(m recommend.Match) map[string]any {
			p := bookPayload(m.Book)
			p["description"] = m.Book.Description
			p["similarity_score"] = m.Similarity
			return p
		})

	case FuncFindBooksByKeyword:
		keywords, err := stringArg(fc.Args, "keywords")
		if err != nil {
			return nil, err
		}
		result := x.rec.ByKeyword(ctx, keywords, intArg(fc.Args, "top_n"))
		response = resultPayload(result, func(m recommend.Match) map[string]any {
			p := bookPayload(m.Book)
			p["image_link"] = m.Book.ImageLink
			p["similarity_score"] = m.Similarity
			return p
		})

	case FuncRecommendBySharedReads:
		isbn, err := stringArg(fc.Args, "isbn")
		if err != nil {
			return nil, err
		}
		result := x.rec.BySharedReads(isbn, intArg(fc.Args, "top_n"))
		response = resultPayload(result, func(m recommend.Match) map[string]any {
			p := bookPayload(m.Book)
			p["co_read_count"] = m.CoReadCount
			return p
		})

	case FuncFindBooksByAuthor:
		author, err := stringArg(fc.Args, "author")
		if err != nil {
			return nil, err
		}
		result := x.rec.ByAuthor(author, intArg(fc.Args, "top_n"))
		response = resultPayload(result, func(m recommend.Match) map[string]any {
			p := bookPayload(m.Book)
			p["image_link"] = m.Book.ImageLink
			return p
		})

	case FuncIsBookInLibrary:
		title, err := stringArg(fc.Args, "title")
		if err != nil {
			return nil, err
		}
		check := x.rec.InLibrary(title)
		results := make([]any, 0, len(check.Matches))
		for _, m := range check.Matches {
			p := bookPayload(m.Book)
			p["image_link"] = m.Book.ImageLink
			p["description"] = m.Book.Description
			results = append(results, p)
		}
		response = map[string]any{
			"exists":  check.Exists,
			"results": results,
		}

	default:
		return nil, goerr.Wrap(tool.ErrToolNotFound, "unknown function", goerr.V("name", fc.Name))
	}

	return &genai.FunctionResponse{
		Name:     fc.Name,
		Response: response,
	}, nil
}

// resultPayload converts a tagged result into the wire payload the reasoning
// agent expects: "results" on success, "error" for failures it should report,
// "info" for expected empty or malformed-input states it can react to
// conversationally.
func resultPayload(result *recommend.Result, toMap func(recommend.Match) map[string]any) map[string]any {
	switch result.Kind {
	case recommend.KindFound:
		results := make([]any, 0, len(result.Matches))
		for _, m := range result.Matches {
			results = append(results, toMap(m))
		}
		return map[string]any{"results": results}

	case recommend.KindNotFound:
		return map[string]any{"error": result.Message}

	case recommend.KindInvalidInput, recommend.KindNoCoReads:
		return map[string]any{"info": result.Message}

	default:
		// Internal fault: downgraded to an empty result set so that one bad
		// call does not break the conversation.
		return map[string]any{"results": []any{}}
	}
}

func bookPayload(b *model.Book) map[string]any {
	return map[string]any{
		"isbn13":    int64(b.ISBN),
		"medium_id": int64(b.MediumID),
		"title":     b.Title,
		"authors":   b.Authors,
	}
}

func stringArg(args map[string]any, name string) (string, error) {
	v, ok := args[name].(string)
	if !ok || v == "" {
		return "", goerr.New("required argument is missing", goerr.V("argument", name))
	}
	return v, nil
}

// intArg reads an optional integer argument. JSON numbers arrive as float64,
// but some models send quoted numbers.
func intArg(args map[string]any, name string) int {
	switch v := args[name].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return 0
}
