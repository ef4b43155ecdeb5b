package chat

import (
	"context"
	_ "embed"
	"io"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/libris/pkg/adapter"
	"github.com/m-mizutani/libris/pkg/model"
	"github.com/m-mizutani/libris/pkg/tool"
	"github.com/m-mizutani/libris/pkg/tool/books"
	"github.com/m-mizutani/libris/pkg/utils/logging"
	"google.golang.org/genai"
)

//go:embed prompt/system.md
var systemPromptRaw string

// DefaultMaxRounds bounds the tool-call rounds per user turn. The original
// loop was unbounded; exceeding the bound is surfaced as ErrMaxRoundsExceeded
// rather than spinning forever.
const DefaultMaxRounds = 8

var ErrMaxRoundsExceeded = goerr.New("max tool-call rounds exceeded")

// Session drives a single conversation: it alternates between reasoning
// requests and local tool execution until the model produces a plain text
// answer. One Session owns one Memory; sessions are not shared across
// goroutines.
type Session struct {
	gemini    adapter.Gemini
	registry  *tool.Registry
	memory    *model.Memory
	maxRounds int
	output    io.Writer
}

// NewInput contains parameters for creating a chat session
type NewInput struct {
	Gemini   adapter.Gemini
	Registry *tool.Registry

	// MaxRounds overrides DefaultMaxRounds when positive.
	MaxRounds int

	// Output receives tool activity notices during a turn. Optional.
	Output io.Writer
}

func New(input NewInput) *Session {
	maxRounds := input.MaxRounds
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}

	return &Session{
		gemini:    input.Gemini,
		registry:  input.Registry,
		memory:    model.NewMemory(),
		maxRounds: maxRounds,
		output:    input.Output,
	}
}

// Memory exposes the session state for presentation (e.g. the last resolved book).
func (s *Session) Memory() *model.Memory {
	return s.memory
}

// Send processes one user turn. It appends the message to the conversation
// memory, then repeats reasoning requests and tool batches until the model
// answers without further calls. History updates are applied per completed
// round only, so an abandoned turn never leaves a half-applied batch behind.
func (s *Session) Send(ctx context.Context, message string) (string, error) {
	logger := logging.From(ctx)

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(s.systemPrompt(ctx), ""),
		Tools:             s.registry.Specs(),
	}

	s.memory.Contents = append(s.memory.Contents, genai.NewContentFromText(message, genai.RoleUser))

	for round := 0; round < s.maxRounds; round++ {
		resp, err := s.gemini.GenerateContent(ctx, s.memory.Contents, config)
		if err != nil {
			return "", goerr.Wrap(err, "failed to generate content")
		}

		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			return "", goerr.New("empty response from reasoning service")
		}

		candidate := resp.Candidates[0]

		var calls []*genai.FunctionCall
		for _, part := range candidate.Content.Parts {
			if part.FunctionCall != nil {
				calls = append(calls, part.FunctionCall)
			}
		}

		// No tool requests: this is the final answer for the turn.
		if len(calls) == 0 {
			s.memory.Contents = append(s.memory.Contents, candidate.Content)
			return joinTextParts(candidate.Content), nil
		}

		logger.Debug("executing tool batch", "round", round, "calls", len(calls))

		// Execute the batch in request order. Each call is isolated: a
		// failure becomes an error-shaped payload for that call only.
		responses := make([]*genai.Part, 0, len(calls))
		var lastBook *model.Book
		var lastTool string

		for _, fc := range calls {
			s.notifyCall(fc)
			lastTool = fc.Name

			funcResp, err := s.registry.Execute(ctx, *fc)
			if err != nil {
				logger.Warn("tool execution failed", "name", fc.Name, "error", err)
				funcResp = &genai.FunctionResponse{
					Name:     fc.Name,
					Response: map[string]any{"error": err.Error()},
				}
			}

			if fc.Name == books.FuncIsBookInLibrary {
				if book := firstLibraryMatch(funcResp.Response); book != nil {
					lastBook = book
				}
			}

			responses = append(responses, &genai.Part{FunctionResponse: funcResp})
		}

		// The round is complete: commit the assistant request, the tool
		// results and the memory updates together.
		s.memory.Contents = append(s.memory.Contents, candidate.Content, &genai.Content{
			Role:  genai.RoleUser,
			Parts: responses,
		})
		s.memory.LastTool = lastTool
		if lastBook != nil {
			s.memory.LastBook = lastBook
		}
	}

	return "", goerr.Wrap(ErrMaxRoundsExceeded, "turn aborted", goerr.V("max_rounds", s.maxRounds))
}

func (s *Session) systemPrompt(ctx context.Context) string {
	prompt := systemPromptRaw
	if extra := s.registry.Prompts(ctx); extra != "" {
		prompt += "\n\n" + extra
	}
	return prompt
}

func (s *Session) notifyCall(fc *genai.FunctionCall) {
	if s.output == nil {
		return
	}
	io.WriteString(s.output, "  ↳ "+fc.Name+"\n")
}

func joinTextParts(content *genai.Content) string {
	var texts []string
	for _, part := range content.Parts {
		if part.Text != "" {
			texts = append(texts, part.Text)
		}
	}
	return strings.Join(texts, "\n")
}

// firstLibraryMatch extracts the first returned book from a successful
// is_book_in_library payload, or nil when the lookup found nothing.
func firstLibraryMatch(response map[string]any) *model.Book {
	exists, ok := response["exists"].(bool)
	if !ok || !exists {
		return nil
	}

	results, ok := response["results"].([]any)
	if !ok || len(results) == 0 {
		return nil
	}

	first, ok := results[0].(map[string]any)
	if !ok {
		return nil
	}

	book := &model.Book{}
	if v, ok := first["title"].(string); ok {
		book.Title = v
	}
	if v, ok := first["description"].(string); ok {
		book.Description = v
	}
	if v, ok := first["image_link"].(string); ok {
		book.ImageLink = v
	}
	switch v := first["isbn13"].(type) {
	case int64:
		book.ISBN = model.ISBN(v)
	case float64:
		book.ISBN = model.ISBN(int64(v))
	}
	switch v := first["medium_id"].(type) {
	case int64:
		book.MediumID = model.MediumID(v)
	case float64:
		book.MediumID = model.MediumID(int64(v))
	}
	switch v := first["authors"].(type) {
	case []string:
		book.Authors = v
	case []any:
		for _, a := range v {
			if s, ok := a.(string); ok {
				book.Authors = append(book.Authors, s)
			}
		}
	}

	return book
}
