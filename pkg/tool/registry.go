package tool

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"google.golang.org/genai"
)

var ErrToolNotFound = goerr.New("tool not found")

// Registry manages available tools for the LLM
type Registry struct {
	allTools []Tool

	// populated by Init
	tools   map[string]Tool
	enabled []Tool
}

// New creates a new tool registry with the given tools
func New(tools ...Tool) *Registry {
	return &Registry{
		allTools: tools,
		tools:    make(map[string]Tool),
	}
}

// Init initializes every tool with the shared client and indexes the
// declared function names of those that report themselves enabled.
func (r *Registry) Init(ctx context.Context, client *Client) error {
	r.tools = make(map[string]Tool)
	r.enabled = nil

	for _, t := range r.allTools {
		ok, err := t.Init(ctx, client)
		if err != nil {
			return goerr.Wrap(err, "failed to initialize tool")
		}
		if !ok {
			continue
		}

		spec := t.Spec()
		if spec == nil || len(spec.FunctionDeclarations) == 0 {
			continue
		}
		r.enabled = append(r.enabled, t)
		for _, fd := range spec.FunctionDeclarations {
			r.tools[fd.Name] = t
		}
	}

	return nil
}

// Specs returns all enabled tool specifications for Gemini function calling
func (r *Registry) Specs() []*genai.Tool {
	specs := make([]*genai.Tool, 0, len(r.enabled))
	for _, t := range r.enabled {
		specs = append(specs, t.Spec())
	}
	return specs
}

// EnabledFunctions returns the declared function names of enabled tools
func (r *Registry) EnabledFunctions() []string {
	var names []string
	for _, t := range r.enabled {
		for _, fd := range t.Spec().FunctionDeclarations {
			names = append(names, fd.Name)
		}
	}
	return names
}

// Prompts returns all tool prompts concatenated
func (r *Registry) Prompts(ctx context.Context) string {
	var prompts []string
	for _, t := range r.enabled {
		if prompt := t.Prompt(ctx); prompt != "" {
			prompts = append(prompts, prompt)
		}
	}
	return strings.Join(prompts, "\n\n")
}

// Flags returns all tool flags combined
func (r *Registry) Flags() []cli.Flag {
	var flags []cli.Flag
	for _, t := range r.allTools {
		if toolFlags := t.Flags(); toolFlags != nil {
			flags = append(flags, toolFlags...)
		}
	}
	return flags
}

// Execute runs the tool with the given function call
func (r *Registry) Execute(ctx context.Context, fc genai.FunctionCall) (*genai.FunctionResponse, error) {
	tool, ok := r.tools[fc.Name]
	if !ok {
		return nil, goerr.Wrap(ErrToolNotFound, "unknown function", goerr.V("name", fc.Name))
	}

	return tool.Execute(ctx, fc)
}
