package agent

import (
	"context"

	"github.com/twissamodiofficial/MediQuery-Assist/internal/models"
	"github.com/twissamodiofficial/MediQuery-Assist/internal/providers/llm"
	"github.com/twissamodiofficial/MediQuery-Assist/internal/providers/search"
)

// DocumentRetriever is the slice of the document store the tool layer needs.
type DocumentRetriever interface {
	Retrieve(ctx context.Context, ownerID, query string) string
}

// Tool is one named, read-only capability. Run never returns an error:
// failures become observation text the model can react to.
type Tool struct {
	Name        string
	Description string
	QueryHint   string
	Run         func(ctx context.Context, userID, query string) string
}

// Registry is the closed set of capabilities available to the reasoning
// loop, dispatched through a fixed name -> tool mapping.
type Registry struct {
	tools map[string]Tool
	defs  []llm.ToolDef
}

const (
	ToolCheckMedicalHistory = "check_medical_history"
	ToolWebSearch           = "web_search"
)

func NewRegistry(docs DocumentRetriever, web search.Provider) *Registry {
	r := &Registry{tools: map[string]Tool{}}

	r.add(Tool{
		Name:        ToolCheckMedicalHistory,
		Description: "Retrieves relevant medical history of the user",
		QueryHint:   "medical history to be searched for",
		Run: func(ctx context.Context, userID, query string) string {
			return docs.Retrieve(ctx, userID, query)
		},
	})
	r.add(Tool{
		Name:        ToolWebSearch,
		Description: "Search web for answering queries with latest information",
		QueryHint:   "query to be searched on the web",
		Run: func(ctx context.Context, _, query string) string {
			out, err := web.Search(ctx, query)
			if err != nil {
				return "Web search failed: " + err.Error()
			}
			return out
		},
	})

	return r
}

func (r *Registry) add(t Tool) {
	r.tools[t.Name] = t
	r.defs = append(r.defs, llm.ToolDef{
		Name:        t.Name,
		Description: t.Description,
		QueryHint:   t.QueryHint,
	})
}

// Defs lists the bound tools in registration order.
func (r *Registry) Defs() []llm.ToolDef { return r.defs }

// Execute runs one requested call and wraps the result as a tool-role
// observation. Unknown names produce an observation, not a failure; the
// model gets to correct itself.
func (r *Registry) Execute(ctx context.Context, userID string, call models.ToolCall) models.ChatMessage {
	tool, ok := r.tools[call.Name]
	if !ok {
		return models.ChatMessage{
			Role:     models.RoleTool,
			ToolName: call.Name,
			Content:  "Unknown tool: " + call.Name,
		}
	}
	return models.ChatMessage{
		Role:     models.RoleTool,
		ToolName: call.Name,
		Content:  tool.Run(ctx, userID, call.Query),
	}
}
