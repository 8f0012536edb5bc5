package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	vertexgenai "cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/option"

	"github.com/twissamodiofficial/MediQuery-Assist/internal/models"
)

type VertexGemini struct {
	client *vertexgenai.Client
	model  string
}

func NewVertexGemini(ctx context.Context, projectID, location, modelName string) (*VertexGemini, error) {
	var opts []option.ClientOption
	if cred := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); cred != "" {
		opts = append(opts, option.WithCredentialsFile(cred))
	}

	c, err := vertexgenai.NewClient(ctx, projectID, location, opts...)
	if err != nil {
		return nil, err
	}

	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	return &VertexGemini{client: c, model: modelName}, nil
}

func (v *VertexGemini) Close() error { return v.client.Close() }

func (v *VertexGemini) Chat(ctx context.Context, messages []models.ChatMessage, tools []ToolDef) (models.ChatMessage, error) {
	m := v.client.GenerativeModel(v.model)

	if len(tools) > 0 {
		decls := make([]*vertexgenai.FunctionDeclaration, 0, len(tools))
		for _, t := range tools {
			decls = append(decls, &vertexgenai.FunctionDeclaration{
				Name:        t.Name,
				Description: t.Description,
				Parameters: &vertexgenai.Schema{
					Type: vertexgenai.TypeObject,
					Properties: map[string]*vertexgenai.Schema{
						"query": {
							Type:        vertexgenai.TypeString,
							Description: t.QueryHint,
						},
					},
					Required: []string{"query"},
				},
			})
		}
		m.Tools = []*vertexgenai.Tool{{FunctionDeclarations: decls}}
	}

	// System messages become the system instruction; the rest map onto
	// the Gemini content roles.
	var system []string
	var contents []*vertexgenai.Content
	for _, msg := range messages {
		switch msg.Role {
		case models.RoleSystem:
			system = append(system, msg.Content)
		case models.RoleUser:
			contents = append(contents, &vertexgenai.Content{
				Role:  "user",
				Parts: []vertexgenai.Part{vertexgenai.Text(msg.Content)},
			})
		case models.RoleAssistant:
			var parts []vertexgenai.Part
			if msg.Content != "" {
				parts = append(parts, vertexgenai.Text(msg.Content))
			}
			for _, tc := range msg.ToolCalls {
				parts = append(parts, vertexgenai.FunctionCall{
					Name: tc.Name,
					Args: map[string]any{"query": tc.Query},
				})
			}
			if len(parts) == 0 {
				continue
			}
			contents = append(contents, &vertexgenai.Content{Role: "model", Parts: parts})
		case models.RoleTool:
			contents = append(contents, &vertexgenai.Content{
				Role: "function",
				Parts: []vertexgenai.Part{vertexgenai.FunctionResponse{
					Name:     msg.ToolName,
					Response: map[string]any{"content": msg.Content},
				}},
			})
		}
	}
	if len(system) > 0 {
		m.SystemInstruction = &vertexgenai.Content{
			Parts: []vertexgenai.Part{vertexgenai.Text(strings.Join(system, "\n\n"))},
		}
	}
	if len(contents) == 0 {
		return models.ChatMessage{}, errors.New("no messages to send")
	}

	cs := m.StartChat()
	cs.History = contents[:len(contents)-1]

	resp, err := cs.SendMessage(ctx, contents[len(contents)-1].Parts...)
	if err != nil {
		return models.ChatMessage{}, err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return models.ChatMessage{}, fmt.Errorf("model %s returned no candidates", v.model)
	}

	out := models.ChatMessage{Role: models.RoleAssistant}
	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		switch p := part.(type) {
		case vertexgenai.Text:
			text.WriteString(string(p))
		case vertexgenai.FunctionCall:
			query, _ := p.Args["query"].(string)
			out.ToolCalls = append(out.ToolCalls, models.ToolCall{Name: p.Name, Query: query})
		}
	}
	out.Content = text.String()
	return out, nil
}
