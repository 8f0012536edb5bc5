package llm

import (
	"context"

	"github.com/twissamodiofficial/MediQuery-Assist/internal/models"
)

// ToolDef describes one callable capability to the model. Every tool in
// this system takes a single string argument named "query".
type ToolDef struct {
	Name        string
	Description string
	QueryHint   string
}

type Provider interface {
	// Chat runs one model decision step over the full message history with
	// the given tools bound. The returned assistant message carries tool
	// calls when the model chose to act instead of answer.
	Chat(ctx context.Context, messages []models.ChatMessage, tools []ToolDef) (models.ChatMessage, error)
	Close() error
}
