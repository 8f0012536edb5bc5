package models

// Message roles used across the reasoning loop and the visible transcript.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ToolCall is a model-requested invocation of one named capability.
type ToolCall struct {
	ID    string `bson:"id,omitempty" json:"id,omitempty"`
	Name  string `bson:"name" json:"name"`
	Query string `bson:"query" json:"query"`
}

// ChatMessage is one role-tagged entry of a conversation. Assistant
// messages may carry tool calls; tool messages carry the observation for
// the named tool.
type ChatMessage struct {
	Role      string     `bson:"role" json:"role"`
	Content   string     `bson:"content" json:"content"`
	ToolCalls []ToolCall `bson:"tool_calls,omitempty" json:"tool_calls,omitempty"`
	ToolName  string     `bson:"tool_name,omitempty" json:"tool_name,omitempty"`
}
