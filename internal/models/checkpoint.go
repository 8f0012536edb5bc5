package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Checkpoint is the persisted snapshot of a conversation's full message
// history (system and tool entries included), keyed by session id. The
// message list only ever grows within a session.
type Checkpoint struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID string             `bson:"session_id" json:"session_id"`
	UserID    string             `bson:"user_id" json:"user_id"`
	Messages  []ChatMessage      `bson:"messages" json:"messages"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
