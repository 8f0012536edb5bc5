package models

import "time"

// Session is the unit of conversation continuity: the reasoning loop
// checkpoints message history under the session id. Immutable once created;
// one user may hold many sessions.
type Session struct {
	ID        string    `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID    string    `gorm:"column:user_id;type:text;not null;index" json:"user_id"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
}

func (Session) TableName() string { return "sessions" }
