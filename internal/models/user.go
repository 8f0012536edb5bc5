package models

import "time"

// User is created on first login and never deleted. The identifier is a
// normalized string chosen by the user (e.g. "alice"); login upserts the
// display name.
type User struct {
	ID        string    `gorm:"column:id;type:text;primaryKey" json:"id"`
	Name      string    `gorm:"column:name;type:text;not null" json:"name"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
}

func (User) TableName() string { return "users" }
