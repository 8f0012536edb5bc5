package models

import (
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// DocumentChunk is one bounded span of an ingested PDF's extracted text.
// Chunks are tagged with the source file's content hash and the owning user;
// neither is ever reassigned. Dedup key is (file_hash, user_id).
type DocumentChunk struct {
	ID         string          `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID     string          `gorm:"column:user_id;type:text;index:idx_chunks_owner_hash" json:"user_id"`
	FileHash   string          `gorm:"column:file_hash;type:text;index:idx_chunks_owner_hash" json:"file_hash"`
	FileName   string          `gorm:"column:file_name;type:text" json:"file_name"`
	Content    string          `gorm:"column:content;type:text" json:"content"`
	Page       int             `gorm:"column:page;type:integer" json:"page"`
	StartIndex int             `gorm:"column:start_index;type:integer" json:"start_index"`
	Embedding  pgvector.Vector `gorm:"column:embedding;type:vector(768)" json:"-"`
	Metadata   datatypes.JSON  `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
	CreatedAt  time.Time       `gorm:"column:created_at;type:timestamptz" json:"created_at"`
}

func (DocumentChunk) TableName() string { return "document_chunks" }

// DocumentClassification maps a content hash to a document-type label.
// The schema exists for the classification flow; no active chat path
// reads or writes it yet.
type DocumentClassification struct {
	FileHash     string    `gorm:"column:file_hash;type:text;primaryKey" json:"file_hash"`
	DocType      string    `gorm:"column:doc_type;type:text;not null" json:"doc_type"`
	ClassifiedAt time.Time `gorm:"column:classified_at;type:timestamptz" json:"classified_at"`
}

func (DocumentClassification) TableName() string { return "document_classifications" }
