package postgres

import (
	"context"

	"github.com/pgvector/pgvector-go"
	"github.com/twissamodiofficial/MediQuery-Assist/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DocumentChunkRepository interface {
	ExistsByHashAndOwner(ctx context.Context, fileHash, userID string) (bool, error)
	InsertBatch(ctx context.Context, chunks []models.DocumentChunk) error
	// SearchNearest returns the k chunks owned by userID closest to the
	// query embedding by cosine distance.
	SearchNearest(ctx context.Context, userID string, embedding []float32, k int) ([]models.DocumentChunk, error)
}

type documentChunkRepo struct {
	db *gorm.DB
}

func NewDocumentChunkRepo(db *gorm.DB) DocumentChunkRepository {
	return &documentChunkRepo{db: db}
}

func (r *documentChunkRepo) ExistsByHashAndOwner(ctx context.Context, fileHash, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.DocumentChunk{}).
		Where("file_hash = ? AND user_id = ?", fileHash, userID).
		Limit(1).
		Count(&count).Error
	return count > 0, err
}

func (r *documentChunkRepo) InsertBatch(ctx context.Context, chunks []models.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(chunks, 100).Error
}

func (r *documentChunkRepo) SearchNearest(ctx context.Context, userID string, embedding []float32, k int) ([]models.DocumentChunk, error) {
	if k <= 0 {
		k = 5
	}
	var rows []models.DocumentChunk
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Clauses(clause.OrderBy{
			Expression: clause.Expr{
				SQL:                "embedding <=> ?",
				Vars:               []interface{}{pgvector.NewVector(embedding)},
				WithoutParentheses: true,
			},
		}).
		Limit(k).
		Find(&rows).Error
	return rows, err
}
