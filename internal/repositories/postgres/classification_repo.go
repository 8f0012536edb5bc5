package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/twissamodiofficial/MediQuery-Assist/internal/models"
	"github.com/twissamodiofficial/MediQuery-Assist/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ClassificationRepository persists document-type labels per content hash.
// The table ships with the schema; no active chat flow consumes it yet.
type ClassificationRepository interface {
	GetLabel(ctx context.Context, fileHash string) (string, error)
	SaveLabel(ctx context.Context, fileHash, docType string) error
}

type classificationRepo struct {
	db *gorm.DB
}

func NewClassificationRepo(db *gorm.DB) ClassificationRepository {
	return &classificationRepo{db: db}
}

func (r *classificationRepo) GetLabel(ctx context.Context, fileHash string) (string, error) {
	var row models.DocumentClassification
	err := r.db.WithContext(ctx).Where("file_hash = ?", fileHash).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", utils.ErrNotFound
	}
	return row.DocType, err
}

func (r *classificationRepo) SaveLabel(ctx context.Context, fileHash, docType string) error {
	row := models.DocumentClassification{
		FileHash:     fileHash,
		DocType:      docType,
		ClassifiedAt: time.Now().UTC(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "file_hash"}},
		DoUpdates: clause.AssignmentColumns([]string{"doc_type", "classified_at"}),
	}).Create(&row).Error
}
