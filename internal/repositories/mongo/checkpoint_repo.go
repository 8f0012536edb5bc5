package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/twissamodiofficial/MediQuery-Assist/internal/models"
	"github.com/twissamodiofficial/MediQuery-Assist/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CheckpointRepository interface {
	Get(ctx context.Context, sessionID string) (*models.Checkpoint, error)
	// Save replaces the stored message list for the session (upsert).
	// Callers only ever append to the list they loaded, so the stored
	// history grows monotonically.
	Save(ctx context.Context, sessionID, userID string, messages []models.ChatMessage) error
}

type checkpointRepo struct {
	col *mongo.Collection
}

func NewCheckpointRepo(db *mongo.Database) CheckpointRepository {
	return &checkpointRepo{col: db.Collection("checkpoints")}
}

func (r *checkpointRepo) Get(ctx context.Context, sessionID string) (*models.Checkpoint, error) {
	var cp models.Checkpoint
	err := r.col.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&cp)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	return &cp, err
}

func (r *checkpointRepo) Save(ctx context.Context, sessionID, userID string, messages []models.ChatMessage) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"session_id": sessionID},
		bson.M{"$set": bson.M{
			"user_id":    userID,
			"messages":   messages,
			"updated_at": time.Now().UTC(),
		}},
		options.Update().SetUpsert(true),
	)
	return err
}
