package services

import (
	"context"
	"errors"
	"time"

	"github.com/twissamodiofficial/MediQuery-Assist/internal/cache"
	"github.com/twissamodiofficial/MediQuery-Assist/internal/models"
	mongorepo "github.com/twissamodiofficial/MediQuery-Assist/internal/repositories/mongo"
	"github.com/twissamodiofficial/MediQuery-Assist/internal/utils"
)

// CheckpointStore fronts the durable Mongo checkpoint with a Redis
// read-through cache, since every chat turn reloads the full history.
type CheckpointStore struct {
	repo  mongorepo.CheckpointRepository
	cache cache.Cache // optional
	ttl   time.Duration
}

func NewCheckpointStore(repo mongorepo.CheckpointRepository, c cache.Cache, ttl time.Duration) *CheckpointStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CheckpointStore{repo: repo, cache: c, ttl: ttl}
}

func checkpointKey(sessionID string) string {
	return "chat:checkpoint:" + sessionID
}

func (s *CheckpointStore) Load(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	if s.cache != nil {
		var cached []models.ChatMessage
		if hit, err := s.cache.GetJSON(ctx, checkpointKey(sessionID), &cached); err == nil && hit {
			return cached, nil
		}
	}

	cp, err := s.repo.Get(ctx, sessionID)
	if errors.Is(err, utils.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, checkpointKey(sessionID), cp.Messages, s.ttl)
	}
	return cp.Messages, nil
}

func (s *CheckpointStore) Save(ctx context.Context, sessionID, userID string, messages []models.ChatMessage) error {
	if err := s.repo.Save(ctx, sessionID, userID, messages); err != nil {
		return err
	}
	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, checkpointKey(sessionID), messages, s.ttl)
	}
	return nil
}
