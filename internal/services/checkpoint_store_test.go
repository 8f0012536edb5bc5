package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twissamodiofficial/MediQuery-Assist/internal/models"
	"github.com/twissamodiofficial/MediQuery-Assist/internal/utils"
)

type fakeCheckpointRepo struct {
	checkpoints map[string]*models.Checkpoint
	gets        int
}

func newFakeCheckpointRepo() *fakeCheckpointRepo {
	return &fakeCheckpointRepo{checkpoints: map[string]*models.Checkpoint{}}
}

func (f *fakeCheckpointRepo) Get(_ context.Context, sessionID string) (*models.Checkpoint, error) {
	f.gets++
	cp, ok := f.checkpoints[sessionID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return cp, nil
}

func (f *fakeCheckpointRepo) Save(_ context.Context, sessionID, userID string, messages []models.ChatMessage) error {
	f.checkpoints[sessionID] = &models.Checkpoint{
		SessionID: sessionID,
		UserID:    userID,
		Messages:  messages,
	}
	return nil
}

type memCache struct {
	entries map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{entries: map[string][]byte{}}
}

func (c *memCache) GetJSON(_ context.Context, key string, dst any) (bool, error) {
	b, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *memCache) SetJSON(_ context.Context, key string, val any, _ time.Duration) error {
	b, err := json.Marshal(val)
	if err != nil {
		return err
	}
	c.entries[key] = b
	return nil
}

func (c *memCache) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}

func TestCheckpointStoreLoadMissingSession(t *testing.T) {
	store := NewCheckpointStore(newFakeCheckpointRepo(), newMemCache(), time.Minute)

	messages, err := store.Load(context.Background(), "s1")
	require.NoError(t, err)
	assert.Nil(t, messages)
}

func TestCheckpointStoreRoundTrip(t *testing.T) {
	repo := newFakeCheckpointRepo()
	store := NewCheckpointStore(repo, newMemCache(), time.Minute)

	saved := []models.ChatMessage{
		{Role: models.RoleSystem, Content: "prompt"},
		{Role: models.RoleUser, Content: "hi"},
	}
	require.NoError(t, store.Save(context.Background(), "s1", "alice", saved))

	messages, err := store.Load(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, saved, messages)
}

func TestCheckpointStoreServesFromCache(t *testing.T) {
	repo := newFakeCheckpointRepo()
	store := NewCheckpointStore(repo, newMemCache(), time.Minute)

	require.NoError(t, store.Save(context.Background(), "s1", "alice",
		[]models.ChatMessage{{Role: models.RoleUser, Content: "hi"}}))

	_, err := store.Load(context.Background(), "s1")
	require.NoError(t, err)
	_, err = store.Load(context.Background(), "s1")
	require.NoError(t, err)

	// both loads hit the cache seeded by Save
	assert.Equal(t, 0, repo.gets)
}

func TestCheckpointStoreBackfillsCache(t *testing.T) {
	repo := newFakeCheckpointRepo()
	c := newMemCache()
	store := NewCheckpointStore(repo, c, time.Minute)

	repo.checkpoints["s1"] = &models.Checkpoint{
		SessionID: "s1",
		UserID:    "alice",
		Messages:  []models.ChatMessage{{Role: models.RoleUser, Content: "hi"}},
	}

	_, err := store.Load(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.gets)

	_, err = store.Load(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.gets)
}

func TestCheckpointStoreWorksWithoutCache(t *testing.T) {
	repo := newFakeCheckpointRepo()
	store := NewCheckpointStore(repo, nil, time.Minute)

	require.NoError(t, store.Save(context.Background(), "s1", "alice",
		[]models.ChatMessage{{Role: models.RoleUser, Content: "hi"}}))

	messages, err := store.Load(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, messages, 1)
}
