package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twissamodiofficial/MediQuery-Assist/internal/models"
	"github.com/twissamodiofficial/MediQuery-Assist/internal/pdf"
)

type fakeChunkRepo struct {
	existing  map[string]bool // fileHash|userID
	inserted  []models.DocumentChunk
	nearest   []models.DocumentChunk
	existsErr error
	insertErr error
	searchErr error

	searchUserID string
}

func (f *fakeChunkRepo) ExistsByHashAndOwner(_ context.Context, fileHash, userID string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return f.existing[fileHash+"|"+userID], nil
}

func (f *fakeChunkRepo) InsertBatch(_ context.Context, chunks []models.DocumentChunk) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, chunks...)
	return nil
}

func (f *fakeChunkRepo) SearchNearest(_ context.Context, userID string, _ []float32, _ int) ([]models.DocumentChunk, error) {
	f.searchUserID = userID
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.nearest, nil
}

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2}, nil
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.1, 0.2}
	}
	return out, nil
}

func textExtractor(pages ...string) func([]byte) ([]pdf.Page, error) {
	return func([]byte) ([]pdf.Page, error) {
		var out []pdf.Page
		for i, p := range pages {
			out = append(out, pdf.Page{Number: i + 1, Text: p})
		}
		return out, nil
	}
}

func TestStoreSuccess(t *testing.T) {
	repo := &fakeChunkRepo{existing: map[string]bool{}}
	store := NewStore(repo, &fakeEmbedder{}, nil, nil)
	store.SetExtractor(textExtractor("patient has a penicillin allergy"))

	res := store.Store(context.Background(), []byte("%PDF-fake"), "record.pdf", "alice")

	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, "File successfully uploaded", res.Message)
	assert.Equal(t, 1, res.Chunks)

	require.Len(t, repo.inserted, 1)
	row := repo.inserted[0]
	assert.Equal(t, "alice", row.UserID)
	assert.Equal(t, "record.pdf", row.FileName)
	assert.Equal(t, 1, row.Page)
	assert.NotEmpty(t, row.FileHash)
	assert.NotEmpty(t, row.ID)
}

func TestStoreDuplicateIsSkipped(t *testing.T) {
	repo := &fakeChunkRepo{existing: map[string]bool{}}
	store := NewStore(repo, &fakeEmbedder{}, nil, nil)
	store.SetExtractor(textExtractor("some text"))

	content := []byte("%PDF-fake")
	first := store.Store(context.Background(), content, "record.pdf", "alice")
	require.Equal(t, StatusSuccess, first.Status)

	repo.existing[repo.inserted[0].FileHash+"|alice"] = true
	inserted := len(repo.inserted)

	second := store.Store(context.Background(), content, "record.pdf", "alice")
	assert.Equal(t, StatusSkipped, second.Status)
	assert.Equal(t, "File already exists in database", second.Message)
	assert.Len(t, repo.inserted, inserted)
}

func TestStoreSameFileDifferentOwnerIsNotSkipped(t *testing.T) {
	repo := &fakeChunkRepo{existing: map[string]bool{}}
	store := NewStore(repo, &fakeEmbedder{}, nil, nil)
	store.SetExtractor(textExtractor("some text"))

	content := []byte("%PDF-fake")
	require.Equal(t, StatusSuccess, store.Store(context.Background(), content, "r.pdf", "alice").Status)
	repo.existing[repo.inserted[0].FileHash+"|alice"] = true

	res := store.Store(context.Background(), content, "r.pdf", "bob")
	assert.Equal(t, StatusSuccess, res.Status)
}

func TestStoreFailures(t *testing.T) {
	t.Run("extraction failure", func(t *testing.T) {
		repo := &fakeChunkRepo{existing: map[string]bool{}}
		store := NewStore(repo, &fakeEmbedder{}, nil, nil)
		store.SetExtractor(func([]byte) ([]pdf.Page, error) {
			return nil, errors.New("not a pdf")
		})

		res := store.Store(context.Background(), []byte("junk"), "r.pdf", "alice")
		assert.Equal(t, StatusError, res.Status)
		assert.True(t, strings.HasPrefix(res.Message, "Failed to upload file:"))
	})

	t.Run("embedding failure", func(t *testing.T) {
		repo := &fakeChunkRepo{existing: map[string]bool{}}
		store := NewStore(repo, &fakeEmbedder{err: errors.New("quota")}, nil, nil)
		store.SetExtractor(textExtractor("some text"))

		res := store.Store(context.Background(), []byte("x"), "r.pdf", "alice")
		assert.Equal(t, StatusError, res.Status)
		assert.Contains(t, res.Message, "quota")
	})

	t.Run("insert failure", func(t *testing.T) {
		repo := &fakeChunkRepo{existing: map[string]bool{}, insertErr: errors.New("db down")}
		store := NewStore(repo, &fakeEmbedder{}, nil, nil)
		store.SetExtractor(textExtractor("some text"))

		res := store.Store(context.Background(), []byte("x"), "r.pdf", "alice")
		assert.Equal(t, StatusError, res.Status)
	})

	t.Run("no extractable text", func(t *testing.T) {
		repo := &fakeChunkRepo{existing: map[string]bool{}}
		store := NewStore(repo, &fakeEmbedder{}, nil, nil)
		store.SetExtractor(textExtractor())

		res := store.Store(context.Background(), []byte("x"), "r.pdf", "alice")
		assert.Equal(t, StatusError, res.Status)
	})
}

func TestRetrieveJoinsMatches(t *testing.T) {
	repo := &fakeChunkRepo{
		existing: map[string]bool{},
		nearest: []models.DocumentChunk{
			{Content: "chunk one"},
			{Content: "chunk two"},
		},
	}
	store := NewStore(repo, &fakeEmbedder{}, nil, nil)

	out := store.Retrieve(context.Background(), "alice", "allergies")

	assert.Equal(t, "chunk one\n\n---DOCUMENT---\n\nchunk two", out)
	assert.Equal(t, "alice", repo.searchUserID)
}

func TestRetrieveSentinels(t *testing.T) {
	t.Run("no matches", func(t *testing.T) {
		repo := &fakeChunkRepo{existing: map[string]bool{}}
		store := NewStore(repo, &fakeEmbedder{}, nil, nil)

		out := store.Retrieve(context.Background(), "alice", "allergies")
		assert.Equal(t, "No medical history found for this query.", out)
	})

	t.Run("embedding failure", func(t *testing.T) {
		repo := &fakeChunkRepo{existing: map[string]bool{}}
		store := NewStore(repo, &fakeEmbedder{err: errors.New("quota")}, nil, nil)

		out := store.Retrieve(context.Background(), "alice", "allergies")
		assert.Equal(t, "Failed to retrieve medical record", out)
	})

	t.Run("search failure", func(t *testing.T) {
		repo := &fakeChunkRepo{existing: map[string]bool{}, searchErr: errors.New("db down")}
		store := NewStore(repo, &fakeEmbedder{}, nil, nil)

		out := store.Retrieve(context.Background(), "alice", "allergies")
		assert.Equal(t, "Failed to retrieve medical record", out)
	})
}
