package rag

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/twissamodiofficial/MediQuery-Assist/internal/models"
	"github.com/twissamodiofficial/MediQuery-Assist/internal/pdf"
	"github.com/twissamodiofficial/MediQuery-Assist/internal/providers/embedding"
	pgrepo "github.com/twissamodiofficial/MediQuery-Assist/internal/repositories/postgres"
	"github.com/twissamodiofficial/MediQuery-Assist/internal/storage"
)

const (
	StatusSuccess = "success"
	StatusSkipped = "skipped"
	StatusError   = "error"

	chunkSize    = 1000
	chunkOverlap = 200
	retrieveTopK = 5

	documentSeparator = "\n\n---DOCUMENT---\n\n"

	noResultsMessage      = "No medical history found for this query."
	retrieveFailedMessage = "Failed to retrieve medical record"
)

// StoreResult is the structured outcome of one ingestion attempt.
// Ingestion never returns a Go error to callers; failures are folded into
// the result so the orchestrator can relay them conversationally.
type StoreResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Chunks  int    `json:"chunks,omitempty"`
}

// Store persists chunked document embeddings scoped by content hash and
// owning user, and answers similarity queries over them.
type Store struct {
	chunks   pgrepo.DocumentChunkRepository
	embedder embedding.Provider
	archive  storage.Uploader // optional; best-effort copy of the raw PDF
	log      *logrus.Logger

	// extract is swappable so tests can feed plain text instead of PDFs.
	extract func(b []byte) ([]pdf.Page, error)
}

func NewStore(chunks pgrepo.DocumentChunkRepository, embedder embedding.Provider, archive storage.Uploader, log *logrus.Logger) *Store {
	if log == nil {
		log = logrus.New()
	}
	return &Store{
		chunks:   chunks,
		embedder: embedder,
		archive:  archive,
		log:      log,
		extract:  pdf.ExtractPages,
	}
}

// SetExtractor overrides PDF text extraction.
func (s *Store) SetExtractor(fn func(b []byte) ([]pdf.Page, error)) { s.extract = fn }

func fileHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Store ingests one uploaded document for ownerID. Re-ingesting content the
// owner already uploaded is a recognized skipped outcome, not an error.
func (s *Store) Store(ctx context.Context, content []byte, fileName, ownerID string) StoreResult {
	hash := fileHash(content)

	exists, err := s.chunks.ExistsByHashAndOwner(ctx, hash, ownerID)
	if err != nil {
		return StoreResult{Status: StatusError, Message: fmt.Sprintf("Failed to upload file: %v", err)}
	}
	if exists {
		return StoreResult{Status: StatusSkipped, Message: "File already exists in database"}
	}

	pages, err := s.extract(content)
	if err != nil {
		return StoreResult{Status: StatusError, Message: fmt.Sprintf("Failed to upload file: %v", err)}
	}

	var rows []models.DocumentChunk
	var texts []string
	now := time.Now().UTC()
	for _, page := range pages {
		for _, c := range SplitText(page.Text, chunkSize, chunkOverlap) {
			md, _ := json.Marshal(map[string]any{
				"file_name":   fileName,
				"page":        page.Number,
				"start_index": c.StartIndex,
			})
			rows = append(rows, models.DocumentChunk{
				ID:         uuid.NewString(),
				UserID:     ownerID,
				FileHash:   hash,
				FileName:   fileName,
				Content:    c.Text,
				Page:       page.Number,
				StartIndex: c.StartIndex,
				Metadata:   datatypes.JSON(md),
				CreatedAt:  now,
			})
			texts = append(texts, c.Text)
		}
	}
	if len(rows) == 0 {
		return StoreResult{Status: StatusError, Message: "Failed to upload file: no text content"}
	}

	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return StoreResult{Status: StatusError, Message: fmt.Sprintf("Failed to upload file: %v", err)}
	}
	if len(embeddings) != len(rows) {
		return StoreResult{Status: StatusError, Message: "Failed to upload file: embedding count mismatch"}
	}
	for i := range rows {
		rows[i].Embedding = pgvector.NewVector(embeddings[i])
	}

	if err := s.chunks.InsertBatch(ctx, rows); err != nil {
		return StoreResult{Status: StatusError, Message: fmt.Sprintf("Failed to upload file: %v", err)}
	}

	if s.archive != nil {
		objectName := "medical/" + ownerID + "/" + hash + ".pdf"
		if _, err := s.archive.Upload(ctx, objectName, "application/pdf", bytes.NewReader(content)); err != nil {
			s.log.WithError(err).WithField("object", objectName).Warn("pdf archive upload failed")
		}
	}

	return StoreResult{Status: StatusSuccess, Message: "File successfully uploaded", Chunks: len(rows)}
}

// Retrieve runs a top-k similarity search restricted to ownerID's chunks.
// Failures degrade to user-facing strings; nothing propagates.
func (s *Store) Retrieve(ctx context.Context, ownerID, query string) string {
	queryEmbedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		s.log.WithError(err).Warn("query embedding failed")
		return retrieveFailedMessage
	}

	rows, err := s.chunks.SearchNearest(ctx, ownerID, queryEmbedding, retrieveTopK)
	if err != nil {
		s.log.WithError(err).Warn("similarity search failed")
		return retrieveFailedMessage
	}
	if len(rows) == 0 {
		return noResultsMessage
	}

	parts := make([]string, len(rows))
	for i, row := range rows {
		parts[i] = row.Content
	}
	return strings.Join(parts, documentSeparator)
}
