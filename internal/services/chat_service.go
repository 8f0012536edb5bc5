package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/twissamodiofficial/MediQuery-Assist/internal/agent"
	"github.com/twissamodiofficial/MediQuery-Assist/internal/models"
	"github.com/twissamodiofficial/MediQuery-Assist/internal/rag"
	"github.com/twissamodiofficial/MediQuery-Assist/internal/utils"
)

const (
	loginAdvisory = "Please log in and start a session before chatting."

	tooComplexAdvisory = "This query is too complex and exceeded the reasoning limit. " +
		"Please simplify or break it into smaller questions."
)

// Reasoner is the slice of the reasoning loop the orchestrator drives.
type Reasoner interface {
	Run(ctx context.Context, userID, sessionID, query string) (string, error)
}

// DocumentIngester is the slice of the document store chat uses for
// uploads attached to a message.
type DocumentIngester interface {
	Store(ctx context.Context, content []byte, fileName, ownerID string) rag.StoreResult
}

// TranscriptLoader reads back checkpointed history for display.
type TranscriptLoader interface {
	Load(ctx context.Context, sessionID string) ([]models.ChatMessage, error)
}

// Upload is a document attached to a chat turn.
type Upload struct {
	FileName string
	Content  []byte
}

type ChatInput struct {
	Text      string
	Upload    *Upload
	History   []models.ChatMessage
	UserID    string
	SessionID string
}

// ChatOutput mirrors the UI contract: the updated transcript plus the
// cleared input fields.
type ChatOutput struct {
	History []models.ChatMessage
	Text    string
	Upload  *Upload
}

// ChatService validates session state, merges typed text and upload
// results into one query, drives the reasoning loop, and maps the outcome
// back onto the visible transcript. A chat turn never returns an error;
// failures degrade to assistant messages.
type ChatService struct {
	reasoner    Reasoner
	documents   DocumentIngester
	checkpoints TranscriptLoader
	log         *logrus.Logger
}

func NewChatService(reasoner Reasoner, documents DocumentIngester, checkpoints TranscriptLoader, log *logrus.Logger) *ChatService {
	if log == nil {
		log = logrus.New()
	}
	return &ChatService{
		reasoner:    reasoner,
		documents:   documents,
		checkpoints: checkpoints,
		log:         log,
	}
}

func appendAssistant(history []models.ChatMessage, content string) []models.ChatMessage {
	out := make([]models.ChatMessage, 0, len(history)+1)
	out = append(out, history...)
	return append(out, models.ChatMessage{Role: models.RoleAssistant, Content: content})
}

func (s *ChatService) Chat(ctx context.Context, in ChatInput) ChatOutput {
	if in.UserID == "" || in.SessionID == "" {
		// No state is touched; the inputs come back unchanged.
		return ChatOutput{
			History: appendAssistant(in.History, loginAdvisory),
			Text:    in.Text,
			Upload:  in.Upload,
		}
	}

	var queryParts []string
	if t := strings.TrimSpace(in.Text); t != "" {
		queryParts = append(queryParts, in.Text)
	}

	if in.Upload != nil {
		result := s.documents.Store(ctx, in.Upload.Content, in.Upload.FileName, in.UserID)
		resultJSON, _ := json.MarshalIndent(result, "", "  ")
		queryParts = append(queryParts,
			"A medical document was uploaded. Here are the upload details: "+string(resultJSON)+
				" Please inform the user about the upload status in a friendly, professional way.")
	}

	if len(queryParts) == 0 {
		return ChatOutput{History: in.History}
	}

	answer, err := s.reasoner.Run(ctx, in.UserID, in.SessionID, strings.Join(queryParts, " "))
	if err != nil {
		if errors.Is(err, agent.ErrTooComplex) {
			return ChatOutput{History: appendAssistant(in.History, tooComplexAdvisory)}
		}
		s.log.WithError(err).WithField("session_id", in.SessionID).Error("chat turn failed")
		return ChatOutput{History: appendAssistant(in.History, "Error: "+err.Error())}
	}

	updated := make([]models.ChatMessage, 0, len(in.History)+2)
	updated = append(updated, in.History...)
	updated = append(updated,
		models.ChatMessage{Role: models.RoleUser, Content: in.Text},
		models.ChatMessage{Role: models.RoleAssistant, Content: answer},
	)
	return ChatOutput{History: updated}
}

// Transcript returns the session's visible conversation: user and
// assistant turns only, system and tool entries filtered out.
func (s *ChatService) Transcript(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	const op = "ChatService.Transcript"

	if sessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session_id is required", nil)
	}

	messages, err := s.checkpoints.Load(ctx, sessionID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load checkpoint", err)
	}

	visible := make([]models.ChatMessage, 0, len(messages))
	for _, m := range messages {
		if m.Role != models.RoleUser && m.Role != models.RoleAssistant {
			continue
		}
		if m.Role == models.RoleAssistant && m.Content == "" {
			continue
		}
		visible = append(visible, models.ChatMessage{Role: m.Role, Content: m.Content})
	}
	return visible, nil
}
