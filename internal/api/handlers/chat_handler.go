package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/twissamodiofficial/MediQuery-Assist/internal/models"
	"github.com/twissamodiofficial/MediQuery-Assist/internal/services"
	"github.com/twissamodiofficial/MediQuery-Assist/internal/utils"
)

const maxUploadBytes = 10 << 20

type ChatHandler struct {
	svc *services.ChatService
}

func NewChatHandler(svc *services.ChatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

type ChatResponse struct {
	Reply   string               `json:"reply"`
	History []models.ChatMessage `json:"history"`
}

// readPDFUpload validates and buffers a multipart PDF. Returns nil when
// the field is absent.
func readPDFUpload(c *gin.Context, field, op string) (*services.Upload, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, multipart.ErrMessageTooLarge) {
		return nil, utils.E(utils.CodeInvalidArgument, op, "file too large (max 10MB)", err)
	}
	if err != nil {
		// absent field: the turn simply has no upload
		return nil, nil
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if ext != ".pdf" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "only .pdf is allowed", nil)
	}
	if fh.Size <= 0 || fh.Size > maxUploadBytes {
		return nil, utils.E(utils.CodeInvalidArgument, op, "file too large (max 10MB)", nil)
	}

	file, err := fh.Open()
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to open upload", err)
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to read upload", err)
	}
	if len(content) > maxUploadBytes {
		return nil, utils.E(utils.CodeInvalidArgument, op, "file too large (max 10MB)", nil)
	}

	// sniff content type (first 512 bytes)
	head := content
	if len(head) > 512 {
		head = head[:512]
	}
	if http.DetectContentType(head) != "application/pdf" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "invalid content type (must be pdf)", nil)
	}

	return &services.Upload{FileName: fh.Filename, Content: content}, nil
}

// Chat handles one conversational turn: optional "message" text plus an
// optional "file" PDF in the same multipart form.
func (h *ChatHandler) Chat(c *gin.Context) {
	const op = "ChatHandler.Chat"

	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	sessionID, ok := requireSessionID(c)
	if !ok {
		return
	}

	message := c.PostForm("message")

	upload, err := readPDFUpload(c, "file", op)
	if err != nil {
		writeError(c, err)
		return
	}

	history, err := h.svc.Transcript(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return
	}

	out := h.svc.Chat(c.Request.Context(), services.ChatInput{
		Text:      message,
		Upload:    upload,
		History:   history,
		UserID:    userID,
		SessionID: sessionID,
	})

	reply := ""
	if n := len(out.History); n > 0 && out.History[n-1].Role == models.RoleAssistant {
		reply = out.History[n-1].Content
	}

	c.JSON(http.StatusOK, ChatResponse{
		Reply:   reply,
		History: out.History,
	})
}
