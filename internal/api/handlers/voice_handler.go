package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/twissamodiofficial/MediQuery-Assist/internal/models"
	"github.com/twissamodiofficial/MediQuery-Assist/internal/services"
	"github.com/twissamodiofficial/MediQuery-Assist/internal/utils"
)

type VoiceHandler struct {
	voice *services.VoiceService
	chat  *services.ChatService
}

func NewVoiceHandler(voice *services.VoiceService, chat *services.ChatService) *VoiceHandler {
	return &VoiceHandler{voice: voice, chat: chat}
}

type VoiceChatResponse struct {
	Transcript string               `json:"transcript"`
	Confidence float64              `json:"confidence"`
	Reply      string               `json:"reply"`
	History    []models.ChatMessage `json:"history"`
}

// Chat accepts a multipart "audio" recording plus an optional "language"
// field and runs it as a spoken chat turn.
func (h *VoiceHandler) Chat(c *gin.Context) {
	const op = "VoiceHandler.Chat"

	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	sessionID, ok := requireSessionID(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("audio")
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "missing multipart field 'audio'", err))
		return
	}
	if fh.Size <= 0 || fh.Size > maxUploadBytes {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "audio too large (max 10MB)", nil))
		return
	}

	file, err := fh.Open()
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to open upload", err))
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to read upload", err))
		return
	}

	language := c.PostForm("language")

	history, err := h.chat.Transcript(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return
	}

	res, err := h.voice.Chat(c.Request.Context(), services.ChatInput{
		History:   history,
		UserID:    userID,
		SessionID: sessionID,
	}, audio, language)
	if err != nil {
		writeError(c, err)
		return
	}

	reply := ""
	if n := len(res.Output.History); n > 0 && res.Output.History[n-1].Role == models.RoleAssistant {
		reply = res.Output.History[n-1].Content
	}

	c.JSON(http.StatusOK, VoiceChatResponse{
		Transcript: res.Transcript,
		Confidence: res.Confidence,
		Reply:      reply,
		History:    res.Output.History,
	})
}
