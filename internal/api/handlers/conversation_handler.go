package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/twissamodiofficial/MediQuery-Assist/internal/services"
)

type ConversationHandler struct {
	svc *services.ChatService
}

func NewConversationHandler(svc *services.ChatService) *ConversationHandler {
	return &ConversationHandler{svc: svc}
}

// Get returns the visible transcript of the caller's session.
func (h *ConversationHandler) Get(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}
	sessionID, ok := requireSessionID(c)
	if !ok {
		return
	}

	messages, err := h.svc.Transcript(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"messages":   messages,
	})
}
