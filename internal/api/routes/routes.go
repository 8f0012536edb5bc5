package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/twissamodiofficial/MediQuery-Assist/internal/api/handlers"
	"github.com/twissamodiofficial/MediQuery-Assist/internal/api/middleware"
)

type Deps struct {
	Auth         *handlers.AuthHandler
	Chat         *handlers.ChatHandler
	Voice        *handlers.VoiceHandler
	Document     *handlers.DocumentHandler
	Conversation *handlers.ConversationHandler
	WS           *handlers.WSHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Health-ish
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	r.POST("/auth/login", d.Auth.Login)

	// Protected routes (JWT)
	auth := r.Group("/")
	auth.Use(middleware.JWTAuth())

	auth.POST("/chat", d.Chat.Chat)
	auth.POST("/chat/voice", d.Voice.Chat)
	auth.POST("/documents", d.Document.Upload)
	auth.GET("/conversation", d.Conversation.Get)

	// WebSocket
	auth.GET("/ws/voice", d.WS.VoiceWS)
}
