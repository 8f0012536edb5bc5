package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/twissamodiofficial/MediQuery-Assist/internal/services"
	"github.com/twissamodiofficial/MediQuery-Assist/internal/utils"
)

type AuthHandler struct {
	svc services.AuthService
}

func NewAuthHandler(svc services.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type LoginRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Name   string `json:"name"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "AuthHandler.Login", "invalid request body", err))
		return
	}

	res, err := h.svc.Login(c.Request.Context(), req.UserID, req.Name)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}
