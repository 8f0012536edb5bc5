package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/twissamodiofficial/MediQuery-Assist/internal/rag"
	"github.com/twissamodiofficial/MediQuery-Assist/internal/utils"
)

type DocumentHandler struct {
	store *rag.Store
}

func NewDocumentHandler(store *rag.Store) *DocumentHandler {
	return &DocumentHandler{store: store}
}

// Upload ingests a medical PDF outside of a chat turn. The response is
// the same ingest result the chat upload path reports.
func (h *DocumentHandler) Upload(c *gin.Context) {
	const op = "DocumentHandler.Upload"

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	upload, err := readPDFUpload(c, "file", op)
	if err != nil {
		writeError(c, err)
		return
	}
	if upload == nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "missing multipart field 'file'", nil))
		return
	}

	result := h.store.Store(c.Request.Context(), upload.Content, upload.FileName, userID)
	c.JSON(http.StatusOK, result)
}
