package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/interlingo/backend/internal/services"
)

type TranscriptHandler struct {
	transcripts services.TranscriptService
}

func NewTranscriptHandler(transcripts services.TranscriptService) *TranscriptHandler {
	return &TranscriptHandler{transcripts: transcripts}
}

func (h *TranscriptHandler) ListBySession(c *gin.Context) {
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "200"), 10, 64)

	entries, err := h.transcripts.ListBySession(c.Request.Context(), c.Param("name"), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
