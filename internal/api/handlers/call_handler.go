package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/interlingo/backend/internal/services"
	"github.com/interlingo/backend/internal/utils"
)

type CallHandler struct {
	history services.HistoryService
}

func NewCallHandler(history services.HistoryService) *CallHandler {
	return &CallHandler{history: history}
}

type SaveCallRequest struct {
	RoomID       string                     `json:"roomId"`
	RoomCode     string                     `json:"roomCode" binding:"required"`
	RoomName     string                     `json:"roomName"`
	StartedAt    time.Time                  `json:"startedAt" binding:"required"`
	EndedAt      time.Time                  `json:"endedAt" binding:"required"`
	Participants []services.CallParticipant `json:"participants"`
}

func (h *CallHandler) Save(c *gin.Context) {
	var req SaveCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "CallHandler.Save", "invalid request body", err))
		return
	}

	result, err := h.history.Save(c.Request.Context(), services.SaveCallRequest{
		RoomID:       req.RoomID,
		RoomCode:     req.RoomCode,
		RoomName:     req.RoomName,
		StartedAt:    req.StartedAt,
		EndedAt:      req.EndedAt,
		Participants: req.Participants,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *CallHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	calls, total, err := h.history.ListByUser(c.Request.Context(), userID, limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"calls":  calls,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}
