package handlers

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/interlingo/backend/internal/services"
	"github.com/interlingo/backend/internal/utils"
)

type RoomHandler struct {
	rooms services.RoomService
	joins services.JoinService
}

func NewRoomHandler(rooms services.RoomService, joins services.JoinService) *RoomHandler {
	return &RoomHandler{rooms: rooms, joins: joins}
}

type CreateRoomRequest struct {
	Name string `json:"name" binding:"required"`
}

type CreateRoomResponse struct {
	ID        string `json:"id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	ShareURL  string `json:"shareUrl"`
	CreatedAt string `json:"createdAt"`
}

func (h *RoomHandler) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "RoomHandler.Create", "invalid request body", err))
		return
	}

	room, err := h.rooms.Create(c.Request.Context(), userID, req.Name)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, CreateRoomResponse{
		ID:        room.ID,
		Code:      room.Code,
		Name:      room.Name,
		ShareURL:  shareURL(room.Code),
		CreatedAt: room.CreatedAt.Format(time.RFC3339),
	})
}

func (h *RoomHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	rooms, err := h.rooms.ListByCreator(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

func (h *RoomHandler) Get(c *gin.Context) {
	snap, err := h.rooms.Snapshot(c.Request.Context(), c.Param("code"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

type JoinRoomRequest struct {
	DisplayName    string `json:"displayName" binding:"required"`
	SpeaksLanguage string `json:"speaksLanguage" binding:"required"`
	HearsLanguage  string `json:"hearsLanguage" binding:"required"`
	GuestID        string `json:"guestId"`
}

func (h *RoomHandler) Join(c *gin.Context) {
	var req JoinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "RoomHandler.Join", "invalid request body", err))
		return
	}

	// caller id is present only when the optional auth middleware ran
	callerID := ""
	if v, ok := c.Get("user_id"); ok {
		callerID, _ = v.(string)
	}

	result, err := h.joins.Join(c.Request.Context(), services.JoinRequest{
		RoomCode:       c.Param("code"),
		DisplayName:    req.DisplayName,
		SpeaksLanguage: req.SpeaksLanguage,
		HearsLanguage:  req.HearsLanguage,
		CallerID:       callerID,
		GuestID:        req.GuestID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func shareURL(code string) string {
	base := strings.TrimRight(os.Getenv("APP_BASE_URL"), "/")
	if base == "" {
		base = "https://interlingo.app"
	}
	return base + "/room/" + code
}
