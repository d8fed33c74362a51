package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/interlingo/backend/internal/models"
	pgrepo "github.com/interlingo/backend/internal/repositories/postgres"
	"github.com/interlingo/backend/internal/utils"
)

// MinCallSeconds is the floor below which a call is not worth recording.
const MinCallSeconds = 10

type CallParticipant struct {
	Identity       string `json:"identity"`
	DisplayName    string `json:"displayName"`
	SpeaksLanguage string `json:"speaksLanguage"`
	HearsLanguage  string `json:"hearsLanguage"`
}

type SaveCallRequest struct {
	RoomID       string
	RoomCode     string
	RoomName     string
	StartedAt    time.Time
	EndedAt      time.Time
	Participants []CallParticipant
}

type SaveCallResult struct {
	CallID          string `json:"callId,omitempty"`
	Saved           bool   `json:"saved"`
	DurationSeconds int    `json:"durationSeconds"`
	Message         string `json:"message,omitempty"`
}

type CallSummary struct {
	CallID          string    `json:"callId"`
	RoomCode        string    `json:"roomCode"`
	RoomName        string    `json:"roomName"`
	StartedAt       time.Time `json:"startedAt"`
	EndedAt         time.Time `json:"endedAt"`
	DurationSeconds int       `json:"durationSeconds"`
	Participants    int       `json:"participants"`

	// the caller's own view of that call
	DisplayName    string `json:"displayName"`
	SpeaksLanguage string `json:"speaksLanguage"`
	HearsLanguage  string `json:"hearsLanguage"`
}

type HistoryService interface {
	Save(ctx context.Context, req SaveCallRequest) (*SaveCallResult, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]CallSummary, int64, error)
}

type historyService struct {
	calls        pgrepo.CallHistoryRepo
	participants pgrepo.ParticipantRepo
}

func NewHistoryService(calls pgrepo.CallHistoryRepo, participants pgrepo.ParticipantRepo) HistoryService {
	return &historyService{calls: calls, participants: participants}
}

func (s *historyService) Save(ctx context.Context, req SaveCallRequest) (*SaveCallResult, error) {
	const op = "HistoryService.Save"

	if req.RoomCode == "" || req.StartedAt.IsZero() || req.EndedAt.IsZero() {
		return nil, utils.E(utils.CodeInvalidArgument, op, "room_code, started_at, and ended_at are required", nil)
	}

	duration := int(req.EndedAt.Sub(req.StartedAt).Seconds())
	if duration < 0 {
		duration = 0
	}
	if duration < MinCallSeconds {
		return &SaveCallResult{
			Saved:           false,
			DurationSeconds: duration,
			Message:         "call too short to save",
		}, nil
	}

	now := time.Now().UTC()
	call := &models.CallHistory{
		ID:               uuid.NewString(),
		RoomCode:         strings.ToUpper(req.RoomCode),
		RoomName:         req.RoomName,
		StartedAt:        req.StartedAt.UTC(),
		EndedAt:          req.EndedAt.UTC(),
		DurationSeconds:  duration,
		ParticipantCount: len(req.Participants),
		CreatedAt:        now,
	}
	if req.RoomID != "" {
		roomID := req.RoomID
		call.RoomID = &roomID
	}

	var users []models.UserCallHistory
	for _, p := range req.Participants {
		if strings.HasPrefix(p.Identity, models.GuestPrefix) {
			continue
		}
		users = append(users, models.UserCallHistory{
			ID:             uuid.NewString(),
			CallHistoryID:  call.ID,
			UserID:         p.Identity,
			DisplayName:    p.DisplayName,
			SpeaksLanguage: p.SpeaksLanguage,
			HearsLanguage:  p.HearsLanguage,
			CreatedAt:      now,
		})
	}

	if err := s.calls.Insert(ctx, call, users); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to save call history", err)
	}

	if req.RoomID != "" {
		if err := s.participants.DeactivateAll(ctx, req.RoomID, now); err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to deactivate participants", err)
		}
	}

	return &SaveCallResult{
		CallID:          call.ID,
		Saved:           true,
		DurationSeconds: duration,
	}, nil
}

func (s *historyService) ListByUser(ctx context.Context, userID string, limit, offset int) ([]CallSummary, int64, error) {
	const op = "HistoryService.ListByUser"

	if userID == "" {
		return nil, 0, utils.E(utils.CodeUnauthorized, op, "user is required", nil)
	}
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	rows, total, err := s.calls.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, utils.E(utils.CodeInternal, op, "failed to list call history", err)
	}

	out := make([]CallSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, CallSummary{
			CallID:          row.Call.ID,
			RoomCode:        row.Call.RoomCode,
			RoomName:        row.Call.RoomName,
			StartedAt:       row.Call.StartedAt,
			EndedAt:         row.Call.EndedAt,
			DurationSeconds: row.Call.DurationSeconds,
			Participants:    row.Call.ParticipantCount,
			DisplayName:     row.Self.DisplayName,
			SpeaksLanguage:  row.Self.SpeaksLanguage,
			HearsLanguage:   row.Self.HearsLanguage,
		})
	}
	return out, total, nil
}
