package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/interlingo/backend/internal/cache"
	"github.com/interlingo/backend/internal/models"
	pgrepo "github.com/interlingo/backend/internal/repositories/postgres"
	"github.com/interlingo/backend/internal/roomcode"
	"github.com/interlingo/backend/internal/utils"
)

const defaultMaxParticipants = 2

const snapshotTTL = 10 * time.Second

// RoomSnapshot is the public occupancy view of a room.
type RoomSnapshot struct {
	ID              string `json:"id"`
	Code            string `json:"code"`
	Name            string `json:"name"`
	IsActive        bool   `json:"is_active"`
	MaxParticipants int    `json:"max_participants"`
	ActiveCount     int    `json:"active_count"`
}

type RoomService interface {
	Create(ctx context.Context, creatorID, name string) (*models.Room, error)
	GetByCode(ctx context.Context, code string) (*models.Room, error)
	Snapshot(ctx context.Context, code string) (*RoomSnapshot, error)
	CheckCapacity(ctx context.Context, room *models.Room) error
	ListByCreator(ctx context.Context, creatorID string) ([]RoomSnapshot, error)
	InvalidateSnapshot(ctx context.Context, code string)
}

type roomService struct {
	rooms        pgrepo.RoomRepo
	participants pgrepo.ParticipantRepo
	cache        cache.Cache
}

func NewRoomService(rooms pgrepo.RoomRepo, participants pgrepo.ParticipantRepo, c cache.Cache) RoomService {
	return &roomService{rooms: rooms, participants: participants, cache: c}
}

func (s *roomService) Create(ctx context.Context, creatorID, name string) (*models.Room, error) {
	const op = "RoomService.Create"

	name = strings.TrimSpace(name)
	if creatorID == "" {
		return nil, utils.E(utils.CodeUnauthorized, op, "creator is required", nil)
	}
	if name == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "room name is required", nil)
	}

	code, err := roomcode.NewUnique(ctx, s.rooms.CodeExists)
	if err != nil {
		if errors.Is(err, roomcode.ErrExhausted) {
			return nil, utils.E(utils.CodeInternal, op, "could not allocate a room code", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to generate room code", err)
	}

	now := time.Now().UTC()
	room := &models.Room{
		ID:              uuid.NewString(),
		Code:            code,
		Name:            name,
		CreatorID:       creatorID,
		IsActive:        true,
		MaxParticipants: defaultMaxParticipants,
		CreatedAt:       now,
		LastActiveAt:    now,
	}
	if err := s.rooms.Insert(ctx, room); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create room", err)
	}
	return room, nil
}

func (s *roomService) GetByCode(ctx context.Context, code string) (*models.Room, error) {
	const op = "RoomService.GetByCode"

	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "room code is required", nil)
	}

	room, err := s.rooms.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "room not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to look up room", err)
	}
	if !room.IsActive {
		// distinct from not-found: the code still identifies a past session
		return nil, utils.E(utils.CodeGone, op, "room is no longer active", nil)
	}
	return room, nil
}

func (s *roomService) Snapshot(ctx context.Context, code string) (*RoomSnapshot, error) {
	const op = "RoomService.Snapshot"

	code = strings.ToUpper(strings.TrimSpace(code))
	key := "room:snapshot:" + code

	if s.cache != nil {
		var cached RoomSnapshot
		if hit, _ := s.cache.GetJSON(ctx, key, &cached); hit {
			return &cached, nil
		}
	}

	room, err := s.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	n, err := s.participants.CountActive(ctx, room.ID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to count participants", err)
	}

	snap := &RoomSnapshot{
		ID:              room.ID,
		Code:            room.Code,
		Name:            room.Name,
		IsActive:        room.IsActive,
		MaxParticipants: room.MaxParticipants,
		ActiveCount:     int(n),
	}
	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, key, snap, snapshotTTL)
	}
	return snap, nil
}

// CheckCapacity admits while the active count is strictly below the limit.
// The count and the participant insert are separate statements, so two
// racing joins at the boundary can briefly over-admit by one; the media
// room's own participant limit backstops it.
func (s *roomService) CheckCapacity(ctx context.Context, room *models.Room) error {
	const op = "RoomService.CheckCapacity"

	n, err := s.participants.CountActive(ctx, room.ID)
	if err != nil {
		return utils.E(utils.CodeInternal, op, "failed to count participants", err)
	}
	if int(n) >= room.MaxParticipants {
		return utils.E(utils.CodeConflict, op, "room is full", nil)
	}
	return nil
}

func (s *roomService) ListByCreator(ctx context.Context, creatorID string) ([]RoomSnapshot, error) {
	const op = "RoomService.ListByCreator"

	if creatorID == "" {
		return nil, utils.E(utils.CodeUnauthorized, op, "creator is required", nil)
	}
	rooms, err := s.rooms.ListActiveByCreator(ctx, creatorID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list rooms", err)
	}

	out := make([]RoomSnapshot, 0, len(rooms))
	for _, room := range rooms {
		n, err := s.participants.CountActive(ctx, room.ID)
		if err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to count participants", err)
		}
		out = append(out, RoomSnapshot{
			ID:              room.ID,
			Code:            room.Code,
			Name:            room.Name,
			IsActive:        room.IsActive,
			MaxParticipants: room.MaxParticipants,
			ActiveCount:     int(n),
		})
	}
	return out, nil
}

func (s *roomService) InvalidateSnapshot(ctx context.Context, code string) {
	if s.cache != nil {
		_ = s.cache.Del(ctx, "room:snapshot:"+strings.ToUpper(code))
	}
}
