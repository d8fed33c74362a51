package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/interlingo/backend/internal/capability"
	"github.com/interlingo/backend/internal/models"
	pgrepo "github.com/interlingo/backend/internal/repositories/postgres"
	"github.com/interlingo/backend/internal/utils"
	"gorm.io/datatypes"
)

type JoinRequest struct {
	RoomCode       string
	DisplayName    string
	SpeaksLanguage string
	HearsLanguage  string

	// CallerID is set for authenticated joins; GuestID is the client's opaque
	// token reused across a browser session so repeat joins map to the same
	// participant row.
	CallerID string
	GuestID  string
}

type JoinResult struct {
	Token           string `json:"token"`
	RoomID          string `json:"roomId"`
	RoomCode        string `json:"roomCode"`
	RoomName        string `json:"roomName"`
	ParticipantID   string `json:"participantId"`
	LiveSessionName string `json:"liveSessionName"`
	Identity        string `json:"identity"`
	IsGuest         bool   `json:"isGuest"`
}

type JoinService interface {
	Join(ctx context.Context, req JoinRequest) (*JoinResult, error)
}

type joinService struct {
	rooms        RoomService
	participants pgrepo.ParticipantRepo
	roomRepo     pgrepo.RoomRepo
	minter       *capability.Minter
	dispatcher   *SessionDispatcher
}

func NewJoinService(rooms RoomService, participants pgrepo.ParticipantRepo, roomRepo pgrepo.RoomRepo, minter *capability.Minter, dispatcher *SessionDispatcher) JoinService {
	return &joinService{
		rooms:        rooms,
		participants: participants,
		roomRepo:     roomRepo,
		minter:       minter,
		dispatcher:   dispatcher,
	}
}

func (s *joinService) Join(ctx context.Context, req JoinRequest) (*JoinResult, error) {
	const op = "JoinService.Join"

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "display name is required", nil)
	}

	supported := SupportedLanguages()
	speaks := strings.ToLower(strings.TrimSpace(req.SpeaksLanguage))
	hears := strings.ToLower(strings.TrimSpace(req.HearsLanguage))
	if !supported[speaks] || !supported[hears] {
		return nil, utils.E(utils.CodeInvalidArgument, op, "unsupported language", nil)
	}

	if s.minter == nil {
		return nil, utils.E(utils.CodeInternal, op, "media credentials are not configured", nil)
	}

	room, err := s.rooms.GetByCode(ctx, req.RoomCode)
	if err != nil {
		return nil, err
	}
	if err := s.rooms.CheckCapacity(ctx, room); err != nil {
		return nil, err
	}

	identity, isGuest := resolveIdentity(req.CallerID, req.GuestID)
	now := time.Now().UTC()

	// upsert by active flag: a re-join refreshes the existing row in place
	p, err := s.participants.GetActive(ctx, room.ID, identity)
	switch {
	case err == nil:
		p.DisplayName = displayName
		p.SpeaksLanguage = speaks
		p.HearsLanguage = hears
		p.JoinedAt = now
		p.Metadata = metadataJSON(capability.Metadata{
			ParticipantID:  p.ID,
			DisplayName:    displayName,
			SpeaksLanguage: speaks,
			HearsLanguage:  hears,
			RoomCode:       room.Code,
		})
		if err := s.participants.Update(ctx, p); err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to update participant", err)
		}
	case errors.Is(err, utils.ErrNotFound):
		p = &models.Participant{
			ID:             uuid.NewString(),
			RoomID:         room.ID,
			Identity:       identity,
			DisplayName:    displayName,
			SpeaksLanguage: speaks,
			HearsLanguage:  hears,
			IsActive:       true,
			JoinedAt:       now,
		}
		p.Metadata = metadataJSON(capability.Metadata{
			ParticipantID:  p.ID,
			DisplayName:    displayName,
			SpeaksLanguage: speaks,
			HearsLanguage:  hears,
			RoomCode:       room.Code,
		})
		if err := s.participants.Insert(ctx, p); err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to create participant", err)
		}
	default:
		return nil, utils.E(utils.CodeInternal, op, "failed to look up participant", err)
	}

	if err := s.roomRepo.TouchLastActive(ctx, room.ID, now); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to touch room", err)
	}
	s.rooms.InvalidateSnapshot(ctx, room.Code)

	// best-effort: dispatch failure never rolls back the join
	if s.dispatcher != nil {
		s.dispatcher.Dispatch(ctx, room.Code, room.MaxParticipants)
	}

	sessionName := SessionName(room.Code)
	token, err := s.minter.Mint(sessionName, identity, capability.Metadata{
		ParticipantID:  p.ID,
		DisplayName:    displayName,
		SpeaksLanguage: speaks,
		HearsLanguage:  hears,
		RoomCode:       room.Code,
	})
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to mint capability token", err)
	}

	return &JoinResult{
		Token:           token,
		RoomID:          room.ID,
		RoomCode:        room.Code,
		RoomName:        room.Name,
		ParticipantID:   p.ID,
		LiveSessionName: sessionName,
		Identity:        identity,
		IsGuest:         isGuest,
	}, nil
}

// metadataJSON stores the same metadata the capability token carries, so the
// media session and the row agree on who the participant is.
func metadataJSON(md capability.Metadata) datatypes.JSON {
	b, err := json.Marshal(md)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}

func resolveIdentity(callerID, guestID string) (identity string, isGuest bool) {
	if callerID != "" {
		return callerID, false
	}
	if guestID == "" {
		guestID = uuid.NewString()
	}
	return models.GuestPrefix + guestID, true
}
