package services

import (
	"context"
	"strings"
	"testing"

	"github.com/interlingo/backend/internal/models"
	"github.com/interlingo/backend/internal/utils"
)

func TestJoin_Validation(t *testing.T) {
	f := newFixture(t)
	room, _ := f.rooms.Create(context.Background(), "user-1", "Standup")

	cases := []struct {
		name string
		req  JoinRequest
	}{
		{"blank display name", JoinRequest{RoomCode: room.Code, DisplayName: "   ", SpeaksLanguage: "en", HearsLanguage: "ar"}},
		{"unsupported speaks", JoinRequest{RoomCode: room.Code, DisplayName: "A", SpeaksLanguage: "fr", HearsLanguage: "ar"}},
		{"unsupported hears", JoinRequest{RoomCode: room.Code, DisplayName: "A", SpeaksLanguage: "en", HearsLanguage: "xx"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.joins.Join(context.Background(), tc.req); !utils.IsCode(err, utils.CodeInvalidArgument) {
				t.Fatalf("err = %v, want INVALID_ARGUMENT", err)
			}
		})
	}
}

func TestJoin_RoomStateErrors(t *testing.T) {
	f := newFixture(t)

	req := JoinRequest{RoomCode: "XXXXXX", DisplayName: "A", SpeaksLanguage: "en", HearsLanguage: "ar"}
	if _, err := f.joins.Join(context.Background(), req); !utils.IsCode(err, utils.CodeNotFound) {
		t.Fatalf("unknown room: err = %v, want NOT_FOUND", err)
	}

	room, _ := f.rooms.Create(context.Background(), "user-1", "Standup")
	_ = f.roomRepo.Deactivate(context.Background(), room.ID)
	req.RoomCode = room.Code
	if _, err := f.joins.Join(context.Background(), req); !utils.IsCode(err, utils.CodeGone) {
		t.Fatalf("inactive room: err = %v, want GONE", err)
	}
}

func TestJoin_AuthenticatedCaller(t *testing.T) {
	f := newFixture(t)
	room, _ := f.rooms.Create(context.Background(), "user-1", "Standup")

	res := f.join(t, room.Code, JoinRequest{CallerID: "user-a", DisplayName: "Alice"})
	if res.Identity != "user-a" {
		t.Errorf("identity = %q, want user-a", res.Identity)
	}
	if res.IsGuest {
		t.Error("authenticated caller flagged as guest")
	}
	if res.Token == "" {
		t.Error("missing capability token")
	}
	if res.LiveSessionName != SessionPrefix+room.Code {
		t.Errorf("session = %q, want prefix + code", res.LiveSessionName)
	}
	if res.LiveSessionName == room.Code {
		t.Error("live session name must not be the raw room code")
	}
}

func TestJoin_GuestIdentity(t *testing.T) {
	f := newFixture(t)
	room, _ := f.rooms.Create(context.Background(), "user-1", "Standup")

	res := f.join(t, room.Code, JoinRequest{GuestID: "browser-xyz", DisplayName: "Guest"})
	if res.Identity != models.GuestPrefix+"browser-xyz" {
		t.Errorf("identity = %q, want guest_browser-xyz", res.Identity)
	}
	if !res.IsGuest {
		t.Error("guest not flagged")
	}

	// no guest id supplied: one is generated
	res2 := f.join(t, room.Code, JoinRequest{DisplayName: "Anon"})
	if !strings.HasPrefix(res2.Identity, models.GuestPrefix) {
		t.Errorf("identity = %q, want guest_ prefix", res2.Identity)
	}
}

func TestJoin_RejoinUpdatesInPlace(t *testing.T) {
	f := newFixture(t)
	room, _ := f.rooms.Create(context.Background(), "user-1", "Standup")

	first := f.join(t, room.Code, JoinRequest{CallerID: "user-a", DisplayName: "Alice", SpeaksLanguage: "en", HearsLanguage: "ar"})
	second := f.join(t, room.Code, JoinRequest{CallerID: "user-a", DisplayName: "Alicia", SpeaksLanguage: "ar", HearsLanguage: "en"})

	if first.ParticipantID != second.ParticipantID {
		t.Fatalf("re-join created a new participant: %q vs %q", first.ParticipantID, second.ParticipantID)
	}

	var rows []models.Participant
	if err := f.db.Where("room_id = ? AND identity = ? AND is_active = ?", room.ID, "user-a", true).
		Find(&rows).Error; err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("active rows = %d, want exactly 1", len(rows))
	}
	if rows[0].DisplayName != "Alicia" || rows[0].SpeaksLanguage != "ar" || rows[0].HearsLanguage != "en" {
		t.Errorf("row not refreshed: %+v", rows[0])
	}

	// a re-join never consumes a second capacity slot
	n, _ := f.participants.CountActive(context.Background(), room.ID)
	if n != 1 {
		t.Fatalf("active participants = %d, want 1", n)
	}
}

func TestJoin_TouchesRoomLastActive(t *testing.T) {
	f := newFixture(t)
	room, _ := f.rooms.Create(context.Background(), "user-1", "Standup")
	before := room.LastActiveAt

	f.join(t, room.Code, JoinRequest{GuestID: "g1"})

	var got models.Room
	if err := f.db.Where("id = ?", room.ID).Take(&got).Error; err != nil {
		t.Fatalf("query: %v", err)
	}
	if got.LastActiveAt.Before(before) {
		t.Errorf("lastActiveAt not touched: %v < %v", got.LastActiveAt, before)
	}
}

func TestJoin_NoMinterIsConfigError(t *testing.T) {
	f := newFixture(t)
	room, _ := f.rooms.Create(context.Background(), "user-1", "Standup")

	joins := NewJoinService(f.rooms, f.participants, f.roomRepo, nil, nil)
	_, err := joins.Join(context.Background(), JoinRequest{
		RoomCode:       room.Code,
		DisplayName:    "A",
		SpeaksLanguage: "en",
		HearsLanguage:  "ar",
	})
	if !utils.IsCode(err, utils.CodeInternal) {
		t.Fatalf("err = %v, want INTERNAL", err)
	}
}
