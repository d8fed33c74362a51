package services

import (
	"context"
	"strings"
	"testing"

	"github.com/interlingo/backend/internal/roomcode"
	"github.com/interlingo/backend/internal/utils"
)

func TestCreateRoom_Defaults(t *testing.T) {
	f := newFixture(t)

	room, err := f.rooms.Create(context.Background(), "user-1", "  Standup  ")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if room.Name != "Standup" {
		t.Errorf("name = %q, want trimmed %q", room.Name, "Standup")
	}
	if len(room.Code) != roomcode.Length {
		t.Errorf("code = %q, want %d chars", room.Code, roomcode.Length)
	}
	for _, r := range room.Code {
		if !strings.ContainsRune(roomcode.Alphabet, r) {
			t.Errorf("code %q contains %q outside the alphabet", room.Code, r)
		}
	}
	if !room.IsActive {
		t.Error("new room must be active")
	}
	if room.MaxParticipants != 2 {
		t.Errorf("maxParticipants = %d, want 2", room.MaxParticipants)
	}
}

func TestCreateRoom_Validation(t *testing.T) {
	f := newFixture(t)

	if _, err := f.rooms.Create(context.Background(), "user-1", "   "); !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Errorf("blank name: err = %v, want INVALID_ARGUMENT", err)
	}
	if _, err := f.rooms.Create(context.Background(), "", "Standup"); !utils.IsCode(err, utils.CodeUnauthorized) {
		t.Errorf("no creator: err = %v, want UNAUTHORIZED", err)
	}
}

func TestGetByCode_CaseInsensitive(t *testing.T) {
	f := newFixture(t)

	room, err := f.rooms.Create(context.Background(), "user-1", "Standup")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := f.rooms.GetByCode(context.Background(), strings.ToLower(room.Code))
	if err != nil {
		t.Fatalf("GetByCode lowercase: %v", err)
	}
	if got.ID != room.ID {
		t.Errorf("got room %q, want %q", got.ID, room.ID)
	}
}

func TestGetByCode_NotFoundVsGone(t *testing.T) {
	f := newFixture(t)

	if _, err := f.rooms.GetByCode(context.Background(), "XXXXXX"); !utils.IsCode(err, utils.CodeNotFound) {
		t.Errorf("unknown code: err = %v, want NOT_FOUND", err)
	}

	room, err := f.rooms.Create(context.Background(), "user-1", "Standup")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := f.roomRepo.Deactivate(context.Background(), room.ID); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}

	// an inactive room still identifies a past session: GONE, not NOT_FOUND
	if _, err := f.rooms.GetByCode(context.Background(), room.Code); !utils.IsCode(err, utils.CodeGone) {
		t.Errorf("inactive room: err = %v, want GONE", err)
	}
}

func TestCheckCapacity_SequentialJoins(t *testing.T) {
	f := newFixture(t)

	room, err := f.rooms.Create(context.Background(), "user-1", "Standup")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	f.join(t, room.Code, JoinRequest{CallerID: "user-a"})
	f.join(t, room.Code, JoinRequest{GuestID: "g1"})

	// the N+1th sequential join must be rejected
	_, err = f.joins.Join(context.Background(), JoinRequest{
		RoomCode:       room.Code,
		DisplayName:    "Late",
		SpeaksLanguage: "en",
		HearsLanguage:  "ar",
		GuestID:        "g2",
	})
	if !utils.IsCode(err, utils.CodeConflict) {
		t.Fatalf("third join: err = %v, want CONFLICT", err)
	}

	n, err := f.participants.CountActive(context.Background(), room.ID)
	if err != nil {
		t.Fatalf("CountActive: %v", err)
	}
	if n != 2 {
		t.Fatalf("active participants = %d, want 2", n)
	}
}

func TestListByCreator_Counts(t *testing.T) {
	f := newFixture(t)

	room, err := f.rooms.Create(context.Background(), "user-1", "Standup")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := f.rooms.Create(context.Background(), "user-2", "Other"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	f.join(t, room.Code, JoinRequest{GuestID: "g1"})

	list, err := f.rooms.ListByCreator(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListByCreator: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("rooms = %d, want 1", len(list))
	}
	if list[0].ActiveCount != 1 {
		t.Errorf("activeCount = %d, want 1", list[0].ActiveCount)
	}
}
