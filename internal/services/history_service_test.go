package services

import (
	"context"
	"testing"
	"time"

	"github.com/interlingo/backend/internal/models"
	"github.com/interlingo/backend/internal/utils"
)

func TestSaveCall_TooShort(t *testing.T) {
	f := newFixture(t)

	start := time.Now().Add(-9 * time.Second)
	res, err := f.history.Save(context.Background(), SaveCallRequest{
		RoomCode:  "ABC234",
		StartedAt: start,
		EndedAt:   start.Add(9 * time.Second),
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if res.Saved {
		t.Fatal("sub-floor call must not be saved")
	}
	if res.DurationSeconds != 9 {
		t.Errorf("duration = %d, want 9", res.DurationSeconds)
	}
	if res.Message == "" {
		t.Error("expected a too-short message")
	}

	var n int64
	f.db.Model(&models.CallHistory{}).Count(&n)
	if n != 0 {
		t.Fatalf("call rows = %d, want 0", n)
	}
}

func TestSaveCall_ExactDuration(t *testing.T) {
	f := newFixture(t)

	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(45*time.Second + 900*time.Millisecond)

	res, err := f.history.Save(context.Background(), SaveCallRequest{
		RoomCode:  "abc234",
		RoomName:  "Standup",
		StartedAt: start,
		EndedAt:   end,
		Participants: []CallParticipant{
			{Identity: "user-a", DisplayName: "Alice", SpeaksLanguage: "en", HearsLanguage: "ar"},
			{Identity: "guest_b", DisplayName: "Bilal", SpeaksLanguage: "ar", HearsLanguage: "en"},
		},
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !res.Saved {
		t.Fatal("45s call must be saved")
	}
	// floor, not round: 45.9s -> 45
	if res.DurationSeconds != 45 {
		t.Errorf("duration = %d, want 45", res.DurationSeconds)
	}

	var call models.CallHistory
	if err := f.db.Where("id = ?", res.CallID).Take(&call).Error; err != nil {
		t.Fatalf("query call: %v", err)
	}
	if call.RoomCode != "ABC234" {
		t.Errorf("room code = %q, want normalized ABC234", call.RoomCode)
	}
	if call.ParticipantCount != 2 {
		t.Errorf("participantCount = %d, want 2", call.ParticipantCount)
	}
}

func TestSaveCall_GuestsExcludedFromUserHistory(t *testing.T) {
	f := newFixture(t)

	start := time.Now().Add(-time.Minute)
	res, err := f.history.Save(context.Background(), SaveCallRequest{
		RoomCode:  "ABC234",
		StartedAt: start,
		EndedAt:   start.Add(45 * time.Second),
		Participants: []CallParticipant{
			{Identity: "user-a", DisplayName: "Alice", SpeaksLanguage: "en", HearsLanguage: "ar"},
			{Identity: "guest_one", DisplayName: "G1"},
			{Identity: "guest_two", DisplayName: "G2"},
		},
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	var rows []models.UserCallHistory
	if err := f.db.Where("call_history_id = ?", res.CallID).Find(&rows).Error; err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("user rows = %d, want 1 (guests excluded)", len(rows))
	}
	if rows[0].UserID != "user-a" || rows[0].SpeaksLanguage != "en" || rows[0].HearsLanguage != "ar" {
		t.Errorf("unexpected user row: %+v", rows[0])
	}
}

func TestSaveCall_DeactivatesRoomParticipants(t *testing.T) {
	f := newFixture(t)
	room, _ := f.rooms.Create(context.Background(), "user-1", "Standup")
	f.join(t, room.Code, JoinRequest{CallerID: "user-a"})
	f.join(t, room.Code, JoinRequest{GuestID: "g1"})

	start := time.Now().Add(-time.Minute)
	_, err := f.history.Save(context.Background(), SaveCallRequest{
		RoomID:    room.ID,
		RoomCode:  room.Code,
		RoomName:  room.Name,
		StartedAt: start,
		EndedAt:   start.Add(30 * time.Second),
		Participants: []CallParticipant{
			{Identity: "user-a", DisplayName: "Alice"},
		},
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	n, _ := f.participants.CountActive(context.Background(), room.ID)
	if n != 0 {
		t.Fatalf("active participants = %d, want 0 after call end", n)
	}

	var left []models.Participant
	if err := f.db.Where("room_id = ?", room.ID).Find(&left).Error; err != nil {
		t.Fatalf("query: %v", err)
	}
	for _, p := range left {
		if p.LeftAt == nil {
			t.Errorf("participant %s has no left_at", p.Identity)
		}
	}
}

func TestListByUser_Pagination(t *testing.T) {
	f := newFixture(t)

	start := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		_, err := f.history.Save(context.Background(), SaveCallRequest{
			RoomCode:  "ABC234",
			RoomName:  "Standup",
			StartedAt: start,
			EndedAt:   start.Add(30 * time.Second),
			Participants: []CallParticipant{
				{Identity: "user-a", DisplayName: "Alice", SpeaksLanguage: "en", HearsLanguage: "ar"},
			},
		})
		if err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	calls, total, err := f.history.ListByUser(context.Background(), "user-a", 2, 0)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	if len(calls) != 2 {
		t.Fatalf("page size = %d, want 2", len(calls))
	}
	if calls[0].DisplayName != "Alice" || calls[0].SpeaksLanguage != "en" {
		t.Errorf("caller's own view missing: %+v", calls[0])
	}

	if _, _, err := f.history.ListByUser(context.Background(), "", 10, 0); !utils.IsCode(err, utils.CodeUnauthorized) {
		t.Errorf("no user: err = %v, want UNAUTHORIZED", err)
	}
}

func TestSaveCall_Validation(t *testing.T) {
	f := newFixture(t)
	_, err := f.history.Save(context.Background(), SaveCallRequest{})
	if !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Fatalf("err = %v, want INVALID_ARGUMENT", err)
	}
}
