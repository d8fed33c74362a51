package services

import (
	"context"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/interlingo/backend/internal/capability"
	"github.com/interlingo/backend/internal/models"
	pgrepo "github.com/interlingo/backend/internal/repositories/postgres"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(gormsqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Room{},
		&models.Participant{},
		&models.CallHistory{},
		&models.UserCallHistory{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

type fixture struct {
	db           *gorm.DB
	rooms        RoomService
	joins        JoinService
	history      HistoryService
	roomRepo     pgrepo.RoomRepo
	participants pgrepo.ParticipantRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := openTestDB(t)
	roomRepo := pgrepo.NewRoomRepo(db)
	participantRepo := pgrepo.NewParticipantRepo(db)
	callRepo := pgrepo.NewCallHistoryRepo(db)

	rooms := NewRoomService(roomRepo, participantRepo, nil)

	minter, err := capability.NewMinter("test-key", "test-secret", time.Minute)
	if err != nil {
		t.Fatalf("minter: %v", err)
	}
	joins := NewJoinService(rooms, participantRepo, roomRepo, minter, nil)
	history := NewHistoryService(callRepo, participantRepo)

	return &fixture{
		db:           db,
		rooms:        rooms,
		joins:        joins,
		history:      history,
		roomRepo:     roomRepo,
		participants: participantRepo,
	}
}

func (f *fixture) join(t *testing.T, code string, req JoinRequest) *JoinResult {
	t.Helper()
	req.RoomCode = code
	if req.DisplayName == "" {
		req.DisplayName = "Someone"
	}
	if req.SpeaksLanguage == "" {
		req.SpeaksLanguage = "en"
	}
	if req.HearsLanguage == "" {
		req.HearsLanguage = "ar"
	}
	res, err := f.joins.Join(context.Background(), req)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	return res
}
