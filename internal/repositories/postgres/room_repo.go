package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/interlingo/backend/internal/models"
	"github.com/interlingo/backend/internal/utils"
	"gorm.io/gorm"
)

type RoomRepo interface {
	Insert(ctx context.Context, room *models.Room) error
	GetByCode(ctx context.Context, code string) (*models.Room, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	ListActiveByCreator(ctx context.Context, creatorID string) ([]models.Room, error)
	TouchLastActive(ctx context.Context, roomID string, at time.Time) error
	Deactivate(ctx context.Context, roomID string) error
}

type roomRepo struct {
	db *gorm.DB
}

func NewRoomRepo(db *gorm.DB) RoomRepo {
	return &roomRepo{db: db}
}

func (r *roomRepo) Insert(ctx context.Context, room *models.Room) error {
	return r.db.WithContext(ctx).Create(room).Error
}

func (r *roomRepo) GetByCode(ctx context.Context, code string) (*models.Room, error) {
	var room models.Room
	err := r.db.WithContext(ctx).
		Where("code = ?", strings.ToUpper(code)).
		Take(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &room, err
}

func (r *roomRepo) CodeExists(ctx context.Context, code string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.Room{}).
		Where("code = ?", code).
		Count(&n).Error
	return n > 0, err
}

func (r *roomRepo) ListActiveByCreator(ctx context.Context, creatorID string) ([]models.Room, error) {
	var rows []models.Room
	err := r.db.WithContext(ctx).
		Where("creator_id = ? AND is_active = ?", creatorID, true).
		Order("last_active_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *roomRepo) TouchLastActive(ctx context.Context, roomID string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Room{}).
		Where("id = ?", roomID).
		Update("last_active_at", at).Error
}

func (r *roomRepo) Deactivate(ctx context.Context, roomID string) error {
	return r.db.WithContext(ctx).
		Model(&models.Room{}).
		Where("id = ?", roomID).
		Update("is_active", false).Error
}
