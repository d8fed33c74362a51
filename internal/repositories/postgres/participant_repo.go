package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/interlingo/backend/internal/models"
	"github.com/interlingo/backend/internal/utils"
	"gorm.io/gorm"
)

type ParticipantRepo interface {
	Insert(ctx context.Context, p *models.Participant) error
	Update(ctx context.Context, p *models.Participant) error
	GetActive(ctx context.Context, roomID, identity string) (*models.Participant, error)
	CountActive(ctx context.Context, roomID string) (int64, error)
	ListActive(ctx context.Context, roomID string) ([]models.Participant, error)
	DeactivateAll(ctx context.Context, roomID string, leftAt time.Time) error
}

type participantRepo struct {
	db *gorm.DB
}

func NewParticipantRepo(db *gorm.DB) ParticipantRepo {
	return &participantRepo{db: db}
}

func (r *participantRepo) Insert(ctx context.Context, p *models.Participant) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *participantRepo) Update(ctx context.Context, p *models.Participant) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *participantRepo) GetActive(ctx context.Context, roomID, identity string) (*models.Participant, error) {
	var p models.Participant
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND identity = ? AND is_active = ?", roomID, identity, true).
		Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &p, err
}

func (r *participantRepo) CountActive(ctx context.Context, roomID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.Participant{}).
		Where("room_id = ? AND is_active = ?", roomID, true).
		Count(&n).Error
	return n, err
}

func (r *participantRepo) ListActive(ctx context.Context, roomID string) ([]models.Participant, error) {
	var rows []models.Participant
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND is_active = ?", roomID, true).
		Order("joined_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *participantRepo) DeactivateAll(ctx context.Context, roomID string, leftAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Participant{}).
		Where("room_id = ? AND is_active = ?", roomID, true).
		Updates(map[string]any{"is_active": false, "left_at": leftAt}).Error
}
