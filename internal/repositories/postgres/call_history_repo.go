package postgres

import (
	"context"

	"github.com/interlingo/backend/internal/models"
	"gorm.io/gorm"
)

type CallHistoryRepo interface {
	Insert(ctx context.Context, call *models.CallHistory, users []models.UserCallHistory) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]UserCall, int64, error)
}

// UserCall joins a call summary with the caller's own denormalized row.
type UserCall struct {
	Call models.CallHistory
	Self models.UserCallHistory
}

type callHistoryRepo struct {
	db *gorm.DB
}

func NewCallHistoryRepo(db *gorm.DB) CallHistoryRepo {
	return &callHistoryRepo{db: db}
}

func (r *callHistoryRepo) Insert(ctx context.Context, call *models.CallHistory, users []models.UserCallHistory) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(call).Error; err != nil {
			return err
		}
		if len(users) > 0 {
			if err := tx.Create(&users).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *callHistoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]UserCall, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.UserCallHistory{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var selves []models.UserCallHistory
	err = r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&selves).Error
	if err != nil {
		return nil, 0, err
	}

	out := make([]UserCall, 0, len(selves))
	for _, self := range selves {
		var call models.CallHistory
		if err := r.db.WithContext(ctx).
			Where("id = ?", self.CallHistoryID).
			Take(&call).Error; err != nil {
			return nil, 0, err
		}
		out = append(out, UserCall{Call: call, Self: self})
	}
	return out, total, nil
}
