package services

import (
	"context"
	"time"

	"github.com/interlingo/backend/internal/models"
	mongorepo "github.com/interlingo/backend/internal/repositories/mongo"
	"github.com/interlingo/backend/internal/utils"
)

type TranscriptService interface {
	Append(ctx context.Context, e *models.TranscriptEntry) error
	ListBySession(ctx context.Context, sessionName string, limit int64) ([]models.TranscriptEntry, error)
}

type transcriptService struct {
	transcripts mongorepo.TranscriptRepository
	ttl         time.Duration
}

func NewTranscriptService(transcripts mongorepo.TranscriptRepository, ttl time.Duration) TranscriptService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &transcriptService{transcripts: transcripts, ttl: ttl}
}

func (s *transcriptService) Append(ctx context.Context, e *models.TranscriptEntry) error {
	const op = "TranscriptService.Append"

	if e.SessionName == "" || e.MessageID == "" {
		return utils.E(utils.CodeInvalidArgument, op, "session_name and message_id are required", nil)
	}
	now := time.Now().UTC()
	if e.Timestamp.IsZero() {
		e.Timestamp = now
	}
	e.ExpiresAt = now.Add(s.ttl)

	if err := s.transcripts.Insert(ctx, e); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to insert transcript entry", err)
	}
	return nil
}

func (s *transcriptService) ListBySession(ctx context.Context, sessionName string, limit int64) ([]models.TranscriptEntry, error) {
	const op = "TranscriptService.ListBySession"

	if sessionName == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session name is required", nil)
	}
	out, err := s.transcripts.ListBySession(ctx, sessionName, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list transcript", err)
	}
	return out, nil
}
