package mongo

import (
	"context"
	"time"

	"github.com/interlingo/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type TranscriptRepository interface {
	Insert(ctx context.Context, e *models.TranscriptEntry) error
	ListBySession(ctx context.Context, sessionName string, limit int64) ([]models.TranscriptEntry, error)
}

type transcriptRepo struct {
	col *mongo.Collection
}

func NewTranscriptRepo(db *mongo.Database) TranscriptRepository {
	return &transcriptRepo{col: db.Collection("call_transcripts")}
}

func (r *transcriptRepo) Insert(ctx context.Context, e *models.TranscriptEntry) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, e)
	return err
}

func (r *transcriptRepo) ListBySession(ctx context.Context, sessionName string, limit int64) ([]models.TranscriptEntry, error) {
	if limit <= 0 {
		limit = 200
	}

	cur, err := r.col.Find(ctx,
		bson.M{"session_name": sessionName},
		options.Find().
			SetSort(bson.D{{Key: "timestamp", Value: 1}}).
			SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.TranscriptEntry
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
