package config

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureMongoIndexes() error {
	if MongoClient == nil {
		return errors.New("MongoClient is nil; call InitMongo() first")
	}
	db := MongoDatabase()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	transcripts := db.Collection("call_transcripts")
	_, err := transcripts.Indexes().CreateMany(ctx, []mongo.IndexModel{
		// TTL index: documents expire at expires_at (must be a Date)
		{
			Keys: bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().
				SetName("ttl_expires_at").
				SetExpireAfterSeconds(0),
		},
		// one document per translated utterance
		{
			Keys: bson.D{{Key: "session_name", Value: 1}, {Key: "message_id", Value: 1}},
			Options: options.Index().
				SetName("uniq_session_message").
				SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "session_name", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("by_session_ts"),
		},
	})
	return err
}
