package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TranscriptEntry is one translated utterance of a live call. Entries are
// short-lived (TTL index on expires_at) since the transcript only exists to
// back the in-call transcript view.
type TranscriptEntry struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionName string             `bson:"session_name" json:"session_name"`
	MessageID   string             `bson:"message_id" json:"message_id"`

	SpeakerIdentity string `bson:"speaker_identity" json:"speaker_identity"`
	SpeakerName     string `bson:"speaker_name" json:"speaker_name"`

	OriginalText   string `bson:"original_text" json:"original_text"`
	TranslatedText string `bson:"translated_text" json:"translated_text"`
	SourceLang     string `bson:"source_lang" json:"source_lang"`
	TargetLang     string `bson:"target_lang" json:"target_lang"`

	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
}
