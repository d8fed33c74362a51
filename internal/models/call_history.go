package models

import "time"

// CallHistory is the immutable summary of one completed call. The room
// reference is nullable so the row survives room deletion.
type CallHistory struct {
	ID               string    `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	RoomID           *string   `gorm:"column:room_id;type:uuid;index" json:"room_id,omitempty"`
	RoomCode         string    `gorm:"column:room_code;type:varchar(6)" json:"room_code"`
	RoomName         string    `gorm:"column:room_name;type:text" json:"room_name"`
	StartedAt        time.Time `gorm:"column:started_at" json:"started_at"`
	EndedAt          time.Time `gorm:"column:ended_at" json:"ended_at"`
	DurationSeconds  int       `gorm:"column:duration_seconds" json:"duration_seconds"`
	ParticipantCount int       `gorm:"column:participant_count" json:"participant_count"`
	CreatedAt        time.Time `gorm:"column:created_at" json:"created_at"`
}

func (CallHistory) TableName() string { return "call_histories" }

// UserCallHistory denormalizes one non-guest participant's view of a call.
type UserCallHistory struct {
	ID             string    `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	CallHistoryID  string    `gorm:"column:call_history_id;type:uuid;index" json:"call_history_id"`
	UserID         string    `gorm:"column:user_id;type:uuid;index" json:"user_id"`
	DisplayName    string    `gorm:"column:display_name;type:text" json:"display_name"`
	SpeaksLanguage string    `gorm:"column:speaks_language;type:varchar(8)" json:"speaks_language"`
	HearsLanguage  string    `gorm:"column:hears_language;type:varchar(8)" json:"hears_language"`
	CreatedAt      time.Time `gorm:"column:created_at" json:"created_at"`
}

func (UserCallHistory) TableName() string { return "user_call_histories" }
