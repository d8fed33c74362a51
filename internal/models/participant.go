package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// GuestPrefix marks identities that were not issued by the auth provider.
const GuestPrefix = "guest_"

type Participant struct {
	ID             string         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	RoomID         string         `gorm:"column:room_id;type:uuid;index" json:"room_id"`
	Identity       string         `gorm:"column:identity;type:text;index" json:"identity"`
	DisplayName    string         `gorm:"column:display_name;type:text" json:"display_name"`
	SpeaksLanguage string         `gorm:"column:speaks_language;type:varchar(8)" json:"speaks_language"`
	HearsLanguage  string         `gorm:"column:hears_language;type:varchar(8)" json:"hears_language"`
	IsActive       bool           `gorm:"column:is_active" json:"is_active"`
	JoinedAt       time.Time      `gorm:"column:joined_at" json:"joined_at"`
	LeftAt         *time.Time     `gorm:"column:left_at" json:"left_at,omitempty"`
	Metadata       datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`
}

func (Participant) TableName() string { return "participants" }

func (p *Participant) IsGuest() bool {
	return strings.HasPrefix(p.Identity, GuestPrefix)
}
