package models

import "time"

type Room struct {
	ID              string    `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Code            string    `gorm:"column:code;type:varchar(6);uniqueIndex" json:"code"`
	Name            string    `gorm:"column:name;type:text" json:"name"`
	CreatorID       string    `gorm:"column:creator_id;type:uuid;index" json:"creator_id"`
	IsActive        bool      `gorm:"column:is_active" json:"is_active"`
	MaxParticipants int       `gorm:"column:max_participants" json:"max_participants"`
	CreatedAt       time.Time `gorm:"column:created_at" json:"created_at"`
	LastActiveAt    time.Time `gorm:"column:last_active_at" json:"last_active_at"`
}

func (Room) TableName() string { return "rooms" }
