package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// UserPreference is a per-user key/value store, e.g. key "deadlines".
type UserPreference struct {
	UserId    uuid.UUID      `gorm:"type:uuid;primaryKey"`
	PrefKey   string         `gorm:"type:varchar(64);primaryKey"`
	Value     datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
}

func (UserPreference) TableName() string {
	return "user_preferences"
}
