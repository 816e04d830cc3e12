package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Stage struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"type:varchar(100);not null"`
	Description string    `gorm:"type:text"`
	Color       string    `gorm:"type:varchar(7);not null;default:'#6b7280'"`
	SortOrder   int       `gorm:"not null;default:0"`
	IsDefault   bool      `gorm:"not null;default:false;index"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (Stage) TableName() string {
	return "stages"
}

func (s *Stage) BeforeCreate(tx *gorm.DB) error {
	if s.Id == uuid.Nil {
		s.Id = uuid.New()
	}
	return nil
}
