package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Note struct {
	Id          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ContextType string     `gorm:"type:varchar(20);not null;default:'dashboard';index:idx_notes_context,priority:1"`
	ContextId   *int64     `gorm:"index:idx_notes_context,priority:2"`
	Title       string     `gorm:"type:varchar(255);not null"`
	Body        string     `gorm:"type:text;not null"`
	Priority    string     `gorm:"type:varchar(10);not null;default:'medium'"`
	AuthorId    uuid.UUID  `gorm:"type:uuid;not null;index"`
	AssigneeId  *uuid.UUID `gorm:"type:uuid;index"`
	StageId     *uuid.UUID `gorm:"type:uuid;index"`
	Deadline    *time.Time `gorm:"index"`
	Status      string     `gorm:"type:varchar(10);not null;default:'active';index"`
	CreatedAt   time.Time  `gorm:"autoCreateTime;index"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime"`
}

func (Note) TableName() string {
	return "notes"
}

func (n *Note) BeforeCreate(tx *gorm.DB) error {
	if n.Id == uuid.Nil {
		n.Id = uuid.New()
	}
	return nil
}
