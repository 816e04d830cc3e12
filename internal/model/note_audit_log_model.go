package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NoteAuditLog is append-only. NoteId and UserId are plain references without FK constraints.
type NoteAuditLog struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	NoteId    uuid.UUID      `gorm:"type:uuid;not null;index"`
	UserId    uuid.UUID      `gorm:"type:uuid;not null;index"`
	Action    string         `gorm:"type:varchar(50);not null;index"`
	OldValue  datatypes.JSON `json:"old_value,omitempty"`
	NewValue  datatypes.JSON `json:"new_value,omitempty"`
	Details   datatypes.JSON `json:"details,omitempty"`
	IpAddress string         `gorm:"type:varchar(45)"`
	UserAgent string         `gorm:"type:text"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index"`
}

func (NoteAuditLog) TableName() string {
	return "note_audit_logs"
}

func (l *NoteAuditLog) BeforeCreate(tx *gorm.DB) error {
	if l.Id == uuid.Nil {
		l.Id = uuid.New()
	}
	return nil
}
