package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type IsDefaultStage struct{}

func (s IsDefaultStage) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_default = ?", true)
}

type ByNoteID struct {
	NoteID uuid.UUID
}

func (s ByNoteID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("note_id = ?", s.NoteID)
}
