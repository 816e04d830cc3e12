package specification

import (
	"time"

	"notetrack-be/internal/entity"
	"notetrack-be/internal/repository/scope"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NoteNotDeleted hides soft-deleted notes. Every regular note read applies it.
type NoteNotDeleted struct{}

func (s NoteNotDeleted) Apply(db *gorm.DB) *gorm.DB {
	return scope.ExcludeDeletedNotes(db)
}

type NoteOnlyDeleted struct{}

func (s NoteOnlyDeleted) Apply(db *gorm.DB) *gorm.DB {
	return scope.OnlyDeletedNotes(db)
}

type ByNoteStatus struct {
	Status entity.NoteStatus
}

func (s ByNoteStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", string(s.Status))
}

type ByContextType struct {
	ContextType entity.ContextType
}

func (s ByContextType) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("context_type = ?", string(s.ContextType))
}

type ByContextID struct {
	ContextID int64
}

func (s ByContextID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("context_id = ?", s.ContextID)
}

type ByAuthorID struct {
	AuthorID uuid.UUID
}

func (s ByAuthorID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("author_id = ?", s.AuthorID)
}

type ByAssigneeID struct {
	AssigneeID uuid.UUID
}

func (s ByAssigneeID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("assignee_id = ?", s.AssigneeID)
}

type ByStageID struct {
	StageID uuid.UUID
}

func (s ByStageID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("stage_id = ?", s.StageID)
}

// AuthorOrAssignee matches notes the user wrote or is responsible for.
type AuthorOrAssignee struct {
	UserID uuid.UUID
}

func (s AuthorOrAssignee) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("(author_id = ? OR assignee_id = ?)", s.UserID, s.UserID)
}

// DeadlineBetween is inclusive on both ends and skips notes without a deadline.
type DeadlineBetween struct {
	From time.Time
	To   time.Time
}

func (s DeadlineBetween) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("deadline IS NOT NULL AND deadline >= ? AND deadline <= ?", s.From, s.To)
}

type DeadlineBefore struct {
	Time time.Time
}

func (s DeadlineBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("deadline IS NOT NULL AND deadline < ?", s.Time)
}
