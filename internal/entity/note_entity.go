package entity

import (
	"time"

	"github.com/google/uuid"
)

type NoteStatus string

const (
	NoteStatusActive   NoteStatus = "active"
	NoteStatusArchived NoteStatus = "archived"
	NoteStatusDeleted  NoteStatus = "deleted"
)

type NotePriority string

const (
	NotePriorityLow    NotePriority = "low"
	NotePriorityMedium NotePriority = "medium"
	NotePriorityHigh   NotePriority = "high"
	NotePriorityUrgent NotePriority = "urgent"
)

func (p NotePriority) Valid() bool {
	switch p {
	case NotePriorityLow, NotePriorityMedium, NotePriorityHigh, NotePriorityUrgent:
		return true
	}
	return false
}

type ContextType string

const (
	ContextDashboard ContextType = "dashboard"
	ContextPost      ContextType = "post"
	ContextPage      ContextType = "page"
)

func (c ContextType) Valid() bool {
	switch c {
	case ContextDashboard, ContextPost, ContextPage:
		return true
	}
	return false
}

const MaxNoteTitleLength = 255

type Note struct {
	Id          uuid.UUID
	ContextType ContextType
	ContextId   *int64 // nil for dashboard notes
	Title       string
	Body        string
	Priority    NotePriority
	AuthorId    uuid.UUID
	AssigneeId  *uuid.UUID
	StageId     *uuid.UUID
	Deadline    *time.Time
	Status      NoteStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CanModify reports whether the actor may edit, archive or delete the note.
func (n *Note) CanModify(actor Actor) bool {
	return actor.IsAdmin || n.AuthorId == actor.UserId
}

// CanChangeStage is the relaxed gate for moving a note between stages.
func (n *Note) CanChangeStage(actor Actor) bool {
	if n.CanModify(actor) {
		return true
	}
	return n.AssigneeId == nil || *n.AssigneeId == actor.UserId
}

func (n *Note) IsOverdue(now time.Time) bool {
	return n.Deadline != nil && n.Deadline.Before(now)
}

// Snapshot captures the mutable fields of a note for audit old/new values.
func (n *Note) Snapshot() NoteSnapshot {
	return NoteSnapshot{
		Title:       n.Title,
		Body:        n.Body,
		Priority:    n.Priority,
		ContextType: n.ContextType,
		ContextId:   n.ContextId,
		AssigneeId:  n.AssigneeId,
		StageId:     n.StageId,
		Deadline:    n.Deadline,
		Status:      n.Status,
	}
}

type NoteSnapshot struct {
	Title       string       `json:"title"`
	Body        string       `json:"body"`
	Priority    NotePriority `json:"priority"`
	ContextType ContextType  `json:"context_type"`
	ContextId   *int64       `json:"context_id,omitempty"`
	AssigneeId  *uuid.UUID   `json:"assignee_id,omitempty"`
	StageId     *uuid.UUID   `json:"stage_id,omitempty"`
	Deadline    *time.Time   `json:"deadline,omitempty"`
	Status      NoteStatus   `json:"status"`
}

type NoteStatistics struct {
	Total     int64
	Dashboard int64
	Post      int64
	Page      int64
	Archived  int64
	Recent    int64
}
