package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type AuditAction string

const (
	ActionNoteCreated       AuditAction = "note_created"
	ActionNoteUpdated       AuditAction = "note_updated"
	ActionNoteDeleted       AuditAction = "note_deleted"
	ActionNoteArchived      AuditAction = "note_archived"
	ActionNoteRestored      AuditAction = "note_restored"
	ActionAssignmentChanged AuditAction = "assignment_changed"
	ActionStageChanged      AuditAction = "stage_changed"
)

// IsBuiltin reports whether the action is written by the note and stage services.
func (a AuditAction) IsBuiltin() bool {
	switch a {
	case ActionNoteCreated, ActionNoteUpdated, ActionNoteDeleted, ActionNoteArchived,
		ActionNoteRestored, ActionAssignmentChanged, ActionStageChanged:
		return true
	}
	return false
}

// StageChangeReasonStageDeleted marks reassignments done while removing a stage.
const StageChangeReasonStageDeleted = "stage_deleted"

// AuditDetails is the typed payload of an audit entry. The concrete type is
// selected by the entry action.
type AuditDetails interface {
	Action() AuditAction
}

type NoteCreatedDetails struct {
	Title    string       `json:"title"`
	Priority NotePriority `json:"priority"`
	StageId  *uuid.UUID   `json:"stage_id,omitempty"`
}

func (NoteCreatedDetails) Action() AuditAction { return ActionNoteCreated }

type NoteUpdatedDetails struct {
	Title  string   `json:"title"`
	Fields []string `json:"fields"`
}

func (NoteUpdatedDetails) Action() AuditAction { return ActionNoteUpdated }

type NoteDeletedDetails struct {
	Title string `json:"title"`
}

func (NoteDeletedDetails) Action() AuditAction { return ActionNoteDeleted }

type NoteArchivedDetails struct {
	Title string `json:"title"`
}

func (NoteArchivedDetails) Action() AuditAction { return ActionNoteArchived }

type NoteRestoredDetails struct {
	Title string `json:"title"`
}

func (NoteRestoredDetails) Action() AuditAction { return ActionNoteRestored }

type AssignmentChangedDetails struct {
	OldAssigneeId   *uuid.UUID `json:"old_assignee_id,omitempty"`
	NewAssigneeId   *uuid.UUID `json:"new_assignee_id,omitempty"`
	OldAssigneeName string     `json:"old_assignee_name,omitempty"`
	NewAssigneeName string     `json:"new_assignee_name,omitempty"`
}

func (AssignmentChangedDetails) Action() AuditAction { return ActionAssignmentChanged }

type StageChangedDetails struct {
	OldStageId   *uuid.UUID `json:"old_stage_id,omitempty"`
	NewStageId   *uuid.UUID `json:"new_stage_id,omitempty"`
	OldStageName string     `json:"old_stage_name,omitempty"`
	NewStageName string     `json:"new_stage_name,omitempty"`
	Reason       string     `json:"reason,omitempty"`
}

func (StageChangedDetails) Action() AuditAction { return ActionStageChanged }

// CustomDetails covers manually logged actions that have no dedicated variant.
type CustomDetails struct {
	Tag     AuditAction            `json:"action"`
	Message string                 `json:"message,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

func (d CustomDetails) Action() AuditAction { return d.Tag }

type AuditLogEntry struct {
	Id        uuid.UUID
	NoteId    uuid.UUID
	UserId    uuid.UUID
	Action    AuditAction
	OldValue  json.RawMessage
	NewValue  json.RawMessage
	Details   AuditDetails
	IpAddress string
	UserAgent string
	CreatedAt time.Time

	// Filled by the audit service when listing.
	UserName  string
	NoteTitle string
}
