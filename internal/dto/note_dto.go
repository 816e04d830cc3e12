package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateNoteRequest struct {
	Title       string     `json:"title" validate:"required,max=255"`
	Body        string     `json:"body" validate:"required"`
	Priority    string     `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	ContextType string     `json:"context_type" validate:"omitempty,oneof=dashboard post page"`
	ContextId   *int64     `json:"context_id"`
	AssigneeId  *uuid.UUID `json:"assignee_id"`
	StageId     *uuid.UUID `json:"stage_id"`
	Deadline    *time.Time `json:"deadline"`
}

type CreateNoteResponse struct {
	Id uuid.UUID `json:"id"`
}

// UpdateNoteRequest is a partial update: nil fields are kept as they are.
// Nullable fields named in Clear are reset to null.
type UpdateNoteRequest struct {
	Id          uuid.UUID  `json:"-"`
	Title       *string    `json:"title" validate:"omitempty,max=255"`
	Body        *string    `json:"body"`
	Priority    *string    `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	ContextType *string    `json:"context_type" validate:"omitempty,oneof=dashboard post page"`
	ContextId   *int64     `json:"context_id"`
	AssigneeId  *uuid.UUID `json:"assignee_id"`
	StageId     *uuid.UUID `json:"stage_id"`
	Deadline    *time.Time `json:"deadline"`
	Clear       []string   `json:"clear" validate:"omitempty,dive,oneof=assignee_id stage_id deadline"`
}

// UpdateNoteFieldsRequest changes only workflow fields (stage, assignee, priority, deadline).
type UpdateNoteFieldsRequest struct {
	Id         uuid.UUID  `json:"-"`
	StageId    *uuid.UUID `json:"stage_id"`
	AssigneeId *uuid.UUID `json:"assignee_id"`
	Priority   *string    `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Deadline   *time.Time `json:"deadline"`
	Clear      []string   `json:"clear" validate:"omitempty,dive,oneof=assignee_id stage_id deadline"`
}

type UpdateNoteResponse struct {
	Id uuid.UUID `json:"id"`
}

type NoteResponse struct {
	Id          uuid.UUID  `json:"id"`
	ContextType string     `json:"context_type"`
	ContextId   *int64     `json:"context_id"`
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	Priority    string     `json:"priority"`
	AuthorId    uuid.UUID  `json:"author_id"`
	AssigneeId  *uuid.UUID `json:"assignee_id"`
	StageId     *uuid.UUID `json:"stage_id"`
	Deadline    *time.Time `json:"deadline"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type ListNotesRequest struct {
	ContextType string     `query:"context_type" validate:"omitempty,oneof=dashboard post page"`
	ContextId   *int64     `query:"context_id"`
	AuthorId    *uuid.UUID `query:"author_id"`
	AssigneeId  *uuid.UUID `query:"assignee_id"`
	StageId     *uuid.UUID `query:"stage_id"`
	Limit       int        `query:"limit" validate:"omitempty,min=1,max=200"`
	Offset      int        `query:"offset" validate:"omitempty,min=0"`
}

type NoteListResponse struct {
	Items  []*NoteResponse `json:"items"`
	Total  int64           `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

type NoteStatisticsResponse struct {
	Total     int64 `json:"total"`
	Dashboard int64 `json:"dashboard"`
	Post      int64 `json:"post"`
	Page      int64 `json:"page"`
	Archived  int64 `json:"archived"`
	Recent    int64 `json:"recent"`
}
