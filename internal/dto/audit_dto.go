package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type AuditLogResponse struct {
	Id          uuid.UUID       `json:"id"`
	NoteId      uuid.UUID       `json:"note_id"`
	NoteTitle   string          `json:"note_title,omitempty"`
	UserId      uuid.UUID       `json:"user_id"`
	UserName    string          `json:"user_name,omitempty"`
	Action      string          `json:"action"`
	Description string          `json:"description"`
	OldValue    json.RawMessage `json:"old_value,omitempty"`
	NewValue    json.RawMessage `json:"new_value,omitempty"`
	Details     interface{}     `json:"details,omitempty"`
	IpAddress   string          `json:"ip_address,omitempty"`
	UserAgent   string          `json:"user_agent,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

type ListAuditLogsRequest struct {
	NoteId *uuid.UUID `query:"note_id"`
	Limit  int        `query:"limit" validate:"omitempty,min=1,max=500"`
	Offset int        `query:"offset" validate:"omitempty,min=0"`
}

type AuditLogListResponse struct {
	Items  []*AuditLogResponse `json:"items"`
	Total  int64               `json:"total"`
	Limit  int                 `json:"limit"`
	Offset int                 `json:"offset"`
}

// LogActionRequest records a manual entry, e.g. a comment-style action from an integration.
type LogActionRequest struct {
	NoteId  uuid.UUID              `json:"note_id" validate:"required"`
	Action  string                 `json:"action" validate:"required,max=50"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data"`
}

// ClearAuditLogsRequest deletes everything when OlderThanDays is nil.
type ClearAuditLogsRequest struct {
	OlderThanDays *int `json:"older_than_days" validate:"omitempty,min=1"`
}

type ClearAuditLogsResponse struct {
	Deleted int64 `json:"deleted"`
}
