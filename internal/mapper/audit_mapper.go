package mapper

import (
	"encoding/json"
	"fmt"

	"notetrack-be/internal/dto"
	"notetrack-be/internal/entity"
	"notetrack-be/internal/model"

	"gorm.io/datatypes"
)

type AuditMapper struct{}

func NewAuditMapper() *AuditMapper {
	return &AuditMapper{}
}

// EncodeDetails serializes the variant payload; the action column is the discriminator.
func EncodeDetails(details entity.AuditDetails) (datatypes.JSON, error) {
	if details == nil {
		return nil, nil
	}
	raw, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("encode %s details: %w", details.Action(), err)
	}
	return datatypes.JSON(raw), nil
}

// DecodeDetails rebuilds the concrete variant for the given action.
// Unknown actions decode into CustomDetails so nothing stored is lost.
func DecodeDetails(action entity.AuditAction, raw []byte) (entity.AuditDetails, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var (
		details entity.AuditDetails
		err     error
	)
	switch action {
	case entity.ActionNoteCreated:
		var d entity.NoteCreatedDetails
		err = json.Unmarshal(raw, &d)
		details = d
	case entity.ActionNoteUpdated:
		var d entity.NoteUpdatedDetails
		err = json.Unmarshal(raw, &d)
		details = d
	case entity.ActionNoteDeleted:
		var d entity.NoteDeletedDetails
		err = json.Unmarshal(raw, &d)
		details = d
	case entity.ActionNoteArchived:
		var d entity.NoteArchivedDetails
		err = json.Unmarshal(raw, &d)
		details = d
	case entity.ActionNoteRestored:
		var d entity.NoteRestoredDetails
		err = json.Unmarshal(raw, &d)
		details = d
	case entity.ActionAssignmentChanged:
		var d entity.AssignmentChangedDetails
		err = json.Unmarshal(raw, &d)
		details = d
	case entity.ActionStageChanged:
		var d entity.StageChangedDetails
		err = json.Unmarshal(raw, &d)
		details = d
	default:
		var d entity.CustomDetails
		err = json.Unmarshal(raw, &d)
		d.Tag = action
		details = d
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s details: %w", action, err)
	}
	return details, nil
}

func (m *AuditMapper) ToModel(e *entity.AuditLogEntry) (*model.NoteAuditLog, error) {
	if e == nil {
		return nil, nil
	}
	details, err := EncodeDetails(e.Details)
	if err != nil {
		return nil, err
	}
	return &model.NoteAuditLog{
		Id:        e.Id,
		NoteId:    e.NoteId,
		UserId:    e.UserId,
		Action:    string(e.Action),
		OldValue:  nullableJSON(e.OldValue),
		NewValue:  nullableJSON(e.NewValue),
		Details:   details,
		IpAddress: e.IpAddress,
		UserAgent: e.UserAgent,
		CreatedAt: e.CreatedAt,
	}, nil
}

func (m *AuditMapper) ToEntity(l *model.NoteAuditLog) *entity.AuditLogEntry {
	if l == nil {
		return nil
	}
	action := entity.AuditAction(l.Action)
	details, err := DecodeDetails(action, l.Details)
	if err != nil {
		// Keep the entry readable even when an old payload no longer matches its variant.
		details = entity.CustomDetails{Tag: action, Message: string(l.Details)}
	}
	return &entity.AuditLogEntry{
		Id:        l.Id,
		NoteId:    l.NoteId,
		UserId:    l.UserId,
		Action:    action,
		OldValue:  rawOrNil(l.OldValue),
		NewValue:  rawOrNil(l.NewValue),
		Details:   details,
		IpAddress: l.IpAddress,
		UserAgent: l.UserAgent,
		CreatedAt: l.CreatedAt,
	}
}

func nullableJSON(raw json.RawMessage) datatypes.JSON {
	if len(raw) == 0 {
		return nil
	}
	return datatypes.JSON(raw)
}

// NULL columns scan back as the literal "null".
func rawOrNil(j datatypes.JSON) json.RawMessage {
	if len(j) == 0 || string(j) == "null" {
		return nil
	}
	return json.RawMessage(j)
}

func (m *AuditMapper) ToEntities(logs []*model.NoteAuditLog) []*entity.AuditLogEntry {
	entities := make([]*entity.AuditLogEntry, len(logs))
	for i, l := range logs {
		entities[i] = m.ToEntity(l)
	}
	return entities
}

func (m *AuditMapper) ToResponse(e *entity.AuditLogEntry, description string) *dto.AuditLogResponse {
	if e == nil {
		return nil
	}
	return &dto.AuditLogResponse{
		Id:          e.Id,
		NoteId:      e.NoteId,
		NoteTitle:   e.NoteTitle,
		UserId:      e.UserId,
		UserName:    e.UserName,
		Action:      string(e.Action),
		Description: description,
		OldValue:    e.OldValue,
		NewValue:    e.NewValue,
		Details:     e.Details,
		IpAddress:   e.IpAddress,
		UserAgent:   e.UserAgent,
		CreatedAt:   e.CreatedAt,
	}
}
