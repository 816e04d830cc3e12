package mapper

import (
	"notetrack-be/internal/dto"
	"notetrack-be/internal/entity"
	"notetrack-be/internal/model"
)

type NoteMapper struct{}

func NewNoteMapper() *NoteMapper {
	return &NoteMapper{}
}

func (m *NoteMapper) ToEntity(n *model.Note) *entity.Note {
	if n == nil {
		return nil
	}

	return &entity.Note{
		Id:          n.Id,
		ContextType: entity.ContextType(n.ContextType),
		ContextId:   n.ContextId,
		Title:       n.Title,
		Body:        n.Body,
		Priority:    entity.NotePriority(n.Priority),
		AuthorId:    n.AuthorId,
		AssigneeId:  n.AssigneeId,
		StageId:     n.StageId,
		Deadline:    n.Deadline,
		Status:      entity.NoteStatus(n.Status),
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
	}
}

func (m *NoteMapper) ToModel(n *entity.Note) *model.Note {
	if n == nil {
		return nil
	}

	return &model.Note{
		Id:          n.Id,
		ContextType: string(n.ContextType),
		ContextId:   n.ContextId,
		Title:       n.Title,
		Body:        n.Body,
		Priority:    string(n.Priority),
		AuthorId:    n.AuthorId,
		AssigneeId:  n.AssigneeId,
		StageId:     n.StageId,
		Deadline:    n.Deadline,
		Status:      string(n.Status),
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
	}
}

func (m *NoteMapper) ToEntities(notes []*model.Note) []*entity.Note {
	entities := make([]*entity.Note, len(notes))
	for i, n := range notes {
		entities[i] = m.ToEntity(n)
	}
	return entities
}

func (m *NoteMapper) ToResponse(n *entity.Note) *dto.NoteResponse {
	if n == nil {
		return nil
	}

	return &dto.NoteResponse{
		Id:          n.Id,
		ContextType: string(n.ContextType),
		ContextId:   n.ContextId,
		Title:       n.Title,
		Body:        n.Body,
		Priority:    string(n.Priority),
		AuthorId:    n.AuthorId,
		AssigneeId:  n.AssigneeId,
		StageId:     n.StageId,
		Deadline:    n.Deadline,
		Status:      string(n.Status),
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
	}
}

func (m *NoteMapper) ToResponses(notes []*entity.Note) []*dto.NoteResponse {
	responses := make([]*dto.NoteResponse, len(notes))
	for i, n := range notes {
		responses[i] = m.ToResponse(n)
	}
	return responses
}
