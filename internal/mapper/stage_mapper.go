package mapper

import (
	"notetrack-be/internal/dto"
	"notetrack-be/internal/entity"
	"notetrack-be/internal/model"
)

type StageMapper struct{}

func NewStageMapper() *StageMapper {
	return &StageMapper{}
}

func (m *StageMapper) ToEntity(s *model.Stage) *entity.Stage {
	if s == nil {
		return nil
	}
	return &entity.Stage{
		Id:          s.Id,
		Name:        s.Name,
		Description: s.Description,
		Color:       s.Color,
		SortOrder:   s.SortOrder,
		IsDefault:   s.IsDefault,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func (m *StageMapper) ToModel(s *entity.Stage) *model.Stage {
	if s == nil {
		return nil
	}
	return &model.Stage{
		Id:          s.Id,
		Name:        s.Name,
		Description: s.Description,
		Color:       s.Color,
		SortOrder:   s.SortOrder,
		IsDefault:   s.IsDefault,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func (m *StageMapper) ToEntities(stages []*model.Stage) []*entity.Stage {
	entities := make([]*entity.Stage, len(stages))
	for i, s := range stages {
		entities[i] = m.ToEntity(s)
	}
	return entities
}

func (m *StageMapper) ToResponse(s *entity.Stage) *dto.StageResponse {
	if s == nil {
		return nil
	}
	return &dto.StageResponse{
		Id:          s.Id,
		Name:        s.Name,
		Description: s.Description,
		Color:       s.Color,
		SortOrder:   s.SortOrder,
		IsDefault:   s.IsDefault,
		CreatedAt:   s.CreatedAt,
	}
}

func (m *StageMapper) ToResponses(stages []*entity.Stage) []*dto.StageResponse {
	responses := make([]*dto.StageResponse, len(stages))
	for i, s := range stages {
		responses[i] = m.ToResponse(s)
	}
	return responses
}
