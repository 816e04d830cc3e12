package mapper

import (
	"encoding/json"

	"notetrack-be/internal/entity"
	"notetrack-be/internal/model"
)

type UserMapper struct{}

func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

func (m *UserMapper) ToEntity(u *model.User) *entity.User {
	if u == nil {
		return nil
	}
	return &entity.User{
		Id:       u.Id,
		Email:    u.Email,
		FullName: u.FullName,
		Role:     entity.UserRole(u.Role),
	}
}

func (m *UserMapper) ToEntities(users []*model.User) []*entity.User {
	entities := make([]*entity.User, len(users))
	for i, u := range users {
		entities[i] = m.ToEntity(u)
	}
	return entities
}

// DecodeDeadlinePreference falls back to the default for empty or unreadable values.
func DecodeDeadlinePreference(raw []byte) entity.DeadlinePreference {
	pref := entity.DefaultDeadlinePreference()
	if len(raw) == 0 {
		return pref
	}
	if err := json.Unmarshal(raw, &pref); err != nil {
		return entity.DefaultDeadlinePreference()
	}
	if pref.DaysAhead < entity.MinDeadlineDaysAhead {
		pref.DaysAhead = entity.DefaultDeadlinePreference().DaysAhead
	}
	return pref
}
