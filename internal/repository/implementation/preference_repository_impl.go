package implementation

import (
	"context"
	"encoding/json"
	"errors"

	"notetrack-be/internal/model"
	"notetrack-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PreferenceRepositoryImpl struct {
	db *gorm.DB
}

func NewPreferenceRepository(db *gorm.DB) contract.PreferenceRepository {
	return &PreferenceRepositoryImpl{db: db}
}

func (r *PreferenceRepositoryImpl) Get(ctx context.Context, userId uuid.UUID, key string) (json.RawMessage, error) {
	var m model.UserPreference
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND pref_key = ?", userId, key).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return json.RawMessage(m.Value), nil
}

func (r *PreferenceRepositoryImpl) Set(ctx context.Context, userId uuid.UUID, key string, value json.RawMessage) error {
	m := model.UserPreference{
		UserId:  userId,
		PrefKey: key,
		Value:   datatypes.JSON(value),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "pref_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&m).Error
}

func (r *PreferenceRepositoryImpl) FindByKey(ctx context.Context, key string) (map[uuid.UUID]json.RawMessage, error) {
	var models []model.UserPreference
	if err := r.db.WithContext(ctx).Where("pref_key = ?", key).Find(&models).Error; err != nil {
		return nil, err
	}
	values := make(map[uuid.UUID]json.RawMessage, len(models))
	for _, m := range models {
		values[m.UserId] = json.RawMessage(m.Value)
	}
	return values, nil
}
