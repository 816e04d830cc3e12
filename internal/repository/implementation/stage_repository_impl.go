package implementation

import (
	"context"
	"errors"

	"notetrack-be/internal/entity"
	"notetrack-be/internal/mapper"
	"notetrack-be/internal/model"
	"notetrack-be/internal/repository/contract"
	"notetrack-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.StageMapper
}

func NewStageRepository(db *gorm.DB) contract.StageRepository {
	return &StageRepositoryImpl{
		db:     db,
		mapper: mapper.NewStageMapper(),
	}
}

func (r *StageRepositoryImpl) Create(ctx context.Context, stage *entity.Stage) error {
	m := r.mapper.ToModel(stage)
	// Select("*") keeps an explicit false/0 from being replaced by column defaults.
	if err := r.db.WithContext(ctx).Select("*").Create(m).Error; err != nil {
		return err
	}
	*stage = *r.mapper.ToEntity(m)
	return nil
}

func (r *StageRepositoryImpl) Update(ctx context.Context, stage *entity.Stage) error {
	m := r.mapper.ToModel(stage)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*stage = *r.mapper.ToEntity(m)
	return nil
}

func (r *StageRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Stage{}).Error
}

func (r *StageRepositoryImpl) ClearDefault(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Model(&model.Stage{}).
		Where("is_default = ?", true).
		Update("is_default", false).Error
}

func (r *StageRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Stage, error) {
	var m model.Stage
	query := specification.ApplyAll(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *StageRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Stage, error) {
	var models []*model.Stage
	query := specification.ApplyAll(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *StageRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := specification.ApplyAll(r.db.WithContext(ctx).Model(&model.Stage{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
