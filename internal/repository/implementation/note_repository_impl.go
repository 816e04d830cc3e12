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

type NoteRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.NoteMapper
}

func NewNoteRepository(db *gorm.DB) contract.NoteRepository {
	return &NoteRepositoryImpl{
		db:     db,
		mapper: mapper.NewNoteMapper(),
	}
}

func (r *NoteRepositoryImpl) Create(ctx context.Context, note *entity.Note) error {
	m := r.mapper.ToModel(note)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*note = *r.mapper.ToEntity(m)
	return nil
}

func (r *NoteRepositoryImpl) Update(ctx context.Context, note *entity.Note) error {
	m := r.mapper.ToModel(note)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*note = *r.mapper.ToEntity(m)
	return nil
}

func (r *NoteRepositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.NoteStatus) error {
	return r.db.WithContext(ctx).
		Model(&model.Note{}).
		Where("id = ?", id).
		Update("status", string(status)).Error
}

func (r *NoteRepositoryImpl) ReassignStage(ctx context.Context, from uuid.UUID, to *uuid.UUID) (int64, error) {
	var target interface{}
	if to != nil {
		target = *to
	}
	result := r.db.WithContext(ctx).
		Model(&model.Note{}).
		Where("stage_id = ?", from).
		UpdateColumn("stage_id", target)
	return result.RowsAffected, result.Error
}

func (r *NoteRepositoryImpl) DeleteAll(ctx context.Context, specs ...specification.Specification) (int64, error) {
	if len(specs) == 0 {
		return 0, errors.New("refusing to delete notes without conditions")
	}
	query := specification.ApplyAll(r.db.WithContext(ctx), specs...)
	result := query.Delete(&model.Note{})
	return result.RowsAffected, result.Error
}

func (r *NoteRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Note, error) {
	var m model.Note
	query := specification.ApplyAll(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *NoteRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Note, error) {
	var models []*model.Note
	query := specification.ApplyAll(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *NoteRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := specification.ApplyAll(r.db.WithContext(ctx).Model(&model.Note{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *NoteRepositoryImpl) CountByContextType(ctx context.Context, specs ...specification.Specification) (map[entity.ContextType]int64, error) {
	var rows []struct {
		ContextType string
		Total       int64
	}
	query := specification.ApplyAll(r.db.WithContext(ctx).Model(&model.Note{}), specs...)
	if err := query.Select("context_type, COUNT(*) AS total").Group("context_type").Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[entity.ContextType]int64, len(rows))
	for _, row := range rows {
		counts[entity.ContextType(row.ContextType)] = row.Total
	}
	return counts, nil
}
