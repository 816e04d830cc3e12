package implementation

import (
	"context"

	"notetrack-be/internal/entity"
	"notetrack-be/internal/mapper"
	"notetrack-be/internal/model"
	"notetrack-be/internal/repository/contract"
	"notetrack-be/internal/repository/specification"

	"gorm.io/gorm"
)

type AuditLogRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AuditMapper
}

func NewAuditLogRepository(db *gorm.DB) contract.AuditLogRepository {
	return &AuditLogRepositoryImpl{
		db:     db,
		mapper: mapper.NewAuditMapper(),
	}
}

func (r *AuditLogRepositoryImpl) Create(ctx context.Context, entry *entity.AuditLogEntry) error {
	m, err := r.mapper.ToModel(entry)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	entry.Id = m.Id
	entry.CreatedAt = m.CreatedAt
	return nil
}

func (r *AuditLogRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AuditLogEntry, error) {
	var models []*model.NoteAuditLog
	query := specification.ApplyAll(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *AuditLogRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := specification.ApplyAll(r.db.WithContext(ctx).Model(&model.NoteAuditLog{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *AuditLogRepositoryImpl) DeleteAll(ctx context.Context, specs ...specification.Specification) (int64, error) {
	db := r.db.WithContext(ctx)
	if len(specs) == 0 {
		db = db.Session(&gorm.Session{AllowGlobalUpdate: true})
	}
	result := specification.ApplyAll(db, specs...).Delete(&model.NoteAuditLog{})
	return result.RowsAffected, result.Error
}
