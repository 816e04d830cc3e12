package contract

import (
	"context"

	"notetrack-be/internal/entity"
	"notetrack-be/internal/repository/specification"

	"github.com/google/uuid"
)

type StageRepository interface {
	Create(ctx context.Context, stage *entity.Stage) error
	Update(ctx context.Context, stage *entity.Stage) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ClearDefault unsets is_default on every stage.
	ClearDefault(ctx context.Context) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Stage, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Stage, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
