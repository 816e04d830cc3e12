package contract

import (
	"context"

	"notetrack-be/internal/entity"
	"notetrack-be/internal/repository/specification"
)

// UserRepository reads the host platform's user table.
type UserRepository interface {
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
