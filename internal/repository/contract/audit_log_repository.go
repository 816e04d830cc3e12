package contract

import (
	"context"

	"notetrack-be/internal/entity"
	"notetrack-be/internal/repository/specification"
)

// AuditLogRepository is append-only: entries are never updated, only pruned.
type AuditLogRepository interface {
	Create(ctx context.Context, entry *entity.AuditLogEntry) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AuditLogEntry, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// DeleteAll removes matching entries; with no specs it empties the log.
	DeleteAll(ctx context.Context, specs ...specification.Specification) (int64, error)
}
