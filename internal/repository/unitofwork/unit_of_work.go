package unitofwork

import (
	"context"

	"notetrack-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	NoteRepository() contract.NoteRepository
	StageRepository() contract.StageRepository
	AuditLogRepository() contract.AuditLogRepository
	PreferenceRepository() contract.PreferenceRepository
}
