package unitofwork

import "context"

// RepositoryFactory hands out a fresh UnitOfWork per service operation.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}
