package service

import (
	"time"

	"notetrack-be/internal/pkg/apperror"
	"notetrack-be/internal/pkg/logger"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// storageFault logs the raw cause and returns the client-safe error.
func storageFault(log logger.ILogger, module, operation string, err error) error {
	log.Error(module, "Storage failure", map[string]interface{}{
		"operation": operation,
		"error":     err.Error(),
	})
	return apperror.Storage(operation, err)
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func utcNow() time.Time {
	return time.Now().UTC()
}
