package contract

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

// PreferenceRepository is a per-user key/value store with JSON values.
type PreferenceRepository interface {
	// Get returns nil when the user has no value for key.
	Get(ctx context.Context, userId uuid.UUID, key string) (json.RawMessage, error)
	Set(ctx context.Context, userId uuid.UUID, key string, value json.RawMessage) error
	FindByKey(ctx context.Context, key string) (map[uuid.UUID]json.RawMessage, error)
}
