package memory

import (
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

const DefaultUserNameCacheSize = 1024

// UserNameCache remembers display names used to enrich audit listings.
type UserNameCache struct {
	names *lru.Cache[uuid.UUID, string]
}

func NewUserNameCache(size int) (*UserNameCache, error) {
	if size <= 0 {
		size = DefaultUserNameCacheSize
	}
	names, err := lru.New[uuid.UUID, string](size)
	if err != nil {
		return nil, err
	}
	return &UserNameCache{names: names}, nil
}

func (c *UserNameCache) Get(userId uuid.UUID) (string, bool) {
	return c.names.Get(userId)
}

func (c *UserNameCache) Add(userId uuid.UUID, name string) {
	c.names.Add(userId, name)
}

func (c *UserNameCache) Len() int {
	return c.names.Len()
}
