package memory

import (
	"time"

	"notetrack-be/internal/entity"

	"github.com/patrickmn/go-cache"
)

const stageListKey = "stages:list"

// StageCache holds the ordered stage list. Writers call Invalidate after every change.
type StageCache struct {
	cache *cache.Cache
}

func NewStageCache(ttl time.Duration) *StageCache {
	return &StageCache{
		cache: cache.New(ttl, 2*ttl),
	}
}

func (c *StageCache) Save(stages []*entity.Stage) {
	c.cache.Set(stageListKey, copyStages(stages), cache.DefaultExpiration)
}

func (c *StageCache) Get() ([]*entity.Stage, bool) {
	if x, found := c.cache.Get(stageListKey); found {
		return copyStages(x.([]*entity.Stage)), true
	}
	return nil, false
}

func (c *StageCache) Invalidate() {
	c.cache.Delete(stageListKey)
}

// Callers may mutate what they get back, so the cache never hands out its own pointers.
func copyStages(stages []*entity.Stage) []*entity.Stage {
	out := make([]*entity.Stage, len(stages))
	for i, s := range stages {
		cp := *s
		out[i] = &cp
	}
	return out
}
