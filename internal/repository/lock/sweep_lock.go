package lock

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const sweepKeyPrefix = "notetrack:deadline-sweep:"

// SweepLock guards the daily deadline sweep so that only one instance sends reminders.
type SweepLock interface {
	// Acquire returns false when another instance already holds the lock for day.
	Acquire(ctx context.Context, day time.Time) (bool, error)
	// Release frees day's lock so a failed sweep can be retried the same day.
	Release(ctx context.Context, day time.Time) error
}

type redisSweepLock struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisSweepLock keys the lock by UTC date. ttl should stay below a day so a
// crashed run never blocks tomorrow's sweep.
func NewRedisSweepLock(rdb *redis.Client, ttl time.Duration) SweepLock {
	if ttl <= 0 {
		ttl = 23 * time.Hour
	}
	return &redisSweepLock{rdb: rdb, ttl: ttl}
}

func (l *redisSweepLock) Acquire(ctx context.Context, day time.Time) (bool, error) {
	key := SweepKey(day)
	return l.rdb.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), l.ttl).Result()
}

func (l *redisSweepLock) Release(ctx context.Context, day time.Time) error {
	return l.rdb.Del(ctx, SweepKey(day)).Err()
}

func SweepKey(day time.Time) string {
	return sweepKeyPrefix + day.UTC().Format("2006-01-02")
}

type localSweepLock struct{}

// NewLocalSweepLock always grants the lock. Used when Redis is not configured.
func NewLocalSweepLock() SweepLock {
	return localSweepLock{}
}

func (localSweepLock) Acquire(context.Context, time.Time) (bool, error) {
	return true, nil
}

func (localSweepLock) Release(context.Context, time.Time) error {
	return nil
}
