package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"notetrack-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextRun(t *testing.T) {
	at := func(h, m int) time.Time { return time.Date(2026, 3, 10, h, m, 0, 0, time.UTC) }

	cases := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"later today", at(6, 30), at(8, 0)},
		{"exactly at run time", at(8, 0), at(8, 0).AddDate(0, 0, 1)},
		{"already past", at(23, 59), at(8, 0).AddDate(0, 0, 1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NextRun(tc.now, 8, 0))
		})
	}

	endOfMonth := time.Date(2026, 1, 31, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC), NextRun(endOfMonth, 8, 0))
}

func TestDaily_RunOnceIsolatesFailures(t *testing.T) {
	var ran []string
	d := NewDaily(8, 0, logger.NewNopLogger(),
		Job{Name: "boom", Run: func(context.Context) error { ran = append(ran, "boom"); panic("nil map") }},
		Job{Name: "fail", Run: func(context.Context) error { ran = append(ran, "fail"); return errors.New("smtp down") }},
		Job{Name: "ok", Run: func(context.Context) error { ran = append(ran, "ok"); return nil }},
	)

	d.RunOnce(context.Background())
	assert.Equal(t, []string{"boom", "fail", "ok"}, ran)
}

func TestDaily_RunOnceStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	d := NewDaily(8, 0, logger.NewNopLogger(),
		Job{Name: "first", Run: func(context.Context) error { calls++; cancel(); return nil }},
		Job{Name: "second", Run: func(context.Context) error { calls++; return nil }},
	)

	d.RunOnce(ctx)
	assert.Equal(t, 1, calls)
}

func TestDaily_StartStopsOnCancel(t *testing.T) {
	d := NewDaily(8, 0, logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)
	cancel()

	select {
	case <-d.Done():
	case <-time.After(2 * time.Second):
		require.FailNow(t, "scheduler did not stop")
	}
}
