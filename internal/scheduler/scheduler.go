package scheduler

import (
	"context"
	"fmt"
	"time"

	"notetrack-be/internal/pkg/logger"
)

const schedulerModule = "Scheduler"

// Job is one step of the daily run. Jobs run in registration order.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// Daily fires every registered job once per day at Hour:Minute (UTC).
type Daily struct {
	Hour   int
	Minute int

	jobs   []Job
	logger logger.ILogger
	now    func() time.Time
	done   chan struct{}
}

func NewDaily(hour, minute int, log logger.ILogger, jobs ...Job) *Daily {
	return &Daily{
		Hour:   hour,
		Minute: minute,
		jobs:   jobs,
		logger: log,
		now:    func() time.Time { return time.Now().UTC() },
		done:   make(chan struct{}),
	}
}

// NextRun returns the first hour:minute strictly after now, in now's location.
func NextRun(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Start launches the loop in a goroutine. It stops when ctx is cancelled.
func (d *Daily) Start(ctx context.Context) {
	go d.loop(ctx)
}

// Done is closed once the loop has exited.
func (d *Daily) Done() <-chan struct{} {
	return d.done
}

func (d *Daily) loop(ctx context.Context) {
	defer close(d.done)

	for {
		now := d.now()
		next := NextRun(now, d.Hour, d.Minute)
		wait := next.Sub(now)

		d.logger.Info(schedulerModule, "Next daily run scheduled", map[string]interface{}{
			"next_run": next,
			"in":       wait.String(),
		})

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			d.logger.Info(schedulerModule, "Scheduler stopped", nil)
			return
		case <-timer.C:
			d.RunOnce(ctx)
		}
	}
}

// RunOnce executes every job. A failing or panicking job does not stop the others.
func (d *Daily) RunOnce(ctx context.Context) {
	for _, job := range d.jobs {
		if ctx.Err() != nil {
			return
		}
		start := time.Now()
		if err := d.runJob(ctx, job); err != nil {
			d.logger.Error(schedulerModule, "Job failed", map[string]interface{}{
				"job":   job.Name,
				"error": err.Error(),
			})
			continue
		}
		d.logger.Info(schedulerModule, "Job finished", map[string]interface{}{
			"job":      job.Name,
			"duration": time.Since(start).String(),
		})
	}
}

func (d *Daily) runJob(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return job.Run(ctx)
}
