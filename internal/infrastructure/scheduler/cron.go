package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"ContentCurator/internal/ports"
)

// CronScheduler runs jobs on standard five-field cron expressions
// (minute/hour/day/month/day-of-week) in the configured timezone.
type CronScheduler struct {
	cron *cron.Cron
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// New builds a scheduler bound to the given location.
func New(loc *time.Location) *CronScheduler {
	return &CronScheduler{cron: cron.New(cron.WithLocation(loc))}
}

// AddJob registers a job; an invalid expression is returned as an error.
func (c *CronScheduler) AddJob(spec string, job func()) error {
	_, err := c.cron.AddFunc(spec, job)
	return err
}

// Start launches the cron loop in its own goroutine.
func (c *CronScheduler) Start() {
	c.cron.Start()
}

// Stop halts scheduling and waits for a running job to complete, or for the
// context to expire, whichever comes first.
func (c *CronScheduler) Stop(ctx context.Context) error {
	done := c.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
