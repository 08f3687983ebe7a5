package usecase

import (
	"context"
	"fmt"

	"ContentCurator/internal/ports"
)

// ScheduleConfig carries the three per-category cron expressions.
type ScheduleConfig struct {
	PapersCron  string
	BlogsCron   string
	TwitterCron string
}

// Scheduler registers the category pipelines with the cron driver. Each
// category runs on its own timer; a run produces no state shared with the
// next one beyond the ledger.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
}

// NewScheduler returns a helper to start/stop the recurring jobs.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline) *Scheduler {
	return &Scheduler{driver: driver, pipeline: pipeline}
}

// Start registers the three jobs and starts the driver. A malformed cron
// expression is the one setup failure allowed to stop the process.
func (s *Scheduler) Start(ctx context.Context, cfg ScheduleConfig) error {
	if err := s.driver.AddJob(cfg.PapersCron, func() { s.pipeline.RunPapers(ctx) }); err != nil {
		return fmt.Errorf("schedule papers (%q): %w", cfg.PapersCron, err)
	}
	if err := s.driver.AddJob(cfg.BlogsCron, func() { s.pipeline.RunBlogs(ctx) }); err != nil {
		return fmt.Errorf("schedule blogs (%q): %w", cfg.BlogsCron, err)
	}
	if err := s.driver.AddJob(cfg.TwitterCron, func() { s.pipeline.RunTweets(ctx) }); err != nil {
		return fmt.Errorf("schedule twitter (%q): %w", cfg.TwitterCron, err)
	}

	s.driver.Start()
	return nil
}

// Stop waits for any in-flight job to finish and tears the driver down.
func (s *Scheduler) Stop(ctx context.Context) error {
	return s.driver.Stop(ctx)
}
