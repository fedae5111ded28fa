package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"InfluencerOps/internal/ports"
)

// CronScheduler runs a job on a cron expression in a fixed timezone.
type CronScheduler struct {
	expr string
	cron *cron.Cron
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler builds a scheduler for the given cron expression,
// evaluated in loc.
func NewCronScheduler(expr string, loc *time.Location) *CronScheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &CronScheduler{
		expr: expr,
		cron: cron.New(cron.WithLocation(loc)),
	}
}

// Start registers the job and launches the cron loop. The job receives the
// scheduled fire time and stops firing once ctx is cancelled.
func (s *CronScheduler) Start(ctx context.Context, job func(time.Time)) error {
	_, err := s.cron.AddFunc(s.expr, func() {
		if ctx.Err() != nil {
			return
		}
		job(time.Now())
	})
	if err != nil {
		return fmt.Errorf("register cron job %q: %w", s.expr, err)
	}

	s.cron.Start()

	go func() {
		<-ctx.Done()
		s.cron.Stop()
	}()

	return nil
}

// Stop halts the cron loop, waiting for running jobs until ctx expires.
func (s *CronScheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("stop scheduler: %w", ctx.Err())
	}
}
