package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	applogger "PulseWatch/pkg/logger"
)

// Scheduler drives the periodic jobs: scan cycles and listing checks.
// Job overlap is the pipeline's concern, so jobs here run unguarded.
type Scheduler struct {
	inner  *gocron.Scheduler
	logger *applogger.Logger
}

// New creates a stopped scheduler; register jobs, then Start.
func New(l *applogger.Logger) *Scheduler {
	return &Scheduler{
		inner:  gocron.NewScheduler(time.UTC),
		logger: l,
	}
}

// AddJob registers a named job at a fixed interval. The first run fires
// immediately, not after one interval.
func (s *Scheduler) AddJob(ctx context.Context, name string, interval time.Duration, fn func(context.Context)) error {
	_, err := s.inner.Every(interval).StartImmediately().Do(func() {
		fn(ctx)
	})
	if err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	s.logger.Info("job scheduled",
		applogger.String("job", name),
		applogger.Duration("interval", interval),
	)
	return nil
}

// Start runs jobs asynchronously.
func (s *Scheduler) Start() {
	s.inner.StartAsync()
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.inner.Stop()
}
