package scheduler

import (
	"context"
	"log"
	"time"

	"clipbot/config"
)

// Runner is one pipeline pass. The scheduler does not care what it returns
// beyond the error.
type Runner interface {
	RunOnce(ctx context.Context) error
}

// RunnerFunc adapts a plain function to the Runner interface.
type RunnerFunc func(ctx context.Context) error

func (f RunnerFunc) RunOnce(ctx context.Context) error { return f(ctx) }

// Scheduler triggers pipeline passes on a fixed interval, but only inside
// the configured active-hours window. Pass failures are logged and the loop
// keeps going; only context cancellation stops it.
type Scheduler struct {
	cfg    config.SchedulerConfig
	runner Runner
}

func New(cfg config.SchedulerConfig, runner Runner) *Scheduler {
	return &Scheduler{cfg: cfg, runner: runner}
}

// Loop blocks until ctx is cancelled. The first pass runs immediately when
// inside the active window; later passes follow the ticker.
func (s *Scheduler) Loop(ctx context.Context) {
	log.Printf("[scheduler] Running every %s between %02d:00 and %02d:59 (%s)",
		s.cfg.Interval, s.cfg.StartHour, s.cfg.EndHour, s.cfg.Location())

	s.tick(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[scheduler] Shutting down")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	now := time.Now().In(s.cfg.Location())
	if !s.withinActiveWindow(now) {
		log.Printf("[scheduler] Outside active hours (%02d:%02d), skipping pass", now.Hour(), now.Minute())
		return
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[scheduler] Recovered from panic during pass: %v", r)
		}
	}()

	if err := s.runner.RunOnce(ctx); err != nil {
		log.Printf("[scheduler] Pass failed: %v", err)
	}
}

// withinActiveWindow reports whether the hour falls in the inclusive
// [StartHour, EndHour] range. A window wrapping midnight (start > end)
// covers the hours outside the start-end gap instead.
func (s *Scheduler) withinActiveWindow(now time.Time) bool {
	hour := now.Hour()
	if s.cfg.StartHour <= s.cfg.EndHour {
		return hour >= s.cfg.StartHour && hour <= s.cfg.EndHour
	}
	return hour >= s.cfg.StartHour || hour <= s.cfg.EndHour
}
