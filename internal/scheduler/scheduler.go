package scheduler

import (
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-lookup/internal/logger"
)

// Refresher reloads whatever the scheduler keeps fresh.
type Refresher interface {
	Refresh()
}

// Scheduler periodically refreshes the weather shown for the current location.
type Scheduler struct {
	scheduler *gocron.Scheduler
	target    Refresher
	interval  time.Duration
	log       logger.Logger
}

// New creates a new Scheduler. An interval of zero disables it.
func New(target Refresher, interval time.Duration, log logger.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		target:    target,
		interval:  interval,
		log:       log.WithField("component", "scheduler"),
	}
}

// Start schedules the refresh job and starts the underlying scheduler. The
// first run happens one interval from now; views fetch on their own at
// startup.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.log.Info("refresh disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).WaitForSchedule().Do(func() {
		s.log.Debug("refreshing weather")
		s.target.Refresh()
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.log.Infof("refreshing every %s", s.interval)
	return nil
}

// Running reports whether jobs are being scheduled.
func (s *Scheduler) Running() bool {
	return s.scheduler.IsRunning()
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler.IsRunning() {
		s.scheduler.Stop()
	}
}
