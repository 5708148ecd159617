package scheduler

import (
	"log"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the periodic expiry sweep. The job itself is supplied by
// the caller so the scheduler stays ignorant of services.
type Scheduler struct {
	cron *cron.Cron
	job  func()
}

// NewScheduler creates a new scheduler around the sweep job.
func NewScheduler(job func()) *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		job:  job,
	}
}

// Start starts the scheduler with the given cron expression.
func (s *Scheduler) Start(checkInterval string) error {
	_, err := s.cron.AddFunc(checkInterval, func() {
		log.Println("Starting scheduled domain check...")
		s.job()
		log.Println("Scheduled domain check completed")
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Printf("Scheduler started with interval: %s", checkInterval)
	return nil
}

// Restart swaps in a new cron expression, used after a settings save.
func (s *Scheduler) Restart(checkInterval string) error {
	s.cron.Stop()
	s.cron = cron.New()
	return s.Start(checkInterval)
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("Scheduler stopped")
}
