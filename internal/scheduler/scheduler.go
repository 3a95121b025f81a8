package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/pk-weather-dashboard/internal/weather"
)

// Refresher runs one roster refresh.
type Refresher interface {
	RefreshRoster(ctx context.Context) (weather.Batch, error)
}

// Scheduler periodically refreshes the roster batch.
type Scheduler struct {
	scheduler *gocron.Scheduler
	refresher Refresher
	interval  time.Duration
}

// New creates a new Scheduler.
func New(interval time.Duration, refresher Refresher) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		refresher: refresher,
		interval:  interval,
	}
}

// Start schedules the periodic job and starts the underlying scheduler. The
// first run happens immediately.
func (s *Scheduler) Start() error {
	interval := s.interval
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	_, err := s.scheduler.Every(interval).Do(s.run)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) run() {
	log.Println("scheduler: running roster refresh job")

	// Per-location fetches are bounded by the HTTP client timeout.
	batch, err := s.refresher.RefreshRoster(context.Background())
	if err != nil {
		log.Printf("scheduler: roster refresh failed: %v", err)
		return
	}
	log.Printf("scheduler: completed roster refresh batch=%s locations=%d failed=%d",
		batch.ID, len(batch.Results), batch.FailedCount())
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
