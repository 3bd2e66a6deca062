package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/agro-weather/internal/weather"
)

// Refresher is the part of weather.Service the scheduler drives.
type Refresher interface {
	RefreshAll(ctx context.Context, locs []weather.Location, lang string) []string
}

// Scheduler periodically refreshes the forecast of the configured locations,
// which warms the cache and emits rain alerts.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   Refresher
	locations []weather.Location
	interval  time.Duration
	lang      string
	timeout   time.Duration
}

// New creates a new Scheduler.
func New(locations []weather.Location, interval time.Duration, lang string, service Refresher) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &Scheduler{
		scheduler: s,
		service:   service,
		locations: locations,
		interval:  interval,
		lang:      lang,
		timeout:   30 * time.Second,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// The first run happens immediately.
func (s *Scheduler) Start() error {
	if len(s.locations) == 0 {
		log.Println("scheduler: no locations configured; nothing to schedule")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).Do(s.RunOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce refreshes every location once.
func (s *Scheduler) RunOnce() {
	log.Println("scheduler: running forecast refresh job")

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	failed := s.service.RefreshAll(ctx, s.locations, s.lang)
	if len(failed) > 0 {
		log.Printf("scheduler: refresh failed for %d of %d locations: %v", len(failed), len(s.locations), failed)
	}
	log.Println("scheduler: completed forecast refresh job")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
