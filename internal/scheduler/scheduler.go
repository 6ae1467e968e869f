package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-lookup/internal/weather"
)

const (
	defaultInterval = 15 * time.Minute
	jobTimeout      = 30 * time.Second
)

// Looker runs one weather lookup.
type Looker interface {
	Lookup(ctx context.Context, q weather.LocationQuery) (weather.WeatherSnapshot, error)
}

// Scheduler periodically looks up the weather for a single location and logs it.
// Nothing is stored between runs.
type Scheduler struct {
	scheduler *gocron.Scheduler
	looker    Looker
	location  weather.LocationQuery
	interval  time.Duration
	logger    *slog.Logger
}

// New creates a new Scheduler.
func New(location weather.LocationQuery, interval time.Duration, looker Looker, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		looker:    looker,
		location:  location,
		interval:  interval,
		logger:    logger.With("component", "scheduler"),
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// It does nothing when the location is incomplete.
func (s *Scheduler) Start() error {
	if s.location.City == "" || s.location.State == "" || s.location.Country == "" {
		s.logger.Info("no watch location configured; nothing to schedule")
		return nil
	}

	interval := s.interval
	if interval <= 0 {
		interval = defaultInterval
	}

	if _, err := s.scheduler.Every(interval).Do(s.run); err != nil {
		return err
	}

	s.logger.Info("watching location", "location", s.location.String(), "interval", interval.String())
	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	snap, err := s.looker.Lookup(ctx, s.location)
	if err != nil {
		s.logger.Warn("scheduled lookup failed",
			"location", s.location.String(),
			"message", err.Error(),
			"reason", weather.Diagnostic(err),
		)
		return
	}
	s.logger.Info("current weather",
		"location", s.location.String(),
		"condition", snap.Condition,
		"description", snap.Description,
		"icon", snap.IconCode,
		"temp_c", snap.Temperature,
	)
}
