package media

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
)

// Refresher rebuilds the existing-pages cache for the configured databases on
// a fixed interval, so duplicate detection stays warm between submissions.
type Refresher struct {
	scheduler   gocron.Scheduler
	cache       *PageCache
	databaseIDs []string
	interval    time.Duration
	logger      zerolog.Logger
}

// NewRefresher creates a background cache refresher.
func NewRefresher(cache *PageCache, databaseIDs []string, interval time.Duration, logger zerolog.Logger) (*Refresher, error) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Refresher{
		scheduler:   scheduler,
		cache:       cache,
		databaseIDs: databaseIDs,
		interval:    interval,
		logger:      logger.With().Str("component", "refresher").Logger(),
	}, nil
}

// Start schedules the refresh job and begins running it.
func (r *Refresher) Start() error {
	_, err := r.scheduler.NewJob(
		gocron.DurationJob(r.interval),
		gocron.NewTask(r.refreshAll),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule cache refresh: %w", err)
	}

	r.scheduler.Start()
	r.logger.Info().
		Dur("interval", r.interval).
		Int("databases", len(r.databaseIDs)).
		Msg("started pages cache refresher")
	return nil
}

// Stop shuts the scheduler down.
func (r *Refresher) Stop() error {
	return r.scheduler.Shutdown()
}

func (r *Refresher) refreshAll() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	for _, databaseID := range r.databaseIDs {
		if err := r.cache.Refresh(ctx, databaseID); err != nil {
			r.logger.Warn().Err(err).Str("databaseId", databaseID).Msg("Cache refresh failed")
		}
	}
}
