// Package scheduler runs the periodic blacklist sweep for the postgres
// backend. The redis backend expires keys on its own and does not need it.
package scheduler

import (
	"context"
	"time"

	"gatekeep-backend/internal/repository"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog/log"
)

var scheduler *gocron.Scheduler

// Initialize creates and starts the scheduler with the hourly blacklist
// sweep. Expired entries only need eventual cleanup; the tokens they
// describe already fail verification.
func Initialize(blacklist *repository.BlacklistRepository) {
	scheduler = gocron.NewScheduler(time.Local)

	_, err := scheduler.Every(1).Hour().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		if err := blacklist.DeleteExpired(ctx); err != nil {
			log.Error().Err(err).Msg("Blacklist sweep failed")
		}
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to schedule blacklist sweep")
	}

	scheduler.StartAsync()
}

// Stop gracefully shuts down the scheduler
func Stop() {
	if scheduler != nil {
		scheduler.Stop()
	}
}
