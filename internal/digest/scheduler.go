package digest

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// StartScheduler calls run at every activation of sched, evaluated in loc,
// until ctx is cancelled. It returns a channel closed when the loop exits.
func StartScheduler(ctx context.Context, sched cron.Schedule, loc *time.Location, log zerolog.Logger, run func(context.Context) error) <-chan struct{} {
	if loc == nil {
		loc = time.Local
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			now := time.Now().In(loc)
			next := sched.Next(now)
			if next.IsZero() {
				log.Warn().Msg("digest schedule has no future activation; scheduler stopped")
				return
			}
			wait := next.Sub(now)
			log.Info().Time("next", next).Dur("in", wait.Round(time.Second)).Msg("next digest scheduled")

			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}

			if err := run(ctx); err != nil {
				log.Error().Err(err).Msg("digest run failed")
			}
		}
	}()
	return done
}
