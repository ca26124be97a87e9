package application

import (
	"context"
	"time"

	"github.com/bnema/farmhand/internal/domain"
	"github.com/rs/zerolog"
)

// sleepWithRefresh blocks for d (or until ctx is done) while a background
// loop calls refresh on the token_refresh cadence. The loop is cancelled and
// joined before sleepWithRefresh returns, so no refresh runs past the sleep.
func sleepWithRefresh(ctx context.Context, d time.Duration, delays *DelayPolicy, refresh func(context.Context) error, logger zerolog.Logger) error {
	refreshCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		refreshLoop(refreshCtx, delays, refresh, logger)
	}()

	err := sleepContext(ctx, d)
	cancel()
	<-done

	return err
}

func refreshLoop(ctx context.Context, delays *DelayPolicy, refresh func(context.Context) error, logger zerolog.Logger) {
	for {
		if err := delays.Wait(ctx, domain.DelayTokenRefresh); err != nil {
			return
		}
		if err := refresh(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn().Err(err).Msg("background token refresh failed")
			continue
		}
		logger.Debug().Msg("background token refreshed")
	}
}
