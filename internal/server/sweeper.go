package server

import (
	"context"
	"time"

	"github.com/savoria-catering/apiserver/internal/services"
	"github.com/savoria-catering/apiserver/pkg/logger"
)

// sessionSweeper periodically deletes expired session rows. Expired sessions
// are already rejected at lookup time; the sweep keeps the table small.
type sessionSweeper struct {
	auth     *services.AuthService
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
}

func newSessionSweeper(auth *services.AuthService, interval time.Duration) *sessionSweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &sessionSweeper{
		auth:     auth,
		interval: interval,
	}
}

// Start launches the sweep loop in a goroutine.
func (sw *sessionSweeper) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	sw.cancel = cancel
	sw.done = make(chan struct{})

	go func() {
		defer close(sw.done)
		ticker := time.NewTicker(sw.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sw.sweep(ctx)
			}
		}
	}()
}

func (sw *sessionSweeper) sweep(ctx context.Context) {
	removed, err := sw.auth.SweepExpiredSessions(ctx)
	if err != nil {
		logger.Get().Error().Err(err).Msg("session sweep failed")
		return
	}
	if removed > 0 {
		logger.Get().Info().Int64("removed", removed).Msg("expired sessions swept")
	}
}

// Stop cancels the sweep loop and waits for it to exit.
func (sw *sessionSweeper) Stop() {
	if sw.cancel == nil {
		return
	}
	sw.cancel()
	<-sw.done
}
