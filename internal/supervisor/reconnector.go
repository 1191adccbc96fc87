package supervisor

import (
	"context"
	"time"

	"atendezap/pkg/logger"
)

// Reconnector keeps a long-lived connection task alive across transport
// drops: fixed delay between attempts, no retry ceiling. Cancellation comes
// only through the context, so a deliberate shutdown (or logout) stops the
// loop instead of leaking it.
type Reconnector struct {
	Delay time.Duration
	log   *logger.Logger
}

func NewReconnector(delay time.Duration, log *logger.Logger) *Reconnector {
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}
	return &Reconnector{Delay: delay, log: log}
}

// Run invokes fn repeatedly until ctx is cancelled. fn returning is treated
// as a dropped connection; each attempt is cheap and spaced out, so the loop
// is idle background work rather than a resource leak.
func (r *Reconnector) Run(ctx context.Context, name string, fn func(ctx context.Context) error) {
	for {
		if ctx.Err() != nil {
			return
		}
		if err := fn(ctx); err != nil && ctx.Err() == nil && r.log != nil {
			r.log.Warnf("%s: connection dropped: %s", name, err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(r.Delay):
		}
	}
}
