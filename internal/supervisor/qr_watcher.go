package supervisor

import (
	"context"
	"time"

	"atendezap/internal/domain/connection"
	"atendezap/pkg/logger"
)

// SessionPoller is the slice of the connection registry the watcher needs.
type SessionPoller interface {
	RefreshQR(ctx context.Context, sessionName string) (connection.Connection, error)
	CheckConnection(ctx context.Context, sessionName string) (bool, error)
}

// QRWatcher babysits a session while it is pairing: the QR artifact expires
// at ~60s, so it is refreshed every 40s (strictly less than the expiry, no
// dead-QR window), and the connection is polled every 3s. Both timers stop
// once the session connects or the context is cancelled.
type QRWatcher struct {
	poller       SessionPoller
	qrInterval   time.Duration
	pollInterval time.Duration
	log          *logger.Logger
}

func NewQRWatcher(poller SessionPoller, log *logger.Logger) *QRWatcher {
	return &QRWatcher{
		poller:       poller,
		qrInterval:   40 * time.Second,
		pollInterval: 3 * time.Second,
		log:          log,
	}
}

// Watch blocks until the session connects or ctx is cancelled. State changes
// reach the admin UI through the registry's own event path, not from here.
func (w *QRWatcher) Watch(ctx context.Context, sessionName string) {
	qrTicker := time.NewTicker(w.qrInterval)
	defer qrTicker.Stop()
	pollTicker := time.NewTicker(w.pollInterval)
	defer pollTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-qrTicker.C:
			if _, err := w.poller.RefreshQR(ctx, sessionName); err != nil && w.log != nil {
				w.log.Warnf("qr refresh %s: %s", sessionName, err)
			}
		case <-pollTicker.C:
			connected, err := w.poller.CheckConnection(ctx, sessionName)
			if err != nil {
				continue
			}
			if connected {
				return
			}
		}
	}
}
