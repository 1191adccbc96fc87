package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"atendezap/internal/domain/connection"
)

func TestReconnectorRestartsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := NewReconnector(time.Millisecond, nil)

	var runs int32
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.Run(ctx, "test-loop", func(ctx context.Context) error {
			if atomic.AddInt32(&runs, 1) >= 3 {
				cancel()
			}
			return errors.New("dropped")
		})
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("reconnector did not stop after cancel")
	}
	if got := atomic.LoadInt32(&runs); got < 3 {
		t.Fatalf("fn ran %d times, want >= 3", got)
	}
}

func TestReconnectorStopsImmediatelyOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewReconnector(time.Millisecond, nil)
	var runs int32
	r.Run(ctx, "test-loop", func(ctx context.Context) error {
		atomic.AddInt32(&runs, 1)
		return nil
	})

	if runs != 0 {
		t.Fatalf("fn ran %d times on dead context", runs)
	}
}

type fakePoller struct {
	refreshes      int32
	checks         int32
	connectAtCheck int32
}

func (p *fakePoller) RefreshQR(ctx context.Context, sessionName string) (connection.Connection, error) {
	atomic.AddInt32(&p.refreshes, 1)
	return connection.Connection{SessionName: sessionName, QRCode: "qr"}, nil
}

func (p *fakePoller) CheckConnection(ctx context.Context, sessionName string) (bool, error) {
	n := atomic.AddInt32(&p.checks, 1)
	return p.connectAtCheck > 0 && n >= p.connectAtCheck, nil
}

func TestQRWatcherStopsOnceConnected(t *testing.T) {
	poller := &fakePoller{connectAtCheck: 3}
	w := NewQRWatcher(poller, nil)
	w.qrInterval = 50 * time.Millisecond
	w.pollInterval = time.Millisecond

	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Watch(context.Background(), "loja")
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop after connect")
	}
	if got := atomic.LoadInt32(&poller.checks); got < 3 {
		t.Fatalf("checked %d times, want >= 3", got)
	}
}

func TestQRWatcherRefreshesWhilePairing(t *testing.T) {
	poller := &fakePoller{}
	w := NewQRWatcher(poller, nil)
	w.qrInterval = time.Millisecond
	w.pollInterval = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Watch(ctx, "loja")
	}()

	deadline := time.After(2 * time.Second)
	for atomic.LoadInt32(&poller.refreshes) < 2 {
		select {
		case <-deadline:
			t.Fatal("watcher never refreshed the QR")
		case <-time.After(time.Millisecond):
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}
