package media

import (
	"context"
	"time"

	"atendezap/internal/repository"
	"atendezap/pkg/logger"
)

// Sweeper marks media messages past the retention window as expired: the
// payload becomes inaccessible while the message record persists.
type Sweeper struct {
	repo      repository.MessageRepository
	retention time.Duration
	interval  time.Duration
	clock     func() time.Time
	log       *logger.Logger
}

func NewSweeper(repo repository.MessageRepository, retentionDays int, log *logger.Logger) *Sweeper {
	if retentionDays <= 0 {
		retentionDays = 7
	}
	return &Sweeper{
		repo:      repo,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		interval:  time.Hour,
		clock:     time.Now,
		log:       log,
	}
}

// Run sweeps on a fixed interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	cutoff := s.clock().Add(-s.retention)
	n, err := s.repo.MarkMediaExpired(ctx, cutoff)
	if err != nil {
		if s.log != nil {
			s.log.Errorf("media sweep: %s", err)
		}
		return
	}
	if n > 0 && s.log != nil {
		s.log.Infof("media sweep: expired %d payloads older than %s", n, cutoff.Format(time.RFC3339))
	}
}
