package media

import (
	"context"
	"testing"
	"time"

	"atendezap/internal/domain/chat"
	apperrors "atendezap/pkg/errors"

	"github.com/google/uuid"
)

type fakeMessageRepo struct {
	messages []chat.Message
	expired  []time.Time
}

func (r *fakeMessageRepo) Create(ctx context.Context, m *chat.Message) error { return nil }

func (r *fakeMessageRepo) GetByID(ctx context.Context, id uuid.UUID) (chat.Message, error) {
	return chat.Message{}, apperrors.ErrNotFound
}

func (r *fakeMessageRepo) ListByTicket(ctx context.Context, ticketID uuid.UUID, sinceSeq int64, limit int) ([]chat.Message, error) {
	return nil, nil
}

func (r *fakeMessageRepo) MarkRead(ctx context.Context, ticketID uuid.UUID, senderType chat.ParticipantType) error {
	return nil
}

func (r *fakeMessageRepo) MarkMediaExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	r.expired = append(r.expired, olderThan)
	var n int64
	for i := range r.messages {
		if r.messages[i].IsMedia() && r.messages[i].CreatedAt.Before(olderThan) {
			n++
		}
	}
	return n, nil
}

func TestSweepUsesRetentionCutoff(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakeMessageRepo{
		messages: []chat.Message{
			{Kind: chat.KindImage, CreatedAt: now.Add(-8 * 24 * time.Hour)},
			{Kind: chat.KindImage, CreatedAt: now.Add(-time.Hour)},
			{Kind: chat.KindText, CreatedAt: now.Add(-30 * 24 * time.Hour)},
		},
	}

	s := NewSweeper(repo, 7, nil)
	s.clock = func() time.Time { return now }

	s.sweep(context.Background())

	if len(repo.expired) != 1 {
		t.Fatalf("sweep called MarkMediaExpired %d times", len(repo.expired))
	}
	want := now.Add(-7 * 24 * time.Hour)
	if !repo.expired[0].Equal(want) {
		t.Fatalf("cutoff = %s, want %s", repo.expired[0], want)
	}
}

func TestNewSweeperDefaultsRetention(t *testing.T) {
	s := NewSweeper(&fakeMessageRepo{}, 0, nil)
	if s.retention != 7*24*time.Hour {
		t.Fatalf("default retention = %s", s.retention)
	}
}
