package repository

import (
	"context"
	"errors"
	"time"

	"atendezap/internal/domain/chat"
	apperrors "atendezap/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &PostgresMessageRepository{db: db}
}

func (r *PostgresMessageRepository) Create(ctx context.Context, m *chat.Message) error {
	res := r.db.WithContext(ctx).Create(m)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return apperrors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresMessageRepository) GetByID(ctx context.Context, id uuid.UUID) (chat.Message, error) {
	var m chat.Message
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return chat.Message{}, apperrors.ErrNotFound
		}
		return chat.Message{}, err
	}
	return m, nil
}

func (r *PostgresMessageRepository) ListByTicket(ctx context.Context, ticketID uuid.UUID, sinceSeq int64, limit int) ([]chat.Message, error) {
	var messages []chat.Message
	q := r.db.WithContext(ctx).Where("ticket_id = ?", ticketID)

	if sinceSeq > 0 {
		q = q.Where("seq > ?", sinceSeq)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	err := q.Order("created_at ASC, seq ASC").Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *PostgresMessageRepository) MarkRead(ctx context.Context, ticketID uuid.UUID, senderType chat.ParticipantType) error {
	return r.db.WithContext(ctx).
		Model(&chat.Message{}).
		Where("ticket_id = ? AND from_type = ? AND is_read = false", ticketID, senderType).
		Update("is_read", true).Error
}

func (r *PostgresMessageRepository) MarkMediaExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&chat.Message{}).
		Where("kind IN ? AND media_expired = false AND created_at < ?",
			[]chat.MessageKind{chat.KindImage, chat.KindVideo, chat.KindAudio}, olderThan).
		Update("media_expired", true)
	return res.RowsAffected, res.Error
}
