package repository

import (
	"context"
	"errors"

	"atendezap/internal/domain/chat"
	apperrors "atendezap/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresTicketRepository struct {
	db *gorm.DB
}

func NewTicketRepository(db *gorm.DB) TicketRepository {
	return &PostgresTicketRepository{db: db}
}

func (r *PostgresTicketRepository) Create(ctx context.Context, t *chat.Ticket) error {
	res := r.db.WithContext(ctx).Create(t)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return apperrors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresTicketRepository) GetByID(ctx context.Context, id uuid.UUID) (chat.Ticket, error) {
	var t chat.Ticket
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return chat.Ticket{}, apperrors.ErrTicketNotFound
		}
		return chat.Ticket{}, err
	}
	return t, nil
}

// GetByClient returns the client's single ticket. At most one ticket per
// client is assumed; closed tickets are reopened, never replaced.
func (r *PostgresTicketRepository) GetByClient(ctx context.Context, clientID string) (chat.Ticket, error) {
	var t chat.Ticket
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return chat.Ticket{}, apperrors.ErrTicketNotFound
		}
		return chat.Ticket{}, err
	}
	return t, nil
}

func (r *PostgresTicketRepository) Update(ctx context.Context, t chat.Ticket) error {
	res := r.db.WithContext(ctx).Save(&t)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrTicketNotFound
	}
	return nil
}

func (r *PostgresTicketRepository) ListByStatus(ctx context.Context, status chat.TicketStatus, origin chat.OriginChannel, page, limit int) ([]chat.Ticket, int64, error) {
	var tickets []chat.Ticket
	var total int64

	q := r.db.WithContext(ctx).Model(&chat.Ticket{}).Where("status = ?", status)
	if origin != "" {
		q = q.Where("origin = ?", origin)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	if page <= 0 {
		page = 1
	}
	err := q.Order("updated_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&tickets).Error
	if err != nil {
		return nil, 0, err
	}
	return tickets, total, nil
}
