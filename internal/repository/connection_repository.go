package repository

import (
	"context"
	"errors"

	"atendezap/internal/domain/connection"
	apperrors "atendezap/pkg/errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresConnectionRepository struct {
	db *gorm.DB
}

func NewConnectionRepository(db *gorm.DB) ConnectionRepository {
	return &PostgresConnectionRepository{db: db}
}

func (r *PostgresConnectionRepository) Upsert(ctx context.Context, c *connection.Connection) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_name"}},
			UpdateAll: true,
		}).
		Create(c).Error
}

func (r *PostgresConnectionRepository) GetBySessionName(ctx context.Context, sessionName string) (connection.Connection, error) {
	var c connection.Connection
	err := r.db.WithContext(ctx).Where("session_name = ?", sessionName).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return connection.Connection{}, apperrors.ErrSessionNotFound
		}
		return connection.Connection{}, err
	}
	return c, nil
}

func (r *PostgresConnectionRepository) Delete(ctx context.Context, sessionName string) error {
	// Idempotent: deleting a missing session is not an error.
	return r.db.WithContext(ctx).
		Where("session_name = ?", sessionName).
		Delete(&connection.Connection{}).Error
}

func (r *PostgresConnectionRepository) List(ctx context.Context) ([]connection.Connection, error) {
	var conns []connection.Connection
	err := r.db.WithContext(ctx).Order("session_name ASC").Find(&conns).Error
	if err != nil {
		return nil, err
	}
	return conns, nil
}
