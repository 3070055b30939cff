package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/imdipper19-stack/vidlecta/internal/core/domain"
	"github.com/imdipper19-stack/vidlecta/internal/core/ports"
)

type postgresUserRepository struct {
	db *pgxpool.Pool
}

func NewPostgresUserRepository(db *pgxpool.Pool) ports.UserRepository {
	return &postgresUserRepository{db: db}
}

func (r *postgresUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT id, email, COALESCE(display_name, ''), subscription_tier,
			monthly_minutes_used, monthly_minutes_reset_at, email_notifications, created_at
		FROM users WHERE id = $1`
	user := &domain.User{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Email, &user.Name, &user.SubscriptionTier,
		&user.MonthlyMinutesUsed, &user.MonthlyMinutesResetAt,
		&user.EmailNotifications, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *postgresUserRepository) AddMinutesUsed(ctx context.Context, id string, minutes int) error {
	query := `UPDATE users SET monthly_minutes_used = monthly_minutes_used + $2 WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id, minutes)
	return err
}
