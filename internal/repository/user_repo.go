package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"domain-bot/internal/domain"
)

// UserRepository define el contrato de persistencia para usuarios.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	GetByID(ctx context.Context, id int64) (domain.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (domain.User, error)
	MarkVerified(ctx context.Context, telegramID int64) error
	UpdateEmail(ctx context.Context, telegramID int64, email string) error
	UpdateNotificationSettings(ctx context.Context, telegramID int64, enabled bool, leadDays int) error
}

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

const userColumns = `id, telegram_id, email, phone_number, is_verified, notifications_enabled, reminder_lead_days, created_at`

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	const query = `
		INSERT INTO users (telegram_id, email, phone_number, is_verified, notifications_enabled, reminder_lead_days, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := r.pool.QueryRow(ctx, query,
		user.TelegramID,
		user.Email,
		user.PhoneNumber,
		user.IsVerified,
		user.NotificationsEnabled,
		user.ReminderLeadDays,
		user.CreatedAt,
	).Scan(&user.ID)
	if err != nil {
		return domain.User{}, mapPgError(err)
	}
	return user, nil
}

func (r *PgUserRepository) GetByID(ctx context.Context, id int64) (domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *PgUserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE telegram_id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, telegramID))
}

func (r *PgUserRepository) MarkVerified(ctx context.Context, telegramID int64) error {
	const query = `UPDATE users SET is_verified = TRUE WHERE telegram_id = $1`
	return r.execOne(ctx, query, telegramID)
}

func (r *PgUserRepository) UpdateEmail(ctx context.Context, telegramID int64, email string) error {
	const query = `UPDATE users SET email = $2 WHERE telegram_id = $1`
	return r.execOne(ctx, query, telegramID, email)
}

func (r *PgUserRepository) UpdateNotificationSettings(ctx context.Context, telegramID int64, enabled bool, leadDays int) error {
	const query = `UPDATE users SET notifications_enabled = $2, reminder_lead_days = $3 WHERE telegram_id = $1`
	return r.execOne(ctx, query, telegramID, enabled, leadDays)
}

func (r *PgUserRepository) execOne(ctx context.Context, query string, args ...any) error {
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.TelegramID,
		&u.Email,
		&u.PhoneNumber,
		&u.IsVerified,
		&u.NotificationsEnabled,
		&u.ReminderLeadDays,
		&u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}
	return u, err
}
