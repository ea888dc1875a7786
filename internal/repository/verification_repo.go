package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"domain-bot/internal/domain"
)

// VerificationCodeRepository guarda los codigos de verificacion emitidos.
type VerificationCodeRepository interface {
	Create(ctx context.Context, code domain.VerificationCode) error
	ListUsable(ctx context.Context, telegramID int64, now time.Time) ([]domain.VerificationCode, error)
	// MarkUsed devuelve false si otro consumo gano la carrera.
	MarkUsed(ctx context.Context, id int64) (bool, error)
}

type PgVerificationCodeRepository struct {
	pool *pgxpool.Pool
}

func NewPgVerificationCodeRepository(pool *pgxpool.Pool) *PgVerificationCodeRepository {
	return &PgVerificationCodeRepository{pool: pool}
}

const (
	createVerificationCodeSQL = `INSERT INTO verification_codes (telegram_id, email, code_hash, expires_at, is_used, created_at) VALUES ($1, $2, $3, $4, FALSE, $5)`
	listUsableCodesSQL        = `SELECT id, telegram_id, email, code_hash, expires_at, is_used, created_at FROM verification_codes WHERE telegram_id = $1 AND is_used = FALSE AND expires_at > $2 ORDER BY id DESC`
	markCodeUsedSQL           = `UPDATE verification_codes SET is_used = TRUE WHERE id = $1 AND is_used = FALSE`
)

func (r *PgVerificationCodeRepository) Create(ctx context.Context, code domain.VerificationCode) error {
	_, err := r.pool.Exec(ctx, createVerificationCodeSQL,
		code.TelegramID, code.Email, code.CodeHash, code.ExpiresAt, code.CreatedAt)
	return err
}

func (r *PgVerificationCodeRepository) ListUsable(ctx context.Context, telegramID int64, now time.Time) ([]domain.VerificationCode, error) {
	rows, err := r.pool.Query(ctx, listUsableCodesSQL, telegramID, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []domain.VerificationCode
	for rows.Next() {
		var c domain.VerificationCode
		if err := rows.Scan(&c.ID, &c.TelegramID, &c.Email, &c.CodeHash, &c.ExpiresAt, &c.IsUsed, &c.CreatedAt); err != nil {
			return nil, err
		}
		codes = append(codes, c)
	}
	return codes, rows.Err()
}

func (r *PgVerificationCodeRepository) MarkUsed(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, markCodeUsedSQL, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
