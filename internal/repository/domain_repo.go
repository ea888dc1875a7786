package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"domain-bot/internal/domain"
)

// DomainRepository define el contrato de persistencia para dominios monitoreados.
// Toda lectura o borrado por id queda acotado al usuario propietario.
type DomainRepository interface {
	Create(ctx context.Context, d domain.TrackedDomain) (domain.TrackedDomain, error)
	ListByUserID(ctx context.Context, userID int64) ([]domain.TrackedDomain, error)
	Delete(ctx context.Context, userID, domainID int64) error
	UpdateInfo(ctx context.Context, userID, domainID int64, info domain.WhoisInfo) error
	ListExpiringBetween(ctx context.Context, from, to time.Time) ([]domain.TrackedDomain, error)
}

type PgDomainRepository struct {
	pool *pgxpool.Pool
}

func NewPgDomainRepository(pool *pgxpool.Pool) *PgDomainRepository {
	return &PgDomainRepository{pool: pool}
}

const domainColumns = `id, user_id, domain, registration_date, expiration_date, last_renew_date, registrar, status, created_at`

func (r *PgDomainRepository) Create(ctx context.Context, d domain.TrackedDomain) (domain.TrackedDomain, error) {
	const query = `
		INSERT INTO domains (user_id, domain, registration_date, expiration_date, last_renew_date, registrar, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := r.pool.QueryRow(ctx, query,
		d.UserID,
		d.Domain,
		d.RegistrationDate,
		d.ExpirationDate,
		d.LastRenewDate,
		d.Registrar,
		d.Status,
		d.CreatedAt,
	).Scan(&d.ID)
	if err != nil {
		return domain.TrackedDomain{}, mapPgError(err)
	}
	return d, nil
}

func (r *PgDomainRepository) ListByUserID(ctx context.Context, userID int64) ([]domain.TrackedDomain, error) {
	query := `SELECT ` + domainColumns + ` FROM domains WHERE user_id = $1 ORDER BY id ASC`
	return r.query(ctx, query, userID)
}

// Delete no falla si el dominio no pertenece al usuario.
func (r *PgDomainRepository) Delete(ctx context.Context, userID, domainID int64) error {
	const query = `DELETE FROM domains WHERE id = $1 AND user_id = $2`
	_, err := r.pool.Exec(ctx, query, domainID, userID)
	return err
}

func (r *PgDomainRepository) UpdateInfo(ctx context.Context, userID, domainID int64, info domain.WhoisInfo) error {
	const query = `
		UPDATE domains
		SET registration_date = $3, expiration_date = $4, last_renew_date = $5, registrar = $6, status = $7
		WHERE id = $1 AND user_id = $2
	`
	tag, err := r.pool.Exec(ctx, query,
		domainID,
		userID,
		info.RegistrationDate,
		info.ExpirationDate,
		info.LastRenewDate,
		info.Registrar,
		info.Status,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgDomainRepository) ListExpiringBetween(ctx context.Context, from, to time.Time) ([]domain.TrackedDomain, error) {
	query := `
		SELECT ` + domainColumns + `
		FROM domains
		WHERE expiration_date IS NOT NULL AND expiration_date > $1 AND expiration_date <= $2
	`
	return r.query(ctx, query, from, to)
}

func (r *PgDomainRepository) query(ctx context.Context, query string, args ...any) ([]domain.TrackedDomain, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var domains []domain.TrackedDomain
	for rows.Next() {
		var d domain.TrackedDomain
		err = rows.Scan(
			&d.ID,
			&d.UserID,
			&d.Domain,
			&d.RegistrationDate,
			&d.ExpirationDate,
			&d.LastRenewDate,
			&d.Registrar,
			&d.Status,
			&d.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		domains = append(domains, d)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return domains, nil
}
