package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"domain-bot/internal/domain"
)

// Implementaciones en memoria para desarrollo local (sin DATABASE_URL) y pruebas.
// Respetan las mismas restricciones de unicidad que el esquema SQL.

type MemoryUserRepository struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]domain.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{byID: make(map[int64]domain.User)}
}

func (r *MemoryUserRepository) Create(_ context.Context, user domain.User) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.TelegramID == user.TelegramID || u.Email == user.Email {
			return domain.User{}, ErrDuplicate
		}
	}
	r.nextID++
	user.ID = r.nextID
	r.byID[user.ID] = user
	return user, nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id int64) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (r *MemoryUserRepository) GetByTelegramID(_ context.Context, telegramID int64) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.findByTelegramID(telegramID)
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (r *MemoryUserRepository) MarkVerified(_ context.Context, telegramID int64) error {
	return r.update(telegramID, func(u *domain.User) error {
		u.IsVerified = true
		return nil
	})
}

func (r *MemoryUserRepository) UpdateEmail(_ context.Context, telegramID int64, email string) error {
	return r.update(telegramID, func(u *domain.User) error {
		for _, other := range r.byID {
			if other.ID != u.ID && other.Email == email {
				return ErrDuplicate
			}
		}
		u.Email = email
		return nil
	})
}

func (r *MemoryUserRepository) UpdateNotificationSettings(_ context.Context, telegramID int64, enabled bool, leadDays int) error {
	return r.update(telegramID, func(u *domain.User) error {
		u.NotificationsEnabled = enabled
		u.ReminderLeadDays = leadDays
		return nil
	})
}

func (r *MemoryUserRepository) update(telegramID int64, fn func(u *domain.User) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.findByTelegramID(telegramID)
	if !ok {
		return pgx.ErrNoRows
	}
	if err := fn(&u); err != nil {
		return err
	}
	r.byID[u.ID] = u
	return nil
}

func (r *MemoryUserRepository) findByTelegramID(telegramID int64) (domain.User, bool) {
	for _, u := range r.byID {
		if u.TelegramID == telegramID {
			return u, true
		}
	}
	return domain.User{}, false
}

type MemoryDomainRepository struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]domain.TrackedDomain
}

func NewMemoryDomainRepository() *MemoryDomainRepository {
	return &MemoryDomainRepository{byID: make(map[int64]domain.TrackedDomain)}
}

func (r *MemoryDomainRepository) Create(_ context.Context, d domain.TrackedDomain) (domain.TrackedDomain, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	d.ID = r.nextID
	r.byID[d.ID] = d
	return d, nil
}

func (r *MemoryDomainRepository) ListByUserID(_ context.Context, userID int64) ([]domain.TrackedDomain, error) {
	return r.filter(func(d domain.TrackedDomain) bool { return d.UserID == userID }), nil
}

func (r *MemoryDomainRepository) Delete(_ context.Context, userID, domainID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.byID[domainID]; ok && d.UserID == userID {
		delete(r.byID, domainID)
	}
	return nil
}

func (r *MemoryDomainRepository) UpdateInfo(_ context.Context, userID, domainID int64, info domain.WhoisInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.byID[domainID]
	if !ok || d.UserID != userID {
		return pgx.ErrNoRows
	}
	d.RegistrationDate = info.RegistrationDate
	d.ExpirationDate = info.ExpirationDate
	d.LastRenewDate = info.LastRenewDate
	d.Registrar = info.Registrar
	d.Status = info.Status
	r.byID[domainID] = d
	return nil
}

func (r *MemoryDomainRepository) ListExpiringBetween(_ context.Context, from, to time.Time) ([]domain.TrackedDomain, error) {
	return r.filter(func(d domain.TrackedDomain) bool {
		return d.ExpirationDate != nil && d.ExpirationDate.After(from) && !d.ExpirationDate.After(to)
	}), nil
}

func (r *MemoryDomainRepository) filter(keep func(domain.TrackedDomain) bool) []domain.TrackedDomain {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.TrackedDomain
	for _, d := range r.byID {
		if keep(d) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type MemoryVerificationCodeRepository struct {
	mu     sync.Mutex
	nextID int64
	codes  []domain.VerificationCode
}

func NewMemoryVerificationCodeRepository() *MemoryVerificationCodeRepository {
	return &MemoryVerificationCodeRepository{}
}

func (r *MemoryVerificationCodeRepository) Create(_ context.Context, code domain.VerificationCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	code.ID = r.nextID
	r.codes = append(r.codes, code)
	return nil
}

func (r *MemoryVerificationCodeRepository) ListUsable(_ context.Context, telegramID int64, now time.Time) ([]domain.VerificationCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.VerificationCode
	for i := len(r.codes) - 1; i >= 0; i-- {
		c := r.codes[i]
		if c.TelegramID == telegramID && c.Usable(now) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *MemoryVerificationCodeRepository) MarkUsed(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.codes {
		if r.codes[i].ID == id {
			if r.codes[i].IsUsed {
				return false, nil
			}
			r.codes[i].IsUsed = true
			return true, nil
		}
	}
	return false, nil
}

var (
	_ UserRepository             = (*MemoryUserRepository)(nil)
	_ DomainRepository           = (*MemoryDomainRepository)(nil)
	_ VerificationCodeRepository = (*MemoryVerificationCodeRepository)(nil)
	_ UserRepository             = (*PgUserRepository)(nil)
	_ DomainRepository           = (*PgDomainRepository)(nil)
	_ VerificationCodeRepository = (*PgVerificationCodeRepository)(nil)
)
