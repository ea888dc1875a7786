package domain

import "time"

// VerificationCode es un codigo de un solo uso enviado por email.
// Se guarda solo el hash del codigo en mayusculas.
type VerificationCode struct {
	ID         int64     `json:"id"`
	TelegramID int64     `json:"telegram_id"`
	Email      string    `json:"email"`
	CodeHash   string    `json:"-"`
	ExpiresAt  time.Time `json:"expires_at"`
	IsUsed     bool      `json:"is_used"`
	CreatedAt  time.Time `json:"created_at"`
}

// Usable indica si el codigo sigue sin usar y sin vencer.
func (c VerificationCode) Usable(now time.Time) bool {
	return !c.IsUsed && now.Before(c.ExpiresAt)
}
