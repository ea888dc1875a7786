package email

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrDisabled indica que el bot corre sin transporte de email; el codigo solo puede
// llegar por el log (EMAIL_LOG_CODES).
var ErrDisabled = errors.New("email delivery disabled")

// Sender entrega el codigo de verificacion del alta o del cambio de email.
type Sender interface {
	SendVerificationCode(ctx context.Context, toEmail string, code string, expiresAt time.Time) error
}

type disabledSender struct {
	reason string
}

// NewDisabledSender devuelve un Sender que siempre falla con ErrDisabled; main lo usa
// cuando SMTP_HOST esta vacio o el sender SMTP no se pudo construir.
func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) SendVerificationCode(_ context.Context, _ string, _ string, _ time.Time) error {
	if s.reason == "" {
		return ErrDisabled
	}
	return fmt.Errorf("%w: %s", ErrDisabled, s.reason)
}
