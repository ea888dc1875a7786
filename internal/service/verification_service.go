package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"domain-bot/internal/domain"
	"domain-bot/internal/email"
	"domain-bot/internal/repository"
)

const codeTTL = 10 * time.Minute

// VerificationOptions ajusta el comportamiento de VerificationService.
type VerificationOptions struct {
	// LogCodes escribe el codigo en el log cuando el envio por email falla.
	LogCodes bool
	HashCost int
	TTL      time.Duration
	Now      func() time.Time
	Generate func() (string, error)
}

// VerificationService emite y consume codigos de verificacion de un solo uso.
// Un codigo nuevo no invalida los anteriores: cualquier codigo sin usar y sin vencer sirve.
type VerificationService struct {
	logger   *zap.Logger
	codes    repository.VerificationCodeRepository
	sender   email.Sender
	logCodes bool
	hashCost int
	ttl      time.Duration
	now      func() time.Time
	generate func() (string, error)
}

func NewVerificationService(logger *zap.Logger, codes repository.VerificationCodeRepository, sender email.Sender, opts VerificationOptions) *VerificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.HashCost == 0 {
		opts.HashCost = bcrypt.DefaultCost
	}
	if opts.TTL <= 0 {
		opts.TTL = codeTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Generate == nil {
		opts.Generate = GenerateCode
	}
	return &VerificationService{
		logger:   logger,
		codes:    codes,
		sender:   sender,
		logCodes: opts.LogCodes,
		hashCost: opts.HashCost,
		ttl:      opts.TTL,
		now:      opts.Now,
		generate: opts.Generate,
	}
}

// Issue genera un codigo, lo envia a emailAddr y, si se entrego, lo guarda.
// Devuelve false (sin error) si el envio no fue posible; el error queda para fallas de persistencia.
func (s *VerificationService) Issue(ctx context.Context, telegramID int64, emailAddr string) (bool, error) {
	if s.codes == nil {
		return false, errors.New("verification service not configured")
	}
	code, err := s.generate()
	if err != nil {
		return false, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), s.hashCost)
	if err != nil {
		return false, err
	}

	now := s.now().UTC()
	expiresAt := now.Add(s.ttl)
	if !s.dispatch(ctx, emailAddr, code, expiresAt) {
		return false, nil
	}

	err = s.codes.Create(ctx, domain.VerificationCode{
		TelegramID: telegramID,
		Email:      emailAddr,
		CodeHash:   string(hash),
		ExpiresAt:  expiresAt,
		CreatedAt:  now,
	})
	if err != nil {
		return false, fmt.Errorf("save verification code: %w", err)
	}
	return true, nil
}

func (s *VerificationService) dispatch(ctx context.Context, emailAddr, code string, expiresAt time.Time) bool {
	if s.sender != nil {
		err := s.sender.SendVerificationCode(ctx, emailAddr, code, expiresAt)
		if err == nil {
			return true
		}
		if errors.Is(err, email.ErrDisabled) {
			s.logger.Debug("email delivery disabled", zap.String("email", emailAddr))
		} else {
			s.logger.Warn("send verification code failed", zap.Error(err), zap.String("email", emailAddr))
		}
	}
	if s.logCodes {
		s.logger.Warn("verification code delivered via log", zap.String("email", emailAddr), zap.String("code", code))
		return true
	}
	return false
}

// Consume busca un codigo vigente del usuario que coincida (sin distinguir mayusculas)
// y lo marca como usado. ok es false si ninguno coincide.
func (s *VerificationService) Consume(ctx context.Context, telegramID int64, code string) (domain.VerificationCode, bool, error) {
	if s.codes == nil {
		return domain.VerificationCode{}, false, errors.New("verification service not configured")
	}
	normalized := normalizeCode(code)
	if normalized == "" {
		return domain.VerificationCode{}, false, nil
	}

	candidates, err := s.codes.ListUsable(ctx, telegramID, s.now().UTC())
	if err != nil {
		return domain.VerificationCode{}, false, err
	}
	for _, c := range candidates {
		if bcrypt.CompareHashAndPassword([]byte(c.CodeHash), []byte(normalized)) != nil {
			continue
		}
		marked, err := s.codes.MarkUsed(ctx, c.ID)
		if err != nil {
			return domain.VerificationCode{}, false, err
		}
		if !marked {
			continue
		}
		c.IsUsed = true
		return c, true, nil
	}
	return domain.VerificationCode{}, false, nil
}

func normalizeEmail(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}
