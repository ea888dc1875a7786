package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"domain-bot/internal/domain"
	"domain-bot/internal/repository"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUserNotVerified = errors.New("user not verified")
	ErrAccountExists   = errors.New("account already exists")
	ErrEmailInUse      = errors.New("email already in use")
	ErrInvalidEmail    = errors.New("invalid email")
	ErrPhoneRequired   = errors.New("phone number required")
	ErrInvalidLeadDays = errors.New("invalid reminder lead days")
	ErrNotConfigured   = errors.New("service not configured")
)

// ReminderLeadOptions son los anticipos de recordatorio que el usuario puede elegir.
var ReminderLeadOptions = []int{1, 7, 30}

// UserService coordina reglas de negocio para cuentas.
type UserService struct {
	logger *zap.Logger
	users  repository.UserRepository
	now    func() time.Time
}

func NewUserService(logger *zap.Logger, users repository.UserRepository) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{logger: logger, users: users, now: time.Now}
}

// Register crea la cuenta sin verificar. Si el telegram id o el email ya existen devuelve ErrAccountExists.
func (s *UserService) Register(ctx context.Context, telegramID int64, emailAddr, phone string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, ErrNotConfigured
	}
	emailAddr = normalizeEmail(emailAddr)
	phone = strings.TrimSpace(phone)
	if !IsValidEmail(emailAddr) {
		return domain.User{}, ErrInvalidEmail
	}
	if phone == "" {
		return domain.User{}, ErrPhoneRequired
	}

	user, err := s.users.Create(ctx, domain.User{
		TelegramID:           telegramID,
		Email:                emailAddr,
		PhoneNumber:          phone,
		NotificationsEnabled: true,
		CreatedAt:            s.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return domain.User{}, s.duplicateCause(ctx, telegramID)
		}
		return domain.User{}, err
	}
	s.logger.Info("user registered", zap.Int64("telegram_id", telegramID), zap.Int64("user_id", user.ID))
	return user, nil
}

// duplicateCause distingue una cuenta propia ya creada (ErrAccountExists) de un email
// registrado por otro usuario (ErrEmailInUse).
func (s *UserService) duplicateCause(ctx context.Context, telegramID int64) error {
	_, err := s.users.GetByTelegramID(ctx, telegramID)
	switch {
	case err == nil:
		return ErrAccountExists
	case errors.Is(err, pgx.ErrNoRows):
		return ErrEmailInUse
	default:
		return err
	}
}

func (s *UserService) GetByTelegramID(ctx context.Context, telegramID int64) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, ErrNotConfigured
	}
	user, err := s.users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// GetVerified devuelve la cuenta solo si ya completo la verificacion.
func (s *UserService) GetVerified(ctx context.Context, telegramID int64) (domain.User, error) {
	user, err := s.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return domain.User{}, err
	}
	if !user.IsVerified {
		return domain.User{}, ErrUserNotVerified
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, ErrNotConfigured
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

func (s *UserService) MarkVerified(ctx context.Context, telegramID int64) error {
	if s.users == nil {
		return ErrNotConfigured
	}
	if err := s.users.MarkVerified(ctx, telegramID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// ChangeEmail reemplaza el email de la cuenta; falla con ErrEmailInUse si otro usuario ya lo tiene.
func (s *UserService) ChangeEmail(ctx context.Context, telegramID int64, emailAddr string) error {
	if s.users == nil {
		return ErrNotConfigured
	}
	emailAddr = normalizeEmail(emailAddr)
	if !IsValidEmail(emailAddr) {
		return ErrInvalidEmail
	}
	err := s.users.UpdateEmail(ctx, telegramID, emailAddr)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrDuplicate):
		return ErrEmailInUse
	case errors.Is(err, pgx.ErrNoRows):
		return ErrUserNotFound
	default:
		return err
	}
}

func (s *UserService) SetNotifications(ctx context.Context, user domain.User, enabled bool) error {
	return s.updateNotifications(ctx, user.TelegramID, enabled, user.ReminderLeadDays)
}

// SetReminderLeadDays fija el anticipo de recordatorio; tambien reactiva las notificaciones.
func (s *UserService) SetReminderLeadDays(ctx context.Context, user domain.User, days int) error {
	valid := days == 0
	for _, d := range ReminderLeadOptions {
		if d == days {
			valid = true
		}
	}
	if !valid {
		return ErrInvalidLeadDays
	}
	return s.updateNotifications(ctx, user.TelegramID, true, days)
}

func (s *UserService) updateNotifications(ctx context.Context, telegramID int64, enabled bool, days int) error {
	if s.users == nil {
		return ErrNotConfigured
	}
	if err := s.users.UpdateNotificationSettings(ctx, telegramID, enabled, days); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}
