package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"domain-bot/internal/domain"
	"domain-bot/internal/metrics"
	"domain-bot/internal/service"
)

const genericErrorText = "❌ An error occurred. Please try again."

var errHandlerPanic = errors.New("event handler panic")

// Dependencies agrupa los colaboradores del bot.
type Dependencies struct {
	Messenger    Messenger
	Sessions     service.SessionStore
	Users        *service.UserService
	Verification *service.VerificationService
	Domains      *service.DomainService
	Metrics      *metrics.Metrics
}

// Bot es la maquina de estados conversacional. Cada evento se procesa de forma aislada:
// un panic o error en uno no afecta a los demas.
type Bot struct {
	logger       *zap.Logger
	messenger    Messenger
	sessions     service.SessionStore
	users        *service.UserService
	verification *service.VerificationService
	domains      *service.DomainService
	metrics      *metrics.Metrics
	now          func() time.Time
}

func New(logger *zap.Logger, deps Dependencies) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bot{
		logger:       logger,
		messenger:    deps.Messenger,
		sessions:     deps.Sessions,
		users:        deps.Users,
		verification: deps.Verification,
		domains:      deps.Domains,
		metrics:      deps.Metrics,
		now:          time.Now,
	}
}

// HandleEvent procesa un evento entrante. Nunca propaga errores ni panics.
func (b *Bot) HandleEvent(ctx context.Context, ev Event) {
	b.metrics.IncEvent(string(ev.Kind))

	err := b.guard(ev, func() error {
		switch ev.Kind {
		case EventCommand:
			return b.handleCommand(ctx, ev)
		case EventText:
			return b.handleText(ctx, ev)
		case EventContact:
			return b.handleContact(ctx, ev)
		case EventAction:
			return b.handleAction(ctx, ev)
		default:
			return nil
		}
	})
	if err != nil {
		b.reply(ctx, ev.ChatID, genericErrorText)
	}

	if ev.Kind == EventAction {
		b.acknowledge(ctx, ev)
	}
}

// guard ejecuta fn y convierte un panic en error.
func (b *Bot) guard(ev Event, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.metrics.IncPanic()
			b.logger.Error("event handler panic",
				zap.String("event_id", ev.ID),
				zap.String("kind", string(ev.Kind)),
				zap.Int64("telegram_id", ev.UserID),
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
			err = fmt.Errorf("%w: %v", errHandlerPanic, r)
		}
	}()
	if err = fn(); err != nil {
		b.logger.Error("handle event failed",
			zap.String("event_id", ev.ID),
			zap.String("kind", string(ev.Kind)),
			zap.Int64("telegram_id", ev.UserID),
			zap.Error(err),
		)
	}
	return err
}

// acknowledge confirma la seleccion del boton una sola vez. Los errores se registran y se descartan.
func (b *Bot) acknowledge(ctx context.Context, ev Event) {
	if ev.ActionID == "" {
		return
	}
	err := b.messenger.AnswerAction(ctx, ev.ActionID)
	switch {
	case err == nil:
	case errors.Is(err, ErrActionExpired):
		b.logger.Debug("action acknowledgement expired", zap.String("event_id", ev.ID))
	default:
		b.logger.Warn("answer action failed", zap.String("event_id", ev.ID), zap.Error(err))
	}
}

func (b *Bot) send(ctx context.Context, msg Message) {
	if err := b.messenger.Send(ctx, msg); err != nil {
		b.logger.Warn("send message failed", zap.Int64("chat_id", msg.ChatID), zap.Error(err))
	}
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	b.send(ctx, Message{ChatID: chatID, Text: text})
}

func (b *Bot) session(ctx context.Context, telegramID int64) (domain.Session, bool, error) {
	return b.sessions.Get(ctx, telegramID)
}

func (b *Bot) setStep(ctx context.Context, telegramID int64, step domain.Step, pendingEmail string) error {
	return b.sessions.Set(ctx, telegramID, domain.Session{Step: step, PendingEmail: pendingEmail})
}

func (b *Bot) clearSession(ctx context.Context, telegramID int64) {
	if err := b.sessions.Delete(ctx, telegramID); err != nil {
		b.logger.Warn("clear session failed", zap.Int64("telegram_id", telegramID), zap.Error(err))
	}
}

// verifiedUser devuelve el usuario verificado o muestra la bienvenida si no lo esta.
func (b *Bot) verifiedUser(ctx context.Context, ev Event) (domain.User, bool, error) {
	user, err := b.users.GetVerified(ctx, ev.UserID)
	switch {
	case err == nil:
		return user, true, nil
	case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrUserNotVerified):
		b.showWelcome(ctx, ev.ChatID)
		return domain.User{}, false, nil
	default:
		return domain.User{}, false, err
	}
}
