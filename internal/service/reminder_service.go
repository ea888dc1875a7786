package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"domain-bot/internal/domain"
	"domain-bot/internal/metrics"
	"domain-bot/internal/repository"
)

const reminderDateLayout = "Mon Jan 02 2006"

// Notifier entrega un mensaje con formato HTML a un chat de Telegram.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, text string) error
}

type ReminderOptions struct {
	Concurrency   int
	RatePerSecond float64
	Now           func() time.Time
}

// SweepReport cuenta lo ocurrido en una pasada de recordatorios.
type SweepReport struct {
	Candidates int
	Sent       int
	Failed     int
	Skipped    int
}

// ReminderService avisa a los propietarios de dominios que vencen dentro de un mes.
// No toca el almacen de sesiones.
type ReminderService struct {
	logger      *zap.Logger
	domains     repository.DomainRepository
	users       repository.UserRepository
	notifier    Notifier
	metrics     *metrics.Metrics
	limiter     *rate.Limiter
	concurrency int
	now         func() time.Time
}

func NewReminderService(
	logger *zap.Logger,
	domains repository.DomainRepository,
	users repository.UserRepository,
	notifier Notifier,
	m *metrics.Metrics,
	opts ReminderOptions,
) *ReminderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &ReminderService{
		logger:      logger,
		domains:     domains,
		users:       users,
		notifier:    notifier,
		metrics:     m,
		limiter:     rate.NewLimiter(limit, 1),
		concurrency: opts.Concurrency,
		now:         opts.Now,
	}
}

// Sweep busca dominios con vencimiento en el proximo mes y notifica a cada propietario.
// Una falla al notificar un dominio no detiene el resto.
func (s *ReminderService) Sweep(ctx context.Context) (SweepReport, error) {
	started := time.Now()
	defer func() { s.metrics.ObserveSweep(time.Since(started).Seconds()) }()

	now := s.now().UTC()
	candidates, err := s.domains.ListExpiringBetween(ctx, now, now.AddDate(0, 1, 0))
	if err != nil {
		return SweepReport{}, fmt.Errorf("list expiring domains: %w", err)
	}

	byUser := make(map[int64][]domain.TrackedDomain)
	for _, d := range candidates {
		if d.ExpirationDate == nil || !d.ExpirationDate.After(now) {
			continue
		}
		byUser[d.UserID] = append(byUser[d.UserID], d)
	}

	var sent, failed, skipped atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for userID, domains := range byUser {
		g.Go(func() error {
			s.remindUser(gctx, now, userID, domains, &sent, &failed, &skipped)
			return nil
		})
	}
	_ = g.Wait()

	report := SweepReport{
		Candidates: len(candidates),
		Sent:       int(sent.Load()),
		Failed:     int(failed.Load()),
		Skipped:    int(skipped.Load()),
	}
	s.logger.Info("reminder sweep finished",
		zap.Int("candidates", report.Candidates),
		zap.Int("sent", report.Sent),
		zap.Int("failed", report.Failed),
		zap.Int("skipped", report.Skipped),
	)
	return report, ctx.Err()
}

func (s *ReminderService) remindUser(ctx context.Context, now time.Time, userID int64, domains []domain.TrackedDomain, sent, failed, skipped *atomic.Int64) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		s.logger.Warn("reminder owner lookup failed", zap.Int64("user_id", userID), zap.Error(err))
		skipped.Add(int64(len(domains)))
		return
	}
	if !user.NotificationsEnabled {
		skipped.Add(int64(len(domains)))
		return
	}

	for _, d := range domains {
		days := DaysUntil(*d.ExpirationDate, now)
		if user.ReminderLeadDays > 0 && days > user.ReminderLeadDays {
			skipped.Add(1)
			continue
		}
		if err := s.limiter.Wait(ctx); err != nil {
			skipped.Add(1)
			continue
		}
		if err := s.notifier.Notify(ctx, user.TelegramID, ReminderMessage(d, days)); err != nil {
			if !errors.Is(err, context.Canceled) {
				s.logger.Warn("send reminder failed", zap.Int64("telegram_id", user.TelegramID), zap.String("domain", d.Domain), zap.Error(err))
			}
			failed.Add(1)
			s.metrics.IncReminder(false)
			continue
		}
		sent.Add(1)
		s.metrics.IncReminder(true)
	}
}

// ReminderMessage arma el texto del aviso de vencimiento.
func ReminderMessage(d domain.TrackedDomain, days int) string {
	return fmt.Sprintf(
		"⚠️ <b>Domain Expiration Reminder</b>\n\n"+
			"🌐 Domain: %s\n"+
			"📅 Expires in: %d days\n"+
			"🗓️ Expiry Date: %s\n\n"+
			"Please renew your domain to avoid losing it!",
		html.EscapeString(d.Domain), days, d.ExpirationDate.Format(reminderDateLayout),
	)
}
