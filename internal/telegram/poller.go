package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"domain-bot/internal/bot"
)

// Submitter recibe eventos ya convertidos; bot.Dispatcher lo implementa.
type Submitter interface {
	Submit(ctx context.Context, ev bot.Event) error
}

type updatesSource interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Poller obtiene updates por long polling y los entrega al Submitter.
type Poller struct {
	source  updatesSource
	sink    Submitter
	timeout int
	logger  *zap.Logger
}

func NewPoller(api *tgbotapi.BotAPI, sink Submitter, timeoutSeconds int, logger *zap.Logger) *Poller {
	return newPoller(api, sink, timeoutSeconds, logger)
}

func newPoller(source updatesSource, sink Submitter, timeoutSeconds int, logger *zap.Logger) *Poller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeoutSeconds <= 0 {
		timeoutSeconds = 30
	}
	return &Poller{source: source, sink: sink, timeout: timeoutSeconds, logger: logger}
}

// Run bloquea hasta que ctx se cancela o el canal de updates se cierra.
func (p *Poller) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = p.timeout
	cfg.AllowedUpdates = []string{"message", "callback_query"}
	updates := p.source.GetUpdatesChan(cfg)
	defer p.source.StopReceivingUpdates()

	p.logger.Info("telegram polling started", zap.Int("timeout_seconds", p.timeout))
	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if err := Deliver(ctx, p.sink, update); err != nil {
				return nil
			}
		}
	}
}

// Deliver convierte y encola un update. Los updates no soportados se descartan.
func Deliver(ctx context.Context, sink Submitter, update tgbotapi.Update) error {
	ev, ok := ToEvent(update)
	if !ok {
		return nil
	}
	return sink.Submit(ctx, ev)
}
