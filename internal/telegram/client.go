package telegram

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"domain-bot/internal/bot"
)

// botAPI es el subconjunto de tgbotapi.BotAPI que usa el cliente.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Client adapta la Bot API de Telegram a los contratos salientes del bot y del recordatorio.
type Client struct {
	api    botAPI
	logger *zap.Logger
}

func NewClient(api *tgbotapi.BotAPI, logger *zap.Logger) *Client {
	return newClient(api, logger)
}

func newClient(api botAPI, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{api: api, logger: logger}
}

// Send entrega un mensaje con formato HTML y el teclado que corresponda.
func (c *Client) Send(ctx context.Context, msg bot.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := c.api.Send(buildMessage(msg))
	return err
}

// Notify envia un aviso sin botones.
func (c *Client) Notify(ctx context.Context, chatID int64, text string) error {
	return c.Send(ctx, bot.Message{ChatID: chatID, Text: text})
}

// AnswerAction confirma un callback query. Un token vencido se informa como bot.ErrActionExpired.
func (c *Client) AnswerAction(ctx context.Context, actionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := c.api.Request(tgbotapi.NewCallback(actionID, ""))
	if err != nil && isExpiredCallback(err) {
		return bot.ErrActionExpired
	}
	return err
}

func buildMessage(msg bot.Message) tgbotapi.MessageConfig {
	out := tgbotapi.NewMessage(msg.ChatID, msg.Text)
	out.ParseMode = tgbotapi.ModeHTML
	out.DisableWebPagePreview = true

	switch {
	case len(msg.Buttons) > 0:
		rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(msg.Buttons))
		for _, row := range msg.Buttons {
			buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
			for _, b := range row {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Action.Data()))
			}
			rows = append(rows, buttons)
		}
		out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	case msg.RequestContact:
		keyboard := tgbotapi.NewReplyKeyboard(
			tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButtonContact("📱 Share Phone Number")),
		)
		keyboard.OneTimeKeyboard = true
		keyboard.ResizeKeyboard = true
		out.ReplyMarkup = keyboard
	case msg.RemoveKeyboard:
		out.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
	}
	return out
}

func isExpiredCallback(err error) bool {
	var apiErr *tgbotapi.Error
	msg := err.Error()
	if errors.As(err, &apiErr) {
		msg = apiErr.Message
	}
	return strings.Contains(msg, "query is too old") || strings.Contains(msg, "query ID is invalid")
}

var _ bot.Messenger = (*Client)(nil)
