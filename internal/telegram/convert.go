package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"domain-bot/internal/bot"
)

// ToEvent traduce un update de Telegram a un evento del bot. ok es false para updates que
// el bot no atiende (canales, stickers, comandos sin entidad, etc).
func ToEvent(update tgbotapi.Update) (bot.Event, bool) {
	if cq := update.CallbackQuery; cq != nil {
		if cq.From == nil {
			return bot.Event{}, false
		}
		chatID := cq.From.ID
		if cq.Message != nil && cq.Message.Chat != nil {
			chatID = cq.Message.Chat.ID
		}
		return bot.Event{
			Kind:     bot.EventAction,
			ChatID:   chatID,
			UserID:   cq.From.ID,
			Text:     cq.Data,
			ActionID: cq.ID,
		}, true
	}

	m := update.Message
	if m == nil || m.From == nil || m.Chat == nil {
		return bot.Event{}, false
	}
	ev := bot.Event{ChatID: m.Chat.ID, UserID: m.From.ID}
	switch {
	case m.IsCommand():
		ev.Kind = bot.EventCommand
		ev.Command = strings.ToLower(m.Command())
		ev.Text = strings.TrimSpace(m.CommandArguments())
	case m.Contact != nil:
		ev.Kind = bot.EventContact
		ev.Contact = &bot.Contact{PhoneNumber: m.Contact.PhoneNumber, UserID: m.Contact.UserID}
	case m.Text != "" && !strings.HasPrefix(m.Text, "/"):
		ev.Kind = bot.EventText
		ev.Text = m.Text
	default:
		return bot.Event{}, false
	}
	return ev, true
}
