package bot

import (
	"context"
	"errors"
	"html"

	"go.uber.org/zap"

	"domain-bot/internal/domain"
	"domain-bot/internal/service"
)

func (b *Bot) handleAction(ctx context.Context, ev Event) error {
	action, err := ParseAction(ev.Text)
	if err != nil {
		b.logger.Debug("unknown action ignored", zap.String("data", ev.Text))
		return nil
	}

	switch a := action.(type) {
	case StartSignup:
		if err := b.setStep(ctx, ev.UserID, domain.StepAwaitingEmail, ""); err != nil {
			return err
		}
		b.reply(ctx, ev.ChatID, "📧 Please enter your email address:\n\n"+
			"This will be used for:\n"+
			"• Account verification\n"+
			"• Domain expiration alerts\n"+
			"• Important notifications\n\n"+
			"💡 Just type your email and send it!")
	case ShowHelp:
		b.showHelp(ctx, ev.ChatID)
	case ShowMainMenu:
		b.showMainMenu(ctx, ev.ChatID)
	case ShowSettings:
		b.showSettings(ctx, ev.ChatID)
	case ShowDomains:
		return b.listDomains(ctx, ev)
	case PromptAddDomain:
		return b.promptAddDomain(ctx, ev)
	case ShowNotifications:
		return b.withUser(ctx, ev, func(user domain.User) error {
			b.showNotifications(ctx, ev.ChatID, user)
			return nil
		})
	case ShowReminderOptions:
		return b.withUser(ctx, ev, func(user domain.User) error {
			b.showReminderOptions(ctx, ev.ChatID, user)
			return nil
		})
	case PromptChangeEmail:
		return b.withUser(ctx, ev, func(domain.User) error {
			if err := b.setStep(ctx, ev.UserID, domain.StepAwaitingNewEmail, ""); err != nil {
				return err
			}
			b.reply(ctx, ev.ChatID, "📧 Please enter your new email address:\n\n"+
				"A verification code will be sent to confirm the change.\n\n"+
				"💡 Just type your new email and send it!")
			return nil
		})
	case SetNotifications:
		return b.withUser(ctx, ev, func(user domain.User) error {
			return b.setNotifications(ctx, ev.ChatID, user, a.Enabled)
		})
	case SetReminderLead:
		return b.withUser(ctx, ev, func(user domain.User) error {
			return b.setReminderLead(ctx, ev.ChatID, user, a.Days)
		})
	case ShowAccount:
		return b.withDomains(ctx, ev, func(user domain.User, domains []domain.TrackedDomain) {
			b.showAccount(ctx, ev.ChatID, user, domains)
		})
	case ExportDomains:
		return b.withDomains(ctx, ev, func(user domain.User, domains []domain.TrackedDomain) {
			b.showExport(ctx, ev.ChatID, user, domains)
		})
	case ShowDomain:
		return b.withOwnedDomain(ctx, ev, a.ID, func(_ domain.User, d domain.TrackedDomain) error {
			b.showDomainDetail(ctx, ev.ChatID, d)
			return nil
		})
	case AskDeleteDomain:
		return b.withOwnedDomain(ctx, ev, a.ID, func(_ domain.User, d domain.TrackedDomain) error {
			b.send(ctx, Message{
				ChatID: ev.ChatID,
				Text: "⚠️ <b>Confirm Deletion</b>\n\n" +
					"Are you sure you want to delete:\n" +
					"🌐 <b>" + html.EscapeString(d.Domain) + "</b>\n\n" +
					"This action cannot be undone.",
				Buttons: [][]Button{{
					{Label: "✅ Yes, Delete", Action: ConfirmDeleteDomain{ID: d.ID}},
					{Label: "❌ Cancel", Action: ShowDomain{ID: d.ID}},
				}},
			})
			return nil
		})
	case ConfirmDeleteDomain:
		return b.confirmDelete(ctx, ev, a.ID)
	case RefreshDomain:
		return b.withOwnedDomain(ctx, ev, a.ID, func(user domain.User, d domain.TrackedDomain) error {
			return b.refresh(ctx, ev.ChatID, user, d)
		})
	}
	return nil
}

// withUser exige un usuario verificado; si no lo hay muestra la bienvenida.
func (b *Bot) withUser(ctx context.Context, ev Event, fn func(domain.User) error) error {
	user, ok, err := b.verifiedUser(ctx, ev)
	if err != nil || !ok {
		return err
	}
	return fn(user)
}

func (b *Bot) withDomains(ctx context.Context, ev Event, fn func(domain.User, []domain.TrackedDomain)) error {
	return b.withUser(ctx, ev, func(user domain.User) error {
		domains, err := b.domains.List(ctx, user.ID)
		if err != nil {
			return err
		}
		fn(user, domains)
		return nil
	})
}

// withOwnedDomain resuelve el dominio dentro de la lista del propio usuario; si no esta responde "not found".
func (b *Bot) withOwnedDomain(ctx context.Context, ev Event, domainID int64, fn func(domain.User, domain.TrackedDomain) error) error {
	return b.withUser(ctx, ev, func(user domain.User) error {
		d, err := b.domains.FindOwned(ctx, user.ID, domainID)
		if err != nil {
			if errors.Is(err, service.ErrDomainNotFound) {
				b.reply(ctx, ev.ChatID, domainNotFoundText)
				return nil
			}
			return err
		}
		return fn(user, d)
	})
}

func (b *Bot) confirmDelete(ctx context.Context, ev Event, domainID int64) error {
	return b.withUser(ctx, ev, func(user domain.User) error {
		if _, err := b.domains.Delete(ctx, user.ID, domainID); err != nil {
			if errors.Is(err, service.ErrDomainNotFound) {
				b.reply(ctx, ev.ChatID, domainNotFoundText)
				return nil
			}
			return err
		}
		b.reply(ctx, ev.ChatID, "✅ <b>Domain deleted successfully!</b>\n\nThe domain has been removed from your monitoring list.")
		domains, err := b.domains.List(ctx, user.ID)
		if err != nil {
			return err
		}
		b.showDomainList(ctx, ev.ChatID, domains)
		return nil
	})
}

func (b *Bot) refresh(ctx context.Context, chatID int64, user domain.User, d domain.TrackedDomain) error {
	name := html.EscapeString(d.Domain)
	b.reply(ctx, chatID, "🔄 Refreshing information for "+name+"...")

	updated, err := b.domains.Refresh(ctx, user.ID, d.ID)
	switch {
	case err == nil:
		b.reply(ctx, chatID, "✅ <b>Domain Updated</b>\n\nInformation for "+name+" has been refreshed!")
		b.showDomainDetail(ctx, chatID, updated)
		return nil
	case errors.Is(err, service.ErrLookupFailed):
		b.reply(ctx, chatID, "❌ <b>Refresh Failed</b>\n\nCould not update information for "+name+". Please try again later.")
		return nil
	case errors.Is(err, service.ErrDomainNotFound):
		b.reply(ctx, chatID, domainNotFoundText)
		return nil
	default:
		return err
	}
}

func (b *Bot) setNotifications(ctx context.Context, chatID int64, user domain.User, enabled bool) error {
	if err := b.users.SetNotifications(ctx, user, enabled); err != nil {
		return err
	}
	user.NotificationsEnabled = enabled
	if enabled {
		b.reply(ctx, chatID, "✅ <b>Notifications Enabled</b>\n\n"+
			"You will receive domain expiration reminders.\n\n"+
			"You can change this anytime in settings.")
	} else {
		b.reply(ctx, chatID, "🔕 <b>Notifications Disabled</b>\n\n"+
			"You will no longer receive domain expiration reminders.\n\n"+
			"⚠️ <b>Important:</b> You may miss important domain renewals!\n\n"+
			"You can re-enable anytime in settings.")
	}
	b.showNotifications(ctx, chatID, user)
	return nil
}

func (b *Bot) setReminderLead(ctx context.Context, chatID int64, user domain.User, days int) error {
	if err := b.users.SetReminderLeadDays(ctx, user, days); err != nil {
		return err
	}
	user.NotificationsEnabled = true
	user.ReminderLeadDays = days
	b.reply(ctx, chatID, "✅ <b>Reminder Set</b>\n\n"+
		"🔔 You will receive reminders <b>"+leadText(days)+"</b>.\n\n"+
		"This setting has been saved to your account.")
	b.showReminderOptions(ctx, chatID, user)
	return nil
}
