package bot

import (
	"context"
	"errors"
	"html"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"domain-bot/internal/domain"
	"domain-bot/internal/service"
)

const (
	invalidEmailText   = "❌ Please enter a valid email address."
	sendFailedText     = "❌ Failed to send verification email. Please try again."
	invalidCodeText    = "❌ Invalid verification code.\n\nPlease check your email and try again:"
	restartSignupText  = "❌ Please start the signup process again with /start"
	domainNotFoundText = "❌ Domain not found."
	emailInUseText     = "❌ This email is already used by another account."
)

const domainFormatText = "❌ Invalid domain format. Please enter a valid domain like:\n" +
	"• example.com\n" +
	"• mysite.ir\n" +
	"• subdomain.example.org"

func (b *Bot) handleCommand(ctx context.Context, ev Event) error {
	switch ev.Command {
	case "start":
		user, err := b.users.GetByTelegramID(ctx, ev.UserID)
		if err != nil && !errors.Is(err, service.ErrUserNotFound) {
			return err
		}
		if err == nil && user.IsVerified {
			b.showMainMenu(ctx, ev.ChatID)
			return nil
		}
		b.showWelcome(ctx, ev.ChatID)
	case "help":
		b.showHelp(ctx, ev.ChatID)
	case "mydomains":
		return b.listDomains(ctx, ev)
	case "addomain":
		return b.addDomainCommand(ctx, ev)
	case "deletedom":
		return b.deleteDomainCommand(ctx, ev)
	case "cancel":
		b.clearSession(ctx, ev.UserID)
		b.reply(ctx, ev.ChatID, "✖️ Operation cancelled.")
	default:
		b.logger.Debug("unknown command ignored", zap.String("command", ev.Command))
	}
	return nil
}

// handleText interpreta texto libre segun el paso pendiente. Sin sesion no responde.
func (b *Bot) handleText(ctx context.Context, ev Event) error {
	session, ok, err := b.session(ctx, ev.UserID)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	switch session.Step {
	case domain.StepAwaitingEmail:
		err = b.processEmail(ctx, ev)
	case domain.StepAwaitingPhone:
		b.requestContact(ctx, ev.ChatID)
	case domain.StepAwaitingVerification:
		err = b.processSignupCode(ctx, ev)
	case domain.StepAwaitingDomain:
		err = b.processDomain(ctx, ev)
	case domain.StepAwaitingNewEmail:
		err = b.processNewEmail(ctx, ev)
	case domain.StepAwaitingEmailVerification:
		err = b.processEmailChangeCode(ctx, ev, session)
	}
	if err != nil {
		b.clearSession(ctx, ev.UserID)
	}
	return err
}

func (b *Bot) processEmail(ctx context.Context, ev Event) error {
	addr := strings.ToLower(strings.TrimSpace(ev.Text))
	if !service.IsValidEmail(addr) {
		b.reply(ctx, ev.ChatID, invalidEmailText)
		return nil
	}

	sent, err := b.verification.Issue(ctx, ev.UserID, addr)
	if err != nil {
		return err
	}
	if !sent {
		b.reply(ctx, ev.ChatID, sendFailedText)
		return nil
	}
	if err := b.setStep(ctx, ev.UserID, domain.StepAwaitingPhone, addr); err != nil {
		return err
	}

	b.reply(ctx, ev.ChatID, "✅ Verification code sent to "+html.EscapeString(addr)+"\n\n"+
		"📱 Now please share your phone number for account security:")
	b.requestContact(ctx, ev.ChatID)
	return nil
}

func (b *Bot) requestContact(ctx context.Context, chatID int64) {
	b.send(ctx, Message{
		ChatID:         chatID,
		Text:           "Please share your phone number:",
		RequestContact: true,
	})
}

func (b *Bot) handleContact(ctx context.Context, ev Event) error {
	session, ok, err := b.session(ctx, ev.UserID)
	if err != nil {
		return err
	}
	if !ok || session.Step != domain.StepAwaitingPhone || session.PendingEmail == "" {
		b.send(ctx, Message{ChatID: ev.ChatID, Text: restartSignupText, RemoveKeyboard: true})
		return nil
	}
	if ev.Contact == nil || strings.TrimSpace(ev.Contact.PhoneNumber) == "" {
		b.reply(ctx, ev.ChatID, "❌ Phone number is required.")
		return nil
	}
	if ev.Contact.UserID != 0 && ev.Contact.UserID != ev.UserID {
		b.reply(ctx, ev.ChatID, "❌ Please share your own phone number.")
		b.requestContact(ctx, ev.ChatID)
		return nil
	}

	text := "✅ Phone number registered!\n\n" +
		"📧 Please check your email and enter the verification code:\n\n" +
		"💡 Just type the 6-character code and send it!"
	_, err = b.users.Register(ctx, ev.UserID, session.PendingEmail, ev.Contact.PhoneNumber)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrAccountExists):
		text = "⚠️ Account already exists. Please enter your verification code:"
	case errors.Is(err, service.ErrEmailInUse):
		if err := b.setStep(ctx, ev.UserID, domain.StepAwaitingEmail, ""); err != nil {
			return err
		}
		b.send(ctx, Message{ChatID: ev.ChatID, Text: emailInUseText + "\n\n📧 Please enter a different email address:", RemoveKeyboard: true})
		return nil
	default:
		b.logger.Error("register user failed", zap.Int64("telegram_id", ev.UserID), zap.Error(err))
		b.clearSession(ctx, ev.UserID)
		b.send(ctx, Message{ChatID: ev.ChatID, Text: "❌ Error creating account. Please try again with /start", RemoveKeyboard: true})
		return nil
	}

	if err := b.setStep(ctx, ev.UserID, domain.StepAwaitingVerification, session.PendingEmail); err != nil {
		return err
	}
	b.send(ctx, Message{ChatID: ev.ChatID, Text: text, RemoveKeyboard: true})
	return nil
}

func (b *Bot) processSignupCode(ctx context.Context, ev Event) error {
	_, ok, err := b.verification.Consume(ctx, ev.UserID, ev.Text)
	if err != nil {
		return err
	}
	if !ok {
		b.reply(ctx, ev.ChatID, invalidCodeText)
		return nil
	}
	if err := b.users.MarkVerified(ctx, ev.UserID); err != nil {
		return err
	}
	b.clearSession(ctx, ev.UserID)
	b.logger.Info("user verified", zap.Int64("telegram_id", ev.UserID))

	b.reply(ctx, ev.ChatID, "🎉 Account verified successfully!\n\nYou can now manage your domains:")
	b.showMainMenu(ctx, ev.ChatID)
	return nil
}

// processDomain ejecuta el alta de dominio. Solo un formato invalido conserva la sesion.
func (b *Bot) processDomain(ctx context.Context, ev Event) error {
	user, err := b.users.GetVerified(ctx, ev.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) || errors.Is(err, service.ErrUserNotVerified) {
			b.clearSession(ctx, ev.UserID)
			b.reply(ctx, ev.ChatID, "❌ Please complete account verification first.")
			return nil
		}
		return err
	}

	res, err := b.domains.Add(ctx, service.AddDomainInput{
		User: user,
		Raw:  ev.Text,
		OnLookup: func(name string) {
			b.reply(ctx, ev.ChatID, "🔍 Looking up domain information for "+html.EscapeString(name)+"...")
		},
	})
	if err != nil {
		b.logger.Error("add domain failed", zap.Int64("telegram_id", ev.UserID), zap.Error(err))
		b.clearSession(ctx, ev.UserID)
		b.reply(ctx, ev.ChatID, "❌ Failed to add domain. Please try again.")
		return nil
	}

	name := html.EscapeString(res.Name)
	switch res.Outcome {
	case service.AddOutcomeInvalid:
		b.reply(ctx, ev.ChatID, domainFormatText)
		return nil
	case service.AddOutcomeDuplicate:
		b.reply(ctx, ev.ChatID, "⚠️ Domain \""+name+"\" is already in your list!\n\n"+
			"Use \"My Domains\" to manage your existing domains.")
	case service.AddOutcomeLookupFailed:
		b.clearSession(ctx, ev.UserID)
		b.reply(ctx, ev.ChatID, "❌ Failed to lookup domain information for \""+name+"\".\n\n"+
			"This could happen if:\n"+
			"• Domain doesn't exist\n"+
			"• WHOIS server is unavailable\n"+
			"• Domain has privacy protection\n\n"+
			"Please try again or contact support.")
		return nil
	default:
		b.showAddSummary(ctx, ev.ChatID, res)
	}
	b.clearSession(ctx, ev.UserID)
	b.showMainMenu(ctx, ev.ChatID)
	return nil
}

func (b *Bot) processNewEmail(ctx context.Context, ev Event) error {
	addr := strings.ToLower(strings.TrimSpace(ev.Text))
	if !service.IsValidEmail(addr) {
		b.reply(ctx, ev.ChatID, invalidEmailText)
		return nil
	}
	sent, err := b.verification.Issue(ctx, ev.UserID, addr)
	if err != nil {
		return err
	}
	if !sent {
		b.reply(ctx, ev.ChatID, sendFailedText)
		return nil
	}
	if err := b.setStep(ctx, ev.UserID, domain.StepAwaitingEmailVerification, addr); err != nil {
		return err
	}
	b.reply(ctx, ev.ChatID, "✅ Verification code sent to "+html.EscapeString(addr)+"\n\n"+
		"Please enter the verification code to confirm the email change:")
	return nil
}

// processEmailChangeCode solo acepta un codigo emitido para el email pendiente.
func (b *Bot) processEmailChangeCode(ctx context.Context, ev Event, session domain.Session) error {
	code, ok, err := b.verification.Consume(ctx, ev.UserID, ev.Text)
	if err != nil {
		return err
	}
	if !ok || !strings.EqualFold(code.Email, session.PendingEmail) {
		b.reply(ctx, ev.ChatID, invalidCodeText)
		return nil
	}

	err = b.users.ChangeEmail(ctx, ev.UserID, session.PendingEmail)
	switch {
	case err == nil:
		b.reply(ctx, ev.ChatID, "✅ <b>Email Updated</b>\n\nYour account email is now "+html.EscapeString(session.PendingEmail)+".")
	case errors.Is(err, service.ErrEmailInUse):
		b.reply(ctx, ev.ChatID, emailInUseText)
	default:
		return err
	}
	b.clearSession(ctx, ev.UserID)
	b.showSettings(ctx, ev.ChatID)
	return nil
}

func (b *Bot) addDomainCommand(ctx context.Context, ev Event) error {
	if strings.TrimSpace(ev.Text) == "" {
		return b.promptAddDomain(ctx, ev)
	}
	if _, ok, err := b.verifiedUser(ctx, ev); err != nil || !ok {
		return err
	}
	if err := b.setStep(ctx, ev.UserID, domain.StepAwaitingDomain, ""); err != nil {
		return err
	}
	return b.processDomain(ctx, ev)
}

func (b *Bot) deleteDomainCommand(ctx context.Context, ev Event) error {
	user, ok, err := b.verifiedUser(ctx, ev)
	if err != nil || !ok {
		return err
	}
	id, err := strconv.ParseInt(strings.TrimSpace(ev.Text), 10, 64)
	if err != nil || id <= 0 {
		b.reply(ctx, ev.ChatID, "Usage: /deletedom &lt;id&gt;")
		return nil
	}
	if _, err := b.domains.Delete(ctx, user.ID, id); err != nil {
		if errors.Is(err, service.ErrDomainNotFound) {
			b.reply(ctx, ev.ChatID, domainNotFoundText)
			return nil
		}
		return err
	}
	b.reply(ctx, ev.ChatID, "✅ Domain deleted successfully!")
	return nil
}

func (b *Bot) promptAddDomain(ctx context.Context, ev Event) error {
	if _, ok, err := b.verifiedUser(ctx, ev); err != nil || !ok {
		return err
	}
	if err := b.setStep(ctx, ev.UserID, domain.StepAwaitingDomain, ""); err != nil {
		return err
	}
	b.reply(ctx, ev.ChatID, "🌐 Please enter the domain you want to add:\n\n"+
		"Examples:\n"+
		"• example.com\n"+
		"• mywebsite.org\n"+
		"• company.net\n\n"+
		"💡 Just type the domain name and send it!")
	return nil
}

func (b *Bot) listDomains(ctx context.Context, ev Event) error {
	user, ok, err := b.verifiedUser(ctx, ev)
	if err != nil || !ok {
		return err
	}
	domains, err := b.domains.List(ctx, user.ID)
	if err != nil {
		return err
	}
	b.showDomainList(ctx, ev.ChatID, domains)
	return nil
}
