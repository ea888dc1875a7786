package bot

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"domain-bot/internal/domain"
	"domain-bot/internal/service"
)

const (
	dateLayout     = "Jan 2, 2006"
	dateTimeLayout = "Jan 2, 2006 15:04 MST"
	unknownText    = "Unknown"
)

var (
	mainMenuButton     = Button{Label: "🏠 Main Menu", Action: ShowMainMenu{}}
	backToSettings     = Button{Label: "🔙 Back to Settings", Action: ShowSettings{}}
	addDomainButton    = Button{Label: "➕ Add Domain", Action: PromptAddDomain{}}
	myDomainsButton    = Button{Label: "🌐 My Domains", Action: ShowDomains{}}
	getStartedButton   = Button{Label: "🚀 Get Started", Action: StartSignup{}}
	notificationButton = Button{Label: "🔔 Notifications", Action: ShowNotifications{}}
	changeEmailButton  = Button{Label: "📧 Change Email", Action: PromptChangeEmail{}}
)

func (b *Bot) showWelcome(ctx context.Context, chatID int64) {
	b.send(ctx, Message{
		ChatID: chatID,
		Text: "🎉 <b>Welcome to Domain Manager Bot!</b>\n\n" +
			"📊 Manage your domains effortlessly:\n" +
			"• Monitor expiration dates\n" +
			"• Get renewal reminders\n" +
			"• Track domain information\n" +
			"• Secure email verification\n\n" +
			"Click \"Get Started\" to create your account!",
		Buttons: [][]Button{
			{getStartedButton},
			{{Label: "❓ Help", Action: ShowHelp{}}},
		},
	})
}

func (b *Bot) showMainMenu(ctx context.Context, chatID int64) {
	b.send(ctx, Message{
		ChatID: chatID,
		Text:   "🎉 Welcome back!\n\nWhat would you like to do?",
		Buttons: [][]Button{
			{myDomainsButton},
			{addDomainButton},
			{{Label: "⚙️ Settings", Action: ShowSettings{}}},
		},
	})
}

func (b *Bot) showHelp(ctx context.Context, chatID int64) {
	b.send(ctx, Message{
		ChatID: chatID,
		Text: "❓ <b>Help &amp; Information</b>\n\n" +
			"🎯 What this bot does:\n" +
			"• Monitor domain expiration dates\n" +
			"• Send renewal reminders\n" +
			"• Track domain registration info\n" +
			"• Secure account with email + phone\n\n" +
			"🔧 Commands:\n" +
			"• /start - open the main menu\n" +
			"• /mydomains - list your domains\n" +
			"• /addomain &lt;domain&gt; - add a domain\n" +
			"• /deletedom &lt;id&gt; - delete a domain\n" +
			"• /cancel - abandon the current step\n\n" +
			"📧 Need support? Contact your domain administrator.",
		Buttons: [][]Button{
			{getStartedButton},
			{mainMenuButton},
		},
	})
}

func (b *Bot) showSettings(ctx context.Context, chatID int64) {
	b.send(ctx, Message{
		ChatID: chatID,
		Text:   "⚙️ <b>Settings</b>\n\nConfigure your Domain Manager Bot preferences:",
		Buttons: [][]Button{
			{notificationButton, changeEmailButton},
			{{Label: "👤 Account Info", Action: ShowAccount{}}, {Label: "📋 Export Domains", Action: ExportDomains{}}},
			{mainMenuButton},
		},
	})
}

func (b *Bot) showNotifications(ctx context.Context, chatID int64, user domain.User) {
	state := "🔕 Disabled"
	if user.NotificationsEnabled {
		state = "🔔 Enabled"
	}
	b.send(ctx, Message{
		ChatID: chatID,
		Text: "🔔 <b>Notification Settings</b>\n\n" +
			"📅 <b>Reminders:</b> " + state + "\n" +
			"⏰ <b>Timing:</b> " + leadText(user.ReminderLeadDays) + "\n\n" +
			"Choose your preference:",
		Buttons: [][]Button{
			{{Label: "🔔 Enable All", Action: SetNotifications{Enabled: true}}, {Label: "🔕 Disable All", Action: SetNotifications{Enabled: false}}},
			{{Label: "⏰ Custom Reminders", Action: ShowReminderOptions{}}},
			{backToSettings, mainMenuButton},
		},
	})
}

func (b *Bot) showReminderOptions(ctx context.Context, chatID int64, user domain.User) {
	b.send(ctx, Message{
		ChatID: chatID,
		Text: "⏰ <b>Custom Reminder Settings</b>\n\n" +
			"Choose when you want to receive domain expiration reminders.\n\n" +
			"🔔 <b>Current:</b> " + leadText(user.ReminderLeadDays) + "\n\n" +
			"Select your preferred reminder schedule:",
		Buttons: [][]Button{
			{{Label: "1️⃣ 1 Day Before", Action: SetReminderLead{Days: 1}}, {Label: "7️⃣ 7 Days Before", Action: SetReminderLead{Days: 7}}},
			{{Label: "3️⃣0️⃣ 30 Days Before", Action: SetReminderLead{Days: 30}}},
			{{Label: "🔙 Back to Notifications", Action: ShowNotifications{}}, mainMenuButton},
		},
	})
}

func (b *Bot) showDomainList(ctx context.Context, chatID int64, domains []domain.TrackedDomain) {
	if len(domains) == 0 {
		b.send(ctx, Message{
			ChatID: chatID,
			Text: "📭 You have no domains yet.\n\n" +
				"Start by adding your first domain to monitor its expiration date and get renewal reminders!",
			Buttons: [][]Button{
				{{Label: "➕ Add Your First Domain", Action: PromptAddDomain{}}},
				{mainMenuButton},
			},
		})
		return
	}

	now := b.now()
	rows := make([][]Button, 0, len(domains)+1)
	for _, d := range domains {
		label := fmt.Sprintf("%s %s - %s", statusEmoji(service.ClassifyExpiry(d.ExpirationDate, now)), d.Domain, formatDate(d.ExpirationDate))
		rows = append(rows, []Button{{Label: label, Action: ShowDomain{ID: d.ID}}})
	}
	rows = append(rows, []Button{addDomainButton, mainMenuButton})

	b.send(ctx, Message{
		ChatID:  chatID,
		Text:    fmt.Sprintf("📋 Your Domains (%d):\n\nClick on any domain to view details and manage it.", len(domains)),
		Buttons: rows,
	})
}

func (b *Bot) showDomainDetail(ctx context.Context, chatID int64, d domain.TrackedDomain) {
	now := b.now()
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s <b>Domain Details</b>\n\n", statusEmoji(service.ClassifyExpiry(d.ExpirationDate, now)))
	fmt.Fprintf(&sb, "🌐 <b>Domain:</b> %s\n", html.EscapeString(d.Domain))
	sb.WriteString(expiryWarning(d.ExpirationDate, now))
	fmt.Fprintf(&sb, "📅 <b>Expires:</b> %s\n", formatDate(d.ExpirationDate))
	fmt.Fprintf(&sb, "📝 <b>Registered:</b> %s\n", formatDate(d.RegistrationDate))
	fmt.Fprintf(&sb, "🏢 <b>Registrar:</b> %s\n", valueOr(d.Registrar))
	fmt.Fprintf(&sb, "📊 <b>Status:</b> %s\n", valueOr(d.Status))
	fmt.Fprintf(&sb, "🔄 <b>Last Renewed:</b> %s\n", formatDate(d.LastRenewDate))
	fmt.Fprintf(&sb, "📅 <b>Added:</b> %s", d.CreatedAt.Format(dateLayout))

	b.send(ctx, Message{
		ChatID: chatID,
		Text:   sb.String(),
		Buttons: [][]Button{
			{{Label: "🔄 Refresh Info", Action: RefreshDomain{ID: d.ID}}, {Label: "🗑️ Delete", Action: AskDeleteDomain{ID: d.ID}}},
			{{Label: "📋 Back to My Domains", Action: ShowDomains{}}},
			{mainMenuButton},
		},
	})
}

func (b *Bot) showAccount(ctx context.Context, chatID int64, user domain.User, domains []domain.TrackedDomain) {
	now := b.now()
	expiring := 0
	for _, d := range domains {
		if d.ExpirationDate == nil {
			continue
		}
		if days := service.DaysUntil(*d.ExpirationDate, now); days > 0 && days <= 30 {
			expiring++
		}
	}
	b.send(ctx, Message{
		ChatID: chatID,
		Text: "👤 <b>Account Information</b>\n\n" +
			"📧 <b>Email:</b> " + html.EscapeString(user.Email) + "\n" +
			"📱 <b>Phone:</b> " + html.EscapeString(user.PhoneNumber) + "\n" +
			"📅 <b>Member Since:</b> " + user.CreatedAt.Format(dateLayout) + "\n" +
			"✅ <b>Status:</b> Verified\n\n" +
			"📊 <b>Domain Statistics:</b>\n" +
			fmt.Sprintf("• Total Domains: %d\n", len(domains)) +
			fmt.Sprintf("• Expiring Soon: %d\n\n", expiring) +
			fmt.Sprintf("🆔 <b>User ID:</b> %d", user.ID),
		Buttons: [][]Button{
			{changeEmailButton, notificationButton},
			{backToSettings, mainMenuButton},
		},
	})
}

func (b *Bot) showExport(ctx context.Context, chatID int64, user domain.User, domains []domain.TrackedDomain) {
	if len(domains) == 0 {
		b.reply(ctx, chatID, "📭 <b>No Domains to Export</b>\n\nYou don't have any domains yet. Add some domains first!")
		return
	}

	now := b.now()
	var sb strings.Builder
	fmt.Fprintf(&sb, "📋 <b>Domain Export</b> - %s\n\n", now.Format(dateLayout))
	fmt.Fprintf(&sb, "👤 <b>Account:</b> %s\n", html.EscapeString(user.Email))
	fmt.Fprintf(&sb, "📊 <b>Total Domains:</b> %d\n\n", len(domains))
	sb.WriteString("🌐 <b>Domain List:</b>\n\n")
	for i, d := range domains {
		fmt.Fprintf(&sb, "%d. %s <b>%s</b>\n", i+1, statusEmoji(service.ClassifyExpiry(d.ExpirationDate, now)), html.EscapeString(d.Domain))
		fmt.Fprintf(&sb, "   📅 Expires: %s\n", formatDate(d.ExpirationDate))
		fmt.Fprintf(&sb, "   🏢 Registrar: %s\n", valueOr(d.Registrar))
		fmt.Fprintf(&sb, "   📝 Added: %s\n\n", d.CreatedAt.Format(dateLayout))
	}
	fmt.Fprintf(&sb, "📄 <b>Export completed at:</b> %s", now.Format(dateTimeLayout))

	b.send(ctx, Message{
		ChatID:  chatID,
		Text:    sb.String(),
		Buttons: [][]Button{{backToSettings, mainMenuButton}},
	})
}

func (b *Bot) showAddSummary(ctx context.Context, chatID int64, res service.AddDomainResult) {
	d := res.Domain
	name := html.EscapeString(res.Name)
	if res.Outcome == service.AddOutcomeFallback {
		b.reply(ctx, chatID, "✅ Iranian domain added successfully!\n\n"+
			"🇮🇷 <b>"+name+"</b>\n"+
			"📝 <b>Type:</b> Iranian (.ir) domain\n"+
			"📊 <b>Status:</b> "+valueOr(d.Status)+"\n\n"+
			"ℹ️ Iranian domains may have limited WHOIS information.")
		return
	}
	b.reply(ctx, chatID, "✅ Domain added successfully!\n\n"+
		statusEmoji(res.Status)+" <b>"+name+"</b>\n"+
		"📅 <b>Expires:</b> "+formatDate(d.ExpirationDate)+"\n"+
		"🏢 <b>Registrar:</b> "+valueOr(d.Registrar)+"\n"+
		"📊 <b>Status:</b> "+valueOr(d.Status)+"\n"+
		"📝 <b>Registration:</b> "+formatDate(d.RegistrationDate)+"\n\n"+
		"🔔 You'll receive reminders before expiration!")
}

func statusEmoji(status domain.ExpiryStatus) string {
	switch status {
	case domain.ExpiryExpired:
		return "🔴"
	case domain.ExpiryCritical:
		return "🟠"
	case domain.ExpiryWarning:
		return "🟡"
	case domain.ExpiryHealthy:
		return "🟢"
	default:
		return "❓"
	}
}

func expiryWarning(expiration *time.Time, now time.Time) string {
	if expiration == nil {
		return ""
	}
	switch service.ClassifyExpiry(expiration, now) {
	case domain.ExpiryExpired:
		return "🚨 <b>EXPIRED!</b>\n"
	case domain.ExpiryCritical:
		return fmt.Sprintf("⚠️ <b>Expires in %d days!</b>\n", service.DaysUntil(*expiration, now))
	case domain.ExpiryWarning:
		return fmt.Sprintf("🔔 Expires in %d days\n", service.DaysUntil(*expiration, now))
	default:
		return ""
	}
}

func leadText(days int) string {
	switch days {
	case 0:
		return "every sweep while a domain expires within a month"
	case 1:
		return "1 day before expiration"
	default:
		return fmt.Sprintf("%d days before expiration", days)
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return unknownText
	}
	return t.Format(dateLayout)
}

func valueOr(s *string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return unknownText
	}
	return html.EscapeString(*s)
}
