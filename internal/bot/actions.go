package bot

import (
	"errors"
	"strconv"
	"strings"
)

var ErrUnknownAction = errors.New("unknown action")

// Action es una seleccion de boton ya interpretada. El conjunto de variantes es cerrado:
// solo los tipos de este archivo la implementan.
type Action interface {
	Data() string
	isAction()
}

type (
	StartSignup         struct{}
	ShowHelp            struct{}
	ShowMainMenu        struct{}
	ShowSettings        struct{}
	ShowDomains         struct{}
	PromptAddDomain     struct{}
	ShowNotifications   struct{}
	PromptChangeEmail   struct{}
	ShowReminderOptions struct{}
	ShowAccount         struct{}
	ExportDomains       struct{}
	SetNotifications    struct{ Enabled bool }
	SetReminderLead     struct{ Days int }
	ShowDomain          struct{ ID int64 }
	AskDeleteDomain     struct{ ID int64 }
	ConfirmDeleteDomain struct{ ID int64 }
	RefreshDomain       struct{ ID int64 }
)

var staticActions = map[string]Action{
	"start_signup":          StartSignup{},
	"help":                  ShowHelp{},
	"main_menu":             ShowMainMenu{},
	"settings":              ShowSettings{},
	"my_domains":            ShowDomains{},
	"add_domain":            PromptAddDomain{},
	"notifications":         ShowNotifications{},
	"change_email":          PromptChangeEmail{},
	"custom_reminder":       ShowReminderOptions{},
	"account_info":          ShowAccount{},
	"export_domains":        ExportDomains{},
	"enable_notifications":  SetNotifications{Enabled: true},
	"disable_notifications": SetNotifications{Enabled: false},
	"reminder_1_day":        SetReminderLead{Days: 1},
	"reminder_7_days":       SetReminderLead{Days: 7},
	"reminder_30_days":      SetReminderLead{Days: 30},
}

const (
	prefixDomain        = "domain_"
	prefixDelete        = "delete_"
	prefixConfirmDelete = "confirm_delete_"
	prefixRefresh       = "refresh_"
)

// ParseAction convierte el identificador opaco de un boton en su variante.
func ParseAction(data string) (Action, error) {
	if a, ok := staticActions[data]; ok {
		return a, nil
	}
	switch {
	case strings.HasPrefix(data, prefixConfirmDelete):
		id, err := parseDomainID(data, prefixConfirmDelete)
		return ConfirmDeleteDomain{ID: id}, err
	case strings.HasPrefix(data, prefixDelete):
		id, err := parseDomainID(data, prefixDelete)
		return AskDeleteDomain{ID: id}, err
	case strings.HasPrefix(data, prefixDomain):
		id, err := parseDomainID(data, prefixDomain)
		return ShowDomain{ID: id}, err
	case strings.HasPrefix(data, prefixRefresh):
		id, err := parseDomainID(data, prefixRefresh)
		return RefreshDomain{ID: id}, err
	}
	return nil, ErrUnknownAction
}

func parseDomainID(data, prefix string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(data, prefix), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrUnknownAction
	}
	return id, nil
}

func (StartSignup) Data() string         { return "start_signup" }
func (ShowHelp) Data() string            { return "help" }
func (ShowMainMenu) Data() string        { return "main_menu" }
func (ShowSettings) Data() string        { return "settings" }
func (ShowDomains) Data() string         { return "my_domains" }
func (PromptAddDomain) Data() string     { return "add_domain" }
func (ShowNotifications) Data() string   { return "notifications" }
func (PromptChangeEmail) Data() string   { return "change_email" }
func (ShowReminderOptions) Data() string { return "custom_reminder" }
func (ShowAccount) Data() string         { return "account_info" }
func (ExportDomains) Data() string       { return "export_domains" }

func (a SetNotifications) Data() string {
	if a.Enabled {
		return "enable_notifications"
	}
	return "disable_notifications"
}

func (a SetReminderLead) Data() string {
	if a.Days == 1 {
		return "reminder_1_day"
	}
	return "reminder_" + strconv.Itoa(a.Days) + "_days"
}

func (a ShowDomain) Data() string          { return prefixDomain + strconv.FormatInt(a.ID, 10) }
func (a AskDeleteDomain) Data() string     { return prefixDelete + strconv.FormatInt(a.ID, 10) }
func (a ConfirmDeleteDomain) Data() string { return prefixConfirmDelete + strconv.FormatInt(a.ID, 10) }
func (a RefreshDomain) Data() string       { return prefixRefresh + strconv.FormatInt(a.ID, 10) }

func (StartSignup) isAction()         {}
func (ShowHelp) isAction()            {}
func (ShowMainMenu) isAction()        {}
func (ShowSettings) isAction()        {}
func (ShowDomains) isAction()         {}
func (PromptAddDomain) isAction()     {}
func (ShowNotifications) isAction()   {}
func (PromptChangeEmail) isAction()   {}
func (ShowReminderOptions) isAction() {}
func (ShowAccount) isAction()         {}
func (ExportDomains) isAction()       {}
func (SetNotifications) isAction()    {}
func (SetReminderLead) isAction()     {}
func (ShowDomain) isAction()          {}
func (AskDeleteDomain) isAction()     {}
func (ConfirmDeleteDomain) isAction() {}
func (RefreshDomain) isAction()       {}
