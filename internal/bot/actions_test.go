package bot

import (
	"errors"
	"testing"
)

func TestParseActionRoundTrip(t *testing.T) {
	actions := []Action{
		StartSignup{}, ShowHelp{}, ShowMainMenu{}, ShowSettings{}, ShowDomains{},
		PromptAddDomain{}, ShowNotifications{}, PromptChangeEmail{}, ShowReminderOptions{},
		ShowAccount{}, ExportDomains{},
		SetNotifications{Enabled: true}, SetNotifications{Enabled: false},
		SetReminderLead{Days: 1}, SetReminderLead{Days: 7}, SetReminderLead{Days: 30},
		ShowDomain{ID: 12}, AskDeleteDomain{ID: 12}, ConfirmDeleteDomain{ID: 12}, RefreshDomain{ID: 9000},
	}
	for _, a := range actions {
		got, err := ParseAction(a.Data())
		if err != nil {
			t.Fatalf("parse %q failed: %v", a.Data(), err)
		}
		if got != a {
			t.Fatalf("parse %q = %#v, want %#v", a.Data(), got, a)
		}
	}
}

func TestParseActionKnownIdentifiers(t *testing.T) {
	tests := map[string]Action{
		"reminder_1_day":    SetReminderLead{Days: 1},
		"reminder_7_days":   SetReminderLead{Days: 7},
		"reminder_30_days":  SetReminderLead{Days: 30},
		"confirm_delete_42": ConfirmDeleteDomain{ID: 42},
		"delete_42":         AskDeleteDomain{ID: 42},
		"domain_42":         ShowDomain{ID: 42},
		"refresh_42":        RefreshDomain{ID: 42},
	}
	for data, want := range tests {
		got, err := ParseAction(data)
		if err != nil || got != want {
			t.Fatalf("ParseAction(%q) = %#v, %v; want %#v", data, got, err, want)
		}
	}
}

func TestParseActionRejectsUnknown(t *testing.T) {
	for _, data := range []string{"", "foo", "domain_", "domain_abc", "delete_-1", "refresh_0", "confirm_delete_x", "reminder_2_days"} {
		if _, err := ParseAction(data); !errors.Is(err, ErrUnknownAction) {
			t.Fatalf("expected ErrUnknownAction for %q, got %v", data, err)
		}
	}
}
