package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.TelegramMode != "polling" {
		t.Fatalf("expected polling mode, got %q", cfg.TelegramMode)
	}
	if cfg.ReminderSchedule != "0 9 */3 * *" {
		t.Fatalf("unexpected reminder schedule %q", cfg.ReminderSchedule)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Fatalf("expected 30m session ttl, got %v", cfg.SessionTTL)
	}
	if cfg.WhoisTimeout != 15*time.Second {
		t.Fatalf("expected 15s whois timeout, got %v", cfg.WhoisTimeout)
	}
}

func TestLoadConfigMissingToken(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error when token is missing")
	}
}

func TestValidateWebhookRequiresURL(t *testing.T) {
	cfg := validConfig()
	cfg.TelegramMode = "webhook"

	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected webhook without url to fail")
	}
	if !strings.Contains(err.Error(), "TelegramWebhookURL") {
		t.Fatalf("expected error to mention webhook url, got %v", err)
	}

	cfg.TelegramWebhookURL = "https://bot.example.com/telegram/webhook"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid webhook config, got %v", err)
	}
}

func TestValidateRejectsUnknownMode(t *testing.T) {
	cfg := validConfig()
	cfg.TelegramMode = "carrier-pigeon"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected unknown mode to fail")
	}
}

func validConfig() Config {
	return Config{
		TelegramToken:         "123:abc",
		TelegramMode:          "polling",
		TelegramPollTimeout:   30,
		SessionTTL:            30 * time.Minute,
		CodeHashCost:          10,
		WhoisTimeout:          15 * time.Second,
		ReminderSchedule:      "0 9 */3 * *",
		ReminderConcurrency:   4,
		ReminderRatePerSecond: 20,
		DispatchWorkers:       8,
	}
}
