package service

import (
	"strings"
	"testing"
	"time"

	"domain-bot/internal/domain"
)

func TestIsValidEmail(t *testing.T) {
	valid := []string{"a@b.com", "first.last+tag@sub.example.org", "x@y.z", "u@exa.mple.co"}
	for _, s := range valid {
		if !IsValidEmail(s) {
			t.Fatalf("expected %q to be valid", s)
		}
	}

	invalid := []string{"", "plain", "a@b", "a b@c.com", "a@b .com", "a@@b.com", "a@b@c.com", "@b.com", "a@.", "a@b.com\n", "\ta@b.com", "a\uFEFFb@c.com", "a@b.c\u00a0om"}
	for _, s := range invalid {
		if IsValidEmail(s) {
			t.Fatalf("expected %q to be invalid", s)
		}
	}
}

func TestNormalizeDomain(t *testing.T) {
	tests := map[string]string{
		"HTTPS://WWW.Example.COM/": "example.com",
		"http://example.org":       "example.org",
		"www.site.ir/":             "site.ir",
		"sub.example.com":          "sub.example.com",
		"  Example.NET  ":          "example.net",
		"example.com//":            "example.com/",
	}
	for in, want := range tests {
		if got := NormalizeDomain(in); got != want {
			t.Fatalf("NormalizeDomain(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsValidDomain(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"example.com", true},
		{"sub.example.org", true},
		{"my-site.ir", true},
		{"a1.b2.io", true},
		{"-bad-.com", false},
		{".com", false},
		{"com", false},
		{"example.c", false},
		{"example.c0m", false},
		{"exa_mple.com", false},
		{"example..com", false},
		{"not a domain", false},
		{"bad-.com", false},
		{strings.Repeat("a", 64) + ".com", false},
		{strings.Repeat("a", 63) + ".com", true},
	}
	for _, tt := range tests {
		if got := IsValidDomain(tt.in); got != tt.want {
			t.Fatalf("IsValidDomain(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestIsValidDomainLengthLimit(t *testing.T) {
	label := strings.Repeat("a", 63)
	long := label + "." + label + "." + label + "." + strings.Repeat("b", 59) + ".co"
	if len(long) != 254 {
		t.Fatalf("test setup: expected 254 chars, got %d", len(long))
	}
	if IsValidDomain(long) {
		t.Fatalf("expected 254-char domain to be invalid")
	}
	if !IsValidDomain(long[4:]) {
		t.Fatalf("expected 250-char domain to be valid")
	}
}

func TestClassifyExpiryBoundaries(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	days := func(n int) *time.Time {
		t := now.AddDate(0, 0, n)
		return &t
	}

	tests := []struct {
		name string
		exp  *time.Time
		want domain.ExpiryStatus
	}{
		{"unknown", nil, domain.ExpiryUnknown},
		{"expired", days(-1), domain.ExpiryExpired},
		{"today", days(0), domain.ExpiryCritical},
		{"seven days", days(7), domain.ExpiryCritical},
		{"eight days", days(8), domain.ExpiryWarning},
		{"thirty days", days(30), domain.ExpiryWarning},
		{"thirty one days", days(31), domain.ExpiryHealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyExpiry(tt.exp, now); got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestDaysUntilRoundsUp(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := DaysUntil(now.Add(36*time.Hour), now); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
	if got := DaysUntil(now.Add(24*time.Hour), now); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
}
