package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"domain-bot/internal/domain"
	"domain-bot/internal/repository"
)

type mockWhois struct {
	calls   []string
	info    domain.WhoisInfo
	err     error
	results map[string]domain.WhoisInfo
}

func (m *mockWhois) Lookup(_ context.Context, name string) (domain.WhoisInfo, error) {
	m.calls = append(m.calls, name)
	if m.err != nil {
		return domain.WhoisInfo{}, m.err
	}
	if info, ok := m.results[name]; ok {
		return info, nil
	}
	return m.info, nil
}

func timePtr(t time.Time) *time.Time { return &t }

func strPtr(s string) *string { return &s }

func newTestDomainService(w *mockWhois, now time.Time) (*DomainService, *repository.MemoryDomainRepository) {
	repo := repository.NewMemoryDomainRepository()
	svc := NewDomainService(zap.NewNop(), repo, w, nil)
	svc.now = func() time.Time { return now }
	return svc, repo
}

var verifiedUser = domain.User{ID: 1, TelegramID: 100, IsVerified: true}

func TestDomainServiceAdd(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	w := &mockWhois{info: domain.WhoisInfo{
		ExpirationDate: timePtr(now.AddDate(0, 0, 20)),
		Registrar:      strPtr("Example Registrar"),
	}}
	svc, repo := newTestDomainService(w, now)

	var looked string
	res, err := svc.Add(context.Background(), AddDomainInput{
		User:     verifiedUser,
		Raw:      "HTTPS://WWW.Example.COM/",
		OnLookup: func(name string) { looked = name },
	})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if res.Outcome != AddOutcomeAdded || res.Name != "example.com" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Status != domain.ExpiryWarning {
		t.Fatalf("expected warning status, got %s", res.Status)
	}
	if looked != "example.com" {
		t.Fatalf("expected lookup hook with normalized name, got %q", looked)
	}
	list, _ := repo.ListByUserID(context.Background(), 1)
	if len(list) != 1 || *list[0].Registrar != "Example Registrar" {
		t.Fatalf("unexpected stored rows: %+v", list)
	}
}

func TestDomainServiceAddDuplicate(t *testing.T) {
	w := &mockWhois{}
	svc, repo := newTestDomainService(w, time.Now())
	ctx := context.Background()

	if _, err := svc.Add(ctx, AddDomainInput{User: verifiedUser, Raw: "example.com"}); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	res, err := svc.Add(ctx, AddDomainInput{User: verifiedUser, Raw: "EXAMPLE.com"})
	if err != nil {
		t.Fatalf("second add failed: %v", err)
	}
	if res.Outcome != AddOutcomeDuplicate {
		t.Fatalf("expected duplicate, got %s", res.Outcome)
	}
	if len(w.calls) != 1 {
		t.Fatalf("expected no lookup for duplicate, got %d calls", len(w.calls))
	}
	list, _ := repo.ListByUserID(ctx, verifiedUser.ID)
	if len(list) != 1 {
		t.Fatalf("expected exactly one row, got %d", len(list))
	}

	other := domain.User{ID: 2, TelegramID: 200, IsVerified: true}
	res, err = svc.Add(ctx, AddDomainInput{User: other, Raw: "example.com"})
	if err != nil || res.Outcome != AddOutcomeAdded {
		t.Fatalf("expected another user to add the same domain, got %+v, %v", res, err)
	}
}

func TestDomainServiceAddInvalid(t *testing.T) {
	w := &mockWhois{}
	svc, _ := newTestDomainService(w, time.Now())

	res, err := svc.Add(context.Background(), AddDomainInput{User: verifiedUser, Raw: "not a domain"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.Outcome != AddOutcomeInvalid {
		t.Fatalf("expected invalid, got %s", res.Outcome)
	}
	if len(w.calls) != 0 {
		t.Fatalf("expected no lookup for invalid input")
	}
}

func TestDomainServiceAddRequiresVerifiedUser(t *testing.T) {
	svc, _ := newTestDomainService(&mockWhois{}, time.Now())
	_, err := svc.Add(context.Background(), AddDomainInput{User: domain.User{ID: 3}, Raw: "example.com"})
	if !errors.Is(err, ErrUserNotVerified) {
		t.Fatalf("expected ErrUserNotVerified, got %v", err)
	}
}

func TestDomainServiceAddLookupFailure(t *testing.T) {
	ctx := context.Background()

	t.Run("ir fallback", func(t *testing.T) {
		svc, repo := newTestDomainService(&mockWhois{err: errors.New("timeout")}, time.Now())
		res, err := svc.Add(ctx, AddDomainInput{User: verifiedUser, Raw: "example.ir"})
		if err != nil {
			t.Fatalf("expected fallback without error, got %v", err)
		}
		if res.Outcome != AddOutcomeFallback || res.Status != domain.ExpiryUnknown {
			t.Fatalf("unexpected result: %+v", res)
		}
		list, _ := repo.ListByUserID(ctx, verifiedUser.ID)
		if len(list) != 1 {
			t.Fatalf("expected one stored row, got %d", len(list))
		}
		d := list[0]
		if d.RegistrationDate != nil || d.ExpirationDate != nil || d.LastRenewDate != nil {
			t.Fatalf("expected null dates, got %+v", d)
		}
		if d.Registrar == nil || *d.Registrar != "Unknown (.ir domain)" {
			t.Fatalf("unexpected registrar: %v", d.Registrar)
		}
		if d.Status == nil || *d.Status != "Active" {
			t.Fatalf("unexpected status: %v", d.Status)
		}
	})

	t.Run("other tld", func(t *testing.T) {
		svc, repo := newTestDomainService(&mockWhois{err: errors.New("timeout")}, time.Now())
		res, err := svc.Add(ctx, AddDomainInput{User: verifiedUser, Raw: "example.com"})
		if err != nil {
			t.Fatalf("expected lookup failure as outcome, got %v", err)
		}
		if res.Outcome != AddOutcomeLookupFailed {
			t.Fatalf("expected lookup_failed, got %s", res.Outcome)
		}
		list, _ := repo.ListByUserID(ctx, verifiedUser.ID)
		if len(list) != 0 {
			t.Fatalf("expected nothing stored, got %d", len(list))
		}
	})
}

type failingCreateRepo struct {
	*repository.MemoryDomainRepository
	err error
}

func (r *failingCreateRepo) Create(context.Context, domain.TrackedDomain) (domain.TrackedDomain, error) {
	return domain.TrackedDomain{}, r.err
}

func TestDomainServiceAddFallbackPersistFailure(t *testing.T) {
	repo := &failingCreateRepo{MemoryDomainRepository: repository.NewMemoryDomainRepository(), err: errors.New("db down")}
	svc := NewDomainService(zap.NewNop(), repo, &mockWhois{err: errors.New("timeout")}, nil)

	res, err := svc.Add(context.Background(), AddDomainInput{User: verifiedUser, Raw: "example.ir"})
	if err == nil || !errors.Is(err, repo.err) {
		t.Fatalf("expected persistence error, got %v (outcome %q)", err, res.Outcome)
	}
	if res.Outcome != "" {
		t.Fatalf("expected no outcome on hard failure, got %q", res.Outcome)
	}
	if list, _ := repo.ListByUserID(context.Background(), verifiedUser.ID); len(list) != 0 {
		t.Fatalf("expected nothing stored, got %d rows", len(list))
	}
}

func TestHasUnreliableWhois(t *testing.T) {
	tests := map[string]bool{
		"example.ir":    true,
		"example.co.ir": true,
		"a.ir.example":  true,
		"example.com":   false,
		"irish.com":     false,
		"example.iran":  false,
	}
	for name, want := range tests {
		if got := HasUnreliableWhois(name); got != want {
			t.Fatalf("HasUnreliableWhois(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestDomainServiceOwnership(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestDomainService(&mockWhois{}, time.Now())
	res, err := svc.Add(ctx, AddDomainInput{User: verifiedUser, Raw: "example.com"})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	id := res.Domain.ID

	if _, err := svc.FindOwned(ctx, 2, id); !errors.Is(err, ErrDomainNotFound) {
		t.Fatalf("expected ErrDomainNotFound for other user, got %v", err)
	}
	if _, err := svc.Delete(ctx, 2, id); !errors.Is(err, ErrDomainNotFound) {
		t.Fatalf("expected delete by other user to fail, got %v", err)
	}
	if list, _ := repo.ListByUserID(ctx, verifiedUser.ID); len(list) != 1 {
		t.Fatalf("expected row to survive foreign delete")
	}

	deleted, err := svc.Delete(ctx, verifiedUser.ID, id)
	if err != nil || deleted.Domain != "example.com" {
		t.Fatalf("expected delete to succeed, got %+v, %v", deleted, err)
	}
	if list, _ := repo.ListByUserID(ctx, verifiedUser.ID); len(list) != 0 {
		t.Fatalf("expected row deleted")
	}
}

func TestDomainServiceRefresh(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	w := &mockWhois{}
	svc, repo := newTestDomainService(w, now)
	res, err := svc.Add(ctx, AddDomainInput{User: verifiedUser, Raw: "example.com"})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	w.info = domain.WhoisInfo{ExpirationDate: timePtr(now.AddDate(1, 0, 0)), Status: strPtr("ok")}
	updated, err := svc.Refresh(ctx, verifiedUser.ID, res.Domain.ID)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if updated.ExpirationDate == nil || !updated.ExpirationDate.Equal(now.AddDate(1, 0, 0)) {
		t.Fatalf("unexpected refreshed domain: %+v", updated)
	}
	list, _ := repo.ListByUserID(ctx, verifiedUser.ID)
	if list[0].Status == nil || *list[0].Status != "ok" {
		t.Fatalf("expected refreshed data persisted")
	}

	w.err = errors.New("down")
	if _, err := svc.Refresh(ctx, verifiedUser.ID, res.Domain.ID); !errors.Is(err, ErrLookupFailed) {
		t.Fatalf("expected ErrLookupFailed, got %v", err)
	}
	list, _ = repo.ListByUserID(ctx, verifiedUser.ID)
	if list[0].Status == nil || *list[0].Status != "ok" {
		t.Fatalf("expected row untouched after failed refresh")
	}

	if _, err := svc.Refresh(ctx, 2, res.Domain.ID); !errors.Is(err, ErrDomainNotFound) {
		t.Fatalf("expected ErrDomainNotFound, got %v", err)
	}
}
