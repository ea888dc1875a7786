package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"domain-bot/internal/domain"
)

type mockRedisKVClient struct {
	values     map[string]string
	lastSetKey string
	lastSetTTL time.Duration
	lastDel    []string
	getErr     error
}

func newMockRedisKVClient() *mockRedisKVClient {
	return &mockRedisKVClient{values: make(map[string]string)}
}

func (m *mockRedisKVClient) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	if m.getErr != nil {
		cmd.SetErr(m.getErr)
		return cmd
	}
	v, ok := m.values[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(v)
	return cmd
}

func (m *mockRedisKVClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.lastSetKey = key
	m.lastSetTTL = expiration
	switch v := value.(type) {
	case []byte:
		m.values[key] = string(v)
	case string:
		m.values[key] = v
	}
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("OK")
	return cmd
}

func (m *mockRedisKVClient) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	m.lastDel = keys
	for _, k := range keys {
		delete(m.values, k)
	}
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(int64(len(keys)))
	return cmd
}

func TestMemorySessionStore_Basics(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore(time.Minute)

	if _, ok, err := store.Get(ctx, 1); ok || err != nil {
		t.Fatalf("expected missing session, got %v, %v", ok, err)
	}
	if err := store.Set(ctx, 1, domain.Session{Step: domain.StepAwaitingPhone, PendingEmail: "a@b.com"}); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	session, ok, err := store.Get(ctx, 1)
	if err != nil || !ok {
		t.Fatalf("expected session, got %v, %v", ok, err)
	}
	if session.Step != domain.StepAwaitingPhone || session.PendingEmail != "a@b.com" {
		t.Fatalf("unexpected session: %+v", session)
	}
	if session.UpdatedAt.IsZero() {
		t.Fatalf("expected UpdatedAt to be stamped")
	}
	if err := store.Delete(ctx, 1); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, ok, _ := store.Get(ctx, 1); ok {
		t.Fatalf("expected session deleted")
	}
}

func TestMemorySessionStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemorySessionStore(30 * time.Minute)
	store.now = func() time.Time { return now }

	_ = store.Set(ctx, 1, domain.Session{Step: domain.StepAwaitingEmail})
	_ = store.Set(ctx, 2, domain.Session{Step: domain.StepAwaitingDomain})

	now = now.Add(20 * time.Minute)
	_ = store.Set(ctx, 2, domain.Session{Step: domain.StepAwaitingDomain})

	now = now.Add(15 * time.Minute)
	if _, ok, _ := store.Get(ctx, 1); ok {
		t.Fatalf("expected stale session evicted on read")
	}
	if _, ok, _ := store.Get(ctx, 2); !ok {
		t.Fatalf("expected touched session to survive")
	}

	now = now.Add(time.Hour)
	if removed := store.Prune(); removed != 1 {
		t.Fatalf("expected prune to remove 1, got %d", removed)
	}
}

func TestRedisSessionStore(t *testing.T) {
	ctx := context.Background()
	client := newMockRedisKVClient()
	store := newRedisSessionStore(client, 15*time.Minute)

	if _, ok, err := store.Get(ctx, 7); ok || err != nil {
		t.Fatalf("expected missing session on redis.Nil, got %v, %v", ok, err)
	}
	if err := store.Set(ctx, 7, domain.Session{Step: domain.StepAwaitingNewEmail}); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if client.lastSetKey != "bot:session:7" || client.lastSetTTL != 15*time.Minute {
		t.Fatalf("unexpected set: key=%s ttl=%v", client.lastSetKey, client.lastSetTTL)
	}
	var raw domain.Session
	if err := json.Unmarshal([]byte(client.values["bot:session:7"]), &raw); err != nil {
		t.Fatalf("expected JSON payload: %v", err)
	}

	session, ok, err := store.Get(ctx, 7)
	if err != nil || !ok || session.Step != domain.StepAwaitingNewEmail {
		t.Fatalf("unexpected get: %+v, %v, %v", session, ok, err)
	}

	if err := store.Delete(ctx, 7); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if len(client.lastDel) != 1 || client.lastDel[0] != "bot:session:7" {
		t.Fatalf("unexpected delete keys: %+v", client.lastDel)
	}

	client.getErr = errors.New("redis down")
	if _, _, err := store.Get(ctx, 7); err == nil {
		t.Fatalf("expected redis error to surface")
	}
}

func TestNewRedisSessionStoreNilClient(t *testing.T) {
	if NewRedisSessionStore(nil, time.Minute) != nil {
		t.Fatalf("expected nil store for nil client")
	}
}
