package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"domain-bot/internal/domain"
)

const defaultSessionTTL = 30 * time.Minute

// SessionStore guarda el estado conversacional pendiente por usuario de Telegram.
// El contenido se pierde al reiniciar si el backend es memoria.
type SessionStore interface {
	Get(ctx context.Context, telegramID int64) (domain.Session, bool, error)
	Set(ctx context.Context, telegramID int64, session domain.Session) error
	Delete(ctx context.Context, telegramID int64) error
}

// MemorySessionStore vence sesiones inactivas al leerlas y en cada Prune.
type MemorySessionStore struct {
	mu    sync.Mutex
	items map[int64]domain.Session
	ttl   time.Duration
	now   func() time.Time
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &MemorySessionStore{
		items: make(map[int64]domain.Session),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (s *MemorySessionStore) Get(_ context.Context, telegramID int64) (domain.Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.items[telegramID]
	if !ok {
		return domain.Session{}, false, nil
	}
	if s.expired(session) {
		delete(s.items, telegramID)
		return domain.Session{}, false, nil
	}
	return session, true, nil
}

func (s *MemorySessionStore) Set(_ context.Context, telegramID int64, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session.UpdatedAt = s.now().UTC()
	s.items[telegramID] = session
	return nil
}

func (s *MemorySessionStore) Delete(_ context.Context, telegramID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, telegramID)
	return nil
}

// Prune elimina las sesiones vencidas y devuelve cuantas borro.
func (s *MemorySessionStore) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, session := range s.items {
		if s.expired(session) {
			delete(s.items, id)
			removed++
		}
	}
	return removed
}

func (s *MemorySessionStore) expired(session domain.Session) bool {
	return s.now().UTC().Sub(session.UpdatedAt) > s.ttl
}

type redisKVClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisSessionStore delega el vencimiento al TTL de cada clave.
type RedisSessionStore struct {
	client redisKVClient
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	if client == nil {
		return nil
	}
	return newRedisSessionStore(client, ttl)
}

func newRedisSessionStore(client redisKVClient, ttl time.Duration) *RedisSessionStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &RedisSessionStore{
		client: client,
		prefix: "bot:session:",
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *RedisSessionStore) Get(ctx context.Context, telegramID int64) (domain.Session, bool, error) {
	raw, err := s.client.Get(ctx, s.key(telegramID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Session{}, false, nil
		}
		return domain.Session{}, false, err
	}
	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return domain.Session{}, false, err
	}
	return session, true, nil
}

func (s *RedisSessionStore) Set(ctx context.Context, telegramID int64, session domain.Session) error {
	session.UpdatedAt = s.now().UTC()
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(telegramID), payload, s.ttl).Err()
}

func (s *RedisSessionStore) Delete(ctx context.Context, telegramID int64) error {
	return s.client.Del(ctx, s.key(telegramID)).Err()
}

func (s *RedisSessionStore) key(telegramID int64) string {
	return s.prefix + strconv.FormatInt(telegramID, 10)
}

var (
	_ SessionStore = (*MemorySessionStore)(nil)
	_ SessionStore = (*RedisSessionStore)(nil)
)
