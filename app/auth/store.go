package auth

import (
	"context"
	"fmt"
	"time"

	cache "github.com/go-pkgz/expirable-cache/v3"
	"github.com/redis/go-redis/v9"
)

// SessionStore keeps session ids with expiration
type SessionStore interface {
	Create(ctx context.Context, id string, ttl time.Duration) error
	Touch(ctx context.Context, id string, ttl time.Duration) (bool, error) // extends ttl, false if no such session
	Delete(ctx context.Context, id string) error
}

// MemoryStore keeps sessions in process memory, good for a single instance
type MemoryStore struct {
	sessions cache.Cache[string, time.Time]
}

// NewMemoryStore makes store limited to maxSessions, the oldest dropped first
func NewMemoryStore(maxSessions int) *MemoryStore {
	return &MemoryStore{sessions: cache.NewCache[string, time.Time]().WithMaxKeys(maxSessions).WithLRU()}
}

// Create adds session
func (m *MemoryStore) Create(_ context.Context, id string, ttl time.Duration) error {
	m.sessions.Set(id, time.Now(), ttl)
	return nil
}

// Touch extends session ttl
func (m *MemoryStore) Touch(_ context.Context, id string, ttl time.Duration) (bool, error) {
	created, ok := m.sessions.Get(id)
	if !ok {
		return false, nil
	}
	m.sessions.Set(id, created, ttl)
	return true, nil
}

// Delete removes session
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.sessions.Invalidate(id)
	return nil
}

// RedisStore keeps sessions in redis, shared by all instances
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore makes store with keys prefixed by prefix
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

// Create adds session
func (s *RedisStore) Create(ctx context.Context, id string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.prefix+id, time.Now().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", id, err)
	}
	return nil
}

// Touch extends session ttl
func (s *RedisStore) Touch(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	ok, err := s.client.Expire(ctx, s.prefix+id, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis expire %s: %w", id, err)
	}
	return ok, nil
}

// Delete removes session
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.prefix+id).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", id, err)
	}
	return nil
}
