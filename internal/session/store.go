package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"padel-server/internal/shared/errors"
	"padel-server/internal/shared/redis"

	goredis "github.com/redis/go-redis/v9"
)

// Store persists the assembled session user between requests. One blob per
// account, overwritten on every bootstrap and removed at teardown.
type Store interface {
	Put(ctx context.Context, user *User) error
	Get(ctx context.Context, id string) (*User, error)
	Delete(ctx context.Context, id string) error
}

func sessionKey(id string) string {
	return "session:" + id
}

// RedisStore keeps sessions in Redis with a TTL matching token expiration.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	logger := slog.With("component", "session_store", "operation", "init")
	logger.Debug("Initializing Redis session store", "ttl", ttl)
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Put(ctx context.Context, user *User) error {
	logger := slog.With("component", "session_store", "operation", "put", "account_id", user.ID)

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to serialize session: %w", err)
	}

	if err := s.client.Set(ctx, sessionKey(user.ID), data, s.ttl).Err(); err != nil {
		logger.Error("Failed to store session", "error", err)
		return fmt.Errorf("failed to store session: %w", err)
	}

	logger.Debug("Session stored")
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*User, error) {
	logger := slog.With("component", "session_store", "operation", "get", "account_id", id)

	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, errors.NotFoundf("no session for account %s", id)
		}
		logger.Error("Failed to read session", "error", err)
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var user User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("failed to deserialize session: %w", err)
	}

	return &user, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	logger := slog.With("component", "session_store", "operation", "delete", "account_id", id)

	if err := s.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		logger.Error("Failed to delete session", "error", err)
		return fmt.Errorf("failed to delete session: %w", err)
	}

	logger.Debug("Session deleted")
	return nil
}

// MemoryStore is the fallback when Redis is disabled, and what tests use.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*User)}
}

func (s *MemoryStore) Put(ctx context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *user
	s.sessions[user.ID] = &copied
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.sessions[id]
	if !ok {
		return nil, errors.NotFoundf("no session for account %s", id)
	}
	copied := *user
	return &copied, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}
