package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore keeps per-session conversation state, keyed by a session
// identifier so concurrent patients never share state. Entries expire after
// the configured TTL; a stale conversation simply starts over.
type SessionStore interface {
	// Get returns the session's state, or nil when absent or expired.
	Get(ctx context.Context, sessionID string) (*State, error)
	Put(ctx context.Context, sessionID string, st *State) error
	Delete(ctx context.Context, sessionID string) error
}

const sessionKeyPrefix = "chat:session:"

// RedisSessionStore stores states as JSON values with a TTL refreshed on
// every write.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func (s *RedisSessionStore) Get(ctx context.Context, sessionID string) (*State, error) {
	raw, err := s.client.Get(ctx, sessionKeyPrefix+sessionID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session state: %w", err)
	}

	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("decode session state: %w", err)
	}
	return &st, nil
}

func (s *RedisSessionStore) Put(ctx context.Context, sessionID string, st *State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode session state: %w", err)
	}

	if err := s.client.Set(ctx, sessionKeyPrefix+sessionID, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("put session state: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("delete session state: %w", err)
	}
	return nil
}

type memoryEntry struct {
	state     *State
	expiresAt time.Time
}

// MemorySessionStore is the in-process fallback for dev mode and tests.
// Expired entries are dropped lazily on access and swept on writes.
type MemorySessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]memoryEntry
	now      func() time.Time
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		ttl:      ttl,
		sessions: make(map[string]memoryEntry),
		now:      time.Now,
	}
}

func (s *MemorySessionStore) Get(ctx context.Context, sessionID string) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	if s.now().After(entry.expiresAt) {
		delete(s.sessions, sessionID)
		return nil, nil
	}

	cp := *entry.state
	return &cp, nil
}

func (s *MemorySessionStore) Put(ctx context.Context, sessionID string, st *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, entry := range s.sessions {
		if now.After(entry.expiresAt) {
			delete(s.sessions, id)
		}
	}

	cp := *st
	s.sessions[sessionID] = memoryEntry{state: &cp, expiresAt: now.Add(s.ttl)}
	return nil
}

func (s *MemorySessionStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	return nil
}
