// Package preferences persists the per-user session preferences: selected
// provider, theme and enrichment toggle.
package preferences

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"devisflow/internal/domain"
)

const keyPrefix = "devisflow:prefs:"

// Key returns the Redis key holding the preferences of userID.
func Key(userID string) string {
	return keyPrefix + userID
}

// RedisStore implements port.PreferenceStore with one JSON document per user.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore creates a RedisStore.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, userID string) (*domain.Preferences, error) {
	val, err := s.client.Get(ctx, Key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("reading preferences %s: %w", userID, err)
	}
	var prefs domain.Preferences
	if err := json.Unmarshal(val, &prefs); err != nil {
		return nil, fmt.Errorf("decoding preferences %s: %w", userID, err)
	}
	return &prefs, nil
}

func (s *RedisStore) Save(ctx context.Context, userID string, prefs domain.Preferences) error {
	if err := prefs.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("encoding preferences: %w", err)
	}
	return s.client.Set(ctx, Key(userID), data, 0).Err()
}

// MemoryStore implements port.PreferenceStore in process memory. It is used
// when Redis is not configured.
type MemoryStore struct {
	mu    sync.RWMutex
	prefs map[string]domain.Preferences
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{prefs: make(map[string]domain.Preferences)}
}

func (s *MemoryStore) Get(_ context.Context, userID string) (*domain.Preferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.prefs[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (s *MemoryStore) Save(_ context.Context, userID string, prefs domain.Preferences) error {
	if err := prefs.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs[userID] = prefs
	return nil
}
