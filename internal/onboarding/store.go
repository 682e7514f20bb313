package onboarding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNoProgress is returned when a user has no saved wizard state.
var ErrNoProgress = errors.New("no saved onboarding progress")

// ProgressStore persists resumable wizard state per user. Save followed
// by Load must round-trip the wizard exactly.
type ProgressStore interface {
	Save(ctx context.Context, userID uuid.UUID, w Wizard) error
	Load(ctx context.Context, userID uuid.UUID) (Wizard, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

// RedisStore keeps wizard progress in Redis so a user can resume from
// any browser session.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func progressKey(userID uuid.UUID) string {
	return "onboarding:" + userID.String()
}

func (s *RedisStore) Save(ctx context.Context, userID uuid.UUID, w Wizard) error {
	data, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("marshaling progress: %w", err)
	}
	return s.client.Set(ctx, progressKey(userID), data, 0).Err()
}

func (s *RedisStore) Load(ctx context.Context, userID uuid.UUID) (Wizard, error) {
	data, err := s.client.Get(ctx, progressKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Wizard{}, ErrNoProgress
	}
	if err != nil {
		return Wizard{}, err
	}

	var w Wizard
	if err := json.Unmarshal(data, &w); err != nil {
		return Wizard{}, fmt.Errorf("unmarshaling progress: %w", err)
	}
	return w, nil
}

func (s *RedisStore) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.client.Del(ctx, progressKey(userID)).Err()
}

// MemoryStore is the fallback when Redis is unavailable, and the store
// used in tests. Progress survives only for the process lifetime.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[uuid.UUID][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[uuid.UUID][]byte)}
}

func (s *MemoryStore) Save(ctx context.Context, userID uuid.UUID, w Wizard) error {
	data, err := json.Marshal(w)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[userID] = data
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, userID uuid.UUID) (Wizard, error) {
	s.mu.RLock()
	data, ok := s.entries[userID]
	s.mu.RUnlock()
	if !ok {
		return Wizard{}, ErrNoProgress
	}

	var w Wizard
	if err := json.Unmarshal(data, &w); err != nil {
		return Wizard{}, err
	}
	return w, nil
}

func (s *MemoryStore) Clear(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, userID)
	return nil
}

var (
	_ ProgressStore = (*RedisStore)(nil)
	_ ProgressStore = (*MemoryStore)(nil)
)
