package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultKeyPrefix = "support:"
	defaultTTL       = 24 * time.Hour
)

// RedisConfig configures the Redis-backed store.
type RedisConfig struct {
	Addr     string        `envconfig:"ADDR" split_words:"true"`
	Password string        `envconfig:"PASSWORD" split_words:"true"`
	DB       int           `envconfig:"DB" split_words:"true" default:"0"`
	TTL      time.Duration `envconfig:"TTL" split_words:"true" default:"24h"`
}

// StoreOption customizes RedisStore.
type StoreOption func(*RedisStore)

func WithKeyPrefix(prefix string) StoreOption {
	return func(s *RedisStore) {
		trimmed := strings.TrimSpace(prefix)
		if trimmed != "" {
			s.keyPrefix = trimmed
		}
	}
}

func WithTTL(ttl time.Duration) StoreOption {
	return func(s *RedisStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// RedisStore persists the latest checkpoint per thread under a prefixed key
// and the preference log as a Redis list, so appends never rewrite history.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

func NewRedisStore(client *redis.Client, opts ...StoreOption) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}

	s := &RedisStore{
		client:    client,
		keyPrefix: defaultKeyPrefix,
		ttl:       defaultTTL,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

func (s *RedisStore) LoadCheckpoint(ctx context.Context, threadID string) (*Checkpoint, error) {
	key, err := s.checkpointKey(threadID)
	if err != nil {
		return nil, err
	}

	raw, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCheckpointNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}

	var cp Checkpoint
	if err := json.Unmarshal([]byte(raw), &cp); err != nil {
		return nil, fmt.Errorf("unmarshal checkpoint: %w", err)
	}
	if cp.Session == nil {
		return nil, fmt.Errorf("checkpoint for thread=%s has no session", threadID)
	}
	return &cp, nil
}

func (s *RedisStore) SaveCheckpoint(ctx context.Context, cp *Checkpoint) error {
	if cp == nil || cp.Session == nil {
		return ErrNilCheckpoint
	}
	key, err := s.checkpointKey(cp.ThreadID)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}

	// A single SET supersedes the previous checkpoint atomically.
	if err := s.client.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

func (s *RedisStore) GetPreferences(ctx context.Context, customerID string) ([]PreferenceRecord, error) {
	key, err := s.preferenceKey(customerID)
	if err != nil {
		return nil, err
	}

	raws, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load preferences: %w", err)
	}

	records := make([]PreferenceRecord, 0, len(raws))
	for _, raw := range raws {
		var rec PreferenceRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("unmarshal preference record: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *RedisStore) AppendPreference(ctx context.Context, customerID string, rec PreferenceRecord) error {
	key, err := s.preferenceKey(customerID)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal preference record: %w", err)
	}
	if err := s.client.RPush(ctx, key, payload).Err(); err != nil {
		return fmt.Errorf("append preference: %w", err)
	}
	return nil
}

func (s *RedisStore) checkpointKey(threadID string) (string, error) {
	if strings.TrimSpace(threadID) == "" {
		return "", ErrInvalidThread
	}
	return s.keyPrefix + "checkpoint:" + threadID, nil
}

func (s *RedisStore) preferenceKey(customerID string) (string, error) {
	if strings.TrimSpace(customerID) == "" {
		return "", ErrInvalidThread
	}
	return s.keyPrefix + "preferences:" + customerID, nil
}
