// Package otp keeps issued one-time passcodes with a bounded lifetime.
package otp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"constructedge/internal/domain"

	"github.com/go-redis/redis/v8"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Store holds at most one live passcode per email; Put overwrites.
type Store interface {
	Put(ctx context.Context, code domain.Passcode) error
	// Get returns ok=false when no unexpired code exists for email.
	Get(ctx context.Context, email string) (domain.Passcode, bool, error)
}

const redisPrefix = "constructedge:otp:"

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Put(ctx context.Context, code domain.Passcode) error {
	ttl := time.Until(code.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("passcode for %s already expired", code.Email)
	}
	payload, err := json.Marshal(code)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisPrefix+code.Email, payload, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, email string) (domain.Passcode, bool, error) {
	raw, err := s.client.Get(ctx, redisPrefix+email).Bytes()
	if err == redis.Nil {
		return domain.Passcode{}, false, nil
	} else if err != nil {
		return domain.Passcode{}, false, err
	}
	var code domain.Passcode
	if err := json.Unmarshal(raw, &code); err != nil {
		return domain.Passcode{}, false, err
	}
	if code.IsExpired() {
		return domain.Passcode{}, false, nil
	}
	return code, true, nil
}

// MemoryStore is a size-bounded LRU whose entries also expire after ttl.
type MemoryStore struct {
	cache *expirable.LRU[string, domain.Passcode]
}

func NewMemoryStore(capacity int, ttl time.Duration) *MemoryStore {
	return &MemoryStore{cache: expirable.NewLRU[string, domain.Passcode](capacity, nil, ttl)}
}

func (s *MemoryStore) Put(_ context.Context, code domain.Passcode) error {
	s.cache.Add(code.Email, code)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, email string) (domain.Passcode, bool, error) {
	code, ok := s.cache.Get(email)
	if !ok || code.IsExpired() {
		return domain.Passcode{}, false, nil
	}
	return code, true, nil
}

func (s *MemoryStore) Len() int {
	return s.cache.Len()
}
