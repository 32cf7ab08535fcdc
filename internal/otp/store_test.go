package otp

import (
	"context"
	"testing"
	"time"

	"constructedge/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passcode(email, code string, ttl time.Duration) domain.Passcode {
	now := time.Now()
	return domain.Passcode{Email: email, Code: code, IssuedAt: now, ExpiresAt: now.Add(ttl)}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore(10, time.Minute)
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "u@x.com")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, passcode("u@x.com", "111111", time.Minute)))
	require.NoError(t, s.Put(ctx, passcode("u@x.com", "222222", time.Minute)))

	got, ok, err := s.Get(ctx, "u@x.com")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "222222", got.Code)
	assert.Equal(t, 1, s.Len())
}

func TestMemoryStoreExpiry(t *testing.T) {
	s := NewMemoryStore(10, time.Minute)
	ctx := context.Background()

	code := passcode("u@x.com", "111111", time.Minute)
	code.ExpiresAt = time.Now().Add(-time.Second)
	require.NoError(t, s.Put(ctx, code))

	_, ok, err := s.Get(ctx, "u@x.com")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreIsBounded(t *testing.T) {
	s := NewMemoryStore(2, time.Minute)
	ctx := context.Background()
	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		require.NoError(t, s.Put(ctx, passcode(email, "123456", time.Minute)))
	}
	assert.Equal(t, 2, s.Len())
	_, ok, _ := s.Get(ctx, "a@x.com")
	assert.False(t, ok)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	s := NewRedisStore(client)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, passcode("u@x.com", "111111", time.Minute)))
	require.NoError(t, s.Put(ctx, passcode("u@x.com", "333333", time.Minute)))

	got, ok, err := s.Get(ctx, "u@x.com")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "333333", got.Code)
	assert.True(t, mr.Exists(redisPrefix+"u@x.com"))

	mr.FastForward(2 * time.Minute)
	_, ok, err = s.Get(ctx, "u@x.com")
	require.NoError(t, err)
	assert.False(t, ok)

	err = s.Put(ctx, passcode("late@x.com", "444444", -time.Second))
	assert.Error(t, err)
}
