package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"constructedge/pkg/logger"

	"github.com/bsm/redislock"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

var ErrNotObtained = errors.New("could not obtain lock")

type RedisLocker struct {
	locker  *redislock.Client
	prefix  string
	ttl     time.Duration
	retries int
	backoff time.Duration
}

type RedisOption func(*RedisLocker)

// WithTTL sets the lock expiry. Held locks are refreshed every ttl/2, so
// the ttl only bounds how long a crashed holder blocks others.
func WithTTL(ttl time.Duration) RedisOption {
	return func(l *RedisLocker) { l.ttl = ttl }
}

func WithRetry(retries int, backoff time.Duration) RedisOption {
	return func(l *RedisLocker) {
		l.retries = retries
		l.backoff = backoff
	}
}

func NewRedisLocker(client *redis.Client, prefix string, opts ...RedisOption) *RedisLocker {
	l := &RedisLocker{
		locker:  redislock.New(client),
		prefix:  prefix,
		ttl:     30 * time.Second,
		retries: 100,
		backoff: 50 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *RedisLocker) Acquire(ctx context.Context, keys ...string) (func(), error) {
	keys = normalize(keys)
	held := make([]*redislock.Lock, 0, len(keys))

	releaseAll := func() {
		for i := len(held) - 1; i >= 0; i-- {
			if err := held[i].Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
				logger.Logger.Warn("Failed to release lock", zap.String("key", held[i].Key()), zap.Error(err))
			}
		}
	}

	opts := &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(l.backoff), l.retries),
	}
	for _, key := range keys {
		lk, err := l.locker.Obtain(ctx, l.prefix+key, l.ttl, opts)
		if err != nil {
			releaseAll()
			if errors.Is(err, redislock.ErrNotObtained) {
				return nil, fmt.Errorf("%w: %s", ErrNotObtained, key)
			}
			return nil, err
		}
		held = append(held, lk)
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go l.keepAlive(held, stop, done)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done
			releaseAll()
		})
	}, nil
}

// keepAlive extends held locks every ttl/2 until stop is closed, so a
// holder that outlives the ttl keeps its keys.
func (l *RedisLocker) keepAlive(held []*redislock.Lock, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(l.ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			for _, lk := range held {
				if err := lk.Refresh(context.Background(), l.ttl, nil); err != nil {
					logger.Logger.Warn("Failed to refresh lock", zap.String("key", lk.Key()), zap.Error(err))
				}
			}
		}
	}
}
