package blacklist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	UserBlackList  = "constructedge:blacklist:user:"
	TokenBlackList = "constructedge:blacklist:token:"
)

var (
	ErrUserBanned   = errors.New("user is banned")
	ErrTokenRevoked = errors.New("token is revoked")
)

type Blacklist interface {
	BanUser(ctx context.Context, userID string, ttl time.Duration) error
	BanToken(ctx context.Context, tokenID string, ttl time.Duration) error
	CheckUser(ctx context.Context, userID string) error
	CheckToken(ctx context.Context, tokenID string) error
}

type RedisBlacklist struct {
	client      *redis.Client
	userPrefix  string
	tokenPrefix string
}

func NewRedisBlacklist(client *redis.Client, userPrefix, tokenPrefix string) *RedisBlacklist {
	return &RedisBlacklist{
		client:      client,
		userPrefix:  userPrefix,
		tokenPrefix: tokenPrefix,
	}
}

func (b *RedisBlacklist) BanUser(ctx context.Context, userID string, ttl time.Duration) error {
	key := b.userPrefix + userID
	if err := b.client.Set(ctx, key, "user_banned", ttl).Err(); err != nil {
		return fmt.Errorf("ban user: %w", err)
	}
	return nil
}

// BanToken revokes a token id. A non-positive ttl means the token has
// already expired and there is nothing to store.
func (b *RedisBlacklist) BanToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	key := b.tokenPrefix + tokenID
	if err := b.client.Set(ctx, key, "token_banned", ttl).Err(); err != nil {
		return fmt.Errorf("ban token: %w", err)
	}
	return nil
}

func (b *RedisBlacklist) CheckUser(ctx context.Context, userID string) error {
	return b.check(ctx, b.userPrefix+userID, ErrUserBanned)
}

func (b *RedisBlacklist) CheckToken(ctx context.Context, tokenID string) error {
	return b.check(ctx, b.tokenPrefix+tokenID, ErrTokenRevoked)
}

func (b *RedisBlacklist) check(ctx context.Context, key string, banned error) error {
	_, err := b.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil
	} else if err != nil {
		return fmt.Errorf("check blacklist: %w", err)
	}
	return banned
}
