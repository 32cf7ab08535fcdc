package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	authmw "constructedge/internal/utils/middleware"
	"constructedge/pkg/logger"

	"github.com/go-redis/redis/v8"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const (
	IdempotencyHeader = "idempotency-key"
	idempotencyPrefix = "constructedge:idempotency:"
	IdempotencyTTL    = 24 * time.Hour
)

type ResponseCache interface {
	GetBytes(ctx context.Context, key string) ([]byte, bool)
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration)
}

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) GetBytes(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	} else if err != nil {
		logger.Logger.Error("Redis get error", zap.Error(err))
		return nil, false
	}
	return val, true
}

func (c *RedisCache) SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) {
	err := c.client.Set(ctx, key, value, ttl).Err()
	if err != nil {
		logger.Logger.Error("Redis set error", zap.Error(err))
	}
}

// MemoryCache keeps responses in a bounded in-process LRU. Entries expire
// after ttl regardless of the per-entry ttl passed to SetBytes.
type MemoryCache struct {
	cache *expirable.LRU[string, []byte]
}

func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	return &MemoryCache{cache: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

func (c *MemoryCache) GetBytes(_ context.Context, key string) ([]byte, bool) {
	return c.cache.Get(key)
}

func (c *MemoryCache) SetBytes(_ context.Context, key string, value []byte, _ time.Duration) {
	c.cache.Add(key, value)
}

type cachedResponse struct {
	Digest   string          `json:"digest"`
	Response json.RawMessage `json:"response"`
}

// requestDigest fingerprints the request body so a reused key cannot
// replay a response produced for different input.
func requestDigest(req interface{}) (string, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// callerSubject scopes cached responses to the authenticated principal.
// Calls without claims (public server) share the anonymous scope.
func callerSubject(ctx context.Context) string {
	if claims, ok := authmw.ClaimsFromContext(ctx); ok && claims.ID != "" {
		return claims.ID
	}
	return "anonymous"
}

// IdempotencyInterceptor replays the stored response for a repeated
// Idempotency-Key from the same caller on the same method. Reusing a key
// with a different request body is rejected. Responses are cached as JSON
// and replayed as json.RawMessage, so the server must use the JSON codec.
// Failed calls are not cached. Methods listed in skip always run.
func IdempotencyInterceptor(cache ResponseCache, skip ...string) grpc.UnaryServerInterceptor {
	skipped := make(map[string]bool, len(skip))
	for _, m := range skip {
		skipped[m] = true
	}

	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if skipped[info.FullMethod] {
			return handler(ctx, req)
		}

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.InvalidArgument, "metadata is required")
		}

		keys := md.Get(IdempotencyHeader)
		if len(keys) == 0 || keys[0] == "" {
			return handler(ctx, req)
		}
		key := idempotencyPrefix + info.FullMethod + ":" + callerSubject(ctx) + ":" + keys[0]

		digest, err := requestDigest(req)
		if err != nil {
			logger.Logger.Error("Failed to digest request for idempotency", zap.Error(err))
			return handler(ctx, req)
		}

		if data, ok := cache.GetBytes(ctx, key); ok {
			var cached cachedResponse
			if err := json.Unmarshal(data, &cached); err != nil {
				logger.Logger.Warn("Dropping unreadable idempotency entry", zap.String("key", keys[0]), zap.Error(err))
			} else if cached.Digest != digest {
				return nil, status.Error(codes.InvalidArgument, "idempotency key was already used with a different request")
			} else {
				logger.Logger.Info("Returning cached response", zap.String("key", keys[0]), zap.String("method", info.FullMethod))
				return cached.Response, nil
			}
		}

		res, err := handler(ctx, req)
		if err != nil {
			return res, err
		}

		body, mErr := json.Marshal(res)
		if mErr == nil {
			var entry []byte
			entry, mErr = json.Marshal(cachedResponse{Digest: digest, Response: body})
			if mErr == nil {
				cache.SetBytes(ctx, key, entry, IdempotencyTTL)
				logger.Logger.Info("Successfully set idempotency data by key", zap.String("key", keys[0]))
				return res, nil
			}
		}
		logger.Logger.Error("Failed to marshal response for idempotency cache", zap.Error(mErr))
		return res, nil
	}
}
