package cache

//go:generate go run go.uber.org/mock/mockgen -source=./cache.go -destination=./mocks/cache_mock.go -package=mocks

import (
	"context"
	"cowork/infras/otel"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	otelScopeName         = "cache"
	otelCacheKeyAttribute = "cache.key"

	clearBatchSize = 100

	Nil = redis.Nil
)

// RedisCache stores JSON values and short-lived owner locks. Durations are in seconds.
type RedisCache interface {
	Save(ctx context.Context, key string, value any, duration int) (err error)
	Get(ctx context.Context, key string, value any) (err error)
	Clear(ctx context.Context, pattern string) error
	Lock(ctx context.Context, key, owner string, duration int) (acquired bool, err error)
	Unlock(ctx context.Context, key, owner string) error
}

type redisCache struct {
	client *redis.Client
	otel   otel.Otel
}

func NewRedisCache(client *redis.Client, ot otel.Otel) RedisCache {
	return &redisCache{
		client: client,
		otel:   ot,
	}
}

func (cache *redisCache) newScope(ctx context.Context, operation, key string) (context.Context, otel.Scope) {
	ctx, scope := cache.otel.NewScope(ctx, otelScopeName, otelScopeName+"."+operation)
	scope.SetAttribute(otelCacheKeyAttribute, key)

	return ctx, scope
}

func seconds(duration int) time.Duration {
	return time.Duration(duration) * time.Second
}

// Clear removes every key matching pattern, unlinking them in batches as the scan proceeds.
func (cache *redisCache) Clear(ctx context.Context, pattern string) (err error) {
	ctx, scope := cache.newScope(ctx, "Clear", pattern)
	defer scope.End()
	defer scope.TraceIfError(&err)

	batch := make([]string, 0, clearBatchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}

		if err := cache.client.Unlink(ctx, batch...).Err(); err != nil {
			log.Error().Err(err).Str("pattern", pattern).Int("keys", len(batch)).Msg("failed to unlink cache keys")

			return fmt.Errorf("failed to delete cache value: %w", err)
		}

		batch = batch[:0]

		return nil
	}

	iter := cache.client.Scan(ctx, 0, pattern, clearBatchSize).Iterator()
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())

		if len(batch) == clearBatchSize {
			if err = flush(); err != nil {
				return err
			}
		}
	}

	if err = iter.Err(); err != nil {
		log.Error().Err(err).Str("pattern", pattern).Msg("failed to scan cache keys")

		return fmt.Errorf("failed to scan cache keys: %w", err)
	}

	return flush()
}

// Get decodes the cached JSON into value. A *string receives the raw value.
// A missing key returns an error wrapping Nil.
func (cache *redisCache) Get(ctx context.Context, key string, value any) (err error) {
	ctx, scope := cache.newScope(ctx, "Get", key)
	defer scope.End()
	defer scope.TraceIfError(&err)

	raw, err := cache.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Error().Err(err).Str("key", key).Msg("failed to get cache")
		}

		return fmt.Errorf("failed to get cache value: %w", err)
	}

	if str, ok := value.(*string); ok {
		*str = string(raw)

		return nil
	}

	if err = json.Unmarshal(raw, value); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to unmarshal cache")

		return fmt.Errorf("failed to unmarshal cache value: %w", err)
	}

	return nil
}

// Save stores value for duration seconds. Strings are stored as is, anything else as JSON.
func (cache *redisCache) Save(ctx context.Context, key string, value any, duration int) (err error) {
	ctx, scope := cache.newScope(ctx, "Save", key)
	defer scope.End()
	defer scope.TraceIfError(&err)

	var payload []byte

	if str, ok := value.(string); ok {
		payload = []byte(str)
	} else if payload, err = json.Marshal(value); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to marshal cache")

		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	if err = cache.client.Set(ctx, key, payload, seconds(duration)).Err(); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to set cache")

		return fmt.Errorf("failed to set cache value: %w", err)
	}

	log.Debug().Str("key", key).Int("ttl", duration).Msg("cache saved")

	return nil
}

// unlockScript deletes the key only while it is still held by the caller.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Lock takes key for owner unless someone else holds it.
func (cache *redisCache) Lock(ctx context.Context, key, owner string, duration int) (acquired bool, err error) {
	ctx, scope := cache.newScope(ctx, "Lock", key)
	defer scope.End()
	defer scope.TraceIfError(&err)

	acquired, err = cache.client.SetNX(ctx, key, owner, seconds(duration)).Result()
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to acquire lock")

		return false, fmt.Errorf("failed to acquire lock: %w", err)
	}

	return acquired, nil
}

// Unlock releases key if owner still holds it. Releasing an expired or foreign lock is a no-op.
func (cache *redisCache) Unlock(ctx context.Context, key, owner string) (err error) {
	ctx, scope := cache.newScope(ctx, "Unlock", key)
	defer scope.End()
	defer scope.TraceIfError(&err)

	err = unlockScript.Run(ctx, cache.client, []string{key}, owner).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		log.Error().Err(err).Str("key", key).Msg("failed to release lock")

		return fmt.Errorf("failed to release lock: %w", err)
	}

	return nil
}
