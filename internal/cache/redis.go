package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/config"
	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/logging"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "wallcraft:"

// Redis is a Cache backed by a Redis server.
type Redis struct {
	rdb *redis.Client
	log *logging.Logger
}

// NewRedis creates a Redis cache. RedisAddr may be a host:port or a
// redis:// URL. The connection is established lazily on first use.
func NewRedis(cfg config.CacheConfig, log *logging.Logger) (*Redis, error) {
	var opt *redis.Options
	if strings.HasPrefix(cfg.RedisAddr, "redis://") || strings.HasPrefix(cfg.RedisAddr, "rediss://") {
		parsed, err := redis.ParseURL(cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		opt = parsed
	} else {
		opt = &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}
	}
	return &Redis{rdb: redis.NewClient(opt), log: log.Sub("cache.redis")}, nil
}

// Ping checks connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.rdb.Get(ctx, keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (r *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.rdb.Set(ctx, keyPrefix+key, value, ttl).Err()
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}
