// Package redisstore is an optional pkg/store.GameCache backend, adapted
// from shadowmesh's pkg/persistence/redis.go RedisCache (same
// NewClient/Ping/Set/Get shape, repointed from caching discovered peers to
// caching title-id-to-name lookups).
package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config mirrors shadowmesh's RedisCacheConfig.
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration // zero means "never expire"
}

// Store is a Redis-backed store.GameCache.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis and verifies the connection with a PING, exactly as
// shadowmesh's NewRedisCache does.
func New(ctx context.Context, cfg Config) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redisstore: connect: %w", err)
	}
	return &Store{client: client, ttl: cfg.TTL}, nil
}

func titleKey(titleID string) string { return fmt.Sprintf("title:%s", titleID) }

// SaveTitleName implements store.GameCache.
func (s *Store) SaveTitleName(ctx context.Context, titleID, name string) error {
	return s.client.Set(ctx, titleKey(titleID), name, s.ttl).Err()
}

// LookupTitleName implements store.GameCache.
func (s *Store) LookupTitleName(ctx context.Context, titleID string) (string, bool, error) {
	name, err := s.client.Get(ctx, titleKey(titleID)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return name, true, nil
}

// Close closes the underlying Redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
