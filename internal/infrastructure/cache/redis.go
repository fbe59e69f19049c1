package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/meetai-dev/meetai-backend/pkg/config"
)

// NewRedisClient creates a new Redis client and verifies the connection
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Println("✅ Redis connected successfully")

	return client, nil
}

// RedisSeenSet is a Redis-backed SeenSet shared across instances
type RedisSeenSet struct {
	client *redis.Client
	prefix string
}

// NewRedisSeenSet creates a seen set backed by the given Redis client
func NewRedisSeenSet(client *redis.Client) *RedisSeenSet {
	return &RedisSeenSet{
		client: client,
		prefix: "webhook:seen:",
	}
}

func (s *RedisSeenSet) CheckAndMark(ctx context.Context, key string, window time.Duration) (bool, error) {
	// SETNX sets the key only when absent, so a false result means the
	// identifier was already recorded within the window.
	added, err := s.client.SetNX(ctx, s.prefix+key, "1", window).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check seen set: %w", err)
	}
	return !added, nil
}
