package database

import (
	"context"
	"fmt"
	"time"

	"gatekeep-backend/config"

	"github.com/redis/go-redis/v9"
)

// NewRedis creates a redis client from the given config. It parses the URL
// and pings to verify connectivity before returning.
func NewRedis(cfg *config.RedisConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return client, nil
}
