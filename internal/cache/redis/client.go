package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/veriscan/backend/internal/metrics"
	"github.com/veriscan/backend/pkg/logger"
)

// Client caches resolved article content keyed by URL hash, so repeated
// submissions of the same URL skip the scrape/fallback chain.
type Client struct {
	client *redis.Client
	ttl    time.Duration
}

func NewClient(host string, port int, password string, db int, ttl time.Duration) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	_, err := client.Ping(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis client initialized", zap.String("addr", fmt.Sprintf("%s:%d", host, port)))

	return &Client{client: client, ttl: ttl}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) SetContent(ctx context.Context, urlHash string, content interface{}) error {
	data, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("failed to marshal content: %w", err)
	}

	err = c.client.Set(ctx, fmt.Sprintf("content:%s", urlHash), data, c.ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to set content cache: %w", err)
	}

	logger.Debug("Resolved content cached", zap.String("url_hash", urlHash))
	return nil
}

func (c *Client) GetContent(ctx context.Context, urlHash string, content interface{}) (bool, error) {
	data, err := c.client.Get(ctx, fmt.Sprintf("content:%s", urlHash)).Bytes()
	if err == redis.Nil {
		metrics.CacheMisses.WithLabelValues("content").Inc()
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get content cache: %w", err)
	}

	if err := json.Unmarshal(data, content); err != nil {
		return false, fmt.Errorf("failed to unmarshal content: %w", err)
	}

	metrics.CacheHits.WithLabelValues("content").Inc()
	logger.Debug("Resolved content cache hit", zap.String("url_hash", urlHash))
	return true, nil
}
