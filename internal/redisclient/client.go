package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"marketplace-service/internal/models"

	"github.com/go-redis/redis/v8"
)

// Client wraps Redis as a read-through cache for per-shop revenue stats
type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int, ttl time.Duration) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb, ttl: ttl}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

func revenueKey(shopID int64) string {
	return fmt.Sprintf("revenue:%d", shopID)
}

// GetRevenueStats returns cached stats for a shop, or (nil, nil) on a miss
func (c *Client) GetRevenueStats(ctx context.Context, shopID int64) (*models.RevenueStats, error) {
	payload, err := c.rdb.Get(ctx, revenueKey(shopID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read revenue cache: %w", err)
	}

	var stats models.RevenueStats
	if err := json.Unmarshal(payload, &stats); err != nil {
		return nil, fmt.Errorf("failed to decode cached revenue stats: %w", err)
	}
	return &stats, nil
}

// SetRevenueStats caches stats for a shop with the configured TTL
func (c *Client) SetRevenueStats(ctx context.Context, shopID int64, stats *models.RevenueStats) error {
	payload, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to encode revenue stats: %w", err)
	}
	return c.rdb.Set(ctx, revenueKey(shopID), payload, c.ttl).Err()
}

// InvalidateRevenue drops a shop's cached stats. Called when an order is
// created for the shop or one of its orders changes status.
func (c *Client) InvalidateRevenue(ctx context.Context, shopID int64) error {
	return c.rdb.Del(ctx, revenueKey(shopID)).Err()
}
