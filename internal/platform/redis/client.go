package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"go_hifz_keep/internal/config"
)

// Client は go-redis のクライアントにヘルスチェックと重複排除を足したもの
type Client struct {
	*redis.Client
}

// New は設定から Redis クライアントを作る。
// URL が空なら nil を返す (Redis 未設定)。
func New(cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{Client: client}, nil
}

// Health は接続が生きているか確認する
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

// Claim は key を ttl 付きで確保する。既に誰かが確保していれば false。
// レプリカ間で同じジョブを二重に実行しないために使う。
func (c *Client) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := c.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis SETNX %s: %w", key, err)
	}
	return ok, nil
}

func (c *Client) Close() error {
	return c.Client.Close()
}
