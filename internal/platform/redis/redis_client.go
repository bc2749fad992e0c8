package redis

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"fitness_backend/internal/platform/config"
)

// pingTimeout bounds the startup connectivity check.
const pingTimeout = 5 * time.Second

// NewRedisClient は設定からRedisクライアントを生成し、接続を確認します。
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	addr := cfg.Addr()

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	// 接続確認
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Error("Redis connection failed", "address", addr, "error", err)
		_ = rdb.Close()
		return nil, err
	}

	slog.Info("Redis connection successful", "address", addr)
	return rdb, nil
}
