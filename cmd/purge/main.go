// purge は期限切れのリフレッシュトークンを台帳から削除するバッチです。
// cron などから定期実行する想定です。
package main

import (
	"context"
	"log"
	"os"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"fitness_backend/internal/app/di"
	"fitness_backend/internal/platform/config"
	"fitness_backend/internal/platform/db"
	"fitness_backend/internal/platform/logger"
	infraredis "fitness_backend/internal/platform/redis"
)

const purgeTimeout = 5 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	l := logger.New(cfg.LogLevel, cfg.LogFormat)

	gdb, err := db.Open(cfg.Database)
	if err != nil {
		l.Error("failed to open database", "error", err)
		os.Exit(1)
	}

	var rdb *redisv9.Client
	if cfg.Redis.Enabled() {
		rdb, err = infraredis.NewRedisClient(cfg.Redis)
		if err != nil {
			// サーバーと違い、別の台帳を掃除しても意味がないので終了する
			l.Error("Redis unavailable", "error", err)
			os.Exit(1)
		}
		defer func() { _ = rdb.Close() }()
	}

	ctx, cancel := context.WithTimeout(context.Background(), purgeTimeout)
	defer cancel()

	start := time.Now()
	n, err := di.NewRefreshTokenRepository(rdb, gdb).DeleteExpired(ctx)
	if err != nil {
		l.Error("purge failed", "error", err, "deleted", n)
		os.Exit(1)
	}
	l.Info("purge completed", "deleted", n, "elapsed", time.Since(start))
}
