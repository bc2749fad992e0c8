package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"fitness_backend/internal/app/di"
	"fitness_backend/internal/app/router"
	"fitness_backend/internal/platform/config"
	"fitness_backend/internal/platform/db"
	"fitness_backend/internal/platform/logger"
	infraredis "fitness_backend/internal/platform/redis"
)

// shutdownTimeout は処理中リクエストの完了を待つ上限です。
const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	l := logger.New(cfg.LogLevel, cfg.LogFormat)

	// db
	gdb, err := db.Open(cfg.Database)
	if err != nil {
		l.Error("failed to open database", "error", err)
		os.Exit(1)
	}

	// Redis（未設定・接続失敗時はSQLのリフレッシュトークン台帳を使う）
	var rdb *redisv9.Client
	if cfg.Redis.Enabled() {
		if tmp, err := infraredis.NewRedisClient(cfg.Redis); err != nil {
			l.Warn("Redis unavailable. Falling back to SQL refresh token store.")
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					l.Error("failed to close Redis client", "error", err)
				}
			}()
		}
	}

	app := di.NewApp(cfg, gdb, rdb)

	// ルータ生成
	engine := router.NewRouter(app, router.Options{CORS: cfg.CORSEnabled, Logger: l})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		l.Info("server listening", "addr", cfg.HTTPAddr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("server stopped unexpectedly", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	l.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error("graceful shutdown failed", "error", err)
	}
}
