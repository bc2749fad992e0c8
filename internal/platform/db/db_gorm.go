// Package db はGORM接続の確立とマイグレーションを提供します。
package db

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	activityadapters "fitness_backend/internal/feature/activities/adapters"
	authadapters "fitness_backend/internal/feature/auth/adapters"
	"fitness_backend/internal/feature/auth/domain/entity"
	"fitness_backend/internal/platform/config"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	connectTimeout = 60 * time.Second
	retryInterval  = 3 * time.Second

	slowQueryThreshold = 200 * time.Millisecond
)

// ErrUnknownDriver is returned for a DB_DRIVER other than postgres or sqlite.
var ErrUnknownDriver = errors.New("unknown database driver")

// Opener opens a gorm connection for a DSN.
type Opener func(dsn string) (*gorm.DB, error)

// BuildDSN はPostgreSQL用のDSN文字列を生成します。DB_DSNが設定されていればそれを優先します。
func BuildDSN(cfg config.DatabaseConfig) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, sslmode)
}

// ConnectWithRetry はtimeoutまで一定間隔で接続を再試行します。
func ConnectWithRetry(dsn string, timeout time.Duration, opener Opener) (*gorm.DB, error) {
	return connectWithRetry(dsn, timeout, retryInterval, opener)
}

func connectWithRetry(dsn string, timeout, interval time.Duration, opener Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := opener(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().Add(interval).After(deadline) {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		slog.Warn("DB connect failed, retrying...", "error", err, "retry_in", interval)
		time.Sleep(interval)
	}
}

// newGormLogger writes gorm's warnings, errors and slow queries to w.
// "record not found" is a normal lookup result here and is not logged.
func newGormLogger(w gormlogger.Writer) gormlogger.Interface {
	return gormlogger.New(w, gormlogger.Config{
		SlowThreshold:             slowQueryThreshold,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// gormConfig はGORMのログをslogのデフォルトロガーへ流す設定を返します。
func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger: newGormLogger(slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn)),
	}
}

func openPostgres(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), gormConfig())
}

func openSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), gormConfig())
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLiteは単一ライターのため接続を1本に固定する（:memory:の共有にも必要）
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// Open は設定されたドライバーでDBに接続し、必要に応じてマイグレーションを実行します。
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)

	switch cfg.Driver {
	case DriverPostgres:
		db, err = ConnectWithRetry(BuildDSN(cfg), connectTimeout, openPostgres)
	case DriverSQLite:
		db, err = openSQLite(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	slog.Info("DB connection successful", "driver", cfg.Driver)

	if cfg.RunMigrations {
		if err := Migrate(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// Migrate はusers, refresh_tokens, activitiesテーブルを作成・更新します。
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&entity.User{},
		&authadapters.RefreshTokenModel{},
		&activityadapters.ActivityModel{},
	); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
