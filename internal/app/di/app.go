package di

import (
	"context"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	activityadapters "fitness_backend/internal/feature/activities/adapters"
	activityhandler "fitness_backend/internal/feature/activities/transport/handler"
	activityusecase "fitness_backend/internal/feature/activities/usecase"
	authadapters "fitness_backend/internal/feature/auth/adapters"
	authhandler "fitness_backend/internal/feature/auth/transport/handler"
	authusecase "fitness_backend/internal/feature/auth/usecase"
	"fitness_backend/internal/platform/config"
	healthhandler "fitness_backend/internal/platform/http/handler"
	jwtmw "fitness_backend/internal/platform/jwt"
	"fitness_backend/internal/platform/metrics"
)

// App bundles everything the router needs.
type App struct {
	Auth       *authhandler.AuthHandler
	Activities *activityhandler.ActivityHandler
	Tokens     *jwtmw.Manager
	Metrics    *metrics.Metrics // nil when metrics are disabled
	Checks     map[string]healthhandler.Check
}

// NewApp wires repositories, usecases and handlers. rdb may be nil.
func NewApp(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *App {
	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	tokens := jwtmw.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)

	// Repository
	userRepo := authadapters.NewUserRepository(db)
	ledger := NewRefreshTokenRepository(rdb, db)
	activityRepo := activityadapters.NewActivityRepository(db)

	// Usecase
	authUC := authusecase.NewAuthUsecase(userRepo, ledger, tokens, cfg.MaxSessionsPerUser)
	var recorder activityusecase.Recorder
	if m != nil {
		recorder = m
	}
	activityUC := activityusecase.NewActivityUsecase(activityRepo, recorder)

	checks := map[string]healthhandler.Check{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}
	}

	return &App{
		Auth:       authhandler.NewAuthHandler(authUC),
		Activities: activityhandler.NewActivityHandler(activityUC),
		Tokens:     tokens,
		Metrics:    m,
		Checks:     checks,
	}
}
