// Package di provides dependency injection factories for creating application components.
package di

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	authadapters "fitness_backend/internal/feature/auth/adapters"
	"fitness_backend/internal/feature/auth/usecase"
	"fitness_backend/internal/platform/session"
)

// refreshTokenPrefix namespaces ledger keys in Redis.
const refreshTokenPrefix = "refresh"

// NewRefreshTokenRepository creates a RefreshTokenRepository implementation.
// If Redis is available, it returns a Redis-backed implementation.
// Otherwise, it falls back to the SQL database.
func NewRefreshTokenRepository(rdb *redis.Client, db *gorm.DB) usecase.RefreshTokenRepository {
	if rdb != nil {
		return session.NewRefreshTokenRedis(rdb, refreshTokenPrefix)
	}
	return authadapters.NewRefreshTokenRepository(db)
}
