package adapters

import (
	"time"

	"gorm.io/gorm"

	"fitness_backend/internal/feature/auth/domain/entity"
)

// idxUserActive covers the per-user "active token" lookups used by the
// session cap (user_id, revoked_at IS NULL, expires_at > now).
const idxUserActive = "idx_refresh_tokens_user_active"

// RefreshTokenModel is the GORM model for the refresh_tokens table.
// expires_at also has its own index for the purge job.
type RefreshTokenModel struct {
	ID        string     `gorm:"primaryKey;size:64"`
	UserID    uint       `gorm:"not null;index:idx_refresh_tokens_user_active,priority:1"`
	UserAgent string     `gorm:"size:512"`
	IPAddress string     `gorm:"size:45"` // IPv6 max length
	CreatedAt time.Time  `gorm:"not null"`
	ExpiresAt time.Time  `gorm:"not null;index;index:idx_refresh_tokens_user_active,priority:3"`
	RevokedAt *time.Time `gorm:"index:idx_refresh_tokens_user_active,priority:2"`
}

// activeForUser restricts a query to userID's tokens that are neither
// revoked nor expired at now. Matches entity.RefreshToken.IsValid.
func activeForUser(userID uint, now time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ? AND revoked_at IS NULL AND expires_at > ?", userID, now)
	}
}

// TableName returns the table name for GORM.
func (RefreshTokenModel) TableName() string {
	return "refresh_tokens"
}

// ToEntity converts the GORM model to a domain entity.
func (m *RefreshTokenModel) ToEntity() *entity.RefreshToken {
	return &entity.RefreshToken{
		ID:        m.ID,
		UserID:    m.UserID,
		UserAgent: m.UserAgent,
		IPAddress: m.IPAddress,
		CreatedAt: m.CreatedAt,
		ExpiresAt: m.ExpiresAt,
		RevokedAt: m.RevokedAt,
	}
}

// RefreshTokenModelFromEntity converts a domain entity to a GORM model.
func RefreshTokenModelFromEntity(t *entity.RefreshToken) *RefreshTokenModel {
	return &RefreshTokenModel{
		ID:        t.ID,
		UserID:    t.UserID,
		UserAgent: t.UserAgent,
		IPAddress: t.IPAddress,
		CreatedAt: t.CreatedAt,
		ExpiresAt: t.ExpiresAt,
		RevokedAt: t.RevokedAt,
	}
}
