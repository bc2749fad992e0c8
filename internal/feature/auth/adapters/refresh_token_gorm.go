package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"fitness_backend/internal/feature/auth/domain/entity"
	"fitness_backend/internal/feature/auth/usecase"
)

// refreshTokenGorm is the SQL implementation of the refresh token ledger.
type refreshTokenGorm struct {
	db *gorm.DB
}

// Compile-time check to ensure refreshTokenGorm implements RefreshTokenRepository.
var _ usecase.RefreshTokenRepository = (*refreshTokenGorm)(nil)

// NewRefreshTokenRepository creates a new instance of refreshTokenGorm.
func NewRefreshTokenRepository(db *gorm.DB) *refreshTokenGorm {
	return &refreshTokenGorm{db: db}
}

// Create persists a newly issued refresh token.
func (r *refreshTokenGorm) Create(ctx context.Context, token *entity.RefreshToken) error {
	model := RefreshTokenModelFromEntity(token)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByID retrieves a refresh token by its jti.
func (r *refreshTokenGorm) FindByID(ctx context.Context, id string) (*entity.RefreshToken, error) {
	var model RefreshTokenModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrRefreshTokenNotFound
		}
		return nil, err
	}
	return model.ToEntity(), nil
}

// Revoke marks an active token as revoked. The conditional update makes
// concurrent revocations of the same token resolve to a single winner.
func (r *refreshTokenGorm) Revoke(ctx context.Context, id string) error {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&RefreshTokenModel{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", now)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
		return usecase.ErrTokenRevoked
	}
	return nil
}

// RevokeAllByUserID revokes all active tokens for a given user.
func (r *refreshTokenGorm) RevokeAllByUserID(ctx context.Context, userID uint) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&RefreshTokenModel{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", now).Error
}

// DeleteExpired removes all expired tokens from storage. Revoked tokens are
// kept until they expire so that they keep being rejected.
func (r *refreshTokenGorm) DeleteExpired(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", time.Now()).
		Delete(&RefreshTokenModel{})
	return result.RowsAffected, result.Error
}

// CountByUserID returns the number of active tokens for a user.
func (r *refreshTokenGorm) CountByUserID(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&RefreshTokenModel{}).
		Scopes(activeForUser(userID, time.Now())).
		Count(&count).Error
	return count, err
}

// DeleteOldestByUserID deletes the oldest active token for a user.
func (r *refreshTokenGorm) DeleteOldestByUserID(ctx context.Context, userID uint) error {
	var oldest RefreshTokenModel
	if err := r.db.WithContext(ctx).
		Scopes(activeForUser(userID, time.Now())).
		Order("created_at ASC").
		First(&oldest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil // nothing to delete
		}
		return err
	}

	return r.db.WithContext(ctx).Delete(&RefreshTokenModel{}, "id = ?", oldest.ID).Error
}
