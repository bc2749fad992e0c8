// Package session provides a Redis-backed refresh token ledger.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"fitness_backend/internal/feature/auth/domain/entity"
	"fitness_backend/internal/feature/auth/usecase"
)

// maxRevokeAttempts bounds optimistic-lock retries in Revoke.
const maxRevokeAttempts = 3

// RefreshTokenRedis implements usecase.RefreshTokenRepository using Redis.
// Each token is stored under prefix:<jti> with a TTL equal to its remaining
// lifetime; prefix:user:<id> holds the set of a user's token IDs.
type RefreshTokenRedis struct {
	client *redis.Client
	prefix string
}

var _ usecase.RefreshTokenRepository = (*RefreshTokenRedis)(nil)

// record is the JSON shape stored in Redis.
type record struct {
	ID        string     `json:"id"`
	UserID    uint       `json:"user_id"`
	UserAgent string     `json:"user_agent"`
	IPAddress string     `json:"ip_address"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

func recordFromEntity(t *entity.RefreshToken) record {
	return record{
		ID:        t.ID,
		UserID:    t.UserID,
		UserAgent: t.UserAgent,
		IPAddress: t.IPAddress,
		CreatedAt: t.CreatedAt,
		ExpiresAt: t.ExpiresAt,
		RevokedAt: t.RevokedAt,
	}
}

func (r record) toEntity() *entity.RefreshToken {
	return &entity.RefreshToken{
		ID:        r.ID,
		UserID:    r.UserID,
		UserAgent: r.UserAgent,
		IPAddress: r.IPAddress,
		CreatedAt: r.CreatedAt,
		ExpiresAt: r.ExpiresAt,
		RevokedAt: r.RevokedAt,
	}
}

// NewRefreshTokenRedis creates a new RefreshTokenRedis instance.
func NewRefreshTokenRedis(client *redis.Client, prefix string) *RefreshTokenRedis {
	return &RefreshTokenRedis{
		client: client,
		prefix: prefix,
	}
}

// tokenKey returns the Redis key for a token.
func (r *RefreshTokenRedis) tokenKey(id string) string {
	return fmt.Sprintf("%s:%s", r.prefix, id)
}

// userTokensKey returns the Redis key for a user's token set.
func (r *RefreshTokenRedis) userTokensKey(userID uint) string {
	return fmt.Sprintf("%s:user:%d", r.prefix, userID)
}

// Create persists a newly issued refresh token.
func (r *RefreshTokenRedis) Create(ctx context.Context, token *entity.RefreshToken) error {
	data, err := json.Marshal(recordFromEntity(token))
	if err != nil {
		return fmt.Errorf("failed to marshal refresh token: %w", err)
	}

	ttl := time.Until(token.ExpiresAt)
	if ttl <= 0 {
		return errors.New("refresh token already expired")
	}

	if err := r.client.Set(ctx, r.tokenKey(token.ID), data, ttl).Err(); err != nil {
		return err
	}
	return r.client.SAdd(ctx, r.userTokensKey(token.UserID), token.ID).Err()
}

// FindByID retrieves a refresh token by its jti.
func (r *RefreshTokenRedis) FindByID(ctx context.Context, id string) (*entity.RefreshToken, error) {
	return r.get(ctx, r.client, id)
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (r *RefreshTokenRedis) get(ctx context.Context, c getter, id string) (*entity.RefreshToken, error) {
	data, err := c.Get(ctx, r.tokenKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, usecase.ErrRefreshTokenNotFound
		}
		return nil, err
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal refresh token: %w", err)
	}
	return rec.toEntity(), nil
}

// findByUserID returns the ledger entries still present for a user and
// drops set members whose keys have expired.
func (r *RefreshTokenRedis) findByUserID(ctx context.Context, userID uint) ([]*entity.RefreshToken, error) {
	ids, err := r.client.SMembers(ctx, r.userTokensKey(userID)).Result()
	if err != nil {
		return nil, err
	}

	tokens := make([]*entity.RefreshToken, 0, len(ids))
	for _, id := range ids {
		token, err := r.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, usecase.ErrRefreshTokenNotFound) {
				r.client.SRem(ctx, r.userTokensKey(userID), id)
				continue
			}
			return nil, err
		}
		tokens = append(tokens, token)
	}
	return tokens, nil
}

// Revoke marks an active token as revoked. WATCH on the token key makes a
// concurrent second revocation observe the first one and fail.
func (r *RefreshTokenRedis) Revoke(ctx context.Context, id string) error {
	key := r.tokenKey(id)

	txf := func(tx *redis.Tx) error {
		token, err := r.get(ctx, tx, id)
		if err != nil {
			return err
		}
		if token.IsRevoked() {
			return usecase.ErrTokenRevoked
		}

		now := time.Now()
		token.RevokedAt = &now
		data, err := json.Marshal(recordFromEntity(token))
		if err != nil {
			return fmt.Errorf("failed to marshal refresh token: %w", err)
		}

		// 失効済みトークンも有効期限まで保持して再利用を拒否する
		ttl := time.Until(token.ExpiresAt)
		if ttl < time.Second {
			ttl = time.Second
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, ttl)
			return nil
		})
		return err
	}

	for i := 0; i < maxRevokeAttempts; i++ {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("revoke %s: %w", id, redis.TxFailedErr)
}

// RevokeAllByUserID revokes all active tokens for a given user.
func (r *RefreshTokenRedis) RevokeAllByUserID(ctx context.Context, userID uint) error {
	tokens, err := r.findByUserID(ctx, userID)
	if err != nil {
		return err
	}

	for _, t := range tokens {
		if t.IsRevoked() {
			continue
		}
		err := r.Revoke(ctx, t.ID)
		if err != nil &&
			!errors.Is(err, usecase.ErrTokenRevoked) &&
			!errors.Is(err, usecase.ErrRefreshTokenNotFound) {
			return err
		}
	}
	return nil
}

// DeleteExpired prunes user sets of IDs whose token keys Redis has already
// expired. It returns the number of pruned IDs.
func (r *RefreshTokenRedis) DeleteExpired(ctx context.Context) (int64, error) {
	var pruned int64
	pattern := r.prefix + ":user:*"

	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		setKey := iter.Val()
		ids, err := r.client.SMembers(ctx, setKey).Result()
		if err != nil {
			return pruned, err
		}
		for _, id := range ids {
			n, err := r.client.Exists(ctx, r.tokenKey(id)).Result()
			if err != nil {
				return pruned, err
			}
			if n > 0 {
				continue
			}
			if err := r.client.SRem(ctx, setKey, id).Err(); err != nil {
				return pruned, err
			}
			pruned++
		}
	}
	if err := iter.Err(); err != nil {
		return pruned, err
	}
	return pruned, nil
}

// CountByUserID returns the number of active tokens for a user.
func (r *RefreshTokenRedis) CountByUserID(ctx context.Context, userID uint) (int64, error) {
	tokens, err := r.findByUserID(ctx, userID)
	if err != nil {
		return 0, err
	}

	var n int64
	for _, t := range tokens {
		if t.IsValid() {
			n++
		}
	}
	return n, nil
}

// DeleteOldestByUserID deletes the oldest active token for a user.
func (r *RefreshTokenRedis) DeleteOldestByUserID(ctx context.Context, userID uint) error {
	tokens, err := r.findByUserID(ctx, userID)
	if err != nil {
		return err
	}

	var oldest *entity.RefreshToken
	for _, t := range tokens {
		if !t.IsValid() {
			continue
		}
		if oldest == nil || t.CreatedAt.Before(oldest.CreatedAt) {
			oldest = t
		}
	}
	if oldest == nil {
		return nil
	}

	if err := r.client.Del(ctx, r.tokenKey(oldest.ID)).Err(); err != nil {
		return err
	}
	return r.client.SRem(ctx, r.userTokensKey(userID), oldest.ID).Err()
}
