// Package jwtmw issues and verifies the HS256 access and refresh tokens and
// provides the gin middleware that guards authenticated routes.
package jwtmw

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token types carried in the "token_type" claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	// ErrInvalidToken wraps every parsing, signature and expiry failure.
	ErrInvalidToken = errors.New("invalid token")
	// ErrWrongTokenType is returned when a refresh token is presented as an
	// access token or vice versa.
	ErrWrongTokenType = errors.New("wrong token type")
)

// Claims is the payload of both token types.
type Claims struct {
	UserID    uint   `json:"user_id"`
	Username  string `json:"username,omitempty"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// IssuedToken is a freshly signed token together with the claims needed to
// record it.
type IssuedToken struct {
	Token     string
	ID        string
	ExpiresAt time.Time
}

// Manager signs and verifies tokens with a shared HMAC secret.
type Manager struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewManager creates a Manager. accessTTL should be short (minutes),
// refreshTTL long (hours or days).
func NewManager(secret, issuer string, accessTTL, refreshTTL time.Duration) *Manager {
	return &Manager{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// AccessTTL returns the configured access token lifetime.
func (m *Manager) AccessTTL() time.Duration {
	return m.accessTTL
}

// GenerateAccessToken creates a signed access token for the given user.
func (m *Manager) GenerateAccessToken(userID uint, username string) (string, error) {
	issued, err := m.generate(userID, username, TokenTypeAccess, m.accessTTL)
	if err != nil {
		return "", err
	}
	return issued.Token, nil
}

// GenerateRefreshToken creates a signed refresh token. The returned ID must
// be recorded so the token can later be revoked.
func (m *Manager) GenerateRefreshToken(userID uint, username string) (IssuedToken, error) {
	return m.generate(userID, username, TokenTypeRefresh, m.refreshTTL)
}

func (m *Manager) generate(userID uint, username, tokenType string, ttl time.Duration) (IssuedToken, error) {
	now := m.now()
	exp := now.Add(ttl)
	claims := Claims{
		UserID:    userID,
		Username:  username,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return IssuedToken{}, fmt.Errorf("failed to sign token: %w", err)
	}

	// exp is serialized with second precision
	return IssuedToken{Token: signed, ID: claims.ID, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// ParseAccessToken verifies an access token and returns its claims.
func (m *Manager) ParseAccessToken(tokenStr string) (*Claims, error) {
	return m.parse(tokenStr, TokenTypeAccess)
}

// ParseRefreshToken verifies a refresh token's signature, expiry and type.
// It does not consult the revocation ledger.
func (m *Manager) ParseRefreshToken(tokenStr string) (*Claims, error) {
	return m.parse(tokenStr, TokenTypeRefresh)
}

func (m *Manager) parse(tokenStr, wantType string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		// Only HMAC is accepted; this also rejects "none".
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.UserID == 0 || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != wantType {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}
