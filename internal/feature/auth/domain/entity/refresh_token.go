package entity

import "time"

// RefreshTokenState is the lifecycle state of an issued refresh token.
type RefreshTokenState string

const (
	RefreshTokenActive  RefreshTokenState = "active"
	RefreshTokenRevoked RefreshTokenState = "revoked"
	RefreshTokenExpired RefreshTokenState = "expired"
)

// RefreshToken is the ledger entry recorded for every issued refresh token.
// A token whose ID is absent from the ledger is never honored.
type RefreshToken struct {
	ID        string     // JWT "jti" claim
	UserID    uint       // Owner of the token
	UserAgent string     // Client's User-Agent header at login
	IPAddress string     // Client's IP address at login
	CreatedAt time.Time  // Issue time
	ExpiresAt time.Time  // Same as the JWT "exp" claim
	RevokedAt *time.Time // Revocation time (nil while active)
}

// IsExpired returns true if the token has passed its expiration time.
func (t *RefreshToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

// IsRevoked returns true if the token has been revoked.
func (t *RefreshToken) IsRevoked() bool {
	return t.RevokedAt != nil
}

// State reports the token's lifecycle state. Revocation wins over expiry
// since it is terminal.
func (t *RefreshToken) State() RefreshTokenState {
	switch {
	case t.IsRevoked():
		return RefreshTokenRevoked
	case t.IsExpired():
		return RefreshTokenExpired
	default:
		return RefreshTokenActive
	}
}

// IsValid returns true if the token is neither expired nor revoked.
func (t *RefreshToken) IsValid() bool {
	return t.State() == RefreshTokenActive
}
