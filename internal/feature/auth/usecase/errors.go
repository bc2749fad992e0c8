// Package usecase implements the business logic for the auth feature.
package usecase

import "errors"

var (
	// ErrUserNotFound is returned when a user cannot be found by username or ID.
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameAlreadyExists is returned when the username is already taken.
	ErrUsernameAlreadyExists = errors.New("username already exists")

	// ErrEmailAlreadyExists is returned when attempting to create a user with an email that already exists.
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrInvalidCredentials is returned by Login for unknown users, wrong
	// passwords and inactive accounts alike.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrRefreshTokenNotFound is returned when a refresh token ID is not in the ledger.
	ErrRefreshTokenNotFound = errors.New("refresh token not found")

	// ErrTokenRevoked is returned when attempting to use or revoke a revoked refresh token.
	ErrTokenRevoked = errors.New("token is blacklisted")

	// ErrTokenExpired is returned when attempting to use an expired refresh token.
	ErrTokenExpired = errors.New("token is expired")

	// ErrInvalidRefreshToken is returned when a refresh token is malformed,
	// badly signed, of the wrong type, or owned by another user.
	ErrInvalidRefreshToken = errors.New("token is invalid")
)
