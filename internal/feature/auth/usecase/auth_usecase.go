package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"fitness_backend/internal/feature/auth/domain/entity"
	jwtmw "fitness_backend/internal/platform/jwt"
	"fitness_backend/internal/shared/validation"
)

const (
	// minPasswordLength はパスワードの最低文字数を定義します。
	minPasswordLength = 8
	maxUsernameLength = 150
	maxNameLength     = 150
	maxUserAgentLen   = 512
)

var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)

// dummyHash is compared against when the user does not exist so that
// Login takes the same time for unknown and known usernames.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type UserRepository interface {
	// Create persists a new user. It returns ErrUsernameAlreadyExists or
	// ErrEmailAlreadyExists when a unique constraint is violated.
	Create(ctx context.Context, user *entity.User) error

	// FindByUsername returns ErrUserNotFound if no user has the username.
	FindByUsername(ctx context.Context, username string) (*entity.User, error)

	// FindByID returns ErrUserNotFound if no user has the ID.
	FindByID(ctx context.Context, id uint) (*entity.User, error)

	// ExistsByEmail reports whether a user with the email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// RefreshTokenRepository stores the ledger of issued refresh tokens.
type RefreshTokenRepository interface {
	// Create records a newly issued refresh token.
	Create(ctx context.Context, token *entity.RefreshToken) error

	// FindByID returns ErrRefreshTokenNotFound for unknown IDs.
	FindByID(ctx context.Context, id string) (*entity.RefreshToken, error)

	// Revoke marks an active token as revoked. It returns ErrTokenRevoked if
	// the token was already revoked and ErrRefreshTokenNotFound if unknown.
	Revoke(ctx context.Context, id string) error

	// RevokeAllByUserID revokes every active token of the user.
	RevokeAllByUserID(ctx context.Context, userID uint) error

	// CountByUserID returns the number of active tokens of the user.
	CountByUserID(ctx context.Context, userID uint) (int64, error)

	// DeleteOldestByUserID deletes the user's oldest active token.
	DeleteOldestByUserID(ctx context.Context, userID uint) error

	// DeleteExpired removes expired tokens and returns how many were removed.
	DeleteExpired(ctx context.Context) (int64, error)
}

// TokenManager signs and parses JWTs.
type TokenManager interface {
	GenerateAccessToken(userID uint, username string) (string, error)
	GenerateRefreshToken(userID uint, username string) (jwtmw.IssuedToken, error)
	ParseRefreshToken(token string) (*jwtmw.Claims, error)
}

// RegisterInput is the registration payload after transport decoding.
type RegisterInput struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Password  string
	Password2 string
}

// ClientMeta describes the client performing a login.
type ClientMeta struct {
	UserAgent string
	IPAddress string
}

// TokenPair is returned by a successful login.
type TokenPair struct {
	Access  string
	Refresh string
}

// AuthUsecase implements registration and the token lifecycle.
type AuthUsecase struct {
	users       UserRepository
	tokens      RefreshTokenRepository
	jwt         TokenManager
	maxSessions int
	hashCost    int
}

// NewAuthUsecase creates an AuthUsecase. maxSessions caps the number of
// active refresh tokens per user; 0 disables the cap.
func NewAuthUsecase(users UserRepository, tokens RefreshTokenRepository, jwt TokenManager, maxSessions int) *AuthUsecase {
	return &AuthUsecase{
		users:       users,
		tokens:      tokens,
		jwt:         jwt,
		maxSessions: maxSessions,
		hashCost:    bcrypt.DefaultCost,
	}
}

// validatePassword はパスワードがセキュリティ要件を満たしているかチェックします。
func validatePassword(password, username string, errs validation.Errors) {
	if utf8.RuneCountInString(password) < minPasswordLength {
		errs.Add("password", fmt.Sprintf("This password is too short. It must contain at least %d characters.", minPasswordLength))
	}
	if password != "" && strings.Trim(password, "0123456789") == "" {
		errs.Add("password", "This password is entirely numeric.")
	}
	if username != "" && strings.EqualFold(password, username) {
		errs.Add("password", "The password is too similar to the username.")
	}
}

func (u *AuthUsecase) validateRegistration(ctx context.Context, in RegisterInput) (validation.Errors, error) {
	errs := validation.Errors{}

	switch {
	case in.Username == "":
		errs.Add("username", "This field is required.")
	case utf8.RuneCountInString(in.Username) > maxUsernameLength:
		errs.Add("username", fmt.Sprintf("Ensure this field has no more than %d characters.", maxUsernameLength))
	case !usernamePattern.MatchString(in.Username):
		errs.Add("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	}
	if utf8.RuneCountInString(in.FirstName) > maxNameLength {
		errs.Add("first_name", fmt.Sprintf("Ensure this field has no more than %d characters.", maxNameLength))
	}
	if utf8.RuneCountInString(in.LastName) > maxNameLength {
		errs.Add("last_name", fmt.Sprintf("Ensure this field has no more than %d characters.", maxNameLength))
	}

	if in.Password != in.Password2 {
		errs.Add("password", "Password fields didn't match.")
	}
	validatePassword(in.Password, in.Username, errs)

	if _, ok := errs["username"]; !ok {
		_, err := u.users.FindByUsername(ctx, in.Username)
		switch {
		case err == nil:
			errs.Add("username", "A user with that username already exists.")
		case !errors.Is(err, ErrUserNotFound):
			return nil, err
		}
	}
	if in.Email == "" {
		errs.Add("email", "This field is required.")
	} else {
		exists, err := u.users.ExistsByEmail(ctx, in.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			errs.Add("email", "This email is already registered.")
		}
	}
	return errs, nil
}

// Register validates the input, hashes the password and creates the user.
// Validation problems are returned as validation.Errors; no user is created
// in that case.
func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	errs, err := u.validateRegistration(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("failed to validate registration: %w", err)
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), u.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		Username:  in.Username,
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Password:  string(hashed),
		IsActive:  true,
	}
	if err := u.users.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration.
		switch {
		case errors.Is(err, ErrUsernameAlreadyExists):
			return nil, validation.Errors{"username": {"A user with that username already exists."}}
		case errors.Is(err, ErrEmailAlreadyExists):
			return nil, validation.Errors{"email": {"This email is already registered."}}
		}
		return nil, err
	}
	return user, nil
}

// CheckPassword reports whether password matches the user's stored hash.
func CheckPassword(user *entity.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) == nil
}

// Login はユーザーを認証し、成功時にアクセストークンとリフレッシュトークンを返します。
// タイミング攻撃を防止するため、ユーザーが存在しない場合でもbcrypt比較を実行します。
func (u *AuthUsecase) Login(ctx context.Context, username, password string, meta ClientMeta) (*TokenPair, error) {
	user, err := u.users.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	passwordHash := dummyHash
	if err == nil {
		passwordHash = user.Password
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))

	if err != nil || compareErr != nil || !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	if err := u.enforceSessionLimit(ctx, user.ID); err != nil {
		return nil, err
	}

	access, err := u.jwt.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := u.jwt.GenerateRefreshToken(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	record := &entity.RefreshToken{
		ID:        refresh.ID,
		UserID:    user.ID,
		UserAgent: truncate(meta.UserAgent, maxUserAgentLen),
		IPAddress: meta.IPAddress,
		CreatedAt: time.Now(),
		ExpiresAt: refresh.ExpiresAt,
	}
	if err := u.tokens.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to record refresh token: %w", err)
	}

	return &TokenPair{Access: access, Refresh: refresh.Token}, nil
}

// enforceSessionLimit deletes the oldest refresh tokens until there is room
// for one more.
func (u *AuthUsecase) enforceSessionLimit(ctx context.Context, userID uint) error {
	if u.maxSessions <= 0 {
		return nil
	}
	count, err := u.tokens.CountByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to count sessions: %w", err)
	}
	for ; count >= int64(u.maxSessions); count-- {
		if err := u.tokens.DeleteOldestByUserID(ctx, userID); err != nil {
			return fmt.Errorf("failed to delete oldest session: %w", err)
		}
	}
	return nil
}

// activeRefreshToken parses a refresh token and checks it against the
// ledger. The ledger is consulted on every call, so a revoked token is
// rejected immediately.
func (u *AuthUsecase) activeRefreshToken(ctx context.Context, token string) (*jwtmw.Claims, error) {
	claims, err := u.jwt.ParseRefreshToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRefreshToken, err)
	}

	record, err := u.tokens.FindByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, ErrRefreshTokenNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to load refresh token: %w", err)
	}
	if record.UserID != claims.UserID {
		return nil, ErrInvalidRefreshToken
	}

	switch record.State() {
	case entity.RefreshTokenRevoked:
		return nil, ErrTokenRevoked
	case entity.RefreshTokenExpired:
		return nil, ErrTokenExpired
	}
	return claims, nil
}

// Refresh exchanges an active refresh token for a new access token.
func (u *AuthUsecase) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := u.activeRefreshToken(ctx, refreshToken)
	if err != nil {
		return "", err
	}

	user, err := u.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", ErrInvalidRefreshToken
		}
		return "", fmt.Errorf("failed to look up user: %w", err)
	}
	if !user.IsActive {
		return "", ErrInvalidRefreshToken
	}

	access, err := u.jwt.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}
	return access, nil
}

// Logout revokes the caller's refresh token. The token must belong to
// userID. Revoking an already revoked token returns ErrTokenRevoked.
func (u *AuthUsecase) Logout(ctx context.Context, userID uint, refreshToken string) error {
	claims, err := u.activeRefreshToken(ctx, refreshToken)
	if err != nil {
		return err
	}
	if claims.UserID != userID {
		return ErrInvalidRefreshToken
	}

	if err := u.tokens.Revoke(ctx, claims.ID); err != nil {
		if errors.Is(err, ErrTokenRevoked) || errors.Is(err, ErrRefreshTokenNotFound) {
			return ErrTokenRevoked
		}
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// LogoutAll revokes every active refresh token of the user.
func (u *AuthUsecase) LogoutAll(ctx context.Context, userID uint) error {
	if err := u.tokens.RevokeAllByUserID(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}
	return nil
}

// truncate keeps at most n characters of s.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
