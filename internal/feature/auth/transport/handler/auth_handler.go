// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"fitness_backend/internal/api"
	"fitness_backend/internal/feature/auth/domain/entity"
	"fitness_backend/internal/feature/auth/transport/http/dto"
	"fitness_backend/internal/feature/auth/usecase"
	jwtmw "fitness_backend/internal/platform/jwt"
	"fitness_backend/internal/shared/validation"
)

const (
	DetailLoggedOut        = "User logged out successfully."
	DetailLoggedOutAll     = "All sessions logged out successfully."
	DetailTokenBlacklisted = "Token is blacklisted"
	DetailTokenInvalid     = "Token is invalid or expired"
)

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	// Register は新規ユーザーを登録します。入力不備はvalidation.Errorsで返します。
	Register(ctx context.Context, in usecase.RegisterInput) (*entity.User, error)
	// Login はユーザーを認証し、成功時にアクセストークンとリフレッシュトークンを返します。
	Login(ctx context.Context, username, password string, meta usecase.ClientMeta) (*usecase.TokenPair, error)
	// Refresh は有効なリフレッシュトークンと引き換えに新しいアクセストークンを返します。
	Refresh(ctx context.Context, refreshToken string) (string, error)
	// Logout はuserIDが所有するリフレッシュトークンを失効させます。
	Logout(ctx context.Context, userID uint, refreshToken string) error
	// LogoutAll はuserIDのすべてのリフレッシュトークンを失効させます。
	LogoutAll(ctx context.Context, userID uint) error
}

// AuthHandler は認証操作のHTTPリクエストを処理します。
// AuthUsecaseインターフェースに依存し、JSONリクエスト/レスポンスを処理します。
type AuthHandler struct {
	auth AuthUsecase
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
func NewAuthHandler(auth AuthUsecase) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// isTokenError reports whether err means the presented refresh token cannot
// be used (malformed, foreign, revoked or expired).
func isTokenError(err error) bool {
	return errors.Is(err, usecase.ErrInvalidRefreshToken) ||
		errors.Is(err, usecase.ErrTokenRevoked) ||
		errors.Is(err, usecase.ErrTokenExpired)
}

func tokenErrorDetail(err error) string {
	if errors.Is(err, usecase.ErrTokenRevoked) {
		return DetailTokenBlacklisted
	}
	return DetailTokenInvalid
}

// Register はユーザー登録APIエンドポイントを処理します。
// - バインディング・入力検証エラー時はフィールド別に400を返却
// - 成功時はパスワードを含まないユーザー情報で201を返却
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("register validation failed", "error", err, "remote_addr", c.ClientIP())
		api.AbortValidation(c, validation.FromBinding(err))
		return
	}

	user, err := h.auth.Register(c.Request.Context(), usecase.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
		Password2: req.Password2,
	})
	if err != nil {
		if errs, ok := validation.As(err); ok {
			slog.Warn("register rejected", "error", err, "username", req.Username, "remote_addr", c.ClientIP())
			api.AbortValidation(c, errs)
			return
		}
		slog.Error("register failed", "error", err, "remote_addr", c.ClientIP())
		api.AbortDetail(c, http.StatusInternalServerError, api.DetailInternal)
		return
	}

	slog.Info("user registered", "user_id", user.ID, "username", user.Username, "remote_addr", c.ClientIP())
	c.JSON(http.StatusCreated, dto.NewUserResponse(user))
}

// Login はユーザーログインAPIエンドポイントを処理します。
// - バリデーションエラー時は400を返却
// - 認証失敗時は401を返却（ユーザー列挙を防ぐため理由は区別しない）
// - 認証成功時はaccess/refreshトークン付きで200を返却
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("login validation failed", "error", err, "remote_addr", c.ClientIP())
		api.AbortValidation(c, validation.FromBinding(err))
		return
	}

	pair, err := h.auth.Login(c.Request.Context(), req.Username, req.Password, usecase.ClientMeta{
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			slog.Warn("login failed", "username", req.Username, "remote_addr", c.ClientIP())
			api.AbortDetail(c, http.StatusUnauthorized, api.DetailInvalidCredentials)
			return
		}
		slog.Error("login error", "error", err, "remote_addr", c.ClientIP())
		api.AbortDetail(c, http.StatusInternalServerError, api.DetailInternal)
		return
	}

	slog.Info("user login successful", "username", req.Username, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.TokenPairRes{Access: pair.Access, Refresh: pair.Refresh})
}

// Refresh はリフレッシュトークンを新しいアクセストークンと交換します。
// 失効・期限切れ・不正なトークンは401を返却します。
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshReq
	if err := c.ShouldBindJSON(&req); err != nil {
		api.AbortValidation(c, validation.FromBinding(err))
		return
	}

	access, err := h.auth.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		if isTokenError(err) {
			slog.Warn("token refresh rejected", "error", err, "remote_addr", c.ClientIP())
			api.AbortDetail(c, http.StatusUnauthorized, tokenErrorDetail(err))
			return
		}
		slog.Error("token refresh failed", "error", err, "remote_addr", c.ClientIP())
		api.AbortDetail(c, http.StatusInternalServerError, api.DetailInternal)
		return
	}

	c.JSON(http.StatusOK, dto.RefreshRes{Access: access})
}

// Logout は認証済みユーザーのリフレッシュトークンを失効させます。
// 失効済み・他人の・不正なトークンは400を返却します。
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, ok := jwtmw.UserID(c)
	if !ok {
		api.AbortDetail(c, http.StatusUnauthorized, api.DetailNotAuthenticated)
		return
	}

	var req dto.RefreshReq
	if err := c.ShouldBindJSON(&req); err != nil {
		api.AbortValidation(c, validation.FromBinding(err))
		return
	}

	if err := h.auth.Logout(c.Request.Context(), userID, req.Refresh); err != nil {
		if isTokenError(err) {
			slog.Warn("logout rejected", "error", err, "user_id", userID, "remote_addr", c.ClientIP())
			api.AbortDetail(c, http.StatusBadRequest, tokenErrorDetail(err))
			return
		}
		slog.Error("logout failed", "error", err, "user_id", userID, "remote_addr", c.ClientIP())
		api.AbortDetail(c, http.StatusInternalServerError, api.DetailInternal)
		return
	}

	slog.Info("user logged out", "user_id", userID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusResetContent, api.DetailResponse{Detail: DetailLoggedOut})
}

// LogoutAll は認証済みユーザーのすべてのセッションを失効させます。
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	userID, ok := jwtmw.UserID(c)
	if !ok {
		api.AbortDetail(c, http.StatusUnauthorized, api.DetailNotAuthenticated)
		return
	}

	if err := h.auth.LogoutAll(c.Request.Context(), userID); err != nil {
		slog.Error("logout all failed", "error", err, "user_id", userID, "remote_addr", c.ClientIP())
		api.AbortDetail(c, http.StatusInternalServerError, api.DetailInternal)
		return
	}

	slog.Info("user logged out of all sessions", "user_id", userID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusResetContent, api.DetailResponse{Detail: DetailLoggedOutAll})
}
