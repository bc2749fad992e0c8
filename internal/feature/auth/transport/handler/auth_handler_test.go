package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitness_backend/internal/feature/auth/domain/entity"
	"fitness_backend/internal/feature/auth/usecase"
	jwtmw "fitness_backend/internal/platform/jwt"
	"fitness_backend/internal/shared/validation"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// mockAuthUsecase is a mock implementation of the AuthUsecase interface.
type mockAuthUsecase struct {
	RegisterFunc  func(ctx context.Context, in usecase.RegisterInput) (*entity.User, error)
	LoginFunc     func(ctx context.Context, username, password string, meta usecase.ClientMeta) (*usecase.TokenPair, error)
	RefreshFunc   func(ctx context.Context, refreshToken string) (string, error)
	LogoutFunc    func(ctx context.Context, userID uint, refreshToken string) error
	LogoutAllFunc func(ctx context.Context, userID uint) error
}

func (m *mockAuthUsecase) Register(ctx context.Context, in usecase.RegisterInput) (*entity.User, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, in)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthUsecase) Login(ctx context.Context, username, password string, meta usecase.ClientMeta) (*usecase.TokenPair, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, username, password, meta)
	}
	return nil, usecase.ErrInvalidCredentials // Default: failure
}

func (m *mockAuthUsecase) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, refreshToken)
	}
	return "", usecase.ErrInvalidRefreshToken
}

func (m *mockAuthUsecase) Logout(ctx context.Context, userID uint, refreshToken string) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, userID, refreshToken)
	}
	return nil
}

func (m *mockAuthUsecase) LogoutAll(ctx context.Context, userID uint) error {
	if m.LogoutAllFunc != nil {
		return m.LogoutAllFunc(ctx, userID)
	}
	return nil
}

// newRouter wires the handler. userID != 0 simulates AuthRequired.
func newRouter(uc AuthUsecase, userID uint) *gin.Engine {
	h := NewAuthHandler(uc)
	r := gin.New()
	r.POST("/auth/register/", h.Register)
	r.POST("/auth/login/", h.Login)
	r.POST("/auth/token/refresh/", h.Refresh)

	authed := r.Group("/")
	authed.Use(func(c *gin.Context) {
		if userID != 0 {
			c.Set(jwtmw.ContextUserID, userID)
		}
	})
	authed.POST("/auth/logout/", h.Logout)
	authed.POST("/auth/logout/all/", h.LogoutAll)
	return r
}

func post(r http.Handler, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	case nil:
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "handler-test")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func validRegisterBody() gin.H {
	return gin.H{
		"username":   "alice",
		"email":      "alice@example.com",
		"first_name": "Alice",
		"last_name":  "Smith",
		"password":   "s3cure-pass",
		"password2":  "s3cure-pass",
	}
}

func TestAuthHandler_Register(t *testing.T) {
	tests := []struct {
		name           string
		body           gin.H
		mockRegister   func(ctx context.Context, in usecase.RegisterInput) (*entity.User, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success: user registration",
			body: validRegisterBody(),
			mockRegister: func(ctx context.Context, in usecase.RegisterInput) (*entity.User, error) {
				assert.Equal(t, "alice", in.Username)
				assert.Equal(t, in.Password, in.Password2)
				return &entity.User{ID: 1, Username: in.Username, Email: in.Email, FirstName: in.FirstName, LastName: in.LastName, Password: "$2a$hash"}, nil
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `{"id":1,"username":"alice","email":"alice@example.com","first_name":"Alice","last_name":"Smith"}`,
		},
		{
			name:           "failure: invalid email address",
			body:           gin.H{"username": "alice", "email": "invalid-email", "password": "x", "password2": "x"},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"email":["Enter a valid email address."]}`,
		},
		{
			name:           "failure: missing confirmation",
			body:           gin.H{"username": "alice", "email": "alice@example.com", "password": "s3cure-pass"},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"password2":["This field is required."]}`,
		},
		{
			name: "failure: password mismatch (usecase validation)",
			body: validRegisterBody(),
			mockRegister: func(ctx context.Context, in usecase.RegisterInput) (*entity.User, error) {
				return nil, validation.Errors{"password": {"Password fields didn't match."}}
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"password":["Password fields didn't match."]}`,
		},
		{
			name: "failure: storage error is not echoed",
			body: validRegisterBody(),
			mockRegister: func(ctx context.Context, in usecase.RegisterInput) (*entity.User, error) {
				return nil, errors.New("database is locked")
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"detail":"A server error occurred."}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			uc := &mockAuthUsecase{RegisterFunc: func(ctx context.Context, in usecase.RegisterInput) (*entity.User, error) {
				called = true
				return tt.mockRegister(ctx, in)
			}}

			w := post(newRouter(uc, 0), "/auth/register/", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
			assert.NotContains(t, w.Body.String(), "password\":\"")
			assert.Equal(t, tt.mockRegister != nil, called)
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	tests := []struct {
		name           string
		body           any
		mockLogin      func(ctx context.Context, username, password string, meta usecase.ClientMeta) (*usecase.TokenPair, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success: user login",
			body: gin.H{"username": "alice", "password": "s3cure-pass"},
			mockLogin: func(ctx context.Context, username, password string, meta usecase.ClientMeta) (*usecase.TokenPair, error) {
				assert.Equal(t, "handler-test", meta.UserAgent)
				assert.NotEmpty(t, meta.IPAddress)
				return &usecase.TokenPair{Access: "access-jwt", Refresh: "refresh-jwt"}, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"access":"access-jwt","refresh":"refresh-jwt"}`,
		},
		{
			name:           "failure: missing password",
			body:           gin.H{"username": "alice"},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"password":["This field is required."]}`,
		},
		{
			name:           "failure: malformed body",
			body:           "not json",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"non_field_errors":["Invalid request body."]}`,
		},
		{
			name: "failure: invalid credentials",
			body: gin.H{"username": "alice", "password": "wrong"},
			mockLogin: func(ctx context.Context, username, password string, meta usecase.ClientMeta) (*usecase.TokenPair, error) {
				return nil, usecase.ErrInvalidCredentials
			},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"detail":"No active account found with the given credentials"}`,
		},
		{
			name: "failure: internal error",
			body: gin.H{"username": "alice", "password": "s3cure-pass"},
			mockLogin: func(ctx context.Context, username, password string, meta usecase.ClientMeta) (*usecase.TokenPair, error) {
				return nil, fmt.Errorf("failed to record refresh token: %w", errors.New("redis down"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"detail":"A server error occurred."}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(newRouter(&mockAuthUsecase{LoginFunc: tt.mockLogin}, 0), "/auth/login/", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}

func TestAuthHandler_Refresh(t *testing.T) {
	tests := []struct {
		name           string
		body           any
		mockRefresh    func(ctx context.Context, refreshToken string) (string, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success: new access token",
			body: gin.H{"refresh": "refresh-jwt"},
			mockRefresh: func(ctx context.Context, refreshToken string) (string, error) {
				assert.Equal(t, "refresh-jwt", refreshToken)
				return "new-access", nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"access":"new-access"}`,
		},
		{
			name:           "failure: missing refresh",
			body:           gin.H{},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"refresh":["This field is required."]}`,
		},
		{
			name: "failure: revoked token",
			body: gin.H{"refresh": "revoked"},
			mockRefresh: func(ctx context.Context, refreshToken string) (string, error) {
				return "", usecase.ErrTokenRevoked
			},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"detail":"Token is blacklisted"}`,
		},
		{
			name: "failure: invalid token",
			body: gin.H{"refresh": "garbage"},
			mockRefresh: func(ctx context.Context, refreshToken string) (string, error) {
				return "", fmt.Errorf("%w: signature is invalid", usecase.ErrInvalidRefreshToken)
			},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"detail":"Token is invalid or expired"}`,
		},
		{
			name: "failure: expired token",
			body: gin.H{"refresh": "old"},
			mockRefresh: func(ctx context.Context, refreshToken string) (string, error) {
				return "", usecase.ErrTokenExpired
			},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"detail":"Token is invalid or expired"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(newRouter(&mockAuthUsecase{RefreshFunc: tt.mockRefresh}, 0), "/auth/token/refresh/", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	tests := []struct {
		name           string
		userID         uint
		body           any
		mockLogout     func(ctx context.Context, userID uint, refreshToken string) error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:   "success: logged out",
			userID: 7,
			body:   gin.H{"refresh": "refresh-jwt"},
			mockLogout: func(ctx context.Context, userID uint, refreshToken string) error {
				assert.Equal(t, uint(7), userID)
				assert.Equal(t, "refresh-jwt", refreshToken)
				return nil
			},
			expectedStatus: http.StatusResetContent,
			expectedBody:   `{"detail":"User logged out successfully."}`,
		},
		{
			name:           "failure: unauthenticated",
			userID:         0,
			body:           gin.H{"refresh": "refresh-jwt"},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"detail":"Authentication credentials were not provided."}`,
		},
		{
			name:           "failure: missing refresh",
			userID:         7,
			body:           gin.H{},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"refresh":["This field is required."]}`,
		},
		{
			name:   "failure: already revoked",
			userID: 7,
			body:   gin.H{"refresh": "refresh-jwt"},
			mockLogout: func(ctx context.Context, userID uint, refreshToken string) error {
				return usecase.ErrTokenRevoked
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"detail":"Token is blacklisted"}`,
		},
		{
			name:   "failure: token of another user",
			userID: 7,
			body:   gin.H{"refresh": "someone-elses"},
			mockLogout: func(ctx context.Context, userID uint, refreshToken string) error {
				return usecase.ErrInvalidRefreshToken
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"detail":"Token is invalid or expired"}`,
		},
		{
			name:   "failure: storage error",
			userID: 7,
			body:   gin.H{"refresh": "refresh-jwt"},
			mockLogout: func(ctx context.Context, userID uint, refreshToken string) error {
				return errors.New("connection reset")
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"detail":"A server error occurred."}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			uc := &mockAuthUsecase{LogoutFunc: func(ctx context.Context, userID uint, refreshToken string) error {
				called = true
				return tt.mockLogout(ctx, userID, refreshToken)
			}}

			w := post(newRouter(uc, tt.userID), "/auth/logout/", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
			assert.Equal(t, tt.mockLogout != nil, called)
		})
	}
}

func TestAuthHandler_LogoutAll(t *testing.T) {
	var revokedFor uint
	uc := &mockAuthUsecase{LogoutAllFunc: func(ctx context.Context, userID uint) error {
		revokedFor = userID
		return nil
	}}

	w := post(newRouter(uc, 9), "/auth/logout/all/", nil)
	require.Equal(t, http.StatusResetContent, w.Code)
	assert.JSONEq(t, `{"detail":"All sessions logged out successfully."}`, w.Body.String())
	assert.Equal(t, uint(9), revokedFor)

	w = post(newRouter(uc, 0), "/auth/logout/all/", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	failing := &mockAuthUsecase{LogoutAllFunc: func(ctx context.Context, userID uint) error {
		return errors.New("db down")
	}}
	w = post(newRouter(failing, 9), "/auth/logout/all/", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
