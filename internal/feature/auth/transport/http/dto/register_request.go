// Package dto はauthフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

import "fitness_backend/internal/feature/auth/domain/entity"

// RegisterReq は/auth/register/エンドポイントのリクエストボディを表します。
// 形式チェックはGinのbindingタグ、重複やパスワード規則はusecaseで検証します。
type RegisterReq struct {
	Username  string `json:"username" binding:"required,max=150"`
	Email     string `json:"email" binding:"required,email,max=255"`
	FirstName string `json:"first_name" binding:"max=150"`
	LastName  string `json:"last_name" binding:"max=150"`
	Password  string `json:"password" binding:"required"`
	Password2 string `json:"password2" binding:"required"`
}

// UserResponse is the created identity. It never carries password material.
type UserResponse struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// NewUserResponse converts a user entity into its public form.
func NewUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}
