// Package adapters はauthフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"fitness_backend/internal/feature/auth/domain/entity"
	"fitness_backend/internal/feature/auth/usecase"
)

// pgUniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// userGorm はUserRepositoryインターフェースのGORM実装です。
type userGorm struct {
	db *gorm.DB
}

// userGormがUserRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.UserRepository = (*userGorm)(nil)

// NewUserRepository は指定されたgorm.DB接続でuserGormの新しいインスタンスを生成します。
func NewUserRepository(db *gorm.DB) *userGorm {
	return &userGorm{db: db}
}

// Create はユーザーをデータベースに追加します。
// ユニーク制約違反はusecase.ErrUsernameAlreadyExists / ErrEmailAlreadyExistsに変換します。
func (r *userGorm) Create(ctx context.Context, u *entity.User) error {
	if u == nil {
		return errors.New("user is nil")
	}
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if dup, column := duplicateKey(err); dup {
			if column == "email" {
				return usecase.ErrEmailAlreadyExists
			}
			return usecase.ErrUsernameAlreadyExists
		}
		return err
	}
	return nil
}

// FindByUsername はユーザー名でユーザーを取得します。
// ユーザーが存在しない場合、usecase.ErrUserNotFoundを返します。
func (r *userGorm) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// FindByID はIDでユーザーを取得します。
// ユーザーが存在しない場合、usecase.ErrUserNotFoundを返します。
func (r *userGorm) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// ExistsByEmail reports whether any user already uses the email.
func (r *userGorm) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// duplicateKey reports whether err is a unique violation and, when it can
// tell, which column caused it ("email" or "username").
func duplicateKey(err error) (bool, string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return true, columnFrom(pgErr.ConstraintName + " " + pgErr.Detail)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true, columnFrom(err.Error())
	}
	// SQLite without TranslateError: "UNIQUE constraint failed: users.email"
	if msg := err.Error(); strings.Contains(msg, "UNIQUE constraint failed") {
		return true, columnFrom(msg)
	}
	return false, ""
}

func columnFrom(msg string) string {
	if strings.Contains(strings.ToLower(msg), "email") {
		return "email"
	}
	return "username"
}
