package router

import (
	"log/slog"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"fitness_backend/internal/app/di"
	healthhandler "fitness_backend/internal/platform/http/handler"
	"fitness_backend/internal/platform/http/middleware"
	jwtmw "fitness_backend/internal/platform/jwt"
)

// Options toggles optional middleware.
type Options struct {
	CORS   bool
	Logger *slog.Logger
}

func NewRouter(app *di.App, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if opts.Logger != nil {
		r.Use(middleware.RequestLogger(opts.Logger))
	}
	if app.Metrics != nil {
		r.Use(app.Metrics.Middleware())
	}
	if opts.CORS {
		// Authorizationヘッダーを許可する
		cfg := cors.DefaultConfig()
		cfg.AllowAllOrigins = true
		cfg.AddAllowHeaders("Authorization")
		r.Use(cors.New(cfg))
	}

	// 認証不要
	// 導通確認用
	health := healthhandler.Health(app.Checks)
	r.GET("/healthz", health)
	r.HEAD("/healthz", health)
	if app.Metrics != nil {
		r.GET("/metrics", gin.WrapH(app.Metrics.Handler()))
	}
	// 新規ユーザー登録
	r.POST("/auth/register/", app.Auth.Register)
	// ログイン（JWT 発行）
	r.POST("/auth/login/", app.Auth.Login)
	// アクセストークン再発行（リフレッシュトークンで認証）
	r.POST("/auth/token/refresh/", app.Auth.Refresh)

	// 認証必須のルート
	// → リクエストヘッダーに Bearer アクセストークンが必要になる
	auth := r.Group("/")
	auth.Use(jwtmw.AuthRequired(app.Tokens))
	{
		auth.POST("/auth/logout/", app.Auth.Logout)
		auth.POST("/auth/logout/all/", app.Auth.LogoutAll)

		auth.POST("/activities/create/", app.Activities.Create)
		auth.GET("/activities/", app.Activities.List)
		auth.GET("/activities/:id/", app.Activities.Get)
		auth.PATCH("/activities/:id/", app.Activities.Update)
		auth.PUT("/activities/:id/", app.Activities.Replace)
		auth.DELETE("/activities/:id/", app.Activities.Delete)
	}

	return r
}
