// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// checkTimeout bounds each dependency check.
const checkTimeout = 2 * time.Second

// Check reports whether a dependency (database, Redis) is reachable.
type Check func(ctx context.Context) error

// Health は /healthz エンドポイントのハンドラーを返します。
// 名前付きのチェックがすべて成功すれば200、いずれかが失敗すれば503を返し、キャッシュを防止します。
func Health(checks map[string]Check) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 明示的にキャッシュを防止
		c.Header("Cache-Control", "no-store")

		results := make(map[string]string, len(checks))
		healthy := true
		for name, check := range checks {
			ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
			err := check(ctx)
			cancel()
			if err != nil {
				slog.Warn("health check failed", "check", name, "error", err)
				results[name] = "unavailable"
				healthy = false
				continue
			}
			results[name] = "ok"
		}

		status := http.StatusOK
		body := gin.H{"status": "ok"}
		if !healthy {
			status = http.StatusServiceUnavailable
			body["status"] = "unavailable"
		}
		if len(results) > 0 {
			body["checks"] = results
		}

		if c.Request.Method == http.MethodHead {
			c.Status(status)
			return
		}
		c.JSON(status, body)
	}
}
