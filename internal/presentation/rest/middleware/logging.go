package middleware

import (
	"time"

	otelinfra "gacha-server/internal/infrastructure/observability/otel"
	"github.com/labstack/echo/v4"
)

// LoggingMiddleware リクエスト完了時にアクセスログを1行出力するミドルウェア。
// ヘルスチェックはログに残さない
func LoggingMiddleware(logger *otelinfra.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			if c.Path() == "/health" {
				return err
			}

			fields := map[string]interface{}{
				"method":      c.Request().Method,
				"path":        c.Request().URL.Path,
				"route":       c.Path(),
				"status_code": c.Response().Status,
				"duration_ms": time.Since(start).Milliseconds(),
				"remote_addr": c.Request().RemoteAddr,
			}

			// 認証済みリクエストは呼び出し元ユーザーも記録する
			if userID, ok := c.Get("user_id").(string); ok && userID != "" {
				fields["user_id"] = userID
			}

			ctx := c.Request().Context()
			if err != nil {
				logger.Error(ctx, "HTTP request failed", err, fields)
			} else {
				logger.Info(ctx, "HTTP request completed", fields)
			}

			return err
		}
	}
}
