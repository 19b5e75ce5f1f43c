package middleware

import (
	"errors"
	"net/http"
	"time"

	otelinfra "gacha-server/internal/infrastructure/observability/otel"

	"github.com/labstack/echo/v4"
)

// MetricsMiddleware ルートごとのリクエスト数・応答時間・エラー数を記録するミドルウェア
func MetricsMiddleware(metrics *otelinfra.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			ctx := c.Request().Context()
			route := c.Path()
			metrics.RecordRequest(ctx, c.Request().Method, route)
			metrics.RecordResponseTime(ctx, c.Request().Method, route, time.Since(start).Seconds())

			// ハンドラーが直接書き込んだ4xx/5xxもエラーとして数える
			status := c.Response().Status
			if err != nil {
				var httpErr *echo.HTTPError
				if errors.As(err, &httpErr) {
					status = httpErr.Code
				} else {
					status = http.StatusInternalServerError
				}
			}
			switch {
			case status >= 500:
				metrics.RecordError(ctx, "server_error")
			case status >= 400:
				metrics.RecordError(ctx, "client_error")
			}

			return err
		}
	}
}
