package middleware

import (
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// TracingMiddleware リクエストごとにサーバースパンを開始するミドルウェア。
// W3C Trace Contextヘッダーからの伝播に対応する
func TracingMiddleware() echo.MiddlewareFunc {
	tracer := otel.Tracer("gacha-server")

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := otel.GetTextMapPropagator().Extract(
				c.Request().Context(),
				propagation.HeaderCarrier(c.Request().Header),
			)

			ctx, span := tracer.Start(ctx, c.Request().Method+" "+c.Path(),
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.method", c.Request().Method),
					attribute.String("http.route", c.Path()),
					attribute.String("http.url", c.Request().URL.String()),
				),
			)
			defer span.End()

			c.SetRequest(c.Request().WithContext(ctx))

			err := next(c)

			// 認証ミドルウェアが解決したユーザーはスパンにも載せる
			if userID, ok := c.Get("user_id").(string); ok && userID != "" {
				span.SetAttributes(attribute.String("user_id", userID))
			}

			span.SetAttributes(attribute.Int("http.status_code", c.Response().Status))
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			} else if c.Response().Status >= 500 {
				span.SetStatus(codes.Error, "server error response")
			}

			return err
		}
	}
}
