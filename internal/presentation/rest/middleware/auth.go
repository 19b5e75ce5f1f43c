package middleware

import (
	"net/http"
	"strings"

	"gacha-server/internal/infrastructure/config"
	otelinfra "gacha-server/internal/infrastructure/observability/otel"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// AuthMiddleware JWT認証ミドルウェア。検証済みトークンのユーザーIDを
// コンテキストのuser_idに設定する
func AuthMiddleware(cfg *config.JWTConfig, logger *otelinfra.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			userID, reason := authenticate(c.Request().Header.Get("Authorization"), cfg.Secret)
			if userID == "" {
				logger.Warn(ctx, "Rejected unauthenticated request", map[string]interface{}{
					"reason": reason,
					"path":   c.Request().URL.Path,
				})
				return c.JSON(http.StatusUnauthorized, ErrorResponse{
					Error:   "unauthorized",
					Message: reason,
				})
			}

			c.Set("user_id", userID)
			return next(c)
		}
	}
}

// authenticate Bearerトークンを検証し、ユーザーIDを返す。
// 失敗時は空文字列と拒否理由を返す
func authenticate(authHeader, secret string) (string, string) {
	if authHeader == "" {
		return "", "Missing authorization header"
	}

	tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok || tokenString == "" {
		return "", "Invalid authorization header format"
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", "Invalid or expired token"
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "Invalid token claims"
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", "Missing user_id in token"
	}

	return userID, ""
}
