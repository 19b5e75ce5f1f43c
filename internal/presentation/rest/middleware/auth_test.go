package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"gacha-server/internal/infrastructure/config"
	otelinfra "gacha-server/internal/infrastructure/observability/otel"
)

const testJWTSecret = "test-secret"

func signTestToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tokenString
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		authHeader     func(t *testing.T) string
		expectedStatus int
		expectedUserID string
	}{
		{
			name: "正常系: 有効なトークンでユーザーIDが設定される",
			authHeader: func(t *testing.T) string {
				return "Bearer " + signTestToken(t, testJWTSecret, jwt.MapClaims{
					"user_id": "user123",
					"exp":     time.Now().Add(time.Hour).Unix(),
				})
			},
			expectedStatus: http.StatusOK,
			expectedUserID: "user123",
		},
		{
			name:           "異常系: Authorizationヘッダーなし",
			authHeader:     func(t *testing.T) string { return "" },
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "異常系: Bearer形式でないヘッダー",
			authHeader:     func(t *testing.T) string { return "Basic dXNlcjpwYXNz" },
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "異常系: 壊れたトークン",
			authHeader:     func(t *testing.T) string { return "Bearer not.a.token" },
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "異常系: 別のシークレットで署名されたトークン",
			authHeader: func(t *testing.T) string {
				return "Bearer " + signTestToken(t, "wrong-secret", jwt.MapClaims{
					"user_id": "user123",
				})
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "異常系: 期限切れトークン",
			authHeader: func(t *testing.T) string {
				return "Bearer " + signTestToken(t, testJWTSecret, jwt.MapClaims{
					"user_id": "user123",
					"exp":     time.Now().Add(-time.Hour).Unix(),
				})
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "異常系: user_idクレームなし",
			authHeader: func(t *testing.T) string {
				return "Bearer " + signTestToken(t, testJWTSecret, jwt.MapClaims{
					"sub": "user123",
				})
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "異常系: user_idが文字列でない",
			authHeader: func(t *testing.T) string {
				return "Bearer " + signTestToken(t, testJWTSecret, jwt.MapClaims{
					"user_id": 123,
				})
			},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.JWTConfig{Secret: testJWTSecret}
			tracer := noop.NewTracerProvider().Tracer("test")
			logger := otelinfra.NewLogger(tracer)

			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/me/balance", nil)
			if header := tt.authHeader(t); header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			var gotUserID string
			handler := AuthMiddleware(cfg, logger)(func(c echo.Context) error {
				gotUserID, _ = c.Get("user_id").(string)
				return c.String(http.StatusOK, "ok")
			})

			require.NoError(t, handler(c))
			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedUserID != "" {
				assert.Equal(t, tt.expectedUserID, gotUserID)
			}
		})
	}
}
