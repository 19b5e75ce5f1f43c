package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric/noop"

	otelinfra "gacha-server/internal/infrastructure/observability/otel"
)

func newTestMetrics(t *testing.T) *otelinfra.Metrics {
	t.Helper()
	otel.SetMeterProvider(noop.NewMeterProvider())
	metrics, err := otelinfra.NewMetrics("test-meter")
	require.NoError(t, err)
	return metrics
}

func TestMetricsMiddleware(t *testing.T) {
	tests := []struct {
		name        string
		handler     echo.HandlerFunc
		expectedErr error
	}{
		{
			name: "正常系: 成功レスポンス",
			handler: func(c echo.Context) error {
				return c.String(http.StatusOK, "ok")
			},
		},
		{
			name: "正常系: 直接書き込まれた4xxレスポンス",
			handler: func(c echo.Context) error {
				return c.JSON(http.StatusConflict, map[string]string{"error": "insufficient_points"})
			},
		},
		{
			name: "異常系: HTTPエラーはそのまま返る",
			handler: func(c echo.Context) error {
				return echo.NewHTTPError(http.StatusNotFound, "collection not found")
			},
			expectedErr: echo.NewHTTPError(http.StatusNotFound, "collection not found"),
		},
		{
			name: "異常系: 非HTTPエラーはそのまま返る",
			handler: func(c echo.Context) error {
				return errors.New("db down")
			},
			expectedErr: errors.New("db down"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics := newTestMetrics(t)

			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/me/collections/animals/draw", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			c.SetPath("/api/v1/me/collections/:collection/draw")

			err := MetricsMiddleware(metrics)(tt.handler)(c)

			if tt.expectedErr != nil {
				require.Error(t, err)
				assert.Equal(t, tt.expectedErr.Error(), err.Error())
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestMetricsMiddleware_UsesRouteTemplate(t *testing.T) {
	metrics := newTestMetrics(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/users/user123/balance", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/v1/admin/users/:user_id/balance")

	handler := MetricsMiddleware(metrics)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	// ルートテンプレート単位で記録されるため、ユーザーIDごとにラベルが増えない
	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}
