package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"gacha-server/internal/domain/catalog"
	"gacha-server/internal/domain/cooldown"
	"gacha-server/internal/domain/gacha"
	"gacha-server/internal/domain/grantsetting"
	"gacha-server/internal/domain/points"
	"gacha-server/internal/domain/transaction"
	otelinfra "gacha-server/internal/infrastructure/observability/otel"
)

func invokeErrorHandler(t *testing.T, handlerErr error) *httptest.ResponseRecorder {
	t.Helper()

	tracer := noop.NewTracerProvider().Tracer("test")
	logger := otelinfra.NewLogger(tracer)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	middleware := ErrorHandlerMiddleware(logger)
	handler := middleware(func(c echo.Context) error {
		return handlerErr
	})

	err := handler(c)
	require.NoError(t, err)
	return rec
}

func TestErrorHandlerMiddleware_NoError(t *testing.T) {
	tracer := noop.NewTracerProvider().Tracer("test")
	logger := otelinfra.NewLogger(tracer)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	middleware := ErrorHandlerMiddleware(logger)
	handler := middleware(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	err := handler(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestErrorHandlerMiddleware_Throttled(t *testing.T) {
	rec := invokeErrorHandler(t, &cooldown.ThrottledError{Remaining: 6500 * time.Millisecond})

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "7", rec.Header().Get("Retry-After"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "cooldown_active", resp.Error)
	assert.Equal(t, 7, resp.RetryAfterSeconds)
}

func TestErrorHandlerMiddleware_CooldownActiveSentinel(t *testing.T) {
	rec := invokeErrorHandler(t, cooldown.ErrCooldownActive)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestErrorHandlerMiddleware_InsufficientPoints(t *testing.T) {
	rec := invokeErrorHandler(t, points.ErrInsufficientPoints)

	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "insufficient_points", resp.Error)
}

func TestErrorHandlerMiddleware_InvalidAmount(t *testing.T) {
	rec := invokeErrorHandler(t, points.ErrInvalidAmount)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestErrorHandlerMiddleware_PointsOutOfRange(t *testing.T) {
	rec := invokeErrorHandler(t, points.ErrPointsOutOfRange)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestErrorHandlerMiddleware_BalanceNotFound(t *testing.T) {
	rec := invokeErrorHandler(t, points.ErrBalanceNotFound)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestErrorHandlerMiddleware_EmptyCatalog(t *testing.T) {
	rec := invokeErrorHandler(t, gacha.ErrEmptyCatalog)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestErrorHandlerMiddleware_CollectionNotFound(t *testing.T) {
	rec := invokeErrorHandler(t, catalog.ErrCollectionNotFound)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestErrorHandlerMiddleware_InvalidCollection(t *testing.T) {
	rec := invokeErrorHandler(t, catalog.ErrInvalidCollection)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestErrorHandlerMiddleware_NegativeGrantAmount(t *testing.T) {
	rec := invokeErrorHandler(t, grantsetting.ErrNegativeAmount)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestErrorHandlerMiddleware_TransactionNotFound(t *testing.T) {
	rec := invokeErrorHandler(t, transaction.ErrTransactionNotFound)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestErrorHandlerMiddleware_WrappedDomainError(t *testing.T) {
	wrapped := errors.Join(errors.New("draw failed"), points.ErrInsufficientPoints)
	rec := invokeErrorHandler(t, wrapped)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestErrorHandlerMiddleware_EchoHTTPError(t *testing.T) {
	rec := invokeErrorHandler(t, echo.NewHTTPError(http.StatusBadRequest, "invalid request body"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "invalid request body", resp.Message)
}

func TestErrorHandlerMiddleware_UnexpectedError(t *testing.T) {
	rec := invokeErrorHandler(t, errors.New("database connection lost"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "internal_server_error", resp.Error)
}
