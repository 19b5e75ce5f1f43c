package middleware

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	authapp "gacha-server/internal/application/auth"
	"gacha-server/internal/domain/catalog"
	"gacha-server/internal/domain/cooldown"
	"gacha-server/internal/domain/gacha"
	"gacha-server/internal/domain/grantsetting"
	"gacha-server/internal/domain/points"
	"gacha-server/internal/domain/transaction"
	otelinfra "gacha-server/internal/infrastructure/observability/otel"
)

// ErrorResponse エラーレスポンス
type ErrorResponse struct {
	Error             string `json:"error"`
	Message           string `json:"message"`
	Code              string `json:"code,omitempty"`
	RetryAfterSeconds int    `json:"retry_after_seconds,omitempty"`
}

// ErrorHandlerMiddleware エラーハンドリングミドルウェア
func ErrorHandlerMiddleware(logger *otelinfra.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			// エラーハンドリング
			return handleError(c, err, logger)
		}
	}
}

// handleError エラーを処理して適切なHTTPレスポンスを返す
func handleError(c echo.Context, err error, logger *otelinfra.Logger) error {
	ctx := c.Request().Context()

	// クールダウン中はRetry-Afterヘッダー付きで429を返す
	var throttled *cooldown.ThrottledError
	if errors.As(err, &throttled) {
		retryAfter := int(math.Ceil(throttled.Remaining.Seconds()))
		logger.Warn(ctx, "Draw throttled by cooldown", map[string]interface{}{
			"retry_after_seconds": retryAfter,
		})
		c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
		return c.JSON(http.StatusTooManyRequests, ErrorResponse{
			Error:             "cooldown_active",
			Message:           err.Error(),
			RetryAfterSeconds: retryAfter,
		})
	}

	if errors.Is(err, cooldown.ErrCooldownActive) {
		logger.Warn(ctx, "Draw throttled by cooldown", map[string]interface{}{
			"error": err.Error(),
		})
		return c.JSON(http.StatusTooManyRequests, ErrorResponse{
			Error:   "cooldown_active",
			Message: err.Error(),
		})
	}

	if errors.Is(err, points.ErrInsufficientPoints) {
		logger.Warn(ctx, "Insufficient points", map[string]interface{}{
			"error": err.Error(),
		})
		return c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "insufficient_points",
			Message: err.Error(),
		})
	}

	if errors.Is(err, points.ErrInvalidAmount) {
		logger.Warn(ctx, "Invalid amount", map[string]interface{}{
			"error": err.Error(),
		})
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_amount",
			Message: err.Error(),
		})
	}

	if errors.Is(err, points.ErrPointsOutOfRange) {
		logger.Warn(ctx, "Points out of range", map[string]interface{}{
			"error": err.Error(),
		})
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "points_out_of_range",
			Message: err.Error(),
		})
	}

	if errors.Is(err, points.ErrBalanceNotFound) {
		logger.Warn(ctx, "Balance not found", map[string]interface{}{
			"error": err.Error(),
		})
		return c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "balance_not_found",
			Message: err.Error(),
		})
	}

	if errors.Is(err, gacha.ErrEmptyCatalog) {
		logger.Warn(ctx, "Empty catalog", map[string]interface{}{
			"error": err.Error(),
		})
		return c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "empty_catalog",
			Message: err.Error(),
		})
	}

	if errors.Is(err, catalog.ErrCollectionNotFound) {
		logger.Warn(ctx, "Collection not found", map[string]interface{}{
			"error": err.Error(),
		})
		return c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "collection_not_found",
			Message: err.Error(),
		})
	}

	if errors.Is(err, catalog.ErrInvalidCollection) {
		logger.Warn(ctx, "Invalid collection name", map[string]interface{}{
			"error": err.Error(),
		})
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_collection",
			Message: err.Error(),
		})
	}

	if errors.Is(err, grantsetting.ErrNegativeAmount) {
		logger.Warn(ctx, "Negative grant amount", map[string]interface{}{
			"error": err.Error(),
		})
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "negative_grant_amount",
			Message: err.Error(),
		})
	}

	if errors.Is(err, authapp.ErrInvalidUserID) {
		logger.Warn(ctx, "Invalid user id", map[string]interface{}{
			"error": err.Error(),
		})
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_user_id",
			Message: err.Error(),
		})
	}

	if errors.Is(err, transaction.ErrTransactionNotFound) {
		logger.Warn(ctx, "Transaction not found", map[string]interface{}{
			"error": err.Error(),
		})
		return c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "transaction_not_found",
			Message: err.Error(),
		})
	}

	// EchoのHTTPエラー
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		logger.Warn(ctx, "HTTP error", map[string]interface{}{
			"status_code": httpErr.Code,
			"message":     httpErr.Message,
		})
		message := ""
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		} else {
			message = http.StatusText(httpErr.Code)
		}
		return c.JSON(httpErr.Code, ErrorResponse{
			Error:   http.StatusText(httpErr.Code),
			Message: message,
		})
	}

	// 予期しないエラー
	logger.Error(ctx, "Internal server error", err, map[string]interface{}{
		"path": c.Request().URL.Path,
	})
	return c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_server_error",
		Message: "An unexpected error occurred",
	})
}
