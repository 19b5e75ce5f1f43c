package handler

import (
	"net/http"

	pointsapp "gacha-server/internal/application/points"

	"github.com/labstack/echo/v4"
)

// PointsHandler ポイント残高関連ハンドラー
type PointsHandler struct {
	pointsService *pointsapp.PointsApplicationService
}

// NewPointsHandler 新しいPointsHandlerを作成
func NewPointsHandler(pointsService *pointsapp.PointsApplicationService) *PointsHandler {
	return &PointsHandler{
		pointsService: pointsService,
	}
}

// GetBalance 残高取得ハンドラー（ユーザーAPI用）。
// 未登録ユーザーはデフォルト残高で自動登録される
func (h *PointsHandler) GetBalance(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "user_id not found in token")
	}

	return h.getBalanceInternal(c, userID)
}

// GetBalanceAdmin 残高取得ハンドラー（管理API用）
func (h *PointsHandler) GetBalanceAdmin(c echo.Context) error {
	userID := c.Param("user_id")
	if userID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}

	return h.getBalanceInternal(c, userID)
}

// getBalanceInternal 残高取得の内部実装
func (h *PointsHandler) getBalanceInternal(c echo.Context, userID string) error {
	req := &pointsapp.GetBalanceRequest{
		UserID: userID,
	}

	resp, err := h.pointsService.GetBalance(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, BalanceResponse{
		UserID: resp.UserID,
		Points: resp.Points,
		Cap:    resp.Cap,
	})
}

// GrantPoints ポイント付与ハンドラー（管理API用）。
// 残高は上限でクリップされ、上限到達済みの場合は変動なしで成功を返す
func (h *PointsHandler) GrantPoints(c echo.Context) error {
	userID := c.Param("user_id")
	if userID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}

	var reqBody GrantRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	req := &pointsapp.GrantRequest{
		UserID:    userID,
		Amount:    reqBody.Amount,
		Requester: reqBody.Requester,
	}

	resp, err := h.pointsService.Grant(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, GrantResponse{
		TransactionID: resp.TransactionID,
		UserID:        resp.UserID,
		BalanceAfter:  resp.BalanceAfter,
		Changed:       resp.Changed,
	})
}

// GrantAllPoints 全ユーザー一括付与ハンドラー（管理API用）
func (h *PointsHandler) GrantAllPoints(c echo.Context) error {
	var reqBody GrantAllRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	req := &pointsapp.GrantAllRequest{
		Amount:    reqBody.Amount,
		Requester: reqBody.Requester,
	}

	resp, err := h.pointsService.GrantAll(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, GrantAllResponse{
		Amount:       resp.Amount,
		GrantedUsers: resp.GrantedUsers,
	})
}

// SetBalance 残高上書きハンドラー（管理API用）
func (h *PointsHandler) SetBalance(c echo.Context) error {
	userID := c.Param("user_id")
	if userID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}

	var reqBody SetBalanceRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	req := &pointsapp.SetBalanceRequest{
		UserID:    userID,
		Points:    reqBody.Points,
		Requester: reqBody.Requester,
	}

	resp, err := h.pointsService.SetBalance(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, SetBalanceResponse{
		TransactionID: resp.TransactionID,
		UserID:        resp.UserID,
		Points:        resp.Points,
	})
}
