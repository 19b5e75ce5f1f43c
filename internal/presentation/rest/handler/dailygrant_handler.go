package handler

import (
	"net/http"

	dailygrantapp "gacha-server/internal/application/dailygrant"

	"github.com/labstack/echo/v4"
)

// DailyGrantHandler 日次付与関連ハンドラー（管理API用）
type DailyGrantHandler struct {
	dailyGrantService *dailygrantapp.DailyGrantApplicationService
}

// NewDailyGrantHandler 新しいDailyGrantHandlerを作成
func NewDailyGrantHandler(dailyGrantService *dailygrantapp.DailyGrantApplicationService) *DailyGrantHandler {
	return &DailyGrantHandler{
		dailyGrantService: dailyGrantService,
	}
}

// GetSetting 日次付与量設定取得ハンドラー
func (h *DailyGrantHandler) GetSetting(c echo.Context) error {
	resp, err := h.dailyGrantService.GetSetting(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, GrantSettingResponse{
		Name:   resp.Name,
		Amount: resp.Amount,
	})
}

// SetSetting 日次付与量設定更新ハンドラー。設定は次回の付与実行から反映される
func (h *DailyGrantHandler) SetSetting(c echo.Context) error {
	var reqBody SetGrantSettingRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	req := &dailygrantapp.SetSettingRequest{
		Amount:    reqBody.Amount,
		Requester: reqBody.Requester,
	}

	resp, err := h.dailyGrantService.SetSetting(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, GrantSettingResponse{
		Name:   resp.Name,
		Amount: resp.Amount,
	})
}

// Run 日次付与即時実行ハンドラー。スケジューラと同じ処理を手動で起動する
func (h *DailyGrantHandler) Run(c echo.Context) error {
	resp, err := h.dailyGrantService.Run(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, DailyGrantRunResponse{
		Amount:       resp.Amount,
		GrantedUsers: resp.GrantedUsers,
		TotalUsers:   resp.TotalUsers,
	})
}
