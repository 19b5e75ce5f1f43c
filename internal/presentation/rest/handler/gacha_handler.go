package handler

import (
	"net/http"

	gachaapp "gacha-server/internal/application/gacha"

	"github.com/labstack/echo/v4"
)

// GachaHandler 抽選・カタログ関連ハンドラー
type GachaHandler struct {
	gachaService *gachaapp.GachaApplicationService
}

// NewGachaHandler 新しいGachaHandlerを作成
func NewGachaHandler(gachaService *gachaapp.GachaApplicationService) *GachaHandler {
	return &GachaHandler{
		gachaService: gachaService,
	}
}

// Draw 抽選実行ハンドラー（ユーザーAPI用）
func (h *GachaHandler) Draw(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "user_id not found in token")
	}

	collection := c.Param("collection")
	if collection == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "collection is required")
	}

	req := &gachaapp.DrawRequest{
		UserID:     userID,
		Collection: collection,
	}

	resp, err := h.gachaService.Draw(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, DrawResponse{
		TransactionID: resp.TransactionID,
		Item:          toItemResponse(resp.Item),
		IsNew:         resp.IsNew,
		BalanceAfter:  resp.BalanceAfter,
	})
}

// ListCollections コレクション一覧取得ハンドラー
func (h *GachaHandler) ListCollections(c echo.Context) error {
	resp, err := h.gachaService.ListCollections(c.Request().Context())
	if err != nil {
		return err
	}

	collections := resp.Collections
	if collections == nil {
		collections = []string{}
	}

	return c.JSON(http.StatusOK, CollectionsResponse{
		Collections: collections,
	})
}

// ListCatalog カタログ一覧取得ハンドラー。排出率0のアイテムも含まれる
func (h *GachaHandler) ListCatalog(c echo.Context) error {
	collection := c.Param("collection")
	if collection == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "collection is required")
	}

	req := &gachaapp.ListCatalogRequest{
		Collection: collection,
	}

	resp, err := h.gachaService.ListCatalog(c.Request().Context(), req)
	if err != nil {
		return err
	}

	items := make([]ItemResponse, len(resp.Items))
	for i, item := range resp.Items {
		items[i] = toItemResponse(item)
	}

	return c.JSON(http.StatusOK, CatalogResponse{
		Collection: resp.Collection,
		Items:      items,
	})
}

// ListOwned 所持アイテム一覧取得ハンドラー（ユーザーAPI用）
func (h *GachaHandler) ListOwned(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "user_id not found in token")
	}

	collection := c.Param("collection")
	if collection == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "collection is required")
	}

	req := &gachaapp.ListOwnedRequest{
		UserID:     userID,
		Collection: collection,
	}

	resp, err := h.gachaService.ListOwned(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, OwnedItemsResponse{
		Collection: resp.Collection,
		ItemIDs:    resp.ItemIDs,
		OwnedCount: resp.OwnedCount,
		TotalCount: resp.TotalCount,
	})
}

// toItemResponse アイテムビューをレスポンス形式に変換
func toItemResponse(item gachaapp.ItemView) ItemResponse {
	return ItemResponse{
		Collection:    item.Collection,
		ItemID:        item.ItemID,
		Title:         item.Title,
		CharacterName: item.CharacterName,
		Rarity:        item.Rarity,
		Weight:        item.Weight,
		MediaRef:      item.MediaRef,
	}
}
