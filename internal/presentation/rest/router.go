package rest

import (
	"net/http"

	authapp "gacha-server/internal/application/auth"
	dailygrantapp "gacha-server/internal/application/dailygrant"
	gachaapp "gacha-server/internal/application/gacha"
	historyapp "gacha-server/internal/application/history"
	pointsapp "gacha-server/internal/application/points"
	"gacha-server/internal/infrastructure/config"
	otelinfra "gacha-server/internal/infrastructure/observability/otel"
	"gacha-server/internal/presentation/rest/handler"
	restmiddleware "gacha-server/internal/presentation/rest/middleware"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// HealthChecker 依存バックエンドの死活確認
type HealthChecker interface {
	HealthCheck() error
}

// Router REST APIルーター
type Router struct {
	echo              *echo.Echo
	authHandler       *handler.AuthHandler
	pointsHandler     *handler.PointsHandler
	gachaHandler      *handler.GachaHandler
	dailyGrantHandler *handler.DailyGrantHandler
	historyHandler    *handler.HistoryHandler
}

// NewRouter 新しいRouterを作成。dbがnilの場合、ヘルスチェックは死活確認を省略する
func NewRouter(
	cfg *config.Config,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
	db HealthChecker,
	authService *authapp.AuthApplicationService,
	pointsService *pointsapp.PointsApplicationService,
	gachaService *gachaapp.GachaApplicationService,
	dailyGrantService *dailygrantapp.DailyGrantApplicationService,
	historyService *historyapp.HistoryApplicationService,
) (*Router, error) {
	e := echo.New()

	// Echoのデフォルトエラーハンドラーを無効化（カスタムエラーハンドラーを使用）
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		// エラーハンドリングミドルウェアで処理される
	}

	// ミドルウェアの設定
	setupMiddleware(e, cfg, logger, metrics)

	// ハンドラーの作成
	authHandler := handler.NewAuthHandler(authService)
	pointsHandler := handler.NewPointsHandler(pointsService)
	gachaHandler := handler.NewGachaHandler(gachaService)
	dailyGrantHandler := handler.NewDailyGrantHandler(dailyGrantService)
	historyHandler := handler.NewHistoryHandler(historyService)

	// ルーティングの設定
	setupRoutes(e, cfg, logger, db, authHandler, pointsHandler, gachaHandler, dailyGrantHandler, historyHandler)

	return &Router{
		echo:              e,
		authHandler:       authHandler,
		pointsHandler:     pointsHandler,
		gachaHandler:      gachaHandler,
		dailyGrantHandler: dailyGrantHandler,
		historyHandler:    historyHandler,
	}, nil
}

// setupMiddleware ミドルウェアを設定
func setupMiddleware(e *echo.Echo, cfg *config.Config, logger *otelinfra.Logger, metrics *otelinfra.Metrics) {
	// リカバリーミドルウェア
	e.Use(middleware.Recover())

	// CORS設定
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"}, // 本番環境では適切に設定
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE, echo.OPTIONS},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	// リクエストIDの設定
	e.Use(middleware.RequestID())

	// セキュリティヘッダー
	e.Use(restmiddleware.SecurityHeadersMiddleware())

	// トレーシングミドルウェア
	e.Use(restmiddleware.TracingMiddleware())

	// メトリクスミドルウェア
	e.Use(restmiddleware.MetricsMiddleware(metrics))

	// ログミドルウェア
	e.Use(restmiddleware.LoggingMiddleware(logger))

	// エラーハンドリングミドルウェア
	e.Use(restmiddleware.ErrorHandlerMiddleware(logger))
}

// setupRoutes ルーティングを設定
func setupRoutes(
	e *echo.Echo,
	cfg *config.Config,
	logger *otelinfra.Logger,
	db HealthChecker,
	authHandler *handler.AuthHandler,
	pointsHandler *handler.PointsHandler,
	gachaHandler *handler.GachaHandler,
	dailyGrantHandler *handler.DailyGrantHandler,
	historyHandler *handler.HistoryHandler,
) {
	// API v1グループ
	api := e.Group("/api/v1")

	// トークン発行。Botバックエンドからの呼び出しを想定し、APIキーで保護する
	api.POST("/auth/token", authHandler.GenerateToken, restmiddleware.APIKeyMiddleware(&cfg.AdminAPI, logger))

	// JWT認証が必要なユーザーAPIエンドポイント
	me := api.Group("/me", restmiddleware.AuthMiddleware(&cfg.JWT, logger))
	me.GET("/balance", pointsHandler.GetBalance)
	me.POST("/collections/:collection/draw", gachaHandler.Draw)
	me.GET("/collections/:collection/items", gachaHandler.ListOwned)
	me.GET("/transactions", historyHandler.GetTransactionHistory)

	// APIキー認証が必要な管理APIエンドポイント
	admin := api.Group("/admin", restmiddleware.APIKeyMiddleware(&cfg.AdminAPI, logger))
	admin.GET("/users/:user_id/balance", pointsHandler.GetBalanceAdmin)
	admin.PUT("/users/:user_id/balance", pointsHandler.SetBalance)
	admin.POST("/users/:user_id/grant", pointsHandler.GrantPoints)
	admin.GET("/users/:user_id/transactions", historyHandler.GetTransactionHistoryAdmin)
	admin.POST("/grants/all", pointsHandler.GrantAllPoints)
	admin.GET("/grants/daily", dailyGrantHandler.GetSetting)
	admin.PUT("/grants/daily", dailyGrantHandler.SetSetting)
	admin.POST("/grants/daily/run", dailyGrantHandler.Run)
	admin.GET("/collections", gachaHandler.ListCollections)
	admin.GET("/collections/:collection/items", gachaHandler.ListCatalog)

	// ヘルスチェックエンドポイント（認証不要）
	e.GET("/health", func(c echo.Context) error {
		if db != nil {
			if err := db.HealthCheck(); err != nil {
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			}
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
}

// Start サーバーを起動
func (r *Router) Start(address string) error {
	return r.echo.Start(address)
}

// Shutdown サーバーをシャットダウン
func (r *Router) Shutdown() error {
	return r.echo.Close()
}
