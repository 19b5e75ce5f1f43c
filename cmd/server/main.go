package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	authapp "gacha-server/internal/application/auth"
	dailygrantapp "gacha-server/internal/application/dailygrant"
	gachaapp "gacha-server/internal/application/gacha"
	historyapp "gacha-server/internal/application/history"
	pointsapp "gacha-server/internal/application/points"
	"gacha-server/internal/domain/cooldown"
	"gacha-server/internal/domain/gacha"
	"gacha-server/internal/infrastructure/config"
	"gacha-server/internal/infrastructure/ingestion"
	otelinfra "gacha-server/internal/infrastructure/observability/otel"
	"gacha-server/internal/infrastructure/persistence/memory"
	"gacha-server/internal/infrastructure/persistence/mysql"
	"gacha-server/internal/infrastructure/scheduler"
	"gacha-server/internal/presentation/rest"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// OpenTelemetryの初期化
	tracerShutdown, err := otelinfra.InitTracer(&cfg.OpenTelemetry)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerShutdown(ctx); err != nil {
			log.Printf("Failed to shutdown tracer: %v", err)
		}
	}()

	meterShutdown, err := otelinfra.InitMeter(&cfg.OpenTelemetry)
	if err != nil {
		log.Fatalf("Failed to initialize meter: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterShutdown(ctx); err != nil {
			log.Printf("Failed to shutdown meter: %v", err)
		}
	}()

	// ロガーとメトリクスの初期化
	tracer := otelinfra.Tracer("gacha-server")
	logger := otelinfra.NewLogger(tracer)
	metrics, err := otelinfra.NewMetrics("gacha-server")
	if err != nil {
		log.Fatalf("Failed to create metrics: %v", err)
	}

	// データベース接続の初期化
	db, err := mysql.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// リポジトリの初期化
	balanceRepo := mysql.NewPointsRepository(db)
	catalogRepo := mysql.NewCatalogRepository(db)
	ownershipRepo := mysql.NewOwnershipRepository(db)
	transactionRepo := mysql.NewTransactionRepository(db)
	settingRepo := mysql.NewGrantSettingRepository(db)

	// トランザクションマネージャーの初期化
	txManager := mysql.NewTransactionManager(db)

	// カタログCSVの投入。既存の(collection, item_id)はスキップされる
	loader := ingestion.NewLoader(catalogRepo, logger)
	loaded, err := loader.LoadDir(context.Background(), cfg.Gacha.DataDir)
	if err != nil {
		log.Fatalf("Failed to load catalog data: %v", err)
	}
	log.Printf("Catalog loaded: %d new items", loaded)

	// クールダウンゲートと抽選器の初期化
	gate := cooldown.NewGate(memory.NewCooldownStore(), nil, cfg.Gacha.Cooldown)
	selector := gacha.NewSelector(gacha.DefaultRandomSource())

	// アプリケーションサービスの初期化
	authAppService := authapp.NewAuthApplicationService(&cfg.JWT, logger)

	pointsAppService := pointsapp.NewPointsApplicationService(
		balanceRepo,
		transactionRepo,
		txManager,
		logger,
		metrics,
	)

	gachaAppService := gachaapp.NewGachaApplicationService(
		balanceRepo,
		catalogRepo,
		ownershipRepo,
		transactionRepo,
		txManager,
		gate,
		selector,
		logger,
		metrics,
	)

	dailyGrantAppService := dailygrantapp.NewDailyGrantApplicationService(
		balanceRepo,
		settingRepo,
		transactionRepo,
		logger,
		metrics,
	)

	historyAppService := historyapp.NewHistoryApplicationService(
		transactionRepo,
		logger,
		metrics,
	)

	// REST APIルーターの初期化
	router, err := rest.NewRouter(
		cfg,
		logger,
		metrics,
		db,
		authAppService,
		pointsAppService,
		gachaAppService,
		dailyGrantAppService,
		historyAppService,
	)
	if err != nil {
		log.Fatalf("Failed to create router: %v", err)
	}

	// 日次付与スケジューラーの起動
	schedulerCtx, schedulerCancel := context.WithCancel(context.Background())
	defer schedulerCancel()
	if cfg.Gacha.SchedulerEnabled {
		daily := scheduler.NewDaily(
			cfg.Gacha.GrantHour,
			cfg.Gacha.GrantMinute,
			cfg.Gacha.Location(),
			func(ctx context.Context) error {
				_, err := dailyGrantAppService.Run(ctx)
				return err
			},
			logger,
		)
		go daily.Start(schedulerCtx)
		log.Printf("Daily grant scheduler started: %02d:%02d %s",
			cfg.Gacha.GrantHour, cfg.Gacha.GrantMinute, cfg.Gacha.Timezone)
	}

	// サーバーアドレスの設定
	address := fmt.Sprintf(":%d", cfg.Server.Port)

	// グレースフルシャットダウンの設定
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	// REST APIサーバーを別ゴルーチンで起動
	go func() {
		log.Printf("REST API server starting on %s", address)
		if err := router.Start(address); err != nil {
			log.Printf("REST API server error: %v", err)
		}
	}()

	// シグナルを待機
	<-quit
	log.Println("Shutting down server...")

	// スケジューラーを停止してからサーバーを閉じる
	schedulerCancel()

	if err := router.Shutdown(); err != nil {
		log.Printf("Error shutting down REST API server: %v", err)
	}

	log.Println("Server stopped")
}
