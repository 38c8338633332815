package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-event-booking/internal/api"
	"github.com/sanosuguru/go-event-booking/internal/api/handler"
	"github.com/sanosuguru/go-event-booking/internal/api/middleware"
	"github.com/sanosuguru/go-event-booking/internal/application"
	"github.com/sanosuguru/go-event-booking/internal/config"
	"github.com/sanosuguru/go-event-booking/internal/infrastructure/postgres"
	redisinfra "github.com/sanosuguru/go-event-booking/internal/infrastructure/redis"
	"github.com/sanosuguru/go-event-booking/internal/pkg/auth"
	"github.com/sanosuguru/go-event-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-event-booking/internal/pkg/metrics"
	"github.com/sanosuguru/go-event-booking/internal/worker"
)

func main() {
	// .envファイルがあれば読み込む（なくてもよい）
	_ = godotenv.Load()

	cfg := config.Load()

	// ロガー初期化
	log := logger.NewLogger(os.Getenv("APP_ENV"))
	logger.Set(log)
	defer logger.Sync()

	// メトリクス初期化
	m := metrics.Init()

	// DB接続
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		log.Fatal("データベース接続に失敗", zap.Error(err))
	}
	defer db.Close()

	// マイグレーション実行
	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "migrations"
	}
	if err := postgres.RunMigrations(db.DB, migrationsPath); err != nil {
		log.Fatal("マイグレーションに失敗", zap.Error(err))
	}

	// Redis接続（失敗してもキャッシュなしで継続する）
	var listingCache application.ListingCache = application.NewNoopCache()
	redisClient := redisinfra.NewClient(&cfg.Redis)
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisinfra.Ping(pingCtx, redisClient); err != nil {
		log.Warn("Redis接続に失敗、キャッシュなしで起動します", zap.Error(err))
	} else {
		listingCache = redisinfra.NewListingCache(redisClient)
		defer redisClient.Close()
	}
	pingCancel()

	// リポジトリ初期化
	txManager := postgres.NewTxManager(db, cfg.Database.LockTimeout)
	eventRepo := postgres.NewEventRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	userRepo := postgres.NewUserRepository(db)

	// サービス初期化
	tokenIssuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	eventService := application.NewEventService(txManager, eventRepo, bookingRepo, listingCache, cfg.Cache.TTL, m)
	bookingService := application.NewBookingService(txManager, bookingRepo, eventRepo, listingCache, m)
	authService := application.NewAuthService(userRepo, tokenIssuer)

	// 管理者ブートストラップ
	bootCtx, bootCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := authService.EnsureAdmin(bootCtx, "admin", cfg.Admin.Email, cfg.Admin.Password); err != nil {
		log.Fatal("管理者アカウントの初期化に失敗", zap.Error(err))
	}
	bootCancel()

	// ハンドラー初期化
	eventHandler := handler.NewEventHandler(eventService)
	bookingHandler := handler.NewBookingHandler(bookingService)
	userHandler := handler.NewUserHandler(authService)
	healthHandler := handler.NewHealthHandler()

	// Echo セットアップ
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	middleware.SetupMiddleware(e)
	e.Use(middleware.PrometheusMiddleware(m))

	// ルーティング
	e.GET("/health", healthHandler.Check)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), middleware.MetricsBasicAuth())

	e.POST("/signup", userHandler.Signup)
	e.POST("/token", userHandler.Login)
	e.GET("/events", eventHandler.List)
	e.GET("/events/:id", eventHandler.GetByID)

	authRequired := e.Group("", middleware.JWTAuth(tokenIssuer))
	authRequired.GET("/users/me", userHandler.Me)
	authRequired.POST("/events", eventHandler.Create)
	authRequired.PUT("/events/:id", eventHandler.Update)
	authRequired.DELETE("/events/:id", eventHandler.Delete)
	authRequired.POST("/bookings", bookingHandler.Create)
	authRequired.GET("/bookings/my", bookingHandler.ListMine)
	authRequired.DELETE("/bookings/:id", bookingHandler.Cancel)
	authRequired.GET("/admin/bookings", bookingHandler.ListAll)

	// キャッシュウォーマー起動（間隔0で無効）
	var warmer *worker.ListingCacheWarmer
	warmerCtx, warmerCancel := context.WithCancel(context.Background())
	defer warmerCancel()
	if cfg.Cache.WarmInterval > 0 {
		warmer = worker.NewListingCacheWarmer(eventService, cfg.Cache.WarmInterval)
		go warmer.Start(warmerCtx)
	}

	// サーバー起動
	go func() {
		addr := ":" + cfg.Server.Port
		log.Info("サーバー起動", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()

	// シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("サーバーをシャットダウンしています...")

	if warmer != nil {
		warmer.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatal("サーバーシャットダウンエラー", zap.Error(err))
	}

	log.Info("サーバーが正常にシャットダウンしました")
}
