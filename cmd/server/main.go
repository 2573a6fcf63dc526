package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/freelance-escrow/internal/config"
	"github.com/ignatzorin/freelance-escrow/internal/db"
	"github.com/ignatzorin/freelance-escrow/internal/goroutine"
	httpHandlers "github.com/ignatzorin/freelance-escrow/internal/http/handlers"
	httpRouter "github.com/ignatzorin/freelance-escrow/internal/http/router"
	"github.com/ignatzorin/freelance-escrow/internal/logger"
	"github.com/ignatzorin/freelance-escrow/internal/repository"
	"github.com/ignatzorin/freelance-escrow/internal/service"
	"github.com/ignatzorin/freelance-escrow/internal/storage"
	"github.com/ignatzorin/freelance-escrow/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	logger.Init(cfg.LogLevel, cfg.Env)

	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL, db.PoolOptions{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
	})
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	receipts, err := storage.NewReceiptStorage(cfg.ReceiptStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("main: не удалось подготовить хранилище квитанций: %v", err)
	}
	defer func() { _ = receipts.Close() }()

	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	skillRepo := repository.NewSkillRepository(dbConn)
	jobRepo := repository.NewJobRepository(dbConn)
	applicationRepo := repository.NewApplicationRepository(dbConn)
	ledgerRepo := repository.NewLedgerRepository(dbConn)
	reviewRepo := repository.NewReviewRepository(dbConn)
	reportRepo := repository.NewReportRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)

	// Вебсокеты: живая доставка и сохранение уведомлений.
	notificationService := service.NewNotificationService(notificationRepo)
	hub := ws.NewHub(ctx, notificationService)
	goroutine.SafeGo(hub.Run)

	notifier := service.NewNotifier(hub, service.AdminID(cfg.AdminUsername))

	// Сервисы.
	authService := service.NewAuthService(userRepo, tokenManager, service.AdminCredentials{
		Username:     cfg.AdminUsername,
		PasswordHash: cfg.AdminPasswordHash,
	})
	userService := service.NewUserService(userRepo, reviewRepo, jobRepo, notifier)
	skillCache := service.NewCacheService(cfg.CatalogCacheTTL)
	goroutine.SafeGoWithContext(ctx, func(ctx context.Context) { skillCache.RunCleanup(ctx, time.Minute) })
	catalogService := service.NewCatalogService(skillRepo, userRepo, skillCache)
	walletService := service.NewWalletService(ledgerRepo, userRepo, notifier, receipts, cfg.DepositWalletAddress)
	reviewService := service.NewReviewService(reviewRepo, jobRepo, userRepo, notifier)
	dispatcher := service.NewMatchingDispatcher(userRepo, notifier)
	jobService := service.NewJobService(jobRepo, userRepo, skillRepo, dispatcher, reviewService, notifier, cfg.CommissionRate, nil)
	applicationService := service.NewApplicationService(applicationRepo, jobRepo, userRepo, notifier, nil)
	reportService := service.NewReportService(reportRepo, userRepo, notifier)

	engine := httpRouter.SetupRouter(cfg, httpRouter.Handlers{
		Auth:         httpHandlers.NewAuthHandler(authService),
		Profile:      httpHandlers.NewProfileHandler(userService),
		Catalog:      httpHandlers.NewCatalogHandler(catalogService),
		Wallet:       httpHandlers.NewWalletHandler(walletService, cfg.MaxUploadSizeMB),
		Job:          httpHandlers.NewJobHandler(jobService),
		Application:  httpHandlers.NewApplicationHandler(applicationService),
		Review:       httpHandlers.NewReviewHandler(reviewService),
		Report:       httpHandlers.NewReportHandler(reportService),
		Notification: httpHandlers.NewNotificationHandler(notificationService),
		Admin:        httpHandlers.NewAdminHandler(userService, walletService, reportService),
		WS:           httpHandlers.NewWSHandler(hub, tokenManager, cfg.AllowedOrigins),
		Health:       httpHandlers.NewHealthHandler(dbConn, hub),
	}, tokenManager)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	logger.Log.WithField("port", cfg.HTTPPort).Info("HTTP сервер запущен")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("main: ошибка http сервера: %v", err)
	}
	logger.Log.Info("HTTP сервер остановлен")
}

func safeClose(dbConn *sqlx.DB) {
	if err := dbConn.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
