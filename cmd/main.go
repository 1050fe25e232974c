package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/federgolf/referee-system/config"
	"github.com/federgolf/referee-system/db"
	"github.com/federgolf/referee-system/handlers"
	"github.com/federgolf/referee-system/live"
	"github.com/federgolf/referee-system/repositories"
	api "github.com/federgolf/referee-system/routes"
	"github.com/federgolf/referee-system/services"
	"github.com/federgolf/referee-system/storage"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Инициализация загрузчика файлов (Cloudflare R2)
	cloudflareUploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	})
	if err != nil {
		logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Cloudflare R2 uploader initialized")

	// Инициализация WebSocket Hub
	wsHub := live.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев
	refereeRepo := repositories.NewPostgresRefereeRepository(dbConn)
	zoneRepo := repositories.NewPostgresZoneRepository(dbConn)
	assignmentRepo := repositories.NewPostgresAssignmentRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn, assignmentRepo)
	availabilityRepo := repositories.NewPostgresAvailabilityRepository(dbConn)
	clauseRepo := repositories.NewPostgresClauseRepository(dbConn)
	notificationRepo := repositories.NewPostgresNotificationRepository(dbConn)
	institutionalRepo := repositories.NewPostgresInstitutionalEmailRepository(dbConn)
	logger.Info("Repositories initialized")

	// Инициализация сервисов
	jwtSecret := []byte(cfg.JWTSecretKey)
	emailService := services.NewSMTPEmailService(cfg, logger)
	authService := services.NewAuthService(refereeRepo, jwtSecret)
	validationService := services.NewValidationService(assignmentRepo, tournamentRepo, refereeRepo, cfg.OverloadThreshold)
	recipientService := services.NewRecipientService(availabilityRepo, refereeRepo, zoneRepo, emailService, cfg, logger)
	availabilityService := services.NewAvailabilityService(availabilityRepo, recipientService, logger)
	clauseService := services.NewClauseService(clauseRepo)
	documentService := services.NewDocumentService(cfg)
	tournamentService := services.NewTournamentService(tournamentRepo, assignmentRepo, validationService, wsHub, logger)
	notificationService := services.NewNotificationService(
		notificationRepo,
		tournamentRepo,
		clauseRepo,
		refereeRepo,
		institutionalRepo,
		clauseService,
		documentService,
		emailService,
		cloudflareUploader,
		wsHub,
		cfg,
		logger,
	)
	logger.Info("Services initialized")

	// Инициализация обработчиков HTTP
	authHandler := handlers.NewAuthHandler(authService)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService)
	availabilityHandler := handlers.NewAvailabilityHandler(availabilityService)
	validationHandler := handlers.NewValidationHandler(validationService)
	clauseHandler := handlers.NewClauseHandler(clauseService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	zoneHandler := handlers.NewZoneHandler(zoneRepo)
	institutionalHandler := handlers.NewInstitutionalHandler(institutionalRepo)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, logger)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		jwtSecret,
		authHandler,
		tournamentHandler,
		availabilityHandler,
		validationHandler,
		clauseHandler,
		notificationHandler,
		zoneHandler,
		institutionalHandler,
		webSocketHandler,
	)
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
