package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quest-server/admin-service/internal/config"
	"quest-server/admin-service/internal/handler"
	"quest-server/admin-service/internal/service"
	sharedDatabase "quest-server/shared/database"
	sharedLogger "quest-server/shared/logger"
	sharedMiddleware "quest-server/shared/middleware"
	sharedStorage "quest-server/shared/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	log.Println("Запуск Admin Service...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	logger, err := sharedLogger.New(sharedLogger.Config{
		Level:    cfg.LogLevel,
		Encoding: "json",
	})
	if err != nil {
		log.Fatalf("Не удалось инициализировать логгер: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()
	sugar.Info("Логгер инициализирован", zap.String("logLevel", cfg.LogLevel))

	// Подключение к PostgreSQL
	dbPool, err := setupDatabase(cfg)
	if err != nil {
		sugar.Fatalf("Не удалось подключиться к БД: %v", err)
	}
	defer dbPool.Close()
	sugar.Info("Успешное подключение к PostgreSQL")

	// Блоб-хранилище ассетов
	blobStore, err := sharedStorage.NewS3BlobStore(context.Background(), sharedStorage.Config{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		Bucket:    cfg.S3Bucket,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
	}, logger)
	if err != nil {
		sugar.Fatalf("Не удалось создать S3 клиент: %v", err)
	}

	// Инициализация зависимостей
	questRepo := sharedDatabase.NewPgQuestRepository(dbPool, logger)
	userRepo := sharedDatabase.NewPgUserRepository(dbPool, logger)
	authoringService := service.NewAuthoringService(questRepo, userRepo, blobStore, cfg.AssetURLTTL, logger)
	h := handler.NewAdminHandler(authoringService, logger, cfg.JWTSecret)

	// Настройка Gin
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(sharedMiddleware.ZapLoggingMiddlewareForGin(logger))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	h.RegisterRoutes(router)

	// Запуск HTTP сервера
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		sugar.Infof("Admin сервер запускается на порту %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("Ошибка запуска HTTP сервера: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	sugar.Info("Получен сигнал завершения, начинаем остановку сервера...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		sugar.Fatalf("Ошибка при остановке сервера: %v", err)
	}

	sugar.Info("Сервер успешно остановлен")
}

// setupDatabase инициализирует и возвращает пул соединений с БД
func setupDatabase(cfg *config.Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга DSN: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.DBMaxConns)
	poolConfig.MaxConnIdleTime = cfg.DBIdleTimeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	dbPool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("не удалось создать пул соединений: %w", err)
	}
	if err = dbPool.Ping(ctx); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("не удалось подключиться к БД (ping failed): %w", err)
	}
	return dbPool, nil
}
