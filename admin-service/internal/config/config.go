package config

import (
	"fmt"
	"log"
	"time"

	"quest-server/shared/utils"

	"github.com/kelseyhightower/envconfig"
)

// Config содержит конфигурацию для Admin Service
type Config struct {
	// Настройки сервера
	Port     string `envconfig:"ADMIN_SERVER_PORT" default:"8084"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Настройки PostgreSQL
	DBHost        string        `envconfig:"DB_HOST" required:"true"`
	DBPort        string        `envconfig:"DB_PORT" default:"5432"`
	DBUser        string        `envconfig:"DB_USER" required:"true"`
	DBName        string        `envconfig:"DB_NAME" required:"true"`
	DBSSLMode     string        `envconfig:"DB_SSL_MODE" default:"disable"`
	DBMaxConns    int           `envconfig:"DB_MAX_CONNECTIONS" default:"5"`
	DBIdleTimeout time.Duration `envconfig:"DB_MAX_IDLE_MINUTES" default:"5m"`
	// Секретное поле БЕЗ envconfig тега
	DBPassword string

	// Настройки S3-совместимого хранилища ассетов квестов
	S3Endpoint  string        `envconfig:"S3_ENDPOINT" default:""`
	S3Region    string        `envconfig:"S3_REGION" default:"us-east-1"`
	S3Bucket    string        `envconfig:"S3_BUCKET" required:"true"`
	S3AccessKey string        `envconfig:"S3_ACCESS_KEY" required:"true"`
	AssetURLTTL time.Duration `envconfig:"ASSET_URL_TTL" default:"1h"`
	// Секретное поле БЕЗ envconfig тега
	S3SecretKey string

	// Настройки JWT (проверка админского токена в middleware)
	// Секретное поле БЕЗ envconfig тега
	JWTSecret string
}

// GetDSN возвращает строку подключения (DSN) для PostgreSQL
func (c *Config) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// LoadConfig загружает конфигурацию из переменных окружения и секретов
func LoadConfig() (*Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки конфигурации admin-service: %w", err)
	}

	// Загружаем ОБЯЗАТЕЛЬНЫЕ секреты
	var loadErr error
	cfg.DBPassword, loadErr = utils.ReadSecret("db_password")
	if loadErr != nil {
		return nil, loadErr
	}

	cfg.S3SecretKey, loadErr = utils.ReadSecret("s3_secret_key")
	if loadErr != nil {
		return nil, loadErr
	}

	cfg.JWTSecret, loadErr = utils.ReadSecret("jwt_secret")
	if loadErr != nil {
		return nil, loadErr
	}

	log.Printf("Конфигурация Admin Service загружена (секреты из файлов):")
	log.Printf("  Port: %s", cfg.Port)
	log.Printf("  LogLevel: %s", cfg.LogLevel)
	log.Printf("  DB DSN: postgres://%s:***@%s:%s/%s?sslmode=%s", cfg.DBUser, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBSSLMode)
	log.Printf("  S3 Bucket: %s (endpoint: %q, region: %s)", cfg.S3Bucket, cfg.S3Endpoint, cfg.S3Region)
	log.Printf("  Asset URL TTL: %v", cfg.AssetURLTTL)
	log.Println("  JWT Secret: [ЗАГРУЖЕН]")

	return &cfg, nil
}
