package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Dosada05/swisscut/catalog"
	"github.com/Dosada05/swisscut/storage"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	ServerPort   int

	CORSAllowedOrigins []string

	R2 storage.CloudflareR2UploaderConfig

	CatalogCachePath         string
	CatalogTTL               time.Duration
	CatalogRequestsPerMinute int
	NetrunnerDBURL           string
	NetrunnerDBV3URL         string
	CatalogLegalFormat       string
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg, err := LoadCatalog()
	if err != nil {
		return nil, err
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	// Без ключа сервер работает только на чтение.
	cfg.JWTSecretKey = os.Getenv("JWT_SECRET_KEY")

	if cfg.ServerPort, err = intEnv("SERVER_PORT", 8080); err != nil {
		return nil, err
	}
	if cfg.ServerPort <= 0 || cfg.ServerPort > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", cfg.ServerPort)
	}

	cfg.CORSAllowedOrigins = listEnv("CORS_ALLOWED_ORIGINS")

	cfg.R2 = storage.CloudflareR2UploaderConfig{
		AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		BucketName:      os.Getenv("R2_BUCKET_NAME"),
		PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
	}

	return cfg, nil
}

// LoadCatalog читает только настройки каталога карт; CLI не нужна база.
func LoadCatalog() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		CatalogCachePath:   stringEnv("CATALOG_CACHE_PATH", "catalog.db"),
		NetrunnerDBURL:     stringEnv("NETRUNNERDB_URL", catalog.DefaultCardsURL),
		NetrunnerDBV3URL:   stringEnv("NETRUNNERDB_V3_URL", catalog.DefaultV3CardsURL),
		CatalogLegalFormat: stringEnv("CATALOG_LEGAL_FORMAT", catalog.DefaultLegalFormat),
	}

	var err error
	if cfg.CatalogTTL, err = durationEnv("CATALOG_TTL", catalog.DefaultTTL); err != nil {
		return nil, err
	}
	if cfg.CatalogTTL <= 0 {
		return nil, fmt.Errorf("CATALOG_TTL must be positive, got %s", cfg.CatalogTTL)
	}
	if cfg.CatalogRequestsPerMinute, err = intEnv("CATALOG_REQUESTS_PER_MINUTE", 30); err != nil {
		return nil, err
	}
	if cfg.CatalogRequestsPerMinute <= 0 {
		return nil, fmt.Errorf("CATALOG_REQUESTS_PER_MINUTE must be positive, got %d", cfg.CatalogRequestsPerMinute)
	}
	return cfg, nil
}

// CatalogClient собирает параметры клиента NetrunnerDB.
func (c *Config) CatalogClient() catalog.ClientConfig {
	return catalog.ClientConfig{
		CardsURL:          c.NetrunnerDBURL,
		V3CardsURL:        c.NetrunnerDBV3URL,
		LegalFormat:       c.CatalogLegalFormat,
		RequestsPerMinute: c.CatalogRequestsPerMinute,
	}
}

func stringEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return n, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return d, nil
}

func listEnv(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
