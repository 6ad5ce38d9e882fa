package config

import (
	"log"
	"os"
	"strconv"

	"github.com/erayastyle/ops-hub/pkg/db"
	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string
	LogLevel    string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	// Shopify Admin API. Blank values leave the integration unconfigured;
	// the rest of the application keeps working without it.
	ShopifyShopURL       string
	ShopifyAccessToken   string
	ShopifyWebhookSecret string

	SyncIntervalMinutes int

	SessionTTLDays     int
	SeedAdminEmail     string
	SeedAdminPassword  string
	SeedAdminName      string
	UploadDir          string
	MaxUploadSizeBytes int64
}

func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg := Config{
		AppName:     getEnv("APP_NAME", "eraya-ops-hub"),
		AppVersion:  getEnv("APP_VERSION", "2.0.0"),
		Environment: getEnv("ENVIRONMENT", "development"),
		HTTPAddr:    getEnv("HTTP_ADDR", ":8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		DBType:            getEnv("DB_TYPE", "sqlite"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBName:            getEnv("DB_NAME", "opshub"),
		DBUser:            getEnv("DB_USER", "opshub"),
		DBPassword:        getEnv("DB_PASSWORD", ""),
		DBSSLMode:         getEnv("DB_SSLMODE", "disable"),
		DBMaxIdleConn:     getEnvInt("DB_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getEnvInt("DB_MAX_OPEN_CONN", 25),
		DBConnMaxLifetime: getEnvInt("DB_CONN_MAX_LIFETIME", 300),
		DBConnMaxIdleTime: getEnvInt("DB_CONN_MAX_IDLE_TIME", 60),

		ShopifyShopURL:       getEnv("SHOPIFY_SHOP", ""),
		ShopifyAccessToken:   getEnv("SHOPIFY_TOKEN", ""),
		ShopifyWebhookSecret: getEnv("SHOPIFY_WEBHOOK_SECRET", ""),

		SyncIntervalMinutes: getEnvInt("SYNC_INTERVAL_MINUTES", 10),

		SessionTTLDays:     getEnvInt("SESSION_EXPIRY_DAYS", 7),
		SeedAdminEmail:     getEnv("SEED_ADMIN_EMAIL", ""),
		SeedAdminPassword:  getEnv("SEED_ADMIN_PASSWORD", ""),
		SeedAdminName:      getEnv("SEED_ADMIN_NAME", "Admin"),
		UploadDir:          getEnv("UPLOAD_DIR", "uploads"),
		MaxUploadSizeBytes: int64(getEnvInt("MAX_UPLOAD_SIZE_BYTES", 50*1024*1024)),
	}

	return cfg, nil
}

// ShopifyConfigured reports whether upstream credentials are present.
func (c Config) ShopifyConfigured() bool {
	return c.ShopifyShopURL != "" && c.ShopifyAccessToken != ""
}

func (c Config) DBConfig() db.Config {
	return db.Config{
		Type:            c.DBType,
		Host:            c.DBHost,
		Port:            c.DBPort,
		Name:            c.DBName,
		User:            c.DBUser,
		Password:        c.DBPassword,
		SSLMode:         c.DBSSLMode,
		MaxIdleConn:     c.DBMaxIdleConn,
		MaxOpenConn:     c.DBMaxOpenConn,
		ConnMaxLifetime: c.DBConnMaxLifetime,
		ConnMaxIdleTime: c.DBConnMaxIdleTime,
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("invalid %s=%q, using default %d", key, raw, def)
		return def
	}
	return parsed
}
