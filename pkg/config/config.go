package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Ledger    LedgerConfig
	Inventory InventoryConfig
	Alerts    AlertsConfig
	Documents DocumentsConfig
	RateLimit RateLimitConfig
	Metrics   MetricsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	// ConnectRetries is how many extra pings are tried at startup while the
	// database container comes up.
	ConnectRetries int
	ConnectTimeout time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password    string
	DB          int
	DialTimeout time.Duration
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// LedgerConfig tunes fee collection and owner settlement behaviour.
type LedgerConfig struct {
	AllowSplitPayments bool
	ReceiptPrefix      string
	Organisation       string
	OwnerStatsCacheTTL time.Duration
}

// InventoryConfig controls the fuel/urea stock guard.
type InventoryConfig struct {
	EnforceStock bool
	RecentLimit  int
}

// AlertsConfig sets the default look-ahead window for expiry alerts.
type AlertsConfig struct {
	DefaultDays int
}

// DocumentsConfig configures driver and bus document storage.
type DocumentsConfig struct {
	StorageDir       string
	SignedURLSecret  string
	SignedURLTTL     time.Duration
	MaxFileSizeBytes int64
	AllowedMIMEs     []string
}

// RateLimitConfig holds fixed-window limits for sensitive and general routes.
type RateLimitConfig struct {
	Enabled        bool
	LoginMax       int
	LoginWindow    time.Duration
	RegisterMax    int
	RegisterWindow time.Duration
	APIMax         int
	APIWindow      time.Duration
}

type MetricsConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

const (
	devJWTSecret       = "dev_secret"
	devDocumentsSecret = "dev_documents_secret"
)

// Validate refuses to run production with the development secrets.
func (c *Config) Validate() error {
	if c.Env != EnvProduction {
		return nil
	}
	if c.JWT.Secret == "" || c.JWT.Secret == devJWTSecret {
		return errors.New("JWT_SECRET must be set in production")
	}
	if c.Documents.SignedURLSecret == "" || c.Documents.SignedURLSecret == devDocumentsSecret {
		return errors.New("DOCUMENTS_SIGNED_URL_SECRET must be set in production")
	}
	return nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:           v.GetString("DB_HOST"),
		Port:           v.GetInt("DB_PORT"),
		User:           v.GetString("DB_USER"),
		Password:       v.GetString("DB_PASSWORD"),
		Name:           v.GetString("DB_NAME"),
		SSLMode:        v.GetString("DB_SSL_MODE"),
		MaxOpenConns:   v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns:   v.GetInt("DB_MAX_IDLE_CONNS"),
		ConnectRetries: v.GetInt("DB_CONNECT_RETRIES"),
		ConnectTimeout: v.GetDuration("DB_CONNECT_TIMEOUT"),
	}

	cfg.Redis = RedisConfig{
		Host:        v.GetString("REDIS_HOST"),
		Port:        v.GetInt("REDIS_PORT"),
		Password:    v.GetString("REDIS_PASSWORD"),
		DB:          v.GetInt("REDIS_DB"),
		DialTimeout: v.GetDuration("REDIS_DIAL_TIMEOUT"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 7*24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Ledger = LedgerConfig{
		AllowSplitPayments: v.GetBool("LEDGER_ALLOW_SPLIT_PAYMENTS"),
		ReceiptPrefix:      v.GetString("LEDGER_RECEIPT_PREFIX"),
		Organisation:       v.GetString("LEDGER_ORGANISATION"),
		OwnerStatsCacheTTL: parseDuration(v.GetString("OWNER_STATS_CACHE_TTL"), 5*time.Minute),
	}

	recent := v.GetInt("INVENTORY_RECENT_LIMIT")
	if recent <= 0 {
		recent = 10
	}
	cfg.Inventory = InventoryConfig{
		EnforceStock: v.GetBool("INVENTORY_ENFORCE_STOCK"),
		RecentLimit:  recent,
	}

	days := v.GetInt("ALERTS_DEFAULT_DAYS")
	if days <= 0 {
		days = 30
	}
	cfg.Alerts = AlertsConfig{DefaultDays: days}

	maxDocSize := v.GetInt64("DOCUMENTS_MAX_FILE_SIZE")
	if maxDocSize <= 0 {
		maxDocSize = 10 * 1024 * 1024
	}
	cfg.Documents = DocumentsConfig{
		StorageDir:       v.GetString("DOCUMENTS_STORAGE_DIR"),
		SignedURLSecret:  v.GetString("DOCUMENTS_SIGNED_URL_SECRET"),
		SignedURLTTL:     parseDuration(v.GetString("DOCUMENTS_SIGNED_URL_TTL"), 30*time.Minute),
		MaxFileSizeBytes: maxDocSize,
		AllowedMIMEs:     splitAndTrim(v.GetString("DOCUMENTS_ALLOWED_MIME_TYPES")),
	}

	cfg.RateLimit = RateLimitConfig{
		Enabled:        v.GetBool("RATE_LIMIT_ENABLED"),
		LoginMax:       v.GetInt("RATE_LIMIT_LOGIN_MAX"),
		LoginWindow:    parseDuration(v.GetString("RATE_LIMIT_LOGIN_WINDOW"), 15*time.Minute),
		RegisterMax:    v.GetInt("RATE_LIMIT_REGISTER_MAX"),
		RegisterWindow: parseDuration(v.GetString("RATE_LIMIT_REGISTER_WINDOW"), time.Hour),
		APIMax:         v.GetInt("RATE_LIMIT_API_MAX"),
		APIWindow:      parseDuration(v.GetString("RATE_LIMIT_API_WINDOW"), time.Minute),
	}

	cfg.Metrics = MetricsConfig{Enabled: v.GetBool("METRICS_ENABLED")}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "bus_fleet")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONNECT_RETRIES", 5)
	v.SetDefault("DB_CONNECT_TIMEOUT", "5s")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_DIAL_TIMEOUT", "3s")

	v.SetDefault("JWT_SECRET", devJWTSecret)
	v.SetDefault("JWT_EXPIRATION", "168h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("LEDGER_ALLOW_SPLIT_PAYMENTS", false)
	v.SetDefault("LEDGER_RECEIPT_PREFIX", "RCPT")
	v.SetDefault("LEDGER_ORGANISATION", "School Transport Office")
	v.SetDefault("OWNER_STATS_CACHE_TTL", "5m")

	v.SetDefault("INVENTORY_ENFORCE_STOCK", true)
	v.SetDefault("INVENTORY_RECENT_LIMIT", 10)

	v.SetDefault("ALERTS_DEFAULT_DAYS", 30)

	v.SetDefault("DOCUMENTS_STORAGE_DIR", "./documents")
	v.SetDefault("DOCUMENTS_SIGNED_URL_SECRET", devDocumentsSecret)
	v.SetDefault("DOCUMENTS_SIGNED_URL_TTL", "30m")
	v.SetDefault("DOCUMENTS_MAX_FILE_SIZE", 10*1024*1024)
	v.SetDefault("DOCUMENTS_ALLOWED_MIME_TYPES", "application/pdf,image/jpeg,image/png")

	v.SetDefault("RATE_LIMIT_ENABLED", true)
	v.SetDefault("RATE_LIMIT_LOGIN_MAX", 5)
	v.SetDefault("RATE_LIMIT_LOGIN_WINDOW", "15m")
	v.SetDefault("RATE_LIMIT_REGISTER_MAX", 3)
	v.SetDefault("RATE_LIMIT_REGISTER_WINDOW", "1h")
	v.SetDefault("RATE_LIMIT_API_MAX", 100)
	v.SetDefault("RATE_LIMIT_API_WINDOW", "1m")

	v.SetDefault("METRICS_ENABLED", true)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
