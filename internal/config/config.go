package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	SourcePostgres = "postgres"
	SourceHRAPI    = "hrapi"
)

type Config struct {
	App      AppConfig
	Source   string
	Database DatabaseConfig
	HRAPI    HRAPIConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Report   ReportConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	Timezone       string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// HRAPIConfig holds the external HR system's REST API settings
type HRAPIConfig struct {
	BaseURL           string
	APIKey            string
	APISecret         string
	OAuthClientID     string
	OAuthClientSecret string
	OAuthTokenURL     string
	Timeout           time.Duration
	MaxConcurrent     int
}

// RedisConfig holds the master-data cache settings. An empty Addr disables the cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration

	// RefreshInterval reloads master data into the cache in the background; zero disables it.
	RefreshInterval time.Duration
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// ReportConfig holds the overtime engine limits
type ReportConfig struct {
	MaxRangeDays   int
	Workers        int
	OvernightGrace time.Duration
	Timeout        time.Duration
}

// Load reads configuration from the environment, after loading .env when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	var (
		config = &Config{}
		errs   []error
	)

	// Application configuration
	config.App = AppConfig{
		Port:           getEnvInt("APP_PORT", 8080, &errs),
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Timezone:       getEnv("APP_TIMEZONE", "UTC"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
	}

	config.Source = strings.ToLower(getEnv("SOURCE_TYPE", SourcePostgres))

	// Database configuration
	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 5432, &errs),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "hris"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// HR REST API configuration
	config.HRAPI = HRAPIConfig{
		BaseURL:           getEnv("HR_API_BASE_URL", ""),
		APIKey:            getEnv("HR_API_KEY", ""),
		APISecret:         getEnv("HR_API_SECRET", ""),
		OAuthClientID:     getEnv("HR_API_OAUTH_CLIENT_ID", ""),
		OAuthClientSecret: getEnv("HR_API_OAUTH_CLIENT_SECRET", ""),
		OAuthTokenURL:     getEnv("HR_API_OAUTH_TOKEN_URL", ""),
		Timeout:           getEnvDuration("HR_API_TIMEOUT", 30*time.Second, &errs),
		MaxConcurrent:     getEnvInt("HR_API_MAX_CONCURRENT", 4, &errs),
	}

	// Redis configuration
	config.Redis = RedisConfig{
		Addr:     getEnv("REDIS_ADDR", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0, &errs),
		TTL:      getEnvDuration("CACHE_TTL", 10*time.Minute, &errs),

		RefreshInterval: getEnvDuration("CACHE_REFRESH_INTERVAL", 5*time.Minute, &errs),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Report configuration
	config.Report = ReportConfig{
		MaxRangeDays:   getEnvInt("REPORT_MAX_RANGE_DAYS", 366, &errs),
		Workers:        getEnvInt("REPORT_WORKERS", 8, &errs),
		OvernightGrace: getEnvDuration("REPORT_OVERNIGHT_GRACE", 4*time.Hour, &errs),
		Timeout:        getEnvDuration("REPORT_TIMEOUT", 60*time.Second, &errs),
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}

	switch c.Source {
	case SourcePostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	case SourceHRAPI:
		if c.HRAPI.BaseURL == "" {
			return fmt.Errorf("HR_API_BASE_URL is required")
		}
		if c.HRAPI.APIKey == "" && c.HRAPI.OAuthClientID == "" {
			return fmt.Errorf("HR_API_KEY or HR_API_OAUTH_CLIENT_ID is required")
		}
		if c.HRAPI.OAuthClientID != "" && c.HRAPI.OAuthTokenURL == "" {
			return fmt.Errorf("HR_API_OAUTH_TOKEN_URL is required")
		}
	default:
		return fmt.Errorf("unsupported SOURCE_TYPE %q", c.Source)
	}

	if c.Report.MaxRangeDays <= 0 {
		return fmt.Errorf("REPORT_MAX_RANGE_DAYS must be positive")
	}
	if c.Report.Workers <= 0 {
		return fmt.Errorf("REPORT_WORKERS must be positive")
	}
	if c.Report.OvernightGrace < 0 {
		return fmt.Errorf("REPORT_OVERNIGHT_GRACE must not be negative")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// Location resolves APP_TIMEZONE, used to turn punch timestamps into calendar dates.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.App.Timezone)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int, errs *[]error) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return d
}

func getEnvSlice(key, fallback string) []string {
	value := getEnv(key, fallback)
	if value == "" {
		return []string{}
	}
	var result []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}
