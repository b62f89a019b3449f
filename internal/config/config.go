package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultEndpoint         = "https://indexing.googleapis.com/v3/urlNotifications:publish"
	DefaultNotificationType = "URL_UPDATED"
	DefaultScope            = "https://www.googleapis.com/auth/indexing"
	DefaultSheetsBaseURL    = "https://sheets.googleapis.com/v4/spreadsheets"
)

// Config is the full service configuration.
type Config struct {
	App         AppConfig
	Notifier    NotifierConfig
	Run         RunConfig
	Credentials CredentialsConfig
	Sheet       SheetConfig
	DB          DBConfig
	Kafka       KafkaConfig
	Redis       RedisConfig
}

type AppConfig struct {
	Addr       string
	LogLevel   string
	AuthSecret string
}

// NotifierConfig controls a single URL submission.
type NotifierConfig struct {
	Endpoint           string
	NotificationType   string
	MaxAttempts        int
	RetryDelay         time.Duration
	RequestTimeout     time.Duration
	InsecureSkipVerify bool
	RequestsPerSecond  float64
	Burst              int
}

// RunConfig controls sharding and fan-out.
type RunConfig struct {
	QuotaPerAccount    int
	AccountCount       int
	MaxInFlight        int
	AccountConcurrency int
}

type CredentialsConfig struct {
	Dir     string
	Pattern string
	Scope   string
}

type SheetConfig struct {
	BaseURL string
	ID      string
	Range   string
	APIKey  string
}

type DBConfig struct {
	URL string
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0 && k.Topic != ""
}

type RedisConfig struct {
	Addr     string
	Password string
	LockTTL  time.Duration
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	// a missing .env is fine, the environment may already be populated
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds and validates a Config from the process environment.
func FromEnv() (Config, error) {
	accountCount, err := requiredInt("ACCOUNT_COUNT")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		App: AppConfig{
			Addr:       getEnv("HTTP_ADDR", ":8080"),
			LogLevel:   getEnv("LOG_LEVEL", "info"),
			AuthSecret: os.Getenv("AUTH_SECRET"),
		},
		Notifier: NotifierConfig{
			Endpoint:           getEnv("INDEXING_ENDPOINT", DefaultEndpoint),
			NotificationType:   getEnv("NOTIFICATION_TYPE", DefaultNotificationType),
			MaxAttempts:        getEnvInt("MAX_ATTEMPTS", 3),
			RetryDelay:         getEnvDuration("RETRY_DELAY", 2*time.Second),
			RequestTimeout:     getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
			InsecureSkipVerify: getEnvBool("INSECURE_SKIP_VERIFY", true),
			RequestsPerSecond:  getEnvFloat("REQUESTS_PER_SECOND", 0),
			Burst:              getEnvInt("REQUEST_BURST", 1),
		},
		Run: RunConfig{
			QuotaPerAccount:    getEnvInt("URLS_PER_ACCOUNT", 200),
			AccountCount:       accountCount,
			MaxInFlight:        getEnvInt("MAX_IN_FLIGHT", 50),
			AccountConcurrency: getEnvInt("ACCOUNT_CONCURRENCY", 1),
		},
		Credentials: CredentialsConfig{
			Dir:     getEnv("CREDENTIALS_DIR", "json_folder"),
			Pattern: getEnv("CREDENTIALS_PATTERN", "account%d.json"),
			Scope:   getEnv("INDEXING_SCOPE", DefaultScope),
		},
		Sheet: SheetConfig{
			BaseURL: getEnv("SHEETS_BASE_URL", DefaultSheetsBaseURL),
			ID:      os.Getenv("SHEET_ID"),
			Range:   getEnv("SHEET_RANGE", "A2:A2001"),
			APIKey:  os.Getenv("SHEETS_API_KEY"),
		},
		DB: DBConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(os.Getenv("KAFKA_BROKERS")),
			Topic:   os.Getenv("KAFKA_EVENTS_TOPIC"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			LockTTL:  getEnvDuration("RUN_LOCK_TTL", time.Hour),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the limits the dispatch engine relies on.
func (c Config) Validate() error {
	if c.Notifier.Endpoint == "" {
		return &ConfigError{Field: "INDEXING_ENDPOINT", Message: "endpoint cannot be empty"}
	}
	if c.Notifier.MaxAttempts < 1 {
		return &ConfigError{Field: "MAX_ATTEMPTS", Message: "must be at least 1"}
	}
	if c.Notifier.RetryDelay < 0 {
		return &ConfigError{Field: "RETRY_DELAY", Message: "must not be negative"}
	}
	if c.Notifier.RequestsPerSecond < 0 {
		return &ConfigError{Field: "REQUESTS_PER_SECOND", Message: "must not be negative"}
	}
	if c.Run.QuotaPerAccount < 1 {
		return &ConfigError{Field: "URLS_PER_ACCOUNT", Message: "must be at least 1"}
	}
	if c.Run.AccountCount < 1 {
		return &ConfigError{Field: "ACCOUNT_COUNT", Message: "must be at least 1"}
	}
	if c.Run.MaxInFlight < 1 {
		return &ConfigError{Field: "MAX_IN_FLIGHT", Message: "must be at least 1"}
	}
	if c.Run.AccountConcurrency < 1 {
		return &ConfigError{Field: "ACCOUNT_CONCURRENCY", Message: "must be at least 1"}
	}
	if !strings.Contains(c.Credentials.Pattern, "%d") {
		return &ConfigError{Field: "CREDENTIALS_PATTERN", Message: "must contain %d for the account number"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s: %s", e.Field, e.Message)
}

func requiredInt(key string) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return 0, &ConfigError{Field: key, Message: "must be set explicitly"}
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, &ConfigError{Field: key, Message: fmt.Sprintf("not an integer: %q", value)}
	}
	return n, nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
