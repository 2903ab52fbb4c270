package config

import (
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	Validator *validator.Validate
}

// AppConfig represents the application configuration
type AppConfig struct {
	Port        string
	Environment string
	APIKey      string

	RateLimitPerMinute int

	DatabaseDriver string
	DatabaseDSN    string

	// GatewayURL overrides the BluePay endpoint, used against a local stub
	GatewayURL     string
	GatewayTimeout time.Duration

	PrimaryCurrency string

	OpenSearchURL  string
	OpenSearchUser string
	OpenSearchPass string
	EnableLogging  bool
	LoggingLevel   string
}

var (
	instance          *Config
	appConfigInstance *AppConfig
	appConfigOnce     sync.Once
	instanceOnce      sync.Once
)

func App() *Config {
	instanceOnce.Do(func() {
		instance = &Config{
			Validator: validator.New(),
		}
	})
	return instance
}

// GetAppConfig returns the application configuration
func GetAppConfig() *AppConfig {
	appConfigOnce.Do(func() {
		appConfigInstance = LoadAppConfig()
	})
	return appConfigInstance
}

// LoadAppConfig reads the configuration from the environment without caching it
func LoadAppConfig() *AppConfig {
	return &AppConfig{
		Port:               GetEnv("APP_PORT", "9999"),
		Environment:        GetEnv("ENVIRONMENT", "development"),
		APIKey:             GetEnv("API_KEY", ""),
		RateLimitPerMinute: GetIntEnv("RATE_LIMIT_PER_MINUTE", 100),
		DatabaseDriver:     GetEnv("DB_DRIVER", "sqlite3"),
		DatabaseDSN:        GetEnv("DB_DSN", "./bluepay.db"),
		GatewayURL:         GetEnv("BLUEPAY_GATEWAY_URL", ""),
		GatewayTimeout:     time.Duration(GetIntEnv("BLUEPAY_TIMEOUT_SECONDS", 30)) * time.Second,
		PrimaryCurrency:    GetEnv("PRIMARY_CURRENCY", "USD"),
		OpenSearchURL:      GetEnv("OPENSEARCH_URL", "http://localhost:9200"),
		OpenSearchUser:     GetEnv("OPENSEARCH_USER", ""),
		OpenSearchPass:     GetEnv("OPENSEARCH_PASSWORD", ""),
		EnableLogging:      GetBoolEnv("ENABLE_OPENSEARCH_LOGGING", false),
		LoggingLevel:       GetEnv("LOGGING_LEVEL", "info"),
	}
}

// GetEnv returns the value of an environment variable or a default value
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetBoolEnv returns the boolean value of an environment variable or a default value
func GetBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// GetIntEnv returns the integer value of an environment variable or a default value
func GetIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
