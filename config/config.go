// Package config has the configuration file for the app
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment is the deployment environment the process runs in
type Environment string

const (
	EnvDevelopment Environment = "dev"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "prod"
	EnvTest        Environment = "test"
)

func (e Environment) String() string {
	return string(e)
}

// ParseEnvironment accepts the short and long spellings of an environment
func ParseEnvironment(s string) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dev", "development":
		return EnvDevelopment, nil
	case "staging":
		return EnvStaging, nil
	case "prod", "production":
		return EnvProduction, nil
	case "test":
		return EnvTest, nil
	}
	return EnvDevelopment, fmt.Errorf("ENV must be one of: [dev staging prod test], got: %s", s)
}

// Store drivers understood by kvstore.Open
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverRedis    = "redis"
)

const devJWTSecret = "dev-only-secret-do-not-use-in-prod"

// Config holds all application configuration
type Config struct {
	Port             string
	Address          string
	Env              Environment
	LogLevel         string
	LogDir           string
	LogRetentionDays int   // Number of days to keep log files
	MaxLogFileSize   int64 // Maximum log file size in bytes
	MaxRequestBody   int64 // Maximum request body size in bytes
	MaxHeaderSize    int64 // Maximum header size in bytes

	StoreDriver   string
	StoreDSN      string
	RedisAddr     string
	RedisPassword string
	RedisPrefix   string

	JWTSecret string
	TokenTTL  time.Duration

	SeedOnStart       bool
	RecoveryInterval  time.Duration
	LowStockThreshold int

	RateLimitRate     int64 // tokens refilled per second
	RateLimitCapacity int64
}

// LoadDotEnv reads variables from a .env file into the process environment.
// A missing file is not an error. Variables already set win.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load loads and validates configuration from environment variables
func Load() (*Config, error) {
	env, err := ParseEnvironment(getEnvWithDefault("ENV", "dev"))
	if err != nil {
		return nil, fmt.Errorf("configuration validation failed: invalid ENV: %w", err)
	}

	cfg := &Config{
		Port:             getEnvWithDefault("PORT", "8000"),
		Address:          getEnvWithDefault("ADDRESS", "127.0.0.1"),
		Env:              env,
		LogLevel:         getEnvWithDefault("LOG_LEVEL", "info"),
		LogDir:           getEnvWithDefault("LOG_DIR", "logs"),
		LogRetentionDays: getIntEnvWithDefault("LOG_RETENTION_DAYS", 14),
		MaxLogFileSize:   getInt64EnvWithDefault("MAX_LOG_FILE_SIZE", 104857600), // 100MB default
		MaxRequestBody:   getInt64EnvWithDefault("MAX_REQUEST_BODY", 1048576),    // 1MB default
		MaxHeaderSize:    getInt64EnvWithDefault("MAX_HEADER_SIZE", 1048576),     // 1MB default

		StoreDriver:   strings.ToLower(getEnvWithDefault("STORE_DRIVER", DriverMemory)),
		StoreDSN:      getEnvWithDefault("STORE_DSN", ""),
		RedisAddr:     getEnvWithDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnvWithDefault("REDIS_PASSWORD", ""),
		RedisPrefix:   getEnvWithDefault("REDIS_PREFIX", "pharmacie:"),

		JWTSecret: getEnvWithDefault("JWT_SECRET", ""),
		TokenTTL:  getDurationEnvWithDefault("TOKEN_TTL", 12*time.Hour),

		SeedOnStart:       getBoolEnvWithDefault("SEED_ON_START", true),
		RecoveryInterval:  getDurationEnvWithDefault("RECOVERY_INTERVAL", 5*time.Minute),
		LowStockThreshold: getIntEnvWithDefault("LOW_STOCK_THRESHOLD", 20),

		RateLimitRate:     getInt64EnvWithDefault("RATE_LIMIT_RATE", 3),
		RateLimitCapacity: getInt64EnvWithDefault("RATE_LIMIT_CAPACITY", 1000),
	}

	if cfg.JWTSecret == "" && cfg.Env != EnvProduction {
		cfg.JWTSecret = devJWTSecret
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// validateConfig validates all configuration values
func validateConfig(cfg *Config) error {
	if err := validatePort(cfg.Port); err != nil {
		return fmt.Errorf("invalid PORT: %w", err)
	}

	if err := validateAddress(cfg.Address); err != nil {
		return fmt.Errorf("invalid ADDRESS: %w", err)
	}

	if err := validateLogLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	if err := validateSizeLimit(cfg.MaxRequestBody, "MAX_REQUEST_BODY"); err != nil {
		return fmt.Errorf("invalid MAX_REQUEST_BODY: %w", err)
	}

	if err := validateSizeLimit(cfg.MaxHeaderSize, "MAX_HEADER_SIZE"); err != nil {
		return fmt.Errorf("invalid MAX_HEADER_SIZE: %w", err)
	}

	if err := validateLogRetentionDays(cfg.LogRetentionDays); err != nil {
		return fmt.Errorf("invalid LOG_RETENTION_DAYS: %w", err)
	}

	if err := validateMaxLogFileSize(cfg.MaxLogFileSize); err != nil {
		return fmt.Errorf("invalid MAX_LOG_FILE_SIZE: %w", err)
	}

	if err := validateStore(cfg); err != nil {
		return fmt.Errorf("invalid STORE_DRIVER: %w", err)
	}

	if err := validateJWTSecret(cfg.JWTSecret, cfg.Env); err != nil {
		return fmt.Errorf("invalid JWT_SECRET: %w", err)
	}

	if cfg.TokenTTL < time.Minute {
		return fmt.Errorf("invalid TOKEN_TTL: must be at least 1m, got: %s", cfg.TokenTTL)
	}

	if cfg.RecoveryInterval < time.Second {
		return fmt.Errorf("invalid RECOVERY_INTERVAL: must be at least 1s, got: %s", cfg.RecoveryInterval)
	}

	if cfg.LowStockThreshold < 0 {
		return fmt.Errorf("invalid LOW_STOCK_THRESHOLD: must not be negative, got: %d", cfg.LowStockThreshold)
	}

	if cfg.RateLimitRate <= 0 || cfg.RateLimitCapacity <= 0 {
		return fmt.Errorf("invalid rate limit: RATE_LIMIT_RATE and RATE_LIMIT_CAPACITY must be positive")
	}

	return nil
}

// validatePort validates the PORT environment variable
func validatePort(port string) error {
	if port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}

	portNum, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("PORT must be a valid number: %w", err)
	}

	if portNum < 1 || portNum > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}

	if portNum < 1024 {
		return fmt.Errorf("PORT %d is privileged (less than 1024), use ports 1024-65535", portNum)
	}

	return nil
}

// validateAddress validates the ADDRESS environment variable
func validateAddress(address string) error {
	if address == "" {
		return fmt.Errorf("ADDRESS cannot be empty")
	}

	if address == "127.0.0.1" || address == "::1" || address == "localhost" {
		return nil
	}

	ip := net.ParseIP(address)
	if ip == nil {
		return fmt.Errorf("ADDRESS must be a valid IP address or 'localhost', got: %s", address)
	}

	if !ip.IsLoopback() && !ip.IsPrivate() && !ip.IsUnspecified() {
		return fmt.Errorf("ADDRESS %s is a public IP, consider using private network ranges for security", address)
	}

	return nil
}

// validateLogLevel validates the LOG_LEVEL environment variable
func validateLogLevel(logLevel string) error {
	if logLevel == "" {
		return fmt.Errorf("LOG_LEVEL cannot be empty")
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	logLevel = strings.ToLower(logLevel)

	for _, level := range validLevels {
		if logLevel == level {
			return nil
		}
	}

	return fmt.Errorf("LOG_LEVEL must be one of: %v, got: %s", validLevels, logLevel)
}

// validateSizeLimit validates size limit configuration values
func validateSizeLimit(size int64, configName string) error {
	if size <= 0 {
		return fmt.Errorf("%s must be positive, got: %d", configName, size)
	}

	if size > 100*1024*1024 { // 100MB
		return fmt.Errorf("%s is too large (max 100MB), got: %d bytes", configName, size)
	}

	return nil
}

func validateLogRetentionDays(days int) error {
	if days <= 0 {
		return fmt.Errorf("LOG_RETENTION_DAYS must be positive, got: %d", days)
	}

	if days > 366 {
		return fmt.Errorf("LOG_RETENTION_DAYS is too large (max 366 days), got: %d", days)
	}

	return nil
}

// validateMaxLogFileSize validates the MAX_LOG_FILE_SIZE environment variable
func validateMaxLogFileSize(size int64) error {
	if size <= 0 {
		return fmt.Errorf("MAX_LOG_FILE_SIZE must be positive, got: %d", size)
	}

	// Minimum 1MB, maximum 1GB
	if size < 1024*1024 {
		return fmt.Errorf("MAX_LOG_FILE_SIZE is too small (min 1MB), got: %d bytes", size)
	}

	if size > 1024*1024*1024 {
		return fmt.Errorf("MAX_LOG_FILE_SIZE is too large (max 1GB), got: %d bytes", size)
	}

	return nil
}

func validateStore(cfg *Config) error {
	switch cfg.StoreDriver {
	case DriverMemory:
		return nil
	case DriverSQLite, DriverPostgres, DriverMySQL:
		if cfg.StoreDSN == "" {
			return fmt.Errorf("STORE_DSN is required for driver %s", cfg.StoreDriver)
		}
		return nil
	case DriverRedis:
		if cfg.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for driver redis")
		}
		return nil
	}
	return fmt.Errorf("STORE_DRIVER must be one of: %v, got: %s",
		[]string{DriverMemory, DriverSQLite, DriverPostgres, DriverMySQL, DriverRedis}, cfg.StoreDriver)
}

func validateJWTSecret(secret string, env Environment) error {
	if secret == "" {
		return fmt.Errorf("JWT_SECRET is required in %s", env)
	}
	if env == EnvProduction && len(secret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters in prod, got: %d", len(secret))
	}
	return nil
}

// getEnvWithDefault gets an environment variable with a default value
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnvWithDefault gets an environment variable as int with a default value
func getIntEnvWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getInt64EnvWithDefault gets an environment variable as int64 with a default value
func getInt64EnvWithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnvWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnvWithDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// GetEnvVars returns a list of all expected environment variables
func GetEnvVars() []string {
	return []string{
		"PORT",
		"ADDRESS",
		"ENV",
		"LOG_LEVEL",
		"LOG_DIR",
		"LOG_RETENTION_DAYS",
		"MAX_LOG_FILE_SIZE",
		"MAX_REQUEST_BODY",
		"MAX_HEADER_SIZE",
		"STORE_DRIVER",
		"STORE_DSN",
		"REDIS_ADDR",
		"REDIS_PASSWORD",
		"REDIS_PREFIX",
		"JWT_SECRET",
		"TOKEN_TTL",
		"SEED_ON_START",
		"RECOVERY_INTERVAL",
		"LOW_STOCK_THRESHOLD",
		"RATE_LIMIT_RATE",
		"RATE_LIMIT_CAPACITY",
	}
}
