package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadValidConfig(t *testing.T) {
	// Set valid environment variables
	_ = os.Setenv("PORT", "8002")
	_ = os.Setenv("ADDRESS", "127.0.0.1")
	_ = os.Setenv("ENV", "dev")
	_ = os.Setenv("LOG_LEVEL", "info")
	defer cleanupEnv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Port != "8002" {
		t.Errorf("Expected port 8002, got %s", cfg.Port)
	}
	if cfg.Address != "127.0.0.1" {
		t.Errorf("Expected address 127.0.0.1, got %s", cfg.Address)
	}
	if cfg.Env != EnvDevelopment {
		t.Errorf("Expected env dev, got %s", cfg.Env)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected log level info, got %s", cfg.LogLevel)
	}
}

func TestLoadWithDefaults(t *testing.T) {
	// Clear environment variables to test defaults
	cleanupEnv()
	defer cleanupEnv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Port != "8000" {
		t.Errorf("Expected default port 8000, got %s", cfg.Port)
	}
	if cfg.Address != "127.0.0.1" {
		t.Errorf("Expected default address 127.0.0.1, got %s", cfg.Address)
	}
	if cfg.Env != EnvDevelopment {
		t.Errorf("Expected default env dev, got %s", cfg.Env)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected default log level info, got %s", cfg.LogLevel)
	}
	if cfg.StoreDriver != DriverMemory {
		t.Errorf("Expected default store driver memory, got %s", cfg.StoreDriver)
	}
	if cfg.LowStockThreshold != 20 {
		t.Errorf("Expected default low stock threshold 20, got %d", cfg.LowStockThreshold)
	}
	if cfg.TokenTTL != 12*time.Hour {
		t.Errorf("Expected default token TTL 12h, got %s", cfg.TokenTTL)
	}
	if !cfg.SeedOnStart {
		t.Error("Expected seeding on start by default")
	}
	if cfg.JWTSecret == "" {
		t.Error("Expected a development JWT secret outside prod")
	}
}

func TestInvalidPort(t *testing.T) {
	// Test invalid port values (excluding empty string since it uses default)
	testCases := []struct {
		port     string
		expected string
	}{
		{"abc", "PORT must be a valid number"},
		{"0", "PORT must be between 1 and 65535"},
		{"65536", "PORT must be between 1 and 65535"},
		{"80", "PORT 80 is privileged"},
	}

	for _, tc := range testCases {
		_ = os.Setenv("PORT", tc.port)
		_ = os.Setenv("ADDRESS", "127.0.0.1")
		_ = os.Setenv("ENV", "dev")
		_ = os.Setenv("LOG_LEVEL", "info")

		_, err := Load()
		if err == nil {
			t.Errorf("Expected error for port %s, got nil", tc.port)
		}
	}
}

func TestInvalidAddress(t *testing.T) {
	// Test invalid address values (excluding empty string since it uses default)
	testCases := []struct {
		address  string
		expected string
	}{
		{"invalid", "ADDRESS must be a valid IP address"},
	}

	for _, tc := range testCases {
		_ = os.Setenv("PORT", "8002")
		_ = os.Setenv("ADDRESS", tc.address)
		_ = os.Setenv("ENV", "dev")
		_ = os.Setenv("LOG_LEVEL", "info")

		_, err := Load()
		if err == nil {
			t.Errorf("Expected error for address %s, got nil", tc.address)
		}
	}
}

func TestInvalidEnv(t *testing.T) {
	// Test invalid env values (excluding empty string since it uses default)
	testCases := []struct {
		env      string
		expected string
	}{
		{"invalid", "ENV must be one of"},
	}

	for _, tc := range testCases {
		_ = os.Setenv("PORT", "8002")
		_ = os.Setenv("ADDRESS", "127.0.0.1")
		_ = os.Setenv("ENV", tc.env)
		_ = os.Setenv("LOG_LEVEL", "info")

		_, err := Load()
		if err == nil {
			t.Errorf("Expected error for env %s, got nil", tc.env)
		}
	}
}

func TestInvalidLogLevel(t *testing.T) {
	// Test invalid log level values (excluding empty string since it uses default)
	testCases := []struct {
		logLevel string
		expected string
	}{
		{"invalid", "LOG_LEVEL must be one of"},
	}

	for _, tc := range testCases {
		_ = os.Setenv("PORT", "8002")
		_ = os.Setenv("ADDRESS", "127.0.0.1")
		_ = os.Setenv("ENV", "dev")
		_ = os.Setenv("LOG_LEVEL", tc.logLevel)

		_, err := Load()
		if err == nil {
			t.Errorf("Expected error for log level %s, got nil", tc.logLevel)
		}
	}
}

func cleanupEnv() {
	for _, name := range GetEnvVars() {
		_ = os.Unsetenv(name)
	}
}

func TestParseEnvironment(t *testing.T) {
	tests := []struct {
		input    string
		expected Environment
		hasError bool
	}{
		{"dev", EnvDevelopment, false},
		{"development", EnvDevelopment, false},
		{"staging", EnvStaging, false},
		{"prod", EnvProduction, false},
		{"production", EnvProduction, false},
		{"test", EnvTest, false},
		{"invalid", EnvDevelopment, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			env, err := ParseEnvironment(tt.input)
			if tt.hasError {
				if err == nil {
					t.Errorf("Expected error for %s, got none", tt.input)
				}
			} else {
				if err != nil {
					t.Errorf("Unexpected error for %s: %v", tt.input, err)
				}
				if env != tt.expected {
					t.Errorf("Expected %v, got %v", tt.expected, env)
				}
			}
		})
	}
}

func TestEnvironmentString(t *testing.T) {
	tests := []struct {
		env      Environment
		expected string
	}{
		{EnvDevelopment, "dev"},
		{EnvStaging, "staging"},
		{EnvProduction, "prod"},
		{EnvTest, "test"},
	}

	for _, tt := range tests {
		if got := tt.env.String(); got != tt.expected {
			t.Errorf("Expected %s, got %s", tt.expected, got)
		}
	}
}

func TestStoreDriverValidation(t *testing.T) {
	testCases := []struct {
		name    string
		driver  string
		dsn     string
		wantErr string
	}{
		{"memory needs nothing", "memory", "", ""},
		{"sqlite needs a dsn", "sqlite", "", "STORE_DSN is required"},
		{"sqlite with dsn", "sqlite", "file:pharmacie.db", ""},
		{"postgres with dsn", "postgres", "host=localhost user=app dbname=app", ""},
		{"uppercase driver is accepted", "MYSQL", "app:app@tcp(localhost:3306)/app", ""},
		{"unknown driver", "bolt", "", "STORE_DRIVER must be one of"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cleanupEnv()
			defer cleanupEnv()
			_ = os.Setenv("STORE_DRIVER", tc.driver)
			_ = os.Setenv("STORE_DSN", tc.dsn)

			_, err := Load()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestJWTSecretRequiredInProduction(t *testing.T) {
	cleanupEnv()
	defer cleanupEnv()
	_ = os.Setenv("ENV", "prod")

	if _, err := Load(); err == nil {
		t.Fatal("Expected error without JWT_SECRET in prod, got nil")
	}

	_ = os.Setenv("JWT_SECRET", "short")
	if _, err := Load(); err == nil {
		t.Fatal("Expected error for a short JWT_SECRET in prod, got nil")
	}

	_ = os.Setenv("JWT_SECRET", strings.Repeat("s", 32))
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.Env != EnvProduction {
		t.Errorf("Expected env prod, got %s", cfg.Env)
	}
}

func TestDurationAndBoolParsing(t *testing.T) {
	cleanupEnv()
	defer cleanupEnv()
	_ = os.Setenv("TOKEN_TTL", "30m")
	_ = os.Setenv("RECOVERY_INTERVAL", "10s")
	_ = os.Setenv("SEED_ON_START", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.TokenTTL != 30*time.Minute {
		t.Errorf("Expected token TTL 30m, got %s", cfg.TokenTTL)
	}
	if cfg.RecoveryInterval != 10*time.Second {
		t.Errorf("Expected recovery interval 10s, got %s", cfg.RecoveryInterval)
	}
	if cfg.SeedOnStart {
		t.Error("Expected SEED_ON_START=false to disable seeding")
	}
}

func TestInvalidTokenTTL(t *testing.T) {
	cleanupEnv()
	defer cleanupEnv()
	_ = os.Setenv("TOKEN_TTL", "5s")

	if _, err := Load(); err == nil {
		t.Error("Expected error for a TOKEN_TTL under a minute, got nil")
	}
}

func TestLoadDotEnv(t *testing.T) {
	cleanupEnv()
	defer cleanupEnv()

	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("Expected a missing .env to be ignored, got %v", err)
	}

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("PORT=8123\nLOW_STOCK_THRESHOLD=5\n"), 0o600); err != nil {
		t.Fatalf("Failed to write .env: %v", err)
	}
	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.Port != "8123" {
		t.Errorf("Expected port 8123 from .env, got %s", cfg.Port)
	}
	if cfg.LowStockThreshold != 5 {
		t.Errorf("Expected low stock threshold 5 from .env, got %d", cfg.LowStockThreshold)
	}
}
