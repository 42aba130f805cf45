// Package config reads process configuration from the environment, in the
// env-var + typed-default style used throughout this codebase.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Application settings
	AppEnv        string
	RunMigrations bool

	// Database settings
	DatabaseURL                string
	DatabaseMaxConnections     int
	DatabaseMaxIdleConnections int
	DatabaseConnectionLifetime time.Duration

	// Solver settings
	SolveTimeLimit      time.Duration
	SolveRelativeGap    float64
	SolveThreads        int
	EnableFallback      bool
	EmergencyUnitCost   float64
	RunDiagnosticChecks bool

	// Logging
	LogLevel string

	// NATS settings
	NATSURL               string
	NATSEnabled           bool
	MaxConcurrentSolves   int
	SolveDispatchRatePerS float64

	// Input settings
	WorkbookPath string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		AppEnv: getEnv("APP_ENV", "development"),

		DatabaseURL:                getEnv("DATABASE_URL", ""),
		DatabaseMaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 25),
		DatabaseMaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
		DatabaseConnectionLifetime: getEnvAsDuration("DATABASE_CONNECTION_LIFETIME", 5*time.Minute),

		SolveTimeLimit:      getEnvAsDuration("SOLVE_TIME_LIMIT", 300*time.Second),
		SolveRelativeGap:    getEnvAsFloat("SOLVE_RELATIVE_GAP", 0.01),
		SolveThreads:        getEnvAsInt("SOLVE_THREADS", 0),
		EnableFallback:      getEnvAsBool("ENABLE_FALLBACK", true),
		EmergencyUnitCost:   getEnvAsFloat("EMERGENCY_UNIT_COST", 1_000_000.0),
		RunDiagnosticChecks: getEnvAsBool("RUN_DIAGNOSTIC_CHECKS", true),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		NATSURL:               getEnv("NATS_URL", "nats://localhost:4222"),
		NATSEnabled:           getEnvAsBool("NATS_ENABLED", false),
		MaxConcurrentSolves:   getEnvAsInt("MAX_CONCURRENT_SOLVES", 4),
		SolveDispatchRatePerS: getEnvAsFloat("SOLVE_DISPATCH_RATE_PER_S", 1.0),

		WorkbookPath: getEnv("WORKBOOK_PATH", ""),

		RunMigrations: getEnvAsBool("RUN_MIGRATIONS", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that configuration required to run a solve is present.
func (c *Config) Validate() error {
	if c.NATSEnabled && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required when NATS_ENABLED is true: the worker persists runs it picks up off the queue")
	}
	if c.SolveRelativeGap < 0 || c.SolveRelativeGap >= 1 {
		return fmt.Errorf("SOLVE_RELATIVE_GAP must be in [0, 1), got %v", c.SolveRelativeGap)
	}
	if c.EmergencyUnitCost <= 0 {
		return fmt.Errorf("EMERGENCY_UNIT_COST must be > 0")
	}
	return nil
}

// Helper functions for reading environment variables.

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
