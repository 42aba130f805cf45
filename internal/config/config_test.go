package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	// An empty environment variable is indistinguishable from an absent one
	// to getEnv's family of helpers (both fall through to the default), so
	// t.Setenv("", "") is enough to isolate this test from the real
	// environment without needing an os.Unsetenv helper.
	for _, key := range []string{
		"APP_ENV", "RUN_MIGRATIONS", "DATABASE_URL", "DATABASE_MAX_CONNECTIONS",
		"DATABASE_MAX_IDLE_CONNECTIONS", "DATABASE_CONNECTION_LIFETIME",
		"SOLVE_TIME_LIMIT", "SOLVE_RELATIVE_GAP", "SOLVE_THREADS",
		"ENABLE_FALLBACK", "EMERGENCY_UNIT_COST", "RUN_DIAGNOSTIC_CHECKS",
		"LOG_LEVEL", "NATS_URL", "NATS_ENABLED", "MAX_CONCURRENT_SOLVES",
		"SOLVE_DISPATCH_RATE_PER_S", "WORKBOOK_PATH",
	} {
		t.Setenv(key, "")
	}

	c, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.AppEnv != "development" {
		t.Errorf("AppEnv = %q, want development", c.AppEnv)
	}
	if c.SolveTimeLimit != 300*time.Second {
		t.Errorf("SolveTimeLimit = %v, want 300s", c.SolveTimeLimit)
	}
	if c.SolveRelativeGap != 0.01 {
		t.Errorf("SolveRelativeGap = %v, want 0.01", c.SolveRelativeGap)
	}
	if !c.EnableFallback {
		t.Error("EnableFallback = false, want true by default")
	}
	if c.EmergencyUnitCost != 1_000_000.0 {
		t.Errorf("EmergencyUnitCost = %v, want 1e6", c.EmergencyUnitCost)
	}
	if c.NATSEnabled {
		t.Error("NATSEnabled = true, want false by default")
	}
	if c.MaxConcurrentSolves != 4 {
		t.Errorf("MaxConcurrentSolves = %v, want 4", c.MaxConcurrentSolves)
	}
}

func TestLoad_ReadsOverridesFromEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SOLVE_TIME_LIMIT", "10s")
	t.Setenv("SOLVE_RELATIVE_GAP", "0.05")
	t.Setenv("NATS_ENABLED", "true")
	t.Setenv("DATABASE_URL", "postgres://localhost/clinker")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.AppEnv != "production" {
		t.Errorf("AppEnv = %q, want production", c.AppEnv)
	}
	if c.SolveTimeLimit != 10*time.Second {
		t.Errorf("SolveTimeLimit = %v, want 10s", c.SolveTimeLimit)
	}
	if c.SolveRelativeGap != 0.05 {
		t.Errorf("SolveRelativeGap = %v, want 0.05", c.SolveRelativeGap)
	}
	if !c.NATSEnabled {
		t.Error("NATSEnabled = false, want true")
	}
}

func TestLoad_RejectsNATSEnabledWithoutDatabaseURL(t *testing.T) {
	t.Setenv("NATS_ENABLED", "true")
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load() error = nil, want an error: NATS enabled requires a database to persist runs")
	}
}

func TestValidate_RejectsOutOfRangeRelativeGap(t *testing.T) {
	c := &Config{SolveRelativeGap: 1.0, EmergencyUnitCost: 1}
	if err := c.Validate(); err == nil {
		t.Fatal("Validate() error = nil, want an error for a relative gap >= 1")
	}
}

func TestValidate_RejectsNonPositiveEmergencyUnitCost(t *testing.T) {
	c := &Config{SolveRelativeGap: 0.01, EmergencyUnitCost: 0}
	if err := c.Validate(); err == nil {
		t.Fatal("Validate() error = nil, want an error for a non-positive emergency unit cost")
	}
}

func TestValidate_AcceptsWellFormedConfig(t *testing.T) {
	c := &Config{SolveRelativeGap: 0.01, EmergencyUnitCost: 1_000_000}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}
