// Package config loads SolanID's runtime configuration from
// environment variables, trimmed from pkg/config/config.go's
// getEnv/getEnvInt/Validate shape down to the knobs this engine
// actually has: listen address, account-store backend selection,
// optional Postgres audit DSN, and the key material an operator needs
// to stand up a fresh deployment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// StoreBackend selects the account store's concrete KV implementation.
type StoreBackend string

const (
	StoreBackendMemory  StoreBackend = "memory"
	StoreBackendCometDB StoreBackend = "cometdb"
)

// Config holds every environment-derived setting SolanID needs to
// start.
type Config struct {
	ListenAddr string

	StoreBackend StoreBackend
	DataDir      string // cometdb data directory; unused for memory

	// AuditDSN, if set, enables the Postgres append-only audit sink
	// (internal/store/auditpg). Empty disables it.
	AuditDSN            string
	AuditMaxOpenConns    int
	AuditMaxIdleConns    int

	// BootstrapFile, if set, points at a YAML file seeding a fresh
	// registry's initial parameters (see Bootstrap).
	BootstrapFile string

	LogLevel string
}

// Load reads configuration from environment variables. Call Validate
// before using the result.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr: getEnv("SOLANID_LISTEN_ADDR", "0.0.0.0:8080"),

		StoreBackend: StoreBackend(getEnv("SOLANID_STORE_BACKEND", string(StoreBackendMemory))),
		DataDir:      getEnv("SOLANID_DATA_DIR", "./data"),

		AuditDSN:          getEnv("SOLANID_AUDIT_DSN", ""),
		AuditMaxOpenConns: getEnvInt("SOLANID_AUDIT_MAX_OPEN_CONNS", 10),
		AuditMaxIdleConns: getEnvInt("SOLANID_AUDIT_MAX_IDLE_CONNS", 2),

		BootstrapFile: getEnv("SOLANID_BOOTSTRAP_FILE", ""),

		LogLevel: getEnv("SOLANID_LOG_LEVEL", "info"),
	}
	return cfg, nil
}

// Validate checks that the loaded configuration is internally
// consistent before cmd/solanidd wires anything up.
func (c *Config) Validate() error {
	var errs []string

	switch c.StoreBackend {
	case StoreBackendMemory, StoreBackendCometDB:
	default:
		errs = append(errs, fmt.Sprintf("SOLANID_STORE_BACKEND must be %q or %q, got %q", StoreBackendMemory, StoreBackendCometDB, c.StoreBackend))
	}

	if c.StoreBackend == StoreBackendCometDB && c.DataDir == "" {
		errs = append(errs, "SOLANID_DATA_DIR is required when SOLANID_STORE_BACKEND=cometdb")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
