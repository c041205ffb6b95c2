package config

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	os.Unsetenv("SOLANID_STORE_BACKEND")
	os.Unsetenv("SOLANID_DATA_DIR")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.StoreBackend != StoreBackendMemory {
		t.Fatalf("default backend = %q, want %q", cfg.StoreBackend, StoreBackendMemory)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid default config: %v", err)
	}
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	cfg := &Config{StoreBackend: "not-a-backend"}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestValidateRequiresDataDirForCometDB(t *testing.T) {
	cfg := &Config{StoreBackend: StoreBackendCometDB, DataDir: ""}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error when cometdb backend has no data dir")
	}
}
