package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadBootstrap(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bootstrap.yaml")
	contents := "min_score: 100\ncooldown_secs: 60\ndiversity_bonus_pct: 20\nproof_ttl_secs: 3600\n"
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatal(err)
	}

	bs, err := LoadBootstrap(path)
	if err != nil {
		t.Fatal(err)
	}
	if bs.MinScore != 100 || bs.CooldownSecs != 60 || bs.DiversityBonusPct != 20 || bs.ProofTTLSecs != 3600 {
		t.Fatalf("unexpected bootstrap contents: %+v", bs)
	}
}

func TestLoadBootstrapMissingFile(t *testing.T) {
	if _, err := LoadBootstrap("/nonexistent/path.yaml"); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
