package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Bootstrap seeds a freshly initialized registry's policy knobs,
// letting an operator describe them declaratively instead of
// hand-building an initialize_registry HTTP call. gopkg.in/yaml.v3 is
// already a direct dependency of the teacher's go.mod; this is its
// concrete home in SolanID.
type Bootstrap struct {
	Admin             string `yaml:"admin"`
	VerifierKey       string `yaml:"verifier_key"`
	MinScore          uint64 `yaml:"min_score"`
	CooldownSecs      int64  `yaml:"cooldown_secs"`
	DiversityBonusPct uint8  `yaml:"diversity_bonus_pct"`
	ProofTTLSecs      int64  `yaml:"proof_ttl_secs"`
}

// LoadBootstrap reads and parses a YAML bootstrap file.
func LoadBootstrap(path string) (*Bootstrap, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read bootstrap file: %w", err)
	}
	var bs Bootstrap
	if err := yaml.Unmarshal(b, &bs); err != nil {
		return nil, fmt.Errorf("config: parse bootstrap file: %w", err)
	}
	return &bs, nil
}
