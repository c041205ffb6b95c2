package engine

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/solanid/solanid-core/internal/accounts"
	"github.com/solanid/solanid-core/internal/pdaddr"
)

// InitializeRegistryArgs mirrors the initialize_registry instruction
// (spec §6).
type InitializeRegistryArgs struct {
	Admin             common.Hash
	VerifierKey       common.Hash
	MinScore          uint64
	CooldownSecs      int64
	DiversityBonusPct uint8
	ProofTTLSecs      int64
}

// InitializeRegistry creates the singleton Registry account. It has no
// precondition beyond what initialize_registry's own argument
// validation implies; update_registry_config's InvalidConfig checks
// (bonus_pct>100, ttl=0) apply here too, since a registry initialized
// outside those bounds could never pass later updates.
func (e *Engine) InitializeRegistry(args InitializeRegistryArgs) (common.Hash, error) {
	if args.DiversityBonusPct > 100 || args.ProofTTLSecs == 0 {
		return common.Hash{}, ErrInvalidConfig
	}
	addr, _, err := pdaddr.Registry()
	if err != nil {
		return common.Hash{}, err
	}
	r := &accounts.Registry{
		Admin:             args.Admin,
		VerifierKey:       args.VerifierKey,
		MinScore:          args.MinScore,
		CooldownSecs:      args.CooldownSecs,
		DiversityBonusPct: args.DiversityBonusPct,
		ProofTTLSecs:      args.ProofTTLSecs,
	}
	if err := e.putRegistry(addr, r); err != nil {
		return common.Hash{}, err
	}
	return addr, nil
}

// InitializeScoringConfig creates the singleton ScoringConfig account
// with every weight set to accounts.DefaultWeight (spec §3).
func (e *Engine) InitializeScoringConfig(admin common.Hash) (common.Hash, error) {
	addr, _, err := pdaddr.ScoringConfig()
	if err != nil {
		return common.Hash{}, err
	}
	sc := accounts.NewDefaultScoringConfig(admin)
	if err := e.putScoringConfig(addr, sc); err != nil {
		return common.Hash{}, err
	}
	return addr, nil
}
