package engine

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/solanid/solanid-core/internal/accounts"
)

// requireAdmin enforces spec §4.6's "every admin entry point asserts
// signer = registry.admin or returns Unauthorized".
func requireAdmin(registry *accounts.Registry, signer common.Hash) error {
	if registry.Admin != signer {
		return ErrUnauthorized
	}
	return nil
}

// UpdateMinScore sets registry.min_score unconstrained (spec §4.6).
func (e *Engine) UpdateMinScore(signer common.Hash, newMinScore uint64) error {
	registry, addr, err := e.getRegistry()
	if err != nil {
		return err
	}
	if err := requireAdmin(registry, signer); err != nil {
		return err
	}
	registry.MinScore = newMinScore
	return e.putRegistry(addr, registry)
}

// UpdateScoringConfig writes a single weight slot (spec §4.6).
func (e *Engine) UpdateScoringConfig(signer common.Hash, source accounts.Source, weight uint64) error {
	registry, _, err := e.getRegistry()
	if err != nil {
		return err
	}
	if err := requireAdmin(registry, signer); err != nil {
		return err
	}
	sc, addr, err := e.getScoringConfig()
	if err != nil {
		return err
	}
	sc.Weights[source] = weight
	return e.putScoringConfig(addr, sc)
}

// UpdateRegistryConfigArgs mirrors update_registry_config's argument
// triplet (spec §4.6).
type UpdateRegistryConfigArgs struct {
	CooldownSecs      int64
	DiversityBonusPct uint8
	ProofTTLSecs      int64
}

// UpdateRegistryConfig updates the cooldown/bonus/ttl triplet,
// rejecting bonus_pct>100 or ttl=0 (spec §4.6).
func (e *Engine) UpdateRegistryConfig(signer common.Hash, args UpdateRegistryConfigArgs) error {
	registry, addr, err := e.getRegistry()
	if err != nil {
		return err
	}
	if err := requireAdmin(registry, signer); err != nil {
		return err
	}
	if args.DiversityBonusPct > 100 || args.ProofTTLSecs == 0 {
		return ErrInvalidConfig
	}
	registry.CooldownSecs = args.CooldownSecs
	registry.DiversityBonusPct = args.DiversityBonusPct
	registry.ProofTTLSecs = args.ProofTTLSecs
	return e.putRegistry(addr, registry)
}
