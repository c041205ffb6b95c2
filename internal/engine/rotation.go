package engine

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/solanid/solanid-core/internal/accounts"
)

var zeroKey common.Hash

// InitiateVerifierRotation begins the two-step, mandatory-delay
// verifier-key rotation (spec §4.6). The old verifier key remains
// authoritative until FinalizeVerifierRotation succeeds.
func (e *Engine) InitiateVerifierRotation(signer common.Hash, newKey common.Hash, delaySecs int64, now int64) error {
	registry, addr, err := e.getRegistry()
	if err != nil {
		return err
	}
	if err := requireAdmin(registry, signer); err != nil {
		return err
	}
	if newKey == zeroKey || delaySecs <= 0 {
		return ErrInvalidConfig
	}
	registry.PendingRotation = &accounts.PendingRotation{
		NewKey:  newKey,
		ReadyAt: now + delaySecs,
	}
	return e.putRegistry(addr, registry)
}

// FinalizeVerifierRotation completes a pending rotation once its
// mandatory delay has elapsed (spec §4.6).
func (e *Engine) FinalizeVerifierRotation(signer common.Hash, now int64) error {
	registry, addr, err := e.getRegistry()
	if err != nil {
		return err
	}
	if err := requireAdmin(registry, signer); err != nil {
		return err
	}
	if registry.PendingRotation == nil {
		return ErrNoVerifierRotationPending
	}
	if now < registry.PendingRotation.ReadyAt {
		return ErrVerifierRotationNotReady
	}
	registry.VerifierKey = registry.PendingRotation.NewKey
	registry.PendingRotation = nil
	return e.putRegistry(addr, registry)
}
