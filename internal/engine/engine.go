package engine

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/solanid/solanid-core/internal/accounts"
	"github.com/solanid/solanid-core/internal/checked"
	"github.com/solanid/solanid-core/internal/pdaddr"
	"github.com/solanid/solanid-core/internal/store"
)

// Engine is the deterministic state machine over a single account
// store. It never reads wall-clock time or any other ambient state —
// every instruction method takes `now` explicitly, so the same inputs
// always produce the same outputs (SPEC_FULL.md §4.6).
type Engine struct {
	kv store.KV
}

// New constructs an Engine over the given account store.
func New(kv store.KV) *Engine {
	return &Engine{kv: kv}
}

func (e *Engine) getRegistry() (*accounts.Registry, common.Hash, error) {
	addr, _, err := pdaddr.Registry()
	if err != nil {
		return nil, common.Hash{}, fmt.Errorf("engine: derive registry address: %w", err)
	}
	b, err := e.kv.Get(addr.Bytes())
	if err != nil {
		return nil, addr, fmt.Errorf("engine: load registry: %w", err)
	}
	if b == nil {
		return nil, addr, fmt.Errorf("engine: registry not initialized")
	}
	r, err := accounts.UnmarshalRegistry(b)
	if err != nil {
		return nil, addr, fmt.Errorf("engine: decode registry: %w", err)
	}
	return r, addr, nil
}

func (e *Engine) putRegistry(addr common.Hash, r *accounts.Registry) error {
	if err := e.kv.Set(addr.Bytes(), r.Marshal()); err != nil {
		return fmt.Errorf("engine: save registry: %w", err)
	}
	return nil
}

func (e *Engine) getScoringConfig() (*accounts.ScoringConfig, common.Hash, error) {
	addr, _, err := pdaddr.ScoringConfig()
	if err != nil {
		return nil, common.Hash{}, fmt.Errorf("engine: derive scoring config address: %w", err)
	}
	b, err := e.kv.Get(addr.Bytes())
	if err != nil {
		return nil, addr, fmt.Errorf("engine: load scoring config: %w", err)
	}
	if b == nil {
		return nil, addr, fmt.Errorf("engine: scoring config not initialized")
	}
	sc, err := accounts.UnmarshalScoringConfig(b)
	if err != nil {
		return nil, addr, fmt.Errorf("engine: decode scoring config: %w", err)
	}
	return sc, addr, nil
}

func (e *Engine) putScoringConfig(addr common.Hash, sc *accounts.ScoringConfig) error {
	if err := e.kv.Set(addr.Bytes(), sc.Marshal()); err != nil {
		return fmt.Errorf("engine: save scoring config: %w", err)
	}
	return nil
}

// getUserProof returns (nil, addr, nil) when no record exists yet —
// callers distinguish "absent" from "error" explicitly, per
// pkg/ledger/errors.go's "explicit error instead of nil, nil"
// convention applied to the positive case too.
func (e *Engine) getUserProof(user common.Hash) (*accounts.UserProof, common.Hash, error) {
	addr, _, err := pdaddr.UserProof(user)
	if err != nil {
		return nil, common.Hash{}, fmt.Errorf("engine: derive user proof address: %w", err)
	}
	b, err := e.kv.Get(addr.Bytes())
	if err != nil {
		return nil, addr, fmt.Errorf("engine: load user proof: %w", err)
	}
	if b == nil {
		return nil, addr, nil
	}
	u, err := accounts.UnmarshalUserProof(b)
	if err != nil {
		return nil, addr, fmt.Errorf("engine: decode user proof: %w", err)
	}
	return u, addr, nil
}

func (e *Engine) putUserProof(addr common.Hash, u *accounts.UserProof) error {
	if err := e.kv.Set(addr.Bytes(), u.Marshal()); err != nil {
		return fmt.Errorf("engine: save user proof: %w", err)
	}
	return nil
}

func (e *Engine) getIndividualProof(user common.Hash, source accounts.Source) (*accounts.IndividualProof, common.Hash, error) {
	addr, _, err := pdaddr.IndividualProof(user, uint8(source))
	if err != nil {
		return nil, common.Hash{}, fmt.Errorf("engine: derive individual proof address: %w", err)
	}
	b, err := e.kv.Get(addr.Bytes())
	if err != nil {
		return nil, addr, fmt.Errorf("engine: load individual proof: %w", err)
	}
	if b == nil {
		return nil, addr, nil
	}
	p, err := accounts.UnmarshalIndividualProof(b)
	if err != nil {
		return nil, addr, fmt.Errorf("engine: decode individual proof: %w", err)
	}
	return p, addr, nil
}

func (e *Engine) putIndividualProof(addr common.Hash, p *accounts.IndividualProof) error {
	if err := e.kv.Set(addr.Bytes(), p.Marshal()); err != nil {
		return fmt.Errorf("engine: save individual proof: %w", err)
	}
	return nil
}

// deleteIndividualProof removes the record outright (spec §3: revoke
// clears/deallocates the slot rather than persisting a revoked flag).
func (e *Engine) deleteIndividualProof(addr common.Hash) error {
	if err := e.kv.Delete(addr.Bytes()); err != nil {
		return fmt.Errorf("engine: delete individual proof: %w", err)
	}
	return nil
}

func (e *Engine) getIdentityNullifier(nullifier common.Hash) (*accounts.IdentityNullifier, common.Hash, error) {
	addr, _, err := pdaddr.IdentityNullifier(nullifier)
	if err != nil {
		return nil, common.Hash{}, fmt.Errorf("engine: derive identity nullifier address: %w", err)
	}
	b, err := e.kv.Get(addr.Bytes())
	if err != nil {
		return nil, addr, fmt.Errorf("engine: load identity nullifier: %w", err)
	}
	if b == nil {
		return nil, addr, nil
	}
	n, err := accounts.UnmarshalIdentityNullifier(b)
	if err != nil {
		return nil, addr, fmt.Errorf("engine: decode identity nullifier: %w", err)
	}
	return n, addr, nil
}

func (e *Engine) putIdentityNullifier(addr common.Hash, n *accounts.IdentityNullifier) error {
	if err := e.kv.Set(addr.Bytes(), n.Marshal()); err != nil {
		return fmt.Errorf("engine: save identity nullifier: %w", err)
	}
	return nil
}

func (e *Engine) hasAttestationNonce(registry common.Hash, nonce uint64) (common.Hash, bool, error) {
	addr, _, err := pdaddr.AttestationNonce(registry, nonce)
	if err != nil {
		return common.Hash{}, false, fmt.Errorf("engine: derive attestation nonce address: %w", err)
	}
	ok, err := e.kv.Has(addr.Bytes())
	if err != nil {
		return addr, false, fmt.Errorf("engine: check attestation nonce: %w", err)
	}
	return addr, ok, nil
}

func (e *Engine) putAttestationNonce(addr common.Hash) error {
	if err := e.kv.Set(addr.Bytes(), accounts.AttestationNonceMarker); err != nil {
		return fmt.Errorf("engine: save attestation nonce: %w", err)
	}
	return nil
}

// computeAggregate scans every source slot for user and returns the
// sum of active weighted scores and the active source count, per
// spec §4.4's "aggregate_new = Σ weighted_score over non-revoked
// individual proofs after this update" — a full recomputation rather
// than an incremental subtract/add, since revoked IndividualProof
// records are deleted outright and so can never be double-counted.
//
// The slot named by `source` is never read from the store: submit_proof
// passes its freshly-computed weighted score as override (so the
// not-yet-written new/updated record is included), and revoke_proof
// passes a nil override (so the just-revoked record is excluded even
// though it has not been deleted from the store yet). Every other slot
// is read as currently persisted.
func (e *Engine) computeAggregate(user common.Hash, source accounts.Source, override *uint64) (uint64, uint8, error) {
	var sum uint64
	var active uint8
	for s := accounts.Source(0); uint8(s) < accounts.NumSources; s++ {
		var weighted uint64
		if s == source {
			if override == nil {
				continue
			}
			weighted = *override
		} else {
			p, _, err := e.getIndividualProof(user, s)
			if err != nil {
				return 0, 0, err
			}
			if p == nil {
				continue
			}
			weighted = p.WeightedScore
		}
		active++
		next, err := checked.Add64(sum, weighted)
		if err != nil {
			return 0, 0, ErrOverflow
		}
		sum = next
	}
	return sum, active, nil
}
