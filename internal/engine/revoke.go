package engine

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/solanid/solanid-core/internal/accounts"
	"github.com/solanid/solanid-core/internal/checked"
	"github.com/solanid/solanid-core/internal/scoring"
)

// RevokeProofArgs mirrors the revoke_proof instruction (spec §4.5).
// RevokeProof takes User as given and performs no signer check of its
// own; internal/rpcserver's handler takes User from the request path
// and does not check a signer either.
// Nullifier is the identity nullifier declared by revoke_proof's
// identity_nullifier account (spec §6's account list) — the caller
// supplies the same 32-byte value used at submit_proof time, since
// IndividualProof itself does not retain it.
type RevokeProofArgs struct {
	User      common.Hash
	Source    accounts.Source
	Nullifier common.Hash
}

// RevokeResult reports the post-revoke view of the affected accounts.
type RevokeResult struct {
	AggregatedScore    uint64
	ActiveSourceCount  uint8
	TotalVerifiedUsers uint64
}

// RevokeProof clears the caller's IndividualProof for source,
// recomputes the aggregate, and permanently tombstones the identity
// nullifier it was bound to (spec §4.5).
func (e *Engine) RevokeProof(args RevokeProofArgs) (*RevokeResult, error) {
	registry, registryAddr, err := e.getRegistry()
	if err != nil {
		return nil, err
	}

	individual, individualAddr, err := e.getIndividualProof(args.User, args.Source)
	if err != nil {
		return nil, err
	}
	if individual == nil || individual.IsRevoked {
		return nil, ErrProofAlreadyRevoked
	}

	userProof, userAddr, err := e.getUserProof(args.User)
	if err != nil {
		return nil, err
	}
	if userProof == nil {
		return nil, ErrProofAlreadyRevoked
	}

	sumWeighted, activeCount, err := e.computeAggregate(args.User, args.Source, nil)
	if err != nil {
		return nil, err
	}
	aggregated, err := scoring.Aggregate(sumWeighted, activeCount, registry.DiversityBonusPct)
	if err != nil {
		return nil, ErrOverflow
	}

	var newTotalVerified uint64
	crossedToZero := userProof.ActiveSourceCount >= 1 && activeCount == 0
	if crossedToZero {
		newTotalVerified, err = checked.Sub64(registry.TotalVerifiedUsers, 1)
		if err != nil {
			return nil, ErrOverflow
		}
	} else {
		newTotalVerified = registry.TotalVerifiedUsers
	}

	// Look up the identity nullifier this proof's payload was bound to,
	// per spec §4.5's "look up IdentityNullifier for this identity's
	// 32-byte value and set is_permanently_revoked = true".
	nullifierRec, nullifierAddr, err := e.getIdentityNullifier(args.Nullifier)
	if err != nil {
		return nil, err
	}

	if err := e.deleteIndividualProof(individualAddr); err != nil {
		return nil, err
	}

	userProof.AggregatedScore = aggregated
	userProof.ActiveSourceCount = activeCount
	userProof.SourceTimestamps[args.Source] = 0
	if err := e.putUserProof(userAddr, userProof); err != nil {
		return nil, err
	}

	if nullifierRec != nil {
		nullifierRec.IsPermanentlyRevoked = true
		if err := e.putIdentityNullifier(nullifierAddr, nullifierRec); err != nil {
			return nil, err
		}
	}

	if crossedToZero {
		registry.TotalVerifiedUsers = newTotalVerified
		if err := e.putRegistry(registryAddr, registry); err != nil {
			return nil, err
		}
	}

	return &RevokeResult{
		AggregatedScore:    userProof.AggregatedScore,
		ActiveSourceCount:  userProof.ActiveSourceCount,
		TotalVerifiedUsers: registry.TotalVerifiedUsers,
	}, nil
}
