package engine

import (
	"crypto/ed25519"

	"github.com/ethereum/go-ethereum/common"

	"github.com/solanid/solanid-core/internal/accounts"
	"github.com/solanid/solanid-core/internal/attest"
	"github.com/solanid/solanid-core/internal/checked"
	"github.com/solanid/solanid-core/internal/pdaddr"
	"github.com/solanid/solanid-core/internal/scoring"
	"github.com/solanid/solanid-core/internal/sourceproof"
)

// SubmitProofArgs mirrors the submit_proof instruction (spec §4.5,
// §6). Instructions/SubmitIndex carry the enclosing transaction's
// instruction list so the attestation verifier can read the
// signature-verification instruction that must immediately precede
// this one.
type SubmitProofArgs struct {
	User        common.Hash
	ProofHash   common.Hash
	Source      accounts.Source
	Nullifier   common.Hash
	Nonce       uint64
	Payload     sourceproof.ProofData
	BaseScore   uint64
	Timestamp   int64
	Now         int64

	Instructions []attest.RawInstruction
	SubmitIndex  int
}

// SubmitResult reports the post-submit view of the affected accounts.
type SubmitResult struct {
	AggregatedScore    uint64
	ActiveSourceCount  uint8
	ValidUntilTs       int64
	TotalVerifiedUsers uint64
}

// SubmitProof runs the submit_proof preconditions in the exact order
// spec §4.5 lists them (failing at the first violation) and, only once
// every precondition has passed, issues the account writes one after
// another — no KV mutation happens until the last checked-arithmetic
// step has succeeded, so a precondition or arithmetic error leaves the
// store untouched, mirroring the teacher's "load everything up front,
// write once" shape in pkg/ledger/store.go's UpdateSystemLedgerOnCommit.
// The writes are separate KV calls, not one batch: if a store write
// fails partway, the writes already issued by this call stay in place.
func (e *Engine) SubmitProof(args SubmitProofArgs) (*SubmitResult, error) {
	registry, registryAddr, err := e.getRegistry()
	if err != nil {
		return nil, err
	}

	// 1. Attestation verifier (spec §4.2).
	expected := attest.Message{
		ProgramID:         pdaddr.ProgramID(),
		Registry:          registryAddr,
		User:              args.User,
		SourceIndex:       uint8(args.Source),
		IdentityNullifier: args.Nullifier,
		Nonce:             args.Nonce,
		BaseScore:         args.BaseScore,
		Timestamp:         args.Timestamp,
		ProofHash:         args.ProofHash,
	}
	verifierKey := ed25519.PublicKey(registry.VerifierKey.Bytes())
	if err := attest.VerifyPreceding(args.Instructions, args.SubmitIndex, verifierKey, expected); err != nil {
		switch err {
		case attest.ErrInvalidAttestationInstruction:
			return nil, ErrInvalidAttestationInstruction
		default:
			return nil, ErrInvalidAttestationMessage
		}
	}

	// 2. Source-payload validator (spec §4.3).
	if err := sourceproof.Validate(args.Source, args.Payload, args.Nullifier); err != nil {
		switch err {
		case sourceproof.ErrSourcePayloadMismatch:
			return nil, ErrSourcePayloadMismatch
		case sourceproof.ErrInvalidIdentityNullifier:
			return nil, ErrInvalidIdentityNullifier
		default:
			return nil, ErrInvalidSourceProofData
		}
	}

	// 3/4. Timestamp bounds.
	if args.Timestamp > args.Now {
		return nil, ErrInvalidTimestamp
	}
	if args.Now-args.Timestamp > registry.ProofTTLSecs {
		return nil, ErrProofExpired
	}

	// 5/6. Identity nullifier tombstone / cross-wallet reuse.
	nullifierRec, nullifierAddr, err := e.getIdentityNullifier(args.Nullifier)
	if err != nil {
		return nil, err
	}
	if nullifierRec != nil {
		if nullifierRec.IsPermanentlyRevoked {
			return nil, ErrIdentityRevokedPermanent
		}
		if nullifierRec.BoundUser != args.User {
			return nil, ErrDuplicateIdentityClaim
		}
	}

	// 7. Attestation nonce replay guard.
	nonceAddr, used, err := e.hasAttestationNonce(registryAddr, args.Nonce)
	if err != nil {
		return nil, err
	}
	if used {
		return nil, ErrAttestationNonceAlreadyUsed
	}

	// 8. Cooldown.
	userProof, userAddr, err := e.getUserProof(args.User)
	if err != nil {
		return nil, err
	}
	var previousActive uint8
	var previousLastUpdate int64
	if userProof != nil {
		previousActive = userProof.ActiveSourceCount
		previousLastUpdate = userProof.LastUpdateTs
	}
	if userProof != nil && registry.CooldownSecs > 0 && args.Now-previousLastUpdate < registry.CooldownSecs {
		return nil, ErrCooldownPeriodActive
	}

	// All preconditions passed. Compute every value that can still
	// fail (checked arithmetic) before issuing a single write.
	scoringConfig, _, err := e.getScoringConfig()
	if err != nil {
		return nil, err
	}
	weighted, err := scoring.Weighted(args.BaseScore, scoringConfig.Weights[args.Source])
	if err != nil {
		return nil, ErrOverflow
	}
	sumWeighted, activeCount, err := e.computeAggregate(args.User, args.Source, &weighted)
	if err != nil {
		return nil, err
	}
	aggregated, err := scoring.Aggregate(sumWeighted, activeCount, registry.DiversityBonusPct)
	if err != nil {
		return nil, ErrOverflow
	}
	var newTotalVerified uint64
	crossed := previousActive == 0 && activeCount >= 1
	if crossed {
		newTotalVerified, err = checked.Add64(registry.TotalVerifiedUsers, 1)
		if err != nil {
			return nil, ErrOverflow
		}
	} else {
		newTotalVerified = registry.TotalVerifiedUsers
	}

	// Effects (spec §4.5), committed together.
	individualAddr, _, err := pdaddr.IndividualProof(args.User, uint8(args.Source))
	if err != nil {
		return nil, err
	}
	ip := &accounts.IndividualProof{
		ProofHash:     args.ProofHash,
		Source:        args.Source,
		WeightedScore: weighted,
		Timestamp:     args.Timestamp,
		IsRevoked:     false,
	}
	if err := e.putIndividualProof(individualAddr, ip); err != nil {
		return nil, err
	}

	if userProof == nil {
		userProof = &accounts.UserProof{Owner: args.User}
	}
	userProof.AggregatedScore = aggregated
	userProof.ActiveSourceCount = activeCount
	userProof.LastUpdateTs = args.Now
	userProof.ValidUntilTs = args.Now + registry.ProofTTLSecs
	userProof.SourceTimestamps[args.Source] = args.Timestamp
	if err := e.putUserProof(userAddr, userProof); err != nil {
		return nil, err
	}

	if nullifierRec == nil {
		nullifierRec = &accounts.IdentityNullifier{BoundUser: args.User}
		if err := e.putIdentityNullifier(nullifierAddr, nullifierRec); err != nil {
			return nil, err
		}
	}

	if err := e.putAttestationNonce(nonceAddr); err != nil {
		return nil, err
	}

	if crossed {
		registry.TotalVerifiedUsers = newTotalVerified
		if err := e.putRegistry(registryAddr, registry); err != nil {
			return nil, err
		}
	}

	return &SubmitResult{
		AggregatedScore:    userProof.AggregatedScore,
		ActiveSourceCount:  userProof.ActiveSourceCount,
		ValidUntilTs:       userProof.ValidUntilTs,
		TotalVerifiedUsers: registry.TotalVerifiedUsers,
	}, nil
}
