package engine

import "github.com/ethereum/go-ethereum/common"

// VerificationStatus is verify_proof's read-only result (spec §4.5,
// §4.7).
type VerificationStatus struct {
	IsVerified      bool
	AggregatedScore uint64
	VerifiedAt      int64
}

// VerifyProof returns user's current verification status: verified iff
// aggregated_score >= registry.min_score and valid_until_ts > now
// (spec §4.5, §8 invariant 6). A user with no UserProof account yet is
// simply unverified with a zero score, never an error.
func (e *Engine) VerifyProof(user common.Hash, now int64) (*VerificationStatus, error) {
	registry, _, err := e.getRegistry()
	if err != nil {
		return nil, err
	}
	userProof, _, err := e.getUserProof(user)
	if err != nil {
		return nil, err
	}
	if userProof == nil {
		return &VerificationStatus{}, nil
	}

	verified := userProof.AggregatedScore >= registry.MinScore && userProof.ValidUntilTs > now
	status := &VerificationStatus{
		IsVerified:      verified,
		AggregatedScore: userProof.AggregatedScore,
	}
	if verified {
		status.VerifiedAt = userProof.LastUpdateTs
	}
	return status, nil
}
