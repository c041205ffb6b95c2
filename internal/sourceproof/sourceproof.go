// Package sourceproof validates the caller-submitted ProofData tagged
// union against the declared Source enum and the caller-supplied
// identity nullifier (spec §4.3). Variants are a closed Go sum type —
// one struct per source, dispatched through an interface — per
// spec §9's "tagged variants over subclassing" design note.
package sourceproof

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"

	"github.com/solanid/solanid-core/internal/accounts"
)

var (
	// ErrSourcePayloadMismatch is returned when proof_data's active
	// variant does not match the declared source, including every
	// reserved source (BrightId, Lens, Twitter, Google, Discord),
	// which have no ProofData variant at all (spec §9 Open Question).
	ErrSourcePayloadMismatch = errors.New("sourceproof: payload variant does not match declared source")

	// ErrInvalidIdentityNullifier is returned when the caller-supplied
	// nullifier does not equal the payload-derived one.
	ErrInvalidIdentityNullifier = errors.New("sourceproof: caller nullifier does not match payload-derived nullifier")

	// ErrInvalidSourceProofData is returned when a payload-specific
	// integrity check fails (e.g. Reclaim issued_at <= 0).
	ErrInvalidSourceProofData = errors.New("sourceproof: payload fails source-specific integrity check")
)

// ProofData is the closed tagged union of source-specific proof
// payloads. BrightId, Lens, Twitter, Google and Discord intentionally
// have no implementing type: any submit naming them fails
// ErrSourcePayloadMismatch, by construction, because Validate can
// never be handed a ProofData whose Variant() equals one of them.
type ProofData interface {
	// Variant identifies which Source this payload belongs to.
	Variant() accounts.Source
	// Nullifier returns the payload-derived identity nullifier, per
	// spec §4.3's per-source mapping.
	Nullifier() common.Hash
}

// ReclaimProof is the Reclaim Protocol proof payload.
type ReclaimProof struct {
	IdentityHash common.Hash
	IssuedAt     int64
}

func (p ReclaimProof) Variant() accounts.Source { return accounts.SourceReclaim }
func (p ReclaimProof) Nullifier() common.Hash   { return p.IdentityHash }

// GitcoinPassportProof is the Gitcoin Passport proof payload.
type GitcoinPassportProof struct {
	DidHash common.Hash
}

func (p GitcoinPassportProof) Variant() accounts.Source { return accounts.SourceGitcoinPassport }
func (p GitcoinPassportProof) Nullifier() common.Hash   { return p.DidHash }

// WorldIdProof is the World ID proof payload.
type WorldIdProof struct {
	NullifierHash common.Hash
}

func (p WorldIdProof) Variant() accounts.Source { return accounts.SourceWorldId }
func (p WorldIdProof) Nullifier() common.Hash   { return p.NullifierHash }

// Validate checks that payload's variant matches declaredSource, that
// its payload-derived nullifier matches callerNullifier, and runs any
// payload-specific integrity check. It returns the first violated
// precondition, exactly the order spec §4.3 lists them in.
func Validate(declaredSource accounts.Source, payload ProofData, callerNullifier common.Hash) error {
	if payload == nil || payload.Variant() != declaredSource {
		return ErrSourcePayloadMismatch
	}
	if payload.Nullifier() != callerNullifier {
		return ErrInvalidIdentityNullifier
	}
	switch p := payload.(type) {
	case ReclaimProof:
		if p.IssuedAt <= 0 {
			return ErrInvalidSourceProofData
		}
	}
	return nil
}
