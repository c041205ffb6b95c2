package rpcserver

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/solanid/solanid-core/internal/accounts"
	"github.com/solanid/solanid-core/internal/sourceproof"
)

// AttestationRequest carries the signature-verification instruction
// that must precede a submit_proof, exactly as spec §4.2 describes it
// (signer, signed message, signature), serialized for transport since
// there is no real instructions-introspection sysvar over HTTP.
type AttestationRequest struct {
	Signer    common.Hash    `json:"signer"`
	Message   hexutil.Bytes  `json:"message"`
	Signature hexutil.Bytes  `json:"signature"`
}

// SourcePayload is the wire envelope for a proof_data tagged union
// payload. Exactly one field is populated, matching the declared
// source; a mismatch (or an empty envelope, as for every reserved
// source) surfaces as SourcePayloadMismatch from sourceproof.Validate.
type SourcePayload struct {
	Reclaim         *ReclaimPayload         `json:"reclaim,omitempty"`
	GitcoinPassport *GitcoinPassportPayload `json:"gitcoin_passport,omitempty"`
	WorldId         *WorldIdPayload         `json:"world_id,omitempty"`
}

type ReclaimPayload struct {
	IdentityHash common.Hash `json:"identity_hash"`
	IssuedAt     int64       `json:"issued_at"`
}

type GitcoinPassportPayload struct {
	DidHash common.Hash `json:"did_hash"`
}

type WorldIdPayload struct {
	NullifierHash common.Hash `json:"nullifier_hash"`
}

// InitializeRegistryRequest mirrors initialize_registry (spec §6).
type InitializeRegistryRequest struct {
	Admin             common.Hash `json:"admin"`
	VerifierKey       common.Hash `json:"verifier_key"`
	MinScore          uint64      `json:"min_score"`
	CooldownSecs      int64       `json:"cooldown_secs"`
	DiversityBonusPct uint8       `json:"diversity_bonus_pct"`
	ProofTTLSecs      int64       `json:"proof_ttl_secs"`
}

// InitializeScoringConfigRequest mirrors initialize_scoring_config.
type InitializeScoringConfigRequest struct {
	Admin common.Hash `json:"admin"`
}

// SubmitProofRequest mirrors submit_proof (spec §6), plus the fields
// an HTTP caller must additionally supply because there is no
// transaction/clock context: Now (the host clock) and the attestation
// instruction that would otherwise be read off-instruction.
type SubmitProofRequest struct {
	User        common.Hash         `json:"user"`
	ProofHash   common.Hash         `json:"proof_hash"`
	Source      string              `json:"source"`
	Nullifier   common.Hash         `json:"nullifier"`
	Nonce       uint64              `json:"nonce"`
	Payload     SourcePayload       `json:"payload"`
	BaseScore   uint64              `json:"base_score"`
	Timestamp   int64               `json:"timestamp"`
	Now         int64               `json:"now"`
	Attestation AttestationRequest  `json:"attestation"`
}

// RevokeProofRequest mirrors revoke_proof (spec §6).
type RevokeProofRequest struct {
	Nullifier common.Hash `json:"nullifier"`
}

// UpdateMinScoreRequest mirrors update_min_score.
type UpdateMinScoreRequest struct {
	Signer   common.Hash `json:"signer"`
	NewValue uint64      `json:"new_value"`
}

// UpdateScoringConfigRequest mirrors update_scoring_config.
type UpdateScoringConfigRequest struct {
	Signer common.Hash `json:"signer"`
	Weight uint64      `json:"weight"`
}

// UpdateRegistryConfigRequest mirrors update_registry_config.
type UpdateRegistryConfigRequest struct {
	Signer            common.Hash `json:"signer"`
	CooldownSecs      int64       `json:"cooldown_secs"`
	DiversityBonusPct uint8       `json:"diversity_bonus_pct"`
	ProofTTLSecs      int64       `json:"proof_ttl_secs"`
}

// InitiateVerifierRotationRequest mirrors initiate_verifier_rotation.
type InitiateVerifierRotationRequest struct {
	Signer    common.Hash `json:"signer"`
	NewKey    common.Hash `json:"new_key"`
	DelaySecs int64       `json:"delay_secs"`
	Now       int64       `json:"now"`
}

// FinalizeVerifierRotationRequest mirrors finalize_verifier_rotation.
type FinalizeVerifierRotationRequest struct {
	Signer common.Hash `json:"signer"`
	Now    int64       `json:"now"`
}

// resolve returns the sourceproof.ProofData implementation matching
// source, or nil if source names a reserved slot (or any slot whose
// envelope field was left empty) with no wire representation — the
// engine then rejects it with SourcePayloadMismatch exactly as
// spec §4.3 requires.
func (p SourcePayload) resolve(source accounts.Source) sourceproof.ProofData {
	switch source {
	case accounts.SourceReclaim:
		if p.Reclaim == nil {
			return nil
		}
		return sourceproof.ReclaimProof{IdentityHash: p.Reclaim.IdentityHash, IssuedAt: p.Reclaim.IssuedAt}
	case accounts.SourceGitcoinPassport:
		if p.GitcoinPassport == nil {
			return nil
		}
		return sourceproof.GitcoinPassportProof{DidHash: p.GitcoinPassport.DidHash}
	case accounts.SourceWorldId:
		if p.WorldId == nil {
			return nil
		}
		return sourceproof.WorldIdProof{NullifierHash: p.WorldId.NullifierHash}
	default:
		return nil
	}
}
