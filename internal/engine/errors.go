// Package engine implements the deterministic proof-submission state
// machine of spec §4.5–§4.7: account load/mutate helpers and the
// exported Engine methods that mirror each on-chain instruction.
package engine

// Code is the exact, client-visible error spelling from spec §6.
type Code string

const (
	CodeInvalidTimestamp              Code = "InvalidTimestamp"
	CodeProofExpired                  Code = "ProofExpired"
	CodeUnauthorized                  Code = "Unauthorized"
	CodeOverflow                      Code = "Overflow"
	CodeProofAlreadyRevoked           Code = "ProofAlreadyRevoked"
	CodeCooldownPeriodActive          Code = "CooldownPeriodActive"
	CodeInvalidConfig                 Code = "InvalidConfig"
	CodeSourcePayloadMismatch         Code = "SourcePayloadMismatch"
	CodeInvalidSourceProofData        Code = "InvalidSourceProofData"
	CodeInvalidAttestationInstruction Code = "InvalidAttestationInstruction"
	CodeInvalidAttestationMessage     Code = "InvalidAttestationMessage"
	CodeInvalidIdentityNullifier      Code = "InvalidIdentityNullifier"
	CodeDuplicateIdentityClaim        Code = "DuplicateIdentityClaim"
	CodeIdentityRevokedPermanent      Code = "IdentityRevokedPermanent"
	CodeAttestationNonceAlreadyUsed   Code = "AttestationNonceAlreadyUsed"
	CodeNoVerifierRotationPending     Code = "NoVerifierRotationPending"
	CodeVerifierRotationNotReady      Code = "VerifierRotationNotReady"
	CodeConstraintSeeds               Code = "ConstraintSeeds"
)

// Category classifies a Code the way spec §7 does, so a transport
// layer can pick a status without inspecting the spelling itself.
type Category string

const (
	CategoryInputValidation Category = "input_validation"
	CategoryPolicy          Category = "policy"
	CategoryAuthorization   Category = "authorization"
	CategoryInvariant       Category = "invariant"
	CategoryRotation        Category = "rotation"
)

func (c Code) Category() Category {
	switch c {
	case CodeInvalidTimestamp, CodeInvalidConfig, CodeSourcePayloadMismatch,
		CodeInvalidSourceProofData, CodeInvalidAttestationInstruction,
		CodeInvalidAttestationMessage, CodeInvalidIdentityNullifier:
		return CategoryInputValidation
	case CodeCooldownPeriodActive, CodeProofExpired, CodeIdentityRevokedPermanent,
		CodeDuplicateIdentityClaim, CodeAttestationNonceAlreadyUsed, CodeProofAlreadyRevoked:
		return CategoryPolicy
	case CodeUnauthorized, CodeConstraintSeeds:
		return CategoryAuthorization
	case CodeOverflow:
		return CategoryInvariant
	case CodeNoVerifierRotationPending, CodeVerifierRotationNotReady:
		return CategoryRotation
	default:
		return CategoryInputValidation
	}
}

// EngineError is the concrete error type every Engine method returns
// on a failed precondition, following pkg/ledger/errors.go's sentinel
// convention generalized to the full spec §6 error table.
type EngineError struct {
	code Code
}

func (e *EngineError) Error() string   { return string(e.code) }
func (e *EngineError) Code() Code      { return e.code }
func (e *EngineError) Category() Category { return e.code.Category() }

func newErr(c Code) *EngineError { return &EngineError{code: c} }

// Sentinel errors, one per spec §6 code. Compare with errors.Is or a
// direct pointer comparison; each is a package-level singleton.
var (
	ErrInvalidTimestamp              = newErr(CodeInvalidTimestamp)
	ErrProofExpired                  = newErr(CodeProofExpired)
	ErrUnauthorized                  = newErr(CodeUnauthorized)
	ErrOverflow                      = newErr(CodeOverflow)
	ErrProofAlreadyRevoked           = newErr(CodeProofAlreadyRevoked)
	ErrCooldownPeriodActive          = newErr(CodeCooldownPeriodActive)
	ErrInvalidConfig                 = newErr(CodeInvalidConfig)
	ErrSourcePayloadMismatch         = newErr(CodeSourcePayloadMismatch)
	ErrInvalidSourceProofData        = newErr(CodeInvalidSourceProofData)
	ErrInvalidAttestationInstruction = newErr(CodeInvalidAttestationInstruction)
	ErrInvalidAttestationMessage     = newErr(CodeInvalidAttestationMessage)
	ErrInvalidIdentityNullifier      = newErr(CodeInvalidIdentityNullifier)
	ErrDuplicateIdentityClaim        = newErr(CodeDuplicateIdentityClaim)
	ErrIdentityRevokedPermanent      = newErr(CodeIdentityRevokedPermanent)
	ErrAttestationNonceAlreadyUsed   = newErr(CodeAttestationNonceAlreadyUsed)
	ErrNoVerifierRotationPending     = newErr(CodeNoVerifierRotationPending)
	ErrVerifierRotationNotReady      = newErr(CodeVerifierRotationNotReady)
	ErrConstraintSeeds               = newErr(CodeConstraintSeeds)
)
