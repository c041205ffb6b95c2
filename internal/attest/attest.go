// Package attest verifies the Ed25519 attestation that must precede
// every submit_proof instruction (spec §4.2), and builds/encodes the
// 189-byte canonical attestation message (spec §6). Verification
// mechanics (ed25519.Verify over an explicit message) are ported from
// the teacher's proof.AttestationCollectorService.VerifyAttestation;
// unlike the teacher, SolanID trusts exactly one verifier key per
// spec §4.2, never a quorum of peer validators.
package attest

import (
	"crypto/ed25519"
	"encoding/binary"
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrInvalidAttestationInstruction is returned when the preceding
	// instruction is absent, not a signature-verification instruction,
	// or malformed.
	ErrInvalidAttestationInstruction = errors.New("attest: preceding instruction is not a valid signature-verification instruction")

	// ErrInvalidAttestationMessage is returned when the signer or
	// message bytes do not match the expected attestation.
	ErrInvalidAttestationMessage = errors.New("attest: signer or signed message does not match expected attestation")
)

// MessageSize is the exact byte length of the canonical attestation
// message (spec §6's offset table sums to 189 bytes; the section's
// prose header of "145 bytes" is superseded by its own offset table,
// which is authoritative per SPEC_FULL.md §6).
const MessageSize = 4 + 32 + 32 + 32 + 1 + 32 + 8 + 8 + 8 + 32

// magic is the literal ASCII tag at offset 0 of every attestation
// message.
var magic = [4]byte{'s', 'i', 'd', '1'}

// Message is the canonical attestation message bound into every
// submit_proof instruction (spec §6).
type Message struct {
	ProgramID         common.Hash
	Registry          common.Hash
	User              common.Hash
	SourceIndex       uint8
	IdentityNullifier common.Hash
	Nonce             uint64
	BaseScore         uint64
	Timestamp         int64
	ProofHash         common.Hash
}

// Encode serializes m into its exact 189-byte little-endian layout.
func (m Message) Encode() []byte {
	buf := make([]byte, MessageSize)
	i := 0
	copy(buf[i:], magic[:])
	i += 4
	copy(buf[i:], m.ProgramID.Bytes())
	i += 32
	copy(buf[i:], m.Registry.Bytes())
	i += 32
	copy(buf[i:], m.User.Bytes())
	i += 32
	buf[i] = m.SourceIndex
	i++
	copy(buf[i:], m.IdentityNullifier.Bytes())
	i += 32
	binary.LittleEndian.PutUint64(buf[i:], m.Nonce)
	i += 8
	binary.LittleEndian.PutUint64(buf[i:], m.BaseScore)
	i += 8
	binary.LittleEndian.PutUint64(buf[i:], uint64(m.Timestamp))
	i += 8
	copy(buf[i:], m.ProofHash.Bytes())
	return buf
}

// SignatureVerification is the parsed form of a standard Ed25519
// signature-verification instruction, as read from the
// instructions-introspection facility at slot (submit_index - 1).
type SignatureVerification struct {
	Signer    ed25519.PublicKey
	Message   []byte
	Signature []byte
}

// RawInstruction is the minimal shape the engine needs from an
// arbitrary instruction in the enclosing transaction: enough to
// recognize and parse an Ed25519 signature-verification instruction
// without depending on the host's full instruction ABI.
type RawInstruction struct {
	IsEd25519Program bool
	Signer           ed25519.PublicKey
	Message          []byte
	Signature        []byte
}

// Parse validates ix's shape and returns its SignatureVerification, or
// ErrInvalidAttestationInstruction if it is not a well-formed Ed25519
// signature-verification instruction.
func Parse(ix RawInstruction) (*SignatureVerification, error) {
	if !ix.IsEd25519Program {
		return nil, ErrInvalidAttestationInstruction
	}
	if len(ix.Signer) != ed25519.PublicKeySize {
		return nil, ErrInvalidAttestationInstruction
	}
	if len(ix.Signature) != ed25519.SignatureSize {
		return nil, ErrInvalidAttestationInstruction
	}
	if len(ix.Message) == 0 {
		return nil, ErrInvalidAttestationInstruction
	}
	return &SignatureVerification{
		Signer:    ix.Signer,
		Message:   ix.Message,
		Signature: ix.Signature,
	}, nil
}

// VerifyPreceding reads the instruction immediately before submitIndex
// in instructions, parses it as a signature-verification instruction,
// and checks that its signer equals verifierKey and its signed message
// equals expected's canonical encoding (spec §4.2's full contract).
func VerifyPreceding(instructions []RawInstruction, submitIndex int, verifierKey ed25519.PublicKey, expected Message) error {
	if submitIndex <= 0 || submitIndex > len(instructions) {
		return ErrInvalidAttestationInstruction
	}
	preceding := instructions[submitIndex-1]

	sv, err := Parse(preceding)
	if err != nil {
		return err
	}

	if !equalBytes(sv.Signer, verifierKey) {
		return ErrInvalidAttestationMessage
	}

	wantMessage := expected.Encode()
	if !equalBytes(sv.Message, wantMessage) {
		return ErrInvalidAttestationMessage
	}

	if !ed25519.Verify(sv.Signer, sv.Message, sv.Signature) {
		return ErrInvalidAttestationMessage
	}

	return nil
}

func equalBytes(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
