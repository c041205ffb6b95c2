package engine

import (
	"crypto/ed25519"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/solanid/solanid-core/internal/accounts"
	"github.com/solanid/solanid-core/internal/attest"
	"github.com/solanid/solanid-core/internal/pdaddr"
	"github.com/solanid/solanid-core/internal/sourceproof"
	"github.com/solanid/solanid-core/internal/store/memkv"
)

func newTestEngine(t *testing.T, verifierPub ed25519.PublicKey, admin common.Hash, opts ...func(*InitializeRegistryArgs)) (*Engine, common.Hash) {
	t.Helper()
	kv := memkv.New()
	eng := New(kv)

	args := InitializeRegistryArgs{
		Admin:             admin,
		VerifierKey:       common.BytesToHash(verifierPub),
		MinScore:          100,
		CooldownSecs:      0,
		DiversityBonusPct: 20,
		ProofTTLSecs:      3600,
	}
	for _, opt := range opts {
		opt(&args)
	}
	addr, err := eng.InitializeRegistry(args)
	if err != nil {
		t.Fatalf("InitializeRegistry: %v", err)
	}
	if _, err := eng.InitializeScoringConfig(admin); err != nil {
		t.Fatalf("InitializeScoringConfig: %v", err)
	}
	return eng, addr
}

// submitWith builds a valid attestation-wrapped SubmitProofArgs.
func submitWith(registryAddr common.Hash, verifierPriv ed25519.PrivateKey, user, nullifier common.Hash, source accounts.Source, nonce uint64, baseScore uint64, timestamp, now int64, payload sourceproof.ProofData, proofHash common.Hash) SubmitProofArgs {
	msg := attest.Message{
		ProgramID:         pdaddr.ProgramID(),
		Registry:          registryAddr,
		User:              user,
		SourceIndex:       uint8(source),
		IdentityNullifier: nullifier,
		Nonce:             nonce,
		BaseScore:         baseScore,
		Timestamp:         timestamp,
		ProofHash:         proofHash,
	}
	encoded := msg.Encode()
	sig := ed25519.Sign(verifierPriv, encoded)

	return SubmitProofArgs{
		User:      user,
		ProofHash: proofHash,
		Source:    source,
		Nullifier: nullifier,
		Nonce:     nonce,
		Payload:   payload,
		BaseScore: baseScore,
		Timestamp: timestamp,
		Now:       now,
		Instructions: []attest.RawInstruction{
			{IsEd25519Program: true, Signer: verifierPriv.Public().(ed25519.PublicKey), Message: encoded, Signature: sig},
			{},
		},
		SubmitIndex: 1,
	}
}

func mustHash(s string) common.Hash { return common.BytesToHash([]byte(s)) }

func TestHappySubmit(t *testing.T) {
	verifierPub, verifierPriv, _ := ed25519.GenerateKey(nil)
	admin := mustHash("admin")
	eng, registryAddr := newTestEngine(t, verifierPub, admin)

	user := mustHash("user-1")
	nullifier := mustHash("identity-1")
	proofHash := mustHash("proof-1")
	payload := sourceproof.ReclaimProof{IdentityHash: nullifier, IssuedAt: 1}

	args := submitWith(registryAddr, verifierPriv, user, nullifier, accounts.SourceReclaim, 1, 150, 1000, 1000, payload, proofHash)
	res, err := eng.SubmitProof(args)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.AggregatedScore != 150 {
		t.Fatalf("aggregated = %d, want 150", res.AggregatedScore)
	}
	if res.ActiveSourceCount != 1 {
		t.Fatalf("active = %d, want 1", res.ActiveSourceCount)
	}

	status, err := eng.VerifyProof(user, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if !status.IsVerified {
		t.Fatalf("expected verified")
	}
}

func TestDiversityBonus(t *testing.T) {
	verifierPub, verifierPriv, _ := ed25519.GenerateKey(nil)
	admin := mustHash("admin")
	eng, registryAddr := newTestEngine(t, verifierPub, admin, func(a *InitializeRegistryArgs) {
		a.DiversityBonusPct = 20
	})

	user := mustHash("user-1")

	reclaimNullifier := mustHash("reclaim-identity")
	reclaimPayload := sourceproof.ReclaimProof{IdentityHash: reclaimNullifier, IssuedAt: 1}
	args1 := submitWith(registryAddr, verifierPriv, user, reclaimNullifier, accounts.SourceReclaim, 1, 100, 1000, 1000, reclaimPayload, mustHash("proof-a"))
	if _, err := eng.SubmitProof(args1); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	gitcoinNullifier := mustHash("gitcoin-identity")
	gitcoinPayload := sourceproof.GitcoinPassportProof{DidHash: gitcoinNullifier}
	args2 := submitWith(registryAddr, verifierPriv, user, gitcoinNullifier, accounts.SourceGitcoinPassport, 2, 100, 1000, 1000, gitcoinPayload, mustHash("proof-b"))
	res, err := eng.SubmitProof(args2)
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}

	if res.ActiveSourceCount != 2 {
		t.Fatalf("active = %d, want 2", res.ActiveSourceCount)
	}
	if res.AggregatedScore != 240 {
		t.Fatalf("aggregated = %d, want 240", res.AggregatedScore)
	}
}

func TestFutureTimestampRejected(t *testing.T) {
	verifierPub, verifierPriv, _ := ed25519.GenerateKey(nil)
	admin := mustHash("admin")
	eng, registryAddr := newTestEngine(t, verifierPub, admin)

	user := mustHash("user-1")
	nullifier := mustHash("identity-1")
	payload := sourceproof.ReclaimProof{IdentityHash: nullifier, IssuedAt: 1}

	args := submitWith(registryAddr, verifierPriv, user, nullifier, accounts.SourceReclaim, 1, 150, 1000+1000, 1000, payload, mustHash("proof-1"))
	_, err := eng.SubmitProof(args)
	if err != ErrInvalidTimestamp {
		t.Fatalf("expected ErrInvalidTimestamp, got %v", err)
	}
}

func TestTTLExpiry(t *testing.T) {
	verifierPub, verifierPriv, _ := ed25519.GenerateKey(nil)
	admin := mustHash("admin")
	eng, registryAddr := newTestEngine(t, verifierPub, admin, func(a *InitializeRegistryArgs) {
		a.ProofTTLSecs = 1
		a.MinScore = 100
	})

	user := mustHash("user-1")
	nullifier := mustHash("identity-1")
	payload := sourceproof.ReclaimProof{IdentityHash: nullifier, IssuedAt: 1}

	args := submitWith(registryAddr, verifierPriv, user, nullifier, accounts.SourceReclaim, 1, 250, 1000, 1000, payload, mustHash("proof-1"))
	if _, err := eng.SubmitProof(args); err != nil {
		t.Fatalf("submit: %v", err)
	}

	status, err := eng.VerifyProof(user, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if !status.IsVerified {
		t.Fatalf("expected verified immediately after submit")
	}

	status, err = eng.VerifyProof(user, 1000+3)
	if err != nil {
		t.Fatal(err)
	}
	if status.IsVerified {
		t.Fatalf("expected unverified after ttl expiry")
	}
}

func TestDuplicateIdentityAcrossWallets(t *testing.T) {
	verifierPub, verifierPriv, _ := ed25519.GenerateKey(nil)
	admin := mustHash("admin")
	eng, registryAddr := newTestEngine(t, verifierPub, admin)

	nullifier := mustHash("shared-world-id")
	payload := sourceproof.WorldIdProof{NullifierHash: nullifier}

	userA := mustHash("user-a")
	argsA := submitWith(registryAddr, verifierPriv, userA, nullifier, accounts.SourceWorldId, 1, 150, 1000, 1000, payload, mustHash("proof-a"))
	if _, err := eng.SubmitProof(argsA); err != nil {
		t.Fatalf("user A submit: %v", err)
	}

	userB := mustHash("user-b")
	argsB := submitWith(registryAddr, verifierPriv, userB, nullifier, accounts.SourceWorldId, 2, 150, 1000, 1000, payload, mustHash("proof-b"))
	_, err := eng.SubmitProof(argsB)
	if err != ErrDuplicateIdentityClaim {
		t.Fatalf("expected ErrDuplicateIdentityClaim, got %v", err)
	}
}

func TestOverflowGuard(t *testing.T) {
	verifierPub, verifierPriv, _ := ed25519.GenerateKey(nil)
	admin := mustHash("admin")
	eng, registryAddr := newTestEngine(t, verifierPub, admin, func(a *InitializeRegistryArgs) {
		a.DiversityBonusPct = 20
	})

	user := mustHash("user-1")
	nullifier := mustHash("identity-1")
	payload := sourceproof.ReclaimProof{IdentityHash: nullifier, IssuedAt: 1}

	baseScore := uint64(1) << 60
	args := submitWith(registryAddr, verifierPriv, user, nullifier, accounts.SourceReclaim, 1, baseScore, 1000, 1000, payload, mustHash("proof-1"))
	_, err := eng.SubmitProof(args)
	if err != ErrOverflow {
		t.Fatalf("expected ErrOverflow, got %v", err)
	}
}

func TestRotationGating(t *testing.T) {
	oldPub, oldPriv, _ := ed25519.GenerateKey(nil)
	newPub, newPriv, _ := ed25519.GenerateKey(nil)
	admin := mustHash("admin")
	eng, registryAddr := newTestEngine(t, oldPub, admin)

	if err := eng.InitiateVerifierRotation(admin, common.BytesToHash(newPub), 2, 1000); err != nil {
		t.Fatalf("initiate: %v", err)
	}

	if err := eng.FinalizeVerifierRotation(admin, 1000); err != ErrVerifierRotationNotReady {
		t.Fatalf("expected ErrVerifierRotationNotReady, got %v", err)
	}

	if err := eng.FinalizeVerifierRotation(admin, 1003); err != nil {
		t.Fatalf("finalize after delay: %v", err)
	}

	user := mustHash("user-1")
	nullifier := mustHash("identity-1")
	payload := sourceproof.ReclaimProof{IdentityHash: nullifier, IssuedAt: 1}
	oldSignedArgs := submitWith(registryAddr, oldPriv, user, nullifier, accounts.SourceReclaim, 1, 150, 1003, 1003, payload, mustHash("proof-1"))
	if _, err := eng.SubmitProof(oldSignedArgs); err != ErrInvalidAttestationMessage {
		t.Fatalf("expected ErrInvalidAttestationMessage for stale verifier key, got %v", err)
	}

	newSignedArgs := submitWith(registryAddr, newPriv, user, nullifier, accounts.SourceReclaim, 2, 150, 1003, 1003, payload, mustHash("proof-2"))
	if _, err := eng.SubmitProof(newSignedArgs); err != nil {
		t.Fatalf("expected new verifier key to be accepted: %v", err)
	}
}

func TestRotationRejectsNonPositiveDelay(t *testing.T) {
	verifierPub, _, _ := ed25519.GenerateKey(nil)
	newPub, _, _ := ed25519.GenerateKey(nil)
	admin := mustHash("admin")
	eng, _ := newTestEngine(t, verifierPub, admin)

	if err := eng.InitiateVerifierRotation(admin, common.BytesToHash(newPub), 0, 1000); err != ErrInvalidConfig {
		t.Fatalf("zero delay: expected ErrInvalidConfig, got %v", err)
	}
	if err := eng.InitiateVerifierRotation(admin, common.BytesToHash(newPub), -1, 1000); err != ErrInvalidConfig {
		t.Fatalf("negative delay: expected ErrInvalidConfig, got %v", err)
	}
}

func TestPermanentBurn(t *testing.T) {
	verifierPub, verifierPriv, _ := ed25519.GenerateKey(nil)
	admin := mustHash("admin")
	eng, registryAddr := newTestEngine(t, verifierPub, admin)

	nullifier := mustHash("world-id-x")
	payload := sourceproof.WorldIdProof{NullifierHash: nullifier}
	userX := mustHash("user-x")

	args := submitWith(registryAddr, verifierPriv, userX, nullifier, accounts.SourceWorldId, 1, 150, 1000, 1000, payload, mustHash("proof-x"))
	if _, err := eng.SubmitProof(args); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := eng.RevokeProof(RevokeProofArgs{User: userX, Source: accounts.SourceWorldId, Nullifier: nullifier}); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	userY := mustHash("user-y")
	argsY := submitWith(registryAddr, verifierPriv, userY, nullifier, accounts.SourceWorldId, 2, 150, 1000, 1000, payload, mustHash("proof-y"))
	_, err := eng.SubmitProof(argsY)
	if err != ErrIdentityRevokedPermanent {
		t.Fatalf("expected ErrIdentityRevokedPermanent, got %v", err)
	}
}

func TestAttestationNonceReplay(t *testing.T) {
	verifierPub, verifierPriv, _ := ed25519.GenerateKey(nil)
	admin := mustHash("admin")
	eng, registryAddr := newTestEngine(t, verifierPub, admin)

	user := mustHash("user-1")
	nullifier := mustHash("identity-1")
	payload := sourceproof.ReclaimProof{IdentityHash: nullifier, IssuedAt: 1}

	args := submitWith(registryAddr, verifierPriv, user, nullifier, accounts.SourceReclaim, 7, 150, 1000, 1000, payload, mustHash("proof-1"))
	if _, err := eng.SubmitProof(args); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	replay := submitWith(registryAddr, verifierPriv, user, nullifier, accounts.SourceReclaim, 7, 150, 1000, 1000, payload, mustHash("proof-1"))
	_, err := eng.SubmitProof(replay)
	if err != ErrAttestationNonceAlreadyUsed {
		t.Fatalf("expected ErrAttestationNonceAlreadyUsed, got %v", err)
	}
}

func TestCooldownPeriodActive(t *testing.T) {
	verifierPub, verifierPriv, _ := ed25519.GenerateKey(nil)
	admin := mustHash("admin")
	eng, registryAddr := newTestEngine(t, verifierPub, admin, func(a *InitializeRegistryArgs) {
		a.CooldownSecs = 100
	})

	user := mustHash("user-1")
	nullifier := mustHash("identity-1")
	payload := sourceproof.ReclaimProof{IdentityHash: nullifier, IssuedAt: 1}

	first := submitWith(registryAddr, verifierPriv, user, nullifier, accounts.SourceReclaim, 1, 150, 1000, 1000, payload, mustHash("proof-1"))
	if _, err := eng.SubmitProof(first); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	second := submitWith(registryAddr, verifierPriv, user, nullifier, accounts.SourceReclaim, 2, 150, 1050, 1050, payload, mustHash("proof-2"))
	_, err := eng.SubmitProof(second)
	if err != ErrCooldownPeriodActive {
		t.Fatalf("expected ErrCooldownPeriodActive, got %v", err)
	}
}

func TestRevokeAlreadyRevoked(t *testing.T) {
	verifierPub, verifierPriv, _ := ed25519.GenerateKey(nil)
	admin := mustHash("admin")
	eng, registryAddr := newTestEngine(t, verifierPub, admin)

	user := mustHash("user-1")
	nullifier := mustHash("identity-1")
	payload := sourceproof.ReclaimProof{IdentityHash: nullifier, IssuedAt: 1}
	args := submitWith(registryAddr, verifierPriv, user, nullifier, accounts.SourceReclaim, 1, 150, 1000, 1000, payload, mustHash("proof-1"))
	if _, err := eng.SubmitProof(args); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := eng.RevokeProof(RevokeProofArgs{User: user, Source: accounts.SourceReclaim, Nullifier: nullifier}); err != nil {
		t.Fatalf("first revoke: %v", err)
	}

	_, err := eng.RevokeProof(RevokeProofArgs{User: user, Source: accounts.SourceReclaim, Nullifier: nullifier})
	if err != ErrProofAlreadyRevoked {
		t.Fatalf("expected ErrProofAlreadyRevoked, got %v", err)
	}
}

func TestAdminUnauthorized(t *testing.T) {
	verifierPub, _, _ := ed25519.GenerateKey(nil)
	admin := mustHash("admin")
	eng, _ := newTestEngine(t, verifierPub, admin)

	notAdmin := mustHash("not-admin")
	if err := eng.UpdateMinScore(notAdmin, 500); err != ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestUpdateRegistryConfigInvalid(t *testing.T) {
	verifierPub, _, _ := ed25519.GenerateKey(nil)
	admin := mustHash("admin")
	eng, _ := newTestEngine(t, verifierPub, admin)

	err := eng.UpdateRegistryConfig(admin, UpdateRegistryConfigArgs{CooldownSecs: 0, DiversityBonusPct: 101, ProofTTLSecs: 10})
	if err != ErrInvalidConfig {
		t.Fatalf("expected ErrInvalidConfig for bonus_pct>100, got %v", err)
	}

	err = eng.UpdateRegistryConfig(admin, UpdateRegistryConfigArgs{CooldownSecs: 0, DiversityBonusPct: 10, ProofTTLSecs: 0})
	if err != ErrInvalidConfig {
		t.Fatalf("expected ErrInvalidConfig for ttl=0, got %v", err)
	}
}
