package pdaddr

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestFindDeterministic(t *testing.T) {
	a1, b1, err := Registry()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a2, b2, err := Registry()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a1 != a2 || b1 != b2 {
		t.Fatalf("expected deterministic derivation, got (%v,%d) and (%v,%d)", a1, b1, a2, b2)
	}
}

func TestDistinctSeedsDistinctAddresses(t *testing.T) {
	reg, _, err := Registry()
	if err != nil {
		t.Fatal(err)
	}
	sc, _, err := ScoringConfig()
	if err != nil {
		t.Fatal(err)
	}
	if reg == sc {
		t.Fatalf("expected registry and scoring config addresses to differ")
	}
}

func TestUserProofVariesByUser(t *testing.T) {
	u1 := common.BytesToHash([]byte("user-one"))
	u2 := common.BytesToHash([]byte("user-two"))

	a1, _, err := UserProof(u1)
	if err != nil {
		t.Fatal(err)
	}
	a2, _, err := UserProof(u2)
	if err != nil {
		t.Fatal(err)
	}
	if a1 == a2 {
		t.Fatalf("expected distinct addresses for distinct users")
	}
}

func TestCreateMatchesFind(t *testing.T) {
	user := common.BytesToHash([]byte("some-user"))
	addr, bump, err := IndividualProof(user, 2)
	if err != nil {
		t.Fatal(err)
	}
	recomputed := Create(bump, []byte("individual_proof"), user.Bytes(), []byte{2})
	if recomputed != addr {
		t.Fatalf("Create(bump, seeds) did not match Find's address")
	}
}

func TestAttestationNonceLittleEndian(t *testing.T) {
	reg, _, err := Registry()
	if err != nil {
		t.Fatal(err)
	}
	a1, bump1, err := AttestationNonce(reg, 1)
	if err != nil {
		t.Fatal(err)
	}
	le := []byte{1, 0, 0, 0, 0, 0, 0, 0}
	if Create(bump1, []byte("attestation_nonce"), reg.Bytes(), le) != a1 {
		t.Fatalf("nonce 1 was not encoded as little-endian u64 in the seed")
	}
	a2, _, err := AttestationNonce(reg, 2)
	if err != nil {
		t.Fatal(err)
	}
	if a1 == a2 {
		t.Fatalf("expected distinct nonce accounts for distinct nonces")
	}
}
