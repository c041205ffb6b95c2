// Package accounts defines the six account kinds from spec §3 and
// their stable, discriminated, fixed-layout binary encoding. Every
// account starts with a one-byte layout discriminant so a future
// breaking layout change is a version bump that old readers can
// detect, never silent schema drift (spec §6, "Persisted layout").
package accounts

import (
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Source is the closed set of identity providers, spec §3's
// discriminant mapping. BrightId through Discord are reserved: they
// occupy weight slots and discriminant values but have no ProofData
// variant (see internal/sourceproof), per spec §9's Open Question.
type Source uint8

const (
	SourceReclaim Source = iota
	SourceGitcoinPassport
	SourceWorldId
	SourceBrightId
	SourceLens
	SourceTwitter
	SourceGoogle
	SourceDiscord

	// NumSources is the fixed size of the weights array and of every
	// per-source timestamp table.
	NumSources = 8
)

func (s Source) Valid() bool {
	return s < NumSources
}

func (s Source) String() string {
	switch s {
	case SourceReclaim:
		return "reclaim"
	case SourceGitcoinPassport:
		return "gitcoin_passport"
	case SourceWorldId:
		return "world_id"
	case SourceBrightId:
		return "bright_id"
	case SourceLens:
		return "lens"
	case SourceTwitter:
		return "twitter"
	case SourceGoogle:
		return "google"
	case SourceDiscord:
		return "discord"
	default:
		return fmt.Sprintf("source(%d)", uint8(s))
	}
}

// ParseSource maps a source's canonical string name back to its
// discriminant, the inverse of String(), for decoding wire requests.
func ParseSource(name string) (Source, bool) {
	for s := Source(0); uint8(s) < NumSources; s++ {
		if s.String() == name {
			return s, true
		}
	}
	return 0, false
}

// Layout discriminants. These are the single leading byte of every
// encoded account and must never be reordered or reused.
const (
	layoutRegistry byte = iota + 1
	layoutScoringConfig
	layoutUserProof
	layoutIndividualProof
	layoutIdentityNullifier
	layoutAttestationNonce
)

// PendingRotation describes an in-flight verifier-key rotation
// (spec §4.6, §3 invariant 5).
type PendingRotation struct {
	NewKey  common.Hash
	ReadyAt int64
}

// Registry is the singleton account holding admin/verifier keys and
// global policy knobs (spec §3).
type Registry struct {
	Admin              common.Hash
	VerifierKey        common.Hash
	MinScore           uint64
	CooldownSecs       int64
	DiversityBonusPct  uint8
	ProofTTLSecs       int64
	TotalVerifiedUsers uint64
	PendingRotation    *PendingRotation // nil if no rotation in flight
}

// Marshal encodes the Registry account in its fixed little-endian
// layout: disc(1) | admin(32) | verifier(32) | min_score(8) |
// cooldown(8) | bonus_pct(1) | ttl(8) | total_verified(8) |
// has_pending(1) | [new_key(32) | ready_at(8)].
func (r *Registry) Marshal() []byte {
	size := 1 + 32 + 32 + 8 + 8 + 1 + 8 + 8 + 1
	if r.PendingRotation != nil {
		size += 32 + 8
	}
	buf := make([]byte, size)
	i := 0
	buf[i] = layoutRegistry
	i++
	copy(buf[i:], r.Admin.Bytes())
	i += 32
	copy(buf[i:], r.VerifierKey.Bytes())
	i += 32
	binary.LittleEndian.PutUint64(buf[i:], r.MinScore)
	i += 8
	binary.LittleEndian.PutUint64(buf[i:], uint64(r.CooldownSecs))
	i += 8
	buf[i] = r.DiversityBonusPct
	i++
	binary.LittleEndian.PutUint64(buf[i:], uint64(r.ProofTTLSecs))
	i += 8
	binary.LittleEndian.PutUint64(buf[i:], r.TotalVerifiedUsers)
	i += 8
	if r.PendingRotation != nil {
		buf[i] = 1
		i++
		copy(buf[i:], r.PendingRotation.NewKey.Bytes())
		i += 32
		binary.LittleEndian.PutUint64(buf[i:], uint64(r.PendingRotation.ReadyAt))
		i += 8
	} else {
		buf[i] = 0
		i++
	}
	return buf
}

// UnmarshalRegistry decodes a Registry account from its stored bytes.
func UnmarshalRegistry(b []byte) (*Registry, error) {
	const minSize = 1 + 32 + 32 + 8 + 8 + 1 + 8 + 8 + 1
	if len(b) < minSize {
		return nil, fmt.Errorf("accounts: registry record too short: got %d bytes, want at least %d", len(b), minSize)
	}
	if b[0] != layoutRegistry {
		return nil, fmt.Errorf("accounts: registry record has wrong discriminant %d", b[0])
	}
	i := 1
	r := &Registry{}
	r.Admin = common.BytesToHash(b[i : i+32])
	i += 32
	r.VerifierKey = common.BytesToHash(b[i : i+32])
	i += 32
	r.MinScore = binary.LittleEndian.Uint64(b[i:])
	i += 8
	r.CooldownSecs = int64(binary.LittleEndian.Uint64(b[i:]))
	i += 8
	r.DiversityBonusPct = b[i]
	i++
	r.ProofTTLSecs = int64(binary.LittleEndian.Uint64(b[i:]))
	i += 8
	r.TotalVerifiedUsers = binary.LittleEndian.Uint64(b[i:])
	i += 8
	hasPending := b[i]
	i++
	if hasPending == 1 {
		if len(b) < i+32+8 {
			return nil, fmt.Errorf("accounts: registry record truncated pending rotation")
		}
		pr := &PendingRotation{}
		pr.NewKey = common.BytesToHash(b[i : i+32])
		i += 32
		pr.ReadyAt = int64(binary.LittleEndian.Uint64(b[i:]))
		r.PendingRotation = pr
	}
	return r, nil
}

// ScoringConfig is the singleton per-source weight table (spec §3).
type ScoringConfig struct {
	Admin   common.Hash
	Weights [NumSources]uint64
}

// DefaultWeight is the weight assigned to every source until an admin
// overrides it via update_scoring_config (spec §3, §4.4).
const DefaultWeight uint64 = 100

// NewDefaultScoringConfig returns a ScoringConfig with every weight
// set to DefaultWeight.
func NewDefaultScoringConfig(admin common.Hash) *ScoringConfig {
	sc := &ScoringConfig{Admin: admin}
	for i := range sc.Weights {
		sc.Weights[i] = DefaultWeight
	}
	return sc
}

func (sc *ScoringConfig) Marshal() []byte {
	buf := make([]byte, 1+32+8*NumSources)
	i := 0
	buf[i] = layoutScoringConfig
	i++
	copy(buf[i:], sc.Admin.Bytes())
	i += 32
	for _, w := range sc.Weights {
		binary.LittleEndian.PutUint64(buf[i:], w)
		i += 8
	}
	return buf
}

func UnmarshalScoringConfig(b []byte) (*ScoringConfig, error) {
	const size = 1 + 32 + 8*NumSources
	if len(b) != size {
		return nil, fmt.Errorf("accounts: scoring config record has wrong size: got %d, want %d", len(b), size)
	}
	if b[0] != layoutScoringConfig {
		return nil, fmt.Errorf("accounts: scoring config record has wrong discriminant %d", b[0])
	}
	sc := &ScoringConfig{}
	i := 1
	sc.Admin = common.BytesToHash(b[i : i+32])
	i += 32
	for s := 0; s < NumSources; s++ {
		sc.Weights[s] = binary.LittleEndian.Uint64(b[i:])
		i += 8
	}
	return sc, nil
}

// UserProof is the per-user aggregate account (spec §3).
type UserProof struct {
	Owner              common.Hash
	AggregatedScore    uint64
	ActiveSourceCount  uint8
	LastUpdateTs       int64
	ValidUntilTs       int64
	SourceTimestamps   [NumSources]int64 // 0 means "never submitted"
}

func (u *UserProof) Marshal() []byte {
	buf := make([]byte, 1+32+8+1+8+8+8*NumSources)
	i := 0
	buf[i] = layoutUserProof
	i++
	copy(buf[i:], u.Owner.Bytes())
	i += 32
	binary.LittleEndian.PutUint64(buf[i:], u.AggregatedScore)
	i += 8
	buf[i] = u.ActiveSourceCount
	i++
	binary.LittleEndian.PutUint64(buf[i:], uint64(u.LastUpdateTs))
	i += 8
	binary.LittleEndian.PutUint64(buf[i:], uint64(u.ValidUntilTs))
	i += 8
	for _, ts := range u.SourceTimestamps {
		binary.LittleEndian.PutUint64(buf[i:], uint64(ts))
		i += 8
	}
	return buf
}

func UnmarshalUserProof(b []byte) (*UserProof, error) {
	const size = 1 + 32 + 8 + 1 + 8 + 8 + 8*NumSources
	if len(b) != size {
		return nil, fmt.Errorf("accounts: user proof record has wrong size: got %d, want %d", len(b), size)
	}
	if b[0] != layoutUserProof {
		return nil, fmt.Errorf("accounts: user proof record has wrong discriminant %d", b[0])
	}
	u := &UserProof{}
	i := 1
	u.Owner = common.BytesToHash(b[i : i+32])
	i += 32
	u.AggregatedScore = binary.LittleEndian.Uint64(b[i:])
	i += 8
	u.ActiveSourceCount = b[i]
	i++
	u.LastUpdateTs = int64(binary.LittleEndian.Uint64(b[i:]))
	i += 8
	u.ValidUntilTs = int64(binary.LittleEndian.Uint64(b[i:]))
	i += 8
	for s := 0; s < NumSources; s++ {
		u.SourceTimestamps[s] = int64(binary.LittleEndian.Uint64(b[i:]))
		i += 8
	}
	return u, nil
}

// IndividualProof is the per-(user, source) proof account (spec §3).
// On revoke it is cleared (zeroed/deallocated), per spec §3's
// lifecycle note, which the engine implements by deleting the KV
// record entirely rather than persisting a zero value.
type IndividualProof struct {
	ProofHash     common.Hash
	Source        Source
	WeightedScore uint64
	Timestamp     int64
	IsRevoked     bool
}

func (p *IndividualProof) Marshal() []byte {
	buf := make([]byte, 1+32+1+8+8+1)
	i := 0
	buf[i] = layoutIndividualProof
	i++
	copy(buf[i:], p.ProofHash.Bytes())
	i += 32
	buf[i] = byte(p.Source)
	i++
	binary.LittleEndian.PutUint64(buf[i:], p.WeightedScore)
	i += 8
	binary.LittleEndian.PutUint64(buf[i:], uint64(p.Timestamp))
	i += 8
	if p.IsRevoked {
		buf[i] = 1
	}
	return buf
}

func UnmarshalIndividualProof(b []byte) (*IndividualProof, error) {
	const size = 1 + 32 + 1 + 8 + 8 + 1
	if len(b) != size {
		return nil, fmt.Errorf("accounts: individual proof record has wrong size: got %d, want %d", len(b), size)
	}
	if b[0] != layoutIndividualProof {
		return nil, fmt.Errorf("accounts: individual proof record has wrong discriminant %d", b[0])
	}
	p := &IndividualProof{}
	i := 1
	p.ProofHash = common.BytesToHash(b[i : i+32])
	i += 32
	p.Source = Source(b[i])
	i++
	p.WeightedScore = binary.LittleEndian.Uint64(b[i:])
	i += 8
	p.Timestamp = int64(binary.LittleEndian.Uint64(b[i:]))
	i += 8
	p.IsRevoked = b[i] == 1
	return p, nil
}

// IdentityNullifier is the tombstone account for a 32-byte identity
// digest (spec §3). It is created on first submit of a new identity
// and never deleted — only its IsPermanentlyRevoked flag ever changes.
type IdentityNullifier struct {
	BoundUser            common.Hash
	IsPermanentlyRevoked bool
}

func (n *IdentityNullifier) Marshal() []byte {
	buf := make([]byte, 1+32+1)
	buf[0] = layoutIdentityNullifier
	copy(buf[1:], n.BoundUser.Bytes())
	if n.IsPermanentlyRevoked {
		buf[33] = 1
	}
	return buf
}

func UnmarshalIdentityNullifier(b []byte) (*IdentityNullifier, error) {
	const size = 1 + 32 + 1
	if len(b) != size {
		return nil, fmt.Errorf("accounts: identity nullifier record has wrong size: got %d, want %d", len(b), size)
	}
	if b[0] != layoutIdentityNullifier {
		return nil, fmt.Errorf("accounts: identity nullifier record has wrong discriminant %d", b[0])
	}
	n := &IdentityNullifier{}
	n.BoundUser = common.BytesToHash(b[1:33])
	n.IsPermanentlyRevoked = b[33] == 1
	return n, nil
}

// AttestationNonceMarker is the existence-only replay guard (spec §3):
// its presence in the store is the only information it carries.
var AttestationNonceMarker = []byte{layoutAttestationNonce}
