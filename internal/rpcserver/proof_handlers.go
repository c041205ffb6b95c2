package rpcserver

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/solanid/solanid-core/internal/accounts"
	"github.com/solanid/solanid-core/internal/attest"
	"github.com/solanid/solanid-core/internal/engine"
	"github.com/solanid/solanid-core/internal/store/auditpg"
)

// appendAudit records one instruction outcome to the optional audit
// sink, best-effort: a failed append is logged and otherwise ignored,
// since the audit log never gets a vote in an instruction's outcome.
func (h *Handlers) appendAudit(instruction string, user common.Hash, source accounts.Source, err error) {
	if h.audit == nil {
		return
	}
	rec := auditpg.Record{
		Instruction: instruction,
		UserAddress: user.Hex(),
		Source:      int16(source),
		Accepted:    err == nil,
	}
	if ee, ok := err.(*engine.EngineError); ok {
		rec.ErrorCode = string(ee.Code())
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if appendErr := h.audit.Append(ctx, rec); appendErr != nil {
		h.logger.Printf("audit append failed: %v", appendErr)
	}
}

// nowFromQuery lets a caller pin the clock verify_proof evaluates
// against (useful for tests and for clients replaying a past instant);
// it defaults to the host's wall clock, since verify_proof is a
// read-only view and the engine itself never calls time.Now().
func nowFromQuery(r *http.Request) int64 {
	if v := r.URL.Query().Get("now"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return time.Now().Unix()
}

// handleSubmitProof dispatches submit_proof: POST /api/v1/proofs.
func (h *Handlers) handleSubmitProof(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req SubmitProofRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "malformed request body")
		return
	}
	source, ok := accounts.ParseSource(req.Source)
	if !ok {
		writeBadRequest(w, "unknown source")
		return
	}
	payload := req.Payload.resolve(source)

	instructions := []attest.RawInstruction{
		{
			IsEd25519Program: true,
			Signer:           ed25519.PublicKey(req.Attestation.Signer.Bytes()),
			Message:          []byte(req.Attestation.Message),
			Signature:        []byte(req.Attestation.Signature),
		},
		{}, // placeholder for the submit_proof instruction itself
	}

	release := h.locks.Acquire(registryAddr(), req.User, req.Nullifier)
	defer release()

	result, err := h.eng.SubmitProof(engine.SubmitProofArgs{
		User:         req.User,
		ProofHash:    req.ProofHash,
		Source:       source,
		Nullifier:    req.Nullifier,
		Nonce:        req.Nonce,
		Payload:      payload,
		BaseScore:    req.BaseScore,
		Timestamp:    req.Timestamp,
		Now:          req.Now,
		Instructions: instructions,
		SubmitIndex:  1,
	})
	h.appendAudit("submit_proof", req.User, source, err)
	if err != nil {
		h.recordRejection(err)
		writeError(w, err)
		return
	}
	if h.metrics != nil {
		h.metrics.SubmitsTotal.Inc()
		h.metrics.TotalVerifiedUsers.Set(float64(result.TotalVerifiedUsers))
	}
	writeJSON(w, http.StatusOK, result)
}

// handleRevokeProof dispatches revoke_proof:
// DELETE /api/v1/proofs/{user}/{source}, with the identity nullifier
// carried in the request body per RevokeProofRequest (spec §6 lists
// identity_nullifier as an account the caller supplies, not something
// the engine can re-derive from user+source alone).
func (h *Handlers) handleRevokeProof(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/proofs/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		writeBadRequest(w, "expected /api/v1/proofs/{user}/{source}")
		return
	}
	user := common.HexToHash(parts[0])
	source, ok := accounts.ParseSource(parts[1])
	if !ok {
		writeBadRequest(w, "unknown source")
		return
	}

	var req RevokeProofRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "malformed request body")
		return
	}

	release := h.locks.Acquire(registryAddr(), user, req.Nullifier)
	defer release()

	result, err := h.eng.RevokeProof(engine.RevokeProofArgs{
		User:      user,
		Source:    source,
		Nullifier: req.Nullifier,
	})
	h.appendAudit("revoke_proof", user, source, err)
	if err != nil {
		h.recordRejection(err)
		writeError(w, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RevokesTotal.Inc()
		h.metrics.TotalVerifiedUsers.Set(float64(result.TotalVerifiedUsers))
	}
	writeJSON(w, http.StatusOK, result)
}

// handleVerifyProof dispatches verify_proof:
// GET /api/v1/users/{user}/verification.
func (h *Handlers) handleVerifyProof(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/users/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[1] != "verification" {
		writeBadRequest(w, "expected /api/v1/users/{user}/verification")
		return
	}
	user := common.HexToHash(parts[0])
	now := nowFromQuery(r)

	status, err := h.eng.VerifyProof(user, now)
	if err != nil {
		h.recordRejection(err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}
