package rpcserver

import (
	"encoding/json"
	"net/http"
)

// handleInitiateRotation dispatches initiate_verifier_rotation.
func (h *Handlers) handleInitiateRotation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req InitiateVerifierRotationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "malformed request body")
		return
	}

	release := h.locks.Acquire(registryAddr())
	defer release()

	if err := h.eng.InitiateVerifierRotation(req.Signer, req.NewKey, req.DelaySecs, req.Now); err != nil {
		h.recordRejection(err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleFinalizeRotation dispatches finalize_verifier_rotation.
func (h *Handlers) handleFinalizeRotation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req FinalizeVerifierRotationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "malformed request body")
		return
	}

	release := h.locks.Acquire(registryAddr())
	defer release()

	if err := h.eng.FinalizeVerifierRotation(req.Signer, req.Now); err != nil {
		h.recordRejection(err)
		writeError(w, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RotationsTotal.Inc()
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
