package rpcserver

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/solanid/solanid-core/internal/accounts"
	"github.com/solanid/solanid-core/internal/engine"
)

// handleRegistryCollection dispatches initialize_registry.
func (h *Handlers) handleRegistryCollection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req InitializeRegistryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "malformed request body")
		return
	}

	release := h.locks.Acquire(registryAddr())
	defer release()

	addr, err := h.eng.InitializeRegistry(engine.InitializeRegistryArgs{
		Admin:             req.Admin,
		VerifierKey:       req.VerifierKey,
		MinScore:          req.MinScore,
		CooldownSecs:      req.CooldownSecs,
		DiversityBonusPct: req.DiversityBonusPct,
		ProofTTLSecs:      req.ProofTTLSecs,
	})
	if err != nil {
		h.recordRejection(err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"registry": addr.Hex()})
}

// handleInitializeScoringConfig dispatches initialize_scoring_config.
func (h *Handlers) handleInitializeScoringConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req InitializeScoringConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "malformed request body")
		return
	}

	release := h.locks.Acquire(registryAddr())
	defer release()

	addr, err := h.eng.InitializeScoringConfig(req.Admin)
	if err != nil {
		h.recordRejection(err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"scoring_config": addr.Hex()})
}

// handleUpdateMinScore dispatches update_min_score.
func (h *Handlers) handleUpdateMinScore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req UpdateMinScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "malformed request body")
		return
	}

	release := h.locks.Acquire(registryAddr())
	defer release()

	if err := h.eng.UpdateMinScore(req.Signer, req.NewValue); err != nil {
		h.recordRejection(err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleUpdateScoringConfig dispatches update_scoring_config. The
// source name is the last path segment: PATCH /api/v1/scoring-config/{source}.
func (h *Handlers) handleUpdateScoringConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/api/v1/scoring-config/")
	source, ok := accounts.ParseSource(name)
	if !ok {
		writeBadRequest(w, "unknown source")
		return
	}
	var req UpdateScoringConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "malformed request body")
		return
	}

	release := h.locks.Acquire(registryAddr())
	defer release()

	if err := h.eng.UpdateScoringConfig(req.Signer, source, req.Weight); err != nil {
		h.recordRejection(err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleUpdateRegistryConfig dispatches update_registry_config.
func (h *Handlers) handleUpdateRegistryConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req UpdateRegistryConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "malformed request body")
		return
	}

	release := h.locks.Acquire(registryAddr())
	defer release()

	err := h.eng.UpdateRegistryConfig(req.Signer, engine.UpdateRegistryConfigArgs{
		CooldownSecs:      req.CooldownSecs,
		DiversityBonusPct: req.DiversityBonusPct,
		ProofTTLSecs:      req.ProofTTLSecs,
	})
	if err != nil {
		h.recordRejection(err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// recordRejection increments the rejections-by-code counter for any
// EngineError; errors from other layers (decode, storage) are not
// attributed to a spec §6 code.
func (h *Handlers) recordRejection(err error) {
	if h.metrics == nil {
		return
	}
	if ee, ok := err.(*engine.EngineError); ok {
		h.metrics.ObserveError(string(ee.Code()))
	}
}
