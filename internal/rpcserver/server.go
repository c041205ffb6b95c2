// Package rpcserver exposes every engine operation over HTTP: one
// handler per instruction, method-check then decode then call then
// encode, grounded on pkg/server/proof_handlers.go's handler shape.
// There is no on-chain transaction to serialize concurrent account
// access, so every mutating handler acquires locks before calling into
// the engine: always the registry address, plus the user key and
// identity nullifier value for submit_proof and revoke_proof. Since
// every mutating handler holds the registry lock, mutating instructions
// run one at a time.
package rpcserver

import (
	"log"
	"net/http"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/solanid/solanid-core/internal/engine"
	"github.com/solanid/solanid-core/internal/locks"
	"github.com/solanid/solanid-core/internal/metrics"
	"github.com/solanid/solanid-core/internal/pdaddr"
	"github.com/solanid/solanid-core/internal/store/auditpg"
)

// Handlers wires an Engine to its HTTP surface.
type Handlers struct {
	eng     *engine.Engine
	locks   *locks.Manager
	metrics *metrics.Registry
	gather  prometheus.Gatherer
	logger  *log.Logger

	// audit is optional: when set, every submit_proof/revoke_proof
	// outcome is appended to it, best-effort, after the engine call
	// returns. A nil audit disables this entirely.
	audit *auditpg.Sink
}

// New constructs Handlers. gather is the same prometheus.Gatherer
// (typically a *prometheus.Registry) that mr's metrics were registered
// against, so /metrics actually scrapes the solanid_* series instead of
// the unrelated global DefaultGatherer. If logger is nil, a default one
// is used, following NewProofHandlers's "if logger == nil" convention.
func New(eng *engine.Engine, lm *locks.Manager, mr *metrics.Registry, gather prometheus.Gatherer, logger *log.Logger) *Handlers {
	if logger == nil {
		logger = log.New(os.Stderr, "[rpcserver] ", log.LstdFlags)
	}
	return &Handlers{eng: eng, locks: lm, metrics: mr, gather: gather, logger: logger}
}

// WithAudit attaches an append-only audit sink. Append failures are
// logged, never surfaced to the caller: the audit log is strictly
// observational and must never affect an instruction's outcome.
func (h *Handlers) WithAudit(sink *auditpg.Sink) *Handlers {
	h.audit = sink
	return h
}

// Routes returns the fully mounted mux: one route per instruction
// (SPEC_FULL.md §6's route table) plus a Prometheus scrape endpoint.
func (h *Handlers) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/registry", h.withRequestID(h.handleRegistryCollection))
	mux.HandleFunc("/api/v1/registry/min-score", h.withRequestID(h.handleUpdateMinScore))
	mux.HandleFunc("/api/v1/registry/config", h.withRequestID(h.handleUpdateRegistryConfig))
	mux.HandleFunc("/api/v1/registry/rotation", h.withRequestID(h.handleInitiateRotation))
	mux.HandleFunc("/api/v1/registry/rotation/finalize", h.withRequestID(h.handleFinalizeRotation))
	mux.HandleFunc("/api/v1/scoring-config", h.withRequestID(h.handleInitializeScoringConfig))
	mux.HandleFunc("/api/v1/scoring-config/", h.withRequestID(h.handleUpdateScoringConfig))
	mux.HandleFunc("/api/v1/proofs", h.withRequestID(h.handleSubmitProof))
	mux.HandleFunc("/api/v1/proofs/", h.withRequestID(h.handleRevokeProof))
	mux.HandleFunc("/api/v1/users/", h.withRequestID(h.handleVerifyProof))

	mux.Handle("/metrics", promhttp.HandlerFor(h.gather, promhttp.HandlerOpts{}))

	return mux
}

// withRequestID stamps every response with X-Request-Id and logs the
// method/path/id triple, the HTTP-layer analogue of the teacher's
// per-request log line in pkg/server.
func (h *Handlers) withRequestID(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := requestID(r)
		w.Header().Set("X-Request-Id", id)
		h.logger.Printf("request_id=%s method=%s path=%s", id, r.Method, r.URL.Path)
		next(w, r)
	}
}

// registryAddr is a small convenience wrapper so handlers that need
// to lock the singleton Registry account don't each repeat the
// derivation error check.
func registryAddr() common.Hash {
	addr, _, err := pdaddr.Registry()
	if err != nil {
		// Registry derivation only fails if the hard-coded seed
		// constants themselves can never find an off-curve bump,
		// which cannot happen for a fixed seed set.
		panic("rpcserver: registry address derivation failed: " + err.Error())
	}
	return addr
}
