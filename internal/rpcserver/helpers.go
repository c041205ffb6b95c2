package rpcserver

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/solanid/solanid-core/internal/engine"
)

// errorResponse is the wire shape of every non-2xx response, grounded
// on pkg/server/proof_handlers.go's {"error":{"code":...}} envelope.
type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps err to an HTTP status and emits errorResponse. An
// *engine.EngineError carries its own Code/Category (spec §7's
// category-to-status mapping); anything else (store I/O failure,
// decode error the caller already classified as 400) is treated as an
// unexpected internal failure.
func writeError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	var resp errorResponse
	resp.Error.Code = code
	resp.Error.Message = err.Error()
	writeJSON(w, status, resp)
}

func classify(err error) (int, string) {
	if ee, ok := err.(*engine.EngineError); ok {
		return categoryStatus(ee.Category()), string(ee.Code())
	}
	return http.StatusInternalServerError, "InternalError"
}

// categoryStatus maps an engine.Category to an HTTP status code per
// SPEC_FULL.md §7: input_validation -> 400, policy -> 409,
// authorization -> 403, invariant -> 500, rotation -> 409.
func categoryStatus(c engine.Category) int {
	switch c {
	case engine.CategoryInputValidation:
		return http.StatusBadRequest
	case engine.CategoryPolicy:
		return http.StatusConflict
	case engine.CategoryAuthorization:
		return http.StatusForbidden
	case engine.CategoryInvariant:
		return http.StatusInternalServerError
	case engine.CategoryRotation:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeBadRequest(w http.ResponseWriter, message string) {
	var resp errorResponse
	resp.Error.Code = "BadRequest"
	resp.Error.Message = message
	writeJSON(w, http.StatusBadRequest, resp)
}

// requestID returns the inbound X-Request-Id if present, else mints a
// fresh one, matching the teacher's per-request correlation id.
func requestID(r *http.Request) string {
	if id := r.Header.Get("X-Request-Id"); id != "" {
		return id
	}
	return uuid.NewString()
}
