package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"fabric-stock/internal/ai"
	"fabric-stock/internal/app"
	"fabric-stock/internal/core"

	"go.uber.org/zap"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeServiceError maps an ApplicationService error onto an HTTP status and code.
// Data errors found in stored stock records are 422; anything unrecognised is a 500
// whose detail goes to the log only.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, app.ErrInvalidRequest):
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
	case errors.Is(err, core.ErrInvalidQuantity):
		writeError(w, r, err.Error(), "INVALID_QUANTITY", http.StatusUnprocessableEntity)
	case errors.Is(err, core.ErrInvalidBalanceRecord):
		writeError(w, r, err.Error(), "INVALID_BALANCE_RECORD", http.StatusUnprocessableEntity)
	case errors.Is(err, core.ErrMissingCatalogMetadata):
		writeError(w, r, err.Error(), "MISSING_CATALOG_METADATA", http.StatusUnprocessableEntity)
	case errors.Is(err, app.ErrAdvisorUnavailable):
		writeError(w, r, err.Error(), "AI_UNAVAILABLE", http.StatusServiceUnavailable)
	case errors.Is(err, ai.ErrBriefMismatch):
		h.logger.Warn("rejected purchase brief", zap.Error(err), zap.String("request_id", requestIDFromContext(r.Context())))
		writeError(w, r, "purchase brief did not match computed suggestions", "AI_BRIEF_REJECTED", http.StatusBadGateway)
	default:
		h.logger.Error("request failed", zap.Error(err), zap.String("request_id", requestIDFromContext(r.Context())))
		writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}
