package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"fabric-stock/internal/app"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc       app.ApplicationService
	router    chi.Router
	jwtSecret string
	logger    *zap.Logger
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins []string, jwtSecret string, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{
		svc:       svc,
		jwtSecret: jwtSecret,
		logger:    logger,
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recoverer(logger))
	r.Use(CORS(allowedOrigins))

	// ── Health (public) ───────────────────────────────────────────────────────
	r.Get("/api/health", h.health)

	// ── Protected API routes (return 401 JSON if unauthenticated) ────────────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Use(RequestBodyLimit(1 << 20)) // 1 MB

		r.Get("/api/auth/me", h.me)

		// ── Fabric stock ──────────────────────────────────────────────────────
		r.Get("/api/fabrics/stock-health", h.apiStockHealth)
		r.Get("/api/fabrics/reorder", h.apiReorder)
		r.Post("/api/fabrics/reorder/evaluate", h.apiEvaluateReorder)
		r.Post("/api/fabrics/reorder/brief", h.apiPurchaseBrief)
		r.Get("/api/fabrics/colours/{id}/consumption", h.apiColourConsumption)
		r.Get("/api/fabrics/requirements", h.apiRequirements)
	})

	h.router = r
	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	return decodeBody(w, r, v, true)
}

// decodeOptionalJSON is decodeJSON for endpoints that accept an empty body.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	return decodeBody(w, r, v, false)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any, required bool) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if !required && errors.Is(err, io.EOF) {
			return true
		}
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
