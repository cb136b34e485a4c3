package web

import (
	"net/http"

	"fabric-stock/internal/app"

	"github.com/go-chi/chi/v5"
)

// ── Fabric stock ─────────────────────────────────────────────────────────────

// apiStockHealth handles GET /api/fabrics/stock-health?order=name|code|balance.
func (h *Handler) apiStockHealth(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetStockHealth(r.Context(), r.URL.Query().Get("order"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiReorder handles GET /api/fabrics/reorder?as_of=YYYY-MM-DD&status=ORDER%20NOW.
// status may repeat.
func (h *Handler) apiReorder(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.svc.GetReorderAssessments(r.Context(), app.ReorderRequest{
		AsOf:     q.Get("as_of"),
		Statuses: q["status"],
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiEvaluateReorder handles POST /api/fabrics/reorder/evaluate.
func (h *Handler) apiEvaluateReorder(w http.ResponseWriter, r *http.Request) {
	var req app.EvaluateReorderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.EvaluateReorder(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiPurchaseBrief handles POST /api/fabrics/reorder/brief. The body is optional.
func (h *Handler) apiPurchaseBrief(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AsOf string `json:"as_of"`
	}
	if !decodeOptionalJSON(w, r, &req) {
		return
	}
	result, err := h.svc.DraftPurchaseBrief(r.Context(), req.AsOf)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiColourConsumption handles GET /api/fabrics/colours/{id}/consumption?as_of=YYYY-MM-DD.
func (h *Handler) apiColourConsumption(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetColourConsumption(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("as_of"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiRequirements handles GET /api/fabrics/requirements?as_of=YYYY-MM-DD.
func (h *Handler) apiRequirements(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetFabricRequirements(r.Context(), r.URL.Query().Get("as_of"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}
