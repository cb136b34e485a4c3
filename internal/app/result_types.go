package app

import (
	"time"

	"fabric-stock/internal/ai"
	"fabric-stock/internal/core"
)

// StockHealthResult is returned by GetStockHealth.
type StockHealthResult struct {
	Order  core.ColourOrder        `json:"order"`
	Report *core.StockHealthReport `json:"report"`
}

// ReorderResult is returned by GetReorderAssessments.
type ReorderResult struct {
	AsOf        time.Time                  `json:"as_of"`
	Assessments []core.ReorderAssessment   `json:"assessments"`
	Counts      map[core.ReorderStatus]int `json:"counts"` // over all colours, before filtering
}

// ConsumptionResult is returned by GetColourConsumption.
type ConsumptionResult struct {
	Window *core.ConsumptionWindow `json:"window"`
}

// RequirementsResult is returned by GetFabricRequirements.
type RequirementsResult struct {
	AsOf time.Time              `json:"as_of"`
	Plan *core.RequirementsPlan `json:"plan"`
}

// EvaluateReorderResult is returned by EvaluateReorder.
type EvaluateReorderResult struct {
	Classification    core.ReorderClassification `json:"classification"`
	SuggestedOrderQty int64                      `json:"suggested_order_qty"`
}

// PurchaseBriefResult is returned by DraftPurchaseBrief.
type PurchaseBriefResult struct {
	AsOf   time.Time         `json:"as_of"`
	Brief  *ai.PurchaseBrief `json:"brief"`
	Urgent int               `json:"urgent"`
}
