package app

import (
	"context"
	"errors"
)

// ErrAdvisorUnavailable is returned by DraftPurchaseBrief when no AI advisor is configured.
var ErrAdvisorUnavailable = errors.New("purchase advisor is not configured")

// ApplicationService is the single interface all UI adapters (CLI, Web) call.
// It decouples presentation from the stock computations. Implementations must
// contain no fmt.Println, no ANSI codes, and no display logic of any kind.
type ApplicationService interface {
	// GetStockHealth returns the per-fabric balance rollup. An empty order uses
	// the configured default colour order.
	GetStockHealth(ctx context.Context, order string) (*StockHealthResult, error)

	// GetReorderAssessments classifies every active fabric colour as of req.AsOf
	// (YYYY-MM-DD, empty means now), optionally filtered by status.
	GetReorderAssessments(ctx context.Context, req ReorderRequest) (*ReorderResult, error)

	// GetColourConsumption returns the 30-day consumption window of one fabric colour.
	GetColourConsumption(ctx context.Context, fabricColourID, asOf string) (*ConsumptionResult, error)

	// GetFabricRequirements projects fabric needs from recent sales and the bill of materials.
	GetFabricRequirements(ctx context.Context, asOf string) (*RequirementsResult, error)

	// EvaluateReorder classifies a single hypothetical balance without touching storage.
	EvaluateReorder(ctx context.Context, req EvaluateReorderRequest) (*EvaluateReorderResult, error)

	// DraftPurchaseBrief groups the urgent assessments by supplier through the AI advisor.
	// Returns ErrAdvisorUnavailable when the advisor is not configured.
	DraftPurchaseBrief(ctx context.Context, asOf string) (*PurchaseBriefResult, error)
}
