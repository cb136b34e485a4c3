package core

import (
	"context"
	"fmt"
	"time"
)

// StockAnalysisService fetches a fresh snapshot from the repository on every call
// and runs the pure stock computations over it. Nothing is cached between calls.
type StockAnalysisService interface {
	// StockHealth returns the per-fabric balance rollup with colours in the given order.
	StockHealth(ctx context.Context, order ColourOrder) (*StockHealthReport, error)
	// ReorderAssessments classifies every active fabric colour using the 30-day
	// consumption window ending at asOf.
	ReorderAssessments(ctx context.Context, asOf time.Time) ([]ReorderAssessment, error)
	// ColourConsumption returns the consumption window of one fabric colour.
	ColourConsumption(ctx context.Context, fabricColourID string, asOf time.Time) (*ConsumptionWindow, error)
	// FabricRequirements projects fabric needs over the policy horizon from sales up to asOf.
	FabricRequirements(ctx context.Context, asOf time.Time) (*RequirementsPlan, error)
	// Policy returns the policy the service computes with.
	Policy() StockPolicy
}

type stockAnalysisService struct {
	repo   FabricRepository
	policy StockPolicy
}

// NewStockAnalysisService constructs a StockAnalysisService over repo.
func NewStockAnalysisService(repo FabricRepository, policy StockPolicy) StockAnalysisService {
	return &stockAnalysisService{repo: repo, policy: policy}
}

func (s *stockAnalysisService) Policy() StockPolicy { return s.policy }

func (s *stockAnalysisService) StockHealth(ctx context.Context, order ColourOrder) (*StockHealthReport, error) {
	balances, err := s.repo.ListColourBalances(ctx)
	if err != nil {
		return nil, err
	}
	return ComputeStockHealth(balances, order)
}

func (s *stockAnalysisService) ReorderAssessments(ctx context.Context, asOf time.Time) ([]ReorderAssessment, error) {
	balances, err := s.repo.ListColourBalances(ctx)
	if err != nil {
		return nil, err
	}
	meta, err := s.repo.ListCatalogMeta(ctx)
	if err != nil {
		return nil, err
	}
	from, to := WindowBounds(asOf)
	txns, err := s.repo.ListOutwardTransactions(ctx, from, to)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(balances))
	for i, b := range balances {
		ids[i] = b.FabricColourID
	}
	windows, err := AggregateConsumptionWindows(ids, txns, asOf)
	if err != nil {
		return nil, err
	}
	return ComputeReorderAssessments(balances, windows, IndexCatalog(meta), s.policy)
}

func (s *stockAnalysisService) ColourConsumption(ctx context.Context, fabricColourID string, asOf time.Time) (*ConsumptionWindow, error) {
	if fabricColourID == "" {
		return nil, fmt.Errorf("fabric colour id is required")
	}
	from, to := WindowBounds(asOf)
	txns, err := s.repo.ListOutwardTransactionsForColour(ctx, fabricColourID, from, to)
	if err != nil {
		return nil, err
	}
	w, err := AggregateConsumption(fabricColourID, txns, asOf)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// FabricRequirements reads a year of weekly sales (the forecast only uses the
// trailing RecentWeeks) and six months of size and colour mix.
func (s *stockAnalysisService) FabricRequirements(ctx context.Context, asOf time.Time) (*RequirementsPlan, error) {
	salesSince := asOf.AddDate(-1, 0, 0)
	mixSince := asOf.AddDate(0, -6, 0)

	var in RequirementsInput
	var err error
	if in.WeeklySales, err = s.repo.ListWeeklyProductSales(ctx, salesSince); err != nil {
		return nil, err
	}
	if in.SizeMix, err = s.repo.ListSizeMix(ctx, mixSince); err != nil {
		return nil, err
	}
	if in.VariationMix, err = s.repo.ListVariationMix(ctx, mixSince); err != nil {
		return nil, err
	}
	if in.BOM, err = s.repo.ListBOMLines(ctx); err != nil {
		return nil, err
	}
	if in.Stock, err = s.repo.ListColourBalances(ctx); err != nil {
		return nil, err
	}
	return PlanFabricRequirements(in, s.policy)
}
