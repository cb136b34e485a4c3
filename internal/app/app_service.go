package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fabric-stock/internal/ai"
	"fabric-stock/internal/core"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrInvalidRequest marks caller input that could not be parsed (dates, orders, statuses).
var ErrInvalidRequest = errors.New("invalid request")

const dateLayout = "2006-01-02"

type appService struct {
	analysis     core.StockAnalysisService
	advisor      ai.PurchaseAdvisor
	logger       *zap.Logger
	defaultOrder core.ColourOrder
	now          func() time.Time
}

// NewAppService constructs an appService that satisfies ApplicationService.
// advisor may be nil, in which case DraftPurchaseBrief returns ErrAdvisorUnavailable.
func NewAppService(
	analysis core.StockAnalysisService,
	advisor ai.PurchaseAdvisor,
	logger *zap.Logger,
	defaultOrder core.ColourOrder,
) ApplicationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultOrder == "" {
		defaultOrder = core.ColourOrderName
	}
	return &appService{
		analysis:     analysis,
		advisor:      advisor,
		logger:       logger,
		defaultOrder: defaultOrder,
		now:          time.Now,
	}
}

// parseAsOf turns a YYYY-MM-DD date into the last instant of that day in UTC,
// so the whole day falls inside the consumption window.
func (s *appService) parseAsOf(asOf string) (time.Time, error) {
	asOf = strings.TrimSpace(asOf)
	if asOf == "" {
		return s.now().UTC(), nil
	}
	day, err := time.Parse(dateLayout, asOf)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: as-of date %q must be YYYY-MM-DD", ErrInvalidRequest, asOf)
	}
	return day.AddDate(0, 0, 1).Add(-time.Microsecond), nil
}

// GetStockHealth returns the per-fabric balance rollup.
func (s *appService) GetStockHealth(ctx context.Context, order string) (*StockHealthResult, error) {
	o := s.defaultOrder
	if order != "" {
		parsed, err := core.ParseColourOrder(order)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		o = parsed
	}

	report, err := s.analysis.StockHealth(ctx, o)
	if err != nil {
		return nil, err
	}
	s.logger.Info("stock health computed",
		zap.Int("fabrics", len(report.Rows)),
		zap.String("total_balance", report.TotalBalance.String()),
	)
	return &StockHealthResult{Order: o, Report: report}, nil
}

// GetReorderAssessments classifies every active fabric colour.
func (s *appService) GetReorderAssessments(ctx context.Context, req ReorderRequest) (*ReorderResult, error) {
	asOf, err := s.parseAsOf(req.AsOf)
	if err != nil {
		return nil, err
	}
	statuses := make([]core.ReorderStatus, 0, len(req.Statuses))
	for _, raw := range req.Statuses {
		st, err := core.ParseReorderStatus(strings.ToUpper(strings.TrimSpace(raw)))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		statuses = append(statuses, st)
	}

	all, err := s.analysis.ReorderAssessments(ctx, asOf)
	if err != nil {
		return nil, err
	}

	counts := map[core.ReorderStatus]int{core.StatusOrderNow: 0, core.StatusOrderSoon: 0, core.StatusOK: 0}
	for _, a := range all {
		counts[a.Status]++
	}
	s.logger.Info("reorder assessments computed",
		zap.Time("as_of", asOf),
		zap.Int("order_now", counts[core.StatusOrderNow]),
		zap.Int("order_soon", counts[core.StatusOrderSoon]),
		zap.Int("ok", counts[core.StatusOK]),
	)

	assessments := core.FilterByStatus(all, statuses...)
	if assessments == nil {
		assessments = []core.ReorderAssessment{}
	}
	return &ReorderResult{AsOf: asOf, Assessments: assessments, Counts: counts}, nil
}

// GetColourConsumption returns the consumption window of one fabric colour.
func (s *appService) GetColourConsumption(ctx context.Context, fabricColourID, asOf string) (*ConsumptionResult, error) {
	t, err := s.parseAsOf(asOf)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(fabricColourID) == "" {
		return nil, fmt.Errorf("%w: fabric colour id is required", ErrInvalidRequest)
	}
	w, err := s.analysis.ColourConsumption(ctx, fabricColourID, t)
	if err != nil {
		return nil, err
	}
	return &ConsumptionResult{Window: w}, nil
}

// GetFabricRequirements projects fabric needs over the policy horizon.
func (s *appService) GetFabricRequirements(ctx context.Context, asOf string) (*RequirementsResult, error) {
	t, err := s.parseAsOf(asOf)
	if err != nil {
		return nil, err
	}
	plan, err := s.analysis.FabricRequirements(ctx, t)
	if err != nil {
		return nil, err
	}
	s.logger.Info("fabric requirements planned",
		zap.Int("products", plan.Summary.ProductsForecasted),
		zap.Int("shortfalls", plan.Summary.ShortfallCount),
		zap.String("estimated_purchase_cost", plan.Summary.EstimatedPurchaseCost.String()),
	)
	return &RequirementsResult{AsOf: t, Plan: plan}, nil
}

// EvaluateReorder classifies a single hypothetical balance with the service policy.
func (s *appService) EvaluateReorder(ctx context.Context, req EvaluateReorderRequest) (*EvaluateReorderResult, error) {
	balance, err := decimal.NewFromString(strings.TrimSpace(req.Balance))
	if err != nil {
		return nil, fmt.Errorf("%w: balance %q is not a number", ErrInvalidRequest, req.Balance)
	}
	avg, err := core.ParseQuantity(req.AvgDailyConsumption)
	if err != nil {
		return nil, fmt.Errorf("%w: avg_daily_consumption: %w", ErrInvalidRequest, err)
	}
	var moq *decimal.Decimal
	if req.MinOrderQuantity != nil {
		m, err := core.ParseQuantity(*req.MinOrderQuantity)
		if err != nil {
			return nil, fmt.Errorf("%w: min_order_quantity: %w", ErrInvalidRequest, err)
		}
		moq = &m
	}

	policy := s.analysis.Policy()
	c, err := policy.ClassifyReorder(balance, avg, req.LeadTimeDays)
	if err != nil {
		return nil, err
	}
	qty, err := policy.SuggestOrderQuantity(avg, req.LeadTimeDays, moq)
	if err != nil {
		return nil, err
	}
	return &EvaluateReorderResult{Classification: c, SuggestedOrderQty: qty}, nil
}

// DraftPurchaseBrief asks the advisor to group the urgent assessments by supplier.
func (s *appService) DraftPurchaseBrief(ctx context.Context, asOf string) (*PurchaseBriefResult, error) {
	if s.advisor == nil {
		return nil, ErrAdvisorUnavailable
	}
	t, err := s.parseAsOf(asOf)
	if err != nil {
		return nil, err
	}
	all, err := s.analysis.ReorderAssessments(ctx, t)
	if err != nil {
		return nil, err
	}
	urgent := core.FilterByStatus(all, core.StatusOrderNow, core.StatusOrderSoon)

	brief, err := s.advisor.DraftPurchaseBrief(ctx, urgent)
	if err != nil {
		s.logger.Warn("purchase brief failed", zap.Error(err), zap.Int("urgent", len(urgent)))
		return nil, err
	}
	s.logger.Info("purchase brief drafted", zap.Int("urgent", len(urgent)), zap.Int("suppliers", len(brief.Orders)))
	return &PurchaseBriefResult{AsOf: t, Brief: brief, Urgent: len(urgent)}, nil
}
