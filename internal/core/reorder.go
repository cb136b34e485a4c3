package core

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// StockPolicy holds the tunable constants of the reorder and planning computations.
type StockPolicy struct {
	// DefaultLeadTimeDays replaces a fabric's lead time when the catalog has none.
	// Zero or negative disables the fallback, and classification then fails instead.
	DefaultLeadTimeDays int
	// SafetyFactor multiplies lead-time demand when suggesting an order quantity.
	SafetyFactor decimal.Decimal
	// SoonMultiplier widens the lead time into the ORDER SOON band.
	SoonMultiplier decimal.Decimal

	// ForecastWeeks is the horizon of the fabric requirements plan.
	ForecastWeeks int
	// RecentWeeks is how many trailing weeks of sales feed the per-product average.
	RecentWeeks int
	// DefaultWastagePercent applies to BOM lines without a positive wastage.
	DefaultWastagePercent decimal.Decimal
}

// DefaultStockPolicy returns the policy used when nothing is configured.
func DefaultStockPolicy() StockPolicy {
	return StockPolicy{
		DefaultLeadTimeDays:   14,
		SafetyFactor:          decimal.RequireFromString("1.2"),
		SoonMultiplier:        decimal.RequireFromString("1.5"),
		ForecastWeeks:         8,
		RecentWeeks:           8,
		DefaultWastagePercent: decimal.NewFromInt(5),
	}
}

// ReorderClassification is the outcome of ClassifyReorder.
type ReorderClassification struct {
	DaysOfStock           *decimal.Decimal `json:"days_of_stock"`
	EffectiveLeadTimeDays int              `json:"effective_lead_time_days"`
	Status                ReorderStatus    `json:"status"`
}

// DaysOfStock returns balance / avgDaily, or nil when avgDaily is not positive.
func DaysOfStock(balance, avgDaily decimal.Decimal) *decimal.Decimal {
	if !avgDaily.IsPositive() {
		return nil
	}
	d := balance.Div(avgDaily)
	return &d
}

func (p StockPolicy) effectiveLeadTime(leadTimeDays *int) (int, error) {
	if leadTimeDays != nil {
		if *leadTimeDays < 0 {
			return 0, fmt.Errorf("%w: lead time %d days is negative", ErrMissingCatalogMetadata, *leadTimeDays)
		}
		return *leadTimeDays, nil
	}
	if p.DefaultLeadTimeDays <= 0 {
		return 0, fmt.Errorf("%w: lead time is not set and no default lead time is configured", ErrMissingCatalogMetadata)
	}
	return p.DefaultLeadTimeDays, nil
}

// leadTimeUnresolvable reports whether no lead time is known for an idle colour.
// Zero consumption never needs one, so callers skip the lookup instead of failing.
func (p StockPolicy) leadTimeUnresolvable(avgDaily decimal.Decimal, leadTimeDays *int) bool {
	return !avgDaily.IsPositive() && leadTimeDays == nil && p.DefaultLeadTimeDays <= 0
}

// ClassifyReorder assigns the reorder status for a balance drawn down at avgDaily per day.
// Zero consumption is always OK. Otherwise days-of-stock at or under the lead time is
// ORDER NOW, and at or under SoonMultiplier × lead time is ORDER SOON.
func (p StockPolicy) ClassifyReorder(balance, avgDaily decimal.Decimal, leadTimeDays *int) (ReorderClassification, error) {
	if balance.IsNegative() {
		return ReorderClassification{}, fmt.Errorf("%w: balance %s is negative", ErrInvalidBalanceRecord, balance)
	}
	if avgDaily.IsNegative() {
		return ReorderClassification{}, fmt.Errorf("%w: average daily consumption %s is negative", ErrInvalidQuantity, avgDaily)
	}
	if p.leadTimeUnresolvable(avgDaily, leadTimeDays) {
		return ReorderClassification{Status: StatusOK}, nil
	}
	lead, err := p.effectiveLeadTime(leadTimeDays)
	if err != nil {
		return ReorderClassification{}, err
	}

	c := ReorderClassification{EffectiveLeadTimeDays: lead, Status: StatusOK}
	days := DaysOfStock(balance, avgDaily)
	if days == nil {
		return c, nil
	}
	c.DaysOfStock = days

	leadDec := decimal.NewFromInt(int64(lead))
	switch {
	case days.LessThanOrEqual(leadDec):
		c.Status = StatusOrderNow
	case days.LessThanOrEqual(leadDec.Mul(p.SoonMultiplier)):
		c.Status = StatusOrderSoon
	}
	return c, nil
}

// SuggestOrderQuantity returns ceil(avgDaily × lead time × SafetyFactor), raised to
// ceil(minOrderQty) when that floor is larger. The result is never negative.
func (p StockPolicy) SuggestOrderQuantity(avgDaily decimal.Decimal, leadTimeDays *int, minOrderQty *decimal.Decimal) (int64, error) {
	if avgDaily.IsNegative() {
		return 0, fmt.Errorf("%w: average daily consumption %s is negative", ErrInvalidQuantity, avgDaily)
	}
	if minOrderQty != nil && minOrderQty.IsNegative() {
		return 0, fmt.Errorf("%w: minimum order quantity %s is negative", ErrMissingCatalogMetadata, *minOrderQty)
	}
	if p.leadTimeUnresolvable(avgDaily, leadTimeDays) {
		if minOrderQty == nil {
			return 0, nil
		}
		return minOrderQty.Ceil().IntPart(), nil
	}
	lead, err := p.effectiveLeadTime(leadTimeDays)
	if err != nil {
		return 0, err
	}

	qty := avgDaily.Mul(decimal.NewFromInt(int64(lead))).Mul(p.SafetyFactor).Ceil()
	if minOrderQty != nil {
		if floor := minOrderQty.Ceil(); floor.GreaterThan(qty) {
			qty = floor
		}
	}
	if qty.IsNegative() {
		qty = decimal.Zero
	}
	return qty.IntPart(), nil
}

// IndexCatalog keys catalog metadata by fabric id.
func IndexCatalog(meta []FabricCatalogMeta) map[string]FabricCatalogMeta {
	out := make(map[string]FabricCatalogMeta, len(meta))
	for _, m := range meta {
		out[m.FabricID] = m
	}
	return out
}

// ComputeReorderAssessments classifies every fabric colour in balances.
// A colour without a consumption window is treated as having no outward movement.
// A fabric without catalog metadata, or without a unit anywhere, fails the whole call.
// Results are ordered by urgency, then days-of-stock ascending (unknown last), then names.
func ComputeReorderAssessments(
	balances []FabricColourBalance,
	windows map[string]ConsumptionWindow,
	catalog map[string]FabricCatalogMeta,
	policy StockPolicy,
) ([]ReorderAssessment, error) {
	out := make([]ReorderAssessment, 0, len(balances))
	for _, b := range balances {
		if !b.Balance.Valid {
			return nil, fmt.Errorf("%w: fabric colour %s has no balance", ErrInvalidBalanceRecord, b.FabricColourID)
		}
		meta, ok := catalog[b.FabricID]
		if !ok {
			return nil, fmt.Errorf("%w: no catalog entry for fabric %s (%s)", ErrMissingCatalogMetadata, b.FabricID, b.FabricName)
		}
		unit := b.Unit
		if unit == "" {
			unit = meta.Unit
		}
		if unit == "" {
			return nil, fmt.Errorf("%w: fabric %s (%s) has no unit", ErrMissingCatalogMetadata, b.FabricID, b.FabricName)
		}

		avg := decimal.Zero
		if w, ok := windows[b.FabricColourID]; ok {
			avg = w.AvgDailyConsumed
		}

		c, err := policy.ClassifyReorder(b.Balance.Decimal, avg, meta.LeadTimeDays)
		if err != nil {
			return nil, fmt.Errorf("fabric colour %s: %w", b.FabricColourID, err)
		}
		qty, err := policy.SuggestOrderQuantity(avg, meta.LeadTimeDays, meta.MinOrderQuantity)
		if err != nil {
			return nil, fmt.Errorf("fabric colour %s: %w", b.FabricColourID, err)
		}

		out = append(out, ReorderAssessment{
			FabricColourID:        b.FabricColourID,
			FabricID:              b.FabricID,
			FabricName:            b.FabricName,
			ColourName:            b.ColourName,
			ColourCode:            b.ColourCode,
			Unit:                  unit,
			CurrentBalance:        b.Balance.Decimal,
			AvgDailyConsumption:   avg,
			DaysOfStock:           c.DaysOfStock,
			LeadTimeDays:          meta.LeadTimeDays,
			EffectiveLeadTimeDays: c.EffectiveLeadTimeDays,
			SuggestedOrderQty:     qty,
			Status:                c.Status,
			PartyName:             meta.PartyName,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Status.rank() != b.Status.rank() {
			return a.Status.rank() < b.Status.rank()
		}
		switch {
		case a.DaysOfStock != nil && b.DaysOfStock == nil:
			return true
		case a.DaysOfStock == nil && b.DaysOfStock != nil:
			return false
		case a.DaysOfStock != nil && !a.DaysOfStock.Equal(*b.DaysOfStock):
			return a.DaysOfStock.LessThan(*b.DaysOfStock)
		}
		if a.FabricName != b.FabricName {
			return a.FabricName < b.FabricName
		}
		if a.ColourName != b.ColourName {
			return a.ColourName < b.ColourName
		}
		return a.FabricColourID < b.FabricColourID
	})
	return out, nil
}

// FilterByStatus keeps only the assessments whose status is in statuses.
// An empty statuses list returns the input unchanged.
func FilterByStatus(assessments []ReorderAssessment, statuses ...ReorderStatus) []ReorderAssessment {
	if len(statuses) == 0 {
		return assessments
	}
	want := make(map[ReorderStatus]bool, len(statuses))
	for _, s := range statuses {
		want[s] = true
	}
	var out []ReorderAssessment
	for _, a := range assessments {
		if want[a.Status] {
			out = append(out, a)
		}
	}
	return out
}

// ParseReorderStatus maps a status label to its ReorderStatus.
func ParseReorderStatus(s string) (ReorderStatus, error) {
	switch ReorderStatus(s) {
	case StatusOrderNow, StatusOrderSoon, StatusOK:
		return ReorderStatus(s), nil
	}
	return "", fmt.Errorf("unknown reorder status %q", s)
}
