package core

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// ── Planner inputs ────────────────────────────────────────────────────────────

// WeeklyProductSales is the number of units of a product sold in one week.
type WeeklyProductSales struct {
	ProductName string
	WeekStart   time.Time
	Units       decimal.Decimal
}

// SizeMix is the recent sales volume of a product in one size.
type SizeMix struct {
	ProductName string
	Size        string
	Units       decimal.Decimal
}

// VariationMix is the recent sales volume of one colour variation of a product.
type VariationMix struct {
	ProductName string
	VariationID string
	ColourName  string
	Units       decimal.Decimal
}

// BOMLine is the fabric consumed by one garment of a given variation and size.
// WastagePercent is optional; a missing or non-positive value takes the policy default.
type BOMLine struct {
	ProductName    string
	VariationID    string
	Size           string
	FabricColourID string
	FabricName     string
	ColourName     string
	ColourCode     string
	Unit           Unit
	QtyPerUnit     decimal.Decimal
	WastagePercent decimal.NullDecimal
	CostPerUnit    decimal.Decimal
}

// RequirementsInput is everything the planner reads.
type RequirementsInput struct {
	WeeklySales  []WeeklyProductSales
	SizeMix      []SizeMix
	VariationMix []VariationMix
	BOM          []BOMLine
	Stock        []FabricColourBalance
}

// ── Planner outputs ───────────────────────────────────────────────────────────

// HistoryWeeks is how many trailing weeks of sales a ProductForecast carries.
const HistoryWeeks = 26

// SizeOrder is the display order of garment sizes. Sizes outside it are listed
// after these, alphabetically.
var SizeOrder = []string{"XS", "S", "M", "L", "XL", "2XL", "3XL"}

// WeeklyUnits is one week of a product's sales history.
type WeeklyUnits struct {
	WeekStart time.Time       `json:"week_start"`
	Units     decimal.Decimal `json:"units"`
}

// SizeBreakdown is the projected demand for one size of a product.
type SizeBreakdown struct {
	Size  string          `json:"size"`
	Pct   decimal.Decimal `json:"pct"`
	Units decimal.Decimal `json:"units"`
}

// ColourBreakdown is the projected demand for one colour variation of a product.
type ColourBreakdown struct {
	VariationID string          `json:"variation_id"`
	Colour      string          `json:"colour"`
	Pct         decimal.Decimal `json:"pct"`
	Units       decimal.Decimal `json:"units"`
}

// ProductForecast is the projected demand of one product over the plan horizon.
// ForecastUnits is rounded for display; fabric needs use the exact projection.
type ProductForecast struct {
	ProductName     string            `json:"product_name"`
	WeeksOfHistory  int               `json:"weeks_of_history"`
	RecentWeeklyAvg decimal.Decimal   `json:"recent_weekly_avg"`
	ForecastUnits   decimal.Decimal   `json:"forecast_units"`
	SizeBreakdown   []SizeBreakdown   `json:"size_breakdown"`
	ColourBreakdown []ColourBreakdown `json:"colour_breakdown"`
	History         []WeeklyUnits     `json:"history"`

	projected decimal.Decimal
}

// ColourRequirement compares the projected need of a fabric colour with its stock.
// A negative Gap is surplus stock.
type ColourRequirement struct {
	FabricColourID string          `json:"fabric_colour_id"`
	ColourCode     string          `json:"colour_code"`
	ColourName     string          `json:"colour_name"`
	Required       decimal.Decimal `json:"required"`
	InStock        decimal.Decimal `json:"in_stock"`
	Gap            decimal.Decimal `json:"gap"`
	CostPerUnit    decimal.Decimal `json:"cost_per_unit"`
	OrderCost      decimal.Decimal `json:"order_cost"`
}

// FabricRequirement groups colour requirements by fabric.
type FabricRequirement struct {
	FabricName    string              `json:"fabric_name"`
	Unit          Unit                `json:"unit"`
	TotalRequired decimal.Decimal     `json:"total_required"`
	Colours       []ColourRequirement `json:"colours"`
}

// PurchaseShortfall is a fabric colour whose projected need exceeds its stock.
type PurchaseShortfall struct {
	FabricColourID string          `json:"fabric_colour_id"`
	ColourCode     string          `json:"colour_code"`
	FabricName     string          `json:"fabric_name"`
	ColourName     string          `json:"colour_name"`
	Unit           Unit            `json:"unit"`
	Required       decimal.Decimal `json:"required"`
	InStock        decimal.Decimal `json:"in_stock"`
	ToOrder        decimal.Decimal `json:"to_order"`
	CostPerUnit    decimal.Decimal `json:"cost_per_unit"`
	EstCost        decimal.Decimal `json:"est_cost"`
}

// RequirementsSummary holds the headline numbers of a plan.
type RequirementsSummary struct {
	TotalForecastUnits    decimal.Decimal `json:"total_forecast_units"`
	ProductsForecasted    int             `json:"products_forecasted"`
	FabricTypesNeeded     int             `json:"fabric_types_needed"`
	FabricColoursNeeded   int             `json:"fabric_colours_needed"`
	ShortfallCount        int             `json:"shortfall_count"`
	CoveredByStock        int             `json:"covered_by_stock"`
	EstimatedPurchaseCost decimal.Decimal `json:"estimated_purchase_cost"`
}

// RequirementsPlan is the fabric requirements projection over ForecastWeeks.
type RequirementsPlan struct {
	ForecastWeeks  int                 `json:"forecast_weeks"`
	WastagePercent decimal.Decimal     `json:"wastage_percent"`
	Products       []ProductForecast   `json:"products"`
	Fabrics        []FabricRequirement `json:"fabrics"`
	Shortfalls     []PurchaseShortfall `json:"shortfalls"`
	Summary        RequirementsSummary `json:"summary"`
}

// ── Planner ───────────────────────────────────────────────────────────────────

type colourNeed struct {
	line BOMLine
	qty  decimal.Decimal
}

// ForecastProducts projects each product's demand as the mean of its last
// RecentWeeks weekly totals times ForecastWeeks. Products projecting under
// one unit are dropped. The result is sorted by product name.
func ForecastProducts(sales []WeeklyProductSales, policy StockPolicy) ([]ProductForecast, error) {
	if policy.RecentWeeks <= 0 || policy.ForecastWeeks <= 0 {
		return nil, fmt.Errorf("forecast needs positive recent and forecast weeks, got %d and %d", policy.RecentWeeks, policy.ForecastWeeks)
	}

	weekly := make(map[string]map[time.Time]decimal.Decimal)
	for _, s := range sales {
		if s.Units.IsNegative() {
			return nil, fmt.Errorf("%w: product %s sold %s units in week %s",
				ErrInvalidQuantity, s.ProductName, s.Units, s.WeekStart.Format("2006-01-02"))
		}
		if weekly[s.ProductName] == nil {
			weekly[s.ProductName] = make(map[time.Time]decimal.Decimal)
		}
		weekly[s.ProductName][s.WeekStart] = weekly[s.ProductName][s.WeekStart].Add(s.Units)
	}

	var out []ProductForecast
	for name, weeks := range weekly {
		starts := make([]time.Time, 0, len(weeks))
		for w := range weeks {
			starts = append(starts, w)
		}
		sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })

		history := make([]WeeklyUnits, 0, HistoryWeeks)
		for _, w := range starts[max(0, len(starts)-HistoryWeeks):] {
			history = append(history, WeeklyUnits{WeekStart: w, Units: weeks[w]})
		}

		recent := starts[max(0, len(starts)-policy.RecentWeeks):]
		sum := decimal.Zero
		for _, w := range recent {
			sum = sum.Add(weeks[w])
		}
		avg := sum.Div(decimal.NewFromInt(int64(len(recent))))
		total := avg.Mul(decimal.NewFromInt(int64(policy.ForecastWeeks)))
		if total.LessThan(decimal.NewFromInt(1)) {
			continue
		}
		out = append(out, ProductForecast{
			ProductName:     name,
			WeeksOfHistory:  len(weeks),
			RecentWeeklyAvg: avg.Round(1),
			ForecastUnits:   total.Round(0),
			History:         history,
			projected:       total,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductName < out[j].ProductName })
	return out, nil
}

// shares normalises unit counts into proportions. A zero total yields no shares.
func shares[K comparable](units map[K]decimal.Decimal) map[K]decimal.Decimal {
	total := decimal.Zero
	for _, u := range units {
		total = total.Add(u)
	}
	if !total.IsPositive() {
		return nil
	}
	out := make(map[K]decimal.Decimal, len(units))
	for k, u := range units {
		out[k] = u.Div(total)
	}
	return out
}

func sizeRank(size string) int {
	for i, s := range SizeOrder {
		if s == size {
			return i
		}
	}
	return len(SizeOrder)
}

func sizeBreakdown(projected decimal.Decimal, sizeShares map[string]decimal.Decimal) []SizeBreakdown {
	hundred := decimal.NewFromInt(100)
	out := make([]SizeBreakdown, 0, len(sizeShares))
	for size, share := range sizeShares {
		out = append(out, SizeBreakdown{
			Size:  size,
			Pct:   share.Mul(hundred).Round(1),
			Units: projected.Mul(share).Round(0),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		ri, rj := sizeRank(out[i].Size), sizeRank(out[j].Size)
		if ri != rj {
			return ri < rj
		}
		return out[i].Size < out[j].Size
	})
	return out
}

func colourBreakdown(projected decimal.Decimal, varShares map[string]decimal.Decimal, colours map[string]string) []ColourBreakdown {
	hundred := decimal.NewFromInt(100)
	out := make([]ColourBreakdown, 0, len(varShares))
	for variation, share := range varShares {
		out = append(out, ColourBreakdown{
			VariationID: variation,
			Colour:      colours[variation],
			Pct:         share.Mul(hundred).Round(1),
			Units:       projected.Mul(share).Round(0),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Pct.Equal(out[j].Pct) {
			return out[i].Pct.GreaterThan(out[j].Pct)
		}
		return out[i].VariationID < out[j].VariationID
	})
	return out
}

// PlanFabricRequirements spreads each product forecast over its colour variations
// and sizes, converts garments into fabric through the BOM (with wastage), and
// compares the result with current stock.
func PlanFabricRequirements(in RequirementsInput, policy StockPolicy) (*RequirementsPlan, error) {
	forecasts, err := ForecastProducts(in.WeeklySales, policy)
	if err != nil {
		return nil, err
	}

	sizeUnits := make(map[string]map[string]decimal.Decimal)
	for _, m := range in.SizeMix {
		if m.Units.IsNegative() {
			return nil, fmt.Errorf("%w: size mix %s/%s has %s units", ErrInvalidQuantity, m.ProductName, m.Size, m.Units)
		}
		if sizeUnits[m.ProductName] == nil {
			sizeUnits[m.ProductName] = make(map[string]decimal.Decimal)
		}
		sizeUnits[m.ProductName][m.Size] = sizeUnits[m.ProductName][m.Size].Add(m.Units)
	}
	varUnits := make(map[string]map[string]decimal.Decimal)
	colours := make(map[string]string)
	for _, m := range in.VariationMix {
		if m.Units.IsNegative() {
			return nil, fmt.Errorf("%w: variation mix %s/%s has %s units", ErrInvalidQuantity, m.ProductName, m.VariationID, m.Units)
		}
		if varUnits[m.ProductName] == nil {
			varUnits[m.ProductName] = make(map[string]decimal.Decimal)
		}
		varUnits[m.ProductName][m.VariationID] = varUnits[m.ProductName][m.VariationID].Add(m.Units)
		colours[m.VariationID] = m.ColourName
	}

	type bomKey struct{ variation, size string }
	bom := make(map[bomKey][]BOMLine)
	for _, l := range in.BOM {
		if l.QtyPerUnit.IsNegative() {
			return nil, fmt.Errorf("%w: BOM line for %s uses %s per unit", ErrInvalidQuantity, l.FabricColourID, l.QtyPerUnit)
		}
		k := bomKey{l.VariationID, l.Size}
		bom[k] = append(bom[k], l)
	}

	hundred := decimal.NewFromInt(100)
	needs := make(map[string]*colourNeed)
	var planned []ProductForecast
	for _, f := range forecasts {
		varShares := shares(varUnits[f.ProductName])
		sizeShares := shares(sizeUnits[f.ProductName])
		if len(varShares) == 0 || len(sizeShares) == 0 {
			continue
		}
		f.SizeBreakdown = sizeBreakdown(f.projected, sizeShares)
		f.ColourBreakdown = colourBreakdown(f.projected, varShares, colours)
		planned = append(planned, f)

		for variation, vs := range varShares {
			varQty := f.projected.Mul(vs)
			for size, ss := range sizeShares {
				garments := varQty.Mul(ss)
				for _, l := range bom[bomKey{variation, size}] {
					wastage := policy.DefaultWastagePercent
					if l.WastagePercent.Valid && l.WastagePercent.Decimal.IsPositive() {
						wastage = l.WastagePercent.Decimal
					}
					qty := garments.Mul(l.QtyPerUnit).Mul(decimal.NewFromInt(1).Add(wastage.Div(hundred)))
					n, ok := needs[l.FabricColourID]
					if !ok {
						n = &colourNeed{line: l, qty: decimal.Zero}
						needs[l.FabricColourID] = n
					}
					n.qty = n.qty.Add(qty)
				}
			}
		}
	}

	// Colours without a recorded balance count as nothing in stock. A negative
	// balance is only fatal for a colour the plan needs.
	stock := make(map[string]decimal.Decimal, len(in.Stock))
	for _, s := range in.Stock {
		if !s.Balance.Valid {
			continue
		}
		if s.Balance.Decimal.IsNegative() {
			if _, needed := needs[s.FabricColourID]; needed {
				return nil, fmt.Errorf("%w: fabric colour %s has negative balance %s", ErrInvalidBalanceRecord, s.FabricColourID, s.Balance.Decimal)
			}
			continue
		}
		stock[s.FabricColourID] = stock[s.FabricColourID].Add(s.Balance.Decimal)
	}

	plan := &RequirementsPlan{
		ForecastWeeks:  policy.ForecastWeeks,
		WastagePercent: policy.DefaultWastagePercent,
		Products:       planned,
	}

	fabrics := make(map[string]*FabricRequirement)
	for id, n := range needs {
		inStock := stock[id]
		gap := n.qty.Sub(inStock)
		orderCost := decimal.Zero
		if gap.IsPositive() && n.line.CostPerUnit.IsPositive() {
			orderCost = gap.Mul(n.line.CostPerUnit)
		}

		fr, ok := fabrics[n.line.FabricName]
		if !ok {
			fr = &FabricRequirement{FabricName: n.line.FabricName, Unit: n.line.Unit, TotalRequired: decimal.Zero}
			fabrics[n.line.FabricName] = fr
		}
		fr.TotalRequired = fr.TotalRequired.Add(n.qty)
		fr.Colours = append(fr.Colours, ColourRequirement{
			FabricColourID: id,
			ColourCode:     n.line.ColourCode,
			ColourName:     n.line.ColourName,
			Required:       n.qty.Round(1),
			InStock:        inStock.Round(1),
			Gap:            gap.Round(1),
			CostPerUnit:    n.line.CostPerUnit,
			OrderCost:      orderCost.Round(0),
		})

		if gap.IsPositive() {
			plan.Shortfalls = append(plan.Shortfalls, PurchaseShortfall{
				FabricColourID: id,
				ColourCode:     n.line.ColourCode,
				FabricName:     n.line.FabricName,
				ColourName:     n.line.ColourName,
				Unit:           n.line.Unit,
				Required:       n.qty.Round(1),
				InStock:        inStock.Round(1),
				ToOrder:        gap.Round(1),
				CostPerUnit:    n.line.CostPerUnit,
				EstCost:        orderCost.Round(0),
			})
			plan.Summary.EstimatedPurchaseCost = plan.Summary.EstimatedPurchaseCost.Add(orderCost.Round(0))
		} else {
			plan.Summary.CoveredByStock++
		}
	}

	for _, fr := range fabrics {
		fr.TotalRequired = fr.TotalRequired.Round(1)
		sort.Slice(fr.Colours, func(i, j int) bool {
			if !fr.Colours[i].Required.Equal(fr.Colours[j].Required) {
				return fr.Colours[i].Required.GreaterThan(fr.Colours[j].Required)
			}
			return fr.Colours[i].FabricColourID < fr.Colours[j].FabricColourID
		})
		plan.Fabrics = append(plan.Fabrics, *fr)
	}
	sort.Slice(plan.Fabrics, func(i, j int) bool {
		if !plan.Fabrics[i].TotalRequired.Equal(plan.Fabrics[j].TotalRequired) {
			return plan.Fabrics[i].TotalRequired.GreaterThan(plan.Fabrics[j].TotalRequired)
		}
		return plan.Fabrics[i].FabricName < plan.Fabrics[j].FabricName
	})
	sort.Slice(plan.Shortfalls, func(i, j int) bool {
		if !plan.Shortfalls[i].Required.Equal(plan.Shortfalls[j].Required) {
			return plan.Shortfalls[i].Required.GreaterThan(plan.Shortfalls[j].Required)
		}
		return plan.Shortfalls[i].FabricColourID < plan.Shortfalls[j].FabricColourID
	})

	for _, p := range planned {
		plan.Summary.TotalForecastUnits = plan.Summary.TotalForecastUnits.Add(p.ForecastUnits)
	}
	plan.Summary.ProductsForecasted = len(planned)
	plan.Summary.FabricTypesNeeded = len(plan.Fabrics)
	plan.Summary.FabricColoursNeeded = len(needs)
	plan.Summary.ShortfallCount = len(plan.Shortfalls)
	return plan, nil
}
