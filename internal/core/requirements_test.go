package core_test

import (
	"errors"
	"testing"
	"time"

	"fabric-stock/internal/core"

	"github.com/shopspring/decimal"
)

func weeklySales(product string, units ...string) []core.WeeklyProductSales {
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	out := make([]core.WeeklyProductSales, len(units))
	for i, u := range units {
		out[i] = core.WeeklyProductSales{ProductName: product, WeekStart: start.AddDate(0, 0, 7*i), Units: d(u)}
	}
	return out
}

func requirementsFixture() core.RequirementsInput {
	var sales []core.WeeklyProductSales
	// Only the trailing eight weeks count: avg 10 gives 80 units over 8 weeks.
	sales = append(sales, weeklySales("Tee", "100", "100", "10", "10", "10", "10", "10", "10", "10", "10")...)
	sales = append(sales, weeklySales("Ghost", "0.1", "0.1")...)
	sales = append(sales, weeklySales("NoMix", "20", "20")...)

	line := func(variation, size, fc, colour, qty string, wastage *string) core.BOMLine {
		l := core.BOMLine{
			ProductName: "Tee", VariationID: variation, Size: size,
			FabricColourID: fc, FabricName: "Poplin", ColourName: colour, ColourCode: fc,
			Unit: core.UnitMeter, QtyPerUnit: d(qty), CostPerUnit: d("100"),
		}
		if wastage != nil {
			l.WastagePercent = decimal.NewNullDecimal(d(*wastage))
		}
		return l
	}
	ten, zero := "10", "0"

	return core.RequirementsInput{
		WeeklySales: sales,
		SizeMix: []core.SizeMix{
			{ProductName: "Tee", Size: "M", Units: d("1")},
			{ProductName: "Tee", Size: "L", Units: d("1")},
		},
		VariationMix: []core.VariationMix{
			{ProductName: "Tee", VariationID: "V1", ColourName: "Navy", Units: d("3")},
			{ProductName: "Tee", VariationID: "V2", ColourName: "White", Units: d("1")},
		},
		BOM: []core.BOMLine{
			line("V1", "M", "FC1", "Navy", "1", nil),
			line("V1", "L", "FC1", "Navy", "1.2", &ten),
			line("V2", "M", "FC2", "White", "1", &zero),
			line("V2", "L", "FC2", "White", "1", nil),
		},
		Stock: []core.FabricColourBalance{
			balance("F1", "Poplin", "FC1", "Navy", "METER", "50"),
			balance("F1", "Poplin", "FC2", "White", "METER", "30"),
		},
	}
}

func TestForecastProducts(t *testing.T) {
	got, err := core.ForecastProducts(requirementsFixture().WeeklySales, core.DefaultStockPolicy())
	if err != nil {
		t.Fatalf("ForecastProducts failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected NoMix and Tee (Ghost under one unit), got %+v", got)
	}
	if got[0].ProductName != "NoMix" || got[1].ProductName != "Tee" {
		t.Fatalf("unexpected products: %s, %s", got[0].ProductName, got[1].ProductName)
	}
	if !got[1].RecentWeeklyAvg.Equal(d("10")) || !got[1].ForecastUnits.Equal(d("80")) {
		t.Errorf("Tee: want avg 10 / 80 units, got %s / %s", got[1].RecentWeeklyAvg, got[1].ForecastUnits)
	}
	if got[1].WeeksOfHistory != 10 {
		t.Errorf("Tee history: want 10 weeks, got %d", got[1].WeeksOfHistory)
	}
}

func TestPlanFabricRequirements(t *testing.T) {
	plan, err := core.PlanFabricRequirements(requirementsFixture(), core.DefaultStockPolicy())
	if err != nil {
		t.Fatalf("PlanFabricRequirements failed: %v", err)
	}

	if plan.Summary.ProductsForecasted != 1 || len(plan.Products) != 1 {
		t.Fatalf("expected only Tee planned, got %+v", plan.Products)
	}
	if !plan.Summary.TotalForecastUnits.Equal(d("80")) {
		t.Errorf("forecast units: want 80, got %s", plan.Summary.TotalForecastUnits)
	}

	if len(plan.Fabrics) != 1 {
		t.Fatalf("expected 1 fabric, got %d", len(plan.Fabrics))
	}
	poplin := plan.Fabrics[0]
	// FC1: 30×1×1.05 + 30×1.2×1.10 = 31.5 + 39.6; FC2: 10×1×1.05 twice.
	if !poplin.TotalRequired.Equal(d("92.1")) {
		t.Errorf("Poplin total: want 92.1, got %s", poplin.TotalRequired)
	}
	if len(poplin.Colours) != 2 || poplin.Colours[0].FabricColourID != "FC1" {
		t.Fatalf("colours not sorted by requirement: %+v", poplin.Colours)
	}
	fc1, fc2 := poplin.Colours[0], poplin.Colours[1]
	if !fc1.Required.Equal(d("71.1")) || !fc1.Gap.Equal(d("21.1")) || !fc1.OrderCost.Equal(d("2110")) {
		t.Errorf("FC1: got required %s gap %s cost %s", fc1.Required, fc1.Gap, fc1.OrderCost)
	}
	if !fc2.Required.Equal(d("21")) || !fc2.Gap.Equal(d("-9")) || !fc2.OrderCost.IsZero() {
		t.Errorf("FC2: got required %s gap %s cost %s", fc2.Required, fc2.Gap, fc2.OrderCost)
	}

	if len(plan.Shortfalls) != 1 || plan.Shortfalls[0].FabricColourID != "FC1" {
		t.Fatalf("expected FC1 shortfall only, got %+v", plan.Shortfalls)
	}
	if !plan.Shortfalls[0].ToOrder.Equal(d("21.1")) {
		t.Errorf("FC1 to order: want 21.1, got %s", plan.Shortfalls[0].ToOrder)
	}
	s := plan.Summary
	if s.ShortfallCount != 1 || s.CoveredByStock != 1 || s.FabricColoursNeeded != 2 || s.FabricTypesNeeded != 1 {
		t.Errorf("unexpected summary: %+v", s)
	}
	if !s.EstimatedPurchaseCost.Equal(d("2110")) {
		t.Errorf("purchase cost: want 2110, got %s", s.EstimatedPurchaseCost)
	}
}

func TestPlanFabricRequirements_InvalidInput(t *testing.T) {
	policy := core.DefaultStockPolicy()

	in := requirementsFixture()
	in.WeeklySales[0].Units = d("-4")
	if _, err := core.PlanFabricRequirements(in, policy); !errors.Is(err, core.ErrInvalidQuantity) {
		t.Errorf("negative sales: expected ErrInvalidQuantity, got %v", err)
	}

	in = requirementsFixture()
	in.BOM[0].QtyPerUnit = d("-1")
	if _, err := core.PlanFabricRequirements(in, policy); !errors.Is(err, core.ErrInvalidQuantity) {
		t.Errorf("negative BOM: expected ErrInvalidQuantity, got %v", err)
	}

	in = requirementsFixture()
	in.Stock[0].Balance = decimal.NewNullDecimal(d("-5"))
	if _, err := core.PlanFabricRequirements(in, policy); !errors.Is(err, core.ErrInvalidBalanceRecord) {
		t.Errorf("negative balance on a needed colour: expected ErrInvalidBalanceRecord, got %v", err)
	}

	policy.ForecastWeeks = 0
	if _, err := core.PlanFabricRequirements(requirementsFixture(), policy); err == nil {
		t.Error("expected error for zero forecast weeks")
	}
}

func TestPlanFabricRequirements_Breakdowns(t *testing.T) {
	plan, err := core.PlanFabricRequirements(requirementsFixture(), core.DefaultStockPolicy())
	if err != nil {
		t.Fatalf("PlanFabricRequirements failed: %v", err)
	}
	tee := plan.Products[0]

	if len(tee.SizeBreakdown) != 2 || tee.SizeBreakdown[0].Size != "M" || tee.SizeBreakdown[1].Size != "L" {
		t.Fatalf("sizes not in garment order: %+v", tee.SizeBreakdown)
	}
	for _, sb := range tee.SizeBreakdown {
		if !sb.Pct.Equal(d("50")) || !sb.Units.Equal(d("40")) {
			t.Errorf("size %s: want 50%% / 40 units, got %s / %s", sb.Size, sb.Pct, sb.Units)
		}
	}

	if len(tee.ColourBreakdown) != 2 {
		t.Fatalf("expected 2 colours, got %+v", tee.ColourBreakdown)
	}
	navy, white := tee.ColourBreakdown[0], tee.ColourBreakdown[1]
	if navy.Colour != "Navy" || !navy.Pct.Equal(d("75")) || !navy.Units.Equal(d("60")) {
		t.Errorf("Navy: got %+v", navy)
	}
	if white.Colour != "White" || !white.Pct.Equal(d("25")) || !white.Units.Equal(d("20")) {
		t.Errorf("White: got %+v", white)
	}

	if len(tee.History) != 10 || !tee.History[0].Units.Equal(d("100")) || !tee.History[9].Units.Equal(d("10")) {
		t.Errorf("unexpected history: %+v", tee.History)
	}
}

func TestForecastProducts_HistoryKeepsTrailingWeeks(t *testing.T) {
	units := make([]string, 30)
	for i := range units {
		units[i] = decimal.NewFromInt(int64(i + 1)).String()
	}
	got, err := core.ForecastProducts(weeklySales("Tee", units...), core.DefaultStockPolicy())
	if err != nil {
		t.Fatalf("ForecastProducts failed: %v", err)
	}
	h := got[0].History
	if len(h) != core.HistoryWeeks {
		t.Fatalf("want %d weeks of history, got %d", core.HistoryWeeks, len(h))
	}
	if !h[0].Units.Equal(d("5")) || !h[len(h)-1].Units.Equal(d("30")) {
		t.Errorf("history should span weeks 5..30, got %s..%s", h[0].Units, h[len(h)-1].Units)
	}
	if got[0].WeeksOfHistory != 30 {
		t.Errorf("weeks of history: want 30, got %d", got[0].WeeksOfHistory)
	}
}

func singleLineInput(units ...string) core.RequirementsInput {
	return core.RequirementsInput{
		WeeklySales:  weeklySales("Tee", units...),
		SizeMix:      []core.SizeMix{{ProductName: "Tee", Size: "M", Units: d("1")}},
		VariationMix: []core.VariationMix{{ProductName: "Tee", VariationID: "V1", ColourName: "Navy", Units: d("1")}},
		BOM: []core.BOMLine{{
			ProductName: "Tee", VariationID: "V1", Size: "M",
			FabricColourID: "FC1", FabricName: "Poplin", ColourName: "Navy",
			Unit: core.UnitMeter, QtyPerUnit: d("1"), CostPerUnit: d("100"),
		}},
	}
}

func TestPlanFabricRequirements_UsesUnroundedForecast(t *testing.T) {
	// avg 4/3 over 8 weeks is 10.67 garments: 11 shown, 10.67×1.05 = 11.2 m needed.
	plan, err := core.PlanFabricRequirements(singleLineInput("1", "1", "2"), core.DefaultStockPolicy())
	if err != nil {
		t.Fatalf("PlanFabricRequirements failed: %v", err)
	}
	if !plan.Products[0].ForecastUnits.Equal(d("11")) {
		t.Errorf("forecast units: want 11, got %s", plan.Products[0].ForecastUnits)
	}
	if got := plan.Fabrics[0].Colours[0].Required; !got.Equal(d("11.2")) {
		t.Errorf("required: want 11.2, got %s", got)
	}
}

func TestPlanFabricRequirements_MissingBalanceCountsAsZero(t *testing.T) {
	in := singleLineInput("10", "10")
	in.Stock = []core.FabricColourBalance{
		{FabricID: "F1", FabricColourID: "FC1"},
		{FabricID: "F1", FabricColourID: "FC2"},
		balance("F1", "Poplin", "FC3", "Rust", "METER", "-3"),
	}
	plan, err := core.PlanFabricRequirements(in, core.DefaultStockPolicy())
	if err != nil {
		t.Fatalf("PlanFabricRequirements failed: %v", err)
	}
	fc1 := plan.Fabrics[0].Colours[0]
	if !fc1.InStock.IsZero() || !fc1.Gap.Equal(fc1.Required) {
		t.Errorf("FC1 without balance should have nothing in stock: %+v", fc1)
	}
	if plan.Summary.ShortfallCount != 1 {
		t.Errorf("want 1 shortfall, got %d", plan.Summary.ShortfallCount)
	}
}
