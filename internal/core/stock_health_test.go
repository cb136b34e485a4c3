package core_test

import (
	"errors"
	"testing"

	"fabric-stock/internal/core"

	"github.com/shopspring/decimal"
)

func balance(fabricID, fabricName, colourID, colour, unit, bal string) core.FabricColourBalance {
	return core.FabricColourBalance{
		FabricID:       fabricID,
		FabricName:     fabricName,
		MaterialName:   "Cotton",
		FabricColourID: colourID,
		ColourName:     colour,
		ColourCode:     colourID + "-" + colour,
		Unit:           core.Unit(unit),
		Balance:        decimal.NewNullDecimal(decimal.RequireFromString(bal)),
	}
}

func stockFixture() []core.FabricColourBalance {
	return []core.FabricColourBalance{
		balance("F2", "Poplin", "FC3", "White", "METER", "120.5"),
		balance("F1", "Jersey", "FC1", "Navy", "KG", "40"),
		balance("F2", "Poplin", "FC4", "Black", "METER", "300"),
		balance("F1", "Jersey", "FC2", "Grey", "KG", "12.25"),
		balance("F2", "Poplin", "FC5", "Sand", "METER", "0"),
	}
}

func TestComputeStockHealth(t *testing.T) {
	report, err := core.ComputeStockHealth(stockFixture(), core.ColourOrderName)
	if err != nil {
		t.Fatalf("ComputeStockHealth failed: %v", err)
	}

	if len(report.Rows) != 2 {
		t.Fatalf("expected 2 fabric rows, got %d", len(report.Rows))
	}
	jersey, poplin := report.Rows[0], report.Rows[1]
	if jersey.FabricName != "Jersey" || poplin.FabricName != "Poplin" {
		t.Fatalf("rows not ordered by fabric name: %s, %s", jersey.FabricName, poplin.FabricName)
	}

	if !jersey.TotalBalance.Equal(decimal.RequireFromString("52.25")) {
		t.Errorf("Jersey total: want 52.25, got %s", jersey.TotalBalance)
	}
	if !poplin.TotalBalance.Equal(decimal.RequireFromString("420.5")) {
		t.Errorf("Poplin total: want 420.5, got %s", poplin.TotalBalance)
	}
	if !report.TotalBalance.Equal(decimal.RequireFromString("472.75")) {
		t.Errorf("report total: want 472.75, got %s", report.TotalBalance)
	}
	if !report.TotalsByUnit[core.UnitKG].Equal(decimal.RequireFromString("52.25")) {
		t.Errorf("KG total: want 52.25, got %s", report.TotalsByUnit[core.UnitKG])
	}
	if !report.TotalsByUnit[core.UnitMeter].Equal(decimal.RequireFromString("420.5")) {
		t.Errorf("METER total: want 420.5, got %s", report.TotalsByUnit[core.UnitMeter])
	}

	names := []string{poplin.Colours[0].ColourName, poplin.Colours[1].ColourName, poplin.Colours[2].ColourName}
	if names[0] != "Black" || names[1] != "Sand" || names[2] != "White" {
		t.Errorf("colours not sorted by name: %v", names)
	}
}

func TestComputeStockHealth_TotalsIndependentOfOrder(t *testing.T) {
	base, err := core.ComputeStockHealth(stockFixture(), core.ColourOrderName)
	if err != nil {
		t.Fatalf("ComputeStockHealth failed: %v", err)
	}

	reversed := stockFixture()
	for i, j := 0, len(reversed)-1; i < j; i, j = i+1, j-1 {
		reversed[i], reversed[j] = reversed[j], reversed[i]
	}

	for _, order := range []core.ColourOrder{core.ColourOrderName, core.ColourOrderCode, core.ColourOrderBalance} {
		report, err := core.ComputeStockHealth(reversed, order)
		if err != nil {
			t.Fatalf("ComputeStockHealth(%s) failed: %v", order, err)
		}
		if !report.TotalBalance.Equal(base.TotalBalance) {
			t.Errorf("order %s: total %s differs from %s", order, report.TotalBalance, base.TotalBalance)
		}
		for _, row := range report.Rows {
			sum := decimal.Zero
			for _, c := range row.Colours {
				sum = sum.Add(c.Balance)
			}
			if !sum.Equal(row.TotalBalance) {
				t.Errorf("order %s, fabric %s: colour sum %s != total %s", order, row.FabricID, sum, row.TotalBalance)
			}
		}
	}

	byBalance, _ := core.ComputeStockHealth(reversed, core.ColourOrderBalance)
	if top := byBalance.Rows[1].Colours[0]; top.ColourName != "Black" {
		t.Errorf("balance order: want Black first, got %s", top.ColourName)
	}
}

func TestComputeStockHealth_InvalidRecords(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(b *core.FabricColourBalance)
	}{
		{"missing balance", func(b *core.FabricColourBalance) { b.Balance = decimal.NullDecimal{} }},
		{"negative balance", func(b *core.FabricColourBalance) { b.Balance = decimal.NewNullDecimal(decimal.NewFromInt(-1)) }},
		{"missing fabric id", func(b *core.FabricColourBalance) { b.FabricID = "" }},
		{"missing colour id", func(b *core.FabricColourBalance) { b.FabricColourID = "" }},
		{"mixed units", func(b *core.FabricColourBalance) { b.Unit = core.UnitKG }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			balances := stockFixture()
			tt.mutate(&balances[2]) // FC4, second Poplin colour
			report, err := core.ComputeStockHealth(balances, core.ColourOrderName)
			if !errors.Is(err, core.ErrInvalidBalanceRecord) {
				t.Fatalf("expected ErrInvalidBalanceRecord, got %v", err)
			}
			if report != nil {
				t.Errorf("expected no partial report, got %+v", report)
			}
		})
	}
}

func TestComputeStockHealth_Empty(t *testing.T) {
	report, err := core.ComputeStockHealth(nil, core.ColourOrderName)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Rows) != 0 || !report.TotalBalance.IsZero() {
		t.Errorf("expected empty report, got %+v", report)
	}
}

func TestParseColourOrder(t *testing.T) {
	if o, err := core.ParseColourOrder(""); err != nil || o != core.ColourOrderName {
		t.Errorf("empty: want name, got %q (%v)", o, err)
	}
	if o, err := core.ParseColourOrder("balance"); err != nil || o != core.ColourOrderBalance {
		t.Errorf("balance: got %q (%v)", o, err)
	}
	if _, err := core.ParseColourOrder("random"); err == nil {
		t.Error("expected error for unknown order")
	}
}
