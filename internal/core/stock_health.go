package core

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// ColourOrder selects how colours are listed inside a StockHealthRow.
type ColourOrder string

const (
	ColourOrderName    ColourOrder = "name"
	ColourOrderCode    ColourOrder = "code"
	ColourOrderBalance ColourOrder = "balance" // largest first
)

// ParseColourOrder maps a query value to a ColourOrder. Empty means by name.
func ParseColourOrder(s string) (ColourOrder, error) {
	switch ColourOrder(s) {
	case "":
		return ColourOrderName, nil
	case ColourOrderName, ColourOrderCode, ColourOrderBalance:
		return ColourOrder(s), nil
	}
	return "", fmt.Errorf("unknown colour order %q", s)
}

func (o ColourOrder) less(a, b ColourBalance) bool {
	switch o {
	case ColourOrderCode:
		if a.ColourCode != b.ColourCode {
			return a.ColourCode < b.ColourCode
		}
	case ColourOrderBalance:
		if !a.Balance.Equal(b.Balance) {
			return a.Balance.GreaterThan(b.Balance)
		}
	}
	if a.ColourName != b.ColourName {
		return a.ColourName < b.ColourName
	}
	return a.FabricColourID < b.FabricColourID
}

func validateBalance(b FabricColourBalance) error {
	switch {
	case b.FabricID == "":
		return fmt.Errorf("%w: fabric colour %s has no fabric id", ErrInvalidBalanceRecord, b.FabricColourID)
	case b.FabricColourID == "":
		return fmt.Errorf("%w: fabric %s has a colour without id", ErrInvalidBalanceRecord, b.FabricID)
	case !b.Balance.Valid:
		return fmt.Errorf("%w: fabric colour %s has no balance", ErrInvalidBalanceRecord, b.FabricColourID)
	case b.Balance.Decimal.IsNegative():
		return fmt.Errorf("%w: fabric colour %s has negative balance %s", ErrInvalidBalanceRecord, b.FabricColourID, b.Balance.Decimal)
	}
	return nil
}

// ComputeStockHealth rolls colour balances up to one row per fabric plus an
// inventory-wide total. Any malformed balance fails the whole rollup, since
// dropping it would understate stock. Totals are summed before colours are
// sorted, so the colour order never changes them.
func ComputeStockHealth(balances []FabricColourBalance, order ColourOrder) (*StockHealthReport, error) {
	rows := make(map[string]*StockHealthRow)
	for _, b := range balances {
		if err := validateBalance(b); err != nil {
			return nil, err
		}

		row, ok := rows[b.FabricID]
		if !ok {
			row = &StockHealthRow{
				FabricID:     b.FabricID,
				FabricName:   b.FabricName,
				MaterialName: b.MaterialName,
				Unit:         b.Unit,
				TotalBalance: decimal.Zero,
			}
			rows[b.FabricID] = row
		}
		if row.Unit != b.Unit {
			return nil, fmt.Errorf("%w: fabric %s mixes units %s and %s", ErrInvalidBalanceRecord, b.FabricID, row.Unit, b.Unit)
		}

		row.Colours = append(row.Colours, ColourBalance{
			FabricColourID: b.FabricColourID,
			ColourName:     b.ColourName,
			ColourCode:     b.ColourCode,
			Balance:        b.Balance.Decimal,
		})
		row.TotalBalance = row.TotalBalance.Add(b.Balance.Decimal)
	}

	report := &StockHealthReport{
		Rows:         make([]StockHealthRow, 0, len(rows)),
		TotalBalance: decimal.Zero,
		TotalsByUnit: make(map[Unit]decimal.Decimal),
	}
	for _, row := range rows {
		sort.SliceStable(row.Colours, func(i, j int) bool {
			return order.less(row.Colours[i], row.Colours[j])
		})
		report.Rows = append(report.Rows, *row)
		report.TotalBalance = report.TotalBalance.Add(row.TotalBalance)
		report.TotalsByUnit[row.Unit] = report.TotalsByUnit[row.Unit].Add(row.TotalBalance)
	}
	sort.Slice(report.Rows, func(i, j int) bool {
		if report.Rows[i].FabricName != report.Rows[j].FabricName {
			return report.Rows[i].FabricName < report.Rows[j].FabricName
		}
		return report.Rows[i].FabricID < report.Rows[j].FabricID
	})
	return report, nil
}
