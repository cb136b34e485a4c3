package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Unit is the unit of measure a fabric is stocked in.
type Unit string

const (
	UnitMeter Unit = "METER"
	UnitKG    Unit = "KG"
)

// ReorderStatus is the urgency tier of a reorder assessment.
type ReorderStatus string

const (
	StatusOrderNow  ReorderStatus = "ORDER NOW"
	StatusOrderSoon ReorderStatus = "ORDER SOON"
	StatusOK        ReorderStatus = "OK"
)

// rank orders statuses from most to least urgent.
func (s ReorderStatus) rank() int {
	switch s {
	case StatusOrderNow:
		return 0
	case StatusOrderSoon:
		return 1
	default:
		return 2
	}
}

// FabricColourBalance is the current stock of one (fabric, colour) pair.
// Balance is nullable so that a missing balance can be detected rather than read as zero.
type FabricColourBalance struct {
	FabricID       string              `json:"fabric_id"`
	FabricName     string              `json:"fabric_name"`
	MaterialName   string              `json:"material_name"`
	FabricColourID string              `json:"fabric_colour_id"`
	ColourName     string              `json:"colour_name"`
	ColourCode     string              `json:"colour_code"`
	Unit           Unit                `json:"unit"`
	Balance        decimal.NullDecimal `json:"balance"`
	CostPerUnit    decimal.Decimal     `json:"cost_per_unit"`
}

// OutwardTransaction is a single issue of fabric out of stock (cutting, sampling, wastage).
type OutwardTransaction struct {
	FabricColourID string          `json:"fabric_colour_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	At             time.Time       `json:"at"`
}

// ConsumptionWindow is the trailing consumption of one fabric colour.
type ConsumptionWindow struct {
	FabricColourID   string          `json:"fabric_colour_id"`
	From             time.Time       `json:"from"`
	To               time.Time       `json:"to"`
	WindowDays       int             `json:"window_days"`
	TotalConsumed    decimal.Decimal `json:"total_consumed"`
	AvgDailyConsumed decimal.Decimal `json:"avg_daily_consumed"`
}

// FabricCatalogMeta is the purchasing metadata of a fabric, shared by all its colours.
type FabricCatalogMeta struct {
	FabricID         string           `json:"fabric_id"`
	Unit             Unit             `json:"unit"`
	LeadTimeDays     *int             `json:"lead_time_days,omitempty"`
	MinOrderQuantity *decimal.Decimal `json:"min_order_quantity,omitempty"`
	PartyName        *string          `json:"party_name,omitempty"`
}

// ReorderAssessment is the reorder verdict for one fabric colour.
// DaysOfStock is nil when consumption is zero and depletion cannot be estimated.
type ReorderAssessment struct {
	FabricColourID        string           `json:"fabric_colour_id"`
	FabricID              string           `json:"fabric_id"`
	FabricName            string           `json:"fabric_name"`
	ColourName            string           `json:"colour_name"`
	ColourCode            string           `json:"colour_code"`
	Unit                  Unit             `json:"unit"`
	CurrentBalance        decimal.Decimal  `json:"current_balance"`
	AvgDailyConsumption   decimal.Decimal  `json:"avg_daily_consumption"`
	DaysOfStock           *decimal.Decimal `json:"days_of_stock"`
	LeadTimeDays          *int             `json:"lead_time_days"`
	EffectiveLeadTimeDays int              `json:"effective_lead_time_days"`
	SuggestedOrderQty     int64            `json:"suggested_order_qty"`
	Status                ReorderStatus    `json:"status"`
	PartyName             *string          `json:"party_name"`
}

// ColourBalance is one colour line inside a StockHealthRow.
type ColourBalance struct {
	FabricColourID string          `json:"fabric_colour_id"`
	ColourName     string          `json:"colour_name"`
	ColourCode     string          `json:"colour_code"`
	Balance        decimal.Decimal `json:"balance"`
}

// StockHealthRow summarises all colours of one fabric.
// TotalBalance always equals the sum of Colours[i].Balance.
type StockHealthRow struct {
	FabricID     string          `json:"fabric_id"`
	FabricName   string          `json:"fabric_name"`
	MaterialName string          `json:"material_name"`
	Unit         Unit            `json:"unit"`
	Colours      []ColourBalance `json:"colours"`
	TotalBalance decimal.Decimal `json:"total_balance"`
}

// StockHealthReport is the full inventory rollup.
// TotalBalance adds metres and kilograms together; TotalsByUnit keeps them apart.
type StockHealthReport struct {
	Rows         []StockHealthRow         `json:"rows"`
	TotalBalance decimal.Decimal          `json:"total_balance"`
	TotalsByUnit map[Unit]decimal.Decimal `json:"totals_by_unit"`
}
