package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ConsumptionWindowDays is the trailing period used for average daily consumption.
// The divisor stays fixed even when a colour has less history than the window.
const ConsumptionWindowDays = 30

// ParseQuantity parses a textual transaction amount.
// Blank, non-numeric and negative values fail with ErrInvalidQuantity.
func ParseQuantity(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: blank amount", ErrInvalidQuantity)
	}
	q, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", ErrInvalidQuantity, s)
	}
	if q.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s is negative", ErrInvalidQuantity, q)
	}
	return q, nil
}

// WindowBounds returns the (from, to] range of the consumption window ending at asOf.
func WindowBounds(asOf time.Time) (time.Time, time.Time) {
	return asOf.AddDate(0, 0, -ConsumptionWindowDays), asOf
}

// AggregateConsumption sums the outward transactions of fabricColourID that fall
// in the trailing window ending at asOf and derives the average daily consumption.
// Transactions of other colours are ignored. A negative quantity on any of the
// colour's transactions, inside the window or not, fails with ErrInvalidQuantity.
func AggregateConsumption(fabricColourID string, txns []OutwardTransaction, asOf time.Time) (ConsumptionWindow, error) {
	from, to := WindowBounds(asOf)
	w := ConsumptionWindow{
		FabricColourID:   fabricColourID,
		From:             from,
		To:               to,
		WindowDays:       ConsumptionWindowDays,
		TotalConsumed:    decimal.Zero,
		AvgDailyConsumed: decimal.Zero,
	}

	for _, t := range txns {
		if t.FabricColourID != fabricColourID {
			continue
		}
		if t.Quantity.IsNegative() {
			return ConsumptionWindow{}, fmt.Errorf("%w: fabric colour %s has outward quantity %s at %s",
				ErrInvalidQuantity, fabricColourID, t.Quantity, t.At.Format(time.RFC3339))
		}
		if !t.At.After(from) || t.At.After(to) {
			continue
		}
		w.TotalConsumed = w.TotalConsumed.Add(t.Quantity)
	}

	w.AvgDailyConsumed = w.TotalConsumed.Div(decimal.NewFromInt(ConsumptionWindowDays))
	return w, nil
}

// AggregateConsumptionWindows builds one window per requested colour from a mixed
// transaction list. Colours without transactions get a zero window.
func AggregateConsumptionWindows(fabricColourIDs []string, txns []OutwardTransaction, asOf time.Time) (map[string]ConsumptionWindow, error) {
	byColour := make(map[string][]OutwardTransaction, len(fabricColourIDs))
	for _, t := range txns {
		byColour[t.FabricColourID] = append(byColour[t.FabricColourID], t)
	}

	windows := make(map[string]ConsumptionWindow, len(fabricColourIDs))
	for _, id := range fabricColourIDs {
		w, err := AggregateConsumption(id, byColour[id], asOf)
		if err != nil {
			return nil, err
		}
		windows[id] = w
	}
	return windows, nil
}
