package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// FabricRepository is the read-only persistence port of the stock computations.
// All methods return rows in a stable order.
type FabricRepository interface {
	// ListColourBalances returns the current balance of every fabric colour,
	// grouped by fabric (ordered by fabric then colour).
	ListColourBalances(ctx context.Context) ([]FabricColourBalance, error)
	// ListCatalogMeta returns lead time, MOQ and supplier for every fabric.
	ListCatalogMeta(ctx context.Context) ([]FabricCatalogMeta, error)
	// ListOutwardTransactions returns outward movements with from < at <= to.
	ListOutwardTransactions(ctx context.Context, from, to time.Time) ([]OutwardTransaction, error)
	// ListOutwardTransactionsForColour is ListOutwardTransactions for a single fabric colour.
	ListOutwardTransactionsForColour(ctx context.Context, fabricColourID string, from, to time.Time) ([]OutwardTransaction, error)

	// ListWeeklyProductSales returns units sold per product per week for orders on or after since.
	ListWeeklyProductSales(ctx context.Context, since time.Time) ([]WeeklyProductSales, error)
	// ListSizeMix returns units sold per product and size for orders on or after since.
	ListSizeMix(ctx context.Context, since time.Time) ([]SizeMix, error)
	// ListVariationMix returns units sold per product colour variation for orders on or after since.
	ListVariationMix(ctx context.Context, since time.Time) ([]VariationMix, error)
	// ListBOMLines returns the fabric bill of materials of every SKU with a positive quantity.
	ListBOMLines(ctx context.Context) ([]BOMLine, error)
}

type pgFabricRepository struct {
	pool *pgxpool.Pool
}

// NewFabricRepository constructs a FabricRepository backed by PostgreSQL.
func NewFabricRepository(pool *pgxpool.Pool) FabricRepository {
	return &pgFabricRepository{pool: pool}
}

func (r *pgFabricRepository) ListColourBalances(ctx context.Context) ([]FabricColourBalance, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT f.id, f.name, COALESCE(m.name, ''), f.unit,
		       fc.id, fc.colour_name, fc.code,
		       fc.current_balance, fc.cost_per_unit
		FROM fabric_colours fc
		JOIN fabrics f               ON f.id = fc.fabric_id
		LEFT JOIN fabric_materials m ON m.id = f.material_id
		WHERE fc.is_active = true
		ORDER BY f.name, f.id, fc.colour_name, fc.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query fabric colour balances: %w", err)
	}
	defer rows.Close()

	var balances []FabricColourBalance
	for rows.Next() {
		var b FabricColourBalance
		var unit string
		if err := rows.Scan(
			&b.FabricID, &b.FabricName, &b.MaterialName, &unit,
			&b.FabricColourID, &b.ColourName, &b.ColourCode,
			&b.Balance, &b.CostPerUnit,
		); err != nil {
			return nil, fmt.Errorf("failed to scan fabric colour balance: %w", err)
		}
		b.Unit = Unit(unit)
		balances = append(balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fabric colour balance iteration error: %w", err)
	}
	return balances, nil
}

func (r *pgFabricRepository) ListCatalogMeta(ctx context.Context) ([]FabricCatalogMeta, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT f.id, f.unit, f.lead_time_days, f.min_order_qty, p.name
		FROM fabrics f
		LEFT JOIN parties p ON p.id = f.party_id
		ORDER BY f.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query fabric catalog: %w", err)
	}
	defer rows.Close()

	var meta []FabricCatalogMeta
	for rows.Next() {
		var m FabricCatalogMeta
		var unit string
		var moq decimal.NullDecimal
		if err := rows.Scan(&m.FabricID, &unit, &m.LeadTimeDays, &moq, &m.PartyName); err != nil {
			return nil, fmt.Errorf("failed to scan fabric catalog row: %w", err)
		}
		m.Unit = Unit(unit)
		if moq.Valid {
			m.MinOrderQuantity = &moq.Decimal
		}
		meta = append(meta, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fabric catalog iteration error: %w", err)
	}
	return meta, nil
}

const outwardTxnQuery = `
		SELECT fabric_colour_id, qty, created_at
		FROM fabric_transactions
		WHERE txn_type = 'outward'
		  AND created_at >  $1
		  AND created_at <= $2`

func (r *pgFabricRepository) ListOutwardTransactions(ctx context.Context, from, to time.Time) ([]OutwardTransaction, error) {
	rows, err := r.pool.Query(ctx, outwardTxnQuery+" ORDER BY created_at, id", from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query outward transactions: %w", err)
	}
	return collectOutward(rows)
}

func (r *pgFabricRepository) ListOutwardTransactionsForColour(ctx context.Context, fabricColourID string, from, to time.Time) ([]OutwardTransaction, error) {
	rows, err := r.pool.Query(ctx, outwardTxnQuery+" AND fabric_colour_id = $3 ORDER BY created_at, id", from, to, fabricColourID)
	if err != nil {
		return nil, fmt.Errorf("failed to query outward transactions for %s: %w", fabricColourID, err)
	}
	return collectOutward(rows)
}

func collectOutward(rows pgx.Rows) ([]OutwardTransaction, error) {
	defer rows.Close()
	var txns []OutwardTransaction
	for rows.Next() {
		var t OutwardTransaction
		if err := rows.Scan(&t.FabricColourID, &t.Quantity, &t.At); err != nil {
			return nil, fmt.Errorf("failed to scan outward transaction: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("outward transaction iteration error: %w", err)
	}
	return txns, nil
}

func (r *pgFabricRepository) ListWeeklyProductSales(ctx context.Context, since time.Time) ([]WeeklyProductSales, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT date_trunc('week', o.order_date)::date AS week, p.name, SUM(ol.qty)
		FROM sales_order_lines ol
		JOIN sales_orders o ON o.id = ol.order_id
		JOIN skus s         ON s.id = ol.sku_id
		JOIN variations v   ON v.id = s.variation_id
		JOIN products p     ON p.id = v.product_id
		WHERE o.order_date >= $1
		GROUP BY 1, 2
		ORDER BY 2, 1
	`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query weekly product sales: %w", err)
	}
	defer rows.Close()

	var out []WeeklyProductSales
	for rows.Next() {
		var s WeeklyProductSales
		if err := rows.Scan(&s.WeekStart, &s.ProductName, &s.Units); err != nil {
			return nil, fmt.Errorf("failed to scan weekly product sales: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("weekly product sales iteration error: %w", err)
	}
	return out, nil
}

func (r *pgFabricRepository) ListSizeMix(ctx context.Context, since time.Time) ([]SizeMix, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.name, s.size, SUM(ol.qty)
		FROM sales_order_lines ol
		JOIN sales_orders o ON o.id = ol.order_id
		JOIN skus s         ON s.id = ol.sku_id
		JOIN variations v   ON v.id = s.variation_id
		JOIN products p     ON p.id = v.product_id
		WHERE o.order_date >= $1
		GROUP BY 1, 2
		ORDER BY 1, 2
	`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query size mix: %w", err)
	}
	defer rows.Close()

	var out []SizeMix
	for rows.Next() {
		var m SizeMix
		if err := rows.Scan(&m.ProductName, &m.Size, &m.Units); err != nil {
			return nil, fmt.Errorf("failed to scan size mix: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("size mix iteration error: %w", err)
	}
	return out, nil
}

func (r *pgFabricRepository) ListVariationMix(ctx context.Context, since time.Time) ([]VariationMix, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.name, v.id, v.colour_name, SUM(ol.qty)
		FROM sales_order_lines ol
		JOIN sales_orders o ON o.id = ol.order_id
		JOIN skus s         ON s.id = ol.sku_id
		JOIN variations v   ON v.id = s.variation_id
		JOIN products p     ON p.id = v.product_id
		WHERE o.order_date >= $1
		GROUP BY 1, 2, 3
		ORDER BY 1, 2
	`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query variation mix: %w", err)
	}
	defer rows.Close()

	var out []VariationMix
	for rows.Next() {
		var m VariationMix
		if err := rows.Scan(&m.ProductName, &m.VariationID, &m.ColourName, &m.Units); err != nil {
			return nil, fmt.Errorf("failed to scan variation mix: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("variation mix iteration error: %w", err)
	}
	return out, nil
}

// ListBOMLines joins each SKU's fabric role to the fabric colour its variation
// assigns to that role.
func (r *pgFabricRepository) ListBOMLines(ctx context.Context) ([]BOMLine, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.name, v.id, s.size,
		       fc.id, f.name, fc.colour_name, fc.code, f.unit,
		       sbl.quantity, sbl.wastage_percent, fc.cost_per_unit
		FROM sku_bom_lines sbl
		JOIN skus s                 ON s.id = sbl.sku_id
		JOIN variations v           ON v.id = s.variation_id
		JOIN variation_bom_lines vbl ON vbl.variation_id = v.id AND vbl.role_id = sbl.role_id
		JOIN fabric_colours fc      ON fc.id = vbl.fabric_colour_id
		JOIN fabrics f              ON f.id = fc.fabric_id
		JOIN products p             ON p.id = v.product_id
		WHERE sbl.quantity IS NOT NULL AND sbl.quantity > 0
		ORDER BY p.name, v.id, s.size, fc.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query BOM lines: %w", err)
	}
	defer rows.Close()

	var out []BOMLine
	for rows.Next() {
		var l BOMLine
		var unit string
		if err := rows.Scan(
			&l.ProductName, &l.VariationID, &l.Size,
			&l.FabricColourID, &l.FabricName, &l.ColourName, &l.ColourCode, &unit,
			&l.QtyPerUnit, &l.WastagePercent, &l.CostPerUnit,
		); err != nil {
			return nil, fmt.Errorf("failed to scan BOM line: %w", err)
		}
		l.Unit = Unit(unit)
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("BOM line iteration error: %w", err)
	}
	return out, nil
}
