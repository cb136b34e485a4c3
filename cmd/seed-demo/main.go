// seed-demo loads a small fabric catalog with recent outward movements and
// sales so the reorder and requirements screens have something to show.
// Existing demo rows are replaced; other data is left alone.
//
// Usage: go run ./cmd/seed-demo
package main

import (
	"context"
	"log"

	"fabric-stock/internal/config"
	"fabric-stock/internal/db"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	log.Println("Clearing previous demo rows...")
	_, err = tx.Exec(ctx, `
		DELETE FROM sales_order_lines WHERE order_id LIKE 'DEMO-%';
		DELETE FROM sales_orders WHERE id LIKE 'DEMO-%';
		DELETE FROM sku_bom_lines WHERE sku_id LIKE 'DEMO-%';
		DELETE FROM variation_bom_lines WHERE variation_id LIKE 'DEMO-%';
		DELETE FROM skus WHERE id LIKE 'DEMO-%';
		DELETE FROM variations WHERE id LIKE 'DEMO-%';
		DELETE FROM products WHERE id LIKE 'DEMO-%';
		DELETE FROM fabric_transactions WHERE fabric_colour_id LIKE 'DEMO-%';
		DELETE FROM fabric_colours WHERE id LIKE 'DEMO-%';
		DELETE FROM fabrics WHERE id LIKE 'DEMO-%';
	`)
	if err != nil {
		log.Fatalf("Failed to clear demo data: %v", err)
	}

	log.Println("Loading fabric catalog...")
	_, err = tx.Exec(ctx, `
		INSERT INTO fabric_materials (id, name) VALUES
		    ('cotton', 'Cotton'), ('viscose', 'Viscose')
		ON CONFLICT (id) DO NOTHING;

		INSERT INTO parties (id, name) VALUES
		    ('arvind', 'Arvind Mills'), ('vardhman', 'Vardhman Textiles')
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name;

		INSERT INTO fabrics (id, name, material_id, unit, lead_time_days, min_order_qty, party_id) VALUES
		    ('DEMO-POPLIN', 'Cotton Poplin',  'cotton',  'METER', 10,   100, 'arvind'),
		    ('DEMO-RAYON',  'Rayon Slub',     'viscose', 'METER', NULL, NULL, 'vardhman'),
		    ('DEMO-JERSEY', 'Single Jersey',  'cotton',  'KG',    21,   25,   NULL);

		INSERT INTO fabric_colours (id, fabric_id, colour_name, code, current_balance, cost_per_unit) VALUES
		    ('DEMO-POP-NAVY',  'DEMO-POPLIN', 'Navy',  'POP-NAVY',  50,    110),
		    ('DEMO-POP-WHITE', 'DEMO-POPLIN', 'White', 'POP-WHITE', 420,   105),
		    ('DEMO-RAY-RUST',  'DEMO-RAYON',  'Rust',  'RAY-RUST',  160,   140),
		    ('DEMO-RAY-SAGE',  'DEMO-RAYON',  'Sage',  'RAY-SAGE',  900,   140),
		    ('DEMO-JER-GREY',  'DEMO-JERSEY', 'Grey',  'JER-GREY',  12.5,  380),
		    ('DEMO-JER-BLACK', 'DEMO-JERSEY', 'Black', 'JER-BLACK', 64.25, 380);
	`)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}

	log.Println("Loading outward movements...")
	_, err = tx.Exec(ctx, `
		INSERT INTO fabric_transactions (fabric_colour_id, txn_type, qty, reason, created_at)
		SELECT c.id, 'outward', c.daily * (1 + (g % 3)) / 2.0, 'cutting', now() - make_interval(days => g)
		FROM (VALUES
		    ('DEMO-POP-NAVY',  5.0),
		    ('DEMO-POP-WHITE', 6.0),
		    ('DEMO-RAY-RUST',  8.0),
		    ('DEMO-JER-GREY',  0.5),
		    ('DEMO-JER-BLACK', 2.0)
		) AS c(id, daily)
		CROSS JOIN generate_series(1, 45) AS g;
	`)
	if err != nil {
		log.Fatalf("Failed to load movements: %v", err)
	}

	log.Println("Loading products, BOM and sales...")
	_, err = tx.Exec(ctx, `
		INSERT INTO bom_roles (id, name) VALUES ('body', 'Body'), ('trim', 'Trim')
		ON CONFLICT (id) DO NOTHING;

		INSERT INTO products (id, name) VALUES ('DEMO-SHIRT', 'Oxford Shirt'), ('DEMO-TEE', 'Crew Tee');

		INSERT INTO variations (id, product_id, colour_name) VALUES
		    ('DEMO-SHIRT-NAVY',  'DEMO-SHIRT', 'Navy'),
		    ('DEMO-SHIRT-WHITE', 'DEMO-SHIRT', 'White'),
		    ('DEMO-TEE-GREY',    'DEMO-TEE',   'Grey');

		INSERT INTO skus (id, variation_id, size)
		SELECT v.id || '-' || s.size, v.id, s.size
		FROM variations v
		CROSS JOIN (VALUES ('S'), ('M'), ('L')) AS s(size)
		WHERE v.id LIKE 'DEMO-%';

		INSERT INTO variation_bom_lines (variation_id, role_id, fabric_colour_id) VALUES
		    ('DEMO-SHIRT-NAVY',  'body', 'DEMO-POP-NAVY'),
		    ('DEMO-SHIRT-WHITE', 'body', 'DEMO-POP-WHITE'),
		    ('DEMO-SHIRT-NAVY',  'trim', 'DEMO-POP-WHITE'),
		    ('DEMO-TEE-GREY',    'body', 'DEMO-JER-GREY');

		INSERT INTO sku_bom_lines (sku_id, role_id, quantity, wastage_percent)
		SELECT s.id, vbl.role_id,
		       CASE WHEN vbl.role_id = 'trim' THEN 0.1
		            WHEN s.variation_id LIKE 'DEMO-TEE-%' THEN 0.22
		            ELSE 1.6 + 0.1 * (CASE s.size WHEN 'S' THEN 0 WHEN 'M' THEN 1 ELSE 2 END) END,
		       CASE WHEN vbl.role_id = 'trim' THEN NULL ELSE 8 END
		FROM skus s
		JOIN variation_bom_lines vbl ON vbl.variation_id = s.variation_id
		WHERE s.id LIKE 'DEMO-%';

		INSERT INTO sales_orders (id, order_date)
		SELECT 'DEMO-SO-' || g, (now() - make_interval(days => g * 3))::date
		FROM generate_series(1, 40) AS g;

		INSERT INTO sales_order_lines (order_id, sku_id, qty)
		SELECT o.id, s.id, 1 + (length(o.id) + length(s.id)) % 4
		FROM sales_orders o
		CROSS JOIN skus s
		WHERE o.id LIKE 'DEMO-SO-%' AND s.id LIKE 'DEMO-%';
	`)
	if err != nil {
		log.Fatalf("Failed to load products and sales: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit: %v", err)
	}
	log.Println("Demo fabric data loaded.")
}
