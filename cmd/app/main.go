package main

import (
	"context"
	"log"
	"os"

	"fabric-stock/internal/adapters/cli"
	"fabric-stock/internal/ai"
	"fabric-stock/internal/app"
	"fabric-stock/internal/config"
	"fabric-stock/internal/core"
	"fabric-stock/internal/db"

	"go.uber.org/zap"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: app <health|reorder|requirements|brief|evaluate> [args]")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	var advisor ai.PurchaseAdvisor
	if cfg.OpenAIAPIKey != "" {
		advisor = ai.NewAdvisor(cfg.OpenAIAPIKey)
	}

	// Tables go to stdout; the service's own logging stays quiet.
	analysis := core.NewStockAnalysisService(core.NewFabricRepository(pool), cfg.Policy)
	svc := app.NewAppService(analysis, advisor, zap.NewNop(), cfg.ColourOrder)

	if err := cli.Run(ctx, svc, os.Args[1:], os.Stdout); err != nil {
		pool.Close()
		log.Fatal(err)
	}
}
