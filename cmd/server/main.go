package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	webAdapter "fabric-stock/internal/adapters/web"
	"fabric-stock/internal/ai"
	"fabric-stock/internal/app"
	"fabric-stock/internal/config"
	"fabric-stock/internal/core"
	"fabric-stock/internal/db"

	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}
	if cfg.JWTSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	analysis := core.NewStockAnalysisService(core.NewFabricRepository(pool), cfg.Policy)

	var advisor ai.PurchaseAdvisor
	if cfg.OpenAIAPIKey != "" {
		advisor = ai.NewAdvisor(cfg.OpenAIAPIKey)
	} else {
		logger.Warn("OPENAI_API_KEY is not set; purchase briefs are disabled")
	}

	svc := app.NewAppService(analysis, advisor, logger, cfg.ColourOrder)
	handler := webAdapter.NewHandler(svc, cfg.AllowedOrigins, cfg.JWTSecret, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("server starting",
		zap.String("port", cfg.ServerPort),
		zap.Int("default_lead_time_days", cfg.Policy.DefaultLeadTimeDays),
		zap.String("safety_factor", cfg.Policy.SafetyFactor.String()),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server", zap.Error(err))
	}
}
