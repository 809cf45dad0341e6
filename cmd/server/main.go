package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/mamoudk/plantops/internal/config"
	"github.com/mamoudk/plantops/internal/repository/mongodb"
	"github.com/mamoudk/plantops/internal/repository/sheets"
	"github.com/mamoudk/plantops/internal/scheduler"
	"github.com/mamoudk/plantops/internal/server/handlers"
	"github.com/mamoudk/plantops/internal/server/router"
	analyticssvc "github.com/mamoudk/plantops/internal/service/analytics"
	catalogsvc "github.com/mamoudk/plantops/internal/service/catalog"
	dashboardsvc "github.com/mamoudk/plantops/internal/service/dashboard"
	"github.com/mamoudk/plantops/internal/service/flow"
	inventorysvc "github.com/mamoudk/plantops/internal/service/inventory"
	orderssvc "github.com/mamoudk/plantops/internal/service/orders"
	reportingsvc "github.com/mamoudk/plantops/internal/service/reporting"
	"github.com/mamoudk/plantops/pkg/clients/anthropic"
	"github.com/mamoudk/plantops/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	store, err := mongodb.NewStore(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb store", zap.Error(err))
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	if err := store.EnsureIndexes(context.Background()); err != nil {
		baseLogger.Fatal("failed to ensure indexes", zap.Error(err))
	}

	catalogSvc := catalogsvc.NewService(
		store.Machines(),
		store.Products(),
		store.SemiFinished(),
		store.RawMaterials(),
		store.ManualJobs(),
		store.Productions(),
		store.ManualJobRuns(),
		store.FixedCosts(),
		store.VariableCosts(),
		baseLogger.Named("svc.catalog"))

	inventorySvc := inventorysvc.NewService(
		store,
		store.ProductProductions(),
		store.RawMaterials(),
		store.Products(),
		store.SemiFinished(),
		store.PurchaseLedgers(),
		baseLogger.Named("svc.inventory"))

	analyticsSvc := analyticssvc.NewService(
		store.Productions(),
		store.ProductProductions(),
		store.ManualJobRuns(),
		store.Machines(),
		store.Products(),
		store.ManualJobs(),
		store.Orders(),
		store.FixedCosts(),
		store.VariableCosts(),
		baseLogger.Named("svc.analytics"))

	ordersSvc := orderssvc.NewService(
		store.Orders(),
		store.Invoices(),
		store.SalesLedgers(),
		baseLogger.Named("svc.orders"))

	flowResolver := flow.NewResolver(catalogSvc, baseLogger.Named("svc.flow"))
	dashboardSvc := dashboardsvc.NewService(analyticsSvc, inventorySvc, baseLogger.Named("svc.dashboard"))

	var aiClient anthropic.Client
	if cfg.AI.AnthropicKey != "" {
		aiClient = anthropic.NewClient(cfg.AI.AnthropicKey)
		baseLogger.Info("anthropic ai client enabled")
	} else {
		baseLogger.Warn("anthropic api key missing, report narration uses the plain-text fallback")
	}

	var exporter reportingsvc.RowExporter
	if cfg.Sheets.CredentialsPath != "" {
		sheetExporter, err := sheets.NewGoogleSheetExporter(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets exporter", zap.Error(err))
		}
		exporter = sheetExporter
	} else {
		baseLogger.Info("sheets export disabled")
	}

	reportingSvc := reportingsvc.NewService(
		dashboardSvc,
		aiClient,
		store.KPISnapshots(),
		exporter,
		"",
		baseLogger.Named("svc.reporting"))

	engine := router.New(router.Handlers{
		Catalog:    handlers.NewCatalogHandler(catalogSvc, baseLogger.Named("handlers.catalog")),
		Production: handlers.NewProductionHandler(catalogSvc, inventorySvc, baseLogger.Named("handlers.production")),
		Analytics:  handlers.NewAnalyticsHandler(analyticsSvc, baseLogger.Named("handlers.analytics")),
		Orders:     handlers.NewOrdersHandler(ordersSvc, baseLogger.Named("handlers.orders")),
		Flow:       handlers.NewFlowHandler(flowResolver, baseLogger.Named("handlers.flow")),
		Dashboard:  handlers.NewDashboardHandler(dashboardSvc, reportingSvc, baseLogger.Named("handlers.dashboard")),
	}, cfg.Auth.JWTSecret, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(cfg.Reporting, reportingSvc, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
