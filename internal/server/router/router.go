// Package router wires the Gin engine with routes and middlewares.
package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamoudk/plantops/internal/server/handlers"
	"github.com/mamoudk/plantops/internal/server/middleware"
)

// Handlers bundles the HTTP adapters the router mounts.
type Handlers struct {
	Catalog    *handlers.CatalogHandler
	Production *handlers.ProductionHandler
	Analytics  *handlers.AnalyticsHandler
	Orders     *handlers.OrdersHandler
	Flow       *handlers.FlowHandler
	Dashboard  *handlers.DashboardHandler
}

// New wires the Gin engine with required routes and middlewares. Everything
// under /api/v1 sits behind bearer-token auth.
func New(h Handlers, jwtSecret string, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	api.Use(middleware.Auth(jwtSecret, logger))

	api.POST("/machines", h.Catalog.CreateMachine)
	api.GET("/machines", h.Catalog.ListMachines)
	api.GET("/machines/:id", h.Catalog.GetMachine)
	api.POST("/machines/:id/maintenance", h.Catalog.RecordMaintenance)

	api.POST("/products", h.Catalog.CreateProduct)
	api.GET("/products", h.Catalog.ListProducts)
	api.GET("/products/:id", h.Catalog.GetProduct)
	api.GET("/products/:id/flow", h.Flow.Resolve)

	api.POST("/semi-finished", h.Catalog.CreateSemiFinished)
	api.GET("/semi-finished", h.Catalog.ListSemiFinished)

	api.POST("/raw-materials", h.Catalog.CreateRawMaterial)
	api.GET("/raw-materials", h.Catalog.ListRawMaterials)
	api.GET("/raw-materials/low-stock", h.Production.LowStock)
	api.POST("/raw-materials/intake", h.Production.RecordIntake)

	api.POST("/manual-jobs", h.Catalog.CreateManualJob)
	api.GET("/manual-jobs", h.Catalog.ListManualJobs)

	api.POST("/productions/machine-runs", h.Production.RecordMachineRun)
	api.POST("/productions/product-runs", h.Production.RecordProductRun)
	api.POST("/productions/manual-job-runs", h.Production.RecordManualJobRun)

	api.POST("/costs/fixed", h.Catalog.UpsertFixedCost)
	api.GET("/costs/fixed", h.Catalog.ListFixedCosts)
	api.POST("/costs/variable", h.Catalog.UpsertVariableCost)
	api.GET("/costs/variable", h.Catalog.ListVariableCosts)

	api.POST("/orders", h.Orders.Create)
	api.GET("/orders", h.Orders.List)
	api.GET("/orders/:id", h.Orders.Get)
	api.POST("/orders/:id/deliveries", h.Orders.Deliver)
	api.POST("/orders/:id/payments", h.Orders.RecordPayment)
	api.POST("/orders/:id/cancel", h.Orders.Cancel)
	api.GET("/orders/:id/invoices", h.Orders.Invoices)
	api.GET("/orders/:id/ledger", h.Orders.Ledger)

	api.GET("/analytics/rollups/daily", h.Analytics.DailyRollup)
	api.GET("/analytics/rollups/weekly", h.Analytics.WeeklyRollup)
	api.GET("/analytics/rollups/hourly", h.Analytics.HourlyRollup)
	api.GET("/analytics/machines", h.Analytics.MachineKPIs)
	api.GET("/analytics/machines/reliability", h.Analytics.Reliability)
	api.GET("/analytics/products", h.Analytics.ProductKPIs)
	api.GET("/analytics/manual-jobs", h.Analytics.ManualJobKPIs)
	api.GET("/analytics/financials", h.Analytics.FinancialSummary)
	api.GET("/analytics/break-even", h.Analytics.BreakEven)
	api.GET("/analytics/insights", h.Analytics.Insights)

	api.GET("/dashboard", h.Dashboard.Get)
	api.GET("/reports/daily", h.Dashboard.DailyReport)
	api.GET("/reports/snapshots", h.Dashboard.Snapshots)

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
