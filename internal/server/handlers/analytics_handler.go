package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamoudk/plantops/internal/repository/mongodb"
	"github.com/mamoudk/plantops/internal/server/middleware"
	"github.com/mamoudk/plantops/internal/service/analytics"
)

// AnalyticsHandler exposes the aggregation endpoints.
type AnalyticsHandler struct {
	svc    *analytics.Service
	logger *zap.Logger
}

// NewAnalyticsHandler constructs the analytics HTTP adapter.
func NewAnalyticsHandler(svc *analytics.Service, logger *zap.Logger) *AnalyticsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsHandler{svc: svc, logger: logger}
}

// DailyRollup returns the last 7 days of production bucketed per day.
func (h *AnalyticsHandler) DailyRollup(c *gin.Context) {
	h.rollup(c, h.svc.DailyRollup)
}

// WeeklyRollup returns the last 4 ISO weeks of production bucketed per week.
func (h *AnalyticsHandler) WeeklyRollup(c *gin.Context) {
	h.rollup(c, h.svc.WeeklyRollup)
}

// HourlyRollup returns the last 24 hours of production bucketed per hour.
func (h *AnalyticsHandler) HourlyRollup(c *gin.Context) {
	h.rollup(c, h.svc.HourlyRollup)
}

func (h *AnalyticsHandler) rollup(c *gin.Context, fn func(ctx context.Context, tenantID, machineID string, now time.Time) (analytics.RollupResult, error)) {
	result, err := fn(c.Request.Context(), middleware.TenantID(c), c.Query("machineId"), time.Now())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// MachineKPIs returns grouped machine KPIs for a date window.
func (h *AnalyticsHandler) MachineKPIs(c *gin.Context) {
	filter, err := h.productionFilter(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	result, err := h.svc.MachineKPIs(c.Request.Context(), middleware.TenantID(c), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Reliability returns MTTR/MTBF per machine.
func (h *AnalyticsHandler) Reliability(c *gin.Context) {
	result, err := h.svc.Reliability(c.Request.Context(), middleware.TenantID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondList(c, result)
}

// ProductKPIs returns grouped product KPIs for a date window.
func (h *AnalyticsHandler) ProductKPIs(c *gin.Context) {
	from, err := queryDate(c, "startDate")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	to, err := queryDate(c, "endDate")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	filter := mongodb.ProductProductionFilter{
		ProductID:        c.Query("productId"),
		From:             from,
		To:               to,
		HasMaterialUsage: c.Query("hasMaterialUsage") == "true",
		HasScrap:         c.Query("hasScrap") == "true",
	}
	if raw := c.Query("minScrapUnits"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			filter.MinScrapUnits = v
		}
	}
	if raw := c.Query("minUnitsProduced"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			filter.MinUnitsProduced = v
		}
	}

	result, err := h.svc.ProductKPIs(c.Request.Context(), middleware.TenantID(c), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ManualJobKPIs returns grouped manual-job KPIs for a date window.
func (h *AnalyticsHandler) ManualJobKPIs(c *gin.Context) {
	from, err := queryDate(c, "startDate")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	to, err := queryDate(c, "endDate")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	filter := mongodb.ManualJobRunFilter{
		ManualJobID: c.Query("manualJobId"),
		From:        from,
		To:          to,
	}

	result, err := h.svc.ManualJobKPIs(c.Request.Context(), middleware.TenantID(c), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondList(c, result)
}

// FinancialSummary returns the month's financial aggregate.
func (h *AnalyticsHandler) FinancialSummary(c *gin.Context) {
	summary, err := h.svc.FinancialSummary(c.Request.Context(), middleware.TenantID(c), time.Now())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// BreakEven returns the break-even point, or 422 when the contribution
// margin cannot cover variable costs.
func (h *AnalyticsHandler) BreakEven(c *gin.Context) {
	summary, err := h.svc.FinancialSummary(c.Request.Context(), middleware.TenantID(c), time.Now())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if summary.MarginWarning != "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": summary.MarginWarning})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"breakEvenUnits":      summary.BreakEvenUnits,
		"avgSellingPrice":     summary.AvgSellingPrice,
		"variableCostPerUnit": summary.VariableCostPerUnit,
		"fixedCosts":          summary.FixedCosts,
	})
}

// Insights returns the tenant's actionable KPI alerts.
func (h *AnalyticsHandler) Insights(c *gin.Context) {
	insights, err := h.svc.Insights(c.Request.Context(), middleware.TenantID(c), time.Now())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondList(c, insights)
}

func (h *AnalyticsHandler) productionFilter(c *gin.Context) (mongodb.ProductionFilter, error) {
	from, err := queryDate(c, "startDate")
	if err != nil {
		return mongodb.ProductionFilter{}, err
	}
	to, err := queryDate(c, "endDate")
	if err != nil {
		return mongodb.ProductionFilter{}, err
	}
	return mongodb.ProductionFilter{
		MachineID: c.Query("machineId"),
		From:      from,
		To:        to,
	}, nil
}
