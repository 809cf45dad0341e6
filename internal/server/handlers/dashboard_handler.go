package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamoudk/plantops/internal/server/middleware"
	"github.com/mamoudk/plantops/internal/service/dashboard"
	"github.com/mamoudk/plantops/internal/service/reporting"
)

// DashboardHandler exposes the consolidated dashboard and report endpoints.
type DashboardHandler struct {
	dashboardSvc *dashboard.Service
	reportingSvc *reporting.Service
	logger       *zap.Logger
}

// NewDashboardHandler constructs the dashboard HTTP adapter.
func NewDashboardHandler(dashboardSvc *dashboard.Service, reportingSvc *reporting.Service, logger *zap.Logger) *DashboardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardHandler{dashboardSvc: dashboardSvc, reportingSvc: reportingSvc, logger: logger}
}

// Get returns the merged dashboard document for the tenant.
func (h *DashboardHandler) Get(c *gin.Context) {
	data, err := h.dashboardSvc.Build(c.Request.Context(), middleware.TenantID(c), time.Now())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

// DailyReport generates the narrated daily report on demand.
func (h *DashboardHandler) DailyReport(c *gin.Context) {
	report, err := h.reportingSvc.GenerateDailyReport(c.Request.Context(), middleware.TenantID(c), time.Now())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Snapshots lists the tenant's recent nightly KPI snapshots.
func (h *DashboardHandler) Snapshots(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			limit = v
		}
	}

	snaps, err := h.reportingSvc.RecentSnapshots(c.Request.Context(), middleware.TenantID(c), limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondList(c, snaps)
}
