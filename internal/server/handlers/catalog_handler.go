package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamoudk/plantops/internal/domain/models"
	"github.com/mamoudk/plantops/internal/server/middleware"
	"github.com/mamoudk/plantops/internal/service/catalog"
)

// CatalogHandler exposes the master-data endpoints.
type CatalogHandler struct {
	svc    *catalog.Service
	logger *zap.Logger
}

// NewCatalogHandler constructs the master-data HTTP adapter.
func NewCatalogHandler(svc *catalog.Service, logger *zap.Logger) *CatalogHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogHandler{svc: svc, logger: logger}
}

// CreateMachine registers a machine.
func (h *CatalogHandler) CreateMachine(c *gin.Context) {
	var m models.Machine
	if err := c.ShouldBindJSON(&m); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	m.CreatedBy = middleware.TenantID(c)
	m.CompanyID = middleware.CompanyID(c)

	created, err := h.svc.CreateMachine(c.Request.Context(), m)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListMachines returns the tenant's machines.
func (h *CatalogHandler) ListMachines(c *gin.Context) {
	machines, err := h.svc.ListMachines(c.Request.Context(), middleware.TenantID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondList(c, machines)
}

// GetMachine returns one machine.
func (h *CatalogHandler) GetMachine(c *gin.Context) {
	m, err := h.svc.Machine(c.Request.Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

type maintenanceRequest struct {
	RepairTime float64   `json:"repairTime"`
	NextDue    time.Time `json:"nextMaintenanceDate"`
}

// RecordMaintenance logs a repair on a machine.
func (h *CatalogHandler) RecordMaintenance(c *gin.Context) {
	var req maintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	err := h.svc.RecordMaintenance(c.Request.Context(), middleware.TenantID(c), c.Param("id"), req.RepairTime, req.NextDue)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateProduct registers a finished product.
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var p models.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	p.CreatedBy = middleware.TenantID(c)
	p.CompanyID = middleware.CompanyID(c)

	created, err := h.svc.CreateProduct(c.Request.Context(), p)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListProducts returns the tenant's finished products.
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	products, err := h.svc.ListProducts(c.Request.Context(), middleware.TenantID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondList(c, products)
}

// GetProduct returns one finished product.
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	p, err := h.svc.Product(c.Request.Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// CreateSemiFinished registers a semi-finished good.
func (h *CatalogHandler) CreateSemiFinished(c *gin.Context) {
	var p models.SemiFinishedProduct
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	p.CreatedBy = middleware.TenantID(c)
	p.CompanyID = middleware.CompanyID(c)

	created, err := h.svc.CreateSemiFinished(c.Request.Context(), p)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListSemiFinished returns the tenant's semi-finished goods.
func (h *CatalogHandler) ListSemiFinished(c *gin.Context) {
	items, err := h.svc.ListSemiFinished(c.Request.Context(), middleware.TenantID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondList(c, items)
}

// CreateRawMaterial registers a raw material.
func (h *CatalogHandler) CreateRawMaterial(c *gin.Context) {
	var m models.RawMaterial
	if err := c.ShouldBindJSON(&m); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	m.CreatedBy = middleware.TenantID(c)
	m.CompanyID = middleware.CompanyID(c)

	created, err := h.svc.CreateRawMaterial(c.Request.Context(), m)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListRawMaterials returns the tenant's raw materials.
func (h *CatalogHandler) ListRawMaterials(c *gin.Context) {
	items, err := h.svc.ListRawMaterials(c.Request.Context(), middleware.TenantID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondList(c, items)
}

// CreateManualJob registers a manual job.
func (h *CatalogHandler) CreateManualJob(c *gin.Context) {
	var j models.ManualJob
	if err := c.ShouldBindJSON(&j); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	j.CreatedBy = middleware.TenantID(c)
	j.CompanyID = middleware.CompanyID(c)

	created, err := h.svc.CreateManualJob(c.Request.Context(), j)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListManualJobs returns the tenant's manual jobs.
func (h *CatalogHandler) ListManualJobs(c *gin.Context) {
	jobs, err := h.svc.ListManualJobs(c.Request.Context(), middleware.TenantID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondList(c, jobs)
}

// UpsertFixedCost stores the fixed-cost snapshot for a month.
func (h *CatalogHandler) UpsertFixedCost(c *gin.Context) {
	var cost models.FixedCost
	if err := c.ShouldBindJSON(&cost); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	cost.CreatedBy = middleware.TenantID(c)
	cost.CompanyID = middleware.CompanyID(c)

	saved, err := h.svc.UpsertFixedCost(c.Request.Context(), cost)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// ListFixedCosts returns the tenant's fixed-cost snapshots.
func (h *CatalogHandler) ListFixedCosts(c *gin.Context) {
	costs, err := h.svc.FixedCosts(c.Request.Context(), middleware.TenantID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondList(c, costs)
}

// UpsertVariableCost stores the variable-cost snapshot for a month.
func (h *CatalogHandler) UpsertVariableCost(c *gin.Context) {
	var cost models.VariableCost
	if err := c.ShouldBindJSON(&cost); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	cost.CreatedBy = middleware.TenantID(c)
	cost.CompanyID = middleware.CompanyID(c)

	saved, err := h.svc.UpsertVariableCost(c.Request.Context(), cost)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// ListVariableCosts returns the tenant's variable-cost snapshots.
func (h *CatalogHandler) ListVariableCosts(c *gin.Context) {
	costs, err := h.svc.VariableCosts(c.Request.Context(), middleware.TenantID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondList(c, costs)
}
