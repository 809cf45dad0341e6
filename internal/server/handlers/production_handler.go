package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamoudk/plantops/internal/domain/models"
	"github.com/mamoudk/plantops/internal/server/middleware"
	"github.com/mamoudk/plantops/internal/service/catalog"
	"github.com/mamoudk/plantops/internal/service/inventory"
)

// ProductionHandler exposes the run-recording and stock endpoints.
type ProductionHandler struct {
	catalogSvc   *catalog.Service
	inventorySvc *inventory.Service
	logger       *zap.Logger
}

// NewProductionHandler constructs the production HTTP adapter.
func NewProductionHandler(catalogSvc *catalog.Service, inventorySvc *inventory.Service, logger *zap.Logger) *ProductionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductionHandler{catalogSvc: catalogSvc, inventorySvc: inventorySvc, logger: logger}
}

// RecordMachineRun stores one machine run record.
func (h *ProductionHandler) RecordMachineRun(c *gin.Context) {
	var run models.Production
	if err := c.ShouldBindJSON(&run); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	run.CreatedBy = middleware.TenantID(c)
	run.CompanyID = middleware.CompanyID(c)

	saved, err := h.catalogSvc.RecordMachineRun(c.Request.Context(), run)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

// RecordProductRun stores one product run and moves stock atomically. A
// retried submission with the same idempotency key returns the original
// record instead of deducting twice.
func (h *ProductionHandler) RecordProductRun(c *gin.Context) {
	var run models.ProductProduction
	if err := c.ShouldBindJSON(&run); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	run.CreatedBy = middleware.TenantID(c)
	run.CompanyID = middleware.CompanyID(c)

	saved, err := h.inventorySvc.RecordProduction(c.Request.Context(), run)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

// RecordManualJobRun stores one manual-job run record.
func (h *ProductionHandler) RecordManualJobRun(c *gin.Context) {
	var run models.ManualJobProduction
	if err := c.ShouldBindJSON(&run); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	run.CreatedBy = middleware.TenantID(c)
	run.CompanyID = middleware.CompanyID(c)

	saved, err := h.catalogSvc.RecordManualJobRun(c.Request.Context(), run)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

type intakeRequest struct {
	MaterialID   string  `json:"materialId"`
	SupplierName string  `json:"supplierName"`
	Quantity     float64 `json:"quantity"`
	UnitPrice    float64 `json:"unitPrice"`
}

// RecordIntake receives raw material into stock and books the payable.
func (h *ProductionHandler) RecordIntake(c *gin.Context) {
	var req intakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	err := h.inventorySvc.RecordIntake(c.Request.Context(),
		middleware.TenantID(c), middleware.CompanyID(c),
		req.MaterialID, req.SupplierName, req.Quantity, req.UnitPrice)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// LowStock lists materials at or below their reorder point.
func (h *ProductionHandler) LowStock(c *gin.Context) {
	items, err := h.inventorySvc.LowStock(c.Request.Context(), middleware.TenantID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondList(c, items)
}
