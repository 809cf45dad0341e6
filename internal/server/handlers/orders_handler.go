package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamoudk/plantops/internal/domain/models"
	"github.com/mamoudk/plantops/internal/server/middleware"
	"github.com/mamoudk/plantops/internal/service/orders"
)

// OrdersHandler exposes the order lifecycle endpoints.
type OrdersHandler struct {
	svc    *orders.Service
	logger *zap.Logger
}

// NewOrdersHandler constructs the orders HTTP adapter.
func NewOrdersHandler(svc *orders.Service, logger *zap.Logger) *OrdersHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrdersHandler{svc: svc, logger: logger}
}

// Create opens a new order.
func (h *OrdersHandler) Create(c *gin.Context) {
	var o models.Order
	if err := c.ShouldBindJSON(&o); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	o.CreatedBy = middleware.TenantID(c)
	o.CompanyID = middleware.CompanyID(c)

	created, err := h.svc.Create(c.Request.Context(), o)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// List returns the tenant's orders.
func (h *OrdersHandler) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context(), middleware.TenantID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondList(c, items)
}

// Get returns one order.
func (h *OrdersHandler) Get(c *gin.Context) {
	o, err := h.svc.Get(c.Request.Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

type deliveryRequest struct {
	Quantity float64 `json:"quantity"`
}

// Deliver records one delivery against the order and returns the updated
// order together with the generated invoice.
func (h *OrdersHandler) Deliver(c *gin.Context) {
	var req deliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	order, invoice, err := h.svc.Deliver(c.Request.Context(), middleware.TenantID(c), c.Param("id"), req.Quantity)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order, "invoice": invoice})
}

// RecordPayment appends a payment to the order.
func (h *OrdersHandler) RecordPayment(c *gin.Context) {
	var p models.Payment
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.svc.RecordPayment(c.Request.Context(), middleware.TenantID(c), c.Param("id"), p); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Cancel stops an order, fully or partially depending on deliveries made.
func (h *OrdersHandler) Cancel(c *gin.Context) {
	order, err := h.svc.Cancel(c.Request.Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// Invoices lists the invoices issued for one order.
func (h *OrdersHandler) Invoices(c *gin.Context) {
	items, err := h.svc.Invoices(c.Request.Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondList(c, items)
}

// Ledger returns the sales ledger linked to one order.
func (h *OrdersHandler) Ledger(c *gin.Context) {
	ledger, err := h.svc.Ledger(c.Request.Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, ledger)
}
