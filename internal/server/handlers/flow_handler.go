package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamoudk/plantops/internal/domain/models"
	"github.com/mamoudk/plantops/internal/server/middleware"
	"github.com/mamoudk/plantops/internal/service/flow"
)

// FlowHandler exposes the manufacturing flow resolution endpoint.
type FlowHandler struct {
	resolver *flow.Resolver
	logger   *zap.Logger
}

// NewFlowHandler constructs the flow HTTP adapter.
func NewFlowHandler(resolver *flow.Resolver, logger *zap.Logger) *FlowHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FlowHandler{resolver: resolver, logger: logger}
}

// Resolve expands one catalog item into its full manufacturing flow. The
// productType query selects which catalog the id resolves against.
func (h *FlowHandler) Resolve(c *gin.Context) {
	productType := models.ProductType(c.DefaultQuery("productType", string(models.ProductTypeFinished)))

	node, err := h.resolver.Resolve(c.Request.Context(), middleware.TenantID(c), productType, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, node)
}
