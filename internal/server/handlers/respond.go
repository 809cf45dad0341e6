// Package handlers adapts the service layer to HTTP. Handlers bind and
// validate transport concerns only; business rules live in the services.
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamoudk/plantops/internal/domain/models"
	"github.com/mamoudk/plantops/internal/service/flow"
	"github.com/mamoudk/plantops/internal/service/metrics"
)

// respondError classifies a service error into an HTTP status. Unclassified
// errors become a generic 500 so internals never leak to tenants.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, models.ErrNoData):
		c.JSON(http.StatusNotFound, gin.H{"error": "no data for the requested window"})
	case errors.Is(err, models.ErrInsufficientStock):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "insufficient stock"})
	case errors.Is(err, metrics.ErrNonPositiveMargin):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "selling price does not cover variable cost per unit"})
	case errors.Is(err, models.ErrDuplicateSubmission):
		c.JSON(http.StatusConflict, gin.H{"error": "duplicate submission"})
	case errors.Is(err, flow.ErrCycleDetected), errors.Is(err, flow.ErrMaxDepth):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		logger.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// respondList wraps list payloads uniformly.
func respondList[T any](c *gin.Context, items []T) {
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// queryDate parses an optional RFC3339 date (or date-time) query parameter.
func queryDate(c *gin.Context, name string) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be an RFC3339 date", models.ErrValidation, name)
	}
	return t, nil
}
