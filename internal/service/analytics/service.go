// Package analytics implements the tenant-scoped aggregation pipelines:
// fetch scoped records, group by a key, apply the metric formulas, shape a
// response payload.
package analytics

import (
	"context"

	"go.uber.org/zap"

	"github.com/mamoudk/plantops/internal/domain/models"
	"github.com/mamoudk/plantops/internal/repository/mongodb"
)

// ProductionReader supplies machine-run records.
type ProductionReader interface {
	Find(ctx context.Context, tenantID string, f mongodb.ProductionFilter) ([]models.Production, error)
}

// ProductRunReader supplies product-run records.
type ProductRunReader interface {
	Find(ctx context.Context, tenantID string, f mongodb.ProductProductionFilter) ([]models.ProductProduction, error)
}

// ManualJobRunReader supplies manual-job run records.
type ManualJobRunReader interface {
	Find(ctx context.Context, tenantID string, f mongodb.ManualJobRunFilter) ([]models.ManualJobProduction, error)
}

// MachineReader supplies machine records.
type MachineReader interface {
	FindAll(ctx context.Context, tenantID string) ([]models.Machine, error)
	FindByID(ctx context.Context, tenantID, id string) (models.Machine, error)
}

// ProductReader supplies finished-goods catalog records.
type ProductReader interface {
	FindAll(ctx context.Context, tenantID string) ([]models.Product, error)
	FindByID(ctx context.Context, tenantID, id string) (models.Product, error)
}

// ManualJobReader supplies manual-job definitions.
type ManualJobReader interface {
	FindAll(ctx context.Context, tenantID string) ([]models.ManualJob, error)
	FindByID(ctx context.Context, tenantID, id string) (models.ManualJob, error)
}

// OrderReader supplies commercial orders.
type OrderReader interface {
	FindAll(ctx context.Context, tenantID string) ([]models.Order, error)
}

// FixedCostReader supplies latest-wins fixed cost snapshots.
type FixedCostReader interface {
	FindLatest(ctx context.Context, tenantID, monthKey string) (models.FixedCost, error)
}

// VariableCostReader supplies monthly variable cost snapshots.
type VariableCostReader interface {
	FindByMonth(ctx context.Context, tenantID, monthKey string) (models.VariableCost, error)
}

// Service runs the aggregation pipelines over tenant-scoped records.
type Service struct {
	productions   ProductionReader
	productRuns   ProductRunReader
	manualJobRuns ManualJobRunReader
	machines      MachineReader
	products      ProductReader
	manualJobs    ManualJobReader
	orders        OrderReader
	fixedCosts    FixedCostReader
	variableCosts VariableCostReader
	logger        *zap.Logger
}

// NewService wires the analytics service.
func NewService(
	productions ProductionReader,
	productRuns ProductRunReader,
	manualJobRuns ManualJobRunReader,
	machines MachineReader,
	products ProductReader,
	manualJobs ManualJobReader,
	orders OrderReader,
	fixedCosts FixedCostReader,
	variableCosts VariableCostReader,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		productions:   productions,
		productRuns:   productRuns,
		manualJobRuns: manualJobRuns,
		machines:      machines,
		products:      products,
		manualJobs:    manualJobs,
		orders:        orders,
		fixedCosts:    fixedCosts,
		variableCosts: variableCosts,
		logger:        logger,
	}
}
