// Package inventory owns every stock mutation. All level changes are single
// atomic increments at the storage layer, and multi-record writes (production
// submissions, material intake) run inside one transaction.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamoudk/plantops/internal/domain/models"
)

// Transactor runs a function inside a storage transaction.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ProductRunWriter persists product-run records with idempotency-key lookup.
type ProductRunWriter interface {
	Insert(ctx context.Context, p models.ProductProduction) (models.ProductProduction, error)
	FindByIdempotencyKey(ctx context.Context, tenantID, key string) (models.ProductProduction, error)
}

// StockAdjuster applies one atomic stock increment to a record.
type StockAdjuster interface {
	AdjustStock(ctx context.Context, tenantID, id string, delta float64) error
}

// MaterialStore combines stock adjustment with raw-material reads.
type MaterialStore interface {
	StockAdjuster
	FindByID(ctx context.Context, tenantID, id string) (models.RawMaterial, error)
	FindLowStock(ctx context.Context, tenantID string) ([]models.RawMaterial, error)
}

// PayableWriter accumulates supplier payables from stock intake.
type PayableWriter interface {
	Upsert(ctx context.Context, tenantID, companyID, supplierName string, entry models.LedgerEntry) error
}

// Service coordinates production submissions and stock movements.
type Service struct {
	tx           Transactor
	productRuns  ProductRunWriter
	materials    MaterialStore
	products     StockAdjuster
	semiFinished StockAdjuster
	payables     PayableWriter
	logger       *zap.Logger
	now          func() time.Time
}

// NewService wires the inventory service.
func NewService(tx Transactor, productRuns ProductRunWriter, materials MaterialStore, products, semiFinished StockAdjuster, payables PayableWriter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		tx:           tx,
		productRuns:  productRuns,
		materials:    materials,
		products:     products,
		semiFinished: semiFinished,
		payables:     payables,
		logger:       logger,
		now:          time.Now,
	}
}

// RecordProduction registers one product run: it persists the run record,
// deducts each consumed material's stock, and increments the produced item's
// stock by the good units, all inside one transaction. A resubmitted
// idempotency key returns the already-recorded run without touching stock.
func (s *Service) RecordProduction(ctx context.Context, run models.ProductProduction) (models.ProductProduction, error) {
	if err := validateRun(run); err != nil {
		return models.ProductProduction{}, err
	}

	if run.IdempotencyKey == "" {
		run.IdempotencyKey = uuid.NewString()
	} else if existing, err := s.productRuns.FindByIdempotencyKey(ctx, run.CreatedBy, run.IdempotencyKey); err == nil {
		s.logger.Info("production submission replayed",
			zap.String("tenant_id", run.CreatedBy),
			zap.String("idempotency_key", run.IdempotencyKey))
		return existing, nil
	} else if !errors.Is(err, models.ErrNotFound) {
		return models.ProductProduction{}, err
	}

	if run.Date.IsZero() {
		run.Date = s.now().UTC()
	}

	var saved models.ProductProduction
	err := s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		saved, err = s.productRuns.Insert(txCtx, run)
		if err != nil {
			return err
		}

		for _, usage := range run.ActualMaterialUsage {
			if err := s.deduct(txCtx, run.CreatedBy, usage); err != nil {
				return err
			}
		}

		return s.producedStore(run.ProductType).AdjustStock(txCtx, run.CreatedBy, run.ProductID, run.GoodUnitsProduced)
	})
	if err != nil {
		return models.ProductProduction{}, err
	}

	s.logger.Info("production recorded",
		zap.String("tenant_id", run.CreatedBy),
		zap.String("product_id", run.ProductID),
		zap.Float64("good_units", run.GoodUnitsProduced))

	return saved, nil
}

// deduct removes one consumed input from stock via a single conditional decrement.
func (s *Service) deduct(ctx context.Context, tenantID string, usage models.MaterialUsage) error {
	store, err := s.consumedStore(usage.MaterialType)
	if err != nil {
		return err
	}
	if err := store.AdjustStock(ctx, tenantID, usage.MaterialID, -usage.Quantity); err != nil {
		return fmt.Errorf("deduct %v of %s: %w", usage.Quantity, usage.MaterialID, err)
	}
	return nil
}

func (s *Service) consumedStore(materialType string) (StockAdjuster, error) {
	switch materialType {
	case "raw_material":
		return s.materials, nil
	case "semi_finished":
		return s.semiFinished, nil
	default:
		return nil, fmt.Errorf("%w: unknown material type %q", models.ErrValidation, materialType)
	}
}

func (s *Service) producedStore(t models.ProductType) StockAdjuster {
	if t == models.ProductTypeSemiFinished {
		return s.semiFinished
	}
	return s.products
}

func validateRun(run models.ProductProduction) error {
	switch {
	case run.CreatedBy == "":
		return fmt.Errorf("%w: missing tenant id", models.ErrValidation)
	case run.ProductID == "":
		return fmt.Errorf("%w: missing product id", models.ErrValidation)
	case run.ProductType != models.ProductTypeFinished && run.ProductType != models.ProductTypeSemiFinished:
		return fmt.Errorf("%w: unknown product type %q", models.ErrValidation, run.ProductType)
	case run.TotalUnitsProduced < 0 || run.GoodUnitsProduced < 0 || run.ScrapUnits < 0:
		return fmt.Errorf("%w: unit counts must not be negative", models.ErrValidation)
	case run.GoodUnitsProduced > run.TotalUnitsProduced:
		return fmt.Errorf("%w: good units exceed total units", models.ErrValidation)
	}

	for _, u := range run.ActualMaterialUsage {
		if u.Quantity <= 0 {
			return fmt.Errorf("%w: material usage quantity must be positive", models.ErrValidation)
		}
	}
	return nil
}

// RecordIntake books a raw-material receipt: the stock increment and the
// supplier payable commit together inside one transaction.
func (s *Service) RecordIntake(ctx context.Context, tenantID, companyID, materialID, supplierName string, quantity, unitPrice float64) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: intake quantity must be positive", models.ErrValidation)
	}

	return s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.materials.AdjustStock(txCtx, tenantID, materialID, quantity); err != nil {
			return fmt.Errorf("intake stock adjustment: %w", err)
		}

		if supplierName != "" {
			entry := models.LedgerEntry{
				Amount:    quantity * unitPrice,
				Date:      s.now().UTC(),
				Reference: materialID,
			}
			if err := s.payables.Upsert(txCtx, tenantID, companyID, supplierName, entry); err != nil {
				return fmt.Errorf("record payable: %w", err)
			}
		}

		return nil
	})
}

// LowStock lists materials at or below their reorder point.
func (s *Service) LowStock(ctx context.Context, tenantID string) ([]models.RawMaterial, error) {
	materials, err := s.materials.FindLowStock(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("low stock lookup: %w", err)
	}
	if len(materials) == 0 {
		return nil, models.ErrNoData
	}
	return materials, nil
}
