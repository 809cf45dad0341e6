// Package catalog manages the plant's master data: machines, products,
// semi-finished goods, raw materials, manual jobs, and the monthly cost
// snapshots. It also records the operational run events that feed analytics.
package catalog

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamoudk/plantops/internal/domain/models"
)

// MachineStore is the machine persistence surface.
type MachineStore interface {
	Insert(ctx context.Context, m models.Machine) (models.Machine, error)
	FindAll(ctx context.Context, tenantID string) ([]models.Machine, error)
	FindByID(ctx context.Context, tenantID, id string) (models.Machine, error)
	RecordMaintenance(ctx context.Context, tenantID, id string, repairTime float64, nextDue time.Time) error
	AccumulateRunStats(ctx context.Context, tenantID, id string, runTime, downtime float64, breakdown bool) error
}

// ProductStore is the finished-product persistence surface.
type ProductStore interface {
	Insert(ctx context.Context, p models.Product) (models.Product, error)
	FindAll(ctx context.Context, tenantID string) ([]models.Product, error)
	FindByID(ctx context.Context, tenantID, id string) (models.Product, error)
}

// SemiFinishedStore is the semi-finished persistence surface.
type SemiFinishedStore interface {
	Insert(ctx context.Context, p models.SemiFinishedProduct) (models.SemiFinishedProduct, error)
	FindAll(ctx context.Context, tenantID string) ([]models.SemiFinishedProduct, error)
	FindByID(ctx context.Context, tenantID, id string) (models.SemiFinishedProduct, error)
}

// MaterialStore is the raw-material persistence surface.
type MaterialStore interface {
	Insert(ctx context.Context, m models.RawMaterial) (models.RawMaterial, error)
	FindAll(ctx context.Context, tenantID string) ([]models.RawMaterial, error)
	FindByID(ctx context.Context, tenantID, id string) (models.RawMaterial, error)
}

// ManualJobStore is the manual-job persistence surface.
type ManualJobStore interface {
	Insert(ctx context.Context, j models.ManualJob) (models.ManualJob, error)
	FindAll(ctx context.Context, tenantID string) ([]models.ManualJob, error)
	FindByID(ctx context.Context, tenantID, id string) (models.ManualJob, error)
}

// MachineRunWriter persists immutable machine run records.
type MachineRunWriter interface {
	Insert(ctx context.Context, p models.Production) (models.Production, error)
}

// ManualJobRunWriter persists immutable manual-job run records.
type ManualJobRunWriter interface {
	Insert(ctx context.Context, run models.ManualJobProduction) (models.ManualJobProduction, error)
}

// FixedCostStore persists monthly fixed-cost snapshots.
type FixedCostStore interface {
	Upsert(ctx context.Context, c models.FixedCost) (models.FixedCost, error)
	FindLatest(ctx context.Context, tenantID, monthKey string) (models.FixedCost, error)
	FindAll(ctx context.Context, tenantID string) ([]models.FixedCost, error)
}

// VariableCostStore persists monthly variable-cost snapshots.
type VariableCostStore interface {
	Upsert(ctx context.Context, c models.VariableCost) (models.VariableCost, error)
	FindByMonth(ctx context.Context, tenantID, monthKey string) (models.VariableCost, error)
	FindAll(ctx context.Context, tenantID string) ([]models.VariableCost, error)
}

// Service exposes master-data operations. It also satisfies the lookup
// surface the flow resolver descends through.
type Service struct {
	machines      MachineStore
	products      ProductStore
	semiFinished  SemiFinishedStore
	materials     MaterialStore
	manualJobs    ManualJobStore
	machineRuns   MachineRunWriter
	manualJobRuns ManualJobRunWriter
	fixedCosts    FixedCostStore
	variableCosts VariableCostStore
	logger        *zap.Logger
}

// NewService wires the catalog service.
func NewService(
	machines MachineStore,
	products ProductStore,
	semiFinished SemiFinishedStore,
	materials MaterialStore,
	manualJobs ManualJobStore,
	machineRuns MachineRunWriter,
	manualJobRuns ManualJobRunWriter,
	fixedCosts FixedCostStore,
	variableCosts VariableCostStore,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		machines:      machines,
		products:      products,
		semiFinished:  semiFinished,
		materials:     materials,
		manualJobs:    manualJobs,
		machineRuns:   machineRuns,
		manualJobRuns: manualJobRuns,
		fixedCosts:    fixedCosts,
		variableCosts: variableCosts,
		logger:        logger,
	}
}

// --- machines ---

// CreateMachine registers a machine with its nameplate parameters.
func (s *Service) CreateMachine(ctx context.Context, m models.Machine) (models.Machine, error) {
	switch {
	case m.CreatedBy == "":
		return models.Machine{}, fmt.Errorf("%w: missing tenant id", models.ErrValidation)
	case m.Name == "":
		return models.Machine{}, fmt.Errorf("%w: missing machine name", models.ErrValidation)
	case m.IdealCycleTime <= 0:
		return models.Machine{}, fmt.Errorf("%w: ideal cycle time must be positive", models.ErrValidation)
	}
	return s.machines.Insert(ctx, m)
}

// ListMachines returns the tenant's machines.
func (s *Service) ListMachines(ctx context.Context, tenantID string) ([]models.Machine, error) {
	return s.machines.FindAll(ctx, tenantID)
}

// Machine returns one machine.
func (s *Service) Machine(ctx context.Context, tenantID, id string) (models.Machine, error) {
	return s.machines.FindByID(ctx, tenantID, id)
}

// RecordMaintenance logs a completed repair against the machine's lifetime
// counters and schedules the next due date.
func (s *Service) RecordMaintenance(ctx context.Context, tenantID, machineID string, repairTime float64, nextDue time.Time) error {
	if repairTime < 0 {
		return fmt.Errorf("%w: repair time must not be negative", models.ErrValidation)
	}
	if err := s.machines.RecordMaintenance(ctx, tenantID, machineID, repairTime, nextDue); err != nil {
		return err
	}
	s.logger.Info("maintenance recorded",
		zap.String("tenant_id", tenantID),
		zap.String("machine_id", machineID),
		zap.Float64("repair_time", repairTime))
	return nil
}

// RecordMachineRun stores one immutable machine run and folds its times into
// the machine's cumulative counters.
func (s *Service) RecordMachineRun(ctx context.Context, run models.Production) (models.Production, error) {
	switch {
	case run.CreatedBy == "":
		return models.Production{}, fmt.Errorf("%w: missing tenant id", models.ErrValidation)
	case run.MachineID == "":
		return models.Production{}, fmt.Errorf("%w: missing machine id", models.ErrValidation)
	case run.TotalUnitsProduced < 0 || run.ScrapUnits < 0:
		return models.Production{}, fmt.Errorf("%w: unit counts must not be negative", models.ErrValidation)
	case run.ScrapUnits > run.TotalUnitsProduced:
		return models.Production{}, fmt.Errorf("%w: scrap exceeds units produced", models.ErrValidation)
	case run.ActualMachineRunTime < 0 || run.TotalDowntime < 0:
		return models.Production{}, fmt.Errorf("%w: run times must not be negative", models.ErrValidation)
	}
	if run.Date.IsZero() {
		run.Date = time.Now().UTC()
	}

	if _, err := s.machines.FindByID(ctx, run.CreatedBy, run.MachineID); err != nil {
		return models.Production{}, fmt.Errorf("machine lookup: %w", err)
	}

	saved, err := s.machineRuns.Insert(ctx, run)
	if err != nil {
		return models.Production{}, err
	}

	if err := s.machines.AccumulateRunStats(ctx, run.CreatedBy, run.MachineID, run.ActualMachineRunTime, run.TotalDowntime, run.Breakdown); err != nil {
		return models.Production{}, fmt.Errorf("accumulate machine stats: %w", err)
	}

	return saved, nil
}

// RecordManualJobRun stores one immutable manual-job run.
func (s *Service) RecordManualJobRun(ctx context.Context, run models.ManualJobProduction) (models.ManualJobProduction, error) {
	switch {
	case run.CreatedBy == "":
		return models.ManualJobProduction{}, fmt.Errorf("%w: missing tenant id", models.ErrValidation)
	case run.ManualJobID == "":
		return models.ManualJobProduction{}, fmt.Errorf("%w: missing manual job id", models.ErrValidation)
	case run.OutputQuantity < 0 || run.ActualTimeTaken < 0:
		return models.ManualJobProduction{}, fmt.Errorf("%w: output and duration must not be negative", models.ErrValidation)
	}
	if run.Date.IsZero() {
		run.Date = time.Now().UTC()
	}

	if _, err := s.manualJobs.FindByID(ctx, run.CreatedBy, run.ManualJobID); err != nil {
		return models.ManualJobProduction{}, fmt.Errorf("manual job lookup: %w", err)
	}

	return s.manualJobRuns.Insert(ctx, run)
}

// --- products and materials ---

// CreateProduct registers a finished product with its bill of materials.
func (s *Service) CreateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	if err := validateCatalogItem(p.CreatedBy, p.Name); err != nil {
		return models.Product{}, err
	}
	return s.products.Insert(ctx, p)
}

// ListProducts returns the tenant's finished products.
func (s *Service) ListProducts(ctx context.Context, tenantID string) ([]models.Product, error) {
	return s.products.FindAll(ctx, tenantID)
}

// Product returns one finished product.
func (s *Service) Product(ctx context.Context, tenantID, id string) (models.Product, error) {
	return s.products.FindByID(ctx, tenantID, id)
}

// CreateSemiFinished registers a semi-finished good.
func (s *Service) CreateSemiFinished(ctx context.Context, p models.SemiFinishedProduct) (models.SemiFinishedProduct, error) {
	if err := validateCatalogItem(p.CreatedBy, p.Name); err != nil {
		return models.SemiFinishedProduct{}, err
	}
	return s.semiFinished.Insert(ctx, p)
}

// ListSemiFinished returns the tenant's semi-finished goods.
func (s *Service) ListSemiFinished(ctx context.Context, tenantID string) ([]models.SemiFinishedProduct, error) {
	return s.semiFinished.FindAll(ctx, tenantID)
}

// SemiFinished returns one semi-finished good.
func (s *Service) SemiFinished(ctx context.Context, tenantID, id string) (models.SemiFinishedProduct, error) {
	return s.semiFinished.FindByID(ctx, tenantID, id)
}

// CreateRawMaterial registers a raw material with its stock parameters.
func (s *Service) CreateRawMaterial(ctx context.Context, m models.RawMaterial) (models.RawMaterial, error) {
	if err := validateCatalogItem(m.CreatedBy, m.Name); err != nil {
		return models.RawMaterial{}, err
	}
	if m.CurrentStock < 0 {
		return models.RawMaterial{}, fmt.Errorf("%w: current stock must not be negative", models.ErrValidation)
	}
	return s.materials.Insert(ctx, m)
}

// ListRawMaterials returns the tenant's raw materials.
func (s *Service) ListRawMaterials(ctx context.Context, tenantID string) ([]models.RawMaterial, error) {
	return s.materials.FindAll(ctx, tenantID)
}

// RawMaterial returns one raw material.
func (s *Service) RawMaterial(ctx context.Context, tenantID, id string) (models.RawMaterial, error) {
	return s.materials.FindByID(ctx, tenantID, id)
}

// CreateManualJob registers a manual job with its cost model.
func (s *Service) CreateManualJob(ctx context.Context, j models.ManualJob) (models.ManualJob, error) {
	if err := validateCatalogItem(j.CreatedBy, j.Name); err != nil {
		return models.ManualJob{}, err
	}
	switch j.CostModel {
	case models.ManualJobHourly, models.ManualJobPerUnit, models.ManualJobFixedPerDay:
	default:
		return models.ManualJob{}, fmt.Errorf("%w: unknown cost model %q", models.ErrValidation, j.CostModel)
	}
	if j.Rate <= 0 {
		return models.ManualJob{}, fmt.Errorf("%w: rate must be positive", models.ErrValidation)
	}
	return s.manualJobs.Insert(ctx, j)
}

// ListManualJobs returns the tenant's manual jobs.
func (s *Service) ListManualJobs(ctx context.Context, tenantID string) ([]models.ManualJob, error) {
	return s.manualJobs.FindAll(ctx, tenantID)
}

// ManualJob returns one manual job.
func (s *Service) ManualJob(ctx context.Context, tenantID, id string) (models.ManualJob, error) {
	return s.manualJobs.FindByID(ctx, tenantID, id)
}

// --- cost snapshots ---

// UpsertFixedCost stores the fixed-cost snapshot for its month, replacing any
// existing snapshot for the same month.
func (s *Service) UpsertFixedCost(ctx context.Context, c models.FixedCost) (models.FixedCost, error) {
	if c.CreatedBy == "" {
		return models.FixedCost{}, fmt.Errorf("%w: missing tenant id", models.ErrValidation)
	}
	if err := validateMonthKey(c.MonthKey); err != nil {
		return models.FixedCost{}, err
	}
	return s.fixedCosts.Upsert(ctx, c)
}

// FixedCosts returns all fixed-cost snapshots for the tenant.
func (s *Service) FixedCosts(ctx context.Context, tenantID string) ([]models.FixedCost, error) {
	return s.fixedCosts.FindAll(ctx, tenantID)
}

// UpsertVariableCost stores the variable-cost snapshot for its month.
func (s *Service) UpsertVariableCost(ctx context.Context, c models.VariableCost) (models.VariableCost, error) {
	if c.CreatedBy == "" {
		return models.VariableCost{}, fmt.Errorf("%w: missing tenant id", models.ErrValidation)
	}
	if err := validateMonthKey(c.MonthKey); err != nil {
		return models.VariableCost{}, err
	}
	if c.UnitsProduced < 0 {
		return models.VariableCost{}, fmt.Errorf("%w: units produced must not be negative", models.ErrValidation)
	}
	return s.variableCosts.Upsert(ctx, c)
}

// VariableCosts returns all variable-cost snapshots for the tenant.
func (s *Service) VariableCosts(ctx context.Context, tenantID string) ([]models.VariableCost, error) {
	return s.variableCosts.FindAll(ctx, tenantID)
}

func validateCatalogItem(tenantID, name string) error {
	if tenantID == "" {
		return fmt.Errorf("%w: missing tenant id", models.ErrValidation)
	}
	if name == "" {
		return fmt.Errorf("%w: missing name", models.ErrValidation)
	}
	return nil
}

// validateMonthKey accepts YYYY-MM.
func validateMonthKey(key string) error {
	if _, err := time.Parse("2006-01", key); err != nil {
		return fmt.Errorf("%w: month key %q is not YYYY-MM", models.ErrValidation, key)
	}
	return nil
}
