// Package dashboard assembles the consolidated plant overview by fanning out
// to the analytics sections concurrently and merging their results.
package dashboard

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mamoudk/plantops/internal/domain/models"
	"github.com/mamoudk/plantops/internal/repository/mongodb"
	"github.com/mamoudk/plantops/internal/service/analytics"
)

// Analytics is the aggregation surface the dashboard composes.
type Analytics interface {
	DailyRollup(ctx context.Context, tenantID, machineID string, now time.Time) (analytics.RollupResult, error)
	WeeklyRollup(ctx context.Context, tenantID, machineID string, now time.Time) (analytics.RollupResult, error)
	MachineKPIs(ctx context.Context, tenantID string, f mongodb.ProductionFilter) (analytics.MachineKPIResult, error)
	Reliability(ctx context.Context, tenantID string) ([]analytics.MachineReliability, error)
	ProductKPIs(ctx context.Context, tenantID string, f mongodb.ProductProductionFilter) (analytics.ProductKPIResult, error)
	ManualJobKPIs(ctx context.Context, tenantID string, f mongodb.ManualJobRunFilter) ([]analytics.ManualJobKPI, error)
	FinancialSummary(ctx context.Context, tenantID string, now time.Time) (analytics.FinancialSummary, error)
	Insights(ctx context.Context, tenantID string, now time.Time) ([]analytics.Insight, error)
}

// LowStockLister reports materials at or below their reorder point.
type LowStockLister interface {
	LowStock(ctx context.Context, tenantID string) ([]models.RawMaterial, error)
}

// Data is the merged dashboard document. A section that has no records or
// whose sub-call fails is present with its zero value rather than failing
// the whole document.
type Data struct {
	GeneratedAt time.Time `json:"generatedAt"`
	TenantID    string    `json:"tenantId"`

	Daily       analytics.RollupResult        `json:"daily"`
	Weekly      analytics.RollupResult        `json:"weekly"`
	Machines    analytics.MachineKPIResult    `json:"machines"`
	Reliability []analytics.MachineReliability `json:"reliability"`
	Products    analytics.ProductKPIResult    `json:"products"`
	ManualJobs  []analytics.ManualJobKPI      `json:"manualJobs"`
	Financials  analytics.FinancialSummary    `json:"financials"`
	Insights    []analytics.Insight           `json:"insights"`
	LowStock    []models.RawMaterial          `json:"lowStock"`

	// Partial lists the sections left at their zero value, either because
	// the tenant has no records there or because the sub-call failed.
	Partial []string `json:"partialSections,omitempty"`
}

// Service builds the merged dashboard document.
type Service struct {
	analytics Analytics
	inventory LowStockLister
	logger    *zap.Logger
}

// NewService wires the dashboard service.
func NewService(a Analytics, inv LowStockLister, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{analytics: a, inventory: inv, logger: logger}
}

// Build runs every dashboard section concurrently. A failing section never
// aborts its siblings: it stays at its zero value and is listed under
// Partial, with unexpected failures logged.
func (s *Service) Build(ctx context.Context, tenantID string, now time.Time) (Data, error) {
	data := Data{GeneratedAt: now.UTC(), TenantID: tenantID}

	window := mongodb.ProductionFilter{From: now.UTC().AddDate(0, 0, -30), To: now.UTC()}
	runWindow := mongodb.ProductProductionFilter{From: window.From, To: window.To}
	jobWindow := mongodb.ManualJobRunFilter{From: window.From, To: window.To}

	partial := make(chan string, 9)

	g, gctx := errgroup.WithContext(ctx)
	section := func(name string, fn func(context.Context) error) {
		g.Go(func() error {
			err := fn(gctx)
			if err == nil {
				return nil
			}
			if !errors.Is(err, models.ErrNoData) {
				s.logger.Warn("dashboard section failed",
					zap.String("tenant_id", tenantID),
					zap.String("section", name),
					zap.Error(err))
			}
			partial <- name
			return nil
		})
	}

	section("daily", func(ctx context.Context) error {
		res, err := s.analytics.DailyRollup(ctx, tenantID, "", now)
		if err != nil {
			return err
		}
		data.Daily = res
		return nil
	})
	section("weekly", func(ctx context.Context) error {
		res, err := s.analytics.WeeklyRollup(ctx, tenantID, "", now)
		if err != nil {
			return err
		}
		data.Weekly = res
		return nil
	})
	section("machines", func(ctx context.Context) error {
		res, err := s.analytics.MachineKPIs(ctx, tenantID, window)
		if err != nil {
			return err
		}
		data.Machines = res
		return nil
	})
	section("reliability", func(ctx context.Context) error {
		res, err := s.analytics.Reliability(ctx, tenantID)
		if err != nil {
			return err
		}
		data.Reliability = res
		return nil
	})
	section("products", func(ctx context.Context) error {
		res, err := s.analytics.ProductKPIs(ctx, tenantID, runWindow)
		if err != nil {
			return err
		}
		data.Products = res
		return nil
	})
	section("manualJobs", func(ctx context.Context) error {
		res, err := s.analytics.ManualJobKPIs(ctx, tenantID, jobWindow)
		if err != nil {
			return err
		}
		data.ManualJobs = res
		return nil
	})
	section("financials", func(ctx context.Context) error {
		res, err := s.analytics.FinancialSummary(ctx, tenantID, now)
		if err != nil {
			return err
		}
		data.Financials = res
		return nil
	})
	section("insights", func(ctx context.Context) error {
		res, err := s.analytics.Insights(ctx, tenantID, now)
		if err != nil {
			return err
		}
		data.Insights = res
		return nil
	})
	section("lowStock", func(ctx context.Context) error {
		res, err := s.inventory.LowStock(ctx, tenantID)
		if err != nil {
			return err
		}
		data.LowStock = res
		return nil
	})

	// Section goroutines never return errors, so Wait only synchronizes.
	_ = g.Wait()
	close(partial)
	for name := range partial {
		data.Partial = append(data.Partial, name)
	}

	s.logger.Debug("dashboard built",
		zap.String("tenant_id", tenantID),
		zap.Int("partial_sections", len(data.Partial)))

	return data, nil
}
