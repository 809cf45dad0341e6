package dashboard

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/mamoudk/plantops/internal/domain/models"
	"github.com/mamoudk/plantops/internal/repository/mongodb"
	"github.com/mamoudk/plantops/internal/service/analytics"
)

type fakeAnalytics struct {
	daily       analytics.RollupResult
	weekly      analytics.RollupResult
	machines    analytics.MachineKPIResult
	reliability []analytics.MachineReliability
	products    analytics.ProductKPIResult
	manualJobs  []analytics.ManualJobKPI
	financials  analytics.FinancialSummary
	insights    []analytics.Insight

	errs map[string]error
}

func (f *fakeAnalytics) err(section string) error {
	if f.errs == nil {
		return nil
	}
	return f.errs[section]
}

func (f *fakeAnalytics) DailyRollup(_ context.Context, _, _ string, _ time.Time) (analytics.RollupResult, error) {
	return f.daily, f.err("daily")
}

func (f *fakeAnalytics) WeeklyRollup(_ context.Context, _, _ string, _ time.Time) (analytics.RollupResult, error) {
	return f.weekly, f.err("weekly")
}

func (f *fakeAnalytics) MachineKPIs(_ context.Context, _ string, _ mongodb.ProductionFilter) (analytics.MachineKPIResult, error) {
	return f.machines, f.err("machines")
}

func (f *fakeAnalytics) Reliability(_ context.Context, _ string) ([]analytics.MachineReliability, error) {
	return f.reliability, f.err("reliability")
}

func (f *fakeAnalytics) ProductKPIs(_ context.Context, _ string, _ mongodb.ProductProductionFilter) (analytics.ProductKPIResult, error) {
	return f.products, f.err("products")
}

func (f *fakeAnalytics) ManualJobKPIs(_ context.Context, _ string, _ mongodb.ManualJobRunFilter) ([]analytics.ManualJobKPI, error) {
	return f.manualJobs, f.err("manualJobs")
}

func (f *fakeAnalytics) FinancialSummary(_ context.Context, _ string, _ time.Time) (analytics.FinancialSummary, error) {
	return f.financials, f.err("financials")
}

func (f *fakeAnalytics) Insights(_ context.Context, _ string, _ time.Time) ([]analytics.Insight, error) {
	return f.insights, f.err("insights")
}

type fakeLowStock struct {
	items []models.RawMaterial
	err   error
}

func (f *fakeLowStock) LowStock(_ context.Context, _ string) ([]models.RawMaterial, error) {
	return f.items, f.err
}

func fullFake() *fakeAnalytics {
	return &fakeAnalytics{
		daily:  analytics.RollupResult{Overall: analytics.RollupTotals{TotalUnits: 700}},
		weekly: analytics.RollupResult{Overall: analytics.RollupTotals{TotalUnits: 2800}},
		machines: analytics.MachineKPIResult{
			Overall: analytics.MachineKPI{OEEPct: 64.13},
		},
		reliability: []analytics.MachineReliability{{MachineID: "m1", MTTR: 2}},
		products: analytics.ProductKPIResult{
			Overall: analytics.ProductKPI{TotalUnits: 350},
		},
		manualJobs: []analytics.ManualJobKPI{{ManualJobID: "j1", UnitsPerHour: 12}},
		financials: analytics.FinancialSummary{Revenue: 50000},
		insights:   []analytics.Insight{{Kind: "high_scrap", EntityID: "p1"}},
	}
}

func TestBuildMergesAllSections(t *testing.T) {
	fa := fullFake()
	stock := &fakeLowStock{items: []models.RawMaterial{{ID: "rm1", Name: "Steel"}}}
	svc := NewService(fa, stock, nil)

	now := time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC)
	data, err := svc.Build(context.Background(), "tenant-1", now)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if data.TenantID != "tenant-1" || !data.GeneratedAt.Equal(now) {
		t.Errorf("header = %q %v", data.TenantID, data.GeneratedAt)
	}
	if data.Daily.Overall.TotalUnits != 700 {
		t.Errorf("daily units = %v, want 700", data.Daily.Overall.TotalUnits)
	}
	if data.Weekly.Overall.TotalUnits != 2800 {
		t.Errorf("weekly units = %v, want 2800", data.Weekly.Overall.TotalUnits)
	}
	if data.Machines.Overall.OEEPct != 64.13 {
		t.Errorf("machine OEE = %v, want 64.13", data.Machines.Overall.OEEPct)
	}
	if len(data.Reliability) != 1 || len(data.ManualJobs) != 1 || len(data.Insights) != 1 {
		t.Errorf("section lengths = %d/%d/%d, want 1 each",
			len(data.Reliability), len(data.ManualJobs), len(data.Insights))
	}
	if data.Financials.Revenue != 50000 {
		t.Errorf("revenue = %v, want 50000", data.Financials.Revenue)
	}
	if len(data.LowStock) != 1 || data.LowStock[0].Name != "Steel" {
		t.Errorf("low stock = %+v", data.LowStock)
	}
	if len(data.Partial) != 0 {
		t.Errorf("partial = %v, want none", data.Partial)
	}
}

func TestBuildToleratesEmptySections(t *testing.T) {
	fa := fullFake()
	fa.errs = map[string]error{
		"machines": models.ErrNoData,
		"products": models.ErrNoData,
	}
	svc := NewService(fa, &fakeLowStock{}, nil)

	data, err := svc.Build(context.Background(), "tenant-1", time.Now())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if data.Machines.Overall.OEEPct != 0 {
		t.Errorf("empty machine section should stay zero, got %v", data.Machines.Overall.OEEPct)
	}
	if data.Daily.Overall.TotalUnits != 700 {
		t.Errorf("other sections must still populate, daily = %v", data.Daily.Overall.TotalUnits)
	}

	sort.Strings(data.Partial)
	want := []string{"machines", "products"}
	if len(data.Partial) != 2 || data.Partial[0] != want[0] || data.Partial[1] != want[1] {
		t.Errorf("partial = %v, want %v", data.Partial, want)
	}
}

func TestBuildDefaultsFailedSection(t *testing.T) {
	fa := fullFake()
	fa.errs = map[string]error{"financials": errors.New("connection reset")}
	svc := NewService(fa, &fakeLowStock{}, nil)

	data, err := svc.Build(context.Background(), "tenant-1", time.Now())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if data.Financials.Revenue != 0 {
		t.Errorf("failed section should stay zero, revenue = %v", data.Financials.Revenue)
	}
	if data.Daily.Overall.TotalUnits != 700 {
		t.Errorf("sibling sections must still populate, daily = %v", data.Daily.Overall.TotalUnits)
	}
	if len(data.Partial) != 1 || data.Partial[0] != "financials" {
		t.Errorf("partial = %v, want [financials]", data.Partial)
	}
}

func TestBuildDefaultsFailedStockSection(t *testing.T) {
	svc := NewService(fullFake(), &fakeLowStock{err: errors.New("cursor timeout")}, nil)

	data, err := svc.Build(context.Background(), "tenant-1", time.Now())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if len(data.LowStock) != 0 {
		t.Errorf("low stock = %+v, want empty", data.LowStock)
	}
	if data.Weekly.Overall.TotalUnits != 2800 {
		t.Errorf("sibling sections must still populate, weekly = %v", data.Weekly.Overall.TotalUnits)
	}
	if len(data.Partial) != 1 || data.Partial[0] != "lowStock" {
		t.Errorf("partial = %v, want [lowStock]", data.Partial)
	}
}
