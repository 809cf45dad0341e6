package reporting

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mamoudk/plantops/internal/domain/models"
	"github.com/mamoudk/plantops/internal/service/analytics"
	"github.com/mamoudk/plantops/internal/service/dashboard"
)

type fakeDashboards struct {
	data dashboard.Data
	err  error
}

func (f *fakeDashboards) Build(_ context.Context, tenantID string, now time.Time) (dashboard.Data, error) {
	if f.err != nil {
		return dashboard.Data{}, f.err
	}
	d := f.data
	d.TenantID = tenantID
	d.GeneratedAt = now.UTC()
	return d, nil
}

type fakeNarrator struct {
	text string
	err  error

	gotSystem string
	gotPrompt string
}

func (f *fakeNarrator) Narrate(_ context.Context, system, prompt string) (string, error) {
	f.gotSystem = system
	f.gotPrompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

type fakeSnapshots struct {
	inserted []models.KPISnapshot
}

func (f *fakeSnapshots) Insert(_ context.Context, snap models.KPISnapshot) (models.KPISnapshot, error) {
	snap.ID = "snap-1"
	f.inserted = append(f.inserted, snap)
	return snap, nil
}

func (f *fakeSnapshots) FindRecent(_ context.Context, tenantID string, limit int) ([]models.KPISnapshot, error) {
	var out []models.KPISnapshot
	for i := len(f.inserted) - 1; i >= 0 && len(out) < limit; i-- {
		if f.inserted[i].CreatedBy == tenantID {
			out = append(out, f.inserted[i])
		}
	}
	return out, nil
}

type fakeExporter struct {
	rows  [][]interface{}
	err   error
	reads int
}

func (f *fakeExporter) AppendRow(_ context.Context, _ string, values []interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.rows = append(f.rows, values)
	return nil
}

func (f *fakeExporter) ReadRange(_ context.Context, _ string) ([][]interface{}, error) {
	f.reads++
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func sampleData() dashboard.Data {
	return dashboard.Data{
		Daily: analytics.RollupResult{
			Overall: analytics.RollupTotals{TotalUnits: 700, ScrapUnits: 21, YieldPct: 97},
		},
		Machines: analytics.MachineKPIResult{
			Overall:   analytics.MachineKPI{OEEPct: 72.5},
			Breakdown: []analytics.MachineKPI{{MachineID: "m1"}, {MachineID: "m2"}},
		},
		Financials: analytics.FinancialSummary{Revenue: 50000, NetMargin: 12000},
		Insights:   []analytics.Insight{{Kind: "high_scrap"}, {Kind: "low_oee"}},
	}
}

var reportTime = time.Date(2026, 3, 15, 1, 0, 0, 0, time.UTC)

func TestGenerateDailyReportUsesNarrator(t *testing.T) {
	narrator := &fakeNarrator{text: "Output held steady at 700 units."}
	svc := NewService(&fakeDashboards{data: sampleData()}, narrator, &fakeSnapshots{}, nil, "", nil)

	report, err := svc.GenerateDailyReport(context.Background(), "tenant-1", reportTime)
	if err != nil {
		t.Fatalf("GenerateDailyReport: %v", err)
	}

	if report.Narrative != "Output held steady at 700 units." {
		t.Errorf("narrative = %q", report.Narrative)
	}
	if !strings.Contains(narrator.gotPrompt, "\"totalUnits\":700") {
		t.Errorf("prompt missing dashboard JSON: %q", narrator.gotPrompt)
	}
	if narrator.gotSystem == "" {
		t.Error("system prompt was empty")
	}
}

func TestNarrationFallsBackOnError(t *testing.T) {
	narrator := &fakeNarrator{err: errors.New("rate limited")}
	svc := NewService(&fakeDashboards{data: sampleData()}, narrator, &fakeSnapshots{}, nil, "", nil)

	report, err := svc.GenerateDailyReport(context.Background(), "tenant-1", reportTime)
	if err != nil {
		t.Fatalf("GenerateDailyReport: %v", err)
	}

	for _, want := range []string{"700 units", "72.5%", "2 KPI alerts", "50000.00"} {
		if !strings.Contains(report.Narrative, want) {
			t.Errorf("fallback narrative missing %q: %q", want, report.Narrative)
		}
	}
}

func TestNilNarratorUsesFallback(t *testing.T) {
	svc := NewService(&fakeDashboards{data: sampleData()}, nil, &fakeSnapshots{}, nil, "", nil)

	report, err := svc.GenerateDailyReport(context.Background(), "tenant-1", reportTime)
	if err != nil {
		t.Fatalf("GenerateDailyReport: %v", err)
	}
	if !strings.Contains(report.Narrative, "Daily report for 2026-03-15") {
		t.Errorf("narrative = %q", report.Narrative)
	}
}

func TestSnapshotAndExport(t *testing.T) {
	snaps := &fakeSnapshots{}
	exporter := &fakeExporter{}
	svc := NewService(&fakeDashboards{data: sampleData()}, nil, snaps, exporter, "Snapshots!A1", nil)

	if _, err := svc.SnapshotAndExport(context.Background(), "tenant-1", reportTime); err != nil {
		t.Fatalf("SnapshotAndExport: %v", err)
	}

	if len(snaps.inserted) != 1 {
		t.Fatalf("snapshots persisted = %d, want 1", len(snaps.inserted))
	}
	snap := snaps.inserted[0]
	if snap.CreatedBy != "tenant-1" || snap.TotalUnits != 700 || snap.AverageOEE != 72.5 || snap.InsightCount != 2 {
		t.Errorf("snapshot = %+v", snap)
	}

	if len(exporter.rows) != 2 {
		t.Fatalf("exported rows = %d, want header plus data row", len(exporter.rows))
	}
	if exporter.rows[0][0] != "date" || exporter.rows[0][1] != "tenant" {
		t.Errorf("header row = %v", exporter.rows[0])
	}
	if exporter.rows[1][0] != "2026-03-15" || exporter.rows[1][1] != "tenant-1" {
		t.Errorf("data row = %v", exporter.rows[1])
	}
}

func TestExportSkipsHeaderWhenSheetHasRows(t *testing.T) {
	exporter := &fakeExporter{rows: [][]interface{}{{"date", "tenant"}}}
	svc := NewService(&fakeDashboards{data: sampleData()}, nil, &fakeSnapshots{}, exporter, "Snapshots!A1", nil)

	for i := 0; i < 2; i++ {
		if _, err := svc.SnapshotAndExport(context.Background(), "tenant-1", reportTime.AddDate(0, 0, i)); err != nil {
			t.Fatalf("SnapshotAndExport %d: %v", i, err)
		}
	}

	if len(exporter.rows) != 3 {
		t.Errorf("rows = %d, want the seeded header plus 2 data rows", len(exporter.rows))
	}
	if exporter.reads != 1 {
		t.Errorf("header checked %d times, want once", exporter.reads)
	}
}

func TestExportFailureKeepsSnapshot(t *testing.T) {
	snaps := &fakeSnapshots{}
	exporter := &fakeExporter{err: errors.New("quota exceeded")}
	svc := NewService(&fakeDashboards{data: sampleData()}, nil, snaps, exporter, "", nil)

	if _, err := svc.SnapshotAndExport(context.Background(), "tenant-1", reportTime); err != nil {
		t.Fatalf("SnapshotAndExport: %v", err)
	}
	if len(snaps.inserted) != 1 {
		t.Errorf("snapshot lost on export failure")
	}
}

func TestRecentSnapshotsDefaultsLimit(t *testing.T) {
	snaps := &fakeSnapshots{}
	svc := NewService(&fakeDashboards{data: sampleData()}, nil, snaps, nil, "", nil)

	for i := 0; i < 3; i++ {
		if _, err := svc.SnapshotAndExport(context.Background(), "tenant-1", reportTime.AddDate(0, 0, i)); err != nil {
			t.Fatalf("SnapshotAndExport %d: %v", i, err)
		}
	}

	got, err := svc.RecentSnapshots(context.Background(), "tenant-1", 0)
	if err != nil {
		t.Fatalf("RecentSnapshots: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("snapshots = %d, want 3", len(got))
	}
}

func TestDashboardFailurePropagates(t *testing.T) {
	dbErr := errors.New("connection reset")
	svc := NewService(&fakeDashboards{err: dbErr}, nil, &fakeSnapshots{}, nil, "", nil)

	if _, err := svc.GenerateDailyReport(context.Background(), "tenant-1", reportTime); !errors.Is(err, dbErr) {
		t.Errorf("err = %v, want wrapped build failure", err)
	}
}
