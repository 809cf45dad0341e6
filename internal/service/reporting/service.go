// Package reporting turns the merged dashboard document into a manager-facing
// daily report: a narrative summary, a persisted KPI snapshot, and an optional
// spreadsheet export row.
package reporting

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamoudk/plantops/internal/domain/models"
	"github.com/mamoudk/plantops/internal/service/dashboard"
)

const narrativeSystemPrompt = `You are an operations analyst for a manufacturing plant. ` +
	`You receive a JSON snapshot of the plant's KPIs: production rollups, machine OEE, ` +
	`product yield and scrap, financial margins and actionable insights. ` +
	`Write a short daily report in plain English for the plant manager: 3 to 5 sentences, ` +
	`lead with overall output and OEE, call out any insights, end with the financial position. ` +
	`No markdown, no bullet points.`

// DashboardBuilder assembles the consolidated KPI document for one tenant.
type DashboardBuilder interface {
	Build(ctx context.Context, tenantID string, now time.Time) (dashboard.Data, error)
}

// Narrator generates prose from a system prompt and a user prompt.
type Narrator interface {
	Narrate(ctx context.Context, system, prompt string) (string, error)
}

// SnapshotStore persists nightly KPI snapshots.
type SnapshotStore interface {
	Insert(ctx context.Context, snap models.KPISnapshot) (models.KPISnapshot, error)
	FindRecent(ctx context.Context, tenantID string, limit int) ([]models.KPISnapshot, error)
}

// RowExporter appends report rows to an external sheet and reads ranges back
// so the header row can be written exactly once.
type RowExporter interface {
	AppendRow(ctx context.Context, sheetRange string, values []interface{}) error
	ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error)
}

// Report is the generated daily report for one tenant.
type Report struct {
	TenantID    string         `json:"tenantId"`
	GeneratedAt time.Time      `json:"generatedAt"`
	Narrative   string         `json:"narrative"`
	Data        dashboard.Data `json:"data"`
}

// Service generates and distributes daily reports. The narrator and exporter
// are both optional; without a narrator the report falls back to a
// deterministic plain-text summary.
type Service struct {
	dashboards DashboardBuilder
	narrator   Narrator
	snapshots  SnapshotStore
	exporter   RowExporter
	sheetRange string
	headerOnce sync.Once
	logger     *zap.Logger
}

// NewService wires the reporting service. Pass nil narrator or exporter to
// disable those stages.
func NewService(d DashboardBuilder, n Narrator, snaps SnapshotStore, exp RowExporter, sheetRange string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sheetRange == "" {
		sheetRange = "Snapshots!A1"
	}
	return &Service{
		dashboards: d,
		narrator:   n,
		snapshots:  snaps,
		exporter:   exp,
		sheetRange: sheetRange,
		logger:     logger,
	}
}

// GenerateDailyReport builds the dashboard, narrates it, and returns the
// report without persisting anything.
func (s *Service) GenerateDailyReport(ctx context.Context, tenantID string, now time.Time) (Report, error) {
	data, err := s.dashboards.Build(ctx, tenantID, now)
	if err != nil {
		return Report{}, fmt.Errorf("build dashboard: %w", err)
	}

	narrative := s.narrate(ctx, data)

	return Report{
		TenantID:    tenantID,
		GeneratedAt: now.UTC(),
		Narrative:   narrative,
		Data:        data,
	}, nil
}

// SnapshotAndExport runs the full nightly pipeline for one tenant: generate
// the report, persist the KPI snapshot, and append the export row when an
// exporter is configured.
func (s *Service) SnapshotAndExport(ctx context.Context, tenantID string, now time.Time) (Report, error) {
	report, err := s.GenerateDailyReport(ctx, tenantID, now)
	if err != nil {
		return Report{}, err
	}

	snap := snapshotOf(report)
	if _, err := s.snapshots.Insert(ctx, snap); err != nil {
		return Report{}, fmt.Errorf("persist snapshot: %w", err)
	}

	if s.exporter != nil {
		s.headerOnce.Do(func() { s.ensureHeader(ctx) })
		row := []interface{}{
			snap.Date.Format("2006-01-02"),
			tenantID,
			snap.TotalUnits,
			snap.TotalScrap,
			snap.AverageOEE,
			snap.Revenue,
			snap.NetMargin,
			snap.InsightCount,
		}
		if err := s.exporter.AppendRow(ctx, s.sheetRange, row); err != nil {
			// Export failure must not lose the snapshot already persisted.
			s.logger.Error("sheet export failed",
				zap.String("tenant_id", tenantID),
				zap.Error(err))
		}
	}

	s.logger.Info("daily snapshot recorded",
		zap.String("tenant_id", tenantID),
		zap.Float64("total_units", snap.TotalUnits),
		zap.Float64("average_oee", snap.AverageOEE))

	return report, nil
}

// ensureHeader writes the column header row when the export sheet is still
// empty. Failures are logged only; the data row append proceeds regardless.
func (s *Service) ensureHeader(ctx context.Context) {
	rows, err := s.exporter.ReadRange(ctx, s.sheetRange)
	if err != nil {
		s.logger.Warn("sheet header check failed", zap.Error(err))
		return
	}
	if len(rows) > 0 {
		return
	}

	header := []interface{}{"date", "tenant", "totalUnits", "totalScrap", "averageOee", "revenue", "netMargin", "insightCount"}
	if err := s.exporter.AppendRow(ctx, s.sheetRange, header); err != nil {
		s.logger.Warn("sheet header write failed", zap.Error(err))
	}
}

// RecentSnapshots returns the tenant's most recent persisted snapshots.
func (s *Service) RecentSnapshots(ctx context.Context, tenantID string, limit int) ([]models.KPISnapshot, error) {
	if limit <= 0 {
		limit = 30
	}
	return s.snapshots.FindRecent(ctx, tenantID, limit)
}

func (s *Service) narrate(ctx context.Context, data dashboard.Data) string {
	if s.narrator == nil {
		return fallbackNarrative(data)
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fallbackNarrative(data)
	}

	text, err := s.narrator.Narrate(ctx, narrativeSystemPrompt, string(payload))
	if err != nil {
		s.logger.Warn("ai narration failed, using fallback", zap.Error(err))
		return fallbackNarrative(data)
	}
	return text
}

// fallbackNarrative is the deterministic summary used when no AI provider is
// configured or the call fails.
func fallbackNarrative(data dashboard.Data) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Daily report for %s. ", data.GeneratedAt.Format("2006-01-02"))
	fmt.Fprintf(&b, "Last 7 days: %.0f units produced, %.0f scrapped (yield %.1f%%). ",
		data.Daily.Overall.TotalUnits, data.Daily.Overall.ScrapUnits, data.Daily.Overall.YieldPct)
	fmt.Fprintf(&b, "Plant OEE averaged %.1f%% across %d machines. ",
		data.Machines.Overall.OEEPct, len(data.Machines.Breakdown))

	if n := len(data.Insights); n > 0 {
		fmt.Fprintf(&b, "%d KPI alerts need attention. ", n)
	}
	if n := len(data.LowStock); n > 0 {
		fmt.Fprintf(&b, "%d raw materials are at or below their reorder point. ", n)
	}

	fmt.Fprintf(&b, "Revenue %.2f with a net margin of %.2f.",
		data.Financials.Revenue, data.Financials.NetMargin)

	return b.String()
}

func snapshotOf(r Report) models.KPISnapshot {
	return models.KPISnapshot{
		CreatedBy:    r.TenantID,
		Date:         r.GeneratedAt.Truncate(24 * time.Hour),
		AverageOEE:   r.Data.Machines.Overall.OEEPct,
		TotalUnits:   r.Data.Daily.Overall.TotalUnits,
		TotalScrap:   r.Data.Daily.Overall.ScrapUnits,
		Revenue:      r.Data.Financials.Revenue,
		NetMargin:    r.Data.Financials.NetMargin,
		InsightCount: len(r.Data.Insights),
		GeneratedAt:  r.GeneratedAt,
	}
}
