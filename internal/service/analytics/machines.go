package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/mamoudk/plantops/internal/domain/models"
	"github.com/mamoudk/plantops/internal/repository/mongodb"
	"github.com/mamoudk/plantops/internal/service/metrics"
)

// MachineKPI is the averaged KPI set of one machine over the queried window.
// Percent-valued fields are 0..100.
type MachineKPI struct {
	MachineID       string  `json:"machineId"`
	MachineName     string  `json:"machineName"`
	Runs            int     `json:"runs"`
	AvailabilityPct float64 `json:"availabilityPct"`
	PerformancePct  float64 `json:"performancePct"`
	QualityPct      float64 `json:"qualityPct"`
	OEEPct          float64 `json:"oeePct"`
	TotalDowntime   float64 `json:"totalDowntime"`
	TotalUnits      float64 `json:"totalUnits"`
	ScrapUnits      float64 `json:"scrapUnits"`
	EnergyKWh       float64 `json:"energyKwh"`
}

// MachineKPIResult is the shaped per-machine KPI payload.
type MachineKPIResult struct {
	Overall   MachineKPI   `json:"overall"`
	Breakdown []MachineKPI `json:"breakdown"`
}

// MachineKPIs groups machine runs by machine and averages each KPI over the
// group. This endpoint uses the percent-based formula set: availability from
// the run window, performance as the direct cycle-time ratio, and OEE composed
// from the three percentages.
func (s *Service) MachineKPIs(ctx context.Context, tenantID string, f mongodb.ProductionFilter) (MachineKPIResult, error) {
	records, err := s.productions.Find(ctx, tenantID, f)
	if err != nil {
		return MachineKPIResult{}, fmt.Errorf("load production records: %w", err)
	}
	if len(records) == 0 {
		return MachineKPIResult{}, models.ErrNoData
	}

	machines, err := s.machines.FindAll(ctx, tenantID)
	if err != nil {
		return MachineKPIResult{}, fmt.Errorf("load machines: %w", err)
	}
	names := make(map[string]string, len(machines))
	for _, m := range machines {
		names[m.ID] = m.Name
	}

	type accum struct {
		kpi          MachineKPI
		availability float64
		performance  float64
		quality      float64
	}

	groups := make(map[string]*accum)
	var order []string
	for _, rec := range records {
		g, ok := groups[rec.MachineID]
		if !ok {
			g = &accum{kpi: MachineKPI{MachineID: rec.MachineID, MachineName: names[rec.MachineID]}}
			groups[rec.MachineID] = g
			order = append(order, rec.MachineID)
		}

		g.kpi.Runs++
		g.availability += metrics.Availability(rec.ActualMachineRunTime, rec.TotalDowntime, rec.PlannedProductionTime)
		g.performance += metrics.PerformanceCycleRatio(rec.IdealCycleTime, rec.ActualMachineRunTime, rec.TotalUnitsProduced)
		g.quality += metrics.Quality(rec.GoodUnitsWithoutRework, rec.TotalUnitsProduced)
		g.kpi.TotalDowntime += rec.TotalDowntime
		g.kpi.TotalUnits += rec.TotalUnitsProduced
		g.kpi.ScrapUnits += rec.ScrapUnits
		g.kpi.EnergyKWh += rec.EnergyConsumedKWh
	}

	var overall MachineKPI
	var sumA, sumP, sumQ float64

	breakdown := make([]MachineKPI, 0, len(order))
	for _, id := range order {
		g := groups[id]
		n := float64(g.kpi.Runs)

		g.kpi.AvailabilityPct = metrics.Round2(g.availability / n * 100)
		g.kpi.PerformancePct = metrics.Round2(g.performance / n * 100)
		g.kpi.QualityPct = metrics.Round2(g.quality / n * 100)
		g.kpi.OEEPct = metrics.Round2(metrics.OEEFromPercents(g.kpi.AvailabilityPct, g.kpi.PerformancePct, g.kpi.QualityPct))

		overall.Runs += g.kpi.Runs
		overall.TotalDowntime += g.kpi.TotalDowntime
		overall.TotalUnits += g.kpi.TotalUnits
		overall.ScrapUnits += g.kpi.ScrapUnits
		overall.EnergyKWh += g.kpi.EnergyKWh
		sumA += g.kpi.AvailabilityPct
		sumP += g.kpi.PerformancePct
		sumQ += g.kpi.QualityPct

		breakdown = append(breakdown, g.kpi)
	}

	groupCount := float64(len(breakdown))
	overall.AvailabilityPct = metrics.Round2(sumA / groupCount)
	overall.PerformancePct = metrics.Round2(sumP / groupCount)
	overall.QualityPct = metrics.Round2(sumQ / groupCount)
	overall.OEEPct = metrics.Round2(metrics.OEEFromPercents(overall.AvailabilityPct, overall.PerformancePct, overall.QualityPct))

	return MachineKPIResult{Overall: overall, Breakdown: breakdown}, nil
}

// MachineReliability is the repair profile of one machine.
type MachineReliability struct {
	MachineID      string  `json:"machineId"`
	MachineName    string  `json:"machineName"`
	MTTR           float64 `json:"mttr"`
	MTBF           float64 `json:"mtbf"`
	RepairCount    int     `json:"repairCount"`
	BreakdownCount int     `json:"breakdownCount"`
	NextDue        string  `json:"nextMaintenanceDue,omitempty"`
}

// Reliability derives MTTR and MTBF per machine from the lifetime counters.
func (s *Service) Reliability(ctx context.Context, tenantID string) ([]MachineReliability, error) {
	machines, err := s.machines.FindAll(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("load machines: %w", err)
	}
	if len(machines) == 0 {
		return nil, models.ErrNoData
	}

	out := make([]MachineReliability, 0, len(machines))
	for _, m := range machines {
		rel := MachineReliability{
			MachineID:      m.ID,
			MachineName:    m.Name,
			MTTR:           metrics.Round2(metrics.MTTR(m.TotalRepairTime, m.RepairCount)),
			MTBF:           metrics.Round2(metrics.MTBF(m.TotalRunTime, m.BreakdownCount)),
			RepairCount:    m.RepairCount,
			BreakdownCount: m.BreakdownCount,
		}
		if !m.NextMaintenanceDate.IsZero() {
			rel.NextDue = m.NextMaintenanceDate.Format(time.RFC3339)
		}
		out = append(out, rel)
	}
	return out, nil
}
