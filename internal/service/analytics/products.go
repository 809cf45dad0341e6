package analytics

import (
	"context"
	"fmt"

	"github.com/mamoudk/plantops/internal/domain/models"
	"github.com/mamoudk/plantops/internal/repository/mongodb"
	"github.com/mamoudk/plantops/internal/service/metrics"
)

// MaterialVariance compares actual against estimated usage for one material
// across the grouped runs.
type MaterialVariance struct {
	MaterialID string  `json:"materialId"`
	Actual     float64 `json:"actual"`
	Estimated  float64 `json:"estimated"`
	Variance   float64 `json:"variance"`
}

// ProductKPI is the aggregated KPI set of one product over the queried window.
type ProductKPI struct {
	ProductID   string             `json:"productId"`
	ProductName string             `json:"productName"`
	Runs        int                `json:"runs"`
	TotalUnits  float64            `json:"totalUnits"`
	GoodUnits   float64            `json:"goodUnits"`
	ScrapUnits  float64            `json:"scrapUnits"`
	YieldPct    float64            `json:"yieldPct"`
	ScrapRate   float64            `json:"scrapRate"`
	ReworkRatio float64            `json:"reworkRatio"`
	CostPerUnit float64            `json:"costPerUnit"`
	Materials   []MaterialVariance `json:"materials,omitempty"`
}

// ProductKPIResult is the shaped per-product KPI payload.
type ProductKPIResult struct {
	Overall   ProductKPI   `json:"overall"`
	Breakdown []ProductKPI `json:"breakdown"`
}

// ProductKPIs groups product runs by product and aggregates yield, scrap,
// rework and material variance per group. Cost per unit comes from the
// catalog's embedded cost components.
func (s *Service) ProductKPIs(ctx context.Context, tenantID string, f mongodb.ProductProductionFilter) (ProductKPIResult, error) {
	runs, err := s.productRuns.Find(ctx, tenantID, f)
	if err != nil {
		return ProductKPIResult{}, fmt.Errorf("load product runs: %w", err)
	}
	if len(runs) == 0 {
		return ProductKPIResult{}, models.ErrNoData
	}

	products, err := s.products.FindAll(ctx, tenantID)
	if err != nil {
		return ProductKPIResult{}, fmt.Errorf("load products: %w", err)
	}
	catalog := make(map[string]models.Product, len(products))
	for _, p := range products {
		catalog[p.ID] = p
	}

	type accum struct {
		kpi       ProductKPI
		goodNoRwk float64
		actual    map[string]float64
		estimated map[string]float64
		matOrder  []string
	}

	groups := make(map[string]*accum)
	var order []string
	for _, run := range runs {
		g, ok := groups[run.ProductID]
		if !ok {
			g = &accum{
				kpi:       ProductKPI{ProductID: run.ProductID},
				actual:    map[string]float64{},
				estimated: map[string]float64{},
			}
			if p, found := catalog[run.ProductID]; found {
				g.kpi.ProductName = p.Name
				g.kpi.CostPerUnit = metrics.Round2(metrics.CostPerUnit(
					p.Costs.MaterialCost, p.Costs.LaborCost, p.Costs.MachineCost, p.Costs.OverheadCost, p.Costs.CustomCosts))
			}
			groups[run.ProductID] = g
			order = append(order, run.ProductID)
		}

		g.kpi.Runs++
		g.kpi.TotalUnits += run.TotalUnitsProduced
		g.kpi.GoodUnits += run.GoodUnitsProduced
		g.kpi.ScrapUnits += run.ScrapUnits
		g.goodNoRwk += run.GoodUnitsWithoutRework

		for _, u := range run.ActualMaterialUsage {
			if _, seen := g.actual[u.MaterialID]; !seen {
				if _, est := g.estimated[u.MaterialID]; !est {
					g.matOrder = append(g.matOrder, u.MaterialID)
				}
			}
			g.actual[u.MaterialID] += u.Quantity
		}
		for _, u := range run.EstimatedMaterialUsage {
			if _, seen := g.estimated[u.MaterialID]; !seen {
				if _, act := g.actual[u.MaterialID]; !act {
					g.matOrder = append(g.matOrder, u.MaterialID)
				}
			}
			g.estimated[u.MaterialID] += u.Quantity
		}
	}

	var overall ProductKPI
	var overallGoodNoRwk float64

	breakdown := make([]ProductKPI, 0, len(order))
	for _, id := range order {
		g := groups[id]

		g.kpi.YieldPct = metrics.Round2(metrics.YieldPercentage(g.kpi.GoodUnits, g.kpi.TotalUnits))
		g.kpi.ScrapRate = metrics.Round2(metrics.ScrapRate(g.kpi.ScrapUnits, g.kpi.GoodUnits))
		g.kpi.ReworkRatio = metrics.Round2(metrics.ReworkRatio(g.kpi.GoodUnits, g.goodNoRwk, g.kpi.TotalUnits))

		for _, matID := range g.matOrder {
			g.kpi.Materials = append(g.kpi.Materials, MaterialVariance{
				MaterialID: matID,
				Actual:     g.actual[matID],
				Estimated:  g.estimated[matID],
				Variance:   metrics.Round2(g.actual[matID] - g.estimated[matID]),
			})
		}

		overall.Runs += g.kpi.Runs
		overall.TotalUnits += g.kpi.TotalUnits
		overall.GoodUnits += g.kpi.GoodUnits
		overall.ScrapUnits += g.kpi.ScrapUnits
		overallGoodNoRwk += g.goodNoRwk

		breakdown = append(breakdown, g.kpi)
	}

	overall.YieldPct = metrics.Round2(metrics.YieldPercentage(overall.GoodUnits, overall.TotalUnits))
	overall.ScrapRate = metrics.Round2(metrics.ScrapRate(overall.ScrapUnits, overall.GoodUnits))
	overall.ReworkRatio = metrics.Round2(metrics.ReworkRatio(overall.GoodUnits, overallGoodNoRwk, overall.TotalUnits))

	return ProductKPIResult{Overall: overall, Breakdown: breakdown}, nil
}

// ManualJobKPI is the aggregated KPI set of one manual job.
type ManualJobKPI struct {
	ManualJobID   string  `json:"manualJobId"`
	JobName       string  `json:"jobName"`
	Runs          int     `json:"runs"`
	OutputUnits   float64 `json:"outputUnits"`
	ScrapUnits    float64 `json:"scrapUnits"`
	ReworkUnits   float64 `json:"reworkUnits"`
	TotalMinutes  float64 `json:"totalMinutes"`
	UnitsPerHour  float64 `json:"unitsPerHour"`
	CostPerUnit   float64 `json:"costPerUnit"`
	ScrapRate     float64 `json:"scrapRate"`
}

// ManualJobKPIs groups manual-job runs by job and derives throughput and cost
// per unit from each job's cost model.
func (s *Service) ManualJobKPIs(ctx context.Context, tenantID string, f mongodb.ManualJobRunFilter) ([]ManualJobKPI, error) {
	runs, err := s.manualJobRuns.Find(ctx, tenantID, f)
	if err != nil {
		return nil, fmt.Errorf("load manual job runs: %w", err)
	}
	if len(runs) == 0 {
		return nil, models.ErrNoData
	}

	jobs, err := s.manualJobs.FindAll(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("load manual jobs: %w", err)
	}
	jobByID := make(map[string]models.ManualJob, len(jobs))
	for _, j := range jobs {
		jobByID[j.ID] = j
	}

	groups := make(map[string]*ManualJobKPI)
	var order []string
	days := make(map[string]map[string]bool) // jobID -> distinct run days, for fixed_per_day costing
	for _, run := range runs {
		g, ok := groups[run.ManualJobID]
		if !ok {
			g = &ManualJobKPI{ManualJobID: run.ManualJobID, JobName: jobByID[run.ManualJobID].Name}
			groups[run.ManualJobID] = g
			days[run.ManualJobID] = map[string]bool{}
			order = append(order, run.ManualJobID)
		}

		g.Runs++
		g.OutputUnits += run.OutputQuantity
		g.ScrapUnits += run.ScrapQuantity
		g.ReworkUnits += run.ReworkQuantity
		g.TotalMinutes += run.ActualTimeTaken
		days[run.ManualJobID][DayKey(run.Date)] = true
	}

	out := make([]ManualJobKPI, 0, len(order))
	for _, id := range order {
		g := groups[id]

		if g.TotalMinutes > 0 {
			g.UnitsPerHour = metrics.Round2(g.OutputUnits / (g.TotalMinutes / 60))
		}
		g.ScrapRate = metrics.Round2(metrics.ScrapRate(g.ScrapUnits, g.OutputUnits))
		g.CostPerUnit = metrics.Round2(manualJobCostPerUnit(jobByID[id], g.OutputUnits, g.TotalMinutes, len(days[id])))

		out = append(out, *g)
	}
	return out, nil
}

// manualJobCostPerUnit prices one output unit under the job's cost model.
func manualJobCostPerUnit(job models.ManualJob, outputUnits, totalMinutes float64, runDays int) float64 {
	if outputUnits == 0 {
		return 0
	}

	switch job.CostModel {
	case models.ManualJobHourly:
		return job.Rate * (totalMinutes / 60) / outputUnits
	case models.ManualJobPerUnit:
		return job.Rate
	case models.ManualJobFixedPerDay:
		return job.Rate * float64(runDays) / outputUnits
	default:
		return 0
	}
}
