package analytics

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/mamoudk/plantops/internal/domain/models"
	"github.com/mamoudk/plantops/internal/repository/mongodb"
)

// Threshold predicates surfacing outliers. Values mirror the dashboards the
// payload feeds.
const (
	scrapRateThreshold = 0.05 // scrap rate above 5%
	oeeThresholdPct    = 75.0 // OEE below 75%
	downtimeThreshold  = 30.0 // minutes of downtime per window
	insightTopN        = 3
)

// Insight is one surfaced outlier.
type Insight struct {
	Kind     string  `json:"kind"` // "high_scrap", "low_oee", "high_downtime"
	EntityID string  `json:"entityId"`
	Entity   string  `json:"entity"`
	Value    float64 `json:"value"`
	Limit    float64 `json:"limit"`
}

// Insights filters the grouped machine and product KPIs by the threshold
// predicates and returns the worst offenders, at most three per category.
func (s *Service) Insights(ctx context.Context, tenantID string, now time.Time) ([]Insight, error) {
	from := now.UTC().AddDate(0, 0, -30)

	var insights []Insight

	machineKPIs, err := s.MachineKPIs(ctx, tenantID, mongodb.ProductionFilter{From: from, To: now.UTC()})
	switch {
	case errors.Is(err, models.ErrNoData):
		// fall through; product insights may still exist
	case err != nil:
		return nil, fmt.Errorf("machine insights: %w", err)
	default:
		insights = append(insights, lowOEE(machineKPIs.Breakdown)...)
		insights = append(insights, highDowntime(machineKPIs.Breakdown)...)
	}

	productKPIs, err := s.ProductKPIs(ctx, tenantID, mongodb.ProductProductionFilter{From: from, To: now.UTC()})
	switch {
	case errors.Is(err, models.ErrNoData):
	case err != nil:
		return nil, fmt.Errorf("product insights: %w", err)
	default:
		insights = append(insights, highScrap(productKPIs.Breakdown)...)
	}

	if len(insights) == 0 {
		return nil, models.ErrNoData
	}
	return insights, nil
}

func lowOEE(kpis []MachineKPI) []Insight {
	var hits []Insight
	for _, k := range kpis {
		if k.OEEPct < oeeThresholdPct {
			hits = append(hits, Insight{
				Kind:     "low_oee",
				EntityID: k.MachineID,
				Entity:   k.MachineName,
				Value:    k.OEEPct,
				Limit:    oeeThresholdPct,
			})
		}
	}
	// worst first: lowest OEE leads
	sort.Slice(hits, func(i, j int) bool { return hits[i].Value < hits[j].Value })
	return truncate(hits)
}

func highDowntime(kpis []MachineKPI) []Insight {
	var hits []Insight
	for _, k := range kpis {
		if k.TotalDowntime > downtimeThreshold {
			hits = append(hits, Insight{
				Kind:     "high_downtime",
				EntityID: k.MachineID,
				Entity:   k.MachineName,
				Value:    k.TotalDowntime,
				Limit:    downtimeThreshold,
			})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Value > hits[j].Value })
	return truncate(hits)
}

func highScrap(kpis []ProductKPI) []Insight {
	var hits []Insight
	for _, k := range kpis {
		if k.ScrapRate > scrapRateThreshold {
			hits = append(hits, Insight{
				Kind:     "high_scrap",
				EntityID: k.ProductID,
				Entity:   k.ProductName,
				Value:    k.ScrapRate,
				Limit:    scrapRateThreshold,
			})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Value > hits[j].Value })
	return truncate(hits)
}

func truncate(hits []Insight) []Insight {
	if len(hits) > insightTopN {
		return hits[:insightTopN]
	}
	return hits
}
