package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/mamoudk/plantops/internal/domain/models"
	"github.com/mamoudk/plantops/internal/repository/mongodb"
	"github.com/mamoudk/plantops/internal/service/metrics"
)

// targetHeuristic scales actual output when no planned time exists to derive
// a target from.
const targetHeuristic = 1.1

// Bucket is one zero-filled time window of a production rollup.
type Bucket struct {
	Key         string  `json:"key"`
	TotalUnits  float64 `json:"totalUnits"`
	GoodUnits   float64 `json:"goodUnits"`
	ScrapUnits  float64 `json:"scrapUnits"`
	RunTime     float64 `json:"runTime"`
	Downtime    float64 `json:"downtime"`
	TargetUnits float64 `json:"targetUnits"`
}

// RollupTotals summarizes all buckets of a rollup.
type RollupTotals struct {
	TotalUnits float64 `json:"totalUnits"`
	GoodUnits  float64 `json:"goodUnits"`
	ScrapUnits float64 `json:"scrapUnits"`
	RunTime    float64 `json:"runTime"`
	Downtime   float64 `json:"downtime"`
	YieldPct   float64 `json:"yieldPct"`
}

// RollupResult is the shaped payload of a time-bucketed rollup.
type RollupResult struct {
	Overall   RollupTotals `json:"overall"`
	Breakdown []Bucket     `json:"breakdown"`
}

// DailyRollup buckets the last 7 days of machine runs into per-day windows,
// zero-filling days without records. Keys are YYYY-MM-DD.
func (s *Service) DailyRollup(ctx context.Context, tenantID, machineID string, now time.Time) (RollupResult, error) {
	from := now.UTC().AddDate(0, 0, -6).Truncate(24 * time.Hour)

	keys := make([]string, 0, 7)
	for i := 0; i < 7; i++ {
		keys = append(keys, DayKey(from.AddDate(0, 0, i)))
	}

	return s.rollup(ctx, tenantID, mongodb.ProductionFilter{MachineID: machineID, From: from, To: now.UTC()}, keys, func(p models.Production) string {
		return DayKey(p.Date)
	})
}

// WeeklyRollup buckets the last 4 ISO weeks into per-week windows. Keys are
// <isoYear>-W<isoWeek>.
func (s *Service) WeeklyRollup(ctx context.Context, tenantID, machineID string, now time.Time) (RollupResult, error) {
	from := mondayOf(now.UTC()).AddDate(0, 0, -21)

	keys := make([]string, 0, 4)
	for i := 3; i >= 0; i-- {
		keys = append(keys, WeekKey(now.UTC().AddDate(0, 0, -7*i)))
	}

	return s.rollup(ctx, tenantID, mongodb.ProductionFilter{MachineID: machineID, From: from, To: now.UTC()}, keys, func(p models.Production) string {
		return WeekKey(p.Date)
	})
}

// HourlyRollup buckets the last 24 hours into hour-of-day windows. Keys are
// formatted HH:00.
func (s *Service) HourlyRollup(ctx context.Context, tenantID, machineID string, now time.Time) (RollupResult, error) {
	from := now.UTC().Add(-24 * time.Hour)

	keys := make([]string, 0, 24)
	for i := 23; i >= 0; i-- {
		keys = append(keys, hourKey(now.UTC().Add(-time.Duration(i)*time.Hour)))
	}

	return s.rollup(ctx, tenantID, mongodb.ProductionFilter{MachineID: machineID, From: from, To: now.UTC()}, keys, func(p models.Production) string {
		return hourKey(p.Date)
	})
}

func hourKey(t time.Time) string {
	return fmt.Sprintf("%02d:00", t.UTC().Hour())
}

// mondayOf truncates t to the Monday starting its ISO week.
func mondayOf(t time.Time) time.Time {
	t = t.Truncate(24 * time.Hour)
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return t.AddDate(0, 0, 1-weekday)
}

// rollup fetches the scoped records, groups them by keyFn into the ordered,
// zero-filled key sequence, and sums the counters per window.
func (s *Service) rollup(ctx context.Context, tenantID string, filter mongodb.ProductionFilter, keys []string, keyFn func(models.Production) string) (RollupResult, error) {
	records, err := s.productions.Find(ctx, tenantID, filter)
	if err != nil {
		return RollupResult{}, fmt.Errorf("load production records: %w", err)
	}
	if len(records) == 0 {
		return RollupResult{}, models.ErrNoData
	}

	buckets := make(map[string]*Bucket, len(keys))
	ordered := make([]*Bucket, 0, len(keys))
	for _, k := range keys {
		b := &Bucket{Key: k}
		buckets[k] = b
		ordered = append(ordered, b)
	}

	// planned/actual time per bucket feeds the target derivation
	planned := make(map[string]float64, len(keys))
	actual := make(map[string]float64, len(keys))

	var overall RollupTotals
	for _, rec := range records {
		key := keyFn(rec)
		b, ok := buckets[key]
		if !ok {
			// record falls outside the fixed window set (boundary race); skip
			continue
		}

		b.TotalUnits += rec.TotalUnitsProduced
		b.GoodUnits += rec.GoodUnitsProduced
		b.ScrapUnits += rec.ScrapUnits
		b.RunTime += rec.ActualMachineRunTime
		b.Downtime += rec.TotalDowntime
		planned[key] += rec.PlannedProductionTime
		actual[key] += rec.ActualProductionTime

		overall.TotalUnits += rec.TotalUnitsProduced
		overall.GoodUnits += rec.GoodUnitsProduced
		overall.ScrapUnits += rec.ScrapUnits
		overall.RunTime += rec.ActualMachineRunTime
		overall.Downtime += rec.TotalDowntime
	}

	breakdown := make([]Bucket, 0, len(ordered))
	for _, b := range ordered {
		b.TargetUnits = metrics.Round2(targetUnits(b.TotalUnits, planned[b.Key], actual[b.Key]))
		breakdown = append(breakdown, *b)
	}

	overall.YieldPct = metrics.Round2(metrics.YieldPercentage(overall.GoodUnits, overall.TotalUnits))

	return RollupResult{Overall: overall, Breakdown: breakdown}, nil
}

// targetUnits derives a bucket target from the planned/actual time ratio,
// falling back to the flat heuristic when planned time is absent.
func targetUnits(units, plannedTime, actualTime float64) float64 {
	if plannedTime > 0 && actualTime > 0 {
		return units * plannedTime / actualTime
	}
	return units * targetHeuristic
}
