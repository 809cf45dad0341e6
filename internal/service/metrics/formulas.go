// Package metrics holds the pure OEE and costing formulas. Functions here do
// no I/O and guard every division so that an empty or zero denominator yields
// 0 rather than NaN or Inf reaching a client.
package metrics

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

// ErrNonPositiveMargin signals that the selling price does not cover the
// variable cost per unit, so a break-even point does not exist.
var ErrNonPositiveMargin = errors.New("contribution margin is zero or negative")

// safeDiv returns a/b, or 0 when b is 0.
func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// Availability is (runTime − downtime) / plannedTime.
func Availability(runTime, downtime, plannedTime float64) float64 {
	return safeDiv(runTime-downtime, plannedTime)
}

// AvailabilityFromWindow is the alternate availability definition used by the
// machine-utilization endpoints: actual run time over the available window.
func AvailabilityFromWindow(actualRunTime, availableTime float64) float64 {
	return safeDiv(actualRunTime, availableTime)
}

// Performance is the ideal-output form: (idealCycleTime × unitsProduced) / runTime.
// Used by the production rollup endpoints.
func Performance(idealCycleTime, unitsProduced, runTime float64) float64 {
	return safeDiv(idealCycleTime*unitsProduced, runTime)
}

// PerformanceCycleRatio is the direct-ratio form: idealCycleTime / actualCycleTime,
// where actualCycleTime = runTime / unitsProduced. Used by the per-machine KPI
// endpoints. The two performance definitions intentionally coexist; each
// endpoint documents which one it applies.
func PerformanceCycleRatio(idealCycleTime, runTime, unitsProduced float64) float64 {
	actualCycleTime := safeDiv(runTime, unitsProduced)
	return safeDiv(idealCycleTime, actualCycleTime)
}

// Quality is goodUnitsWithoutRework / totalUnitsProduced.
func Quality(goodUnitsWithoutRework, totalUnitsProduced float64) float64 {
	return safeDiv(goodUnitsWithoutRework, totalUnitsProduced)
}

// OEE multiplies already-fractional availability, performance and quality.
func OEE(availability, performance, quality float64) float64 {
	return availability * performance * quality
}

// OEEFromPercents multiplies availability, performance and quality expressed
// as percentages (0..100 each) and returns a percentage. The /10000 divisor
// compensates for the two extra factors of 100.
func OEEFromPercents(availabilityPct, performancePct, qualityPct float64) float64 {
	return availabilityPct * performancePct * qualityPct / 10000
}

// YieldPercentage is goodUnits / totalUnits × 100.
func YieldPercentage(goodUnits, totalUnits float64) float64 {
	return safeDiv(goodUnits, totalUnits) * 100
}

// ReworkRatio is (goodUnits − goodUnitsWithoutRework) / totalUnits.
func ReworkRatio(goodUnits, goodUnitsWithoutRework, totalUnits float64) float64 {
	return safeDiv(goodUnits-goodUnitsWithoutRework, totalUnits)
}

// ScrapRate is scrapUnits / (scrapUnits + goodUnits).
func ScrapRate(scrapUnits, goodUnits float64) float64 {
	return safeDiv(scrapUnits, scrapUnits+goodUnits)
}

// CostPerUnit sums the embedded cost components of a catalog item, including
// every custom cost.
func CostPerUnit(materialCost, laborCost, machineCost, overheadCost float64, customCosts map[string]float64) float64 {
	total := materialCost + laborCost + machineCost + overheadCost
	for _, c := range customCosts {
		total += c
	}
	return total
}

// BreakEvenUnits is ceil(totalFixedCost / (avgSellingPrice − variableCostPerUnit)).
// It returns ErrNonPositiveMargin when the contribution margin is zero or
// negative. Decimal arithmetic keeps the division exact for money inputs.
func BreakEvenUnits(totalFixedCost, avgSellingPrice, variableCostPerUnit float64) (int64, error) {
	margin := decimal.NewFromFloat(avgSellingPrice).Sub(decimal.NewFromFloat(variableCostPerUnit))
	if margin.Sign() <= 0 {
		return 0, ErrNonPositiveMargin
	}

	units := decimal.NewFromFloat(totalFixedCost).Div(margin)
	return units.Ceil().IntPart(), nil
}

// MTTR is totalRepairTime / repairCount.
func MTTR(totalRepairTime float64, repairCount int) float64 {
	return safeDiv(totalRepairTime, float64(repairCount))
}

// MTBF is totalRunTime / breakdownCount.
func MTBF(totalRunTime float64, breakdownCount int) float64 {
	return safeDiv(totalRunTime, float64(breakdownCount))
}

// Round2 rounds to two decimal places, the precision used in shaped responses.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
