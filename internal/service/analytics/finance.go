package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamoudk/plantops/internal/domain/models"
	"github.com/mamoudk/plantops/internal/service/metrics"
)

// FinancialSummary crosses order revenue with the prior month's cost
// snapshots. Percent fields are 0..100; BreakEvenUnits is 0 with
// MarginWarning set when no break-even point exists.
type FinancialSummary struct {
	PeriodMonth   string  `json:"periodMonth"`   // YYYY-MM used for cost snapshots
	PeriodQuarter string  `json:"periodQuarter"` // Q<n> <year> label of the query date
	Revenue       float64 `json:"revenue"`
	FixedCosts    float64 `json:"fixedCosts"`
	VariableCosts float64 `json:"variableCosts"`
	GrossMargin   float64 `json:"grossMargin"`
	OperatingEBITDA float64 `json:"operatingEbitda"`
	NetMargin     float64 `json:"netMargin"`
	NetMarginPct  float64 `json:"netMarginPct"`

	AvgSellingPrice     float64 `json:"avgSellingPrice"`
	VariableCostPerUnit float64 `json:"variableCostPerUnit"`
	BreakEvenUnits      int64   `json:"breakEvenUnits"`
	MarginWarning       string  `json:"marginWarning,omitempty"`
}

// FinancialSummary computes the revenue/cost rollup for the tenant as of now.
// All money arithmetic runs through decimals and is rounded once at the edge.
func (s *Service) FinancialSummary(ctx context.Context, tenantID string, now time.Time) (FinancialSummary, error) {
	orders, err := s.orders.FindAll(ctx, tenantID)
	if err != nil {
		return FinancialSummary{}, fmt.Errorf("load orders: %w", err)
	}
	if len(orders) == 0 {
		return FinancialSummary{}, models.ErrNoData
	}

	monthKey := PriorMonthKey(now)

	fixed, err := s.fixedCosts.FindLatest(ctx, tenantID, monthKey)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return FinancialSummary{}, fmt.Errorf("load fixed costs: %w", err)
	}
	variable, err := s.variableCosts.FindByMonth(ctx, tenantID, monthKey)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return FinancialSummary{}, fmt.Errorf("load variable costs: %w", err)
	}

	revenue := decimal.Zero
	priceSum := decimal.Zero
	var priced int
	for _, o := range orders {
		if o.Status == models.OrderFullyCancelled {
			continue
		}
		revenue = revenue.Add(decimal.NewFromFloat(o.QuantityDelivered).Mul(decimal.NewFromFloat(o.SellingPrice)))
		if o.SellingPrice > 0 {
			priceSum = priceSum.Add(decimal.NewFromFloat(o.SellingPrice))
			priced++
		}
	}

	avgPrice := decimal.Zero
	if priced > 0 {
		avgPrice = priceSum.Div(decimal.NewFromInt(int64(priced)))
	}

	fixedTotal := decimal.NewFromFloat(fixed.Total())
	variableTotal := decimal.NewFromFloat(variable.Total())

	gross := revenue.Sub(variableTotal)
	// Operating figure before depreciation: fixed costs minus the depreciation line.
	ebitda := gross.Sub(fixedTotal.Sub(decimal.NewFromFloat(fixed.Depreciation)))
	net := gross.Sub(fixedTotal)

	summary := FinancialSummary{
		PeriodMonth:         monthKey,
		PeriodQuarter:       QuarterKey(now),
		Revenue:             round2d(revenue),
		FixedCosts:          round2d(fixedTotal),
		VariableCosts:       round2d(variableTotal),
		GrossMargin:         round2d(gross),
		OperatingEBITDA:     round2d(ebitda),
		NetMargin:           round2d(net),
		AvgSellingPrice:     round2d(avgPrice),
		VariableCostPerUnit: metrics.Round2(variable.PerUnit()),
	}

	if revenue.Sign() > 0 {
		summary.NetMarginPct = round2d(net.Div(revenue).Mul(decimal.NewFromInt(100)))
	}

	units, err := metrics.BreakEvenUnits(fixed.Total(), summary.AvgSellingPrice, summary.VariableCostPerUnit)
	if err != nil {
		if errors.Is(err, metrics.ErrNonPositiveMargin) {
			summary.MarginWarning = "selling price does not cover variable cost per unit"
		} else {
			return FinancialSummary{}, err
		}
	} else {
		summary.BreakEvenUnits = units
	}

	return summary, nil
}

func round2d(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
