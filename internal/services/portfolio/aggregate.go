// Package portfolio derives portfolio metrics from a set of investments
package portfolio

import (
	"github.com/bobmcallan/gripvest/internal/models"
)

// Aggregate computes the portfolio summary. It is pure: the same input always
// yields the same summary and the investments are not modified.
//
// Monetary totals include cancelled investments; only the active count
// distinguishes status.
func Aggregate(investments []*models.Investment) models.PortfolioSummary {
	var s models.PortfolioSummary
	for _, inv := range investments {
		if inv == nil {
			continue
		}
		s.TotalInvested += inv.AmountInvested
		s.CurrentValue += currentValue(inv)
		s.TotalReturns += inv.ExpectedReturn
		if inv.IsActive() {
			s.ActiveInvestments++
		}
	}
	if s.TotalInvested > 0 {
		s.ReturnsPercentage = s.TotalReturns / s.TotalInvested * 100
	}
	return s
}

// currentValue falls back to the amount invested when no value is tracked.
func currentValue(inv *models.Investment) float64 {
	if inv.CurrentValue == 0 {
		return inv.AmountInvested
	}
	return inv.CurrentValue
}

// RiskDistribution returns the share of amount invested per risk level across
// active investments, in percent. All zero when nothing is active.
func RiskDistribution(investments []*models.Investment) models.RiskDistribution {
	var low, moderate, high, total float64
	for _, inv := range investments {
		if inv == nil || !inv.IsActive() {
			continue
		}
		total += inv.AmountInvested
		switch inv.RiskLevel() {
		case models.RiskLow:
			low += inv.AmountInvested
		case models.RiskHigh:
			high += inv.AmountInvested
		default:
			moderate += inv.AmountInvested
		}
	}
	if total <= 0 {
		return models.RiskDistribution{}
	}
	return models.RiskDistribution{
		Low:      low / total * 100,
		Moderate: moderate / total * 100,
		High:     high / total * 100,
	}
}

// ProfileFor returns the risk profile for a distribution.
func ProfileFor(d models.RiskDistribution) models.RiskProfile {
	return d.Profile()
}

// ActiveInvested sums the amount invested across active investments.
func ActiveInvested(investments []*models.Investment) float64 {
	var total float64
	for _, inv := range investments {
		if inv != nil && inv.IsActive() {
			total += inv.AmountInvested
		}
	}
	return total
}

// ActiveExpectedReturns sums expected returns across active investments.
func ActiveExpectedReturns(investments []*models.Investment) float64 {
	var total float64
	for _, inv := range investments {
		if inv != nil && inv.IsActive() {
			total += inv.ExpectedReturn
		}
	}
	return total
}

// TypeAllocation returns the amount invested per investment type across
// active investments.
func TypeAllocation(investments []*models.Investment) map[models.InvestmentType]float64 {
	out := make(map[models.InvestmentType]float64)
	for _, inv := range investments {
		if inv == nil || !inv.IsActive() {
			continue
		}
		t := models.InvestmentTypeUnknown
		if inv.Product != nil && inv.Product.InvestmentType != "" {
			t = inv.Product.InvestmentType
		}
		out[t] += inv.AmountInvested
	}
	return out
}
