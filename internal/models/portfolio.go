package models

import "time"

// PortfolioSummary holds the metrics derived from a user's investments.
// Monetary sums cover every investment regardless of status.
type PortfolioSummary struct {
	TotalInvested     float64 `json:"total_invested"`
	CurrentValue      float64 `json:"current_value"`
	TotalReturns      float64 `json:"total_returns"`
	ReturnsPercentage float64 `json:"returns_percentage"`
	ActiveInvestments int     `json:"active_investments"`
}

// RiskDistribution is the percentage of amount invested per risk level.
type RiskDistribution struct {
	Low      float64 `json:"low"`
	Moderate float64 `json:"moderate"`
	High     float64 `json:"high"`
}

// Share returns the percentage held at level.
func (d RiskDistribution) Share(level RiskLevel) float64 {
	switch level {
	case RiskLow:
		return d.Low
	case RiskModerate:
		return d.Moderate
	case RiskHigh:
		return d.High
	}
	return 0
}

// IsZero reports whether nothing is allocated.
func (d RiskDistribution) IsZero() bool {
	return d.Low == 0 && d.Moderate == 0 && d.High == 0
}

// RiskProfile summarises a distribution in one word.
type RiskProfile string

const (
	RiskProfileConservative RiskProfile = "Conservative"
	RiskProfileBalanced     RiskProfile = "Balanced"
	RiskProfileAggressive   RiskProfile = "Aggressive"
)

// PortfolioState is the locally mirrored copy of a user's investments.
type PortfolioState struct {
	UserID      string        `json:"user_id"`
	Investments []*Investment `json:"investments"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// LocalInvestments returns the investments synthesised offline.
func (s *PortfolioState) LocalInvestments() []*Investment {
	if s == nil {
		return nil
	}
	var out []*Investment
	for _, inv := range s.Investments {
		if inv.Local {
			out = append(out, inv)
		}
	}
	return out
}
