package models

import "time"

// Insights is the AI-style analysis of a portfolio.
type Insights struct {
	TotalInvested    float64          `json:"totalInvested"`
	RiskDistribution RiskDistribution `json:"riskDistribution"`
	ExpectedReturns  float64          `json:"expectedReturns"`
	Insights         []string         `json:"insights"`
}

// Profile derives the risk profile from the largest share of the
// distribution. Ties resolve towards the lower risk level.
func (d RiskDistribution) Profile() RiskProfile {
	switch {
	case d.Low >= d.Moderate && d.Low >= d.High:
		return RiskProfileConservative
	case d.Moderate >= d.High:
		return RiskProfileBalanced
	default:
		return RiskProfileAggressive
	}
}

// CatalogStats summarises the product catalog for admins.
type CatalogStats struct {
	TotalProducts    int     `json:"total_products"`
	AverageYield     float64 `json:"average_yield"`
	HighRiskProducts int     `json:"high_risk_products"`
}

// Catalog is the locally stored, admin-managed product list.
type Catalog struct {
	Products  []*Product `json:"products"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Find returns the product with id, or nil.
func (c *Catalog) Find(id string) *Product {
	if c == nil {
		return nil
	}
	for _, p := range c.Products {
		if p.ID == id {
			return p
		}
	}
	return nil
}
