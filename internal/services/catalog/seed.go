package catalog

import "github.com/bobmcallan/gripvest/internal/models"

// SeedProducts is the built-in catalog used when neither the API nor a local
// catalog is available.
func SeedProducts() []*models.Product {
	return []*models.Product{
		{
			ID:             "1",
			Name:           "Growth Equity Fund",
			InvestmentType: models.InvestmentTypeStocks,
			TenureMonths:   24,
			AnnualYield:    12.5,
			RiskLevel:      models.RiskHigh,
			MinInvestment:  10000,
			MaxInvestment:  models.Float(500000),
			Description:    "High-growth equity fund focusing on emerging markets",
		},
		{
			ID:             "2",
			Name:           "Stable Bond Portfolio",
			InvestmentType: models.InvestmentTypeBonds,
			TenureMonths:   12,
			AnnualYield:    7.8,
			RiskLevel:      models.RiskLow,
			MinInvestment:  5000,
			MaxInvestment:  models.Float(200000),
			Description:    "Conservative bond portfolio with steady returns",
		},
	}
}

// SeedRecommendations is used when recommendations cannot be fetched and no
// loaded product matches the user's risk appetite.
func SeedRecommendations() []*models.Product {
	return []*models.Product{
		{
			ID:             "rec-1",
			Name:           "Business Bonds",
			InvestmentType: models.InvestmentTypeBonds,
			TenureMonths:   12,
			AnnualYield:    11,
			RiskLevel:      models.RiskModerate,
			MinInvestment:  1000,
			MaxInvestment:  models.Float(100000),
			Description:    "12-month bond with moderate risk",
		},
		{
			ID:             "rec-2",
			Name:           "Grip High Yield Bond Special 2",
			InvestmentType: models.InvestmentTypeBonds,
			TenureMonths:   12,
			AnnualYield:    10,
			RiskLevel:      models.RiskModerate,
			MinInvestment:  1000,
			MaxInvestment:  models.Float(100000),
			Description:    "12-month bond with moderate risk",
		},
		{
			ID:             "rec-3",
			Name:           "Mutual Growth Plus Fund",
			InvestmentType: models.InvestmentTypeMutualFunds,
			TenureMonths:   18,
			AnnualYield:    9,
			RiskLevel:      models.RiskModerate,
			MinInvestment:  1500,
			MaxInvestment:  models.Float(75000),
			Description:    "18-month mutual fund with moderate risk",
		},
	}
}
