// Package models defines data structures for gripvest
package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// InvestmentType classifies a product
type InvestmentType string

const (
	InvestmentTypeStocks        InvestmentType = "stocks"
	InvestmentTypeBonds         InvestmentType = "bonds"
	InvestmentTypeMutualFunds   InvestmentType = "mutual_funds"
	InvestmentTypeFixedDeposits InvestmentType = "fixed_deposits"
	InvestmentTypeRealEstate    InvestmentType = "real_estate"
	InvestmentTypeUnknown       InvestmentType = "unknown" // placeholder products only
)

// InvestmentTypes lists the purchasable product types.
var InvestmentTypes = []InvestmentType{
	InvestmentTypeStocks,
	InvestmentTypeBonds,
	InvestmentTypeMutualFunds,
	InvestmentTypeFixedDeposits,
	InvestmentTypeRealEstate,
}

// ParseInvestmentType maps API spellings onto the known types.
// Unrecognised values are returned lower-cased so nothing is lost.
func ParseInvestmentType(s string) InvestmentType {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "stock", "stocks", "equity":
		return InvestmentTypeStocks
	case "bond", "bonds":
		return InvestmentTypeBonds
	case "mf", "mutual_fund", "mutual_funds", "mutual fund":
		return InvestmentTypeMutualFunds
	case "fd", "fixed_deposit", "fixed_deposits", "fixed deposit":
		return InvestmentTypeFixedDeposits
	case "real_estate", "reit", "real estate":
		return InvestmentTypeRealEstate
	case "":
		return InvestmentTypeUnknown
	}
	return InvestmentType(v)
}

// Valid reports whether t is a purchasable type
func (t InvestmentType) Valid() bool {
	for _, k := range InvestmentTypes {
		if t == k {
			return true
		}
	}
	return false
}

// Label returns a human readable type, e.g. "Mutual Funds"
func (t InvestmentType) Label() string {
	words := strings.Fields(strings.ReplaceAll(string(t), "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// RiskLevel is the coarse risk classification of a product
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
)

// ParseRiskLevel parses a risk level, case-insensitively.
func ParseRiskLevel(s string) (RiskLevel, error) {
	switch RiskLevel(strings.ToLower(strings.TrimSpace(s))) {
	case RiskLow:
		return RiskLow, nil
	case RiskModerate, "medium":
		return RiskModerate, nil
	case RiskHigh:
		return RiskHigh, nil
	}
	return "", &ValidationError{Field: "risk_level", Message: fmt.Sprintf("unknown risk level %q (want low, moderate or high)", s)}
}

// Valid reports whether r is a known risk level
func (r RiskLevel) Valid() bool {
	return r == RiskLow || r == RiskModerate || r == RiskHigh
}

// PlaceholderProductName names products that could not be resolved.
const PlaceholderProductName = "Product Not Found"

// Product is an investable product from the catalog.
type Product struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	InvestmentType InvestmentType `json:"investment_type"`
	TenureMonths   int            `json:"tenure_months"`
	AnnualYield    float64        `json:"annual_yield"` // percent
	RiskLevel      RiskLevel      `json:"risk_level"`
	MinInvestment  float64        `json:"min_investment"`
	MaxInvestment  *float64       `json:"max_investment,omitempty"`
	Description    string         `json:"description,omitempty"`
	CreatedBy      string         `json:"created_by,omitempty"`
	CreatedAt      *time.Time     `json:"created_at,omitempty"`
	UpdatedAt      *time.Time     `json:"updated_at,omitempty"`
}

// PlaceholderProduct stands in for a product no lookup could resolve.
func PlaceholderProduct(id string) *Product {
	return &Product{
		ID:             id,
		Name:           PlaceholderProductName,
		InvestmentType: InvestmentTypeUnknown,
		RiskLevel:      RiskModerate,
		AnnualYield:    0,
		TenureMonths:   0,
	}
}

// IsPlaceholder reports whether p was synthesised by PlaceholderProduct.
func (p *Product) IsPlaceholder() bool {
	return p != nil && p.Name == PlaceholderProductName && p.InvestmentType == InvestmentTypeUnknown
}

// Clone returns a deep copy, used to snapshot a product onto an investment.
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	c := *p
	if p.MaxInvestment != nil {
		m := *p.MaxInvestment
		c.MaxInvestment = &m
	}
	if p.CreatedAt != nil {
		t := *p.CreatedAt
		c.CreatedAt = &t
	}
	if p.UpdatedAt != nil {
		t := *p.UpdatedAt
		c.UpdatedAt = &t
	}
	return &c
}

// Float returns a pointer to v, for optional fields such as MaxInvestment.
func Float(v float64) *float64 {
	return &v
}

// ExpectedReturn is the forward-looking return fixed at purchase time:
// amount * annual_yield * tenure_months / (12*100).
func ExpectedReturn(amount, annualYield float64, tenureMonths int) float64 {
	return amount * annualYield * float64(tenureMonths) / (12 * 100)
}

// ExpectedReturn computes the expected return of investing amount in p.
func (p *Product) ExpectedReturn(amount float64) float64 {
	return ExpectedReturn(amount, p.AnnualYield, p.TenureMonths)
}

// CheckAmount validates amount against the product's investment bounds.
func (p *Product) CheckAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return &ValidationError{Field: "amount", Message: "amount must be greater than zero"}
	}
	if amount < p.MinInvestment {
		return &ValidationError{Field: "amount", Message: fmt.Sprintf("amount %.2f is below the minimum investment of %.2f for %s", amount, p.MinInvestment, p.Name)}
	}
	if p.MaxInvestment != nil && amount > *p.MaxInvestment {
		return &ValidationError{Field: "amount", Message: fmt.Sprintf("amount %.2f exceeds the maximum investment of %.2f for %s", amount, *p.MaxInvestment, p.Name)}
	}
	return nil
}

// Validate checks the fields an admin must provide for a catalog product.
func (p *Product) Validate() error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return &ValidationError{Field: "name", Message: "name is required"}
	case !p.InvestmentType.Valid():
		return &ValidationError{Field: "investment_type", Message: fmt.Sprintf("unknown investment type %q", p.InvestmentType)}
	case p.TenureMonths <= 0:
		return &ValidationError{Field: "tenure_months", Message: "tenure must be a positive number of months"}
	case p.AnnualYield < 0 || math.IsNaN(p.AnnualYield):
		return &ValidationError{Field: "annual_yield", Message: "annual yield cannot be negative"}
	case !p.RiskLevel.Valid():
		return &ValidationError{Field: "risk_level", Message: fmt.Sprintf("unknown risk level %q", p.RiskLevel)}
	case p.MinInvestment <= 0:
		return &ValidationError{Field: "min_investment", Message: "minimum investment must be greater than zero"}
	case p.MaxInvestment != nil && *p.MaxInvestment < p.MinInvestment:
		return &ValidationError{Field: "max_investment", Message: "maximum investment cannot be below the minimum"}
	}
	return nil
}
