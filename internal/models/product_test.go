package models

import (
	"errors"
	"math"
	"testing"
)

func approxEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

func TestExpectedReturn(t *testing.T) {
	tests := []struct {
		amount float64
		yield  float64
		tenure int
		want   float64
	}{
		{15000, 7.8, 12, 1170},
		{10000, 12.5, 24, 2500},
		{1000, 11, 12, 110},
		{5000, 0, 12, 0},
		{5000, 9, 0, 0},
	}
	for _, tt := range tests {
		got := ExpectedReturn(tt.amount, tt.yield, tt.tenure)
		if !approxEqual(got, tt.want, 1e-9) {
			t.Errorf("ExpectedReturn(%v, %v, %d) = %v, want %v", tt.amount, tt.yield, tt.tenure, got, tt.want)
		}
	}
}

func TestProductCheckAmount(t *testing.T) {
	p := &Product{ID: "2", Name: "Stable Bond Portfolio", MinInvestment: 5000, MaxInvestment: Float(200000)}

	for _, amount := range []float64{5000, 15000, 200000} {
		if err := p.CheckAmount(amount); err != nil {
			t.Errorf("CheckAmount(%v) = %v, want nil", amount, err)
		}
	}

	for _, amount := range []float64{0, -1, 4999.99, 200000.01, math.NaN(), math.Inf(1)} {
		err := p.CheckAmount(amount)
		if err == nil {
			t.Errorf("CheckAmount(%v) = nil, want error", amount)
			continue
		}
		if !errors.Is(err, ErrValidation) {
			t.Errorf("CheckAmount(%v) error %v does not wrap ErrValidation", amount, err)
		}
	}
}

func TestProductCheckAmount_NoMax(t *testing.T) {
	p := &Product{Name: "Open Fund", MinInvestment: 100}
	if err := p.CheckAmount(1e9); err != nil {
		t.Errorf("CheckAmount without max = %v, want nil", err)
	}
}

func TestProductValidate(t *testing.T) {
	valid := Product{
		Name:           "Growth Equity Fund",
		InvestmentType: InvestmentTypeStocks,
		TenureMonths:   24,
		AnnualYield:    12.5,
		RiskLevel:      RiskHigh,
		MinInvestment:  10000,
		MaxInvestment:  Float(500000),
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}

	tests := []struct {
		field  string
		mutate func(p *Product)
	}{
		{"name", func(p *Product) { p.Name = "  " }},
		{"investment_type", func(p *Product) { p.InvestmentType = InvestmentTypeUnknown }},
		{"tenure_months", func(p *Product) { p.TenureMonths = 0 }},
		{"annual_yield", func(p *Product) { p.AnnualYield = -1 }},
		{"risk_level", func(p *Product) { p.RiskLevel = "extreme" }},
		{"min_investment", func(p *Product) { p.MinInvestment = 0 }},
		{"max_investment", func(p *Product) { p.MaxInvestment = Float(100) }},
	}
	for _, tt := range tests {
		p := valid
		tt.mutate(&p)
		err := p.Validate()
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("%s: Validate() = %v, want ValidationError", tt.field, err)
			continue
		}
		if ve.Field != tt.field {
			t.Errorf("%s: ValidationError.Field = %q", tt.field, ve.Field)
		}
	}
}

func TestPlaceholderProduct(t *testing.T) {
	p := PlaceholderProduct("missing-1")
	if p.Name != "Product Not Found" {
		t.Errorf("Name = %q", p.Name)
	}
	if p.RiskLevel != RiskModerate || p.AnnualYield != 0 || p.TenureMonths != 0 || p.InvestmentType != InvestmentTypeUnknown {
		t.Errorf("unexpected placeholder %+v", p)
	}
	if !p.IsPlaceholder() {
		t.Error("IsPlaceholder() = false")
	}
}

func TestProductClone(t *testing.T) {
	p := &Product{ID: "1", MaxInvestment: Float(10)}
	c := p.Clone()
	*c.MaxInvestment = 20
	if *p.MaxInvestment != 10 {
		t.Errorf("Clone shares MaxInvestment pointer")
	}
	var nilProduct *Product
	if nilProduct.Clone() != nil {
		t.Error("Clone of nil should be nil")
	}
}

func TestParseInvestmentType(t *testing.T) {
	tests := []struct {
		input string
		want  InvestmentType
	}{
		{"stocks", InvestmentTypeStocks},
		{"Bonds", InvestmentTypeBonds},
		{"mutual_funds", InvestmentTypeMutualFunds},
		{"FD", InvestmentTypeFixedDeposits},
		{"real_estate", InvestmentTypeRealEstate},
		{"", InvestmentTypeUnknown},
		{"Crypto", "crypto"},
	}
	for _, tt := range tests {
		if got := ParseInvestmentType(tt.input); got != tt.want {
			t.Errorf("ParseInvestmentType(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
	if got := InvestmentTypeMutualFunds.Label(); got != "Mutual Funds" {
		t.Errorf("Label() = %q", got)
	}
}

func TestParseRiskLevel(t *testing.T) {
	for input, want := range map[string]RiskLevel{"low": RiskLow, "MODERATE": RiskModerate, "medium": RiskModerate, " high ": RiskHigh} {
		got, err := ParseRiskLevel(input)
		if err != nil || got != want {
			t.Errorf("ParseRiskLevel(%q) = %q, %v", input, got, err)
		}
	}
	if _, err := ParseRiskLevel("wild"); !errors.Is(err, ErrValidation) {
		t.Errorf("ParseRiskLevel(wild) error = %v", err)
	}
}
