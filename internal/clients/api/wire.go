package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bobmcallan/gripvest/internal/models"
)

// The marketplace API is loose about envelopes and scalar types. Everything
// it returns is normalised here so nothing above the client sees raw JSON.

// flexFloat accepts numbers, numeric strings and null.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == `""` {
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return err
		}
		s = strings.ReplaceAll(strings.TrimSpace(unquoted), ",", "")
		if s == "" {
			return nil
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %s", string(b))
	}
	*f = flexFloat(v)
	return nil
}

// flexInt accepts integers, floats with no fraction, numeric strings and null.
type flexInt int

func (i *flexInt) UnmarshalJSON(b []byte) error {
	var f flexFloat
	if err := f.UnmarshalJSON(b); err != nil {
		return err
	}
	*i = flexInt(int(float64(f)))
	return nil
}

// flexString accepts strings and numbers, so numeric ids decode as text.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid id %s", raw)
	}
	*s = flexString(n.String())
	return nil
}

// flexTime accepts RFC 3339, SQL-style timestamps and plain dates.
type flexTime struct {
	time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (t *flexTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil || strings.TrimSpace(s) == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return nil
}

func (t flexTime) ptr() *time.Time {
	if t.IsZero() {
		return nil
	}
	v := t.Time
	return &v
}

// unwrapObject strips {data: ...} and the given keyed envelopes until it
// reaches the payload object.
func unwrapObject(body []byte, keys ...string) []byte {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return body
	}
	var env map[string]json.RawMessage
	if err := json.Unmarshal(body, &env); err != nil {
		return body
	}
	for _, k := range append([]string{"data"}, keys...) {
		raw := bytes.TrimSpace(env[k])
		if len(raw) > 0 && raw[0] == '{' {
			return unwrapObject(raw, keys...)
		}
	}
	return body
}

// decodeList decodes a bare array, {data:[...]} or {<key>:[...]}.
func decodeList[T any](body []byte, keys ...string) ([]T, error) {
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '[' {
		var out []T
		if err := json.Unmarshal(body, &out); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		return out, nil
	}

	var env map[string]json.RawMessage
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	for _, k := range append([]string{"data"}, keys...) {
		raw := bytes.TrimSpace(env[k])
		if len(raw) == 0 {
			continue
		}
		switch raw[0] {
		case '[':
			var out []T
			if err := json.Unmarshal(raw, &out); err != nil {
				return nil, fmt.Errorf("failed to decode %s: %w", k, err)
			}
			return out, nil
		case '{':
			return decodeList[T](raw, keys...)
		}
	}
	return nil, fmt.Errorf("failed to decode response: no list found under data or %s", strings.Join(keys, ", "))
}

// decodeObject decodes a bare object, {data:{...}} or {<key>:{...}}.
func decodeObject[T any](body []byte, keys ...string) (*T, error) {
	var out T
	if err := json.Unmarshal(unwrapObject(body, keys...), &out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &out, nil
}

type productData struct {
	ID             flexString `json:"id"`
	Name           string     `json:"name"`
	InvestmentType string     `json:"investment_type"`
	TenureMonths   flexInt    `json:"tenure_months"`
	AnnualYield    flexFloat  `json:"annual_yield"`
	RiskLevel      string     `json:"risk_level"`
	MinInvestment  flexFloat  `json:"min_investment"`
	MaxInvestment  *flexFloat `json:"max_investment"`
	Description    string     `json:"description"`
	CreatedBy      flexString `json:"created_by"`
	CreatedAt      flexTime   `json:"created_at"`
	UpdatedAt      flexTime   `json:"updated_at"`
}

func (p *productData) toModel() *models.Product {
	risk, err := models.ParseRiskLevel(p.RiskLevel)
	if err != nil {
		risk = models.RiskLevel(strings.ToLower(p.RiskLevel))
	}
	out := &models.Product{
		ID:             string(p.ID),
		Name:           p.Name,
		InvestmentType: models.ParseInvestmentType(p.InvestmentType),
		TenureMonths:   int(p.TenureMonths),
		AnnualYield:    float64(p.AnnualYield),
		RiskLevel:      risk,
		MinInvestment:  float64(p.MinInvestment),
		Description:    p.Description,
		CreatedBy:      string(p.CreatedBy),
		CreatedAt:      p.CreatedAt.ptr(),
		UpdatedAt:      p.UpdatedAt.ptr(),
	}
	if p.MaxInvestment != nil && *p.MaxInvestment > 0 {
		out.MaxInvestment = models.Float(float64(*p.MaxInvestment))
	}
	return out
}

func productsToModels(in []productData) []*models.Product {
	out := make([]*models.Product, 0, len(in))
	for i := range in {
		out = append(out, in[i].toModel())
	}
	return out
}

type investmentData struct {
	ID             flexString   `json:"id"`
	UserID         flexString   `json:"user_id"`
	ProductID      flexString   `json:"product_id"`
	Product        *productData `json:"product"`
	AmountInvested *flexFloat   `json:"amount_invested"`
	Amount         *flexFloat   `json:"amount"`
	PurchaseDate   flexTime     `json:"purchase_date"`
	CreatedAt      flexTime     `json:"created_at"`
	ExpectedReturn flexFloat    `json:"expected_return"`
	CurrentValue   *flexFloat   `json:"current_value"`
	Status         string       `json:"status"`
}

func (d *investmentData) toModel() *models.Investment {
	var amount float64
	switch {
	case d.AmountInvested != nil:
		amount = float64(*d.AmountInvested)
	case d.Amount != nil:
		amount = float64(*d.Amount)
	}

	// Untracked (absent or zero) current value defaults to the amount invested.
	current := amount
	if d.CurrentValue != nil && *d.CurrentValue != 0 {
		current = float64(*d.CurrentValue)
	}

	purchased := d.PurchaseDate.Time
	if purchased.IsZero() {
		purchased = d.CreatedAt.Time
	}

	out := &models.Investment{
		ID:             string(d.ID),
		UserID:         string(d.UserID),
		ProductID:      string(d.ProductID),
		AmountInvested: amount,
		PurchaseDate:   purchased,
		ExpectedReturn: float64(d.ExpectedReturn),
		CurrentValue:   current,
		Status:         models.NormalizeStatus(d.Status),
	}
	// A product snapshot without a name is treated as missing and resolved later.
	if d.Product != nil && d.Product.Name != "" {
		out.Product = d.Product.toModel()
		if out.ProductID == "" {
			out.ProductID = out.Product.ID
		}
	}
	return out
}

type userData struct {
	ID           flexString `json:"id"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Email        string     `json:"email"`
	Role         string     `json:"role"`
	RiskAppetite string     `json:"risk_appetite"`
	Balance      flexFloat  `json:"balance"`
	CreatedAt    flexTime   `json:"created_at"`
	UpdatedAt    flexTime   `json:"updated_at"`
}

func (u *userData) toModel() *models.User {
	risk, err := models.ParseRiskLevel(u.RiskAppetite)
	if err != nil {
		risk = models.RiskModerate
	}
	return &models.User{
		ID:           string(u.ID),
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		Role:         models.ParseRole(u.Role),
		RiskAppetite: risk,
		Balance:      float64(u.Balance),
		CreatedAt:    u.CreatedAt.ptr(),
		UpdatedAt:    u.UpdatedAt.ptr(),
	}
}

// authData is the login/signup payload: {user, token}, possibly under data,
// or the bare user when the server sends no wrapper.
type authData struct {
	User  *userData `json:"user"`
	Token string    `json:"token"`
}

func decodeAuth(body []byte) (*models.Session, error) {
	payload := unwrapObject(body)
	var auth authData
	if err := json.Unmarshal(payload, &auth); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if auth.User == nil {
		var bare userData
		if err := json.Unmarshal(payload, &bare); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		auth.User = &bare
	}
	if auth.User.Email == "" && auth.User.ID == "" {
		return nil, fmt.Errorf("failed to decode response: no user in auth payload")
	}
	return &models.Session{
		User:   auth.User.toModel(),
		Token:  auth.Token,
		Source: models.SessionSourceAPI,
	}, nil
}

type insightsData struct {
	TotalInvested    flexFloat `json:"totalInvested"`
	RiskDistribution struct {
		Low      flexFloat `json:"low"`
		Moderate flexFloat `json:"moderate"`
		High     flexFloat `json:"high"`
	} `json:"riskDistribution"`
	ExpectedReturns flexFloat `json:"expectedReturns"`
	Insights        []string  `json:"insights"`
}

func (d *insightsData) toModel() *models.Insights {
	return &models.Insights{
		TotalInvested: float64(d.TotalInvested),
		RiskDistribution: models.RiskDistribution{
			Low:      float64(d.RiskDistribution.Low),
			Moderate: float64(d.RiskDistribution.Moderate),
			High:     float64(d.RiskDistribution.High),
		},
		ExpectedReturns: float64(d.ExpectedReturns),
		Insights:        d.Insights,
	}
}
