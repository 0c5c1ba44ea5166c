package models

import (
	"strings"
	"time"
)

// Status is the lifecycle state of an investment
type Status string

const (
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
)

// NormalizeStatus maps server spellings onto Status. An absent status is
// active; "canceled" is accepted as a spelling of cancelled. Anything else
// is kept lower-cased and counts as neither.
func NormalizeStatus(s string) Status {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case "", "active":
		return StatusActive
	case "cancelled", "canceled":
		return StatusCancelled
	default:
		return Status(v)
	}
}

// Investment is a user's holding in one product.
type Investment struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	ProductID      string    `json:"product_id"`
	Product        *Product  `json:"product,omitempty"`
	AmountInvested float64   `json:"amount_invested"`
	PurchaseDate   time.Time `json:"purchase_date"`
	ExpectedReturn float64   `json:"expected_return"`
	CurrentValue   float64   `json:"current_value"`
	Status         Status    `json:"status"`
	Local          bool      `json:"local,omitempty"` // synthesised while the API was unreachable
}

// IsActive reports whether the investment counts towards active holdings.
func (i *Investment) IsActive() bool {
	return NormalizeStatus(string(i.Status)) == StatusActive
}

// IsCancelled reports whether the investment has been cancelled.
func (i *Investment) IsCancelled() bool {
	return NormalizeStatus(string(i.Status)) == StatusCancelled
}

// ProductName returns the embedded product's name, or the product id.
func (i *Investment) ProductName() string {
	if i.Product != nil && i.Product.Name != "" {
		return i.Product.Name
	}
	return i.ProductID
}

// RiskLevel returns the embedded product's risk level, moderate when unknown.
func (i *Investment) RiskLevel() RiskLevel {
	if i.Product == nil || !i.Product.RiskLevel.Valid() {
		return RiskModerate
	}
	return i.Product.RiskLevel
}

// MaturityDate is the purchase date plus the product tenure.
func (i *Investment) MaturityDate() time.Time {
	if i.Product == nil || i.Product.TenureMonths <= 0 || i.PurchaseDate.IsZero() {
		return time.Time{}
	}
	return i.PurchaseDate.AddDate(0, i.Product.TenureMonths, 0)
}

// Clone returns a deep copy including the product snapshot.
func (i *Investment) Clone() *Investment {
	if i == nil {
		return nil
	}
	c := *i
	c.Product = i.Product.Clone()
	return &c
}

// CloneInvestments deep-copies a slice of investments.
func CloneInvestments(in []*Investment) []*Investment {
	if in == nil {
		return nil
	}
	out := make([]*Investment, len(in))
	for idx, inv := range in {
		out[idx] = inv.Clone()
	}
	return out
}
