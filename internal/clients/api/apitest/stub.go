// Package apitest provides a programmable MarketplaceClient for tests.
package apitest

import (
	"context"
	"sync"

	"github.com/bobmcallan/gripvest/internal/interfaces"
	"github.com/bobmcallan/gripvest/internal/models"
)

// Ensure Stub implements MarketplaceClient
var _ interfaces.MarketplaceClient = (*Stub)(nil)

// Stub answers each call with its Func field, or Unreachable when the field
// is nil. Calls are counted per method.
type Stub struct {
	ListProductsFunc        func(ctx context.Context) ([]*models.Product, error)
	GetProductFunc          func(ctx context.Context, token, id string) (*models.Product, error)
	ListRecommendationsFunc func(ctx context.Context, token string) ([]*models.Product, error)
	ListInvestmentsFunc     func(ctx context.Context, token string) ([]*models.Investment, error)
	CreateInvestmentFunc    func(ctx context.Context, token, productID string, amount float64) (*models.Investment, error)
	CancelInvestmentFunc    func(ctx context.Context, token, id string) error
	GetInsightsFunc         func(ctx context.Context, token string) (*models.Insights, error)
	LoginFunc               func(ctx context.Context, email, password string, role models.Role) (*models.Session, error)
	SignupFunc              func(ctx context.Context, req *models.SignupRequest) (*models.Session, error)

	mu    sync.Mutex
	calls map[string]int
}

// Unreachable is a transport failure every Stub method returns when unset.
var Unreachable = &unreachableError{}

type unreachableError struct{}

func (e *unreachableError) Error() string          { return "marketplace API unreachable" }
func (e *unreachableError) FallbackEligible() bool { return true }

// Calls returns how often method was invoked
func (s *Stub) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

func (s *Stub) record(method string) {
	s.mu.Lock()
	if s.calls == nil {
		s.calls = make(map[string]int)
	}
	s.calls[method]++
	s.mu.Unlock()
}

func (s *Stub) ListProducts(ctx context.Context) ([]*models.Product, error) {
	s.record("ListProducts")
	if s.ListProductsFunc == nil {
		return nil, Unreachable
	}
	return s.ListProductsFunc(ctx)
}

func (s *Stub) GetProduct(ctx context.Context, token, id string) (*models.Product, error) {
	s.record("GetProduct")
	if s.GetProductFunc == nil {
		return nil, Unreachable
	}
	return s.GetProductFunc(ctx, token, id)
}

func (s *Stub) ListRecommendations(ctx context.Context, token string) ([]*models.Product, error) {
	s.record("ListRecommendations")
	if s.ListRecommendationsFunc == nil {
		return nil, Unreachable
	}
	return s.ListRecommendationsFunc(ctx, token)
}

func (s *Stub) ListInvestments(ctx context.Context, token string) ([]*models.Investment, error) {
	s.record("ListInvestments")
	if s.ListInvestmentsFunc == nil {
		return nil, Unreachable
	}
	return s.ListInvestmentsFunc(ctx, token)
}

func (s *Stub) CreateInvestment(ctx context.Context, token, productID string, amount float64) (*models.Investment, error) {
	s.record("CreateInvestment")
	if s.CreateInvestmentFunc == nil {
		return nil, Unreachable
	}
	return s.CreateInvestmentFunc(ctx, token, productID, amount)
}

func (s *Stub) CancelInvestment(ctx context.Context, token, id string) error {
	s.record("CancelInvestment")
	if s.CancelInvestmentFunc == nil {
		return Unreachable
	}
	return s.CancelInvestmentFunc(ctx, token, id)
}

func (s *Stub) GetInsights(ctx context.Context, token string) (*models.Insights, error) {
	s.record("GetInsights")
	if s.GetInsightsFunc == nil {
		return nil, Unreachable
	}
	return s.GetInsightsFunc(ctx, token)
}

func (s *Stub) Login(ctx context.Context, email, password string, role models.Role) (*models.Session, error) {
	s.record("Login")
	if s.LoginFunc == nil {
		return nil, Unreachable
	}
	return s.LoginFunc(ctx, email, password, role)
}

func (s *Stub) Signup(ctx context.Context, req *models.SignupRequest) (*models.Session, error) {
	s.record("Signup")
	if s.SignupFunc == nil {
		return nil, Unreachable
	}
	return s.SignupFunc(ctx, req)
}
