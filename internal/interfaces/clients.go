// Package interfaces defines service contracts for gripvest
package interfaces

import (
	"context"

	"github.com/bobmcallan/gripvest/internal/models"
)

// MarketplaceClient provides access to the investment marketplace REST API
type MarketplaceClient interface {
	// ListProducts retrieves the public product catalog
	ListProducts(ctx context.Context) ([]*models.Product, error)

	// GetProduct retrieves a single product by ID
	GetProduct(ctx context.Context, token, id string) (*models.Product, error)

	// ListRecommendations retrieves products recommended for the token's user
	ListRecommendations(ctx context.Context, token string) ([]*models.Product, error)

	// ListInvestments retrieves the token user's investments in server order
	ListInvestments(ctx context.Context, token string) ([]*models.Investment, error)

	// CreateInvestment purchases a product. Never retried.
	CreateInvestment(ctx context.Context, token, productID string, amount float64) (*models.Investment, error)

	// CancelInvestment flags an investment as cancelled
	CancelInvestment(ctx context.Context, token, id string) error

	// GetInsights retrieves the server-side portfolio analysis
	GetInsights(ctx context.Context, token string) (*models.Insights, error)

	// Login authenticates and returns the user with a bearer token
	Login(ctx context.Context, email, password string, role models.Role) (*models.Session, error)

	// Signup registers a new account
	Signup(ctx context.Context, req *models.SignupRequest) (*models.Session, error)
}

// GeminiClient provides access to Gemini API
type GeminiClient interface {
	// GenerateContent generates AI content from a prompt
	GenerateContent(ctx context.Context, prompt string) (string, error)

	// NarrateInsights turns locally computed portfolio figures into short advice lines
	NarrateInsights(ctx context.Context, insights *models.Insights, investments []*models.Investment) ([]string, error)
}
