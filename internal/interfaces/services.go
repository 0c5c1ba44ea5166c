package interfaces

import (
	"context"

	"github.com/bobmcallan/gripvest/internal/common"
	"github.com/bobmcallan/gripvest/internal/models"
)

// ProductResolver resolves product ids for investments that arrive without
// an embedded product.
type ProductResolver interface {
	// Lookup returns the product from the loaded catalog, or nil
	Lookup(id string) *models.Product

	// FetchProduct retrieves a single product from the API
	FetchProduct(ctx context.Context, session *models.Session, id string) (*models.Product, error)
}

// CatalogService manages the product catalog
type CatalogService interface {
	ProductResolver

	// Load fetches the catalog, falling back to the local catalog or seed
	Load(ctx context.Context) common.Result[[]*models.Product]

	// Products returns the currently loaded catalog
	Products() []*models.Product

	// Get resolves a product from the loaded catalog, then the API
	Get(ctx context.Context, session *models.Session, id string) (*models.Product, error)

	// Recommendations returns products suited to the session user
	Recommendations(ctx context.Context, session *models.Session) common.Result[[]*models.Product]

	// AdminProducts lists the local catalog (admin only)
	AdminProducts(ctx context.Context, session *models.Session) ([]*models.Product, error)

	// CreateProduct adds a product to the local catalog (admin only)
	CreateProduct(ctx context.Context, session *models.Session, product *models.Product) (*models.Product, error)

	// UpdateProduct replaces a product in the local catalog (admin only)
	UpdateProduct(ctx context.Context, session *models.Session, id string, product *models.Product) (*models.Product, error)

	// DeleteProduct removes a product from the local catalog (admin only)
	DeleteProduct(ctx context.Context, session *models.Session, id string) error

	// Stats summarises the catalog (admin only)
	Stats(ctx context.Context, session *models.Session) (*models.CatalogStats, error)
}

// InvestmentRepository fetches and enriches a user's investments
type InvestmentRepository interface {
	// Fetch returns the session user's investments with products resolved
	Fetch(ctx context.Context, session *models.Session) ([]*models.Investment, error)

	// Cancel flags a remote investment as cancelled
	Cancel(ctx context.Context, session *models.Session, id string) error
}

// LedgerService tracks the spendable balance on a session's user
type LedgerService interface {
	// AddFunds credits amount and returns the new balance
	AddFunds(session *models.Session, amount float64) (float64, error)

	// CanAfford checks a prospective debit without applying it
	CanAfford(session *models.Session, amount float64) error

	// Debit subtracts amount from the balance
	Debit(session *models.Session, amount float64) error
}

// LifecycleService purchases and cancels investments
type LifecycleService interface {
	// Purchase validates and creates an investment. It does not debit the balance.
	Purchase(ctx context.Context, session *models.Session, productID string, amount float64) (*models.Investment, error)

	// Cancel transitions an investment to cancelled and returns the updated copy
	Cancel(ctx context.Context, session *models.Session, investment *models.Investment) (*models.Investment, error)
}

// InsightsService produces portfolio analysis
type InsightsService interface {
	Insights(ctx context.Context, session *models.Session, investments []*models.Investment) common.Result[*models.Insights]
}

// AuthService establishes and tears down sessions
type AuthService interface {
	Login(ctx context.Context, email, password string, role models.Role) (*models.Session, error)
	Signup(ctx context.Context, req *models.SignupRequest) (*models.Session, error)
	Logout(ctx context.Context) error

	// Current returns the stored session or models.ErrUnauthenticated
	Current(ctx context.Context) (*models.Session, error)
}
