package interfaces

import (
	"context"

	"github.com/bobmcallan/gripvest/internal/models"
)

// StateStore persists the local mirror of a user's session state.
// Loads return an error wrapping models.ErrNotFound when nothing is stored.
type StateStore interface {
	LoadSession(ctx context.Context) (*models.Session, error)
	SaveSession(ctx context.Context, session *models.Session) error
	ClearSession(ctx context.Context) error

	LoadPortfolio(ctx context.Context, userID string) (*models.PortfolioState, error)
	SavePortfolio(ctx context.Context, state *models.PortfolioState) error
	DeletePortfolio(ctx context.Context, userID string) error

	// LoadCatalog returns the admin-managed local catalog
	LoadCatalog(ctx context.Context) (*models.Catalog, error)
	SaveCatalog(ctx context.Context, catalog *models.Catalog) error

	// Close releases the backend connection
	Close() error
}
