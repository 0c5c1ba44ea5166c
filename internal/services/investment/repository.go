// Package investment fetches a user's investments and resolves their products
package investment

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/bobmcallan/gripvest/internal/common"
	"github.com/bobmcallan/gripvest/internal/interfaces"
	"github.com/bobmcallan/gripvest/internal/models"
)

// DefaultFanOut bounds concurrent product lookups during enrichment
const DefaultFanOut = 4

// Ensure Repository implements InvestmentRepository
var _ interfaces.InvestmentRepository = (*Repository)(nil)

// Repository implements InvestmentRepository
type Repository struct {
	client   interfaces.MarketplaceClient
	resolver interfaces.ProductResolver
	logger   *common.Logger
	fanOut   int
}

// NewRepository creates a new investment repository
func NewRepository(client interfaces.MarketplaceClient, resolver interfaces.ProductResolver, logger *common.Logger, fanOut int) *Repository {
	if fanOut <= 0 {
		fanOut = DefaultFanOut
	}
	return &Repository{
		client:   client,
		resolver: resolver,
		logger:   logger,
		fanOut:   fanOut,
	}
}

// Fetch returns the session user's investments in server order. Records
// without an embedded product are resolved from the loaded catalog, then by
// a per-item API lookup, then replaced by a placeholder. A failed lookup
// never aborts the others.
func (r *Repository) Fetch(ctx context.Context, session *models.Session) ([]*models.Investment, error) {
	if !session.Authenticated() {
		return nil, models.ErrUnauthenticated
	}

	investments, err := r.client.ListInvestments(ctx, session.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch investments: %w", err)
	}

	if err := r.enrich(ctx, session, investments); err != nil {
		return nil, err
	}

	r.logger.Debug().Int("investments", len(investments)).Msg("Investments fetched")
	return investments, nil
}

// enrich fills in missing product snapshots. Each goroutine writes only its
// own slot.
func (r *Repository) enrich(ctx context.Context, session *models.Session, investments []*models.Investment) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.fanOut)

	for i, inv := range investments {
		if inv.Product != nil {
			continue
		}
		g.Go(func() error {
			investments[i].Product = r.resolve(gctx, session, inv.ProductID)
			return ctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to resolve products: %w", err)
	}
	return nil
}

// resolve never fails: unresolvable products become placeholders.
func (r *Repository) resolve(ctx context.Context, session *models.Session, productID string) *models.Product {
	if p := r.resolver.Lookup(productID); p != nil && p.Name != "" {
		return p
	}

	if productID != "" && ctx.Err() == nil {
		p, err := r.resolver.FetchProduct(ctx, session, productID)
		if err == nil && p != nil && p.Name != "" {
			return p
		}
		if err != nil {
			r.logger.Warn().Err(err).Str("product_id", productID).Msg("Product lookup failed")
		}
	}

	r.logger.Warn().Str("product_id", productID).Msg("Product not found, using placeholder")
	return models.PlaceholderProduct(productID)
}

// Cancel flags a remote investment as cancelled. The caller re-fetches.
func (r *Repository) Cancel(ctx context.Context, session *models.Session, id string) error {
	if !session.Authenticated() {
		return models.ErrUnauthenticated
	}
	if err := r.client.CancelInvestment(ctx, session.Token, id); err != nil {
		return fmt.Errorf("failed to cancel investment %s: %w", id, err)
	}
	r.logger.Info().Str("id", id).Msg("Investment cancelled")
	return nil
}
