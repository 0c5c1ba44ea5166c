package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bobmcallan/gripvest/internal/common"
	"github.com/bobmcallan/gripvest/internal/models"
)

func requireAdmin(session *models.Session) error {
	if !session.Authenticated() {
		return models.ErrUnauthenticated
	}
	if !session.IsAdmin() {
		return fmt.Errorf("catalog management requires the admin role: %w", models.ErrForbidden)
	}
	return nil
}

// adminCatalog loads the local catalog, seeding it on first use.
func (s *Service) adminCatalog(ctx context.Context) (*models.Catalog, error) {
	catalog, err := s.store.LoadCatalog(ctx)
	if errors.Is(err, models.ErrNotFound) {
		return &models.Catalog{Products: SeedProducts()}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load local catalog: %w", err)
	}
	return catalog, nil
}

func (s *Service) saveAdminCatalog(ctx context.Context, catalog *models.Catalog) error {
	catalog.UpdatedAt = s.now()
	if err := s.store.SaveCatalog(ctx, catalog); err != nil {
		return fmt.Errorf("failed to save local catalog: %w", err)
	}
	// A catalog served from the local fallback must reflect admin edits.
	s.mu.RLock()
	fallback := s.source != common.SourceRemote
	s.mu.RUnlock()
	if fallback {
		s.setProducts(catalog.Products, common.SourceFallback)
	}
	return nil
}

// AdminProducts lists the local catalog (admin only)
func (s *Service) AdminProducts(ctx context.Context, session *models.Session) ([]*models.Product, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	catalog, err := s.adminCatalog(ctx)
	if err != nil {
		return nil, err
	}
	return cloneProducts(catalog.Products), nil
}

// CreateProduct adds a product to the local catalog (admin only)
func (s *Service) CreateProduct(ctx context.Context, session *models.Session, product *models.Product) (*models.Product, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	if product == nil {
		return nil, &models.ValidationError{Field: "product", Message: "product is required"}
	}
	p := product.Clone()
	p.Name = strings.TrimSpace(p.Name)
	if err := p.Validate(); err != nil {
		return nil, err
	}

	s.adminMu.Lock()
	defer s.adminMu.Unlock()

	catalog, err := s.adminCatalog(ctx)
	if err != nil {
		return nil, err
	}
	if p.ID == "" {
		p.ID = s.newID()
	} else if catalog.Find(p.ID) != nil {
		return nil, &models.ValidationError{Field: "id", Message: fmt.Sprintf("product %s already exists", p.ID)}
	}
	now := s.now()
	p.CreatedBy = session.UserID()
	p.CreatedAt = &now
	p.UpdatedAt = &now

	catalog.Products = append(catalog.Products, p)
	if err := s.saveAdminCatalog(ctx, catalog); err != nil {
		return nil, err
	}

	s.logger.Info().Str("id", p.ID).Str("name", p.Name).Msg("Product created")
	return p.Clone(), nil
}

// UpdateProduct replaces a product's fields in the local catalog (admin only).
// Identity and creation metadata are preserved.
func (s *Service) UpdateProduct(ctx context.Context, session *models.Session, id string, product *models.Product) (*models.Product, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	if product == nil {
		return nil, &models.ValidationError{Field: "product", Message: "product is required"}
	}

	s.adminMu.Lock()
	defer s.adminMu.Unlock()

	catalog, err := s.adminCatalog(ctx)
	if err != nil {
		return nil, err
	}
	existing := catalog.Find(id)
	if existing == nil {
		return nil, fmt.Errorf("product %s: %w", id, models.ErrNotFound)
	}

	p := product.Clone()
	p.ID = existing.ID
	p.Name = strings.TrimSpace(p.Name)
	p.CreatedBy = existing.CreatedBy
	p.CreatedAt = existing.CreatedAt
	if err := p.Validate(); err != nil {
		return nil, err
	}
	now := s.now()
	p.UpdatedAt = &now

	for i := range catalog.Products {
		if catalog.Products[i].ID == id {
			catalog.Products[i] = p
		}
	}
	if err := s.saveAdminCatalog(ctx, catalog); err != nil {
		return nil, err
	}

	s.logger.Info().Str("id", p.ID).Str("name", p.Name).Msg("Product updated")
	return p.Clone(), nil
}

// DeleteProduct removes a product from the local catalog (admin only).
// Investments keep their own product snapshot and are unaffected.
func (s *Service) DeleteProduct(ctx context.Context, session *models.Session, id string) error {
	if err := requireAdmin(session); err != nil {
		return err
	}

	s.adminMu.Lock()
	defer s.adminMu.Unlock()

	catalog, err := s.adminCatalog(ctx)
	if err != nil {
		return err
	}
	if catalog.Find(id) == nil {
		return fmt.Errorf("product %s: %w", id, models.ErrNotFound)
	}

	kept := catalog.Products[:0]
	for _, p := range catalog.Products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	catalog.Products = kept
	if err := s.saveAdminCatalog(ctx, catalog); err != nil {
		return err
	}

	s.logger.Info().Str("id", id).Msg("Product deleted")
	return nil
}

// Stats summarises the local catalog (admin only)
func (s *Service) Stats(ctx context.Context, session *models.Session) (*models.CatalogStats, error) {
	products, err := s.AdminProducts(ctx, session)
	if err != nil {
		return nil, err
	}
	stats := ComputeStats(products)
	return &stats, nil
}

// ComputeStats counts products, averages yield and counts high-risk products.
func ComputeStats(products []*models.Product) models.CatalogStats {
	var stats models.CatalogStats
	var yieldSum float64
	for _, p := range products {
		if p == nil {
			continue
		}
		stats.TotalProducts++
		yieldSum += p.AnnualYield
		if p.RiskLevel == models.RiskHigh {
			stats.HighRiskProducts++
		}
	}
	if stats.TotalProducts > 0 {
		stats.AverageYield = yieldSum / float64(stats.TotalProducts)
	}
	return stats
}
