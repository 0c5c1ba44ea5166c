// Package catalog provides the investment product catalog
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/gripvest/internal/common"
	"github.com/bobmcallan/gripvest/internal/interfaces"
	"github.com/bobmcallan/gripvest/internal/models"
)

// MaxRecommendations caps the locally derived recommendation list
const MaxRecommendations = 3

// Ensure Service implements CatalogService
var _ interfaces.CatalogService = (*Service)(nil)

// Service implements CatalogService
type Service struct {
	client interfaces.MarketplaceClient
	store  interfaces.StateStore
	logger *common.Logger
	now    func() time.Time
	newID  func() string

	mu       sync.RWMutex
	products []*models.Product
	byID     map[string]*models.Product
	source   common.Source

	adminMu sync.Mutex
}

// NewService creates a new catalog service
func NewService(client interfaces.MarketplaceClient, store interfaces.StateStore, logger *common.Logger) *Service {
	return &Service{
		client: client,
		store:  store,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
		byID:   make(map[string]*models.Product),
	}
}

// Load fetches the catalog from the API. On failure the locally stored
// catalog is used, then the built-in seed.
func (s *Service) Load(ctx context.Context) common.Result[[]*models.Product] {
	res := common.Attempt(ctx, s.client.ListProducts).
		UseFallbackIf(s.logger, "catalog", common.NotCancelled, func() []*models.Product {
			return s.localProducts(ctx)
		})
	if !res.Failed() {
		s.setProducts(res.Value(), res.Source())
		s.logger.Debug().Int("products", len(res.Value())).Str("source", string(res.Source())).Msg("Catalog loaded")
	}
	return res
}

// Products returns a copy of the loaded catalog
func (s *Service) Products() []*models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneProducts(s.products)
}

// Lookup returns the product from the loaded catalog, or nil
func (s *Service) Lookup(id string) *models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byID[id].Clone()
}

// FetchProduct retrieves a single product from the API
func (s *Service) FetchProduct(ctx context.Context, session *models.Session, id string) (*models.Product, error) {
	token := ""
	if session != nil {
		token = session.Token
	}
	p, err := s.client.GetProduct(ctx, token, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product %s: %w", id, err)
	}
	return p, nil
}

// Get resolves a product from the loaded catalog, then the API
func (s *Service) Get(ctx context.Context, session *models.Session, id string) (*models.Product, error) {
	if p := s.Lookup(id); p != nil {
		return p, nil
	}
	p, err := s.FetchProduct(ctx, session, id)
	if err != nil {
		return nil, err
	}
	if p.Name == "" {
		return nil, fmt.Errorf("product %s: %w", id, models.ErrNotFound)
	}
	return p, nil
}

// Recommendations returns products suited to the session user. The local
// fallback ranks loaded products matching the user's risk appetite by yield.
func (s *Service) Recommendations(ctx context.Context, session *models.Session) common.Result[[]*models.Product] {
	if !session.Authenticated() {
		return common.Failure[[]*models.Product](models.ErrUnauthenticated)
	}
	return common.Attempt(ctx, func(ctx context.Context) ([]*models.Product, error) {
		return s.client.ListRecommendations(ctx, session.Token)
	}).UseFallbackIf(s.logger, "recommendations", models.IsFallbackEligible, func() []*models.Product {
		return s.localRecommendations(session.User.RiskAppetite)
	})
}

func (s *Service) localRecommendations(appetite models.RiskLevel) []*models.Product {
	if appetite == "" {
		appetite = models.RiskModerate
	}
	var matches []*models.Product
	for _, p := range s.Products() {
		if p.RiskLevel == appetite {
			matches = append(matches, p)
		}
	}
	if len(matches) == 0 {
		return SeedRecommendations()
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].AnnualYield > matches[j].AnnualYield
	})
	if len(matches) > MaxRecommendations {
		matches = matches[:MaxRecommendations]
	}
	return matches
}

func (s *Service) setProducts(products []*models.Product, source common.Source) {
	products = cloneProducts(products)
	byID := make(map[string]*models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	s.mu.Lock()
	s.products = products
	s.byID = byID
	s.source = source
	s.mu.Unlock()
}

// localProducts returns the stored admin catalog, or the seed when none is stored.
func (s *Service) localProducts(ctx context.Context) []*models.Product {
	catalog, err := s.store.LoadCatalog(ctx)
	if err != nil || len(catalog.Products) == 0 {
		if err != nil && !errors.Is(err, models.ErrNotFound) {
			s.logger.Warn().Err(err).Msg("Failed to load local catalog, using seed")
		}
		return SeedProducts()
	}
	return cloneProducts(catalog.Products)
}

func cloneProducts(in []*models.Product) []*models.Product {
	out := make([]*models.Product, 0, len(in))
	for _, p := range in {
		if p != nil {
			out = append(out, p.Clone())
		}
	}
	return out
}
