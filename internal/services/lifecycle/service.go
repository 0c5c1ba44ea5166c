// Package lifecycle purchases and cancels investments
package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/gripvest/internal/common"
	"github.com/bobmcallan/gripvest/internal/interfaces"
	"github.com/bobmcallan/gripvest/internal/models"
)

// OfflineGrowth is the share of expected return credited to the current
// value of an investment synthesised offline.
const OfflineGrowth = 0.1

// Ensure Service implements LifecycleService
var _ interfaces.LifecycleService = (*Service)(nil)

// Service implements LifecycleService
type Service struct {
	client  interfaces.MarketplaceClient
	catalog interfaces.CatalogService
	repo    interfaces.InvestmentRepository
	ledger  interfaces.LedgerService
	logger  *common.Logger
	now     func() time.Time
	newID   func() string
}

// NewService creates a new lifecycle service
func NewService(
	client interfaces.MarketplaceClient,
	catalog interfaces.CatalogService,
	repo interfaces.InvestmentRepository,
	ledger interfaces.LedgerService,
	logger *common.Logger,
) *Service {
	return &Service{
		client:  client,
		catalog: catalog,
		repo:    repo,
		ledger:  ledger,
		logger:  logger,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Purchase validates amount against the product bounds and the balance, then
// creates the investment remotely. When the API is unreachable or failing the
// investment is synthesised locally from the same validated inputs. The
// balance is not debited here.
func (s *Service) Purchase(ctx context.Context, session *models.Session, productID string, amount float64) (*models.Investment, error) {
	if !session.Authenticated() {
		return nil, models.ErrUnauthenticated
	}

	product, err := s.catalog.Get(ctx, session, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve product %s: %w", productID, err)
	}
	if err := product.CheckAmount(amount); err != nil {
		return nil, err
	}
	if err := s.ledger.CanAfford(session, amount); err != nil {
		return nil, err
	}

	created, err := s.client.CreateInvestment(ctx, session.Token, product.ID, amount)
	if err != nil {
		if ctx.Err() != nil || !models.IsFallbackEligible(err) {
			return nil, fmt.Errorf("failed to create investment: %w", err)
		}
		s.logger.Warn().Err(err).Str("product_id", product.ID).Msg("Create investment failed, recording offline investment")
		return s.offline(session, product, amount), nil
	}

	inv := s.complete(session, product, amount, created)
	s.logger.Info().Str("id", inv.ID).Str("product", product.Name).Float64("amount", amount).Msg("Investment created")
	return inv, nil
}

// complete fills the fields the server omitted from the validated inputs.
func (s *Service) complete(session *models.Session, product *models.Product, amount float64, created *models.Investment) *models.Investment {
	inv := created.Clone()
	if inv == nil {
		inv = &models.Investment{}
	}
	if inv.ID == "" {
		inv.ID = s.newID()
	}
	if inv.UserID == "" {
		inv.UserID = session.User.ID
	}
	if inv.ProductID == "" {
		inv.ProductID = product.ID
	}
	if inv.Product == nil {
		inv.Product = product.Clone()
	}
	if inv.AmountInvested == 0 {
		inv.AmountInvested = amount
	}
	if inv.ExpectedReturn == 0 {
		inv.ExpectedReturn = inv.Product.ExpectedReturn(inv.AmountInvested)
	}
	if inv.CurrentValue == 0 {
		inv.CurrentValue = inv.AmountInvested
	}
	if inv.PurchaseDate.IsZero() {
		inv.PurchaseDate = s.now()
	}
	inv.Status = models.NormalizeStatus(string(inv.Status))
	return inv
}

func (s *Service) offline(session *models.Session, product *models.Product, amount float64) *models.Investment {
	expected := product.ExpectedReturn(amount)
	return &models.Investment{
		ID:             s.newID(),
		UserID:         session.User.ID,
		ProductID:      product.ID,
		Product:        product.Clone(),
		AmountInvested: amount,
		PurchaseDate:   s.now(),
		ExpectedReturn: expected,
		CurrentValue:   amount + expected*OfflineGrowth,
		Status:         models.StatusActive,
		Local:          true,
	}
}

// Cancel transitions investment to cancelled. Offline investments flip
// locally; remote ones are cancelled through the API and the caller
// re-fetches. Amounts never change.
func (s *Service) Cancel(ctx context.Context, session *models.Session, investment *models.Investment) (*models.Investment, error) {
	if !session.Authenticated() {
		return nil, models.ErrUnauthenticated
	}
	if investment == nil {
		return nil, fmt.Errorf("investment: %w", models.ErrNotFound)
	}
	if investment.IsCancelled() {
		return nil, &models.ValidationError{Field: "status", Message: fmt.Sprintf("investment %s is already cancelled", investment.ID)}
	}

	if !investment.Local {
		if err := s.repo.Cancel(ctx, session, investment.ID); err != nil {
			return nil, err
		}
	} else {
		s.logger.Info().Str("id", investment.ID).Msg("Offline investment cancelled locally")
	}

	updated := investment.Clone()
	updated.Status = models.StatusCancelled
	return updated, nil
}
