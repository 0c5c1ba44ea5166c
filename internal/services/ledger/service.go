// Package ledger tracks a user's spendable balance
package ledger

import (
	"fmt"
	"math"

	"github.com/bobmcallan/gripvest/internal/common"
	"github.com/bobmcallan/gripvest/internal/interfaces"
	"github.com/bobmcallan/gripvest/internal/models"
)

// Ensure Service implements LedgerService
var _ interfaces.LedgerService = (*Service)(nil)

// Service implements LedgerService. It mutates the session it is given;
// callers pass a draft and swap it in once the whole operation succeeds.
type Service struct {
	allowOverdraft bool
	logger         *common.Logger
}

// NewService creates a new ledger service
func NewService(cfg common.LedgerConfig, logger *common.Logger) *Service {
	return &Service{
		allowOverdraft: cfg.AllowOverdraft,
		logger:         logger,
	}
}

func validAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return &models.ValidationError{Field: "amount", Message: "amount must be greater than zero"}
	}
	return nil
}

// AddFunds credits amount and returns the new balance
func (s *Service) AddFunds(session *models.Session, amount float64) (float64, error) {
	if !session.Authenticated() {
		return 0, models.ErrUnauthenticated
	}
	if err := validAmount(amount); err != nil {
		return session.User.Balance, err
	}
	session.User.Balance += amount
	s.logger.Info().Str("user", session.User.ID).Float64("amount", amount).Float64("balance", session.User.Balance).Msg("Funds added")
	return session.User.Balance, nil
}

// CanAfford checks a prospective debit without applying it
func (s *Service) CanAfford(session *models.Session, amount float64) error {
	if !session.Authenticated() {
		return models.ErrUnauthenticated
	}
	if err := validAmount(amount); err != nil {
		return err
	}
	if !s.allowOverdraft && amount > session.User.Balance {
		return fmt.Errorf("%s required, %s available: %w",
			common.FormatMoney(amount), common.FormatMoney(session.User.Balance), models.ErrInsufficientFunds)
	}
	return nil
}

// Debit subtracts amount from the balance
func (s *Service) Debit(session *models.Session, amount float64) error {
	if err := s.CanAfford(session, amount); err != nil {
		return err
	}
	session.User.Balance -= amount
	s.logger.Debug().Str("user", session.User.ID).Float64("amount", amount).Float64("balance", session.User.Balance).Msg("Balance debited")
	return nil
}
