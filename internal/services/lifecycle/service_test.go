package lifecycle

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/gripvest/internal/clients/api"
	"github.com/bobmcallan/gripvest/internal/clients/api/apitest"
	"github.com/bobmcallan/gripvest/internal/common"
	"github.com/bobmcallan/gripvest/internal/models"
	"github.com/bobmcallan/gripvest/internal/services/catalog"
	"github.com/bobmcallan/gripvest/internal/services/investment"
	"github.com/bobmcallan/gripvest/internal/services/ledger"
	"github.com/bobmcallan/gripvest/internal/storage/memory"
)

var fixedNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func bond() *models.Product {
	return &models.Product{
		ID:             "bond-1",
		Name:           "Stable Bond Portfolio",
		InvestmentType: models.InvestmentTypeBonds,
		TenureMonths:   12,
		AnnualYield:    7.8,
		RiskLevel:      models.RiskLow,
		MinInvestment:  10000,
		MaxInvestment:  models.Float(500000),
	}
}

func newSession(balance float64) *models.Session {
	return &models.Session{User: &models.User{ID: "user-1", Role: models.RoleUser, Balance: balance}, Token: "tok"}
}

func newService(t *testing.T, stub *apitest.Stub, cfg common.LedgerConfig) *Service {
	t.Helper()
	logger := common.NewSilentLogger()
	if stub.ListProductsFunc == nil {
		stub.ListProductsFunc = func(context.Context) ([]*models.Product, error) {
			return []*models.Product{bond()}, nil
		}
	}
	cat := catalog.NewService(stub, memory.NewStore(), logger)
	require.False(t, cat.Load(context.Background()).Failed())

	svc := NewService(stub, cat, investment.NewRepository(stub, cat, logger, 0), ledger.NewService(cfg, logger), logger)
	svc.now = func() time.Time { return fixedNow }
	svc.newID = func() string { return "local-1" }
	return svc
}

func TestPurchase_Remote(t *testing.T) {
	stub := &apitest.Stub{CreateInvestmentFunc: func(_ context.Context, token, productID string, amount float64) (*models.Investment, error) {
		assert.Equal(t, "tok", token)
		assert.Equal(t, "bond-1", productID)
		return &models.Investment{ID: "srv-9", ProductID: productID, AmountInvested: amount, Status: models.StatusActive}, nil
	}}
	svc := newService(t, stub, common.LedgerConfig{})
	sess := newSession(50000)

	inv, err := svc.Purchase(context.Background(), sess, "bond-1", 15000)
	require.NoError(t, err)
	assert.Equal(t, "srv-9", inv.ID)
	assert.False(t, inv.Local)
	assert.InDelta(t, 1170, inv.ExpectedReturn, 1e-9)
	assert.Equal(t, 15000.0, inv.CurrentValue, "untracked current value defaults to the amount")
	assert.Equal(t, "Stable Bond Portfolio", inv.Product.Name)
	assert.Equal(t, "user-1", inv.UserID)
	assert.Equal(t, fixedNow, inv.PurchaseDate)
	assert.Equal(t, 50000.0, sess.User.Balance, "purchase does not debit")
}

func TestPurchase_OfflineFallback(t *testing.T) {
	stub := &apitest.Stub{}
	svc := newService(t, stub, common.LedgerConfig{})

	inv, err := svc.Purchase(context.Background(), newSession(50000), "bond-1", 15000)
	require.NoError(t, err)
	assert.True(t, inv.Local)
	assert.Equal(t, "local-1", inv.ID)
	assert.Equal(t, models.StatusActive, inv.Status)
	assert.InDelta(t, 1170, inv.ExpectedReturn, 1e-9)
	assert.InDelta(t, 15117, inv.CurrentValue, 1e-9)
	assert.Equal(t, 1, stub.Calls("CreateInvestment"))
}

func TestPurchase_RejectedByServer(t *testing.T) {
	stub := &apitest.Stub{CreateInvestmentFunc: func(context.Context, string, string, float64) (*models.Investment, error) {
		return nil, &api.APIError{StatusCode: http.StatusBadRequest, Message: "product closed", Endpoint: "/api/investments/create"}
	}}
	svc := newService(t, stub, common.LedgerConfig{})

	inv, err := svc.Purchase(context.Background(), newSession(50000), "bond-1", 15000)
	require.Error(t, err)
	assert.Nil(t, inv)
	assert.Contains(t, err.Error(), "product closed")
}

func TestPurchase_Validation(t *testing.T) {
	stub := &apitest.Stub{}
	svc := newService(t, stub, common.LedgerConfig{})
	ctx := context.Background()

	tests := []struct {
		name   string
		amount float64
	}{
		{"zero", 0},
		{"negative", -5},
		{"below minimum", 9999},
		{"above maximum", 500001},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := newSession(1e9)
			_, err := svc.Purchase(ctx, sess, "bond-1", tt.amount)
			var ve *models.ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Equal(t, "amount", ve.Field)
			assert.Equal(t, 1e9, sess.User.Balance)
		})
	}
	assert.Equal(t, 0, stub.Calls("CreateInvestment"))
}

func TestPurchase_Balance(t *testing.T) {
	stub := &apitest.Stub{}
	svc := newService(t, stub, common.LedgerConfig{})
	_, err := svc.Purchase(context.Background(), newSession(12000), "bond-1", 15000)
	assert.ErrorIs(t, err, models.ErrInsufficientFunds)
	assert.Equal(t, 0, stub.Calls("CreateInvestment"))

	overdraft := newService(t, &apitest.Stub{}, common.LedgerConfig{AllowOverdraft: true})
	_, err = overdraft.Purchase(context.Background(), newSession(0), "bond-1", 15000)
	assert.NoError(t, err)
}

func TestPurchase_UnknownProduct(t *testing.T) {
	svc := newService(t, &apitest.Stub{}, common.LedgerConfig{})
	_, err := svc.Purchase(context.Background(), newSession(50000), "nope", 15000)
	require.Error(t, err)
}

func TestPurchase_RequiresSession(t *testing.T) {
	svc := newService(t, &apitest.Stub{}, common.LedgerConfig{})
	_, err := svc.Purchase(context.Background(), &models.Session{}, "bond-1", 15000)
	assert.ErrorIs(t, err, models.ErrUnauthenticated)
}

func TestCancel_Remote(t *testing.T) {
	var cancelled string
	stub := &apitest.Stub{CancelInvestmentFunc: func(_ context.Context, _, id string) error {
		cancelled = id
		return nil
	}}
	svc := newService(t, stub, common.LedgerConfig{})
	inv := &models.Investment{ID: "srv-1", AmountInvested: 15000, CurrentValue: 15500, ExpectedReturn: 1170, Status: models.StatusActive}

	updated, err := svc.Cancel(context.Background(), newSession(0), inv)
	require.NoError(t, err)
	assert.Equal(t, "srv-1", cancelled)
	assert.Equal(t, models.StatusCancelled, updated.Status)
	assert.Equal(t, models.StatusActive, inv.Status, "input is not mutated")
	assert.Equal(t, inv.AmountInvested, updated.AmountInvested)
	assert.Equal(t, inv.CurrentValue, updated.CurrentValue)
	assert.Equal(t, inv.ExpectedReturn, updated.ExpectedReturn)
}

func TestCancel_Local(t *testing.T) {
	stub := &apitest.Stub{}
	svc := newService(t, stub, common.LedgerConfig{})

	updated, err := svc.Cancel(context.Background(), newSession(0), &models.Investment{ID: "local-1", Local: true})
	require.NoError(t, err)
	assert.True(t, updated.IsCancelled())
	assert.Equal(t, 0, stub.Calls("CancelInvestment"))
}

func TestCancel_Failures(t *testing.T) {
	stub := &apitest.Stub{}
	svc := newService(t, stub, common.LedgerConfig{})
	ctx := context.Background()

	_, err := svc.Cancel(ctx, newSession(0), &models.Investment{ID: "x", Status: "canceled"})
	assert.ErrorIs(t, err, models.ErrValidation)

	inv := &models.Investment{ID: "srv-2", Status: models.StatusActive}
	_, err = svc.Cancel(ctx, newSession(0), inv)
	require.Error(t, err)
	assert.Equal(t, models.StatusActive, inv.Status)
}
