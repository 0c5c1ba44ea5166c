package app

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/gripvest/internal/clients/api"
	"github.com/bobmcallan/gripvest/internal/clients/api/apitest"
	"github.com/bobmcallan/gripvest/internal/common"
	"github.com/bobmcallan/gripvest/internal/models"
	"github.com/bobmcallan/gripvest/internal/storage/memory"
)

func bondProduct() *models.Product {
	return &models.Product{
		ID:             "bond-1",
		Name:           "Stable Bond Portfolio",
		InvestmentType: models.InvestmentTypeBonds,
		TenureMonths:   12,
		AnnualYield:    7.8,
		RiskLevel:      models.RiskLow,
		MinInvestment:  10000,
	}
}

func customer(balance float64) *models.Session {
	return &models.Session{User: &models.User{ID: "user-1", Role: models.RoleUser, Balance: balance}, Token: "tok"}
}

// newTestApp wires the app over a stub whose catalog holds bondProduct.
func newTestApp(t *testing.T, stub *apitest.Stub) (*App, *memory.Store) {
	t.Helper()
	if stub.ListProductsFunc == nil {
		stub.ListProductsFunc = func(context.Context) ([]*models.Product, error) {
			return []*models.Product{bondProduct()}, nil
		}
	}
	store := memory.NewStore()
	a := NewAppWithDeps(common.NewDefaultConfig(), common.NewSilentLogger(), store, stub, nil)
	return a, store
}

func TestRefresh_Remote(t *testing.T) {
	stub := &apitest.Stub{ListInvestmentsFunc: func(context.Context, string) ([]*models.Investment, error) {
		return []*models.Investment{
			{ID: "a", ProductID: "bond-1", AmountInvested: 15000, ExpectedReturn: 1170, CurrentValue: 15000, Status: models.StatusActive},
			{ID: "b", ProductID: "bond-1", AmountInvested: 5000, ExpectedReturn: 390, CurrentValue: 5000, Status: models.StatusCancelled},
		}, nil
	}}
	a, store := newTestApp(t, stub)
	d := NewDashboard(customer(50000), a)

	snap, err := d.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, common.SourceRemote, snap.InvestmentsSource)
	assert.Equal(t, "Stable Bond Portfolio", snap.Investments[0].Product.Name)
	assert.Equal(t, models.PortfolioSummary{
		TotalInvested:     20000,
		CurrentValue:      20000,
		TotalReturns:      1560,
		ReturnsPercentage: 7.8,
		ActiveInvestments: 1,
	}, snap.Summary)
	assert.InDelta(t, 100, snap.RiskDistribution.Low, 1e-9)
	assert.Equal(t, models.RiskProfileConservative, snap.RiskProfile)

	mirror, err := store.LoadPortfolio(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, mirror.Investments, 2)
}

func TestRefresh_FallsBackToMirror(t *testing.T) {
	a, store := newTestApp(t, &apitest.Stub{})
	ctx := context.Background()
	require.NoError(t, store.SavePortfolio(ctx, &models.PortfolioState{
		UserID:      "user-1",
		Investments: []*models.Investment{{ID: "m", AmountInvested: 1000, CurrentValue: 1000, Status: models.StatusActive}},
	}))

	snap, err := NewDashboard(customer(0), a).Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, common.SourceFallback, snap.InvestmentsSource)
	require.Len(t, snap.Investments, 1)
	assert.Equal(t, "m", snap.Investments[0].ID)
	assert.Equal(t, 1, snap.Summary.ActiveInvestments)
}

func TestRefresh_KeepsOfflineInvestments(t *testing.T) {
	stub := &apitest.Stub{ListInvestmentsFunc: func(context.Context, string) ([]*models.Investment, error) {
		return []*models.Investment{{ID: "srv", ProductID: "bond-1", AmountInvested: 10000, Status: models.StatusActive}}, nil
	}}
	a, store := newTestApp(t, stub)
	ctx := context.Background()
	require.NoError(t, store.SavePortfolio(ctx, &models.PortfolioState{
		UserID: "user-1",
		Investments: []*models.Investment{
			{ID: "srv", AmountInvested: 10000, Status: models.StatusActive},
			{ID: "off", AmountInvested: 2000, Status: models.StatusActive, Local: true},
		},
	}))

	snap, err := NewDashboard(customer(0), a).Refresh(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Investments, 2)
	assert.Equal(t, "srv", snap.Investments[0].ID)
	assert.Equal(t, "off", snap.Investments[1].ID)
	assert.Equal(t, 12000.0, snap.Summary.TotalInvested)
}

func TestRefresh_NewerRefreshWins(t *testing.T) {
	started := make(chan struct{})
	var once sync.Once
	stub := &apitest.Stub{ListInvestmentsFunc: func(ctx context.Context, _ string) ([]*models.Investment, error) {
		first := false
		once.Do(func() { first = true })
		if first {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return []*models.Investment{{ID: "fresh", ProductID: "bond-1", AmountInvested: 10000}}, nil
	}}
	a, _ := newTestApp(t, stub)
	d := NewDashboard(customer(0), a)

	errc := make(chan error, 1)
	go func() {
		_, err := d.Refresh(context.Background())
		errc <- err
	}()
	<-started

	snap, err := d.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Investments, 1)
	assert.Equal(t, "fresh", snap.Investments[0].ID)

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, ErrSuperseded)
	case <-time.After(5 * time.Second):
		t.Fatal("superseded refresh did not return")
	}
	assert.Equal(t, "fresh", d.Snapshot().Investments[0].ID)
}

func TestPurchase_AppliesDebitAndInvestmentTogether(t *testing.T) {
	a, store := newTestApp(t, &apitest.Stub{})
	d := NewDashboard(customer(50000), a)
	ctx := context.Background()
	_, err := d.Refresh(ctx)
	require.NoError(t, err)

	inv, err := d.Purchase(ctx, "bond-1", 15000)
	require.NoError(t, err)
	assert.True(t, inv.Local)

	snap := d.Snapshot()
	assert.Equal(t, 35000.0, snap.Session.User.Balance)
	require.Len(t, snap.Investments, 1)
	assert.InDelta(t, 1170, snap.Summary.TotalReturns, 1e-9)
	assert.Equal(t, 1, snap.Summary.ActiveInvestments)

	stored, err := store.LoadSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, 35000.0, stored.User.Balance)
	mirror, err := store.LoadPortfolio(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, mirror.LocalInvestments(), 1)
}

func TestPurchase_RejectedLeavesStateUntouched(t *testing.T) {
	a, store := newTestApp(t, &apitest.Stub{})
	d := NewDashboard(customer(50000), a)
	ctx := context.Background()
	_, err := d.Refresh(ctx)
	require.NoError(t, err)

	_, err = d.Purchase(ctx, "bond-1", 5000)
	assert.ErrorIs(t, err, models.ErrValidation)
	_, err = d.Purchase(ctx, "bond-1", 60000)
	assert.ErrorIs(t, err, models.ErrInsufficientFunds)

	snap := d.Snapshot()
	assert.Equal(t, 50000.0, snap.Session.User.Balance)
	assert.Empty(t, snap.Investments)
	_, err = store.LoadSession(ctx)
	assert.ErrorIs(t, err, models.ErrNotFound, "nothing persisted")
}

func TestCancel_RefetchesAndKeepsAmounts(t *testing.T) {
	cancelled := false
	stub := &apitest.Stub{
		ListInvestmentsFunc: func(context.Context, string) ([]*models.Investment, error) {
			status := models.StatusActive
			if cancelled {
				status = models.StatusCancelled
			}
			return []*models.Investment{{ID: "a", ProductID: "bond-1", AmountInvested: 15000, ExpectedReturn: 1170, CurrentValue: 15200, Status: status}}, nil
		},
		CancelInvestmentFunc: func(_ context.Context, _, id string) error {
			cancelled = id == "a"
			return nil
		},
	}
	a, _ := newTestApp(t, stub)
	d := NewDashboard(customer(0), a)
	ctx := context.Background()

	before, err := d.Refresh(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, before.Summary.ActiveInvestments)

	updated, err := d.Cancel(ctx, "a")
	require.NoError(t, err)
	assert.True(t, updated.IsCancelled())

	after := d.Snapshot()
	assert.Equal(t, before.Summary.ActiveInvestments-1, after.Summary.ActiveInvestments)
	assert.Equal(t, before.Summary.TotalInvested, after.Summary.TotalInvested)
	assert.Equal(t, before.Summary.CurrentValue, after.Summary.CurrentValue)
	assert.Equal(t, 2, stub.Calls("ListInvestments"))

	_, err = d.Cancel(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCancel_FailureLeavesStateUntouched(t *testing.T) {
	stub := &apitest.Stub{ListInvestmentsFunc: func(context.Context, string) ([]*models.Investment, error) {
		return []*models.Investment{{ID: "a", ProductID: "bond-1", AmountInvested: 15000, Status: models.StatusActive}}, nil
	}}
	a, _ := newTestApp(t, stub)
	d := NewDashboard(customer(0), a)
	ctx := context.Background()
	_, err := d.Refresh(ctx)
	require.NoError(t, err)

	_, err = d.Cancel(ctx, "a")
	require.Error(t, err)
	assert.Equal(t, 1, d.Snapshot().Summary.ActiveInvestments)
}

func TestAddFunds(t *testing.T) {
	a, store := newTestApp(t, &apitest.Stub{})
	d := NewDashboard(customer(100), a)
	ctx := context.Background()

	balance, err := d.AddFunds(ctx, 900)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, balance)

	_, err = d.AddFunds(ctx, 0)
	assert.True(t, errors.Is(err, models.ErrValidation))
	assert.Equal(t, 1000.0, d.Snapshot().Session.User.Balance)

	stored, err := store.LoadSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, stored.User.Balance)
}

func TestInsightsAndRecommendations(t *testing.T) {
	a, _ := newTestApp(t, &apitest.Stub{})
	d := NewDashboard(customer(50000), a)
	ctx := context.Background()
	_, err := d.Refresh(ctx)
	require.NoError(t, err)
	_, err = d.Purchase(ctx, "bond-1", 20000)
	require.NoError(t, err)

	in := d.Insights(ctx)
	require.False(t, in.Failed())
	assert.Equal(t, common.SourceFallback, in.Source())
	assert.Equal(t, 20000.0, in.Value().TotalInvested)

	recs := d.Recommendations(ctx)
	require.False(t, recs.Failed())
	assert.NotEmpty(t, recs.Value())
}

func TestSnapshot_IsACopy(t *testing.T) {
	a, _ := newTestApp(t, &apitest.Stub{})
	d := NewDashboard(customer(50000), a)
	snap := d.Snapshot()
	snap.Session.User.Balance = 0
	assert.Equal(t, 50000.0, d.Snapshot().Session.User.Balance)
}

func TestPurchase_CreatedWithoutBodyStillDebits(t *testing.T) {
	var created int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/products/":
			io.WriteString(w, `[{"id":"bond-1","name":"Stable Bond Portfolio","investment_type":"bonds","tenure_months":12,"annual_yield":7.8,"risk_level":"low","min_investment":10000}]`)
		case "/api/investments/":
			io.WriteString(w, `[]`)
		case "/api/investments/create":
			atomic.AddInt32(&created, 1)
			w.WriteHeader(http.StatusCreated)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := api.NewClient(api.WithBaseURL(srv.URL), api.WithRetry(0, 0), api.WithRateLimit(1000))
	a := NewAppWithDeps(common.NewDefaultConfig(), common.NewSilentLogger(), memory.NewStore(), client, nil)
	d := NewDashboard(customer(50000), a)
	ctx := context.Background()
	_, err := d.Refresh(ctx)
	require.NoError(t, err)

	inv, err := d.Purchase(ctx, "bond-1", 15000)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&created))
	assert.False(t, inv.Local)
	assert.NotEmpty(t, inv.ID)
	assert.Equal(t, "bond-1", inv.ProductID)
	assert.InDelta(t, 1170, inv.ExpectedReturn, 1e-9)

	snap := d.Snapshot()
	assert.Equal(t, 35000.0, snap.Session.User.Balance)
	require.Len(t, snap.Investments, 1)
	assert.Equal(t, 1, snap.Summary.ActiveInvestments)
}

func TestRefresh_RejectedTokenDoesNotUseMirror(t *testing.T) {
	rejected := &api.APIError{StatusCode: http.StatusUnauthorized, Message: "jwt expired", Endpoint: "/api/investments/"}
	forbidden := &api.APIError{StatusCode: http.StatusForbidden, Message: "forbidden", Endpoint: "/api/products/recommendations"}
	stub := &apitest.Stub{
		ListInvestmentsFunc:     func(context.Context, string) ([]*models.Investment, error) { return nil, rejected },
		GetInsightsFunc:         func(context.Context, string) (*models.Insights, error) { return nil, rejected },
		ListRecommendationsFunc: func(context.Context, string) ([]*models.Product, error) { return nil, forbidden },
	}
	a, store := newTestApp(t, stub)
	ctx := context.Background()
	require.NoError(t, store.SavePortfolio(ctx, &models.PortfolioState{
		UserID:      "user-1",
		Investments: []*models.Investment{{ID: "m", AmountInvested: 1000, Status: models.StatusActive}},
	}))
	d := NewDashboard(customer(0), a)

	_, err := d.Refresh(ctx)
	assert.ErrorIs(t, err, models.ErrUnauthenticated)
	assert.Empty(t, d.Snapshot().Investments)

	assert.ErrorIs(t, d.Insights(ctx).Err(), models.ErrUnauthenticated)
	assert.ErrorIs(t, d.Recommendations(ctx).Err(), models.ErrForbidden)
}
