package investment

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/gripvest/internal/clients/api/apitest"
	"github.com/bobmcallan/gripvest/internal/common"
	"github.com/bobmcallan/gripvest/internal/models"
)

// staticResolver resolves from a fixed catalog and a fetch function.
type staticResolver struct {
	catalog map[string]*models.Product
	fetch   func(ctx context.Context, id string) (*models.Product, error)
}

func (s *staticResolver) Lookup(id string) *models.Product {
	return s.catalog[id].Clone()
}

func (s *staticResolver) FetchProduct(ctx context.Context, _ *models.Session, id string) (*models.Product, error) {
	if s.fetch == nil {
		return nil, apitest.Unreachable
	}
	return s.fetch(ctx, id)
}

func session() *models.Session {
	return &models.Session{User: &models.User{ID: "user-1"}, Token: "tok"}
}

func TestFetch_ResolutionOrder(t *testing.T) {
	stub := &apitest.Stub{ListInvestmentsFunc: func(_ context.Context, token string) ([]*models.Investment, error) {
		assert.Equal(t, "tok", token)
		return []*models.Investment{
			{ID: "a", ProductID: "cat", AmountInvested: 100},
			{ID: "b", ProductID: "remote", AmountInvested: 200},
			{ID: "c", ProductID: "gone", AmountInvested: 300},
			{ID: "d", ProductID: "emb", AmountInvested: 400, Product: &models.Product{ID: "emb", Name: "Embedded"}},
		}, nil
	}}
	resolver := &staticResolver{
		catalog: map[string]*models.Product{"cat": {ID: "cat", Name: "From Catalog"}},
		fetch: func(_ context.Context, id string) (*models.Product, error) {
			if id == "remote" {
				return &models.Product{ID: id, Name: "From API"}, nil
			}
			return nil, errors.New("404")
		},
	}
	repo := NewRepository(stub, resolver, common.NewSilentLogger(), 2)

	got, err := repo.Fetch(context.Background(), session())
	require.NoError(t, err)
	require.Len(t, got, 4)

	assert.Equal(t, []string{"a", "b", "c", "d"}, []string{got[0].ID, got[1].ID, got[2].ID, got[3].ID}, "server order preserved")
	assert.Equal(t, "From Catalog", got[0].Product.Name)
	assert.Equal(t, "From API", got[1].Product.Name)
	assert.Equal(t, models.PlaceholderProductName, got[2].Product.Name)
	assert.Equal(t, "gone", got[2].Product.ID)
	assert.Equal(t, models.RiskModerate, got[2].Product.RiskLevel)
	assert.Equal(t, "Embedded", got[3].Product.Name)
}

func TestFetch_FanOutIsBounded(t *testing.T) {
	var investments []*models.Investment
	for i := 0; i < 12; i++ {
		investments = append(investments, &models.Investment{ID: string(rune('a' + i)), ProductID: string(rune('a' + i))})
	}
	stub := &apitest.Stub{ListInvestmentsFunc: func(context.Context, string) ([]*models.Investment, error) {
		return investments, nil
	}}

	var inFlight, peak int32
	var mu sync.Mutex
	resolver := &staticResolver{fetch: func(_ context.Context, id string) (*models.Product, error) {
		n := atomic.AddInt32(&inFlight, 1)
		mu.Lock()
		if n > peak {
			peak = n
		}
		mu.Unlock()
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return &models.Product{ID: id, Name: "P-" + id}, nil
	}}

	got, err := NewRepository(stub, resolver, common.NewSilentLogger(), 3).Fetch(context.Background(), session())
	require.NoError(t, err)
	for _, inv := range got {
		assert.Equal(t, "P-"+inv.ProductID, inv.Product.Name)
	}
	assert.LessOrEqual(t, peak, int32(3))
}

func TestFetch_ListFailure(t *testing.T) {
	repo := NewRepository(&apitest.Stub{}, &staticResolver{}, common.NewSilentLogger(), 0)
	_, err := repo.Fetch(context.Background(), session())
	require.Error(t, err)
	assert.True(t, models.IsFallbackEligible(err))
}

func TestFetch_RequiresSession(t *testing.T) {
	stub := &apitest.Stub{}
	repo := NewRepository(stub, &staticResolver{}, common.NewSilentLogger(), 0)
	_, err := repo.Fetch(context.Background(), &models.Session{})
	assert.ErrorIs(t, err, models.ErrUnauthenticated)
	assert.Equal(t, 0, stub.Calls("ListInvestments"))
}

func TestFetch_CancelledDuringEnrichment(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	stub := &apitest.Stub{ListInvestmentsFunc: func(context.Context, string) ([]*models.Investment, error) {
		return []*models.Investment{{ID: "a", ProductID: "x"}}, nil
	}}
	resolver := &staticResolver{fetch: func(ctx context.Context, id string) (*models.Product, error) {
		cancel()
		return nil, ctx.Err()
	}}

	_, err := NewRepository(stub, resolver, common.NewSilentLogger(), 1).Fetch(ctx, session())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "failed to resolve products")
}

func TestCancel(t *testing.T) {
	var cancelled string
	stub := &apitest.Stub{CancelInvestmentFunc: func(_ context.Context, token, id string) error {
		cancelled = id
		return nil
	}}
	repo := NewRepository(stub, &staticResolver{}, common.NewSilentLogger(), 0)

	require.NoError(t, repo.Cancel(context.Background(), session(), "inv-1"))
	assert.Equal(t, "inv-1", cancelled)

	stub.CancelInvestmentFunc = nil
	err := repo.Cancel(context.Background(), session(), "inv-2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inv-2")
}
