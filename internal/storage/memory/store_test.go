package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/bobmcallan/gripvest/internal/models"
)

func TestStore_NotFoundWhenEmpty(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	if _, err := s.LoadSession(ctx); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("LoadSession: got %v, want ErrNotFound", err)
	}
	if _, err := s.LoadPortfolio(ctx, "user-1"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("LoadPortfolio: got %v, want ErrNotFound", err)
	}
	if _, err := s.LoadCatalog(ctx); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("LoadCatalog: got %v, want ErrNotFound", err)
	}
}

func TestStore_CopiesOnSaveAndLoad(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	state := &models.PortfolioState{
		UserID:      "user-1",
		Investments: []*models.Investment{{ID: "a", AmountInvested: 1000}},
	}
	if err := s.SavePortfolio(ctx, state); err != nil {
		t.Fatalf("SavePortfolio: %v", err)
	}
	state.Investments[0].AmountInvested = 5

	got, err := s.LoadPortfolio(ctx, "user-1")
	if err != nil {
		t.Fatalf("LoadPortfolio: %v", err)
	}
	if got.Investments[0].AmountInvested != 1000 {
		t.Errorf("stored state changed through the caller's pointer: %v", got.Investments[0].AmountInvested)
	}

	got.Investments[0].AmountInvested = 7
	again, _ := s.LoadPortfolio(ctx, "user-1")
	if again.Investments[0].AmountInvested != 1000 {
		t.Errorf("loaded state shares memory with the store")
	}

	if err := s.DeletePortfolio(ctx, "user-1"); err != nil {
		t.Fatalf("DeletePortfolio: %v", err)
	}
	if _, err := s.LoadPortfolio(ctx, "user-1"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("after delete: got %v", err)
	}
}

func TestStore_SessionRoundTrip(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	session := &models.Session{User: &models.User{ID: "user-1", Balance: 50000}, Token: "tok"}
	if err := s.SaveSession(ctx, session); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	got, err := s.LoadSession(ctx)
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if got.Token != "tok" || got.User.Balance != 50000 {
		t.Errorf("session = %+v", got)
	}

	if err := s.ClearSession(ctx); err != nil {
		t.Fatalf("ClearSession: %v", err)
	}
	if _, err := s.LoadSession(ctx); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("after clear: got %v", err)
	}
}
