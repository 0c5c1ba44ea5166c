// Package memory provides an in-process StateStore. Nothing survives the
// process; it backs ephemeral runs and tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/bobmcallan/gripvest/internal/interfaces"
	"github.com/bobmcallan/gripvest/internal/models"
)

// Ensure Store implements StateStore
var _ interfaces.StateStore = (*Store)(nil)

// Store keeps JSON-encoded copies so callers never share state with it.
type Store struct {
	mu         sync.RWMutex
	session    []byte
	portfolios map[string][]byte
	catalog    []byte
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{portfolios: make(map[string][]byte)}
}

func (s *Store) LoadSession(_ context.Context) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil, fmt.Errorf("session: %w", models.ErrNotFound)
	}
	var out models.Session
	return &out, json.Unmarshal(s.session, &out)
}

func (s *Store) SaveSession(_ context.Context, session *models.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	s.mu.Lock()
	s.session = data
	s.mu.Unlock()
	return nil
}

func (s *Store) ClearSession(_ context.Context) error {
	s.mu.Lock()
	s.session = nil
	s.mu.Unlock()
	return nil
}

func (s *Store) LoadPortfolio(_ context.Context, userID string) (*models.PortfolioState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.portfolios[userID]
	if !ok {
		return nil, fmt.Errorf("portfolio %s: %w", userID, models.ErrNotFound)
	}
	var out models.PortfolioState
	return &out, json.Unmarshal(data, &out)
}

func (s *Store) SavePortfolio(_ context.Context, state *models.PortfolioState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal portfolio: %w", err)
	}
	s.mu.Lock()
	s.portfolios[state.UserID] = data
	s.mu.Unlock()
	return nil
}

func (s *Store) DeletePortfolio(_ context.Context, userID string) error {
	s.mu.Lock()
	delete(s.portfolios, userID)
	s.mu.Unlock()
	return nil
}

func (s *Store) LoadCatalog(_ context.Context) (*models.Catalog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.catalog == nil {
		return nil, fmt.Errorf("catalog: %w", models.ErrNotFound)
	}
	var out models.Catalog
	return &out, json.Unmarshal(s.catalog, &out)
}

func (s *Store) SaveCatalog(_ context.Context, catalog *models.Catalog) error {
	data, err := json.Marshal(catalog)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}
	s.mu.Lock()
	s.catalog = data
	s.mu.Unlock()
	return nil
}

func (s *Store) Close() error {
	return nil
}
