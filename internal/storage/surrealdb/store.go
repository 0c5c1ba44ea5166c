// Package surrealdb provides a StateStore backed by a SurrealDB server, for
// sharing one mirror between several machines.
package surrealdb

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/bobmcallan/gripvest/internal/common"
	"github.com/bobmcallan/gripvest/internal/interfaces"
	"github.com/bobmcallan/gripvest/internal/models"
)

const (
	tableSession   = "session"
	tablePortfolio = "portfolio_state"
	tableCatalog   = "catalog"

	sessionID = "current"
	catalogID = "products"

	writeAttempts = 3
)

var tables = []string{tableSession, tablePortfolio, tableCatalog}

// Ensure Store implements StateStore
var _ interfaces.StateStore = (*Store)(nil)

// Store implements StateStore using SurrealDB.
type Store struct {
	db     *surrealdb.DB
	logger *common.Logger
}

// NewStore connects to SurrealDB and ensures the tables exist.
func NewStore(ctx context.Context, logger *common.Logger, config *common.StorageConfig) (*Store, error) {
	db, err := surrealdb.New(config.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if _, err := db.SignIn(ctx, map[string]interface{}{
		"user": config.Username,
		"pass": config.Password,
	}); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to sign in to SurrealDB: %w", err)
	}

	if err := db.Use(ctx, config.Namespace, config.Database); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to select namespace/database: %w", err)
	}

	s, err := newStore(ctx, db, logger)
	if err != nil {
		db.Close(ctx)
		return nil, err
	}

	logger.Info().
		Str("address", config.Address).
		Str("namespace", config.Namespace).
		Str("database", config.Database).
		Msg("SurrealDB state store initialized")
	return s, nil
}

// newStore defines the tables on an already connected database.
func newStore(ctx context.Context, db *surrealdb.DB, logger *common.Logger) (*Store, error) {
	// SurrealDB v3 errors on querying non-existent tables
	for _, table := range tables {
		sql := fmt.Sprintf("DEFINE TABLE IF NOT EXISTS %s SCHEMALESS", table)
		if _, err := surrealdb.Query[any](ctx, db, sql, nil); err != nil {
			return nil, fmt.Errorf("failed to define table %s: %w", table, err)
		}
	}
	return &Store{db: db, logger: logger}, nil
}

// selectRecord reads table:id as a T. Missing records are ErrNotFound.
func selectRecord[T any](ctx context.Context, db *surrealdb.DB, table, id string) (*T, error) {
	rec, err := surrealdb.Select[T](ctx, db, surrealmodels.NewRecordID(table, id))
	if err != nil {
		return nil, fmt.Errorf("failed to select %s '%s': %w", table, id, err)
	}
	if rec == nil {
		return nil, fmt.Errorf("%s '%s': %w", table, id, models.ErrNotFound)
	}
	return rec, nil
}

// upsertRecord writes value as table:id, retrying transient failures.
func upsertRecord[T any](ctx context.Context, s *Store, table, id string, value *T) error {
	sql := "UPSERT $rid CONTENT $rec"
	vars := map[string]any{
		"rid": surrealmodels.NewRecordID(table, id),
		"rec": value,
	}

	var err error
	for attempt := 1; attempt <= writeAttempts; attempt++ {
		_, err = surrealdb.Query[[]T](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			break
		}
		s.logger.Debug().Err(err).Str("table", table).Int("attempt", attempt).Msg("Upsert failed")
	}
	return fmt.Errorf("failed to save %s '%s' after retries: %w", table, id, err)
}

func deleteRecord[T any](ctx context.Context, db *surrealdb.DB, table, id string) error {
	if _, err := surrealdb.Delete[T](ctx, db, surrealmodels.NewRecordID(table, id)); err != nil {
		return fmt.Errorf("failed to delete %s '%s': %w", table, id, err)
	}
	return nil
}

func (s *Store) LoadSession(ctx context.Context) (*models.Session, error) {
	return selectRecord[models.Session](ctx, s.db, tableSession, sessionID)
}

func (s *Store) SaveSession(ctx context.Context, session *models.Session) error {
	return upsertRecord(ctx, s, tableSession, sessionID, session)
}

func (s *Store) ClearSession(ctx context.Context) error {
	return deleteRecord[models.Session](ctx, s.db, tableSession, sessionID)
}

// LoadPortfolio reads the mirror for userID. Investments are stored inline as
// typed fields.
func (s *Store) LoadPortfolio(ctx context.Context, userID string) (*models.PortfolioState, error) {
	return selectRecord[models.PortfolioState](ctx, s.db, tablePortfolio, userID)
}

func (s *Store) SavePortfolio(ctx context.Context, state *models.PortfolioState) error {
	if state.UserID == "" {
		return fmt.Errorf("portfolio state has no user id")
	}
	return upsertRecord(ctx, s, tablePortfolio, state.UserID, state)
}

func (s *Store) DeletePortfolio(ctx context.Context, userID string) error {
	return deleteRecord[models.PortfolioState](ctx, s.db, tablePortfolio, userID)
}

func (s *Store) LoadCatalog(ctx context.Context) (*models.Catalog, error) {
	return selectRecord[models.Catalog](ctx, s.db, tableCatalog, catalogID)
}

func (s *Store) SaveCatalog(ctx context.Context, catalog *models.Catalog) error {
	return upsertRecord(ctx, s, tableCatalog, catalogID, catalog)
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		s.db.Close(context.Background())
	}
	return nil
}
