// Package storage provides the local state mirror with pluggable backends.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bobmcallan/gripvest/internal/common"
	"github.com/bobmcallan/gripvest/internal/interfaces"
	"github.com/bobmcallan/gripvest/internal/models"
)

// Ensure FileStore implements StateStore
var _ interfaces.StateStore = (*FileStore)(nil)

const (
	dirSession    = "session"
	dirPortfolios = "portfolios"
	dirCatalog    = "catalog"

	sessionKey = "current"
	catalogKey = "products"
)

// FileStore provides file-based JSON storage under a single root.
type FileStore struct {
	basePath string
	logger   *common.Logger
}

// subdirectories defines the directory layout under basePath.
var subdirectories = []string{dirSession, dirPortfolios, dirCatalog}

// NewFileStore creates a new FileStore and ensures all subdirectories exist.
func NewFileStore(logger *common.Logger, path string) (*FileStore, error) {
	fs := &FileStore{
		basePath: path,
		logger:   logger,
	}

	for _, sub := range subdirectories {
		dir := filepath.Join(fs.basePath, sub)
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	logger.Debug().Str("path", path).Msg("FileStore opened")
	return fs, nil
}

// sanitizeKey makes a key safe for use as a filename.
// Replaces /, \, : with _ and collapses ".." to "_" to prevent path traversal.
func (fs *FileStore) sanitizeKey(key string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "..", "_")
	return r.Replace(key)
}

// filePath returns the full path for a key in a subdirectory.
func (fs *FileStore) filePath(sub, key string) string {
	return filepath.Join(fs.basePath, sub, fs.sanitizeKey(key)+".json")
}

// readJSON reads and unmarshals a JSON file. A missing or empty file wraps
// models.ErrNotFound.
func (fs *FileStore) readJSON(sub, key string, dest interface{}) error {
	path := fs.filePath(sub, key)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s '%s': %w", sub, key, models.ErrNotFound)
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(data) == 0 {
		return fmt.Errorf("%s '%s' is empty: %w", sub, key, models.ErrNotFound)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// writeJSON marshals data to indented JSON and writes it atomically.
func (fs *FileStore) writeJSON(sub, key string, data interface{}) error {
	dir := filepath.Join(fs.basePath, sub)
	target := fs.filePath(sub, key)

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	jsonData = append(jsonData, '\n')

	// Atomic write: write to temp file in the same directory, then rename
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(jsonData); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// deleteJSON removes a file; a missing file is not an error.
func (fs *FileStore) deleteJSON(sub, key string) error {
	if err := os.Remove(fs.filePath(sub, key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete %s '%s': %w", sub, key, err)
	}
	return nil
}

func (fs *FileStore) LoadSession(_ context.Context) (*models.Session, error) {
	var session models.Session
	if err := fs.readJSON(dirSession, sessionKey, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (fs *FileStore) SaveSession(_ context.Context, session *models.Session) error {
	return fs.writeJSON(dirSession, sessionKey, session)
}

func (fs *FileStore) ClearSession(_ context.Context) error {
	return fs.deleteJSON(dirSession, sessionKey)
}

func (fs *FileStore) LoadPortfolio(_ context.Context, userID string) (*models.PortfolioState, error) {
	var state models.PortfolioState
	if err := fs.readJSON(dirPortfolios, userID, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (fs *FileStore) SavePortfolio(_ context.Context, state *models.PortfolioState) error {
	if state.UserID == "" {
		return fmt.Errorf("portfolio state has no user id")
	}
	return fs.writeJSON(dirPortfolios, state.UserID, state)
}

func (fs *FileStore) DeletePortfolio(_ context.Context, userID string) error {
	return fs.deleteJSON(dirPortfolios, userID)
}

func (fs *FileStore) LoadCatalog(_ context.Context) (*models.Catalog, error) {
	var catalog models.Catalog
	if err := fs.readJSON(dirCatalog, catalogKey, &catalog); err != nil {
		return nil, err
	}
	return &catalog, nil
}

func (fs *FileStore) SaveCatalog(_ context.Context, catalog *models.Catalog) error {
	return fs.writeJSON(dirCatalog, catalogKey, catalog)
}

// Close is a no-op for the file backend.
func (fs *FileStore) Close() error {
	return nil
}
