package storage

import (
	"context"
	"fmt"

	"github.com/bobmcallan/gripvest/internal/common"
	"github.com/bobmcallan/gripvest/internal/interfaces"
	"github.com/bobmcallan/gripvest/internal/storage/memory"
	"github.com/bobmcallan/gripvest/internal/storage/surrealdb"
)

// Backend type constants.
const (
	BackendFile      = "file"
	BackendSurrealDB = "surrealdb"
	BackendMemory    = "memory"
)

// NewStateStore creates a state store based on the configuration.
// Supported backends: "file" (default), "surrealdb", "memory".
func NewStateStore(ctx context.Context, logger *common.Logger, config *common.StorageConfig) (interfaces.StateStore, error) {
	backend := config.Backend
	if backend == "" {
		backend = BackendFile
	}

	switch backend {
	case BackendFile:
		return NewFileStore(logger, config.Path)

	case BackendSurrealDB:
		return surrealdb.NewStore(ctx, logger, config)

	case BackendMemory:
		logger.Debug().Msg("Using in-memory state store; nothing will persist")
		return memory.NewStore(), nil

	default:
		return nil, fmt.Errorf("unknown storage backend: %s (supported: file, surrealdb, memory)", backend)
	}
}
