// Package store opens the LocalStore backend named by a Config.
package store

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/shelf/internal/jsonl"
	"github.com/mesh-intelligence/shelf/internal/memory"
	"github.com/mesh-intelligence/shelf/internal/sqlite"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

// New returns an unattached store for config.Backend.
func New(config types.Config, logger *zap.Logger) (types.LocalStore, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	switch config.Backend {
	case types.BackendSQLite:
		return sqlite.NewBackend(sqlite.WithLogger(logger)), nil
	case types.BackendJSONL:
		return jsonl.NewBackend(logger), nil
	case types.BackendMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrBackendUnknown, config.Backend)
	}
}

// Open returns a store for config that is already attached. The caller
// must Detach it.
//
// Example:
//
//	s, err := store.Open(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".shelf-db",
//	}, logger)
//	defer s.Detach()
func Open(config types.Config, logger *zap.Logger) (types.LocalStore, error) {
	s, err := New(config, logger)
	if err != nil {
		return nil, err
	}
	if err := s.Attach(config); err != nil {
		return nil, fmt.Errorf("attach %s store: %w", config.Backend, err)
	}
	return s, nil
}
