package types

import (
	"context"
	"errors"
)

// CollectionKey names the single durable slot that holds the local
// collection in key/value backends.
const CollectionKey = "bookInventory"

// LocalStore persists the local collection as a whole. Callers attach to a
// backend, read and replace the collection, and detach when done.
type LocalStore interface {
	// Attach opens the backend described by config. Creates the DataDir if
	// it does not exist. Returns ErrAlreadyAttached if already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent. After Detach, Load and
	// Save return ErrStoreDetached.
	Detach() error

	// Load returns the full local collection in stored order. Missing or
	// corrupt data yields an empty collection, not an error.
	Load(ctx context.Context) ([]Book, error)

	// Save replaces the full local collection.
	Save(ctx context.Context, books []Book) error
}

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("local store is detached")
	ErrAlreadyAttached = errors.New("local store is already attached")
)
