// Package memory provides an in-process LocalStore, used by tests and by
// the "memory" backend for throwaway sessions.
package memory

import (
	"context"
	"sync"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// Compile-time interface check.
var _ types.LocalStore = (*Store)(nil)

// Store keeps the collection in memory. SaveErr and LoadErr, when set,
// are returned by the next Save or Load to simulate storage failures.
type Store struct {
	mu       sync.Mutex
	attached bool
	books    []types.Book
	saves    int

	SaveErr error
	LoadErr error
}

// New returns an unattached store.
func New() *Store {
	return &Store{}
}

// Attach marks the store attached. DataDir is ignored.
func (s *Store) Attach(config types.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}
	s.attached = true
	return nil
}

// Detach marks the store detached. The collection is kept so a later
// Attach sees the same data, as a durable store would.
func (s *Store) Detach() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attached = false
	return nil
}

// Load returns a copy of the collection.
func (s *Store) Load(ctx context.Context) ([]types.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.attached {
		return nil, types.ErrStoreDetached
	}
	if s.LoadErr != nil {
		return nil, s.LoadErr
	}
	return cloneAll(s.books), nil
}

// Save replaces the collection with a copy of books.
func (s *Store) Save(ctx context.Context, books []types.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.attached {
		return types.ErrStoreDetached
	}
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.books = cloneAll(books)
	s.saves++
	return nil
}

// Saves reports how many Save calls succeeded.
func (s *Store) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func cloneAll(books []types.Book) []types.Book {
	out := make([]types.Book, len(books))
	for i, b := range books {
		out[i] = b.Clone()
	}
	return out
}
