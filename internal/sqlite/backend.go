package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// DatabaseFile is the database file name inside DataDir.
const DatabaseFile = "shelf.db"

// Compile-time interface check.
var _ types.LocalStore = (*Backend)(nil)

// Backend implements types.LocalStore on a SQLite database. The whole local
// collection is one JSON array stored under types.CollectionKey.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	key      string
	logger   *zap.Logger
}

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the logger used to report corrupt stored data.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Backend) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithKey overrides the key the collection is stored under.
func WithKey(key string) Option {
	return func(b *Backend) {
		if key != "" {
			b.key = key
		}
	}
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{
		key:    types.CollectionKey,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Attach creates DataDir if it does not exist, opens the database, and
// ensures the schema. Existing data is kept.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, DatabaseFile))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	// One writer at a time; SQLite serializes writes anyway.
	db.SetMaxOpenConns(1)

	for _, ddl := range schemaDDL {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return fmt.Errorf("apply schema: %w", err)
		}
	}

	b.db = db
	b.config = config
	b.attached = true
	return nil
}

// Detach closes the database. Idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}
	b.attached = false
	return nil
}

// Load returns the stored collection. A missing key or an undecodable value
// yields an empty collection.
func (b *Backend) Load(ctx context.Context) ([]types.Book, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	var value string
	err := b.db.QueryRowContext(ctx, selectValueSQL, b.key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return []types.Book{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", b.key, err)
	}

	return decodeCollection([]byte(value), b.logger), nil
}

// Save replaces the stored collection in a single transaction.
func (b *Backend) Save(ctx context.Context, books []types.Book) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}

	if books == nil {
		books = []types.Book{}
	}
	data, err := json.Marshal(books)
	if err != nil {
		return fmt.Errorf("encoding collection: %w", err)
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := tx.ExecContext(ctx, upsertValueSQL, b.key, string(data), now); err != nil {
		return fmt.Errorf("writing %s: %w", b.key, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing %s: %w", b.key, err)
	}
	return nil
}

// decodeCollection parses a JSON array of books. A value that is not an
// array decodes to an empty collection; elements that are not book objects
// are skipped.
func decodeCollection(data []byte, logger *zap.Logger) []types.Book {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		logger.Warn("stored collection is corrupt; using empty collection", zap.Error(err))
		return []types.Book{}
	}

	books := make([]types.Book, 0, len(elems))
	for i, elem := range elems {
		if bytes.Equal(bytes.TrimSpace(elem), []byte("null")) {
			continue
		}
		var book types.Book
		if err := json.Unmarshal(elem, &book); err != nil {
			logger.Warn("skipping malformed stored book", zap.Int("index", i), zap.Error(err))
			continue
		}
		books = append(books, book)
	}
	return books
}
