// Package inventory implements the book inventory: a locally persisted
// collection layered over a read-only remote collection.
//
// Reads merge both sources with local records taking precedence. Writes
// only ever touch the local store, which is rewritten in full on every
// mutation.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/shelf/internal/metrics"
	"github.com/mesh-intelligence/shelf/pkg/types"
	"github.com/mesh-intelligence/shelf/pkg/validator"
)

// RemoteSource is the read-only remote collection.
type RemoteSource interface {
	List(ctx context.Context) ([]types.Book, error)
	Get(ctx context.Context, id string) (types.Book, error)
}

// Listing is the result of ListAll. RemoteErr is set when the remote
// collection could not be fetched and Books holds local records only.
type Listing struct {
	Books     []types.Book
	RemoteErr error
}

// Degraded reports whether the listing is missing the remote collection.
func (l Listing) Degraded() bool {
	return l.RemoteErr != nil
}

// Inventory is the record store. It is safe for concurrent use; mutations
// are serialized so concurrent writers in one process do not lose updates.
type Inventory struct {
	mu            sync.Mutex
	local         types.LocalStore
	remote        RemoteSource
	logger        *zap.Logger
	metrics       *metrics.Metrics
	promoteRemote bool
	now           func() time.Time
	newID         func() (string, error)
}

// Option configures an Inventory.
type Option func(*Inventory)

// WithRemote sets the remote collection. Without one, listings and
// lookups are local only.
func WithRemote(r RemoteSource) Option {
	return func(inv *Inventory) { inv.remote = r }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(inv *Inventory) {
		if logger != nil {
			inv.logger = logger
		}
	}
}

// WithMetrics sets the operation counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(inv *Inventory) { inv.metrics = m }
}

// WithPromoteRemote lets Update copy a remote-only record into the local
// collection instead of failing with ErrNotFound.
func WithPromoteRemote(enabled bool) Option {
	return func(inv *Inventory) { inv.promoteRemote = enabled }
}

// WithClock sets the clock used for the current year in validation.
func WithClock(now func() time.Time) Option {
	return func(inv *Inventory) {
		if now != nil {
			inv.now = now
		}
	}
}

func withIDGenerator(gen func() (string, error)) Option {
	return func(inv *Inventory) { inv.newID = gen }
}

// New returns an inventory over an attached local store.
func New(local types.LocalStore, opts ...Option) *Inventory {
	inv := &Inventory{
		local:  local,
		logger: zap.NewNop(),
		now:    time.Now,
		newID:  newUUID,
	}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

func newUUID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// ListAll returns the remote collection followed by the local one, with
// local records shadowing remote records of the same id. A remote failure
// is not an error: the local collection is returned with RemoteErr set.
func (inv *Inventory) ListAll(ctx context.Context) (Listing, error) {
	local, err := inv.load(ctx)
	if err != nil {
		inv.metrics.ObserveOperation("list", "", err)
		return Listing{}, err
	}

	if inv.remote == nil {
		inv.metrics.ObserveOperation("list", metrics.ResultOK, nil)
		return Listing{Books: local}, nil
	}

	remote, err := inv.remote.List(ctx)
	inv.metrics.ObserveRemote("list", err)
	if err != nil {
		inv.logger.Warn("remote collection unavailable, listing local records only", zap.Error(err))
		inv.metrics.ObserveOperation("list", metrics.ResultDegraded, nil)
		return Listing{Books: local, RemoteErr: err}, nil
	}

	if n := countMissingIDs(remote); n > 0 {
		inv.logger.Warn("dropping remote books without an id", zap.Int("count", n))
	}
	inv.metrics.ObserveOperation("list", metrics.ResultOK, nil)
	return Listing{Books: Merge(remote, local)}, nil
}

func countMissingIDs(books []types.Book) int {
	n := 0
	for _, b := range books {
		if b.ID == "" {
			n++
		}
	}
	return n
}

// Get returns the local record with id, or else the remote one. It fails
// with ErrNotFound when neither source has it.
func (inv *Inventory) Get(ctx context.Context, id string) (types.Book, error) {
	b, err := inv.get(ctx, id)
	inv.metrics.ObserveOperation("get", "", err)
	return b, err
}

func (inv *Inventory) get(ctx context.Context, id string) (types.Book, error) {
	if id == "" {
		return types.Book{}, types.ErrInvalidID
	}

	local, err := inv.load(ctx)
	if err != nil {
		return types.Book{}, err
	}
	if i := indexOf(local, id); i >= 0 {
		return local[i], nil
	}

	if inv.remote == nil {
		return types.Book{}, fmt.Errorf("book %q: %w", id, types.ErrNotFound)
	}
	b, err := inv.remote.Get(ctx, id)
	inv.metrics.ObserveRemote("get", err)
	if err != nil {
		return types.Book{}, err
	}
	return b, nil
}

// Create assigns a new id to b, appends it to the local collection and
// persists the collection. The remote collection is never touched.
func (inv *Inventory) Create(ctx context.Context, b types.Book) (types.Book, error) {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	created, err := inv.create(ctx, b)
	inv.metrics.ObserveOperation("create", "", err)
	return created, err
}

func (inv *Inventory) create(ctx context.Context, b types.Book) (types.Book, error) {
	local, err := inv.load(ctx)
	if err != nil {
		return types.Book{}, err
	}

	id, err := inv.uniqueID(local)
	if err != nil {
		return types.Book{}, err
	}
	created := b.Canonical().WithID(id)

	if err := inv.save(ctx, append(local, created)); err != nil {
		return types.Book{}, err
	}
	inv.logger.Info("book created", zap.String("id", id))
	return created.Clone(), nil
}

// uniqueID draws ids until one is unused locally.
func (inv *Inventory) uniqueID(local []types.Book) (string, error) {
	const attempts = 8
	for range attempts {
		id, err := inv.newID()
		if err != nil {
			return "", fmt.Errorf("generate id: %w", err)
		}
		if id != "" && indexOf(local, id) < 0 {
			return id, nil
		}
	}
	return "", errors.New("generate id: no unused id after retries")
}

// Update replaces the local record with id by b, keeping the id. It fails
// with ErrNotFound when no local record has the id, unless remote
// promotion is enabled and the remote collection has it.
func (inv *Inventory) Update(ctx context.Context, id string, b types.Book) (types.Book, error) {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	updated, err := inv.update(ctx, id, b)
	inv.metrics.ObserveOperation("update", "", err)
	return updated, err
}

func (inv *Inventory) update(ctx context.Context, id string, b types.Book) (types.Book, error) {
	if id == "" {
		return types.Book{}, types.ErrInvalidID
	}

	local, err := inv.load(ctx)
	if err != nil {
		return types.Book{}, err
	}

	updated := b.Canonical().WithID(id)
	if i := indexOf(local, id); i >= 0 {
		local[i] = updated
	} else {
		if err := inv.promotable(ctx, id); err != nil {
			return types.Book{}, err
		}
		local = append(local, updated)
		inv.logger.Info("promoting remote book to local collection", zap.String("id", id))
	}

	if err := inv.save(ctx, local); err != nil {
		return types.Book{}, err
	}
	inv.logger.Info("book updated", zap.String("id", id))
	return updated.Clone(), nil
}

// promotable returns nil when a remote-only record with id may be
// promoted by an update.
func (inv *Inventory) promotable(ctx context.Context, id string) error {
	notFound := fmt.Errorf("book %q: %w", id, types.ErrNotFound)
	if !inv.promoteRemote || inv.remote == nil {
		return notFound
	}
	_, err := inv.remote.Get(ctx, id)
	inv.metrics.ObserveRemote("get", err)
	return err
}

// Delete removes every local record with id. Deleting an id that is not
// stored locally succeeds without writing.
func (inv *Inventory) Delete(ctx context.Context, id string) error {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	err := inv.delete(ctx, id)
	inv.metrics.ObserveOperation("delete", "", err)
	return err
}

func (inv *Inventory) delete(ctx context.Context, id string) error {
	if id == "" {
		return types.ErrInvalidID
	}

	local, err := inv.load(ctx)
	if err != nil {
		return err
	}

	kept := local[:0]
	for _, b := range local {
		if b.ID != id {
			kept = append(kept, b)
		}
	}
	if len(kept) == len(local) {
		inv.logger.Debug("delete of absent book is a no-op", zap.String("id", id))
		return nil
	}

	if err := inv.save(ctx, kept); err != nil {
		return err
	}
	inv.logger.Info("book deleted", zap.String("id", id))
	return nil
}

// Validate checks b against the field rules using the inventory clock.
// An empty result means b is valid.
func (inv *Inventory) Validate(b types.Book) types.ValidationErrors {
	errs := validator.BookAt(&b, inv.now())
	if len(errs) > 0 {
		inv.metrics.ObserveOperation("validate", metrics.ResultInvalid, nil)
	} else {
		inv.metrics.ObserveOperation("validate", metrics.ResultOK, nil)
	}
	return errs
}

func (inv *Inventory) load(ctx context.Context) ([]types.Book, error) {
	books, err := inv.local.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load local collection: %w", types.ErrPersistence, err)
	}
	return books, nil
}

func (inv *Inventory) save(ctx context.Context, books []types.Book) error {
	if err := inv.local.Save(ctx, books); err != nil {
		inv.logger.Error("persisting local collection failed", zap.Error(err))
		return fmt.Errorf("%w: save local collection: %w", types.ErrPersistence, err)
	}
	return nil
}

func indexOf(books []types.Book, id string) int {
	for i, b := range books {
		if b.ID == id {
			return i
		}
	}
	return -1
}
