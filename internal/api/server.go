// Package api serves the inventory over a JSON HTTP interface.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/shelf/internal/inventory"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

// Inventory is the set of record store operations the API exposes.
type Inventory interface {
	ListAll(ctx context.Context) (inventory.Listing, error)
	Get(ctx context.Context, id string) (types.Book, error)
	Create(ctx context.Context, b types.Book) (types.Book, error)
	Update(ctx context.Context, id string, b types.Book) (types.Book, error)
	Delete(ctx context.Context, id string) error
	Validate(b types.Book) types.ValidationErrors
}

// shutdownTimeout bounds how long in-flight requests get once Serve's
// context is cancelled.
const shutdownTimeout = 20 * time.Second

// Server holds the dependencies shared by all handlers.
type Server struct {
	inv      Inventory
	logger   *zap.Logger
	gatherer prometheus.Gatherer

	// Per-client rate limiting; disabled when rps is zero.
	rps       float64
	burst     int
	mu        sync.Mutex
	clients   map[string]*client
	lastSweep time.Time
	now       func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request error logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithGatherer exposes g on GET /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// WithRateLimit allows rps requests per second per client IP with the
// given burst. A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		s.rps = rps
		s.burst = max(burst, 1)
	}
}

// New returns a server over inv.
func New(inv Inventory, opts ...Option) *Server {
	s := &Server{
		inv:     inv,
		logger:  zap.NewNop(),
		clients: make(map[string]*client),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Serve listens on addr and serves until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:      s.Handler(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	done := make(chan struct{})
	defer close(done)

	shutdownErr := make(chan error, 1)
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
			shutdownErr <- nil
			return
		}
		s.logger.Info("shutting down server", zap.String("address", ln.Addr().String()))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		shutdownErr <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("starting server", zap.String("address", ln.Addr().String()))
	if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	if err := <-shutdownErr; err != nil {
		return err
	}

	s.logger.Info("server stopped", zap.String("address", ln.Addr().String()))
	return nil
}
