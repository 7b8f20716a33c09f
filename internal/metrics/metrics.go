// Package metrics records inventory operation outcomes as Prometheus
// counters.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// Result labels.
const (
	ResultOK          = "ok"
	ResultDegraded    = "degraded"
	ResultNotFound    = "not_found"
	ResultInvalid     = "invalid"
	ResultPersistence = "persistence_error"
	ResultRemote      = "remote_error"
	ResultError       = "error"
)

// Metrics holds the inventory counters. A nil *Metrics records nothing.
type Metrics struct {
	operations  *prometheus.CounterVec
	remoteFetch *prometheus.CounterVec
}

// New creates the counters and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shelf",
			Name:      "operations_total",
			Help:      "Inventory operations by operation and result.",
		}, []string{"operation", "result"}),
		remoteFetch: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shelf",
			Name:      "remote_fetch_total",
			Help:      "Remote collection requests by kind and result.",
		}, []string{"kind", "result"}),
	}
	for _, c := range []prometheus.Collector{m.operations, m.remoteFetch} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveOperation counts one inventory operation. The result label is
// derived from err unless result is non-empty.
func (m *Metrics) ObserveOperation(operation, result string, err error) {
	if m == nil {
		return
	}
	if result == "" {
		result = Classify(err)
	}
	m.operations.WithLabelValues(operation, result).Inc()
}

// ObserveRemote counts one remote request of kind "list" or "get".
func (m *Metrics) ObserveRemote(kind string, err error) {
	if m == nil {
		return
	}
	m.remoteFetch.WithLabelValues(kind, Classify(err)).Inc()
}

// Classify maps an error to a result label.
func Classify(err error) string {
	var verrs types.ValidationErrors
	switch {
	case err == nil:
		return ResultOK
	case errors.As(err, &verrs):
		return ResultInvalid
	case errors.Is(err, types.ErrNotFound):
		return ResultNotFound
	case errors.Is(err, types.ErrPersistence):
		return ResultPersistence
	case errors.Is(err, types.ErrRemoteUnavailable):
		return ResultRemote
	default:
		return ResultError
	}
}
